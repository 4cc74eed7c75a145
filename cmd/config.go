package cmd

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/config/params"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "node")

// ConfigureBeaconChain applies the preset and chain config file flags to the
// global beacon chain config. The chain config file wins over the preset.
func ConfigureBeaconChain(cliCtx *cli.Context) error {
	if cliCtx.Bool(MinimalConfigFlag.Name) {
		log.Warn("Using minimal config")
		params.OverrideBeaconConfig(params.MinimalSpecConfig().Copy())
	}
	if cliCtx.IsSet(ChainConfigFileFlag.Name) {
		chainConfigFileName := cliCtx.String(ChainConfigFileFlag.Name)
		if err := params.LoadChainConfigFile(chainConfigFileName); err != nil {
			return errors.Wrapf(err, "could not load chain config file %s", chainConfigFileName)
		}
	}
	return nil
}
