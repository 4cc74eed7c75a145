// Package main runs the fork choice node: it rebuilds the proto-array fork
// choice store from its database, keeps it in step with the slot clock and
// serves metrics and the fork choice tree over http.
package main

import (
	"os"

	"github.com/prysmaticlabs/forkchoice/cmd"
	"github.com/prysmaticlabs/forkchoice/cmd/flags"
	"github.com/prysmaticlabs/forkchoice/io/logs"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "main")

var appFlags = []cli.Flag{
	cmd.VerbosityFlag,
	cmd.DataDirFlag,
	cmd.ClearDB,
	cmd.MinimalConfigFlag,
	cmd.ChainConfigFileFlag,
	cmd.LogFileName,
	flags.LogFormatFlag,
	cmd.MonitoringHostFlag,
	cmd.MonitoringPortFlag,
	cmd.DisableMonitoringFlag,
	flags.PruneThresholdFlag,
	flags.BalanceCacheSizeFlag,
	flags.GenesisRootFlag,
	flags.GenesisTimeFlag,
}

func init() {
	appFlags = cmd.WrapFlags(appFlags)
}

func newApp() *cli.App {
	app := &cli.App{
		Name:  "forkchoice",
		Usage: "proto-array fork choice node",
		Flags: append(appFlags, cmd.ConfigFileFlag),
		Commands: []*cli.Command{
			runCommand,
			headCommand,
			dotCommand,
			dumpConfigCommand,
		},
		Before: before,
	}
	return app
}

func before(cliCtx *cli.Context) error {
	if err := cmd.LoadFlagsFromConfig(cliCtx, appFlags); err != nil {
		return err
	}

	verbosity := cliCtx.String(cmd.VerbosityFlag.Name)
	level, err := logrus.ParseLevel(verbosity)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	logFileName := cliCtx.String(cmd.LogFileName.Name)
	if err := logs.SetFormatter(flags.LogFormat, logFileName != ""); err != nil {
		return err
	}
	if logFileName != "" {
		if err := logs.ConfigurePersistentLogging(logFileName); err != nil {
			log.WithError(err).Error("Failed to configuring logging to disk.")
		}
	}

	return cmd.ConfigureBeaconChain(cliCtx)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
