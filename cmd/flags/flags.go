// Package flags defines the flags of the fork choice node.
package flags

import (
	"github.com/urfave/cli/v2"
)

// LogFormat is the value of the --log-format flag.
var LogFormat string

var (
	// LogFormatFlag specifies the log output format.
	LogFormatFlag = EnumValue{
		Name:        "log-format",
		Usage:       "Specify log formatting",
		Destination: &LogFormat,
		Enum:        []string{"text", "json"},
		Value:       "text",
	}.GenericFlag()
	// PruneThresholdFlag sets the number of finalized nodes fork choice tolerates before pruning.
	PruneThresholdFlag = &cli.Uint64Flag{
		Name:  "prune-threshold",
		Usage: "Minimum number of nodes before the finalized one for fork choice to prune them",
		Value: 0,
	}
	// BalanceCacheSizeFlag sets how many justified balance lists are kept in memory.
	BalanceCacheSizeFlag = &cli.IntFlag{
		Name:  "balance-cache-size",
		Usage: "Number of justified balance lists cached in memory",
		Value: 4,
	}
	// GenesisRootFlag is the root of the anchor block used when the database is empty.
	GenesisRootFlag = &cli.StringFlag{
		Name:  "genesis-root",
		Usage: "Hex encoded root of the anchor block inserted into an empty database",
	}
	// GenesisTimeFlag is the unix time of genesis. Without it no slot clock runs.
	GenesisTimeFlag = &cli.Uint64Flag{
		Name:  "genesis-time",
		Usage: "Unix timestamp of genesis, drives the slot ticker",
	}
)
