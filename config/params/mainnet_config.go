package params

import (
	"math"

	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

// MainnetName is the config name of the mainnet preset.
const MainnetName = "mainnet"

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *BeaconChainConfig {
	return mainnetBeaconConfig
}

var mainnetBeaconConfig = &BeaconChainConfig{
	PresetBase: "mainnet",
	ConfigName: MainnetName,

	SecondsPerSlot:              12,
	SlotsPerEpoch:               32,
	IntervalsPerSlot:            3,
	MaximumGossipClockDisparity: 500,

	SafeSlotsToUpdateJustified: 8,
	ProposerScoreBoost:         40,

	MaxEffectiveBalance:       32 * 1e9,
	EffectiveBalanceIncrement: 1 * 1e9,

	GenesisEpoch:   0,
	GenesisSlot:    0,
	FarFutureEpoch: math.MaxUint64,
	ZeroHash:       [32]byte{},
}

// MinimalName is the config name of the minimal preset.
const MinimalName = "minimal"

// MinimalSpecConfig retrieves the minimal config used in spec tests.
func MinimalSpecConfig() *BeaconChainConfig {
	minimalConfig := mainnetBeaconConfig.Copy()
	minimalConfig.PresetBase = "minimal"
	minimalConfig.ConfigName = MinimalName
	minimalConfig.SecondsPerSlot = 6
	minimalConfig.SlotsPerEpoch = types.Slot(8)
	minimalConfig.SafeSlotsToUpdateJustified = 2
	return minimalConfig
}
