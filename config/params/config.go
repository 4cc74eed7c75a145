// Package params defines the chain constants consumed by fork choice.
package params

import (
	"time"

	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

// BeaconChainConfig contains the constant configs fork choice and its collaborators rely on.
type BeaconChainConfig struct {
	PresetBase string `yaml:"PRESET_BASE" spec:"true"`
	ConfigName string `yaml:"CONFIG_NAME" spec:"true"`

	// Time parameters.
	SecondsPerSlot              uint64     `yaml:"SECONDS_PER_SLOT" spec:"true"`
	SlotsPerEpoch               types.Slot `yaml:"SLOTS_PER_EPOCH" spec:"true"`
	IntervalsPerSlot            uint64     `yaml:"INTERVALS_PER_SLOT" spec:"true"`
	MaximumGossipClockDisparity uint64     `yaml:"MAXIMUM_GOSSIP_CLOCK_DISPARITY" spec:"true"` // MaximumGossipClockDisparity in milliseconds.

	// Fork choice parameters.
	SafeSlotsToUpdateJustified types.Slot `yaml:"SAFE_SLOTS_TO_UPDATE_JUSTIFIED" spec:"true"`
	ProposerScoreBoost         uint64     `yaml:"PROPOSER_SCORE_BOOST" spec:"true"`

	// Gwei values.
	MaxEffectiveBalance       uint64 `yaml:"MAX_EFFECTIVE_BALANCE" spec:"true"`
	EffectiveBalanceIncrement uint64 `yaml:"EFFECTIVE_BALANCE_INCREMENT" spec:"true"`

	// Constants.
	GenesisEpoch   types.Epoch `yaml:"-"`
	GenesisSlot    types.Slot  `yaml:"-"`
	FarFutureEpoch types.Epoch `yaml:"-"`
	ZeroHash       [32]byte    `yaml:"-"` // ZeroHash is used to represent a zeroed out 32 byte array.
}

// MaximumGossipClockDisparityDuration returns the tolerated clock skew as a time.Duration.
func (b *BeaconChainConfig) MaximumGossipClockDisparityDuration() time.Duration {
	return time.Duration(b.MaximumGossipClockDisparity) * time.Millisecond
}
