package slots

import (
	"testing"
	"time"

	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/testing/assert"
	"github.com/prysmaticlabs/forkchoice/testing/require"
)

func TestSlotToEpoch_OK(t *testing.T) {
	tests := []struct {
		slot  types.Slot
		epoch types.Epoch
	}{
		{slot: 0, epoch: 0},
		{slot: 50, epoch: 1},
		{slot: 64, epoch: 2},
		{slot: 128, epoch: 4},
		{slot: 200, epoch: 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.epoch, ToEpoch(tt.slot), "ToEpoch(%d)", tt.slot)
	}
}

func TestEpochStartSlot_OK(t *testing.T) {
	tests := []struct {
		epoch     types.Epoch
		startSlot types.Slot
		error     bool
	}{
		{epoch: 0, startSlot: 0 * params.BeaconConfig().SlotsPerEpoch, error: false},
		{epoch: 1, startSlot: 1 * params.BeaconConfig().SlotsPerEpoch, error: false},
		{epoch: 10, startSlot: 10 * params.BeaconConfig().SlotsPerEpoch, error: false},
		{epoch: 1 << 58, startSlot: 1 << 63, error: false},
		{epoch: 1 << 59, startSlot: 1 << 63, error: true},
		{epoch: 1 << 60, startSlot: 1 << 63, error: true},
	}
	for _, tt := range tests {
		ss, err := EpochStart(tt.epoch)
		if !tt.error {
			require.NoError(t, err)
			assert.Equal(t, tt.startSlot, ss, "EpochStart(%d)", tt.epoch)
		} else {
			require.ErrorContains(t, "start slot calculation overflow", err)
		}
	}
}

func TestIsEpochStart(t *testing.T) {
	assert.Equal(t, true, IsEpochStart(0))
	assert.Equal(t, true, IsEpochStart(64))
	assert.Equal(t, false, IsEpochStart(65))
	assert.Equal(t, types.Slot(1), SinceEpochStarts(65))
}

func TestCurrentSlot_ReturnsCorrectSlot(t *testing.T) {
	genesis := uint64(time.Now().Add(-5 * time.Duration(params.BeaconConfig().SecondsPerSlot) * time.Second).Unix())
	assert.Equal(t, types.Slot(5), CurrentSlot(genesis))
	assert.Equal(t, types.Slot(0), CurrentSlot(uint64(time.Now().Add(time.Hour).Unix())))
}

func TestSecondsSinceSlotStart(t *testing.T) {
	tests := []struct {
		slot        types.Slot
		genesisTime uint64
		timeStamp   uint64
		wanted      uint64
		wantedErr   bool
	}{
		{},
		{slot: 1, timeStamp: 1, wantedErr: true},
		{slot: 1, timeStamp: params.BeaconConfig().SecondsPerSlot + 2, wanted: 2},
	}
	for _, test := range tests {
		w, err := SecondsSinceSlotStart(test.slot, test.genesisTime, test.timeStamp)
		if err != nil {
			require.Equal(t, true, test.wantedErr)
		} else {
			require.Equal(t, false, test.wantedErr)
			require.Equal(t, w, test.wanted)
		}
	}
}

func TestStartTime(t *testing.T) {
	got := StartTime(100, 2)
	assert.Equal(t, int64(100+2*params.BeaconConfig().SecondsPerSlot), got.Unix())
}
