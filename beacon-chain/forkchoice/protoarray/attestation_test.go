package protoarray

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/testing/assert"
	"github.com/prysmaticlabs/forkchoice/testing/require"
)

// attestationTree returns a store at slot 100 with the following blocks:
//
//	      -- A (96) -- B (99)
//	     /
//	0 --
//	     \
//	      -- C (97)
func attestationTree(t *testing.T) *ForkChoice {
	ctx := context.Background()
	f := setup(0, 0)
	require.NoError(t, f.NewSlot(ctx, 100))
	require.NoError(t, f.InsertNode(ctx, prepareForkchoiceState(96, [32]byte{'A'}, params.BeaconConfig().ZeroHash, [32]byte{}, 0, 0)))
	require.NoError(t, f.InsertNode(ctx, prepareForkchoiceState(99, [32]byte{'B'}, [32]byte{'A'}, [32]byte{}, 0, 0)))
	require.NoError(t, f.InsertNode(ctx, prepareForkchoiceState(97, [32]byte{'C'}, params.BeaconConfig().ZeroHash, [32]byte{}, 0, 0)))
	return f
}

func TestOnAttestation_NilAndZeroRoot(t *testing.T) {
	ctx := context.Background()
	f := attestationTree(t)
	require.ErrorIs(t, f.OnAttestation(ctx, nil, false), errNilAttestation)

	att := &forkchoicetypes.IndexedAttestation{Slot: 99, AttestingIndices: []uint64{0}}
	require.NoError(t, f.OnAttestation(ctx, att, false))
	assert.Equal(t, 0, len(f.votes))
}

func TestOnAttestation_Validation(t *testing.T) {
	a, b, c := [32]byte{'A'}, [32]byte{'B'}, [32]byte{'C'}
	tests := []struct {
		name    string
		att     *forkchoicetypes.IndexedAttestation
		wantErr string
	}{
		{
			name:    "no attesting indices",
			att:     &forkchoicetypes.IndexedAttestation{Slot: 99, BeaconBlockRoot: a, Target: forkchoicetypes.Checkpoint{Epoch: 3, Root: a}},
			wantErr: "no attesting indices",
		},
		{
			name:    "target epoch too old",
			att:     &forkchoicetypes.IndexedAttestation{Slot: 40, BeaconBlockRoot: a, Target: forkchoicetypes.Checkpoint{Epoch: 1, Root: a}, AttestingIndices: []uint64{0}},
			wantErr: "neither the current epoch",
		},
		{
			name:    "target epoch does not match slot",
			att:     &forkchoicetypes.IndexedAttestation{Slot: 70, BeaconBlockRoot: a, Target: forkchoicetypes.Checkpoint{Epoch: 3, Root: a}, AttestingIndices: []uint64{0}},
			wantErr: "does not match slot",
		},
		{
			name:    "unknown target root",
			att:     &forkchoicetypes.IndexedAttestation{Slot: 99, BeaconBlockRoot: a, Target: forkchoicetypes.Checkpoint{Epoch: 3, Root: [32]byte{'Z'}}, AttestingIndices: []uint64{0}},
			wantErr: "unknown target root",
		},
		{
			name:    "unknown beacon block root",
			att:     &forkchoicetypes.IndexedAttestation{Slot: 99, BeaconBlockRoot: [32]byte{'Z'}, Target: forkchoicetypes.Checkpoint{Epoch: 3, Root: a}, AttestingIndices: []uint64{0}},
			wantErr: "unknown beacon block root",
		},
		{
			name:    "beacon block after attestation slot",
			att:     &forkchoicetypes.IndexedAttestation{Slot: 98, BeaconBlockRoot: b, Target: forkchoicetypes.Checkpoint{Epoch: 3, Root: a}, AttestingIndices: []uint64{0}},
			wantErr: "is after attestation slot",
		},
		{
			name:    "target is not an ancestor",
			att:     &forkchoicetypes.IndexedAttestation{Slot: 99, BeaconBlockRoot: b, Target: forkchoicetypes.Checkpoint{Epoch: 3, Root: c}, AttestingIndices: []uint64{0}},
			wantErr: "is not the ancestor",
		},
		{
			name:    "future slot",
			att:     &forkchoicetypes.IndexedAttestation{Slot: 101, BeaconBlockRoot: b, Target: forkchoicetypes.Checkpoint{Epoch: 3, Root: a}, AttestingIndices: []uint64{0}},
			wantErr: "in the future",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := attestationTree(t)
			err := f.OnAttestation(context.Background(), tc.att, false)
			require.ErrorIs(t, err, forkchoice.ErrInvalidAttestation)
			require.ErrorContains(t, tc.wantErr, err)
			assert.Equal(t, 0, len(f.votes))
			assert.Equal(t, 0, len(f.queuedAttestations))
		})
	}
}

func TestOnAttestation_ValidationMessage(t *testing.T) {
	f := attestationTree(t)
	att := &forkchoicetypes.IndexedAttestation{Slot: 99, BeaconBlockRoot: [32]byte{'A'}, Target: forkchoicetypes.Checkpoint{Epoch: 3, Root: [32]byte{'A'}}}
	err := f.OnAttestation(context.Background(), att, false)
	require.ErrorIs(t, err, forkchoice.ErrInvalidAttestation)
	assert.Equal(t, "attestation has no attesting indices: invalid attestation", err.Error())
}

func TestOnAttestation_PastSlotApplied(t *testing.T) {
	f := attestationTree(t)
	att := &forkchoicetypes.IndexedAttestation{
		Slot:             99,
		BeaconBlockRoot:  [32]byte{'B'},
		Target:           forkchoicetypes.Checkpoint{Epoch: 3, Root: [32]byte{'A'}},
		AttestingIndices: []uint64{3},
	}
	require.NoError(t, f.OnAttestation(context.Background(), att, false))
	require.Equal(t, 4, len(f.votes))
	assert.Equal(t, [32]byte{'B'}, f.votes[3].nextRoot)
	assert.Equal(t, types.Epoch(3), f.votes[3].nextEpoch)
	assert.Equal(t, 0, len(f.queuedAttestations))
}

func TestOnAttestation_FromBlockSkipsValidation(t *testing.T) {
	f := attestationTree(t)
	// Neither the target nor the slot would pass the gossip checks.
	att := &forkchoicetypes.IndexedAttestation{
		Slot:             100,
		BeaconBlockRoot:  [32]byte{'B'},
		Target:           forkchoicetypes.Checkpoint{Epoch: 1, Root: [32]byte{'Z'}},
		AttestingIndices: []uint64{0},
	}
	require.NoError(t, f.OnAttestation(context.Background(), att, true))
	require.Equal(t, 1, len(f.votes))
	assert.Equal(t, [32]byte{'B'}, f.votes[0].nextRoot)
	assert.Equal(t, 0, len(f.queuedAttestations))
}
