package kv

import (
	"context"
	"testing"

	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/testing/assert"
	"github.com/prysmaticlabs/forkchoice/testing/require"
)

func Test_encode_handlesNilFromFunction(t *testing.T) {
	foo := func() *BlockSummary {
		return nil
	}
	_, err := encode(context.Background(), foo())
	require.ErrorContains(t, "cannot encode nil message", err)
}

func Test_decode_rejectsCorruptData(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, decode(ctx, []byte{0xff, 0x00, 0x01}, &BlockSummary{}))

	// Valid snappy, wrong size.
	enc, err := encode(ctx, &checkpointSummary{Epoch: 1})
	require.NoError(t, err)
	require.NotNil(t, decode(ctx, enc, &BlockSummary{}))
}

func TestBlockSummary_EncodeDecode(t *testing.T) {
	ctx := context.Background()
	bc := &forkchoicetypes.BlockAndCheckpoints{
		Block: &forkchoicetypes.Block{
			Slot:        12,
			Root:        [32]byte{'r'},
			ParentRoot:  [32]byte{'p'},
			StateRoot:   [32]byte{'s'},
			TargetRoot:  [32]byte{'t'},
			PayloadHash: [32]byte{'h'},
		},
		JustifiedCheckpoint:           &forkchoicetypes.Checkpoint{Epoch: 2, Root: [32]byte{'j'}},
		FinalizedCheckpoint:           &forkchoicetypes.Checkpoint{Epoch: 1, Root: [32]byte{'f'}},
		UnrealizedJustifiedCheckpoint: &forkchoicetypes.Checkpoint{Epoch: 3, Root: [32]byte{'u'}},
		ExecutionStatus:               forkchoicetypes.Syncing,
	}
	summary, err := NewBlockSummary(bc)
	require.NoError(t, err)
	enc, err := encode(ctx, summary)
	require.NoError(t, err)

	decoded := &BlockSummary{}
	require.NoError(t, decode(ctx, enc, decoded))
	got := decoded.BlockAndCheckpoints()
	assert.DeepEqual(t, bc.Block, got.Block)
	assert.DeepEqual(t, bc.JustifiedCheckpoint, got.JustifiedCheckpoint)
	assert.DeepEqual(t, bc.UnrealizedJustifiedCheckpoint, got.UnrealizedJustifiedCheckpoint)
	// A missing unrealized checkpoint falls back to the realized one.
	assert.DeepEqual(t, bc.FinalizedCheckpoint, got.UnrealizedFinalizedCheckpoint)
	assert.Equal(t, forkchoicetypes.Syncing, got.ExecutionStatus)
}

func TestBlockSummary_UnknownStatus(t *testing.T) {
	summary := &BlockSummary{}
	enc, err := summary.MarshalSSZ()
	require.NoError(t, err)
	require.Equal(t, blockSummarySSZSize, len(enc))
	enc[len(enc)-1] = 9
	require.ErrorContains(t, "unknown execution status", summary.UnmarshalSSZ(enc))
}

func TestNewBlockSummary_Nil(t *testing.T) {
	_, err := NewBlockSummary(nil)
	require.ErrorIs(t, err, errNilBlockSummary)
	_, err = NewBlockSummary(&forkchoicetypes.BlockAndCheckpoints{})
	require.ErrorIs(t, err, errNilBlockSummary)
}
