package blockchain

import (
	"context"
	"testing"

	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/testing/assert"
	"github.com/prysmaticlabs/forkchoice/testing/require"
)

func TestOnSlot_PersistsCheckpointsAndPrunes(t *testing.T) {
	ctx := context.Background()
	s, beaconDB := setupService(t, WithBalancesByRoot(fixedBalances(2)))
	require.NoError(t, s.onSlot(ctx, 100))

	//  g -- a -- b
	// b carries the votes that justify epoch 3 and finalize epoch 2 at a.
	a, b := [32]byte{'a'}, [32]byte{'b'}
	require.NoError(t, s.ReceiveBlock(ctx, blockAt(101, a, genesisRoot, forkchoicetypes.PreMerge), nil))
	bc := blockAt(102, b, a, forkchoicetypes.PreMerge)
	bc.UnrealizedJustifiedCheckpoint = &forkchoicetypes.Checkpoint{Epoch: 3, Root: a}
	bc.UnrealizedFinalizedCheckpoint = &forkchoicetypes.Checkpoint{Epoch: 2, Root: a}
	require.NoError(t, s.ReceiveBlock(ctx, bc, nil))

	summaries, err := beaconDB.BlockSummaries(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, len(summaries))

	require.NoError(t, s.onSlot(ctx, 128))
	justified, err := beaconDB.JustifiedCheckpoint(ctx)
	require.NoError(t, err)
	assert.DeepEqual(t, &forkchoicetypes.Checkpoint{Epoch: 3, Root: a}, justified)
	finalized, err := beaconDB.FinalizedCheckpoint(ctx)
	require.NoError(t, err)
	assert.DeepEqual(t, &forkchoicetypes.Checkpoint{Epoch: 2, Root: a}, finalized)

	balances, err := beaconDB.Balances(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 2, len(balances))

	// The genesis summary is behind the finalized block.
	summaries, err = beaconDB.BlockSummaries(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, len(summaries))
	assert.Equal(t, types.Slot(101), summaries[0].Block.Slot)
	assert.Equal(t, b, s.HeadRoot())
}

func TestSaveCheckpoints_Unchanged(t *testing.T) {
	ctx := context.Background()
	s, beaconDB := setupService(t)
	f := s.ForkChoicer()
	require.NoError(t, s.saveCheckpoints(ctx, f.JustifiedCheckpoint(), f.FinalizedCheckpoint()))

	// Nothing stored, the zero checkpoint is returned.
	justified, err := beaconDB.JustifiedCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.Epoch(0), justified.Epoch)
	_, err = beaconDB.Balances(ctx, [32]byte{})
	require.NotNil(t, err)
}
