package blockchain

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/forkchoice/beacon-chain/db/kv"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/protoarray"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/testing/require"
)

var genesisRoot = [32]byte{'g'}

func blockAt(slot types.Slot, root, parent [32]byte, status forkchoicetypes.ExecutionStatus) *forkchoicetypes.BlockAndCheckpoints {
	b := &forkchoicetypes.Block{Slot: slot, Root: root, ParentRoot: parent}
	if status != forkchoicetypes.PreMerge {
		b.PayloadHash = [32]byte{'p', root[0]}
	}
	return &forkchoicetypes.BlockAndCheckpoints{
		Block:               b,
		JustifiedCheckpoint: &forkchoicetypes.Checkpoint{},
		FinalizedCheckpoint: &forkchoicetypes.Checkpoint{},
		ExecutionStatus:     status,
	}
}

func setupDB(t testing.TB, dir string) *kv.Store {
	beaconDB, err := kv.NewKVStore(context.Background(), dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, beaconDB.Close())
	})
	return beaconDB
}

// setupService returns a started service anchored at a pre-merge genesis block.
func setupService(t testing.TB, opts ...Option) (*Service, *kv.Store) {
	beaconDB := setupDB(t, t.TempDir())
	return startService(t, beaconDB, opts...), beaconDB
}

func startService(t testing.TB, beaconDB *kv.Store, opts ...Option) *Service {
	ctx := context.Background()
	opts = append([]Option{
		WithDatabase(beaconDB),
		WithForkChoiceStore(protoarray.New(nil, nil)),
		WithAnchor(blockAt(0, genesisRoot, [32]byte{}, forkchoicetypes.PreMerge)),
	}, opts...)
	s, err := NewService(ctx, opts...)
	require.NoError(t, err)
	require.NoError(t, s.StartFromDB(ctx))
	t.Cleanup(func() {
		require.NoError(t, s.Stop())
	})
	return s
}

func fixedBalances(n int) func(context.Context, [32]byte) ([]uint64, error) {
	return func(context.Context, [32]byte) ([]uint64, error) {
		b := make([]uint64, n)
		for i := range b {
			b[i] = 32e9
		}
		return b, nil
	}
}
