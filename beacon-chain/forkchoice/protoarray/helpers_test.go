package protoarray

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/testing/assert"
	"github.com/prysmaticlabs/forkchoice/testing/require"
)

// prepareForkchoiceState builds the insertion arguments of a block with the given data.
// Checkpoint roots are left to zero so they refer to the genesis anchor.
func prepareForkchoiceState(
	slot types.Slot,
	blockRoot [32]byte,
	parentRoot [32]byte,
	payloadHash [32]byte,
	justifiedEpoch types.Epoch,
	finalizedEpoch types.Epoch,
) *forkchoicetypes.BlockAndCheckpoints {
	return &forkchoicetypes.BlockAndCheckpoints{
		Block: &forkchoicetypes.Block{
			Slot:        slot,
			Root:        blockRoot,
			ParentRoot:  parentRoot,
			PayloadHash: payloadHash,
		},
		JustifiedCheckpoint: &forkchoicetypes.Checkpoint{Epoch: justifiedEpoch},
		FinalizedCheckpoint: &forkchoicetypes.Checkpoint{Epoch: finalizedEpoch},
	}
}

// setup returns a fork choice store anchored at a genesis block with the zero root.
func setup(justifiedEpoch, finalizedEpoch types.Epoch) *ForkChoice {
	f := New(
		&forkchoicetypes.Checkpoint{Epoch: justifiedEpoch, Root: params.BeaconConfig().ZeroHash},
		&forkchoicetypes.Checkpoint{Epoch: finalizedEpoch, Root: params.BeaconConfig().ZeroHash},
	)
	genesis := prepareForkchoiceState(0, params.BeaconConfig().ZeroHash, params.BeaconConfig().ZeroHash, params.BeaconConfig().ZeroHash, justifiedEpoch, finalizedEpoch)
	if err := f.InsertNode(context.Background(), genesis); err != nil {
		panic(err)
	}
	return f
}

func indexToHash(i uint64) [32]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], i)
	return sha256.Sum256(b[:])
}

func TestComputeDelta_ZeroHash(t *testing.T) {
	validatorCount := uint64(16)
	indices := make(map[[32]byte]uint64)
	votes := make([]Vote, 0)
	oldBalances := make([]uint64, 0)
	newBalances := make([]uint64, 0)

	for i := uint64(0); i < validatorCount; i++ {
		indices[indexToHash(i)] = i
		votes = append(votes, Vote{params.BeaconConfig().ZeroHash, params.BeaconConfig().ZeroHash, 0})
		oldBalances = append(oldBalances, 0)
		newBalances = append(newBalances, 0)
	}

	delta, _, err := computeDeltas(context.Background(), len(indices), indices, votes, oldBalances, newBalances, nil)
	require.NoError(t, err)
	assert.Equal(t, int(validatorCount), len(delta))

	// Deltas should all be 0
	for _, d := range delta {
		assert.Equal(t, 0, d)
	}
}

func TestComputeDelta_AllVoteTheSame(t *testing.T) {
	validatorCount := uint64(16)
	balance := uint64(42)
	indices := make(map[[32]byte]uint64)
	votes := make([]Vote, 0)
	oldBalances := make([]uint64, 0)
	newBalances := make([]uint64, 0)

	for i := uint64(0); i < validatorCount; i++ {
		indices[indexToHash(i)] = i
		votes = append(votes, Vote{params.BeaconConfig().ZeroHash, indexToHash(0), 0})
		oldBalances = append(oldBalances, balance)
		newBalances = append(newBalances, balance)
	}

	delta, _, err := computeDeltas(context.Background(), len(indices), indices, votes, oldBalances, newBalances, nil)
	require.NoError(t, err)
	assert.Equal(t, int(validatorCount), len(delta))

	for i, d := range delta {
		if i == 0 {
			assert.Equal(t, balance*validatorCount, uint64(d), "Did not get correct balance")
		} else {
			assert.Equal(t, 0, d, "Did not get correct balance")
		}
	}
}

func TestComputeDelta_DifferentVotes(t *testing.T) {
	validatorCount := uint64(16)
	balance := uint64(42)
	indices := make(map[[32]byte]uint64)
	votes := make([]Vote, 0)
	oldBalances := make([]uint64, 0)
	newBalances := make([]uint64, 0)

	for i := uint64(0); i < validatorCount; i++ {
		indices[indexToHash(i)] = i
		votes = append(votes, Vote{params.BeaconConfig().ZeroHash, indexToHash(i), 0})
		oldBalances = append(oldBalances, balance)
		newBalances = append(newBalances, balance)
	}

	delta, _, err := computeDeltas(context.Background(), len(indices), indices, votes, oldBalances, newBalances, nil)
	require.NoError(t, err)
	assert.Equal(t, int(validatorCount), len(delta))

	for _, d := range delta {
		assert.Equal(t, balance, uint64(d), "Did not get correct delta")
	}
}

func TestComputeDelta_MovingVotes(t *testing.T) {
	validatorCount := uint64(16)
	balance := uint64(42)
	indices := make(map[[32]byte]uint64)
	votes := make([]Vote, 0)
	oldBalances := make([]uint64, 0)
	newBalances := make([]uint64, 0)

	for i := uint64(0); i < validatorCount; i++ {
		indices[indexToHash(i)] = i
		votes = append(votes, Vote{indexToHash(0), indexToHash(1), 0})
		oldBalances = append(oldBalances, balance)
		newBalances = append(newBalances, balance)
	}

	delta, _, err := computeDeltas(context.Background(), len(indices), indices, votes, oldBalances, newBalances, nil)
	require.NoError(t, err)
	assert.Equal(t, int(validatorCount), len(delta))

	for i, d := range delta {
		switch i {
		case 0:
			assert.Equal(t, -int(balance*validatorCount), d, "First root should have negative delta")
		case 1:
			assert.Equal(t, int(balance*validatorCount), d, "Second root should have positive delta")
		default:
			assert.Equal(t, 0, d, "Delta should be zero")
		}
	}
}

func TestComputeDelta_MoveOutOfTree(t *testing.T) {
	balance := uint64(42)

	// Add a single vote out of tree.
	indices := make(map[[32]byte]uint64)
	indices[indexToHash(1)] = 0
	indices[indexToHash(2)] = 1

	votes := []Vote{
		{indexToHash(1), params.BeaconConfig().ZeroHash, 0},
		{indexToHash(1), [32]byte{'A'}, 0},
	}
	oldBalances := []uint64{balance, balance}
	newBalances := []uint64{balance, balance}

	delta, _, err := computeDeltas(context.Background(), len(indices), indices, votes, oldBalances, newBalances, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, len(delta))
	assert.Equal(t, 0-2*int(balance), delta[0])
	assert.Equal(t, 0, delta[1])

	for _, vote := range votes {
		assert.Equal(t, vote.nextRoot, vote.currentRoot, "The vote should have changed")
	}
}

func TestComputeDelta_ChangingBalances(t *testing.T) {
	oldBalance := uint64(42)
	newBalance := oldBalance * 2
	validatorCount := uint64(16)
	indices := make(map[[32]byte]uint64)
	votes := make([]Vote, 0)
	oldBalances := make([]uint64, 0)
	newBalances := make([]uint64, 0)

	indices[indexToHash(1)] = 0
	indices[indexToHash(2)] = 1

	for i := uint64(0); i < validatorCount; i++ {
		votes = append(votes, Vote{indexToHash(1), indexToHash(2), 0})
		oldBalances = append(oldBalances, oldBalance)
		newBalances = append(newBalances, newBalance)
	}

	delta, _, err := computeDeltas(context.Background(), len(indices), indices, votes, oldBalances, newBalances, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, len(delta))
	assert.Equal(t, -int(oldBalance*validatorCount), delta[0])
	assert.Equal(t, int(newBalance*validatorCount), delta[1])
}

func TestComputeDelta_ValidatorAppear(t *testing.T) {
	balance := uint64(42)
	indices := make(map[[32]byte]uint64)
	indices[indexToHash(1)] = 0
	indices[indexToHash(2)] = 1

	// There's only 1 vote. The new validator is not in the old balances.
	votes := []Vote{
		{indexToHash(1), indexToHash(2), 0},
		{indexToHash(1), indexToHash(2), 0},
	}
	oldBalances := []uint64{balance}
	newBalances := []uint64{balance, balance}

	delta, _, err := computeDeltas(context.Background(), len(indices), indices, votes, oldBalances, newBalances, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, len(delta))
	assert.Equal(t, 0-int(balance), delta[0])
	assert.Equal(t, 2*int(balance), delta[1])
}

func TestComputeDelta_ValidatorDisappears(t *testing.T) {
	balance := uint64(42)
	indices := make(map[[32]byte]uint64)
	indices[indexToHash(1)] = 0
	indices[indexToHash(2)] = 1

	// There's only 1 vote. The second validator left the set.
	votes := []Vote{
		{indexToHash(1), indexToHash(2), 0},
		{indexToHash(1), indexToHash(2), 0},
	}
	oldBalances := []uint64{balance, balance}
	newBalances := []uint64{balance}

	delta, _, err := computeDeltas(context.Background(), len(indices), indices, votes, oldBalances, newBalances, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, len(delta))
	assert.Equal(t, 0-2*int(balance), delta[0])
	assert.Equal(t, int(balance), delta[1])
}

func TestComputeDelta_SlashedValidatorSkipped(t *testing.T) {
	balance := uint64(42)
	indices := map[[32]byte]uint64{indexToHash(1): 0, indexToHash(2): 1}
	votes := []Vote{
		{indexToHash(1), indexToHash(2), 0},
		{indexToHash(1), indexToHash(2), 0},
	}
	balances := []uint64{balance, balance}
	slashed := map[types.ValidatorIndex]bool{1: true}

	delta, votes, err := computeDeltas(context.Background(), len(indices), indices, votes, balances, balances, slashed)
	require.NoError(t, err)
	assert.Equal(t, -int(balance), delta[0])
	assert.Equal(t, int(balance), delta[1])
	// The slashed validator's vote is left untouched.
	assert.Equal(t, indexToHash(1), votes[1].currentRoot)
}

func TestComputeDelta_OutOfRangeIndex(t *testing.T) {
	indices := map[[32]byte]uint64{indexToHash(1): 5}
	votes := []Vote{{params.BeaconConfig().ZeroHash, indexToHash(1), 0}}
	_, _, err := computeDeltas(context.Background(), 1, indices, votes, []uint64{1}, []uint64{1}, nil)
	require.ErrorIs(t, err, errInvalidNodeDelta)
}

func TestCopyNode(t *testing.T) {
	n := &Node{
		slot:           10,
		root:           [32]byte{'a'},
		parent:         3,
		payloadHash:    [32]byte{'p'},
		justified:      forkchoicetypes.Checkpoint{Epoch: 2},
		finalized:      forkchoicetypes.Checkpoint{Epoch: 1},
		weight:         100,
		bestChild:      4,
		bestDescendant: 5,
		status:         forkchoicetypes.Syncing,
	}
	cp := copyNode(n)
	assert.DeepEqual(t, n, cp)
	cp.weight = 1
	assert.Equal(t, uint64(100), n.weight, "Copy aliases the original node")
	assert.DeepEqual(t, &Node{}, copyNode(nil))
}
