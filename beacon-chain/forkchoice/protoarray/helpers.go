package protoarray

import (
	"context"

	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"go.opencensus.io/trace"
)

// This computes validator balance delta from validator votes.
// It returns a list of deltas that represents the difference between old balances and new balances.
func computeDeltas(
	ctx context.Context,
	count int,
	blockIndices map[[32]byte]uint64,
	votes []Vote,
	oldBalances, newBalances []uint64,
	slashedIndices map[types.ValidatorIndex]bool,
) ([]int, []Vote, error) {
	_, span := trace.StartSpan(ctx, "protoArrayForkChoice.computeDeltas")
	defer span.End()

	deltas := make([]int, count)
	zeroHash := params.BeaconConfig().ZeroHash

	for validatorIndex, vote := range votes {
		// Skip if validator has been slashed. Its weight was removed when the slashing was seen.
		if slashedIndices[types.ValidatorIndex(validatorIndex)] {
			continue
		}
		oldBalance := uint64(0)
		newBalance := uint64(0)

		// Skip if validator has never voted for current root and next root (ie. if the
		// votes are zero hash aka genesis block), there's nothing to compute.
		if vote.currentRoot == zeroHash && vote.nextRoot == zeroHash {
			continue
		}

		// If the validator index did not exist in `oldBalances` or `newBalances` list above, the balance is just 0.
		if validatorIndex < len(oldBalances) {
			oldBalance = oldBalances[validatorIndex]
		}
		if validatorIndex < len(newBalances) {
			newBalance = newBalances[validatorIndex]
		}

		// Perform delta only if the validator's balance or vote has changed.
		if vote.currentRoot != vote.nextRoot || oldBalance != newBalance {
			// Ignore the vote if it's not known in `blockIndices`,
			// that means we have not seen the block before.
			if nextDeltaIndex, ok := blockIndices[vote.nextRoot]; ok {
				if nextDeltaIndex >= uint64(len(deltas)) {
					return nil, nil, errInvalidNodeDelta
				}
				deltas[nextDeltaIndex] += int(newBalance)
			}
			// Same as above: the current root may have been pruned.
			if currentDeltaIndex, ok := blockIndices[vote.currentRoot]; ok {
				if currentDeltaIndex >= uint64(len(deltas)) {
					return nil, nil, errInvalidNodeDelta
				}
				deltas[currentDeltaIndex] -= int(oldBalance)
			}
		}

		// Rotate the validator vote.
		votes[validatorIndex].currentRoot = vote.nextRoot
	}
	return deltas, votes, nil
}

// This return a copy of the proto array node object.
func copyNode(node *Node) *Node {
	if node == nil {
		return &Node{}
	}
	cp := *node
	return &cp
}
