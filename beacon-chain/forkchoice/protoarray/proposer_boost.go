package protoarray

import (
	"context"
	"fmt"

	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	"go.opencensus.io/trace"
)

// BoostProposerRoot sets the block root which should be boosted during
// the LMD fork choice algorithm calculations. This is meant to reward timely,
// proposed blocks which occur before a cutoff interval set to
// SECONDS_PER_SLOT // INTERVALS_PER_SLOT.
//
//	time_into_slot = (store.time - store.genesis_time) % SECONDS_PER_SLOT
//	is_before_attesting_interval = time_into_slot < SECONDS_PER_SLOT // INTERVALS_PER_SLOT
//	if get_current_slot(store) == block.slot and is_before_attesting_interval:
//	    store.proposer_boost_root = hash_tree_root(block)
func (f *ForkChoice) BoostProposerRoot(ctx context.Context, args *forkchoicetypes.BoostProposerRootArgs) error {
	_, span := trace.StartSpan(ctx, "protoArrayForkChoice.BoostProposerRoot")
	defer span.End()
	if args == nil {
		return errInvalidProposerBoostRoot
	}

	f.store.nodesLock.RLock()
	_, ok := f.store.nodesIndices[args.BlockRoot]
	f.store.nodesLock.RUnlock()
	if !ok {
		return forkchoice.ErrNilNode
	}

	secondsPerSlot := params.BeaconConfig().SecondsPerSlot
	isBeforeAttestingInterval := args.SecondsIntoSlot < secondsPerSlot/params.BeaconConfig().IntervalsPerSlot

	// Only update the boosted proposer root to the incoming block root
	// if the block is for the current, clock-based slot and the block was timely.
	if args.CurrentSlot == args.BlockSlot && isBeforeAttestingInterval {
		f.store.proposerBoostLock.Lock()
		f.store.proposerBoostRoot = args.BlockRoot
		f.store.proposerBoostLock.Unlock()
	}
	return nil
}

// ResetBoostedProposerRoot sets the value of the proposer boosted root to zeros.
func (f *ForkChoice) ResetBoostedProposerRoot(_ context.Context) error {
	f.store.proposerBoostLock.Lock()
	f.store.proposerBoostRoot = [32]byte{}
	f.store.proposerBoostLock.Unlock()
	return nil
}

// ProposerBoost returns the currently boosted root, zero if none.
func (f *ForkChoice) ProposerBoost() [32]byte {
	f.store.proposerBoostLock.RLock()
	defer f.store.proposerBoostLock.RUnlock()
	return f.store.proposerBoostRoot
}

// applyProposerBoostScore withdraws the score granted to the previously boosted root and
// grants a fresh one to the current boosted root, both through the deltas of the next
// weight update. This function assumes a lock on s.nodesLock.
func (s *Store) applyProposerBoostScore(newBalances []uint64, deltas []int) error {
	s.proposerBoostLock.Lock()
	defer s.proposerBoostLock.Unlock()

	if s.previousProposerBoostRoot != params.BeaconConfig().ZeroHash {
		// The previous root may be gone after pruning, its weight went with it.
		if i, ok := s.nodesIndices[s.previousProposerBoostRoot]; ok {
			if i >= uint64(len(deltas)) {
				return errInvalidNodeDelta
			}
			deltas[i] -= int(s.previousProposerBoostScore)
		}
	}

	proposerScore := uint64(0)
	if s.proposerBoostRoot != params.BeaconConfig().ZeroHash {
		i, ok := s.nodesIndices[s.proposerBoostRoot]
		if !ok || i >= uint64(len(deltas)) {
			log.WithError(errInvalidProposerBoostRoot).Errorf(fmt.Sprintf("invalid current root %#x", s.proposerBoostRoot))
		} else {
			proposerScore = computeProposerBoostScore(newBalances)
			deltas[i] += int(proposerScore)
			proposerBoostCount.Inc()
		}
	}
	s.previousProposerBoostRoot = s.proposerBoostRoot
	s.previousProposerBoostScore = proposerScore
	return nil
}

// computeProposerBoostScore is the weight of an average committee scaled by
// PROPOSER_SCORE_BOOST percent.
func computeProposerBoostScore(justifiedBalances []uint64) uint64 {
	totalActiveBalance := uint64(0)
	for _, b := range justifiedBalances {
		totalActiveBalance += b
	}
	if totalActiveBalance == 0 {
		return 0
	}
	committeeWeight := totalActiveBalance / uint64(params.BeaconConfig().SlotsPerEpoch)
	return (committeeWeight * params.BeaconConfig().ProposerScoreBoost) / 100
}
