package blockchain

import (
	"context"

	"github.com/pkg/errors"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"go.opencensus.io/trace"
)

// saveCheckpoints persists the fork choice checkpoints that changed since
// prevJustified and prevFinalized were read. Block summaries older than the
// new finalized block are removed, fork choice pruned them already.
func (s *Service) saveCheckpoints(ctx context.Context, prevJustified, prevFinalized *forkchoicetypes.Checkpoint) error {
	ctx, span := trace.StartSpan(ctx, "blockChain.saveCheckpoints")
	defer span.End()

	f := s.cfg.ForkChoiceStore
	justified := f.JustifiedCheckpoint()
	finalized := f.FinalizedCheckpoint()
	justifiedChanged := *justified != *prevJustified
	finalizedChanged := *finalized != *prevFinalized
	if !justifiedChanged && !finalizedChanged {
		return nil
	}

	if justifiedChanged {
		if err := s.cfg.BeaconDB.SaveJustifiedCheckpoint(ctx, justified); err != nil {
			return errors.Wrap(err, "could not save justified checkpoint")
		}
		if s.cfg.BalancesByRoot != nil {
			balances, err := s.balancesCache.get(ctx, justified.Root)
			if err != nil {
				log.WithError(err).Warn("Could not fetch balances of the new justified checkpoint")
			} else if err := s.cfg.BeaconDB.SaveBalances(ctx, justified.Root, balances); err != nil {
				return errors.Wrap(err, "could not save justified balances")
			}
		}
	}

	if finalizedChanged {
		if err := s.cfg.BeaconDB.SaveFinalizedCheckpoint(ctx, finalized); err != nil {
			return errors.Wrap(err, "could not save finalized checkpoint")
		}
		if b, err := f.Block(finalized.Root); err == nil {
			if _, err := s.cfg.BeaconDB.DeleteBlockSummariesBefore(ctx, b.Slot); err != nil {
				return errors.Wrap(err, "could not prune block summaries")
			}
		}
	}
	logCheckpoints(justified, finalized)
	return nil
}
