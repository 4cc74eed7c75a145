package blockchain

import (
	"context"

	"github.com/pkg/errors"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"go.opencensus.io/trace"
)

// ReceiveBlock is a function that defines the operations that are performed on
// a block whose state transition already succeeded:
//  1. Insert the block into fork choice
//  2. Persist the block summary so fork choice can be rebuilt after a restart, and
//     boost the block when it arrived on time
//  3. Apply the attestations the block carries
//  4. Persist the checkpoints fork choice moved to and update the head
func (s *Service) ReceiveBlock(ctx context.Context, bc *forkchoicetypes.BlockAndCheckpoints, atts []*forkchoicetypes.IndexedAttestation) error {
	ctx, span := trace.StartSpan(ctx, "blockChain.ReceiveBlock")
	defer span.End()

	if bc == nil || bc.Block == nil {
		return errNilBlock
	}
	f := s.cfg.ForkChoiceStore
	prevJustified := f.JustifiedCheckpoint()
	prevFinalized := f.FinalizedCheckpoint()

	if err := f.InsertNode(ctx, bc); err != nil {
		return errors.Wrapf(err, "could not insert block %s into fork choice", logRoot(bc.Block.Root))
	}
	if err := s.cfg.BeaconDB.SaveBlockSummary(ctx, bc); err != nil {
		return errors.Wrap(err, "could not save block summary")
	}
	receivedBlocks.Inc()
	logBlockInserted(bc.Block, bc.ExecutionStatus)

	if s.clock != nil {
		args := &forkchoicetypes.BoostProposerRootArgs{
			BlockRoot:       bc.Block.Root,
			BlockSlot:       bc.Block.Slot,
			CurrentSlot:     s.clock.CurrentSlot(),
			SecondsIntoSlot: s.clock.SecondsIntoSlot(),
		}
		if err := f.BoostProposerRoot(ctx, args); err != nil {
			return errors.Wrap(err, "could not boost proposer root")
		}
	}

	for _, att := range atts {
		if err := f.OnAttestation(ctx, att, true); err != nil {
			// Block attestations were verified with the block, a failure here is a bug.
			log.WithError(err).WithField("root", logRoot(bc.Block.Root)).Warn("Could not apply block attestation")
		}
	}

	if err := s.saveCheckpoints(ctx, prevJustified, prevFinalized); err != nil {
		return err
	}
	_, err := s.UpdateHead(ctx)
	return err
}

// ReceiveJustifiedBalances records the effective balances of the justified
// state with the given block root.
func (s *Service) ReceiveJustifiedBalances(ctx context.Context, root [32]byte, balances []uint64) error {
	ctx, span := trace.StartSpan(ctx, "blockChain.ReceiveJustifiedBalances")
	defer span.End()

	if err := s.cfg.BeaconDB.SaveBalances(ctx, root, balances); err != nil {
		return errors.Wrap(err, "could not save justified balances")
	}
	s.balancesCache.put(root, balances)
	return nil
}

// ReceiveAttesterSlashing removes the weight of the slashed validators from fork choice.
func (s *Service) ReceiveAttesterSlashing(ctx context.Context, indices []uint64) {
	ctx, span := trace.StartSpan(ctx, "blockChain.ReceiveAttesterSlashing")
	defer span.End()

	for _, idx := range indices {
		s.cfg.ForkChoiceStore.InsertSlashedIndex(ctx, types.ValidatorIndex(idx))
	}
}
