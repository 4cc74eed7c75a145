package blockchain

import (
	"context"

	"github.com/pkg/errors"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"
)

// replay rebuilds fork choice from the database. The finalized block, or the
// configured anchor on an empty database, is inserted first; the remaining
// summaries follow in slot order. Summaries whose parent is unknown were left
// behind by pruning and are skipped, as are blocks fork choice rejects.
func (s *Service) replay(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "blockChain.replay")
	defer span.End()

	var (
		summaries []*forkchoicetypes.BlockAndCheckpoints
		justified *forkchoicetypes.Checkpoint
		finalized *forkchoicetypes.Checkpoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summaries, err = s.cfg.BeaconDB.BlockSummaries(gctx)
		return errors.Wrap(err, "could not read block summaries")
	})
	g.Go(func() error {
		var err error
		justified, err = s.cfg.BeaconDB.JustifiedCheckpoint(gctx)
		return errors.Wrap(err, "could not read justified checkpoint")
	})
	g.Go(func() error {
		var err error
		finalized, err = s.cfg.BeaconDB.FinalizedCheckpoint(gctx)
		return errors.Wrap(err, "could not read finalized checkpoint")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	f := s.cfg.ForkChoiceStore
	if len(summaries) == 0 {
		if s.cfg.Anchor == nil {
			return errNoAnchor
		}
		if err := s.cfg.BeaconDB.SaveBlockSummary(ctx, s.cfg.Anchor); err != nil {
			return errors.Wrap(err, "could not save anchor block")
		}
		summaries = []*forkchoicetypes.BlockAndCheckpoints{s.cfg.Anchor}
	}

	anchor, rest := splitAnchor(summaries, finalized)
	f.SetOriginRoot(anchor.Block.Root)
	if err := f.InsertNode(ctx, anchor); err != nil {
		return errors.Wrap(err, "could not insert anchor block")
	}
	skipped := 0
	for _, bc := range rest {
		if !f.HasNode(bc.Block.ParentRoot) {
			skipped++
			continue
		}
		if err := f.InsertNode(ctx, bc); err != nil {
			log.WithError(err).WithField("root", logRoot(bc.Block.Root)).Warn("Could not replay block")
			skipped++
		}
	}

	// The store may have advanced past what the summaries carry.
	if justified.Epoch > f.JustifiedCheckpoint().Epoch && f.HasNode(justified.Root) {
		if err := f.UpdateJustifiedCheckpoint(justified); err != nil {
			return err
		}
	}
	if finalized.Epoch > f.FinalizedCheckpoint().Epoch && f.HasNode(finalized.Root) {
		if err := f.UpdateFinalizedCheckpoint(finalized); err != nil {
			return err
		}
	}
	if s.clock != nil {
		if err := f.NewSlot(ctx, s.clock.CurrentSlot()); err != nil {
			return errors.Wrap(err, "could not advance fork choice to the current slot")
		}
	}

	head, err := s.UpdateHead(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"anchorSlot": anchor.Block.Slot,
		"anchorRoot": logRoot(anchor.Block.Root),
		"nodes":      f.NodeCount(),
		"skipped":    skipped,
		"head":       logRoot(head),
	}).Info("Rebuilt fork choice from database")
	return nil
}

// splitAnchor returns the summary of the finalized block and every summary
// that comes after it. Without a known finalized block the first summary is
// the anchor.
func splitAnchor(summaries []*forkchoicetypes.BlockAndCheckpoints, finalized *forkchoicetypes.Checkpoint) (*forkchoicetypes.BlockAndCheckpoints, []*forkchoicetypes.BlockAndCheckpoints) {
	if finalized != nil && finalized.Root != params.BeaconConfig().ZeroHash {
		for i, bc := range summaries {
			if bc.Block.Root != finalized.Root {
				continue
			}
			rest := make([]*forkchoicetypes.BlockAndCheckpoints, 0, len(summaries)-1)
			for j, other := range summaries {
				if j != i && other.Block.Slot > bc.Block.Slot {
					rest = append(rest, other)
				}
			}
			return bc, rest
		}
	}
	return summaries[0], summaries[1:]
}
