package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// ReceivePayloadStatus applies the execution engine verdict on the payload of
// block root. A VALID payload validates the block and its ancestors. An
// INVALID one invalidates the block and its ancestors down to the block whose
// payload hash is lastValidHash; the returned error is an invalid block error
// carrying every invalidated root. Invalidating the justified block leaves
// fork choice without a head and marks the service unhealthy, as does a verdict
// that contradicts a previous one.
func (s *Service) ReceivePayloadStatus(ctx context.Context, root, parentRoot [32]byte, valid bool, lastValidHash [32]byte) error {
	ctx, span := trace.StartSpan(ctx, "blockChain.ReceivePayloadStatus")
	defer span.End()

	f := s.cfg.ForkChoiceStore
	if valid {
		if err := f.SetOptimisticToValid(ctx, root); err != nil {
			s.failOnStatusContradiction(err)
			return errors.Wrap(err, "could not set optimistic block to valid")
		}
		if err := s.cfg.BeaconDB.SaveExecutionStatus(ctx, root, forkchoicetypes.Valid); err != nil {
			return errors.Wrap(err, "could not save execution status")
		}
		_, err := s.UpdateHead(ctx)
		return err
	}

	invalidPayloads.Inc()
	invalidRoots, invalidErr := f.SetOptimisticToInvalid(ctx, root, parentRoot, lastValidHash)
	if invalidErr != nil && !errors.Is(invalidErr, forkchoice.ErrJustifiedNodeInvalidated) {
		s.failOnStatusContradiction(invalidErr)
		return errors.Wrap(invalidErr, "could not set optimistic block to invalid")
	}
	for _, r := range invalidRoots {
		if err := s.cfg.BeaconDB.SaveExecutionStatus(ctx, r, forkchoicetypes.Invalid); err != nil {
			return errors.Wrap(err, "could not save execution status")
		}
	}
	if invalidErr != nil {
		s.setFailStatus(invalidErr)
		return invalidBlock{
			error:                errors.Wrap(invalidErr, "execution engine invalidated the justified block"),
			root:                 root,
			invalidAncestorRoots: invalidRoots,
		}
	}
	log.WithFields(logrus.Fields{
		"root":          logRoot(root),
		"lastValidHash": logRoot(lastValidHash),
		"invalidCount":  len(invalidRoots),
	}).Warn("Pruned invalid blocks")

	if _, err := s.UpdateHead(ctx); err != nil {
		return err
	}
	return invalidBlock{
		error:                ErrInvalidPayload,
		root:                 root,
		invalidAncestorRoots: invalidRoots,
	}
}

// failOnStatusContradiction marks the service unhealthy when the execution engine
// flipped a payload between valid and invalid. Fork choice refuses to compute a
// head from then on.
func (s *Service) failOnStatusContradiction(err error) {
	if errors.Is(err, forkchoice.ErrInvalidOptimisticStatus) {
		log.WithError(err).Error("Execution engine contradicted a previous payload status")
		s.setFailStatus(err)
	}
}
