package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/config/params"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// UpdateHead recomputes the fork choice head with the balances of the
// current justified state and caches it.
func (s *Service) UpdateHead(ctx context.Context) ([32]byte, error) {
	ctx, span := trace.StartSpan(ctx, "blockChain.UpdateHead")
	defer span.End()

	f := s.cfg.ForkChoiceStore
	jRoot := f.JustifiedCheckpoint().Root
	balances, err := s.justifiedBalances(ctx, jRoot)
	if err != nil {
		return [32]byte{}, err
	}
	newHead, err := f.Head(ctx, balances)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute head")
	}

	s.headLock.Lock()
	oldHead := s.headRoot
	s.headRoot = newHead
	s.headLock.Unlock()

	if oldHead != newHead {
		b, err := f.Block(newHead)
		if err != nil {
			return [32]byte{}, err
		}
		headSlot.Set(float64(b.Slot))
		log.WithFields(logrus.Fields{
			"oldHead":   logRoot(oldHead),
			"newHead":   logRoot(newHead),
			"slot":      b.Slot,
			"weight":    b.Weight,
			"execution": b.ExecutionStatus.String(),
		}).Debug("Head changed")
	}
	return newHead, nil
}

// HeadRoot returns the head computed by the last UpdateHead call.
func (s *Service) HeadRoot() [32]byte {
	s.headLock.RLock()
	defer s.headLock.RUnlock()
	return s.headRoot
}

// justifiedBalances returns the balances of the justified state. Before any
// checkpoint got justified there are no votes to weigh, so the zero root maps
// to the balances saved for the origin, if any.
func (s *Service) justifiedBalances(ctx context.Context, root [32]byte) ([]uint64, error) {
	balances, err := s.balancesCache.get(ctx, root)
	if err != nil && root == params.BeaconConfig().ZeroHash {
		return []uint64{}, nil
	}
	return balances, err
}
