package blockchain

import (
	"github.com/prysmaticlabs/forkchoice/beacon-chain/db"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
)

// Option configures the blockchain service.
type Option func(s *Service) error

// WithDatabase for block summary and checkpoint persistence.
func WithDatabase(beaconDB db.HeadAccessDatabase) Option {
	return func(s *Service) error {
		s.cfg.BeaconDB = beaconDB
		return nil
	}
}

// WithForkChoiceStore to update an optimistic status.
func WithForkChoiceStore(f forkchoice.ForkChoicer) Option {
	return func(s *Service) error {
		s.cfg.ForkChoiceStore = f
		return nil
	}
}

// WithClock sets the slot clock of the service.
func WithClock(c Clock) Option {
	return func(s *Service) error {
		s.clock = c
		return nil
	}
}

// WithAnchor sets the block fork choice starts from when the database is empty.
func WithAnchor(bc *forkchoicetypes.BlockAndCheckpoints) Option {
	return func(s *Service) error {
		if bc == nil || bc.Block == nil {
			return errNilBlock
		}
		s.cfg.Anchor = bc
		return nil
	}
}

// WithBalancesByRoot sets where justified balances are read from when they are
// not cached. The database is used when unset.
func WithBalancesByRoot(fn forkchoice.BalancesByRooter) Option {
	return func(s *Service) error {
		s.cfg.BalancesByRoot = fn
		return nil
	}
}

// WithBalanceCacheSize sets the number of justified balance lists kept in memory.
func WithBalanceCacheSize(size int) Option {
	return func(s *Service) error {
		s.cfg.BalanceCacheSize = size
		return nil
	}
}

// WithPruneThreshold sets the fork choice prune threshold.
func WithPruneThreshold(threshold uint64) Option {
	return func(s *Service) error {
		s.cfg.PruneThreshold = threshold
		return nil
	}
}
