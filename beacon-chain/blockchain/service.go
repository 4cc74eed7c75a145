// Package blockchain defines the service feeding blocks, attestations and
// execution payload statuses into fork choice, persisting what is needed to
// rebuild fork choice after a restart.
package blockchain

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/async"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/db"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/time/slots"
	"go.opencensus.io/trace"
)

const defaultBalanceCacheSize = 4

// Service represents a service that handles the internal
// logic of managing the fork choice view of the beacon chain.
type Service struct {
	cfg            *config
	ctx            context.Context
	cancel         context.CancelFunc
	clock          Clock
	balancesCache  *balancesCache
	headLock       sync.RWMutex
	headRoot       [32]byte
	started        chan struct{}
	startOnce      sync.Once
	failStatus     error
	failStatusLock sync.RWMutex
}

// config options for the service.
type config struct {
	BeaconDB         db.HeadAccessDatabase
	ForkChoiceStore  forkchoice.ForkChoicer
	Anchor           *forkchoicetypes.BlockAndCheckpoints
	BalancesByRoot   forkchoice.BalancesByRooter
	BalanceCacheSize int
	PruneThreshold   uint64
}

// NewService instantiates a new block service instance that will
// be registered into a running node.
func NewService(ctx context.Context, opts ...Option) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	srv := &Service{
		ctx:     ctx,
		cancel:  cancel,
		started: make(chan struct{}),
		cfg:     &config{BalanceCacheSize: defaultBalanceCacheSize},
	}
	for _, opt := range opts {
		if err := opt(srv); err != nil {
			cancel()
			return nil, err
		}
	}
	if srv.cfg.ForkChoiceStore == nil {
		cancel()
		return nil, errNilForkChoice
	}
	if srv.cfg.BeaconDB == nil {
		cancel()
		return nil, errNilDatabase
	}
	source := srv.cfg.BalancesByRoot
	if source == nil {
		source = srv.cfg.BeaconDB.Balances
	}
	cache, err := newBalancesCache(srv.cfg.BalanceCacheSize, source)
	if err != nil {
		cancel()
		return nil, err
	}
	srv.balancesCache = cache
	srv.cfg.ForkChoiceStore.SetPruneThreshold(srv.cfg.PruneThreshold)
	if srv.clock != nil {
		srv.cfg.ForkChoiceStore.SetGenesisTime(uint64(srv.clock.GenesisTime().Unix()))
	}
	return srv, nil
}

// Start rebuilds fork choice from the database and, when a clock is set,
// advances fork choice on every slot.
func (s *Service) Start() {
	if err := s.StartFromDB(s.ctx); err != nil {
		log.WithError(err).Error("Could not rebuild fork choice from database")
		s.setFailStatus(err)
		return
	}
	async.RunEvery(s.ctx, epochDuration(), s.reportStatus)
	if s.clock == nil {
		return
	}
	ticker := slots.NewSlotTicker(s.clock.GenesisTime(), params.BeaconConfig().SecondsPerSlot)
	go s.runSlotTicker(ticker)
}

// StartFromDB replays the persisted block summaries into fork choice and
// computes the first head. It runs once; later calls return immediately.
func (s *Service) StartFromDB(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		err = s.replay(ctx)
		if err == nil {
			close(s.started)
		}
	})
	return err
}

func (s *Service) runSlotTicker(ticker slots.Ticker) {
	defer ticker.Done()
	for {
		select {
		case <-s.ctx.Done():
			log.Debug("Context closed, exiting slot ticker")
			return
		case slot := <-ticker.C():
			if err := s.onSlot(s.ctx, slot); err != nil {
				log.WithError(err).WithField("slot", slot).Error("Could not process new slot")
			}
		}
	}
}

// onSlot advances fork choice to the slot, persists the checkpoints it may
// have moved and updates the head.
func (s *Service) onSlot(ctx context.Context, slot types.Slot) error {
	ctx, span := trace.StartSpan(ctx, "blockChain.onSlot")
	defer span.End()

	f := s.cfg.ForkChoiceStore
	prevFinalized := f.FinalizedCheckpoint()
	prevJustified := f.JustifiedCheckpoint()
	if err := f.NewSlot(ctx, slot); err != nil {
		return errors.Wrap(err, "could not advance fork choice")
	}
	if err := s.saveCheckpoints(ctx, prevJustified, prevFinalized); err != nil {
		return err
	}
	_, err := s.UpdateHead(ctx)
	return err
}

// Stop the blockchain service's main event loop and associated goroutines.
func (s *Service) Stop() error {
	defer s.cancel()
	log.Info("Stopping service")
	return nil
}

// Status always returns nil unless there is an error condition that causes
// this service to be unhealthy.
func (s *Service) Status() error {
	s.failStatusLock.RLock()
	defer s.failStatusLock.RUnlock()
	if s.failStatus != nil {
		return s.failStatus
	}
	return nil
}

func (s *Service) setFailStatus(err error) {
	s.failStatusLock.Lock()
	defer s.failStatusLock.Unlock()
	s.failStatus = err
}

// ForkChoicer returns the fork choice store the service feeds.
func (s *Service) ForkChoicer() forkchoice.ForkChoicer {
	return s.cfg.ForkChoiceStore
}

// WaitForStart blocks until the database replay finished or the context is done.
func (s *Service) WaitForStart(ctx context.Context) error {
	select {
	case <-s.started:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// currentSlot returns the clock slot, or the fork choice slot without a clock.
func (s *Service) currentSlot() types.Slot {
	if s.clock == nil {
		return s.cfg.ForkChoiceStore.CurrentSlot()
	}
	return s.clock.CurrentSlot()
}
