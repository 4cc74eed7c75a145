package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/blockchain"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/db"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/protoarray"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/cmd"
	"github.com/prysmaticlabs/forkchoice/cmd/flags"
	"github.com/prysmaticlabs/forkchoice/encoding/bytesutil"
	"github.com/prysmaticlabs/forkchoice/monitoring/backup"
	"github.com/prysmaticlabs/forkchoice/monitoring/prometheus"
	"github.com/prysmaticlabs/forkchoice/runtime"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// forkChoiceNode defines a struct that handles the services running the fork choice store.
type forkChoiceNode struct {
	cliCtx   *cli.Context
	ctx      context.Context
	cancel   context.CancelFunc
	lock     sync.RWMutex
	services *runtime.ServiceRegistry
	db       db.Database
	chain    *blockchain.Service
	stop     chan struct{}
}

// newForkChoiceNode opens the database and registers the blockchain service
// and, unless disabled, the prometheus service.
func newForkChoiceNode(cliCtx *cli.Context) (*forkChoiceNode, error) {
	ctx, cancel := context.WithCancel(cliCtx.Context)
	n := &forkChoiceNode{
		cliCtx:   cliCtx,
		ctx:      ctx,
		cancel:   cancel,
		services: runtime.NewServiceRegistry(),
		stop:     make(chan struct{}),
	}

	beaconDB, err := openDB(ctx, cliCtx)
	if err != nil {
		cancel()
		return nil, err
	}
	n.db = beaconDB

	chain, err := newChainService(ctx, cliCtx, beaconDB)
	if err != nil {
		n.closeDB()
		cancel()
		return nil, err
	}
	n.chain = chain
	if err := n.services.RegisterService(chain); err != nil {
		n.closeDB()
		cancel()
		return nil, err
	}

	if !cliCtx.Bool(cmd.DisableMonitoringFlag.Name) {
		if err := n.registerPrometheusService(); err != nil {
			n.closeDB()
			cancel()
			return nil, err
		}
	}
	return n, nil
}

// Start the node and blocks until it is stopped by a signal or Close.
func (n *forkChoiceNode) Start() {
	n.lock.Lock()
	log.WithField("datadir", n.db.DatabasePath()).Info("Starting fork choice node")
	n.services.StartAll()
	stop := n.stop
	n.lock.Unlock()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Info("Got interrupt, shutting down...")
		go n.Close()
		for i := 10; i > 0; i-- {
			<-sigc
			if i > 1 {
				log.WithField("times", i-1).Info("Already shutting down, interrupt more to panic")
			}
		}
		panic("Panic closing the fork choice node")
	}()

	// Wait for stop channel to be closed.
	<-stop
}

// Close stops all the services and closes the database.
func (n *forkChoiceNode) Close() {
	n.lock.Lock()
	defer n.lock.Unlock()

	log.Info("Stopping fork choice node")
	if err := n.services.StopAll(); err != nil {
		log.WithError(err).Error("Failed to stop services")
	}
	n.closeDB()
	n.cancel()
	close(n.stop)
}

func (n *forkChoiceNode) closeDB() {
	if err := n.db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}
}

func (n *forkChoiceNode) registerPrometheusService() error {
	addr := fmt.Sprintf("%s:%d", n.cliCtx.String(cmd.MonitoringHostFlag.Name), n.cliCtx.Int(cmd.MonitoringPortFlag.Name))
	service := prometheus.NewService(
		addr,
		n.services,
		prometheus.Handler{Path: "/tree", Handler: n.chain.TreeHandler},
		prometheus.Handler{Path: "/db/backup", Handler: backup.Handler(n.db, "")},
	)
	logrus.AddHook(prometheus.NewLogrusCollector())
	return n.services.RegisterService(service)
}

// openDB opens the fork choice database in the data directory, clearing it
// first when --clear-db is set.
func openDB(ctx context.Context, cliCtx *cli.Context) (db.Database, error) {
	dataDir := cliCtx.String(cmd.DataDirFlag.Name)
	if dataDir == "" {
		return nil, errors.New("no data directory, set --datadir")
	}
	d, err := db.NewDB(ctx, dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}
	if !cliCtx.Bool(cmd.ClearDB.Name) {
		return d, nil
	}
	log.Warn("Removing database")
	if err := d.ClearDB(); err != nil {
		return nil, errors.Wrap(err, "could not clear database")
	}
	return db.NewDB(ctx, dataDir)
}

// newChainService builds the blockchain service over a fresh fork choice store.
func newChainService(ctx context.Context, cliCtx *cli.Context, beaconDB db.Database) (*blockchain.Service, error) {
	opts := []blockchain.Option{
		blockchain.WithDatabase(beaconDB),
		blockchain.WithForkChoiceStore(protoarray.New(nil, nil)),
		blockchain.WithPruneThreshold(cliCtx.Uint64(flags.PruneThresholdFlag.Name)),
		blockchain.WithBalanceCacheSize(cliCtx.Int(flags.BalanceCacheSizeFlag.Name)),
	}
	if cliCtx.IsSet(flags.GenesisRootFlag.Name) {
		root, err := parseRoot(cliCtx.String(flags.GenesisRootFlag.Name))
		if err != nil {
			return nil, errors.Wrap(err, "invalid genesis root")
		}
		opts = append(opts, blockchain.WithAnchor(genesisAnchor(root)))
	}
	if cliCtx.IsSet(flags.GenesisTimeFlag.Name) {
		genesis := time.Unix(int64(cliCtx.Uint64(flags.GenesisTimeFlag.Name)), 0)
		opts = append(opts, blockchain.WithClock(blockchain.NewClock(genesis)))
	}
	return blockchain.NewService(ctx, opts...)
}

// genesisAnchor is a pre-merge block at slot 0 with zero checkpoints.
func genesisAnchor(root [32]byte) *forkchoicetypes.BlockAndCheckpoints {
	return &forkchoicetypes.BlockAndCheckpoints{
		Block:               &forkchoicetypes.Block{Root: root},
		JustifiedCheckpoint: &forkchoicetypes.Checkpoint{},
		FinalizedCheckpoint: &forkchoicetypes.Checkpoint{},
		ExecutionStatus:     forkchoicetypes.PreMerge,
	}
}

func parseRoot(s string) ([32]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return [32]byte{}, err
	}
	if len(b) != 32 {
		return [32]byte{}, fmt.Errorf("root is %d bytes, want 32", len(b))
	}
	return bytesutil.ToBytes32(b), nil
}
