// Package iface defines the database interface used by the fork choice
// node, also containing a scoped ReadOnlyDatabase.
package iface

import (
	"context"
	"io"

	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

// ReadOnlyDatabase defines a struct which only has read access to database methods.
type ReadOnlyDatabase interface {
	// Block summary related methods.
	BlockSummaries(ctx context.Context) ([]*forkchoicetypes.BlockAndCheckpoints, error)
	// Checkpoint operations.
	JustifiedCheckpoint(ctx context.Context) (*forkchoicetypes.Checkpoint, error)
	FinalizedCheckpoint(ctx context.Context) (*forkchoicetypes.Checkpoint, error)
	Balances(ctx context.Context, root [32]byte) ([]uint64, error)
}

// NoHeadAccessDatabase defines a struct without access to chain head data.
type NoHeadAccessDatabase interface {
	ReadOnlyDatabase

	SaveBlockSummary(ctx context.Context, bc *forkchoicetypes.BlockAndCheckpoints) error
	SaveExecutionStatus(ctx context.Context, root [32]byte, status forkchoicetypes.ExecutionStatus) error
	DeleteBlockSummariesBefore(ctx context.Context, slot types.Slot) (int, error)
	SaveBalances(ctx context.Context, root [32]byte, balances []uint64) error
}

// HeadAccessDatabase defines a struct with access to the checkpoints fork choice moves.
type HeadAccessDatabase interface {
	NoHeadAccessDatabase

	SaveJustifiedCheckpoint(ctx context.Context, checkpoint *forkchoicetypes.Checkpoint) error
	SaveFinalizedCheckpoint(ctx context.Context, checkpoint *forkchoicetypes.Checkpoint) error
}

// Database interface with full access.
type Database interface {
	io.Closer
	HeadAccessDatabase

	DatabasePath() string
	ClearDB() error
	Backup(ctx context.Context, outputDir string, permissionOverride bool) error
}
