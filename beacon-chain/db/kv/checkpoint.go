package kv

import (
	"context"

	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// JustifiedCheckpoint returns the latest justified checkpoint saved by fork choice.
func (s *Store) JustifiedCheckpoint(ctx context.Context) (*forkchoicetypes.Checkpoint, error) {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.JustifiedCheckpoint")
	defer span.End()
	return s.checkpoint(ctx, justifiedCheckpointKey)
}

// FinalizedCheckpoint returns the latest finalized checkpoint saved by fork choice.
func (s *Store) FinalizedCheckpoint(ctx context.Context) (*forkchoicetypes.Checkpoint, error) {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.FinalizedCheckpoint")
	defer span.End()
	return s.checkpoint(ctx, finalizedCheckpointKey)
}

// SaveJustifiedCheckpoint saves justified checkpoint in db.
func (s *Store) SaveJustifiedCheckpoint(ctx context.Context, checkpoint *forkchoicetypes.Checkpoint) error {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.SaveJustifiedCheckpoint")
	defer span.End()
	return s.saveCheckpoint(ctx, justifiedCheckpointKey, checkpoint)
}

// SaveFinalizedCheckpoint saves the finalized checkpoint. Block summaries
// below the start of the finalized epoch are not removed here, see
// DeleteBlockSummariesBefore.
func (s *Store) SaveFinalizedCheckpoint(ctx context.Context, checkpoint *forkchoicetypes.Checkpoint) error {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.SaveFinalizedCheckpoint")
	defer span.End()
	return s.saveCheckpoint(ctx, finalizedCheckpointKey, checkpoint)
}

// A missing checkpoint reads as epoch 0 at the zero hash.
func (s *Store) checkpoint(ctx context.Context, key []byte) (*forkchoicetypes.Checkpoint, error) {
	var checkpoint *forkchoicetypes.Checkpoint
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(checkpointBucket).Get(key)
		if enc == nil {
			checkpoint = &forkchoicetypes.Checkpoint{Root: params.BeaconConfig().ZeroHash}
			return nil
		}
		cs := &checkpointSummary{}
		if err := decode(ctx, enc, cs); err != nil {
			return err
		}
		checkpoint = (*forkchoicetypes.Checkpoint)(cs)
		return nil
	})
	return checkpoint, err
}

func (s *Store) saveCheckpoint(ctx context.Context, key []byte, checkpoint *forkchoicetypes.Checkpoint) error {
	enc, err := encode(ctx, (*checkpointSummary)(checkpoint))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(checkpointBucket).Put(key, enc)
	})
}
