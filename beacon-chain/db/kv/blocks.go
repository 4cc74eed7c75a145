package kv

import (
	"context"

	"github.com/pkg/errors"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/encoding/bytesutil"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// summaryKey sorts block summaries by slot, ties broken by root.
func summaryKey(slot types.Slot, root [32]byte) []byte {
	return append(bytesutil.Uint64ToBytesBigEndian(uint64(slot)), root[:]...)
}

// SaveBlockSummary stores the arguments a block was inserted into fork choice with.
func (s *Store) SaveBlockSummary(ctx context.Context, bc *forkchoicetypes.BlockAndCheckpoints) error {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.SaveBlockSummary")
	defer span.End()

	summary, err := NewBlockSummary(bc)
	if err != nil {
		return err
	}
	enc, err := encode(ctx, summary)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(blockSummariesBucket).Put(summaryKey(summary.Slot, summary.Root), enc); err != nil {
			return err
		}
		// A fresh summary supersedes any status reported earlier for the root.
		return tx.Bucket(executionStatusBucket).Delete(summary.Root[:])
	})
}

// SaveExecutionStatus records the latest execution status of a block. Blocks
// marked Invalid are skipped when summaries are read back.
func (s *Store) SaveExecutionStatus(ctx context.Context, root [32]byte, status forkchoicetypes.ExecutionStatus) error {
	_, span := trace.StartSpan(ctx, "BeaconDB.SaveExecutionStatus")
	defer span.End()

	if status > forkchoicetypes.Invalid {
		return errors.Errorf("unknown execution status %d", status)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(executionStatusBucket).Put(root[:], []byte{byte(status)})
	})
}

// BlockSummaries returns every stored block summary in increasing slot order,
// so that parents always come before their children. Invalid blocks are left out.
func (s *Store) BlockSummaries(ctx context.Context) ([]*forkchoicetypes.BlockAndCheckpoints, error) {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.BlockSummaries")
	defer span.End()

	summaries := make([]*forkchoicetypes.BlockAndCheckpoints, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		statuses := tx.Bucket(executionStatusBucket)
		return tx.Bucket(blockSummariesBucket).ForEach(func(k, v []byte) error {
			summary := &BlockSummary{}
			if err := decode(ctx, v, summary); err != nil {
				return errors.Wrapf(err, "could not decode block summary %#x", k)
			}
			if st := statuses.Get(summary.Root[:]); len(st) == 1 {
				summary.ExecutionStatus = forkchoicetypes.ExecutionStatus(st[0])
			}
			if summary.ExecutionStatus == forkchoicetypes.Invalid {
				return nil
			}
			summaries = append(summaries, summary.BlockAndCheckpoints())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// DeleteBlockSummariesBefore removes the summaries of all blocks with a slot
// lower than the given one, together with their execution status.
func (s *Store) DeleteBlockSummariesBefore(ctx context.Context, slot types.Slot) (int, error) {
	_, span := trace.StartSpan(ctx, "BeaconDB.DeleteBlockSummariesBefore")
	defer span.End()

	deleted := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blockSummariesBucket)
		statuses := tx.Bucket(executionStatusBucket)
		var keys [][]byte
		c := bkt.Cursor()
		for k, _ := c.First(); k != nil && bytesutil.BytesToUint64BigEndian(k[:8]) < uint64(slot); k, _ = c.Next() {
			keys = append(keys, bytesutil.SafeCopyBytes(k))
		}
		for _, k := range keys {
			if err := bkt.Delete(k); err != nil {
				return err
			}
			if err := statuses.Delete(k[8:]); err != nil {
				return err
			}
		}
		deleted = len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.WithField("slot", slot).WithField("deleted", deleted).Debug("Pruned block summaries")
	return deleted, nil
}
