package kv

import (
	"context"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// ErrNotFoundBalances is returned when no balances were saved for a justified root.
var ErrNotFoundBalances = errors.New("no balances saved for root")

// Balances returns the effective balances of the justified state with the given root.
func (s *Store) Balances(ctx context.Context, root [32]byte) ([]uint64, error) {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.Balances")
	defer span.End()

	var balances balanceList
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(balancesBucket).Get(root[:])
		if enc == nil {
			return errors.Wrapf(ErrNotFoundBalances, "%#x", root)
		}
		return decode(ctx, enc, &balances)
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// SaveBalances stores the effective balances of the justified state with the
// given root. Balances of any other root are dropped, only the latest
// justified balances are kept.
func (s *Store) SaveBalances(ctx context.Context, root [32]byte, balances []uint64) error {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.SaveBalances")
	defer span.End()

	list := balanceList(balances)
	enc, err := encode(ctx, &list)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(balancesBucket)
		var stale [][]byte
		if err := bkt.ForEach(func(k, _ []byte) error {
			stale = append(stale, k)
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := bkt.Delete(k); err != nil {
				return err
			}
		}
		return bkt.Put(root[:], enc)
	})
}
