package blockchain

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice"
)

// balancesCache keeps the effective balances of the most recent justified
// states, keyed by justified block root.
type balancesCache struct {
	cache  *lru.Cache
	source forkchoice.BalancesByRooter
}

func newBalancesCache(size int, source forkchoice.BalancesByRooter) (*balancesCache, error) {
	if source == nil {
		return nil, errors.New("nil balances source")
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "could not create balances cache")
	}
	return &balancesCache{cache: cache, source: source}, nil
}

// get returns the balances of the justified state at root, reading through
// to the source on a miss.
func (c *balancesCache) get(ctx context.Context, root [32]byte) ([]uint64, error) {
	if v, ok := c.cache.Get(root); ok {
		balancesCacheHit.Inc()
		return v.([]uint64), nil
	}
	balancesCacheMiss.Inc()
	balances, err := c.source(ctx, root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not get balances for justified root %#x", root)
	}
	c.cache.Add(root, balances)
	return balances, nil
}

// put records balances that are already known, e.g. provided with a block.
func (c *balancesCache) put(root [32]byte, balances []uint64) {
	c.cache.Add(root, balances)
}
