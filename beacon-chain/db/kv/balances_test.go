package kv

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/forkchoice/testing/assert"
	"github.com/prysmaticlabs/forkchoice/testing/require"
)

func TestStore_Balances(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	_, err := db.Balances(ctx, [32]byte{'a'})
	require.ErrorIs(t, err, ErrNotFoundBalances)

	require.NoError(t, db.SaveBalances(ctx, [32]byte{'a'}, []uint64{32e9, 31e9}))
	b, err := db.Balances(ctx, [32]byte{'a'})
	require.NoError(t, err)
	assert.DeepEqual(t, []uint64{32e9, 31e9}, b)

	// Only the latest justified balances are kept.
	require.NoError(t, db.SaveBalances(ctx, [32]byte{'b'}, []uint64{}))
	_, err = db.Balances(ctx, [32]byte{'a'})
	require.ErrorIs(t, err, ErrNotFoundBalances)
	b, err = db.Balances(ctx, [32]byte{'b'})
	require.NoError(t, err)
	assert.Equal(t, 0, len(b))
}
