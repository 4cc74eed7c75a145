package blockchain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/protoarray"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/testing/assert"
	"github.com/prysmaticlabs/forkchoice/testing/require"
)

func TestTreeGraph(t *testing.T) {
	ctx := context.Background()
	s, _ := setupService(t)
	a, b := [32]byte{'a'}, [32]byte{'b'}
	require.NoError(t, s.ReceiveBlock(ctx, blockAt(1, a, genesisRoot, forkchoicetypes.Syncing), nil))
	require.NoError(t, s.ReceiveBlock(ctx, blockAt(1, b, genesisRoot, forkchoicetypes.Syncing), nil))

	graph, err := s.TreeGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, strings.HasPrefix(graph, "digraph"))
	for _, r := range [][32]byte{genesisRoot, a, b} {
		assert.Equal(t, true, strings.Contains(graph, logRoot(r)))
	}
	assert.Equal(t, true, strings.Contains(graph, "execution: syncing"))
	assert.Equal(t, true, strings.Contains(graph, "green"))
}

func TestTreeHandler(t *testing.T) {
	ctx := context.Background()
	beaconDB := setupDB(t, t.TempDir())
	s, err := NewService(ctx,
		WithDatabase(beaconDB),
		WithForkChoiceStore(protoarray.New(nil, nil)),
		WithAnchor(blockAt(0, genesisRoot, [32]byte{}, forkchoicetypes.PreMerge)),
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.TreeHandler(rec, httptest.NewRequest(http.MethodGet, "/tree", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, s.StartFromDB(ctx))
	rec = httptest.NewRecorder()
	s.TreeHandler(rec, httptest.NewRequest(http.MethodGet, "/tree", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, true, strings.Contains(rec.Body.String(), logRoot(genesisRoot)))
}
