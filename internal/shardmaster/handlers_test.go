package shardmaster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardstore/internal/kvproto"
)

func newTestServer(t *testing.T, keyUniverse int) (*httptest.Server, *kvproto.ShardmasterClient) {
	t.Helper()
	h := &Handlers{Master: New(keyUniverse)}
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	addr := strings.TrimPrefix(srv.URL, "http://")
	return srv, kvproto.NewShardmasterClient(addr)
}

func TestHandlersJoinAndQuery(t *testing.T) {
	_, client := newTestServer(t, 100)
	ctx := context.Background()

	require.NoError(t, client.Join(ctx, "a"))
	require.NoError(t, client.Join(ctx, "b"))

	cfg, err := client.Query(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.Config, 2)
}

func TestHandlersJoinDuplicateReturnsFault(t *testing.T) {
	_, client := newTestServer(t, 100)
	ctx := context.Background()

	require.NoError(t, client.Join(ctx, "a"))
	err := client.Join(ctx, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), kvproto.FaultDuplicateJoin)
}

func TestHandlersLeave(t *testing.T) {
	_, client := newTestServer(t, 100)
	ctx := context.Background()

	require.NoError(t, client.Join(ctx, "a"))
	require.NoError(t, client.Join(ctx, "b"))
	require.NoError(t, client.Leave(ctx, []string{"b"}))

	cfg, err := client.Query(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.Config, 1)
	assert.Equal(t, "a", cfg.Config[0].Server)
}

func TestHandlersMove(t *testing.T) {
	_, client := newTestServer(t, 100)
	ctx := context.Background()

	require.NoError(t, client.Join(ctx, "a"))
	require.NoError(t, client.Join(ctx, "b"))
	require.NoError(t, client.Move(ctx, "a", kvproto.Shard{Lower: 0, Upper: 10}))

	cfg, err := client.Query(ctx)
	require.NoError(t, err)
	for _, cs := range cfg.Config {
		if cs.Server == "a" {
			assert.Contains(t, cs.Shards, kvproto.Shard{Lower: 0, Upper: 10})
		}
	}
}
