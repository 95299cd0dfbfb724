package shardkv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardstore/internal/kvproto"
)

func newFakeShardmanager(t *testing.T, resp kvproto.PingResponse) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestHeartbeatOnceAbsorbsViewState(t *testing.T) {
	shardmanagerAddr := newFakeShardmanager(t, kvproto.PingResponse{
		ViewNumber:  3,
		Primary:     "a",
		Backup:      "b",
		Shardmaster: "", // not yet learned
	})

	s := New("a", shardmanagerAddr)
	s.heartbeatOnce(context.Background())

	assert.Equal(t, "a", s.primary)
	assert.Equal(t, "b", s.backup)
	assert.Equal(t, int64(3), s.currentAcknowledgedViewNumber)
	assert.False(t, s.seenShardmaster)
}

func TestHeartbeatOnceTriggersColdStartOnFirstShardmaster(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(kvproto.DumpResponse{Database: map[string]string{"user_1": "alice"}})
	}))
	defer primary.Close()
	primaryAddr := strings.TrimPrefix(primary.URL, "http://")

	shardmanagerAddr := newFakeShardmanager(t, kvproto.PingResponse{
		ViewNumber:  1,
		Primary:     primaryAddr,
		Backup:      "b",
		Shardmaster: "shardmaster:9000",
	})

	s := New("b", shardmanagerAddr)
	s.heartbeatOnce(context.Background())

	require.True(t, s.seenShardmaster)
	assert.Equal(t, "shardmaster:9000", s.shardmasterAddr)
	// The cold-start dump from primaryAddr merges synchronously into s.data.
	assert.Equal(t, "alice", s.data["user_1"])
}

func TestHeartbeatOnceSkipsColdStartWhenPrimary(t *testing.T) {
	shardmanagerAddr := newFakeShardmanager(t, kvproto.PingResponse{
		ViewNumber:  1,
		Primary:     "a",
		Backup:      "",
		Shardmaster: "shardmaster:9000",
	})

	s := New("a", shardmanagerAddr)
	s.heartbeatOnce(context.Background())

	assert.True(t, s.seenShardmaster)
	assert.Empty(t, s.data) // no dump attempted; self is primary
}

func TestHeartbeatOnceIgnoresPingFailure(t *testing.T) {
	s := New("a", "127.0.0.1:1") // nothing listening
	s.primary = "stale-primary"
	s.heartbeatOnce(context.Background())
	// State is left untouched on a failed ping.
	assert.Equal(t, "stale-primary", s.primary)
}
