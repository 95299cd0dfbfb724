package shardkv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/shardstore/internal/kvproto"
)

func TestBuildKeyServerMapFlattensShards(t *testing.T) {
	cfg := kvproto.QueryResponse{Config: []kvproto.ServerShards{
		{Server: "a", Shards: []kvproto.Shard{{Lower: 0, Upper: 2}}},
		{Server: "b", Shards: []kvproto.Shard{{Lower: 3, Upper: 4}}},
	}}
	m := buildKeyServerMap(cfg)
	assert.Equal(t, "a", m[0])
	assert.Equal(t, "a", m[2])
	assert.Equal(t, "b", m[3])
	assert.Equal(t, "b", m[4])
	assert.Len(t, m, 5)
}

func TestHandOffKeyMovesValueAndDeletesLocally(t *testing.T) {
	var received kvproto.PutRequest
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer target.Close()
	targetAddr := strings.TrimPrefix(target.URL, "http://")

	s := New("a", "shardmanager:9000")
	s.retryBackoff = time.Millisecond
	s.data["user_1"] = "alice"
	s.data[kvproto.AllUsersKey] = "user_1,user_2,"

	s.handOffKey(context.Background(), "user_1", targetAddr, true)

	assert.Equal(t, "user_1", received.Key)
	assert.Equal(t, "alice", received.Value)
	_, stillPresent := s.data["user_1"]
	assert.False(t, stillPresent)
	assert.Equal(t, "user_2,", s.data[kvproto.AllUsersKey])
}

func TestHandOffKeyMissingLocallyIsNoop(t *testing.T) {
	s := New("a", "shardmanager:9000")
	// no data["ghost"] set
	s.handOffKey(context.Background(), "ghost", "b", false)
	_, ok := s.data["ghost"]
	assert.False(t, ok)
}

func TestHandOffKeyLeavesKeyOnExhaustion(t *testing.T) {
	unreachable := "127.0.0.1:1"
	s := New("a", "shardmanager:9000")
	s.retryBackoff = time.Millisecond
	s.maxAttempts = 2
	s.data["user_1"] = "alice"

	s.handOffKey(context.Background(), "user_1", unreachable, true)

	assert.Equal(t, "alice", s.data["user_1"])
}

func TestHandOffIDMovesAllThreeKeys(t *testing.T) {
	var gotKeys []string
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req kvproto.PutRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotKeys = append(gotKeys, req.Key)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer target.Close()
	targetAddr := strings.TrimPrefix(target.URL, "http://")

	s := New("a", "shardmanager:9000")
	s.retryBackoff = time.Millisecond
	s.data["user_1"] = "alice"
	s.data["post_1"] = "hello"
	s.data["user_1_posts"] = "post_1,"

	s.handOffID(context.Background(), 1, targetAddr)

	assert.ElementsMatch(t, []string{"user_1", "post_1", "user_1_posts"}, gotKeys)
	_, userStillLocal := s.data["user_1"]
	_, postStillLocal := s.data["post_1"]
	_, rosterStillLocal := s.data["user_1_posts"]
	assert.False(t, userStillLocal)
	assert.False(t, postStillLocal)
	assert.False(t, rosterStillLocal)
	// all_users is rewritten to its (empty) tail even though it was never
	// populated, since removeFromRosterLocked always records the roster key.
	assert.Equal(t, "", s.data[kvproto.AllUsersKey])
}

func TestReconcileOnceHandsOffKeysNoLongerOwned(t *testing.T) {
	var gotKeys []string
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req kvproto.PutRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotKeys = append(gotKeys, req.Key)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer target.Close()
	targetAddr := strings.TrimPrefix(target.URL, "http://")

	shardmaster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(kvproto.QueryResponse{Config: []kvproto.ServerShards{
			{Server: targetAddr, Shards: []kvproto.Shard{{Lower: 1, Upper: 1}}},
		}})
	}))
	defer shardmaster.Close()
	shardmasterAddr := strings.TrimPrefix(shardmaster.URL, "http://")

	s := New("a", "shardmanager:9000")
	s.retryBackoff = time.Millisecond
	s.shardmasterAddr = shardmasterAddr
	s.keyServerMap[1] = "a" // previously owned locally
	s.data["user_1"] = "alice"
	s.data["post_1"] = "hello"
	s.data["user_1_posts"] = "post_1,"

	s.reconcileOnce(context.Background())

	assert.ElementsMatch(t, []string{"user_1", "post_1", "user_1_posts"}, gotKeys)
	assert.Equal(t, targetAddr, s.keyServerMap[1])
}

func TestReconcileOnceNoShardmasterIsNoop(t *testing.T) {
	s := New("a", "shardmanager:9000")
	s.reconcileOnce(context.Background())
	assert.Empty(t, s.keyServerMap)
}

func TestReconcileOnceRetainsOwnedKeys(t *testing.T) {
	shardmaster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(kvproto.QueryResponse{Config: []kvproto.ServerShards{
			{Server: "a", Shards: []kvproto.Shard{{Lower: 1, Upper: 1}}},
		}})
	}))
	defer shardmaster.Close()
	shardmasterAddr := strings.TrimPrefix(shardmaster.URL, "http://")

	s := New("a", "shardmanager:9000")
	s.shardmasterAddr = shardmasterAddr
	s.keyServerMap[1] = "a"
	s.data["user_1"] = "alice"

	s.reconcileOnce(context.Background())

	assert.Equal(t, "alice", s.data["user_1"])
	assert.Equal(t, "a", s.keyServerMap[1])
}
