package shardmanager

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

// newFakePrimary starts an httptest server implementing the four forwarding
// endpoints against an in-memory map, and returns its bare host:port address
// (clientFor, like the real ShardKVClient, prepends "http://" itself).
func newFakePrimary(t *testing.T) (string, map[string]string) {
	t.Helper()
	data := make(map[string]string)

	mux := http.NewServeMux()
	mux.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
		var req kvproto.GetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		val, ok := data[req.Key]
		if !ok {
			kvproto.WriteFault(w, kvproto.NewFault(kvproto.FaultKeyNotFound))
			return
		}
		_ = json.NewEncoder(w).Encode(kvproto.GetResponse{Value: val})
	})
	mux.HandleFunc("/put", func(w http.ResponseWriter, r *http.Request) {
		var req kvproto.PutRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		data[req.Key] = req.Value
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/append", func(w http.ResponseWriter, r *http.Request) {
		var req kvproto.AppendRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		data[req.Key] += req.Data
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/delete", func(w http.ResponseWriter, r *http.Request) {
		var req kvproto.DeleteRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, ok := data[req.Key]; !ok {
			kvproto.WriteFault(w, kvproto.NewFault(kvproto.FaultNotResponsible))
			return
		}
		delete(data, req.Key)
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://"), data
}

func TestForwardGetNoPrimaryFails(t *testing.T) {
	m := New("shardmaster:9000")
	_, err := m.Get(context.Background(), "user_1")
	require.Error(t, err)
	assert.Equal(t, kvproto.FaultOperationFailed, err.Error())
}

func TestForwardPutNoPrimaryFails(t *testing.T) {
	m := New("shardmaster:9000")
	err := m.Put(context.Background(), "user_1", "alice", "bob")
	require.Error(t, err)
	assert.Equal(t, kvproto.FaultOperationFailed, err.Error())
}

func TestForwardPutGetRoundTrip(t *testing.T) {
	addr, _ := newFakePrimary(t)
	m := New("shardmaster:9000")
	_, err := m.Ping(addr, 0)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Put(ctx, "user_1", "alice", "root"))

	val, err := m.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "alice", val)
}

func TestForwardAppend(t *testing.T) {
	addr, _ := newFakePrimary(t)
	m := New("shardmaster:9000")
	_, err := m.Ping(addr, 0)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Put(ctx, "user_1_posts", "a", "root"))
	require.NoError(t, m.Append(ctx, "user_1_posts", ",b"))

	val, err := m.Get(ctx, "user_1_posts")
	require.NoError(t, err)
	assert.Equal(t, "a,b", val)
}

func TestForwardDeleteUnknownKeyFails(t *testing.T) {
	addr, _ := newFakePrimary(t)
	m := New("shardmaster:9000")
	_, err := m.Ping(addr, 0)
	require.NoError(t, err)

	err = m.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, kvproto.FaultOperationFailed, err.Error())
}

func TestForwardDownstreamFailureTranslatedToOperationFailed(t *testing.T) {
	addr, _ := newFakePrimary(t)
	m := New("shardmaster:9000")
	_, err := m.Ping(addr, 0)
	require.NoError(t, err)

	// user_1 was never Put, so /get returns FaultKeyNotFound upstream; the
	// forwarding layer collapses any downstream error to FaultOperationFailed
	// (spec.md section 4.2).
	_, err = m.Get(context.Background(), "user_1")
	require.Error(t, err)
	assert.Equal(t, kvproto.FaultOperationFailed, err.Error())
}
