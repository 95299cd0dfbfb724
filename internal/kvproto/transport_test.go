package kvproto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GetRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user_1", req.Key)
		assert.NoError(t, json.NewEncoder(w).Encode(GetResponse{Value: "alice"}))
	}))
	defer srv.Close()

	var resp GetResponse
	err := PostJSON(context.Background(), srv.URL, GetRequest{Key: "user_1"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Value)
}

func TestPostJSONFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, FaultKeyNotFound, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := PostJSON(context.Background(), srv.URL, GetRequest{Key: "missing"}, nil)
	require.Error(t, err)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
}

func TestGetJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewEncoder(w).Encode(QueryResponse{Config: []ServerShards{{Server: "a", Shards: []Shard{{Lower: 0, Upper: 9}}}}}))
	}))
	defer srv.Close()

	var resp QueryResponse
	err := GetJSON(context.Background(), srv.URL, &resp)
	require.NoError(t, err)
	require.Len(t, resp.Config, 1)
	assert.Equal(t, "a", resp.Config[0].Server)
}

func TestWriteFault(t *testing.T) {
	w := httptest.NewRecorder()
	WriteFault(w, NewFault(FaultNotResponsible))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), FaultNotResponsible)
}
