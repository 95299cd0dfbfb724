package shardkv

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// Handlers wires a Server to an http.ServeMux: the same decode-call-
// translate shape used by shardmaster.Handlers and shardmanager.Handlers.
type Handlers struct {
	Server *Server
}

// Register attaches the storage server's five endpoints to mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/get", h.handleGet)
	mux.HandleFunc("/put", h.handlePut)
	mux.HandleFunc("/append", h.handleAppend)
	mux.HandleFunc("/delete", h.handleDelete)
	mux.HandleFunc("/dump", h.handleDump)
}

func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	var req kvproto.GetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	val, err := h.Server.Get(r.Context(), req.Key)
	if err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(kvproto.GetResponse{Value: val}); err != nil {
		log.Printf("shardkv: error encoding get response: %v", err)
	}
}

func (h *Handlers) handlePut(w http.ResponseWriter, r *http.Request) {
	var req kvproto.PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Server.Put(r.Context(), req.Key, req.Value, req.User); err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleAppend(w http.ResponseWriter, r *http.Request) {
	var req kvproto.AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Server.Append(r.Context(), req.Key, req.Data); err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req kvproto.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Server.Delete(r.Context(), req.Key); err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleDump(w http.ResponseWriter, r *http.Request) {
	db, err := h.Server.Dump(r.Context())
	if err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(kvproto.DumpResponse{Database: db}); err != nil {
		log.Printf("shardkv: error encoding dump response: %v", err)
	}
}
