package shardmanager

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// Handlers wires a Manager to an http.ServeMux, following the same
// decode-call-translate shape as shardmaster.Handlers and the teacher's
// cmd/coordinator/main.go handlers.
type Handlers struct {
	Manager *Manager
}

// Register attaches the shardmanager's five endpoints to mux: Ping plus the
// four forwarding RPCs.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ping", h.handlePing)
	mux.HandleFunc("/get", h.handleGet)
	mux.HandleFunc("/put", h.handlePut)
	mux.HandleFunc("/append", h.handleAppend)
	mux.HandleFunc("/delete", h.handleDelete)
}

func (h *Handlers) handlePing(w http.ResponseWriter, r *http.Request) {
	var req kvproto.PingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	resp, err := h.Manager.Ping(req.Server, req.ViewNumber)
	if err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("shardmanager: error encoding ping response: %v", err)
	}
}

func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	var req kvproto.GetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	val, err := h.Manager.Get(r.Context(), req.Key)
	if err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(kvproto.GetResponse{Value: val}); err != nil {
		log.Printf("shardmanager: error encoding get response: %v", err)
	}
}

func (h *Handlers) handlePut(w http.ResponseWriter, r *http.Request) {
	var req kvproto.PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Manager.Put(r.Context(), req.Key, req.Value, req.User); err != nil {
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
	if err := h.Manager.Append(r.Context(), req.Key, req.Data); err != nil {
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
	if err := h.Manager.Delete(r.Context(), req.Key); err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
