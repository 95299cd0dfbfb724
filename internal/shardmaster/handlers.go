package shardmaster

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// Handlers wires a Master to an http.ServeMux, following the teacher's
// handler-per-endpoint shape (cmd/coordinator/main.go's handleRegister,
// handleListNodes, etc.): decode the JSON body, call the guarded method,
// translate errors to the single INVALID_ARGUMENT-equivalent status.
type Handlers struct {
	Master *Master
}

// Register attaches the four shardmaster endpoints to mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/join", h.handleJoin)
	mux.HandleFunc("/leave", h.handleLeave)
	mux.HandleFunc("/move", h.handleMove)
	mux.HandleFunc("/query", h.handleQuery)
}

func (h *Handlers) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req kvproto.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Master.Join(req.Server); err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req kvproto.LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Master.Leave(req.Servers); err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleMove(w http.ResponseWriter, r *http.Request) {
	var req kvproto.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Master.Move(req.Server, req.Shard); err != nil {
		kvproto.WriteFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleQuery(w http.ResponseWriter, _ *http.Request) {
	resp := h.Master.Query()
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("shardmaster: error encoding query response: %v", err)
	}
}
