package shardkv

import (
	"context"
	"log"
	"time"
)

// StartHeartbeat runs the heartbeat loop until ctx is canceled or Stop is
// called: every s.heartbeatInterval, Ping the shardmanager with
// (self, currentAcknowledgedViewNumber) and absorb the response (spec.md
// section 4.3). The first time the shardmaster address is learned, and if
// this server is not the primary of the current view, it synchronously
// Dumps the current primary for a cold-start snapshot.
//
// Parameters:
//   - ctx: governs the loop's lifetime alongside Stop; canceling it returns
//     without closing stopCh, and also aborts any in-flight Ping/Dump call.
//
// Thread-safety: intended to run as a single goroutine per Server; see
// StartReconcile for why running either loop twice is unsupported.
//
// Example:
//
//	srv := shardkv.New(selfAddr, shardmanagerAddr)
//	ctx, cancel := context.WithCancel(context.Background())
//	go srv.StartHeartbeat(ctx)
//	defer cancel()
func (s *Server) StartHeartbeat(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	for {
		s.heartbeatOnce(ctx)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

func (s *Server) heartbeatOnce(ctx context.Context) {
	client := s.clientFor(s.shardmanagerAddr)

	s.mu.Lock()
	ack := s.currentAcknowledgedViewNumber
	s.mu.Unlock()

	resp, err := client.Ping(ctx, s.selfAddr, ack)
	if err != nil {
		log.Printf("shardkv %s: heartbeat ping failed: %v", s.selfAddr, err)
		return
	}

	s.mu.Lock()
	s.primary = resp.Primary
	s.backup = resp.Backup
	s.currentAcknowledgedViewNumber = resp.ViewNumber
	firstShardmaster := !s.seenShardmaster && resp.Shardmaster != ""
	if resp.Shardmaster != "" {
		s.shardmasterAddr = resp.Shardmaster
		s.seenShardmaster = true
	}
	notPrimary := resp.Primary != s.selfAddr
	primaryAddr := resp.Primary
	s.mu.Unlock()

	if firstShardmaster && notPrimary && primaryAddr != "" {
		s.coldStart(ctx, primaryAddr)
	}
}

// coldStart pulls the full key-value map from primaryAddr and merges it
// into local state (spec.md section 4.3, "backup cold-start snapshot").
func (s *Server) coldStart(ctx context.Context, primaryAddr string) {
	snapshot, err := s.clientFor(primaryAddr).Dump(ctx)
	if err != nil {
		log.Printf("shardkv %s: cold-start dump from %s failed: %v", s.selfAddr, primaryAddr, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range snapshot {
		s.data[k] = v
	}
}

