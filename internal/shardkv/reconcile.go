package shardkv

import (
	"context"
	"log"
	"time"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// StartReconcile runs the reconcile loop until ctx is canceled or Stop is
// called: every s.reconcileInterval, query the shardmaster and hand off
// any keys this server no longer owns (spec.md section 4.3).
//
// Parameters:
//   - ctx: governs the loop's lifetime alongside Stop; also passed through
//     to each reconcile tick's shardmaster Query and any hand-off RPCs.
//
// Thread-safety: intended to run as a single goroutine per Server; running
// it concurrently with itself or with a second StartHeartbeat call races on
// wg.Add/Done in ways the spec's single-loop-per-role model never needs.
func (s *Server) StartReconcile(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcileOnce(ctx)
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

func (s *Server) reconcileOnce(ctx context.Context) {
	s.mu.Lock()
	shardmasterAddr := s.shardmasterAddr
	isPrimary := s.selfAddr == s.primary
	oldMap := s.keyServerMap
	selfAddr := s.selfAddr
	s.mu.Unlock()

	// "Once the shardmaster address is known or the server is primary":
	// in practice a server only becomes primary after a Ping that also
	// carried the shardmaster address, so this reduces to requiring the
	// address, but the isPrimary clause is kept to match spec.md's wording.
	if shardmasterAddr == "" && !isPrimary {
		return
	}
	if shardmasterAddr == "" {
		return
	}

	cfg, err := kvproto.NewShardmasterClient(shardmasterAddr).Query(ctx)
	if err != nil {
		log.Printf("shardkv %s: reconcile query failed: %v", selfAddr, err)
		return
	}
	newMap := buildKeyServerMap(cfg)

	for id, owner := range oldMap {
		if owner != selfAddr {
			continue
		}
		newOwner, stillKnown := newMap[id]
		if !stillKnown || newOwner == selfAddr {
			continue
		}
		s.handOffID(ctx, id, newOwner)
	}

	s.mu.Lock()
	s.keyServerMap = newMap
	s.mu.Unlock()
}

// buildKeyServerMap flattens a shardmaster configuration into a per-id
// owner lookup.
func buildKeyServerMap(cfg kvproto.QueryResponse) map[int]string {
	m := make(map[int]string)
	for _, cs := range cfg.Config {
		for _, sh := range cs.Shards {
			for id := sh.Lower; id <= sh.Upper; id++ {
				m[id] = cs.Server
			}
		}
	}
	return m
}

// handOffID transfers the three keys naming id (user_K, post_K,
// user_K_posts) to target, one at a time.
func (s *Server) handOffID(ctx context.Context, id int, target string) {
	userKey := kvproto.UserKey(id)
	s.handOffKey(ctx, userKey, target, true)
	s.handOffKey(ctx, kvproto.PostKey(id), target, false)
	s.handOffKey(ctx, kvproto.PostListKey(userKey), target, false)
}

// handOffKey retries Put(key, value) against target up to MAX_SERVER_ATTEMPTS
// with the configured backoff. On success it deletes the key locally and,
// for a user_* record, rewrites all_users to drop it. On exhaustion it
// leaves the key in place for the next reconcile tick (spec.md section
// 4.3: "must not be abandoned permanently").
func (s *Server) handOffKey(ctx context.Context, key, target string, isUserRecord bool) {
	s.mu.Lock()
	value, exists := s.data[key]
	s.mu.Unlock()
	if !exists {
		return
	}

	client := s.clientFor(target)
	ok := s.retryUntilDeadline(ctx, func() error {
		return client.Put(ctx, key, value, "")
	})
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.data, key)
	if isUserRecord {
		s.removeFromRosterLocked(kvproto.AllUsersKey, key)
	}
	s.mu.Unlock()
}
