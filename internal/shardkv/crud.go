package shardkv

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// Get returns the value stored at key, or MissingKey if absent. No
// ownership check: reads arrive via the shardmanager, which routes to the
// primary, so a primary that doesn't own the key simply won't have it
// (spec.md section 4.3).
//
// Parameters:
//   - key: looked up verbatim against the local map, no key-kind branching.
//
// Returns:
//   - string: the stored value.
//   - error: a *kvproto.Fault wrapping FaultKeyNotFound if key is absent
//     locally; nil otherwise.
//
// Thread-safety: safe for concurrent use; acquires mu for the lookup.
func (s *Server) Get(_ context.Context, key string) (string, error) {
	atomic.AddUint64(&s.stats.Gets, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", kvproto.NewFault(kvproto.FaultKeyNotFound)
	}
	return v, nil
}

// Put stores value at key, enforcing the ownership check and the
// key-kind-specific roster bookkeeping of spec.md section 4.3, then
// replicates to the backup if this server is the current primary.
//
// Local storage is applied before backup replication is attempted, so a
// replication failure never rolls back an already-applied local write
// (spec.md section 9, open question 1: roll-forward is the chosen policy).
//
// Parameters:
//   - key: the record/roster key to write; its own trailing id (not user's)
//     gates the ownership check.
//   - value: stored verbatim at key.
//   - user: for a post key, identifies whose post-list roster gets key
//     appended; ignored for non-post keys.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultNotResponsible if this server
//     does not own key's id, or if a post key's owning user's id resolves
//     to no known server; the last attempt's error (or ctx's error) if
//     every fan-out Append to the owning user's server fails;
//     FaultOperationFailed if backup replication fails; nil otherwise.
//
// Thread-safety: safe for concurrent use. The local map mutation and
// ownership check happen under mu; the fan-out RPC and backup replication
// happen after mu is released, so a slow peer cannot block other local
// Get/Put/Append/Delete calls.
func (s *Server) Put(ctx context.Context, key, value, user string) error {
	atomic.AddUint64(&s.stats.Puts, 1)

	s.mu.Lock()
	id, idOK := kvproto.ExtractID(key)
	if !idOK || s.keyServerMap[id] != s.selfAddr {
		s.mu.Unlock()
		return kvproto.NewFault(kvproto.FaultNotResponsible)
	}

	var needFanout bool
	var postListKey, fanoutTarget string

	switch {
	case !kvproto.IsPostKey(key):
		s.data[kvproto.AllUsersKey] = s.data[kvproto.AllUsersKey] + key + ","
		s.data[key] = value

	case user == "":
		s.data[key] = value

	default:
		postListKey = kvproto.PostListKey(user)
		userID, uOK := kvproto.ExtractID(user)
		if uOK && s.keyServerMap[userID] == s.selfAddr {
			s.data[postListKey] = s.data[postListKey] + key + ","
		} else {
			needFanout = true
			fanoutTarget = s.keyServerMap[userID]
		}
		s.postUserMap[key] = user
		s.data[key] = value
	}

	isPrimary := s.selfAddr == s.primary
	backup := s.backup
	s.mu.Unlock()

	if needFanout {
		if fanoutTarget == "" {
			return kvproto.NewFault(kvproto.FaultNotResponsible)
		}
		if err := s.retrySend(ctx, func() error {
			return s.clientFor(fanoutTarget).Append(ctx, postListKey, key)
		}); err != nil {
			return err
		}
	}

	if isPrimary && backup != "" {
		if err := s.clientFor(backup).Put(ctx, key, value, user); err != nil {
			return kvproto.NewFault(kvproto.FaultOperationFailed)
		}
	}

	return nil
}

// Append implements the list/post/user-record branching of spec.md section
// 4.3.
//
// Parameters:
//   - key: a list key (trailing "s" roster), a post key, or a user record;
//     its own trailing id gates the ownership check.
//   - data: appended to (or, for a first write, stored as) key's value.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultNotResponsible if this server
//     does not own key's id; nil otherwise.
//
// Thread-safety: safe for concurrent use; acquires mu for the entire call.
func (s *Server) Append(_ context.Context, key, data string) error {
	atomic.AddUint64(&s.stats.Appends, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, idOK := kvproto.ExtractID(key)
	if !idOK || s.keyServerMap[id] != s.selfAddr {
		return kvproto.NewFault(kvproto.FaultNotResponsible)
	}

	switch {
	case kvproto.IsListKey(key):
		s.data[key] = s.data[key] + data + ","

	case kvproto.IsPostKey(key):
		if _, exists := s.data[key]; !exists {
			s.data[key] = data
			owner := s.postUserMap[key]
			listKey := kvproto.PostListKey(owner)
			s.data[listKey] = s.data[listKey] + key + ","
		} else {
			s.data[key] = s.data[key] + data
		}

	default: // a user_* record
		if _, exists := s.data[key]; !exists {
			s.data[key] = data
			s.data[kvproto.AllUsersKey] = s.data[kvproto.AllUsersKey] + key + ","
		} else {
			s.data[key] = s.data[key] + data
		}
	}
	return nil
}

// Delete removes key if present. Per spec.md section 4.3 (and section 9,
// open question 4) a missing key fails with the same message as NotOwner,
// not a distinct "missing" message.
//
// Parameters:
//   - key: removed unconditionally, with no ownership/id check beyond
//     presence in the local map.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultNotResponsible if key is absent
//     locally; nil otherwise.
//
// Thread-safety: safe for concurrent use; acquires mu for the entire call.
func (s *Server) Delete(_ context.Context, key string) error {
	atomic.AddUint64(&s.stats.Deletes, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return kvproto.NewFault(kvproto.FaultNotResponsible)
	}
	delete(s.data, key)
	return nil
}

// Dump returns the entire local key-value map, for a fresh backup's
// cold-start snapshot (spec.md section 4.3).
//
// Returns:
//   - map[string]string: a freshly allocated copy of the local data map;
//     mutating it does not affect the server's own state.
//   - error: always nil; the signature matches the rest of the
//     kvproto.ShardKVService interface.
//
// Thread-safety: safe for concurrent use; acquires mu to copy the map.
func (s *Server) Dump(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

// removeFromRosterLocked removes target from the comma-terminated roster
// entry at rosterKey. Caller must hold s.mu.
func (s *Server) removeFromRosterLocked(rosterKey, target string) {
	entry := s.data[rosterKey]
	parts := strings.Split(entry, ",")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" && p != target {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		s.data[rosterKey] = ""
		return
	}
	s.data[rosterKey] = strings.Join(kept, ",") + ","
}
