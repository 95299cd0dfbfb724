package shardkv

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// DefaultHeartbeatInterval is the storage server's ping period to the
// shardmanager (spec.md section 6, "Storage server heartbeat... 100 ms").
const DefaultHeartbeatInterval = 100 * time.Millisecond

// DefaultReconcileInterval is the shardmaster query period (spec.md
// section 6, "...and reconcile: 100 ms").
const DefaultReconcileInterval = 100 * time.Millisecond

// DefaultRetryBackoff is the pause between hand-off/fan-out retry
// attempts (spec.md section 6, "Cross-server retry backoff: 100 ms").
const DefaultRetryBackoff = 100 * time.Millisecond

// DefaultMaxAttempts bounds hand-off and fan-out retries (spec.md section
// 4.3, "MAX_SERVER_ATTEMPTS (default 1000)").
const DefaultMaxAttempts = 1000

// Stats tracks per-server operation counters, updated atomically. This is
// not part of the wire contract (spec.md never asks for it); it is the
// observability counterpart the distilled spec dropped but the original
// implementation keeps (see SPEC_FULL.md), adapted from
// internal/shard.OperationStats.
type Stats struct {
	Gets    uint64
	Puts    uint64
	Appends uint64
	Deletes uint64
}

// Server is a shardkv storage server: owns a slice of the key-id space
// (tracked indirectly via keyServerMap, the cached result of the last
// shardmaster Query), serves client RPCs, and runs the heartbeat and
// reconcile background loops.
//
// All mutable fields -- the kv map, the post-ownership map, the cached
// key-server map, and the view fields learned from the shardmanager -- are
// protected by a single mutex (spec.md section 5: "a faithful
// reimplementation must serialize them explicitly").
//
// Thread Safety:
//
//   - mu is a plain sync.Mutex guarding every field above stats. The
//     operation counters in stats are the one exception: they are updated
//     with sync/atomic instead, so Stats() can be read without contending
//     with Get/Put/Append/Delete's own locking.
//   - clientFor locks mu only to read or populate the clients cache; the
//     RPC made through the returned client happens unlocked, so a slow
//     downstream peer cannot stall local Get/Put/Append/Delete calls.
//
// Concurrency model:
//
//   - StartHeartbeat and StartReconcile each run as one caller-owned
//     goroutine, registered on wg, until stopCh is closed by Stop.
//   - Hand-off retries run inline inside the reconcile loop's goroutine and
//     fan-out retries inline inside the calling Put (see retry.go), not as
//     additional goroutines per attempt.
type Server struct {
	mu sync.Mutex

	selfAddr         string
	shardmanagerAddr string

	data         map[string]string // key -> value
	postUserMap  map[string]string // post key -> owning user key
	keyServerMap map[int]string    // key-id -> owning server address

	primary                       string
	backup                        string
	shardmasterAddr               string
	currentAcknowledgedViewNumber int64
	seenShardmaster               bool

	clients map[string]*kvproto.ShardKVClient

	heartbeatInterval time.Duration
	reconcileInterval time.Duration
	retryBackoff      time.Duration
	maxAttempts       int

	stats Stats

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a storage server bootstrapped with its own address and the
// shardmanager's address (spec.md section 6, "Storage server is
// constructed with (self-address, shardmanager-address)").
//
// Parameters:
//   - selfAddr: this server's own bare host:port, reported to the
//     shardmanager on every heartbeat Ping.
//   - shardmanagerAddr: bare host:port of the shardmanager this server
//     heartbeats to and learns its primary/backup role from.
//
// Returns:
//   - *Server: an unstarted server with empty state and default intervals
//     (DefaultHeartbeatInterval, DefaultReconcileInterval,
//     DefaultRetryBackoff, DefaultMaxAttempts). Call StartHeartbeat and
//     StartReconcile separately to begin its background loops.
func New(selfAddr, shardmanagerAddr string) *Server {
	return &Server{
		selfAddr:          selfAddr,
		shardmanagerAddr:  shardmanagerAddr,
		data:              make(map[string]string),
		postUserMap:       make(map[string]string),
		keyServerMap:      make(map[int]string),
		clients:           make(map[string]*kvproto.ShardKVClient),
		heartbeatInterval: DefaultHeartbeatInterval,
		reconcileInterval: DefaultReconcileInterval,
		retryBackoff:      DefaultRetryBackoff,
		maxAttempts:       DefaultMaxAttempts,
		stopCh:            make(chan struct{}),
	}
}

// Stats returns a snapshot of the operation counters.
//
// Returns:
//   - Stats: the current Gets/Puts/Appends/Deletes totals. A torn read
//     across the four fields is possible under concurrent writers (each
//     field is loaded independently), which is acceptable for this
//     internal-bookkeeping-only counter; see SPEC_FULL.md.
//
// Thread-safety: safe for concurrent use; each field is read with
// atomic.LoadUint64, independent of mu.
func (s *Server) Stats() Stats {
	return Stats{
		Gets:    atomic.LoadUint64(&s.stats.Gets),
		Puts:    atomic.LoadUint64(&s.stats.Puts),
		Appends: atomic.LoadUint64(&s.stats.Appends),
		Deletes: atomic.LoadUint64(&s.stats.Deletes),
	}
}

func (s *Server) clientFor(addr string) *kvproto.ShardKVClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[addr]; ok {
		return c
	}
	c := kvproto.NewShardKVClient(addr)
	s.clients[addr] = c
	return c
}

// Stop signals the background loops to exit and waits for them.
//
// Thread-safety: safe to call at most once per Server — a second call
// closes an already-closed stopCh and panics. Blocks until both
// StartHeartbeat and StartReconcile (if started) have returned.
func (s *Server) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
