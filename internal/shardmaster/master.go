package shardmaster

import (
	"sort"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// DefaultKeyUniverse is the size of the key-id space [0, U-1] the
// rebalancer partitions across joined servers. Spec.md section 9 leaves U
// unspecified as "derivable from the shardmaster's rebalancer output";
// we make it an explicit, overridable constant (open question 3).
const DefaultKeyUniverse = 1000

// Master is the shardmaster: an authoritative, insertion-ordered list of
// servers and a mapping from server to its normalized shard list, protected
// by a single mutex per spec.md section 5 ("one mutex protecting the
// configuration; all four RPCs acquire it for their entire body").
//
// Thread Safety:
//
//   - Every exported method locks mu for its entire body, including Query,
//     which only reads. There is no separate read path: the configuration is
//     small and Join/Leave/Move are expected to be rare compared to Query, so
//     a plain Mutex is simpler than an RWMutex for no measurable cost.
//   - Query returns copies (a fresh []ServerShards, each with its own copied
//     Shards slice), never the internal m.shards slices, so a caller can hold
//     onto the result after the lock is released without racing future
//     mutations.
//
// Concurrency model:
//
//   - Master has no background goroutines; every state change happens
//     synchronously inside the RPC handler that calls Join/Leave/Move.
//   - Callers (typically cmd/shardmaster's HTTP handlers) serialize nothing
//     themselves — Master's own mutex is the only serialization point.
type Master struct {
	mu          sync.Mutex
	servers     []string // insertion order of successful Join
	shards      map[string][]kvproto.Shard
	keyUniverse int
}

// New creates a Master with the given key-id universe size.
//
// Parameters:
//   - keyUniverse: size of the [0, keyUniverse-1] key-id space the
//     rebalancer partitions across joined servers. Pass DefaultKeyUniverse
//     unless a test needs a smaller universe.
//
// Returns:
//   - *Master: an empty shardmaster with no servers and no shards.
func New(keyUniverse int) *Master {
	return &Master{
		shards:      make(map[string][]kvproto.Shard),
		keyUniverse: keyUniverse,
	}
}

// Join appends server to the cluster and rebalances every server's shard
// list so the key-id universe stays partitioned as evenly as possible.
//
// Parameters:
//   - server: address of the joining server. Must not already be a member.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultDuplicateJoin if server is
//     already present (spec.md section 4.1); nil otherwise.
//
// Thread-safety: acquires mu for the entire call.
func (m *Master) Join(server string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.servers, server) {
		return kvproto.NewFault(kvproto.FaultDuplicateJoin)
	}
	m.servers = append(m.servers, server)
	m.shards[server] = nil
	m.rebalanceLocked()
	return nil
}

// Leave removes the listed servers and rebalances the remainder.
//
// Parameters:
//   - servers: addresses to remove. The precondition check (all servers
//     present) is atomic: either every server in the list is removed and the
//     cluster rebalanced, or none are and the call fails, per spec.md
//     section 4.1.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultUnknownLeave if any listed
//     server is not a current member; nil otherwise.
//
// Thread-safety: acquires mu for the entire call.
func (m *Master) Leave(servers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range servers {
		if !slices.Contains(m.servers, s) {
			return kvproto.NewFault(kvproto.FaultUnknownLeave)
		}
	}
	for _, s := range servers {
		idx := slices.Index(m.servers, s)
		m.servers = slices.Delete(m.servers, idx, idx+1)
		delete(m.shards, s)
	}
	m.rebalanceLocked()
	return nil
}

// Move reassigns a single shard interval to server without touching the
// rest of the cluster's balance.
//
// Parameters:
//   - server: the server that should own target afterward. Must already be
//     a member.
//   - target: the shard interval to move.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultUnknownMove if server is not a
//     current member; nil otherwise.
//
// Implementation: subtracts target from every server's shard list,
// server's own included so its list stays non-overlapping (per the
// five-way classification in kvproto.Shard.Subtract), and appends it to
// server's own list, resorted ascending by Lower. Move does not rebalance
// the rest of the cluster afterward (spec.md section 4.1) — only server,
// which gains target, and the servers that held parts of target are
// affected.
//
// Thread-safety: acquires mu for the entire call.
func (m *Master) Move(server string, target kvproto.Shard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(m.servers, server) {
		return kvproto.NewFault(kvproto.FaultUnknownMove)
	}

	for _, s := range m.servers {
		var next []kvproto.Shard
		for _, existing := range m.shards[s] {
			next = append(next, existing.Subtract(target)...)
		}
		m.shards[s] = next
	}

	m.shards[server] = append(m.shards[server], target)
	sort.Slice(m.shards[server], func(i, j int) bool {
		return m.shards[server][i].Lower < m.shards[server][j].Lower
	})
	return nil
}

// Query returns the current configuration: servers in insertion order,
// each paired with its shards ascending by Lower.
//
// Returns:
//   - kvproto.QueryResponse: a snapshot safe to retain; every Shard slice is
//     copied out from under mu, so later Join/Leave/Move calls cannot
//     mutate a caller's already-returned result.
//
// Thread-safety: acquires mu for the entire call, even though it only reads.
func (m *Master) Query() kvproto.QueryResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	config := make([]kvproto.ServerShards, 0, len(m.servers))
	for _, s := range m.servers {
		shards := append([]kvproto.Shard(nil), m.shards[s]...)
		sort.Slice(shards, func(i, j int) bool { return shards[i].Lower < shards[j].Lower })
		config = append(config, kvproto.ServerShards{Server: s, Shards: shards})
	}
	return kvproto.QueryResponse{Config: config}
}

// rebalanceLocked partitions [0, keyUniverse-1] into len(m.servers)
// contiguous near-equal runs: sizes of ceil(U/N) or floor(U/N), with the
// first (U mod N) servers in insertion order receiving the larger size.
// Each server's shard list becomes a single interval. Caller must hold mu.
func (m *Master) rebalanceLocked() {
	n := len(m.servers)
	if n == 0 {
		return
	}

	base := m.keyUniverse / n
	remainder := m.keyUniverse % n

	lower := 0
	for i, s := range m.servers {
		size := base
		if i < remainder {
			size++
		}
		if size == 0 {
			m.shards[s] = nil
			continue
		}
		m.shards[s] = []kvproto.Shard{{Lower: lower, Upper: lower + size - 1}}
		lower += size
	}
}
