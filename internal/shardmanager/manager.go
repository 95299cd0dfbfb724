package shardmanager

import (
	"context"
	"sync"
	"time"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// DefaultMonitorInterval is the liveness monitor's tick period (spec.md
// section 6, "Shardmanager liveness monitor: 1000 ms").
const DefaultMonitorInterval = 1 * time.Second

// DefaultDeadPingInterval is how stale a primary's last ping must be before
// it is declared dead (spec.md section 6, "Dead-ping threshold: 2000 ms").
const DefaultDeadPingInterval = 2 * time.Second

type view struct {
	number  int64
	primary string
	backup  string
}

// Manager is the shardmanager: view-service state plus RPC forwarding. All
// view fields, pingIntervals, and the views history are protected by a
// single mutex (spec.md section 5): Ping, the forwarding RPCs, and the
// liveness monitor all acquire it.
//
// Thread Safety:
//
//   - mu is a plain sync.Mutex, not RWMutex: almost every call (Ping,
//     checkFailover, clientFor) mutates shared state, so a read path would
//     buy little and the spec asks for "one mutex" (section 5) regardless.
//   - Get/Put/Append/Delete read the current primary and look up/create a
//     client under mu, but the downstream RPC itself runs outside the lock
//     (see currentPrimary/clientFor), so a slow or hung primary cannot block
//     Ping or the liveness monitor.
//
// Concurrency model:
//
//   - StartLivenessMonitor runs as exactly one caller-owned goroutine, driven
//     by a time.Ticker at monitorInterval, until ctx is canceled or Stop is
//     called.
//   - Stop closes stopCh and waits on wg, so it is safe to call after
//     StartLivenessMonitor has returned due to ctx cancellation (the wg.Wait
//     simply returns immediately).
type Manager struct {
	mu sync.Mutex

	shardmasterAddr            string
	currentViewNumber          int64
	lastAcknowledgedViewNumber int64
	primary                    string
	backup                     string
	pingIntervals              map[string]time.Time
	views                      map[int64]view
	clients                    map[string]*kvproto.ShardKVClient

	deadPingInterval time.Duration
	monitorInterval  time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Manager that will report shardmasterAddr to pinging
// storage servers (spec.md section 6, "Bootstrap:
// shardmanager with (self-address, shardmaster-address)").
//
// Parameters:
//   - shardmasterAddr: bare host:port of the shardmaster this manager
//     reports to storage servers via PingResponse.Shardmaster. Not
//     validated or contacted by New itself.
//
// Returns:
//   - *Manager: an unstarted manager with no primary/backup and view number
//     0. Call StartLivenessMonitor separately to begin failover detection.
func New(shardmasterAddr string) *Manager {
	return &Manager{
		shardmasterAddr:  shardmasterAddr,
		pingIntervals:    make(map[string]time.Time),
		views:            make(map[int64]view),
		clients:          make(map[string]*kvproto.ShardKVClient),
		deadPingInterval: DefaultDeadPingInterval,
		monitorInterval:  DefaultMonitorInterval,
		stopCh:           make(chan struct{}),
	}
}

// Ping is the heartbeat and role-discovery endpoint (spec.md section 4.2).
// A storage server calls Ping on every heartbeat tick to report its own
// address and the last view it has acknowledged, and learns back its role
// (primary/backup/neither) and the current view.
//
// Parameters:
//   - server: bare host:port of the calling storage server.
//   - ack: the view number server has fully absorbed (its own
//     currentAcknowledgedViewNumber at call time).
//
// Returns:
//   - kvproto.PingResponse: case 1 (server is, or becomes, primary) returns
//     the live, possibly unacknowledged view; case 2 (server becomes
//     backup) and case 3 (server is already backup) return the view as of
//     lastAcknowledgedViewNumber, so a backup never observes a view the
//     primary has not yet caught up to.
//   - error: a *kvproto.Fault wrapping FaultExceededCapacity if a third,
//     unrecognized server pings while both primary and backup are already
//     assigned (case 4); nil otherwise.
//
// Thread-safety: evaluated entirely under mu, by the four cases above.
func (m *Manager) Ping(server string, ack int64) (kvproto.PingResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	switch {
	case m.primary == "" || server == m.primary:
		justInstalled := m.primary == ""
		if justInstalled {
			m.primary = server
		}
		m.lastAcknowledgedViewNumber = ack
		if justInstalled {
			m.currentViewNumber++
			m.backup = ""
			m.recordViewLocked()
		}
		m.pingIntervals[server] = now
		return m.currentViewResponseLocked(), nil

	case m.backup == "" && server != m.primary:
		m.backup = server
		m.currentViewNumber++
		m.recordViewLocked()
		m.pingIntervals[server] = now
		return m.viewAtLocked(m.lastAcknowledgedViewNumber), nil

	case server == m.backup:
		m.pingIntervals[server] = now
		return m.viewAtLocked(m.lastAcknowledgedViewNumber), nil

	default:
		return kvproto.PingResponse{}, kvproto.NewFault(kvproto.FaultExceededCapacity)
	}
}

// currentViewResponseLocked returns the live (possibly unacknowledged)
// view. Caller must hold mu.
func (m *Manager) currentViewResponseLocked() kvproto.PingResponse {
	return kvproto.PingResponse{
		ViewNumber:  m.currentViewNumber,
		Primary:     m.primary,
		Backup:      m.backup,
		Shardmaster: m.shardmasterAddr,
	}
}

// viewAtLocked returns the recorded contents of view n. Caller must hold mu.
func (m *Manager) viewAtLocked(n int64) kvproto.PingResponse {
	v, ok := m.views[n]
	if !ok {
		return kvproto.PingResponse{ViewNumber: n, Shardmaster: m.shardmasterAddr}
	}
	return kvproto.PingResponse{
		ViewNumber:  v.number,
		Primary:     v.primary,
		Backup:      v.backup,
		Shardmaster: m.shardmasterAddr,
	}
}

// recordViewLocked snapshots the current view into history, so a later
// Ping can be answered with "the contents of view lastAcknowledgedViewNumber"
// even after the view has moved on. Caller must hold mu.
func (m *Manager) recordViewLocked() {
	m.views[m.currentViewNumber] = view{
		number:  m.currentViewNumber,
		primary: m.primary,
		backup:  m.backup,
	}
}

// StartLivenessMonitor runs the failover loop until ctx is canceled or Stop
// is called. Period is m.monitorInterval (default 1s); a primary whose last
// ping exceeds m.deadPingInterval (default 2s) is declared dead and the
// backup, if any, is promoted (spec.md section 4.2).
//
// Parameters:
//   - ctx: governs the loop's lifetime alongside Stop; canceling it returns
//     from StartLivenessMonitor without closing stopCh.
//
// Thread-safety: intended to run as a single goroutine per Manager; calling
// it twice concurrently runs two independent tickers racing to promote the
// same backup, which the spec never needs since each Manager owns one
// monitor.
//
// Example:
//
//	mgr := shardmanager.New(shardmasterAddr)
//	ctx, cancel := context.WithCancel(context.Background())
//	go mgr.StartLivenessMonitor(ctx)
//	defer cancel()
func (m *Manager) StartLivenessMonitor(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	ticker := time.NewTicker(m.monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkFailover()
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		}
	}
}

// Stop signals the liveness monitor to exit and waits for it.
//
// Thread-safety: safe to call at most once per Manager — a second call
// closes an already-closed stopCh and panics, matching the teacher's
// HealthMonitor.Stop contract.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

func (m *Manager) checkFailover() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.primary == "" {
		return
	}
	last, ok := m.pingIntervals[m.primary]
	if !ok || time.Since(last) <= m.deadPingInterval {
		return
	}

	if m.backup == "" {
		// No replacement available; drop the primary so the next Ping
		// installs whoever arrives first (case 1 of Ping).
		m.primary = ""
		return
	}

	m.primary = m.backup
	m.backup = ""
	m.currentViewNumber = m.lastAcknowledgedViewNumber + 1
	m.recordViewLocked()
}

// currentPrimary returns the address to forward client RPCs to, reading it
// under mu.
func (m *Manager) currentPrimary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.primary
}

// clientFor returns a cached client for addr, opening (or reusing) it,
// mirroring spec.md section 4.2's "opens (or reuses) a channel to
// primaryServerAddress."
func (m *Manager) clientFor(addr string) *kvproto.ShardKVClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[addr]; ok {
		return c
	}
	c := kvproto.NewShardKVClient(addr)
	m.clients[addr] = c
	return c
}
