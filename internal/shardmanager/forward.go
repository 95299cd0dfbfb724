package shardmanager

import (
	"context"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// Get forwards to the current primary verbatim.
//
// Parameters:
//   - ctx: forwarded to the downstream RPC; canceling it aborts the
//     in-flight call to the primary.
//   - key: looked up unchanged on the primary.
//
// Returns:
//   - string: the primary's value for key.
//   - error: a *kvproto.Fault wrapping FaultOperationFailed if there is no
//     current primary or the downstream call fails for any reason
//     (including the primary's own FaultKeyNotFound) — spec.md section 4.2
//     collapses every forwarding failure into one status.
//
// Thread-safety: safe for concurrent use; reads the primary and its client
// under mu, then calls out to it unlocked.
func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	primary := m.currentPrimary()
	if primary == "" {
		return "", operationFailed()
	}
	val, err := m.clientFor(primary).Get(ctx, key)
	if err != nil {
		return "", operationFailed()
	}
	return val, nil
}

// Put forwards to the current primary verbatim.
//
// Parameters:
//   - key, value: written unchanged on the primary.
//   - user: passed through to the primary's ownership/fan-out decision;
//     Manager itself makes no use of it.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultOperationFailed if there is no
//     current primary or the downstream call fails; nil otherwise.
//
// Thread-safety: safe for concurrent use; see Get.
func (m *Manager) Put(ctx context.Context, key, value, user string) error {
	primary := m.currentPrimary()
	if primary == "" {
		return operationFailed()
	}
	if err := m.clientFor(primary).Put(ctx, key, value, user); err != nil {
		return operationFailed()
	}
	return nil
}

// Append forwards to the current primary verbatim.
//
// Parameters:
//   - key: identifies the record/roster to append to, per kvproto's
//     key-naming convention.
//   - data: appended to the primary's existing value for key.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultOperationFailed if there is no
//     current primary or the downstream call fails; nil otherwise.
//
// Thread-safety: safe for concurrent use; see Get.
func (m *Manager) Append(ctx context.Context, key, data string) error {
	primary := m.currentPrimary()
	if primary == "" {
		return operationFailed()
	}
	if err := m.clientFor(primary).Append(ctx, key, data); err != nil {
		return operationFailed()
	}
	return nil
}

// Delete forwards to the current primary verbatim.
//
// Parameters:
//   - key: removed from the primary's state.
//
// Returns:
//   - error: a *kvproto.Fault wrapping FaultOperationFailed if there is no
//     current primary or the downstream call fails (including the
//     primary's own missing-key fault); nil otherwise.
//
// Thread-safety: safe for concurrent use; see Get.
func (m *Manager) Delete(ctx context.Context, key string) error {
	primary := m.currentPrimary()
	if primary == "" {
		return operationFailed()
	}
	if err := m.clientFor(primary).Delete(ctx, key); err != nil {
		return operationFailed()
	}
	return nil
}

func operationFailed() error {
	return kvproto.NewFault(kvproto.FaultOperationFailed)
}
