package shardkv

import (
	"context"
	"time"

	"github.com/dreamware/shardstore/internal/kvproto"
)

// retrySend calls fn up to s.maxAttempts times with s.retryBackoff between
// attempts, returning nil on the first success. If every attempt fails it
// returns the error of the last attempt unchanged (ctx.Err() if ctx is
// canceled first): the triggering Put is failed, nothing is abandoned
// silently.
func (s *Server) retrySend(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryBackoff):
		}
	}
	if lastErr == nil {
		lastErr = kvproto.NewFault(kvproto.FaultOperationFailed)
	}
	return lastErr
}

// retryUntilDeadline is like retrySend but never returns an error: it is
// used by the reconcile loop's hand-off, which must leave the key in place
// for the next tick rather than fail a caller (there is no caller to fail).
// It reports whether fn eventually succeeded.
func (s *Server) retryUntilDeadline(ctx context.Context, fn func() error) bool {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := fn(); err == nil {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.retryBackoff):
		}
	}
	return false
}
