// Package shardmanager implements the view-service: primary/backup
// election gated on acknowledgment, liveness-driven failover, and
// forwarding of client Get/Put/Append/Delete RPCs to the current primary
// (spec.md section 4.2).
//
// Adapted from the teacher's internal/coordinator.HealthMonitor (the
// ticker-driven background loop with context cancellation and
// per-node last-seen tracking) fused with the single-lock "server" struct
// shape from cmd/coordinator/main.go, generalized from "mark unhealthy
// after N consecutive failed checks" to "promote backup after primary's
// last ping exceeds a dead-ping threshold."
package shardmanager
