// Package shardkv implements the storage server: the in-memory key-value
// map, the Get/Put/Append/Delete/Dump RPCs, the 100ms heartbeat loop (role
// discovery and backup cold-start), and the 100ms reconcile loop (shard
// ownership hand-off on reconfiguration) described in spec.md section 4.3.
//
// Adapted from the teacher's internal/shard.Shard (atomic operation
// counters, state snapshot pattern) and internal/storage.MemoryStore
// (mutex-guarded map, ErrKeyNotFound sentinel), generalized from a
// byte-valued generic shard store into the specification's string-keyed
// user/post/roster record model.
package shardkv
