// Package shardmaster implements the authoritative shard-allocation
// service: the map from shard interval to owning storage server, and the
// membership operations (Join/Leave/Move) and rebalancer that keep it
// correct (spec.md section 4.1).
//
// Adapted from the teacher's internal/coordinator.ShardRegistry: same
// single-mutex-guarded map, same copy-out-on-read discipline, generalized
// from consistent-hash shard assignment to the specification's
// contiguous-interval rebalancing.
package shardmaster
