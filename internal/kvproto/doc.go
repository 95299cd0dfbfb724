// Package kvproto defines the wire contract shared by the shardmaster,
// shardmanager, and shardkv components: request/response structs for every
// RPC named in the specification, the key-naming helpers the application
// layer relies on, the shard-interval arithmetic the shardmaster's Move
// operation needs, and a small HTTP+JSON transport used to call between
// components.
//
// None of this exists as a separate package in the teacher repo (Torua
// inlines its wire types in internal/cluster); it is split out here because
// three components now share one wire contract instead of two ad hoc ones.
package kvproto
