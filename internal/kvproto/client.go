package kvproto

import (
	"context"
	"fmt"
)

// ShardKVService is the RPC surface implemented by both a shardkv storage
// server and the shardmanager, which forwards four of its five methods
// (spec.md section 9, "Polymorphism": the shardmanager deliberately
// implements the same service interface as a storage server"). Modeling
// this as a shared interface, rather than a base type, lets client code and
// tests address either concrete type uniformly.
type ShardKVService interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value, user string) error
	Append(ctx context.Context, key, data string) error
	Delete(ctx context.Context, key string) error
}

// ShardKVClient calls a remote shardkv-compatible HTTP endpoint (a storage
// server or the shardmanager). It implements ShardKVService.
type ShardKVClient struct {
	Addr string
}

// NewShardKVClient builds a client for the service at addr.
func NewShardKVClient(addr string) *ShardKVClient {
	return &ShardKVClient{Addr: addr}
}

func (c *ShardKVClient) Get(ctx context.Context, key string) (string, error) {
	var resp GetResponse
	err := PostJSON(ctx, c.url("/get"), GetRequest{Key: key}, &resp)
	return resp.Value, err
}

func (c *ShardKVClient) Put(ctx context.Context, key, value, user string) error {
	return PostJSON(ctx, c.url("/put"), PutRequest{Key: key, Value: value, User: user}, nil)
}

func (c *ShardKVClient) Append(ctx context.Context, key, data string) error {
	return PostJSON(ctx, c.url("/append"), AppendRequest{Key: key, Data: data}, nil)
}

func (c *ShardKVClient) Delete(ctx context.Context, key string) error {
	return PostJSON(ctx, c.url("/delete"), DeleteRequest{Key: key}, nil)
}

// Dump pulls the complete key-value map from the remote server, used by a
// fresh backup's cold-start snapshot (spec.md section 4.3).
func (c *ShardKVClient) Dump(ctx context.Context) (map[string]string, error) {
	var resp DumpResponse
	err := PostJSON(ctx, c.url("/dump"), struct{}{}, &resp)
	return resp.Database, err
}

// Ping calls the remote Ping endpoint, used both by storage servers talking
// to the shardmanager and (conceptually) by any liveness monitor.
func (c *ShardKVClient) Ping(ctx context.Context, self string, ack int64) (PingResponse, error) {
	var resp PingResponse
	err := PostJSON(ctx, c.url("/ping"), PingRequest{Server: self, ViewNumber: ack}, &resp)
	return resp, err
}

func (c *ShardKVClient) url(path string) string {
	return fmt.Sprintf("http://%s%s", c.Addr, path)
}

// ShardmasterClient calls a remote shardmaster.
type ShardmasterClient struct {
	Addr string
}

func NewShardmasterClient(addr string) *ShardmasterClient {
	return &ShardmasterClient{Addr: addr}
}

func (c *ShardmasterClient) Join(ctx context.Context, server string) error {
	return PostJSON(ctx, c.url("/join"), JoinRequest{Server: server}, nil)
}

func (c *ShardmasterClient) Leave(ctx context.Context, servers []string) error {
	return PostJSON(ctx, c.url("/leave"), LeaveRequest{Servers: servers}, nil)
}

func (c *ShardmasterClient) Move(ctx context.Context, server string, shard Shard) error {
	return PostJSON(ctx, c.url("/move"), MoveRequest{Server: server, Shard: shard}, nil)
}

func (c *ShardmasterClient) Query(ctx context.Context) (QueryResponse, error) {
	var resp QueryResponse
	err := GetJSON(ctx, c.url("/query"), &resp)
	return resp, err
}

func (c *ShardmasterClient) url(path string) string {
	return fmt.Sprintf("http://%s%s", c.Addr, path)
}
