package kvproto

// Messages for the shardkv service (spec.md section 6), implemented by both
// storage servers and the shardmanager (which forwards four of the five).

// GetRequest/GetResponse — Get(key) -> {data}.
type GetRequest struct {
	Key string `json:"key"`
}

type GetResponse struct {
	Value string `json:"data"`
}

// PutRequest — Put(key, data, user?) -> ∅. User is the cross-shard post
// append hint described in spec.md section 4.3; it is optional. It plays no
// part in the ownership check on Key; for a post key, its owner decides
// whether the post is added to the local post list or fanned out.
type PutRequest struct {
	Key   string `json:"key"`
	Value string `json:"data"`
	User  string `json:"user,omitempty"`
}

// AppendRequest — Append(key, data) -> ∅.
type AppendRequest struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}

// DeleteRequest — Delete(key) -> ∅.
type DeleteRequest struct {
	Key string `json:"key"`
}

// DumpResponse — Dump() -> {database: map<string,string>}.
type DumpResponse struct {
	Database map[string]string `json:"database"`
}

// PingRequest/PingResponse — Ping(server, viewnumber) -> {id, primary,
// backup, shardmaster}.
type PingRequest struct {
	Server     string `json:"server"`
	ViewNumber int64  `json:"viewnumber"`
}

type PingResponse struct {
	ViewNumber  int64  `json:"id"`
	Primary     string `json:"primary"`
	Backup      string `json:"backup"`
	Shardmaster string `json:"shardmaster"`
}

// Messages for the shardmaster service (spec.md section 6).

// JoinRequest — Join(server) -> ∅.
type JoinRequest struct {
	Server string `json:"server"`
}

// LeaveRequest — Leave(servers[]) -> ∅.
type LeaveRequest struct {
	Servers []string `json:"servers"`
}

// MoveRequest — Move(server, shard{lower,upper}) -> ∅.
type MoveRequest struct {
	Server string `json:"server"`
	Shard  Shard  `json:"shard"`
}

// QueryResponse — Query() -> {config[]: {server, shards[]}}.
type QueryResponse struct {
	Config []ServerShards `json:"config"`
}

// ServerShards pairs a server with its currently assigned shards, listed in
// servers-insertion order with shards ascending by Lower (spec.md section
// 4.1, Query).
type ServerShards struct {
	Server string  `json:"server"`
	Shards []Shard `json:"shards"`
}
