// Package config loads bootstrap configuration for the three binaries
// (cmd/shardmaster, cmd/shardmanager, cmd/shardkv) from the environment,
// generalizing the teacher's inline getenv(key, default) helper
// (cmd/coordinator/main.go, cmd/node/main.go) into a shared package now
// that three binaries need it instead of one.
//
// Before the first lookup, the Getenv* functions preload a ".env" file via
// github.com/joho/godotenv if one is present, exactly the way
// orbas1-Synnergy's cmd/explorer/main.go and walletserver/config/config.go
// do it: best-effort, a missing file is not an error.
package config
