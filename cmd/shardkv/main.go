// Package main implements a shardkv storage server: the worker that holds
// a slice of the key-id space and serves Get/Put/Append/Delete/Dump,
// heartbeating to the shardmanager and reconciling ownership against the
// shardmaster.
//
// The storage server is a worker in the sharded key-value store,
// responsible for:
//   - Serving client RPCs forwarded by the shardmanager
//   - Heartbeating to the shardmanager to participate in primary/backup
//     election, and learning the shardmaster's address from the response
//   - Periodically querying the shardmaster and handing off keys it no
//     longer owns
//   - Cold-starting as backup by dumping the primary's full snapshot
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│             Storage server               │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /get /put /append /delete /dump      │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    shardkv.Server - kv state + roster   │
//	│    heartbeat loop (background)          │
//	│    reconcile loop (background)          │
//	└─────────────────────────────────────────┘
//
// Configuration:
//   - SHARDKV_ADDR: Bare host:port this server is reachable at, used both
//     as its identity with the shardmanager and as its dial address
//     (required; no "http://" prefix — kvproto's clients add the scheme
//     themselves)
//   - SHARDKV_LISTEN: Local listen address passed to http.Server (default
//     SHARDKV_ADDR)
//   - SHARDMANAGER_ADDR: Bare host:port of the shardmanager to heartbeat to
//     (required)
//
// Example usage:
//
//	SHARDKV_ADDR=localhost:8101 \
//	SHARDMANAGER_ADDR=localhost:8091 \
//	./shardkv
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamware/shardstore/internal/config"
	"github.com/dreamware/shardstore/internal/shardkv"
)

func main() {
	selfAddr := config.Getenv("SHARDKV_ADDR", "")
	if selfAddr == "" {
		log.Fatalf("missing env SHARDKV_ADDR")
	}
	listen := config.Getenv("SHARDKV_LISTEN", selfAddr)
	shardmanagerAddr := config.Getenv("SHARDMANAGER_ADDR", "")
	if shardmanagerAddr == "" {
		log.Fatalf("missing env SHARDMANAGER_ADDR")
	}

	srv := shardkv.New(selfAddr, shardmanagerAddr)
	h := &shardkv.Handlers{Server: srv}

	ctx, cancel := context.WithCancel(context.Background())
	go srv.StartHeartbeat(ctx)
	go srv.StartReconcile(ctx)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("shardkv[%s] listening on %s (shardmanager %s)", selfAddr, listen, shardmanagerAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("stopping heartbeat and reconcile loops...")
	cancel()
	srv.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("shardkv stopped")
}
