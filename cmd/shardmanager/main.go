// Package main implements the shardmanager service: the view-service that
// elects a primary/backup pair among pinging storage servers and forwards
// client RPCs to the current primary.
//
// The shardmanager is the single point of contact clients and storage
// servers both talk to, responsible for:
//   - Accepting Ping from storage servers and running primary/backup
//     election and failover
//   - Forwarding Get/Put/Append/Delete to the current primary
//   - Telling pinging servers the shardmaster's address, so each storage
//     server can independently query shard ownership
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│             Shardmanager                 │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /ping    - storage server heartbeat  │
//	│    /get     - forward to primary        │
//	│    /put     - forward to primary        │
//	│    /append  - forward to primary        │
//	│    /delete  - forward to primary        │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    shardmanager.Manager - view state    │
//	│    liveness monitor (background)        │
//	└─────────────────────────────────────────┘
//
// Configuration:
//   - SHARDMANAGER_ADDR: Listen address (default ":8091")
//   - SHARDMASTER_ADDR: Bare host:port reported to pinging storage servers
//     and dialed for Query (required; no "http://" prefix — kvproto's
//     clients add the scheme themselves)
//
// Example usage:
//
//	SHARDMANAGER_ADDR=:8091 \
//	SHARDMASTER_ADDR=localhost:8090 \
//	./shardmanager
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
	"github.com/dreamware/shardstore/internal/shardmanager"
)

func main() {
	addr := config.Getenv("SHARDMANAGER_ADDR", ":8091")
	shardmasterAddr := config.Getenv("SHARDMASTER_ADDR", "")
	if shardmasterAddr == "" {
		log.Fatalf("missing env SHARDMASTER_ADDR")
	}

	manager := shardmanager.New(shardmasterAddr)
	h := &shardmanager.Handlers{Manager: manager}

	ctx, cancel := context.WithCancel(context.Background())
	go manager.StartLivenessMonitor(ctx)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("shardmanager listening on %s (shardmaster %s)", addr, shardmasterAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("stopping liveness monitor...")
	cancel()
	manager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("shardmanager stopped")
}
