// Package main implements the shardmaster service, the authoritative
// keeper of the cluster's server list and key-range assignments.
//
// The shardmaster is the central control plane for the sharded key-value
// store, responsible for:
//   - Server membership (Join/Leave)
//   - Manual key-range reassignment (Move)
//   - Publishing the current configuration (Query)
//   - Rebalancing the key-id universe across joined servers
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│             Shardmaster                  │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /join    - Add a server, rebalance   │
//	│    /leave   - Remove servers, rebalance │
//	│    /move    - Reassign one shard        │
//	│    /query   - Read current config       │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    shardmaster.Master - assignment state│
//	└─────────────────────────────────────────┘
//
// Configuration:
//   - SHARDMASTER_ADDR: Listen address (default ":8090")
//   - SHARDMASTER_KEY_UNIVERSE: Size of the key-id space (default 1000)
//
// Example usage:
//
//	SHARDMASTER_ADDR=:8090 ./shardmaster
//
//	curl -X POST localhost:8090/join -d '{"server":"localhost:8101"}'
//	curl localhost:8090/query
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
	"github.com/dreamware/shardstore/internal/shardmaster"
)

func main() {
	addr := config.Getenv("SHARDMASTER_ADDR", ":8090")
	keyUniverse := config.GetenvInt("SHARDMASTER_KEY_UNIVERSE", shardmaster.DefaultKeyUniverse)

	master := shardmaster.New(keyUniverse)
	h := &shardmaster.Handlers{Master: master}

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
		log.Printf("shardmaster listening on %s (key universe %d)", addr, keyUniverse)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("shardmaster stopped")
}
