// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command atlasd starts the DriveAtlas API server.
//
// DriveAtlas turns a flat cloud-drive listing into an explorable graph:
//   - Snapshot builds with anomaly warnings instead of failures
//   - Orphan detection, neighborhood subgraphs, descendant counts
//   - Hub ranking and root-to-item path reconstruction
//
// Usage:
//
//	go run ./cmd/atlasd
//	go run ./cmd/atlasd -port 9090 -store-dir ~/.driveatlas/store
//
// With a watched listing directory (rebuild on change):
//
//	go run ./cmd/atlasd -listings-dir ./exports
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/atlas/health
//
//	# Build a snapshot from a listing
//	curl -X POST http://localhost:8080/v1/atlas/snapshots \
//	  -H "Content-Type: application/json" \
//	  -d '{"name": "my-drive", "items": [{"id": "root", "name": "My Drive", "isContainer": true, "parentIds": []}]}'
//
//	# Find orphaned items
//	curl http://localhost:8080/v1/atlas/snapshots/<id>/orphans | jq
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/DriveAtlas/pkg/logging"
	"github.com/AleutianAI/DriveAtlas/services/atlas"
	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
	"github.com/AleutianAI/DriveAtlas/services/atlas/store"
	"github.com/AleutianAI/DriveAtlas/services/atlas/watch"
)

func main() {
	port := flag.Int("port", defaultPort(), "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	logDir := flag.String("log-dir", "", "Directory for JSON log files (disabled if empty)")
	logLevel := flag.String("log-level", "info", "Minimum log level (debug, info, warn, error)")
	storeDir := flag.String("store-dir", "", "Directory for the persistent listing store (disabled if empty)")
	listingsDir := flag.String("listings-dir", "", "Directory of listing files to watch and rebuild on change")
	flag.Parse()

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(*logLevel),
		LogDir:  *logDir,
		Service: "atlasd",
	})
	defer logger.Close()
	logger.SetAsDefault()

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := atlas.NewService(atlas.DefaultServiceConfig())

	ctx := context.Background()

	if *storeDir != "" {
		st, err := store.Open(store.DefaultConfig(*storeDir))
		if err != nil {
			logger.Error("Failed to open listing store", "error", err, "dir", *storeDir)
			os.Exit(1)
		}
		defer st.Close()
		svc.WithStore(st)

		restored, err := svc.RestoreSnapshots(ctx)
		if err != nil {
			logger.Warn("Snapshot restore failed", "error", err)
		} else if restored > 0 {
			logger.Info("Snapshots restored from store", "count", restored)
		}
	}

	var watcher *watch.ListingWatcher
	if *listingsDir != "" {
		w, err := setupListingWatcher(ctx, svc, logger, *listingsDir)
		if err != nil {
			logger.Error("Failed to watch listings directory", "error", err, "dir", *listingsDir)
			os.Exit(1)
		}
		watcher = w
		defer watcher.Stop()
	}

	handlers := atlas.NewHandlers(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("atlas-service"))
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	atlas.RegisterRoutes(v1, handlers)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Shutting down DriveAtlas server")
		if watcher != nil {
			watcher.Stop()
		}
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("Starting DriveAtlas server", "address", addr)
	if err := router.Run(addr); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

// defaultPort reads ATLAS_PORT, falling back to 8080.
func defaultPort() int {
	if v := os.Getenv("ATLAS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	return 8080
}

// setupListingWatcher starts a watcher that rebuilds snapshots whenever a
// listing file in dir changes.
func setupListingWatcher(ctx context.Context, svc *atlas.Service, logger *logging.Logger, dir string) (*watch.ListingWatcher, error) {
	handler := func(changes []watch.ListingChange) {
		for _, change := range changes {
			if change.Removed {
				logger.Info("Listing removed, keeping last snapshot", "path", change.Path)
				continue
			}

			items, err := inventory.ReadListingFile(change.Path)
			if err != nil {
				logger.Warn("Failed to read changed listing", "path", change.Path, "error", err)
				continue
			}

			resp, err := svc.BuildSnapshot(ctx, change.Path, items, svc.HasStore())
			if err != nil {
				logger.Warn("Rebuild from changed listing failed", "path", change.Path, "error", err)
				continue
			}
			logger.Info("Rebuilt snapshot from listing",
				"path", change.Path,
				"snapshot_id", resp.SnapshotID,
				"node_count", resp.NodeCount)
		}
	}

	w, err := watch.NewListingWatcher(dir, handler, nil)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("Watching listings directory", "dir", dir)
	return w, nil
}
