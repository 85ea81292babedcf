// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package atlas

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all Atlas routes with the router.
//
// Description:
//
//	Registers all /v1/atlas/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/atlas/snapshots - Build a snapshot from a listing
//	GET  /v1/atlas/snapshots - List cached snapshots
//	GET  /v1/atlas/snapshots/:id/nodes/:nodeId - Get one item
//	GET  /v1/atlas/snapshots/:id/orphans - List unreachable items
//	GET  /v1/atlas/snapshots/:id/subgraph - Extract a neighborhood
//	GET  /v1/atlas/snapshots/:id/descendants - Count items beneath one item
//	GET  /v1/atlas/snapshots/:id/hubs - Rank multi-parent items
//	GET  /v1/atlas/snapshots/:id/paths - Reconstruct root-to-item paths
//	GET  /v1/atlas/snapshots/:id/warnings - Build anomaly report
//	GET  /v1/atlas/health - Health check
//	GET  /v1/atlas/ready - Readiness check
//
// Example:
//
//	service := atlas.NewService(atlas.DefaultServiceConfig())
//	handlers := atlas.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	atlas.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	a := rg.Group("/atlas")
	{
		// Snapshot lifecycle
		a.POST("/snapshots", handlers.HandleBuild)
		a.GET("/snapshots", handlers.HandleListSnapshots)

		// Graph queries
		a.GET("/snapshots/:id/nodes/:nodeId", handlers.HandleGetNode)
		a.GET("/snapshots/:id/orphans", handlers.HandleOrphans)
		a.GET("/snapshots/:id/subgraph", handlers.HandleSubgraph)
		a.GET("/snapshots/:id/descendants", handlers.HandleDescendants)
		a.GET("/snapshots/:id/hubs", handlers.HandleHubs)
		a.GET("/snapshots/:id/paths", handlers.HandlePaths)
		a.GET("/snapshots/:id/warnings", handlers.HandleWarnings)

		// Health checks
		a.GET("/health", handlers.HandleHealth)
		a.GET("/ready", handlers.HandleReady)
	}
}
