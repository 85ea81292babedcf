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
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceVersion is the Atlas service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for Atlas.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleBuild handles POST /v1/atlas/snapshots.
//
// Description:
//
//	Builds a graph snapshot from a flat drive listing and caches it.
//	Input anomalies (dangling refs, duplicate edges, cycles) do not fail
//	the request; they come back in the response warnings.
//
// Request Body:
//
//	BuildRequest
//
// Response:
//
//	200 OK: BuildResponse
//	400 Bad Request: Validation error
//	409 Conflict: Another build is running under this name
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleBuild(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleBuild")

	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	logger.Info("Building snapshot", "name", req.Name, "item_count", len(req.Items))

	resp, err := h.svc.BuildSnapshot(c.Request.Context(), req.Name, req.Items, req.Persist)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "BUILD_FAILED"

		if errors.Is(err, ErrEmptyListing) {
			statusCode = http.StatusBadRequest
			errCode = "EMPTY_LISTING"
		} else if errors.Is(err, ErrListingTooLarge) {
			statusCode = http.StatusBadRequest
			errCode = "LISTING_TOO_LARGE"
		} else if errors.Is(err, ErrBuildInProgress) {
			statusCode = http.StatusConflict
			errCode = "BUILD_IN_PROGRESS"
		}

		logger.Error("Build failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Snapshot built",
		"snapshot_id", resp.SnapshotID,
		"node_count", resp.NodeCount,
		"edge_count", resp.EdgeCount,
		"build_time_ms", resp.BuildTimeMs)

	c.JSON(http.StatusOK, resp)
}

// HandleListSnapshots handles GET /v1/atlas/snapshots.
//
// Response:
//
//	200 OK: SnapshotListResponse
func (h *Handlers) HandleListSnapshots(c *gin.Context) {
	c.JSON(http.StatusOK, SnapshotListResponse{
		Snapshots: h.svc.ListSnapshots(),
	})
}

// HandleGetNode handles GET /v1/atlas/snapshots/:id/nodes/:nodeId.
//
// Path Parameters:
//
//	id: Snapshot ID (required)
//	nodeId: Item ID (required)
//
// Response:
//
//	200 OK: NodeResponse
//	404 Not Found: Snapshot or item not found
func (h *Handlers) HandleGetNode(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetNode")

	resp, err := h.svc.GetNode(c.Request.Context(), c.Param("id"), c.Param("nodeId"))
	if err != nil {
		h.writeSnapshotError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleOrphans handles GET /v1/atlas/snapshots/:id/orphans.
//
// Description:
//
//	Lists the items no chain of parents connects to a root. These are
//	the entries a tree-shaped UI silently hides.
//
// Query Parameters:
//
//	max_nodes: Cap on reachability visits (optional)
//
// Response:
//
//	200 OK: OrphansResponse
//	404 Not Found: Snapshot not found
func (h *Handlers) HandleOrphans(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleOrphans")

	resp, err := h.svc.Orphans(c.Request.Context(), c.Param("id"), queryInt(c, "max_nodes"))
	if err != nil {
		h.writeSnapshotError(c, logger, err)
		return
	}

	logger.Info("Orphan sweep complete",
		"orphan_count", len(resp.OrphanIDs),
		"truncated", resp.Truncated)

	c.JSON(http.StatusOK, resp)
}

// HandleSubgraph handles GET /v1/atlas/snapshots/:id/subgraph.
//
// Query Parameters:
//
//	center: Item id to explore around (required)
//	hops: Neighborhood radius (default 1)
//	max_nodes: Cap on discovered nodes (optional)
//	max_edges: Cap on returned edges (optional)
//
// Response:
//
//	200 OK: SubgraphResponse
//	400 Bad Request: Missing center parameter
//	404 Not Found: Snapshot or center not found
func (h *Handlers) HandleSubgraph(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSubgraph")

	center := c.Query("center")
	if center == "" {
		logger.Warn("Missing center parameter")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "center parameter is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	hops := queryInt(c, "hops")
	if hops == 0 && c.Query("hops") == "" {
		hops = 1
	}

	resp, err := h.svc.Subgraph(c.Request.Context(), c.Param("id"), center, hops,
		queryInt(c, "max_nodes"), queryInt(c, "max_edges"))
	if err != nil {
		h.writeSnapshotError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleDescendants handles GET /v1/atlas/snapshots/:id/descendants.
//
// Query Parameters:
//
//	start: Item id to count beneath (required)
//	max_nodes: Cap on traversal visits (optional)
//
// Response:
//
//	200 OK: DescendantsResponse
//	400 Bad Request: Missing start parameter
//	404 Not Found: Snapshot or item not found
func (h *Handlers) HandleDescendants(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDescendants")

	start := c.Query("start")
	if start == "" {
		logger.Warn("Missing start parameter")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "start parameter is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	resp, err := h.svc.Descendants(c.Request.Context(), c.Param("id"), start, queryInt(c, "max_nodes"))
	if err != nil {
		h.writeSnapshotError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleHubs handles GET /v1/atlas/snapshots/:id/hubs.
//
// Description:
//
//	Ranks the multi-parent items, the drive's genuinely shared folders
//	and files, by parent count with descendant totals attached.
//
// Query Parameters:
//
//	limit: Maximum hubs returned (default 20)
//	max_nodes: Cap on descendant counting per hub (optional)
//
// Response:
//
//	200 OK: HubsResponse
//	404 Not Found: Snapshot not found
func (h *Handlers) HandleHubs(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleHubs")

	resp, err := h.svc.Hubs(c.Request.Context(), c.Param("id"), queryInt(c, "limit"), queryInt(c, "max_nodes"))
	if err != nil {
		h.writeSnapshotError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandlePaths handles GET /v1/atlas/snapshots/:id/paths.
//
// Query Parameters:
//
//	target: Item id paths should end at (required)
//	max_paths: Cap on reconstructed paths (optional)
//
// Response:
//
//	200 OK: PathsResponse
//	400 Bad Request: Missing target parameter
//	404 Not Found: Snapshot or target not found
func (h *Handlers) HandlePaths(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandlePaths")

	target := c.Query("target")
	if target == "" {
		logger.Warn("Missing target parameter")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "target parameter is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	resp, err := h.svc.Paths(c.Request.Context(), c.Param("id"), target, queryInt(c, "max_paths"))
	if err != nil {
		h.writeSnapshotError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleWarnings handles GET /v1/atlas/snapshots/:id/warnings.
//
// Response:
//
//	200 OK: WarningsResponse
//	404 Not Found: Snapshot not found
func (h *Handlers) HandleWarnings(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleWarnings")

	resp, err := h.svc.Warnings(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeSnapshotError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/atlas/health.
//
// Description:
//
//	Returns the health status of the service. Always returns 200 if running.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/atlas/ready.
//
// Response:
//
//	200 OK: ReadyResponse
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:         true,
		SnapshotCount: h.svc.SnapshotCount(),
		StoreOK:       h.svc.HasStore(),
	})
}

// writeSnapshotError maps service errors to HTTP responses.
func (h *Handlers) writeSnapshotError(c *gin.Context, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	errCode := "QUERY_FAILED"

	if errors.Is(err, ErrSnapshotNotFound) {
		statusCode = http.StatusNotFound
		errCode = "SNAPSHOT_NOT_FOUND"
	} else if errors.Is(err, ErrSnapshotExpired) {
		statusCode = http.StatusNotFound
		errCode = "SNAPSHOT_EXPIRED"
	} else if errors.Is(err, ErrNodeNotFound) {
		statusCode = http.StatusNotFound
		errCode = "NODE_NOT_FOUND"
	}

	logger.Warn("Snapshot query failed", "error", err)
	c.JSON(statusCode, ErrorResponse{
		Error: err.Error(),
		Code:  errCode,
	})
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed.
func queryInt(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// getOrCreateRequestID returns the request id, generating one if absent.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
