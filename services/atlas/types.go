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
	"github.com/AleutianAI/DriveAtlas/services/atlas/dag"
	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
)

// BuildRequest is the request body for POST /v1/atlas/snapshots.
type BuildRequest struct {
	// Name is a caller-chosen label for the listing, used for build
	// serialization and persistence. Required.
	Name string `json:"name" binding:"required"`

	// Items is the flat drive listing to build from. Required.
	Items []inventory.Item `json:"items" binding:"required"`

	// Persist stores the listing in the configured store so the snapshot
	// can be rebuilt after a restart. Ignored when no store is configured.
	Persist bool `json:"persist"`
}

// BuildResponse is the response for POST /v1/atlas/snapshots.
type BuildResponse struct {
	// SnapshotID is the content-derived identifier for this snapshot.
	SnapshotID string `json:"snapshot_id"`

	// Name is the listing label the snapshot was built under.
	Name string `json:"name"`

	// IsRefresh indicates this replaced a snapshot with the same id.
	IsRefresh bool `json:"is_refresh"`

	// NodeCount is the number of items admitted to the graph.
	NodeCount int `json:"node_count"`

	// EdgeCount is the number of distinct parent/child edges.
	EdgeCount int `json:"edge_count"`

	// RootCount is the number of top-level items.
	RootCount int `json:"root_count"`

	// MaxDepth is the longest-path depth of the graph.
	MaxDepth int `json:"max_depth"`

	// Warnings summarizes the input anomalies absorbed during the build.
	Warnings dag.Warnings `json:"warnings"`

	// Persisted indicates the listing was written to the store.
	Persisted bool `json:"persisted"`

	// BuildTimeMs is the wall-clock build time in milliseconds.
	BuildTimeMs int64 `json:"build_time_ms"`
}

// SnapshotSummary describes one cached snapshot.
type SnapshotSummary struct {
	SnapshotID   string `json:"snapshot_id"`
	Name         string `json:"name"`
	NodeCount    int    `json:"node_count"`
	EdgeCount    int    `json:"edge_count"`
	RootCount    int    `json:"root_count"`
	MaxDepth     int    `json:"max_depth"`
	CycleFlagged bool   `json:"cycle_flagged"`
	BuiltAtMilli int64  `json:"built_at_milli"`
}

// SnapshotListResponse is the response for GET /v1/atlas/snapshots.
type SnapshotListResponse struct {
	Snapshots []SnapshotSummary `json:"snapshots"`
}

// NodeResponse is the response for GET /v1/atlas/snapshots/:id/nodes/:nodeId.
type NodeResponse struct {
	Item inventory.Item `json:"item"`

	// ParentIDs are the resolvable parents, duplicates removed.
	ParentIDs []string `json:"parentIds"`

	// ChildIDs are the node's children in listing order.
	ChildIDs []string `json:"childIds"`

	// Depth is the longest-path depth, or -1 if the node is unreachable
	// from every root.
	Depth int `json:"depth"`
}

// OrphansResponse is the response for GET /v1/atlas/snapshots/:id/orphans.
type OrphansResponse struct {
	// OrphanIDs are the items not reachable from any root, in listing
	// order.
	OrphanIDs []string `json:"orphan_ids"`

	// ReachableCount is the number of items reachable from the roots.
	ReachableCount int `json:"reachable_count"`

	// Truncated indicates the reachability sweep hit a cap; OrphanIDs may
	// then include items that are actually reachable.
	Truncated bool `json:"truncated"`
}

// SubgraphResponse is the response for GET /v1/atlas/snapshots/:id/subgraph.
type SubgraphResponse struct {
	CenterID string `json:"center_id"`
	Hops     int    `json:"hops"`

	// NodeIDs lists the neighborhood in discovery order, center first.
	NodeIDs []string `json:"node_ids"`

	// Edges are the directed edges between neighborhood members.
	Edges []dag.Edge `json:"edges"`

	Truncated bool `json:"truncated"`
}

// DescendantsResponse is the response for GET /v1/atlas/snapshots/:id/descendants.
type DescendantsResponse struct {
	StartID string `json:"start_id"`

	// DescendantCount is the number of distinct items beneath the start.
	// A lower bound when Truncated is set.
	DescendantCount int `json:"descendant_count"`

	Truncated bool `json:"truncated"`
}

// HubInfo describes one multi-parent item for hub ranking.
type HubInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ParentCount int    `json:"parent_count"`

	// DescendantCount is capped; a lower bound when Truncated is set.
	DescendantCount int  `json:"descendant_count"`
	Truncated       bool `json:"truncated"`
}

// HubsResponse is the response for GET /v1/atlas/snapshots/:id/hubs.
type HubsResponse struct {
	// Hubs holds multi-parent items sorted by parent count descending,
	// listing order breaking ties.
	Hubs []HubInfo `json:"hubs"`

	// MultiParentTotal is the full number of multi-parent items, before
	// the limit was applied.
	MultiParentTotal int `json:"multi_parent_total"`
}

// PathsResponse is the response for GET /v1/atlas/snapshots/:id/paths.
type PathsResponse struct {
	TargetID string `json:"target_id"`

	// Paths holds one shortest root-to-target path per reachable root,
	// each ordered root first.
	Paths [][]string `json:"paths"`

	Truncated bool `json:"truncated"`
}

// WarningsResponse is the response for GET /v1/atlas/snapshots/:id/warnings.
type WarningsResponse struct {
	Warnings dag.Warnings `json:"warnings"`
}

// HealthResponse is the response for GET /v1/atlas/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse is the response for GET /v1/atlas/ready.
type ReadyResponse struct {
	Ready         bool `json:"ready"`
	SnapshotCount int  `json:"snapshot_count"`
	StoreOK       bool `json:"store_ok"`
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
