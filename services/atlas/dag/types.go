// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dag

import (
	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
)

// Default traversal and build limits.
const (
	// DefaultMaxItems is the default maximum listing size a build accepts.
	// Items beyond the limit are dropped and noted in Warnings.
	DefaultMaxItems = 1_000_000

	// DefaultMaxVisitNodes bounds traversals when no node cap is given.
	// Generous enough to cover any realistic account, small enough to stop
	// runaway work on pathological inputs.
	DefaultMaxVisitNodes = 250_000

	// DefaultMaxSubgraphEdges bounds returned subgraph edge lists when no
	// edge cap is given.
	DefaultMaxSubgraphEdges = 500_000

	// DefaultMaxHops bounds frontier expansion when no hop cap is given.
	DefaultMaxHops = 1_000

	// DefaultMaxPaths is the default number of reconstructed paths.
	DefaultMaxPaths = 16

	// DefaultMaxPathLen is the default maximum length of one path, in nodes.
	DefaultMaxPathLen = 256
)

// DepthUndefined is the Depth value for nodes that are only reachable
// through a cyclic remainder and never from a true root. The build cannot
// assign such nodes a meaningful longest-path depth.
const DepthUndefined = -1

// Node is one item of the listing placed in the graph.
//
// ParentIDs holds only references that resolved to items present in the
// listing, in provider order with duplicates removed. ChildIDs holds the
// children materialized from edges actually created, in listing order.
type Node struct {
	// Item is the source record.
	Item inventory.Item

	// ParentIDs are the resolvable parent ids.
	ParentIDs []string

	// ChildIDs are the materialized child ids.
	ChildIDs []string
}

// Edge is one deduplicated parent→child relationship.
type Edge struct {
	// ParentID is the containing folder's item id.
	ParentID string

	// ChildID is the contained item's id.
	ChildID string
}

// Warnings records the structural anomalies absorbed during a build.
//
// Counters are zero and CycleDetected false for a well-formed listing.
// Notes contains display-ready summaries of the non-zero counters, suitable
// for a warning banner without further formatting.
type Warnings struct {
	// MissingParentRefs counts parent references to ids absent from the
	// listing. The referencing item keeps its other parents; if none
	// remain it becomes a root.
	MissingParentRefs int `json:"missingParentRefs"`

	// DuplicateEdges counts repeated (parent, child) pairs collapsed into
	// one edge.
	DuplicateEdges int `json:"duplicateEdges"`

	// CycleDetected is true if the listing's references contain a cycle.
	CycleDetected bool `json:"cycleDetected"`

	// CycleNodeCount is how many nodes sit in the unresolved cyclic
	// remainder of the topological order.
	CycleNodeCount int `json:"cycleNodeCount"`

	// Notes are human-readable summaries of the above.
	Notes []string `json:"notes"`
}

// DriveDag is one immutable snapshot of the directory graph.
//
// Thread Safety:
//
//	DriveDag is frozen at construction; all methods are read-only and safe
//	for concurrent use.
type DriveDag struct {
	// nodes maps item id to its node. Exactly one entry per listing item.
	nodes map[string]*Node

	// order holds node ids in original listing order, for stable
	// iteration and the cyclic topo remainder.
	order []string

	// edges is the deduplicated edge list.
	edges []Edge

	// children and parents are the derived adjacency indexes. The slices
	// are shared with the Node ChildIDs/ParentIDs storage.
	children map[string][]string
	parents  map[string][]string

	// roots are the ids with no resolvable parent, in listing order.
	roots []string

	// topoOrder spans every node: a valid linearization of the acyclic
	// portion followed by the cyclic remainder in listing order.
	topoOrder []string

	// depth maps id to longest-path distance from any root, or
	// DepthUndefined for nodes only reachable through a cycle.
	depth map[string]int

	// maxDepth is the maximum defined depth.
	maxDepth int

	// warnings records the anomalies absorbed by the build.
	warnings Warnings

	// builtAtMilli is the Unix millisecond timestamp of the build.
	builtAtMilli int64
}

// NodeCount returns the number of nodes in the snapshot.
func (d *DriveDag) NodeCount() int {
	return len(d.nodes)
}

// EdgeCount returns the number of deduplicated edges.
func (d *DriveDag) EdgeCount() int {
	return len(d.edges)
}

// GetNode retrieves a node by item id.
func (d *DriveDag) GetNode(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns an iterator over all nodes in listing order.
func (d *DriveDag) Nodes() func(yield func(string, *Node) bool) {
	return func(yield func(string, *Node) bool) {
		for _, id := range d.order {
			if !yield(id, d.nodes[id]) {
				return
			}
		}
	}
}

// Edges returns the deduplicated edge list. Callers must not modify it.
func (d *DriveDag) Edges() []Edge {
	return d.edges
}

// ChildrenOf returns the child ids of the given node, or nil if the id is
// unknown. Callers must not modify the returned slice.
func (d *DriveDag) ChildrenOf(id string) []string {
	return d.children[id]
}

// ParentsOf returns the resolvable parent ids of the given node, or nil if
// the id is unknown. Callers must not modify the returned slice.
func (d *DriveDag) ParentsOf(id string) []string {
	return d.parents[id]
}

// Roots returns the ids with no resolvable parent, in listing order.
// An item whose only listed parent was dangling is a root; the dropped
// reference is counted in Warnings, not hidden.
func (d *DriveDag) Roots() []string {
	return d.roots
}

// TopoOrder returns a best-effort topological order spanning every node.
// For cyclic listings the unresolvable remainder is appended in listing
// order, so the result always has exactly NodeCount entries.
func (d *DriveDag) TopoOrder() []string {
	return d.topoOrder
}

// Depth returns the longest-path distance of id from any root.
// The second return is false for unknown ids. Known ids that are only
// reachable through a cyclic remainder report DepthUndefined.
func (d *DriveDag) Depth(id string) (int, bool) {
	dep, ok := d.depth[id]
	return dep, ok
}

// MaxDepth returns the maximum defined depth across the snapshot.
func (d *DriveDag) MaxDepth() int {
	return d.maxDepth
}

// Warnings returns the anomaly record for this snapshot.
func (d *DriveDag) Warnings() Warnings {
	return d.warnings
}

// BuiltAtMilli returns the Unix millisecond timestamp of the build.
func (d *DriveDag) BuiltAtMilli() int64 {
	return d.builtAtMilli
}
