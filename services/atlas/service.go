// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package atlas provides the Atlas HTTP service for drive graph exploration.
//
// The service exposes endpoints for:
//   - Building and caching directory graph snapshots from flat listings
//   - Reachability and orphan detection
//   - Neighborhood subgraph extraction
//   - Descendant counting and hub ranking
//   - Root-to-item path reconstruction
package atlas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/AleutianAI/DriveAtlas/services/atlas/dag"
	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
	"github.com/AleutianAI/DriveAtlas/services/atlas/store"
)

// ServiceConfig configures the Atlas service.
type ServiceConfig struct {
	// MaxBuildDuration is the maximum time allowed for a build.
	// Default: 30s
	MaxBuildDuration time.Duration

	// MaxListingItems is the maximum number of items accepted per listing.
	// Default: 1000000
	MaxListingItems int

	// MaxCachedSnapshots is the maximum number of snapshots to cache.
	// Default: 8
	MaxCachedSnapshots int

	// SnapshotTTL is how long snapshots are cached before expiry.
	// Default: 0 (no expiry)
	SnapshotTTL time.Duration

	// MaxVisitNodes caps traversal visits per query.
	// Default: dag.DefaultMaxVisitNodes
	MaxVisitNodes int

	// MaxSubgraphEdges caps edges returned per subgraph query.
	// Default: dag.DefaultMaxSubgraphEdges
	MaxSubgraphEdges int
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxBuildDuration:   30 * time.Second,
		MaxListingItems:    dag.DefaultMaxItems,
		MaxCachedSnapshots: 8,
		SnapshotTTL:        0, // No expiry
		MaxVisitNodes:      dag.DefaultMaxVisitNodes,
		MaxSubgraphEdges:   dag.DefaultMaxSubgraphEdges,
	}
}

// CachedSnapshot holds a built graph and its metadata.
type CachedSnapshot struct {
	Dag            *dag.DriveDag
	SnapshotID     string
	Name           string
	BuiltAtMilli   int64
	ExpiresAtMilli int64

	// seq orders cache entries by insertion; BuiltAtMilli alone cannot
	// break ties between builds landing in the same millisecond.
	seq uint64
}

// Service is the Atlas service.
//
// Thread Safety:
//
//	Service is safe for concurrent use. Multiple goroutines can call
//	any combination of methods simultaneously.
type Service struct {
	config     ServiceConfig
	snapshots  map[string]*CachedSnapshot
	nextSeq    uint64
	mu         sync.RWMutex
	buildLocks sync.Map // listing name -> *sync.Mutex

	// store is optional listing persistence
	store *store.ListingStore
}

// NewService creates a new Atlas service.
func NewService(config ServiceConfig) *Service {
	return &Service{
		config:    config,
		snapshots: make(map[string]*CachedSnapshot),
	}
}

// WithStore sets the persistent listing store. Returns the service for
// method chaining.
func (s *Service) WithStore(st *store.ListingStore) *Service {
	s.store = st
	return s
}

// HasStore reports whether a persistent store is configured.
func (s *Service) HasStore() bool {
	return s.store != nil
}

// BuildSnapshot builds and caches a graph snapshot from a flat listing.
//
// Description:
//
//	Computes a content-derived snapshot id, builds the graph, and caches
//	it. The same listing content always maps to the same id, so a
//	rebuild of unchanged content is reported as a refresh. Input
//	anomalies never fail the build; they surface in the response
//	Warnings.
//
// Inputs:
//
//	ctx - Context for cancellation
//	name - Caller-chosen listing label; builds with the same name are
//	    serialized
//	items - The flat drive listing
//	persist - Store the listing for rebuild after restart
//
// Outputs:
//
//	*BuildResponse - Snapshot id, graph statistics, and warnings
//	error - Non-nil if validation fails or another build holds the name
//
// Errors:
//
//	ErrEmptyListing - The listing carried no items
//	ErrListingTooLarge - The listing exceeds MaxListingItems
//	ErrBuildInProgress - Another build is running under this name
func (s *Service) BuildSnapshot(ctx context.Context, name string, items []inventory.Item, persist bool) (*BuildResponse, error) {
	if len(items) == 0 {
		return nil, ErrEmptyListing
	}
	if s.config.MaxListingItems > 0 && len(items) > s.config.MaxListingItems {
		return nil, ErrListingTooLarge
	}

	lock := s.getBuildLock(name)
	if !lock.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer lock.Unlock()

	if s.config.MaxBuildDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.MaxBuildDuration)
		defer cancel()
	}

	start := time.Now()
	snapshotID := generateSnapshotID(items)

	s.mu.RLock()
	_, isRefresh := s.snapshots[snapshotID]
	s.mu.RUnlock()

	d := dag.Build(ctx, items)

	cached := &CachedSnapshot{
		Dag:          d,
		SnapshotID:   snapshotID,
		Name:         name,
		BuiltAtMilli: time.Now().UnixMilli(),
	}
	if s.config.SnapshotTTL > 0 {
		cached.ExpiresAtMilli = time.Now().Add(s.config.SnapshotTTL).UnixMilli()
	}

	s.mu.Lock()
	s.nextSeq++
	cached.seq = s.nextSeq
	s.snapshots[snapshotID] = cached
	s.evictIfNeeded()
	s.mu.Unlock()

	persisted := false
	if persist && s.store != nil {
		if err := s.store.Save(ctx, snapshotID, name, items); err == nil {
			persisted = true
		}
	}

	return &BuildResponse{
		SnapshotID:  snapshotID,
		Name:        name,
		IsRefresh:   isRefresh,
		NodeCount:   d.NodeCount(),
		EdgeCount:   d.EdgeCount(),
		RootCount:   len(d.Roots()),
		MaxDepth:    d.MaxDepth(),
		Warnings:    d.Warnings(),
		Persisted:   persisted,
		BuildTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// RestoreSnapshots rebuilds every listing found in the store.
//
// Description:
//
//	Called at startup to repopulate the cache from persisted listings.
//	A listing that fails to load is skipped; the remaining listings
//	still restore.
//
// Outputs:
//
//	int - The number of snapshots restored
//	error - ErrStoreUnavailable if no store is configured
func (s *Service) RestoreSnapshots(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, ErrStoreUnavailable
	}

	ids, err := s.store.IDs(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, id := range ids {
		name, items, err := s.store.Load(ctx, id)
		if err != nil {
			continue
		}
		if _, err := s.BuildSnapshot(ctx, name, items, false); err != nil {
			continue
		}
		restored++
	}
	return restored, nil
}

// GetSnapshot retrieves a cached snapshot by id.
//
// Errors:
//
//	ErrSnapshotNotFound - No snapshot exists for the id
//	ErrSnapshotExpired - The snapshot passed its TTL
func (s *Service) GetSnapshot(snapshotID string) (*CachedSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached, ok := s.snapshots[snapshotID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	if cached.ExpiresAtMilli > 0 && time.Now().UnixMilli() > cached.ExpiresAtMilli {
		return nil, ErrSnapshotExpired
	}

	return cached, nil
}

// ListSnapshots returns summaries of every cached snapshot, newest first.
func (s *Service) ListSnapshots() []SnapshotSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]SnapshotSummary, 0, len(s.snapshots))
	for _, cached := range s.snapshots {
		summaries = append(summaries, SnapshotSummary{
			SnapshotID:   cached.SnapshotID,
			Name:         cached.Name,
			NodeCount:    cached.Dag.NodeCount(),
			EdgeCount:    cached.Dag.EdgeCount(),
			RootCount:    len(cached.Dag.Roots()),
			MaxDepth:     cached.Dag.MaxDepth(),
			CycleFlagged: cached.Dag.Warnings().CycleDetected,
			BuiltAtMilli: cached.BuiltAtMilli,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].BuiltAtMilli > summaries[j].BuiltAtMilli
	})
	return summaries
}

// SnapshotCount returns the number of cached snapshots.
func (s *Service) SnapshotCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// GetNode returns one item with its resolved relationships.
//
// Errors:
//
//	ErrSnapshotNotFound, ErrSnapshotExpired - Snapshot lookup failed
//	ErrNodeNotFound - The item id is not in the snapshot
func (s *Service) GetNode(ctx context.Context, snapshotID, nodeID string) (*NodeResponse, error) {
	cached, err := s.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}

	node, ok := cached.Dag.GetNode(nodeID)
	if !ok {
		return nil, ErrNodeNotFound
	}

	depth, _ := cached.Dag.Depth(nodeID)
	return &NodeResponse{
		Item:      node.Item,
		ParentIDs: node.ParentIDs,
		ChildIDs:  node.ChildIDs,
		Depth:     depth,
	}, nil
}

// Orphans returns the items unreachable from every root.
//
// Description:
//
//	Runs a capped reachability sweep from the roots and reports the
//	complement in listing order. On truncation the orphan list may
//	contain reachable items; the flag tells the caller to treat the
//	list as approximate.
func (s *Service) Orphans(ctx context.Context, snapshotID string, maxNodes int) (*OrphansResponse, error) {
	cached, err := s.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}

	opts := s.traverseOptions(maxNodes, 0)
	reach := cached.Dag.ReachableFromRoots(ctx, cached.Dag.Roots(), opts...)

	var orphans []string
	for id := range cached.Dag.Nodes() {
		if _, ok := reach.Reachable[id]; !ok {
			orphans = append(orphans, id)
		}
	}

	return &OrphansResponse{
		OrphanIDs:      orphans,
		ReachableCount: reach.VisitedCount,
		Truncated:      reach.Truncated,
	}, nil
}

// Subgraph extracts the neighborhood around one item.
//
// Errors:
//
//	ErrNodeNotFound - The center id is not in the snapshot
func (s *Service) Subgraph(ctx context.Context, snapshotID, centerID string, hops, maxNodes, maxEdges int) (*SubgraphResponse, error) {
	cached, err := s.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}
	if _, ok := cached.Dag.GetNode(centerID); !ok {
		return nil, ErrNodeNotFound
	}

	opts := s.traverseOptions(maxNodes, maxEdges)
	sub := cached.Dag.SubgraphAround(ctx, centerID, hops, opts...)

	return &SubgraphResponse{
		CenterID:  centerID,
		Hops:      hops,
		NodeIDs:   sub.NodeIDs,
		Edges:     sub.Edges,
		Truncated: sub.Truncated,
	}, nil
}

// Descendants counts the items beneath one item.
//
// Errors:
//
//	ErrNodeNotFound - The start id is not in the snapshot
func (s *Service) Descendants(ctx context.Context, snapshotID, startID string, maxNodes int) (*DescendantsResponse, error) {
	cached, err := s.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}
	if _, ok := cached.Dag.GetNode(startID); !ok {
		return nil, ErrNodeNotFound
	}

	opts := s.traverseOptions(maxNodes, 0)
	res := cached.Dag.CountDescendants(ctx, startID, opts...)

	return &DescendantsResponse{
		StartID:         startID,
		DescendantCount: res.DescendantCount,
		Truncated:       res.Truncated,
	}, nil
}

// Hubs ranks the multi-parent items by how widely they are shared.
//
// Description:
//
//	Enumerates every item with more than one resolvable parent, counts
//	its descendants under the traversal caps, and returns the top
//	entries sorted by parent count descending. Listing order breaks
//	ties, so the ranking is stable for a given listing.
func (s *Service) Hubs(ctx context.Context, snapshotID string, limit, maxNodes int) (*HubsResponse, error) {
	cached, err := s.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}

	multiParent := cached.Dag.MultiParentIDs()
	opts := s.traverseOptions(maxNodes, 0)

	hubs := make([]HubInfo, 0, len(multiParent))
	for _, id := range multiParent {
		node, _ := cached.Dag.GetNode(id)
		desc := cached.Dag.CountDescendants(ctx, id, opts...)
		hubs = append(hubs, HubInfo{
			ID:              id,
			Name:            node.Item.Name,
			ParentCount:     len(node.ParentIDs),
			DescendantCount: desc.DescendantCount,
			Truncated:       desc.Truncated,
		})
	}

	sort.SliceStable(hubs, func(i, j int) bool {
		return hubs[i].ParentCount > hubs[j].ParentCount
	})
	if len(hubs) > limit {
		hubs = hubs[:limit]
	}

	return &HubsResponse{
		Hubs:             hubs,
		MultiParentTotal: len(multiParent),
	}, nil
}

// Paths reconstructs shortest root-to-item paths.
//
// Errors:
//
//	ErrNodeNotFound - The target id is not in the snapshot
func (s *Service) Paths(ctx context.Context, snapshotID, targetID string, maxPaths int) (*PathsResponse, error) {
	cached, err := s.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}
	if _, ok := cached.Dag.GetNode(targetID); !ok {
		return nil, ErrNodeNotFound
	}

	var opts []dag.TraverseOption
	if maxPaths > 0 {
		opts = append(opts, dag.WithMaxPaths(maxPaths))
	}
	if s.config.MaxVisitNodes > 0 {
		opts = append(opts, dag.WithMaxNodes(s.config.MaxVisitNodes))
	}

	res := cached.Dag.PathsToTarget(ctx, targetID, cached.Dag.Roots(), opts...)

	return &PathsResponse{
		TargetID:  targetID,
		Paths:     res.Paths,
		Truncated: res.Truncated,
	}, nil
}

// Warnings returns the anomaly report recorded when the snapshot was built.
func (s *Service) Warnings(ctx context.Context, snapshotID string) (*WarningsResponse, error) {
	cached, err := s.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}
	return &WarningsResponse{Warnings: cached.Dag.Warnings()}, nil
}

// traverseOptions merges per-request caps with the configured ceilings.
// A request cap of zero falls back to the service ceiling.
func (s *Service) traverseOptions(maxNodes, maxEdges int) []dag.TraverseOption {
	var opts []dag.TraverseOption
	if maxNodes <= 0 {
		maxNodes = s.config.MaxVisitNodes
	}
	if maxNodes > 0 {
		opts = append(opts, dag.WithMaxNodes(maxNodes))
	}
	if maxEdges <= 0 {
		maxEdges = s.config.MaxSubgraphEdges
	}
	if maxEdges > 0 {
		opts = append(opts, dag.WithMaxEdges(maxEdges))
	}
	return opts
}

// generateSnapshotID creates a deterministic id from the listing content.
func generateSnapshotID(items []inventory.Item) string {
	payload, err := json.Marshal(items)
	if err != nil {
		payload = []byte{}
	}
	hash := sha256.Sum256(payload)
	return hex.EncodeToString(hash[:])[:16]
}

// getBuildLock returns the build lock for a listing name.
func (s *Service) getBuildLock(name string) *sync.Mutex {
	lock, _ := s.buildLocks.LoadOrStore(name, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// evictIfNeeded removes oldest-inserted snapshots while over capacity.
// Caller must hold write lock.
func (s *Service) evictIfNeeded() {
	for len(s.snapshots) > s.config.MaxCachedSnapshots {
		var oldestID string
		var oldestSeq uint64
		for id, cached := range s.snapshots {
			if oldestID == "" || cached.seq < oldestSeq {
				oldestSeq = cached.seq
				oldestID = id
			}
		}
		if oldestID == "" {
			return
		}
		delete(s.snapshots, oldestID)
	}
}
