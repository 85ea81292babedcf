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
	"context"
	"testing"

	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
)

// chainDag builds r -> n1 -> n2 -> ... -> n5.
func chainDag(t *testing.T) *DriveDag {
	t.Helper()
	items := []inventory.Item{
		item("r"),
		item("n1", "r"),
		item("n2", "n1"),
		item("n3", "n2"),
		item("n4", "n3"),
		item("n5", "n4"),
	}
	return Build(context.Background(), items)
}

// islandDag has a rooted component and a floating two-node island.
func islandDag(t *testing.T) *DriveDag {
	t.Helper()
	items := []inventory.Item{
		item("root"),
		item("child", "root"),
		item("lost-a", "ghost"),
		item("lost-b", "lost-a"),
	}
	return Build(context.Background(), items)
}

func TestReachableFromRoots_FullGraph(t *testing.T) {
	d := chainDag(t)

	res := d.ReachableFromRoots(context.Background(), d.Roots())

	if res.Truncated {
		t.Fatal("Truncated = true, want false")
	}
	if res.VisitedCount != 6 {
		t.Errorf("VisitedCount = %d, want 6", res.VisitedCount)
	}
	for _, id := range []string{"r", "n1", "n5"} {
		if _, ok := res.Reachable[id]; !ok {
			t.Errorf("%s missing from reachable set", id)
		}
	}
}

func TestReachableFromRoots_RaisingNodeCapNeverShrinksSet(t *testing.T) {
	// Diamond into a chain: root -> a,b -> shared -> n1 -> n2 -> n3.
	items := []inventory.Item{
		item("root"),
		item("a", "root"),
		item("b", "root"),
		item("shared", "a", "b"),
		item("n1", "shared"),
		item("n2", "n1"),
		item("n3", "n2"),
	}
	d := Build(context.Background(), items)

	prev := map[string]struct{}{}
	for limit := 1; limit <= d.NodeCount(); limit++ {
		res := d.ReachableFromRoots(context.Background(), d.Roots(), WithMaxNodes(limit))
		for id := range prev {
			if _, ok := res.Reachable[id]; !ok {
				t.Fatalf("maxNodes=%d dropped %s, reachable at maxNodes=%d", limit, id, limit-1)
			}
		}
		if len(res.Reachable) < len(prev) {
			t.Fatalf("maxNodes=%d reachable set shrank: %d -> %d", limit, len(prev), len(res.Reachable))
		}
		prev = res.Reachable
	}
	if len(prev) != d.NodeCount() {
		t.Errorf("uncapped-size sweep reached %d nodes, want %d", len(prev), d.NodeCount())
	}
}

func TestReachableFromRoots_NodeCapTruncates(t *testing.T) {
	d := chainDag(t)

	res := d.ReachableFromRoots(context.Background(), d.Roots(), WithMaxNodes(3))

	if !res.Truncated {
		t.Fatal("Truncated = false, want true")
	}
	if res.VisitedCount != 3 {
		t.Errorf("VisitedCount = %d, want 3", res.VisitedCount)
	}
	// Everything reported reachable genuinely is.
	for id := range res.Reachable {
		if _, ok := d.GetNode(id); !ok {
			t.Errorf("reported unknown id %s", id)
		}
	}
}

func TestReachableFromRoots_HopCapTruncates(t *testing.T) {
	d := chainDag(t)

	res := d.ReachableFromRoots(context.Background(), d.Roots(), WithMaxHops(2))

	if !res.Truncated {
		t.Fatal("Truncated = false, want true")
	}
	if res.VisitedCount != 3 {
		t.Errorf("VisitedCount = %d, want r,n1,n2", res.VisitedCount)
	}
	if _, ok := res.Reachable["n3"]; ok {
		t.Error("n3 reachable within 2 hops, want excluded")
	}
}

func TestReachableFromRoots_ZeroCapClampsToOne(t *testing.T) {
	d := chainDag(t)

	res := d.ReachableFromRoots(context.Background(), d.Roots(), WithMaxNodes(0))

	if res.VisitedCount != 1 {
		t.Errorf("VisitedCount = %d, want 1", res.VisitedCount)
	}
	if !res.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestReachableFromRoots_UnknownAndDuplicateRoots(t *testing.T) {
	d := chainDag(t)

	res := d.ReachableFromRoots(context.Background(), []string{"nope", "r", "r"})

	if res.Truncated {
		t.Error("Truncated = true, want false")
	}
	if res.VisitedCount != 6 {
		t.Errorf("VisitedCount = %d, want 6", res.VisitedCount)
	}
}

func TestReachableFromRoots_OrphanDetection(t *testing.T) {
	d := islandDag(t)

	res := d.ReachableFromRoots(context.Background(), d.Roots())

	var orphans []string
	for id := range d.Nodes() {
		if _, ok := res.Reachable[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	// lost-a has a dangling parent so it is itself a root; only a node
	// whose parents all resolve but sit off the root set would show here.
	if len(orphans) != 0 {
		t.Errorf("orphans = %v, want none (dangling-parent nodes are roots)", orphans)
	}
}

func TestSubgraphAround_ZeroHops(t *testing.T) {
	d := chainDag(t)

	res := d.SubgraphAround(context.Background(), "n2", 0)

	if len(res.NodeIDs) != 1 || res.NodeIDs[0] != "n2" {
		t.Errorf("NodeIDs = %v, want [n2]", res.NodeIDs)
	}
	if len(res.Edges) != 0 {
		t.Errorf("Edges = %v, want none", res.Edges)
	}
	if res.Truncated {
		t.Error("Truncated = true, want false")
	}
}

func TestSubgraphAround_DiscoversBothDirections(t *testing.T) {
	d := chainDag(t)

	res := d.SubgraphAround(context.Background(), "n2", 1)

	want := map[string]bool{"n2": true, "n1": true, "n3": true}
	if len(res.NodeIDs) != len(want) {
		t.Fatalf("NodeIDs = %v, want n1,n2,n3", res.NodeIDs)
	}
	for _, id := range res.NodeIDs {
		if !want[id] {
			t.Errorf("unexpected node %s", id)
		}
	}

	// Induced edges keep their original direction.
	if len(res.Edges) != 2 {
		t.Fatalf("Edges = %v, want 2", res.Edges)
	}
	for _, e := range res.Edges {
		if e.ParentID == "n2" && e.ChildID != "n3" {
			t.Errorf("bad edge %+v", e)
		}
		if e.ChildID == "n2" && e.ParentID != "n1" {
			t.Errorf("bad edge %+v", e)
		}
	}
}

func TestSubgraphAround_EdgeCapTruncates(t *testing.T) {
	d := Build(context.Background(), diamondItems())

	res := d.SubgraphAround(context.Background(), "root", 2, WithMaxEdges(2))

	if !res.Truncated {
		t.Fatal("Truncated = false, want true")
	}
	if res.IncludedEdges != 2 {
		t.Errorf("IncludedEdges = %d, want 2", res.IncludedEdges)
	}
	if res.VisitedNodes != 4 {
		t.Errorf("VisitedNodes = %d, want all 4", res.VisitedNodes)
	}
}

func TestSubgraphAround_UnknownCenter(t *testing.T) {
	d := chainDag(t)

	res := d.SubgraphAround(context.Background(), "nowhere", 3)

	if len(res.NodeIDs) != 0 || len(res.Edges) != 0 || res.Truncated {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCountDescendants(t *testing.T) {
	d := Build(context.Background(), diamondItems())

	t.Run("root counts everything below", func(t *testing.T) {
		res := d.CountDescendants(context.Background(), "root")
		if res.DescendantCount != 3 {
			t.Errorf("DescendantCount = %d, want 3", res.DescendantCount)
		}
		if res.Truncated {
			t.Error("Truncated = true, want false")
		}
	})

	t.Run("shared descendant counted once", func(t *testing.T) {
		res := d.CountDescendants(context.Background(), "a")
		if res.DescendantCount != 1 {
			t.Errorf("DescendantCount = %d, want 1", res.DescendantCount)
		}
	})

	t.Run("leaf has none", func(t *testing.T) {
		res := d.CountDescendants(context.Background(), "shared")
		if res.DescendantCount != 0 {
			t.Errorf("DescendantCount = %d, want 0", res.DescendantCount)
		}
		if res.VisitedNodes != 1 {
			t.Errorf("VisitedNodes = %d, want 1", res.VisitedNodes)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		res := d.CountDescendants(context.Background(), "nowhere")
		if res.DescendantCount != 0 || res.VisitedNodes != 0 || res.Truncated {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("truncation yields a lower bound", func(t *testing.T) {
		res := d.CountDescendants(context.Background(), "root", WithMaxNodes(2))
		if !res.Truncated {
			t.Fatal("Truncated = false, want true")
		}
		if res.DescendantCount != 1 {
			t.Errorf("DescendantCount = %d, want 1", res.DescendantCount)
		}
	})
}

func TestMultiParentIDs(t *testing.T) {
	items := []inventory.Item{
		item("r1"),
		item("r2"),
		item("both", "r1", "r2"),
		item("one", "r1"),
		item("dangling", "r2", "ghost"),
		item("also-both", "r2", "r1"),
	}
	d := Build(context.Background(), items)

	got := d.MultiParentIDs()
	want := []string{"both", "also-both"}
	if len(got) != len(want) {
		t.Fatalf("MultiParentIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MultiParentIDs = %v, want listing order %v", got, want)
		}
	}
}
