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

func TestPathsToTarget_Diamond(t *testing.T) {
	d := Build(context.Background(), diamondItems())

	res := d.PathsToTarget(context.Background(), "shared", d.Roots())

	if res.Truncated {
		t.Fatal("Truncated = true, want false")
	}
	if len(res.Paths) != 1 {
		t.Fatalf("Paths = %v, want one path from the single root", res.Paths)
	}
	path := res.Paths[0]
	if len(path) != 3 {
		t.Fatalf("path = %v, want length 3", path)
	}
	if path[0] != "root" || path[2] != "shared" {
		t.Errorf("path = %v, want root ... shared", path)
	}
	if path[1] != "a" && path[1] != "b" {
		t.Errorf("path = %v, middle hop must be a or b", path)
	}
}

func TestPathsToTarget_MultipleRoots(t *testing.T) {
	items := []inventory.Item{
		item("r1"),
		item("r2"),
		item("mid", "r1"),
		item("leaf", "mid", "r2"),
	}
	d := Build(context.Background(), items)

	res := d.PathsToTarget(context.Background(), "leaf", d.Roots())

	if len(res.Paths) != 2 {
		t.Fatalf("Paths = %v, want one per root", res.Paths)
	}
	// Paths come back in rootIDs order and each is shortest for its root.
	if got := res.Paths[0]; len(got) != 3 || got[0] != "r1" {
		t.Errorf("first path = %v, want r1 mid leaf", got)
	}
	if got := res.Paths[1]; len(got) != 2 || got[0] != "r2" {
		t.Errorf("second path = %v, want r2 leaf", got)
	}
}

func TestPathsToTarget_PicksShortestRoute(t *testing.T) {
	items := []inventory.Item{
		item("r"),
		item("long1", "r"),
		item("long2", "long1"),
		item("t", "long2", "r"),
	}
	d := Build(context.Background(), items)

	res := d.PathsToTarget(context.Background(), "t", []string{"r"})

	if len(res.Paths) != 1 {
		t.Fatalf("Paths = %v, want 1", res.Paths)
	}
	if got := res.Paths[0]; len(got) != 2 {
		t.Errorf("path = %v, want the direct 2-node route", got)
	}
}

func TestPathsToTarget_TargetIsRoot(t *testing.T) {
	d := Build(context.Background(), diamondItems())

	res := d.PathsToTarget(context.Background(), "root", d.Roots())

	if len(res.Paths) != 1 || len(res.Paths[0]) != 1 || res.Paths[0][0] != "root" {
		t.Errorf("Paths = %v, want [[root]]", res.Paths)
	}
}

func TestPathsToTarget_UnreachableRootSkipped(t *testing.T) {
	items := []inventory.Item{
		item("r1"),
		item("r2"),
		item("under-r1", "r1"),
	}
	d := Build(context.Background(), items)

	res := d.PathsToTarget(context.Background(), "under-r1", []string{"r1", "r2"})

	if len(res.Paths) != 1 {
		t.Fatalf("Paths = %v, want only r1's path", res.Paths)
	}
	if res.Truncated {
		t.Error("Truncated = true, want false")
	}
}

func TestPathsToTarget_UnknownTarget(t *testing.T) {
	d := Build(context.Background(), diamondItems())

	res := d.PathsToTarget(context.Background(), "nowhere", d.Roots())

	if len(res.Paths) != 0 || res.Truncated {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPathsToTarget_MaxPathsCap(t *testing.T) {
	items := []inventory.Item{
		item("r1"),
		item("r2"),
		item("r3"),
		item("t", "r1", "r2", "r3"),
	}
	d := Build(context.Background(), items)

	res := d.PathsToTarget(context.Background(), "t", d.Roots(), WithMaxPaths(2))

	if len(res.Paths) != 2 {
		t.Errorf("Paths = %v, want 2", res.Paths)
	}
	if !res.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestPathsToTarget_MaxPathLenCap(t *testing.T) {
	d := chainDag(t)

	res := d.PathsToTarget(context.Background(), "n5", d.Roots(), WithMaxPathLen(3))

	if len(res.Paths) != 0 {
		t.Errorf("Paths = %v, want none under the length cap", res.Paths)
	}
	if !res.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestPathsToTarget_LabelingCapMarksTruncated(t *testing.T) {
	d := chainDag(t)

	res := d.PathsToTarget(context.Background(), "n5", d.Roots(), WithMaxNodes(2))

	if !res.Truncated {
		t.Error("Truncated = false, want true")
	}
	for _, p := range res.Paths {
		if p[len(p)-1] != "n5" {
			t.Errorf("path %v does not end at the target", p)
		}
	}
}
