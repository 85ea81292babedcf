// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsListing(t *testing.T) {
	w := &ListingWatcher{suffixes: []string{".json"}}

	if !w.isListing("/data/drive.json") {
		t.Error("drive.json should be a listing")
	}
	if w.isListing("/data/drive.json.tmp") {
		t.Error("tmp file should not be a listing")
	}
	if w.isListing("/data/readme.txt") {
		t.Error("txt file should not be a listing")
	}
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	w, err := NewListingWatcher(dir, func([]ListingChange) {}, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !w.IsWatching() {
		t.Error("IsWatching = false after Start")
	}

	// Second start is a no-op.
	if err := w.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}

	w.Stop()
	if w.IsWatching() {
		t.Error("IsWatching = true after Stop")
	}
	// Second stop is a no-op.
	w.Stop()
}

func TestDebouncedBatch(t *testing.T) {
	dir := t.TempDir()

	got := make(chan []ListingChange, 1)
	opts := DefaultOptions()
	opts.DebounceWindow = 50 * time.Millisecond

	w, err := NewListingWatcher(dir, func(changes []ListingChange) {
		select {
		case got <- changes:
		default:
		}
	}, &opts)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	path := filepath.Join(dir, "drive.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}
	// A second write inside the window collapses into the same batch.
	if err := os.WriteFile(path, []byte(`[{}]`), 0o644); err != nil {
		t.Fatalf("rewrite listing: %v", err)
	}

	select {
	case changes := <-got:
		if len(changes) != 1 {
			t.Fatalf("changes = %v, want one collapsed entry", changes)
		}
		if changes[0].Path != path {
			t.Errorf("path = %s, want %s", changes[0].Path, path)
		}
		if changes[0].Removed {
			t.Error("write reported as removal")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}
}
