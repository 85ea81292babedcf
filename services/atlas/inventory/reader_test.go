// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package inventory

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadListing(t *testing.T) {
	t.Run("decodes items", func(t *testing.T) {
		doc := `[
			{"id": "root", "name": "My Drive", "isContainer": true, "parentIds": []},
			{"id": "doc", "name": "notes.txt", "sizeBytes": 42, "parentIds": ["root"]}
		]`
		items, err := ReadListing(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("ReadListing() error = %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("got %d items, want 2", len(items))
		}
		if items[0].ID != "root" || !items[0].IsContainer {
			t.Errorf("items[0] = %+v, want container root", items[0])
		}
		if items[1].SizeBytes != 42 {
			t.Errorf("items[1].SizeBytes = %d, want 42", items[1].SizeBytes)
		}
	})

	t.Run("normalizes missing parentIds to empty slice", func(t *testing.T) {
		doc := `[{"id": "root", "name": "My Drive"}]`
		items, err := ReadListing(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("ReadListing() error = %v", err)
		}
		if items[0].ParentIDs == nil {
			t.Fatal("ParentIDs should be normalized to an empty slice, got nil")
		}
		if len(items[0].ParentIDs) != 0 {
			t.Fatalf("ParentIDs = %v, want empty", items[0].ParentIDs)
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		if _, err := ReadListing(strings.NewReader(`{"not": "an array"`)); err == nil {
			t.Fatal("expected an error for malformed JSON")
		}
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		doc := `[{"id": "a"}, {"id": "a"}]`
		_, err := ReadListing(strings.NewReader(doc))
		if !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("ReadListing() = %v, want ErrDuplicateID", err)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		items, err := ReadListing(strings.NewReader(`[]`))
		if err != nil {
			t.Fatalf("ReadListing() error = %v", err)
		}
		if len(items) != 0 {
			t.Fatalf("got %d items, want 0", len(items))
		}
	})
}

func TestReadListingFile(t *testing.T) {
	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "listing.json")
		doc := `[{"id": "root", "name": "My Drive", "isContainer": true, "parentIds": []}]`
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}

		items, err := ReadListingFile(path)
		if err != nil {
			t.Fatalf("ReadListingFile() error = %v", err)
		}
		if len(items) != 1 || items[0].ID != "root" {
			t.Fatalf("items = %+v, want single root", items)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadListingFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Fatal("expected an error for a missing file")
		}
	})

	t.Run("error names the path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := ReadListingFile(path)
		if err == nil || !strings.Contains(err.Error(), "bad.json") {
			t.Fatalf("error should include the path, got %v", err)
		}
	})
}

func TestWriteListing(t *testing.T) {
	items := []Item{
		{ID: "root", Name: "My Drive", IsContainer: true, ParentIDs: []string{}},
		{ID: "doc", Name: "notes.txt", SizeBytes: 42, ParentIDs: []string{"root"}},
	}

	var buf bytes.Buffer
	if err := WriteListing(&buf, items); err != nil {
		t.Fatalf("WriteListing() error = %v", err)
	}

	got, err := ReadListing(&buf)
	if err != nil {
		t.Fatalf("ReadListing(round trip) error = %v", err)
	}
	if len(got) != 2 || got[1].ID != "doc" || got[1].ParentIDs[0] != "root" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
