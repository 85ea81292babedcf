// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
)

func testItems() []inventory.Item {
	return []inventory.Item{
		{ID: "root", Name: "My Drive", IsContainer: true, ParentIDs: []string{}},
		{ID: "doc", Name: "notes.txt", SizeBytes: 42, ParentIDs: []string{"root"}},
	}
}

// TestSaveAndLoad verifies a round trip through the store.
func TestSaveAndLoad(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	err = s.Save(ctx, "snap-1", "primary-drive", testItems())
	require.NoError(t, err)

	name, items, err := s.Load(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "primary-drive", name)
	require.Len(t, items, 2)
	assert.Equal(t, "root", items[0].ID)
	assert.Equal(t, []string{"root"}, items[1].ParentIDs)
	assert.Equal(t, int64(42), items[1].SizeBytes)
}

// TestLoadMissing verifies the not-found sentinel.
func TestLoadMissing(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrListingNotFound)
}

// TestSaveReplaces verifies saving under the same id overwrites.
func TestSaveReplaces(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "snap-1", "first", testItems()))
	require.NoError(t, s.Save(ctx, "snap-1", "second", testItems()[:1]))

	name, items, err := s.Load(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "second", name)
	assert.Len(t, items, 1)
}

// TestDelete verifies deletion and that deleting twice is harmless.
func TestDelete(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "snap-1", "primary", testItems()))
	require.NoError(t, s.Delete(ctx, "snap-1"))

	_, _, err = s.Load(ctx, "snap-1")
	assert.ErrorIs(t, err, ErrListingNotFound)

	assert.NoError(t, s.Delete(ctx, "snap-1"))
}

// TestIDs verifies enumeration of stored listings.
func TestIDs(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "a", "one", testItems()))
	require.NoError(t, s.Save(ctx, "b", "two", testItems()))

	ids, err := s.IDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

// TestPersistenceAcrossReopen verifies listings survive a close/reopen.
func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.SyncWrites = false

	s, err := Open(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "snap-1", "primary", testItems()))
	require.NoError(t, s.Close())

	s2, err := Open(cfg)
	require.NoError(t, err)
	defer s2.Close()

	name, items, err := s2.Load(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "primary", name)
	assert.Len(t, items, 2)
}
