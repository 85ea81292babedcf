// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists drive listings in an embedded BadgerDB so
// snapshots can be rebuilt after a restart without refetching the drive.
//
// Only the raw listings are stored. Graph snapshots are derived data and
// are always rebuilt from the listing they came from.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
// This package follows Apache 2.0 guidelines for attribution and usage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
)

// ErrListingNotFound indicates no listing is stored under the given id.
var ErrListingNotFound = errors.New("listing not found")

// listingPrefix namespaces listing keys inside the database.
const listingPrefix = "listing/"

// Config holds configuration for the listing store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required for persistent databases.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	// Default: true for production, false for testing.
	SyncWrites bool

	// Logger is the logger for BadgerDB operations.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{
		InMemory:   true,
		SyncWrites: false,
	}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// ListingStore is a BadgerDB-backed store for drive listings.
//
// Thread Safety: Safe for concurrent use; BadgerDB transactions provide
// isolation.
type ListingStore struct {
	db *badger.DB
}

// Open creates and opens a listing store with the given configuration.
//
// Description:
//
//	Opens a BadgerDB database at the configured path, or in memory if
//	InMemory is true. Creates the directory if it doesn't exist.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*ListingStore - The opened store. Caller must call Close() when done.
//	error - Non-nil if path is invalid or the database cannot be opened.
func Open(cfg Config) (*ListingStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open listing store: %w", err)
	}

	return &ListingStore{db: db}, nil
}

// OpenInMemory is a convenience function for opening an in-memory store.
func OpenInMemory() (*ListingStore, error) {
	return Open(InMemoryConfig())
}

// Close releases the underlying database.
func (s *ListingStore) Close() error {
	return s.db.Close()
}

// storedListing is the on-disk envelope for a listing.
type storedListing struct {
	Name  string           `json:"name"`
	Items []inventory.Item `json:"items"`
}

// Save writes a listing under the given snapshot id, replacing any
// previous version.
func (s *ListingStore) Save(ctx context.Context, snapshotID, name string, items []inventory.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snapshotID == "" {
		return errors.New("snapshot id must not be empty")
	}

	payload, err := json.Marshal(storedListing{Name: name, Items: items})
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(listingPrefix+snapshotID), payload)
	})
	if err != nil {
		return fmt.Errorf("save listing %s: %w", snapshotID, err)
	}
	return nil
}

// Load reads the listing stored under the given snapshot id.
//
// Outputs:
//
//	string - The listing name it was saved under.
//	[]inventory.Item - The listing items.
//	error - ErrListingNotFound if no listing exists for the id.
func (s *ListingStore) Load(ctx context.Context, snapshotID string) (string, []inventory.Item, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	var stored storedListing
	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(listingPrefix + snapshotID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrListingNotFound
		}
		if err != nil {
			return err
		}
		return entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("load listing %s: %w", snapshotID, err)
	}

	return stored.Name, stored.Items, nil
}

// Delete removes the listing stored under the given snapshot id. Deleting
// a missing listing is not an error.
func (s *ListingStore) Delete(ctx context.Context, snapshotID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(listingPrefix + snapshotID))
	})
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", snapshotID, err)
	}
	return nil
}

// IDs returns the snapshot ids of every stored listing.
func (s *ListingStore) IDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(listingPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, listingPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	return ids, nil
}
