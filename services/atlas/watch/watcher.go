// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch rebuilds snapshots when listing files change on disk.
//
// Drive listings exported to a directory are detected, debounced, and
// handed to a rebuild handler in batches, so a sync tool rewriting a
// listing in several writes triggers one rebuild instead of many.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ListingChange represents one detected listing file change.
type ListingChange struct {
	// Path is the path to the changed listing file.
	Path string

	// Removed is true if the file was deleted or renamed away.
	Removed bool

	// Time is when the change was detected.
	Time time.Time
}

// ChangeHandler is called with debounced listing changes.
type ChangeHandler func(changes []ListingChange)

// ListingWatcher watches a directory of listing files with debouncing.
//
// # Description
//
// Watches one directory (non-recursive) for changes to listing files and
// batches them using a debounce window, so partial writes from exporters
// do not each trigger a rebuild.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
type ListingWatcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	handler  ChangeHandler
	debounce time.Duration
	suffixes []string

	changes  chan ListingChange
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// Options configures the ListingWatcher.
type Options struct {
	// DebounceWindow is how long to wait for more changes before triggering.
	// Default: 500ms
	DebounceWindow time.Duration

	// Suffixes are the file name suffixes treated as listings.
	// Default: [".json"]
	Suffixes []string

	// BufferSize is the size of the change buffer channel.
	// Default: 256
	BufferSize int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		DebounceWindow: 500 * time.Millisecond,
		Suffixes:       []string{".json"},
		BufferSize:     256,
	}
}

// NewListingWatcher creates a watcher for the given listing directory.
//
// # Inputs
//
//   - dir: Path to the directory holding listing files.
//   - handler: Function called with batched changes after debounce.
//   - opts: Optional configuration (nil uses defaults).
//
// # Outputs
//
//   - *ListingWatcher: Ready-to-use watcher (call Start to begin watching).
//   - error: Non-nil if the watcher could not be created.
func NewListingWatcher(dir string, handler ChangeHandler, opts *Options) (*ListingWatcher, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ListingWatcher{
		dir:      dir,
		watcher:  watcher,
		handler:  handler,
		debounce: opts.DebounceWindow,
		suffixes: opts.Suffixes,
		changes:  make(chan ListingChange, opts.BufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching for listing changes.
//
// Spawns two goroutines, an event processor and a debouncer; both exit
// when Stop is called or the context is canceled.
func (w *ListingWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil // Already watching
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (w *ListingWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true if the watcher is currently active.
func (w *ListingWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// isListing checks whether a path looks like a listing file.
func (w *ListingWatcher) isListing(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range w.suffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// processEvents converts fsnotify events to ListingChange and sends them
// to the debounce channel.
func (w *ListingWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.isListing(event.Name) {
				continue
			}

			change := ListingChange{
				Path:    event.Name,
				Removed: event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename),
				Time:    time.Now(),
			}

			select {
			case w.changes <- change:
			default:
				// Buffer full; the debouncer will pick up the next event
				// for this file.
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// debounceLoop batches changes and calls the handler when the window
// closes. Repeated changes to the same path collapse to the latest one.
func (w *ListingWatcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time
	pending := make(map[string]ListingChange)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]ListingChange, 0, len(pending))
		for _, change := range pending {
			batch = append(batch, change)
		}
		pending = make(map[string]ListingChange)
		w.handler(batch)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case change := <-w.changes:
			pending[change.Path] = change
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			flush()
		}
	}
}
