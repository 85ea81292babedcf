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
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSSource lists a Google Cloud Storage bucket prefix as an item listing.
//
// Description:
//
//	GCS has no real folders, only object names with slashes. The source
//	synthesizes one container Item per distinct path prefix and one file
//	Item per object, linking each to its enclosing prefix via ParentIDs.
//	Objects directly under the listing prefix get an empty ParentIDs slice
//	and therefore become roots.
//
//	Because synthesized listings are derived from a flat namespace they are
//	always well formed (no cycles, no dangling references, single parents).
//	The dag package still treats them like any other listing; nothing here
//	relies on that.
//
// Thread Safety:
//
//	GCSSource is safe for concurrent use; the underlying storage client is
//	goroutine-safe.
type GCSSource struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSource creates a source for the given bucket and prefix.
//
// Inputs:
//
//	ctx - Context for client creation.
//	bucket - Bucket name, without the gs:// scheme.
//	prefix - Object name prefix to list under. May be empty.
//	credentialsFile - Optional service account key path. Empty uses
//	    application default credentials.
//
// Outputs:
//
//	*GCSSource - The configured source.
//	error - Non-nil if the storage client cannot be created.
func NewGCSSource(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSSource, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	return &GCSSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Close releases the underlying storage client.
func (s *GCSSource) Close() error {
	return s.client.Close()
}

// Items lists the bucket prefix and returns the synthesized item listing.
//
// Outputs:
//
//	[]Item - One container item per distinct prefix, one file item per
//	    object, in listing order (containers first per path).
//	error - Wraps ErrSourceUnavailable on listing failure.
func (s *GCSSource) Items(ctx context.Context) ([]Item, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})

	var items []Item
	seenDirs := make(map[string]struct{})

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list gs://%s/%s: %v", ErrSourceUnavailable, s.bucket, s.prefix, err)
		}
		if attrs.Name == "" || strings.HasSuffix(attrs.Name, "/") {
			// Zero-byte "folder marker" objects; the synthesized
			// container items cover these.
			continue
		}

		rel := strings.TrimPrefix(attrs.Name, s.prefix)
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" {
			continue
		}

		items = append(items, s.containerItems(rel, seenDirs)...)
		items = append(items, Item{
			ID:          s.objectID(rel),
			Name:        rel[strings.LastIndex(rel, "/")+1:],
			IsContainer: false,
			SizeBytes:   attrs.Size,
			ParentIDs:   s.parentRefs(rel),
		})
	}

	return items, nil
}

// containerItems synthesizes container items for every not-yet-seen prefix
// of rel, shallowest first so parents precede children in the listing.
func (s *GCSSource) containerItems(rel string, seen map[string]struct{}) []Item {
	var out []Item
	segs := strings.Split(rel, "/")
	for i := 1; i < len(segs); i++ {
		dir := strings.Join(segs[:i], "/")
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		out = append(out, Item{
			ID:          s.objectID(dir),
			Name:        segs[i-1],
			IsContainer: true,
			ParentIDs:   s.parentRefs(dir),
		})
	}
	return out
}

// parentRefs returns the single enclosing-prefix reference for rel, or an
// empty slice when rel sits directly under the listing prefix.
func (s *GCSSource) parentRefs(rel string) []string {
	idx := strings.LastIndex(rel, "/")
	if idx < 0 {
		return []string{}
	}
	return []string{s.objectID(rel[:idx])}
}

// objectID builds a stable item ID from the bucket and relative path.
func (s *GCSSource) objectID(rel string) string {
	if s.prefix == "" {
		return fmt.Sprintf("gcs:%s:%s", s.bucket, rel)
	}
	return fmt.Sprintf("gcs:%s:%s/%s", s.bucket, strings.TrimSuffix(s.prefix, "/"), rel)
}
