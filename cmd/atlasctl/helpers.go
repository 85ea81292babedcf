// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AleutianAI/DriveAtlas/services/atlas/dag"
	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
)

// Shared flags, registered as persistent flags on the root command.
var (
	jsonOutput   bool
	saveListing  string
	gcsBucket    string
	gcsPrefix    string
	gcsCredsFile string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output as JSON for scripting")
	rootCmd.PersistentFlags().StringVar(&saveListing, "save", "",
		"Write the loaded listing to this file for later replay")
	rootCmd.PersistentFlags().StringVar(&gcsBucket, "gcs-bucket", "",
		"Read the listing from a GCS bucket instead of a file")
	rootCmd.PersistentFlags().StringVar(&gcsPrefix, "gcs-prefix", "",
		"Object prefix to list within the GCS bucket")
	rootCmd.PersistentFlags().StringVar(&gcsCredsFile, "gcs-credentials", "",
		"Path to a GCS service account credentials file")
}

// loadListing reads the listing from the positional file argument, or from
// GCS when --gcs-bucket is set. With --save the loaded listing is also
// written to a local file for later replay.
func loadListing(ctx context.Context, args []string) ([]inventory.Item, error) {
	var items []inventory.Item
	var err error

	if gcsBucket != "" {
		source, cerr := inventory.NewGCSSource(ctx, gcsBucket, gcsPrefix, gcsCredsFile)
		if cerr != nil {
			return nil, fmt.Errorf("connect to gcs: %w", cerr)
		}
		defer source.Close()
		items, err = source.Items(ctx)
	} else {
		if len(args) == 0 {
			return nil, errors.New("a listing file is required unless --gcs-bucket is set")
		}
		items, err = inventory.ReadListingFile(args[0])
	}
	if err != nil {
		return nil, err
	}

	if saveListing != "" {
		f, cerr := os.Create(saveListing)
		if cerr != nil {
			return nil, fmt.Errorf("create %s: %w", saveListing, cerr)
		}
		defer f.Close()
		if werr := inventory.WriteListing(f, items); werr != nil {
			return nil, werr
		}
	}
	return items, nil
}

// buildDag loads the listing and freezes it into a graph snapshot.
func buildDag(ctx context.Context, args []string) (*dag.DriveDag, error) {
	items, err := loadListing(ctx, args)
	if err != nil {
		return nil, err
	}
	return dag.Build(ctx, items), nil
}

// outputJSON prints v as indented JSON on stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail prints an error message and exits nonzero.
func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
