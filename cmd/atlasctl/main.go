// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command atlasctl inspects drive listings from the command line.
//
// It builds graph snapshots locally, without a running atlasd, and
// answers the same questions the API serves: structure statistics,
// orphaned items, shared hubs, and root-to-item paths.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DriveAtlas/pkg/logging"
)

var logger = logging.New(logging.Config{
	Level:   logging.LevelWarn,
	Service: "atlasctl",
})

var rootCmd = &cobra.Command{
	Use:   "atlasctl",
	Short: "Explore cloud-drive listings as graphs",
	Long: `atlasctl builds a directory graph from a flat drive listing and
answers structural questions about it.

Listings are JSON arrays of items:
  [{"id": "root", "name": "My Drive", "isContainer": true, "parentIds": []},
   {"id": "doc", "name": "notes.txt", "sizeBytes": 42, "parentIds": ["root"]}]

Examples:
  atlasctl inspect listing.json
  atlasctl orphans listing.json
  atlasctl hubs listing.json --limit 10
  atlasctl paths listing.json doc
  atlasctl inspect --gcs-bucket my-drive-bucket --gcs-prefix exports/`,
}

func main() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
