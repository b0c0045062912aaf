// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Harvest groups targets that drive the built CLI against the live arXiv API.
type Harvest mg.Namespace

// Update stores papers submitted in the last week. HARVEST_CATEGORY narrows
// the update to one category.
func (Harvest) Update() error {
	mg.Deps(Build)
	args := []string{"update", "--days", "7"}
	if c := os.Getenv("HARVEST_CATEGORY"); c != "" {
		args = append(args, "--category", c)
	}
	return sh.RunV(binPath(), args...)
}

// Download fetches every stored paper that is not downloaded yet.
func (Harvest) Download() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath(), "retry")
}

// Cleanup sweeps incomplete files and compacts the database.
func (Harvest) Cleanup() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "cleanup")
}
