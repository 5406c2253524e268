// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/auzoom/internal/config"
	"github.com/kraklabs/auzoom/internal/errors"
	"github.com/kraklabs/auzoom/internal/ui"
)

// runReset executes the 'reset' CLI command, deleting the local .auzoom
// cache directory (the on-disk index and per-file metadata records).
func runReset(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: auzoom reset [options]

Description:
  WARNING: This is a destructive operation that deletes the local
  .auzoom cache directory for the current project: the file index and
  all per-file metadata records. The project.yaml configuration is not
  touched.

  The cache will be rebuilt automatically the next time files are read.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n  auzoom reset --yes\n\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		errors.FatalError(errors.NewInputError(
			"Confirmation required",
			"The --yes flag is required to confirm this destructive operation",
			"Run 'auzoom reset --yes' to confirm that you want to delete the local cache.",
		), globals.JSON)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot access working directory", err.Error(), "Report this if it persists.", err,
		), globals.JSON)
	}

	cacheDir := cwd + string(os.PathSeparator) + config.DefaultConfigDir
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "No local cache found at %s\n", cacheDir)
		return
	}

	// project.yaml lives alongside the cache; preserve it by moving it
	// aside, wiping the directory, then restoring it.
	cfgPath := config.Path(cwd, configPath)
	var saved []byte
	if b, err := os.ReadFile(cfgPath); err == nil {
		saved = b
	}

	if err := os.RemoveAll(cacheDir); err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot delete cache directory",
			fmt.Sprintf("Failed to remove %s", cacheDir),
			"Check directory permissions and that no other auzoom process is running.",
			err,
		), globals.JSON)
	}

	if saved != nil {
		if err := os.MkdirAll(cacheDir, 0o755); err == nil {
			_ = os.WriteFile(cfgPath, saved, 0o644)
		}
	}

	if !globals.Quiet {
		ui.Success("auzoom cache reset complete")
	}
}
