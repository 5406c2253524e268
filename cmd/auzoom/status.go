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
	"github.com/kraklabs/auzoom/internal/output"
	"github.com/kraklabs/auzoom/internal/ui"
	"github.com/kraklabs/auzoom/pkg/graph"
	"github.com/kraklabs/auzoom/pkg/query"
	"log/slog"
)

// runStatus executes the 'status' CLI command, reporting the cache hit
// rate, files parsed, and nodes currently held in memory.
func runStatus(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: auzoom status [options]

Description:
  Reports the current cache hit rate, number of files parsed this
  session, and how much of the index is on disk versus only discovered.
  This reflects a fresh, empty in-memory graph unless the server has
  already been run against this project in the current process.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot access working directory", err.Error(), "Report this if it persists.", err,
		), globals.JSON)
	}

	cfgPath := config.Path(cwd, configPath)
	cfg, cfgErr := config.Load(cfgPath)
	if cfgErr != nil {
		cfg = config.Default("")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	g, err := graph.New(cwd, logger)
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot initialize code graph", err.Error(), "Check that the project root is readable.", err,
		), globals.JSON)
	}

	svc := query.NewService(g, cfg.Graph.SmallFileThreshold, cfg.Graph.CompactFormatEnabled, cfg.Graph.FieldSelectionEnabled)
	stats := svc.Stats()

	if globals.JSON {
		_ = output.JSON(stats)
		return
	}

	ui.Header("auzoom status")
	fmt.Printf("  %s %s\n", ui.Label("cache hits:"), ui.CountText(int(stats.CacheHits)))
	fmt.Printf("  %s %s\n", ui.Label("cache misses:"), ui.CountText(int(stats.CacheMisses)))
	fmt.Printf("  %s %s\n", ui.Label("hit rate:"), stats.HitRate)
	fmt.Printf("  %s %s\n", ui.Label("files parsed:"), ui.CountText(int(stats.FilesParsed)))
	fmt.Printf("  %s %s\n", ui.Label("files indexed:"), ui.CountText(stats.FilesIndexed))
	fmt.Printf("  %s %s\n", ui.Label("files discovered only:"), ui.CountText(stats.FilesDiscovered))
	fmt.Printf("  %s %s\n", ui.Label("nodes in memory:"), ui.CountText(stats.NodesInMemory))
}
