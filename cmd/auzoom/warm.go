// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/auzoom/internal/config"
	"github.com/kraklabs/auzoom/internal/errors"
	"github.com/kraklabs/auzoom/internal/ui"
	"github.com/kraklabs/auzoom/pkg/graph"
)

// runWarm executes the 'warm' CLI command: an explicit, synchronous
// invocation of C9's background warming pass, so a user or CI step can
// pre-populate the cache before the first agent session starts (not in
// spec.md itself — see SPEC_FULL.md's supplemented-features section).
func runWarm(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("warm", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: auzoom warm [options]

Description:
  Runs one cache-warming pass: parses conventional entry-point files
  (main.py, app.py, __main__ guards, ...) and then a batch of files
  discovered via imports but not yet parsed.

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{}))
	g, err := graph.New(cwd, logger)
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot initialize code graph", err.Error(), "Check that the project root is readable.", err,
		), globals.JSON)
	}

	warmer := graph.NewWarmer(g, graph.WarmerConfig{
		EntryPointScanLimit:  cfg.Warmer.EntryPointScanLimit,
		DiscoveryPreloadSize: cfg.Warmer.DiscoveryPreloadSize,
	}, logger)

	progressCfg := NewProgressConfig(globals)
	var bar *progressbar.ProgressBar
	warmer.SetProgressCallback(func(current, total int, path string) {
		if bar == nil {
			bar = NewProgressBar(progressCfg, int64(total), "warming cache")
		}
		if bar != nil {
			_ = bar.Set(current)
		}
	})

	warmer.Run()
	if bar != nil {
		_ = bar.Finish()
	}

	stats := g.Stats()
	if !globals.Quiet {
		ui.Successf("Warmed cache: %d files parsed, %d nodes in memory", stats.FilesParsed, stats.NodesInMemory)
	}
}
