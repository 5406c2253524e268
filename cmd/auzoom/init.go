// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/auzoom/internal/config"
	"github.com/kraklabs/auzoom/internal/errors"
	"github.com/kraklabs/auzoom/internal/ui"
)

// runInit executes the 'init' CLI command, creating a .auzoom/project.yaml
// configuration file with the documented defaults.
func runInit(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")
	projectID := fs.String("project-id", "", "Project identifier (default: directory name)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: auzoom init [options]

Description:
  Creates .auzoom/project.yaml with the default graph, warmer, and
  auto-warm settings. Run this once per project before starting the
  server.

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
			"Cannot access working directory",
			"Failed to determine current directory path",
			"This is unexpected. Please report this issue if it persists.",
			err,
		), globals.JSON)
	}

	configPath := config.Path(cwd, "")
	if _, err := os.Stat(configPath); err == nil && !*force {
		errors.FatalError(errors.NewInputError(
			"Configuration already exists",
			fmt.Sprintf("%s already exists in this directory", configPath),
			"Use 'auzoom init --force' to overwrite the existing configuration.",
		), globals.JSON)
	}

	id := *projectID
	if id == "" {
		id = filepath.Base(cwd)
	}

	cfg := config.Default(id)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot create configuration directory",
			err.Error(),
			"Check directory permissions.",
			err,
		), globals.JSON)
	}
	if err := config.Save(configPath, cfg); err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot write configuration file",
			err.Error(),
			"Check directory permissions.",
			err,
		), globals.JSON)
	}

	if !globals.Quiet {
		ui.Successf("Created %s", configPath)
	}
}
