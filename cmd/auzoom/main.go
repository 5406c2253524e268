// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the auzoom CLI: a multi-resolution code
// navigation service for Python codebases, exposed to agents as a
// line-delimited JSON-RPC server over stdio.
//
// Usage:
//
//	auzoom init                   Create .auzoom/project.yaml configuration
//	auzoom status [--json]        Show cache and index status
//	auzoom warm                   Pre-populate the cache from entry points
//	auzoom reset --yes            Delete local cache data
//	auzoom --serve                Start the JSON-RPC server over stdio
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/auzoom/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the global CLI flags that apply to all commands.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		serveMode   = flag.Bool("serve", false, "Start the JSON-RPC server over stdio")
		configPath  = flag.StringP("config", "c", "", "Path to .auzoom/project.yaml (default: ./.auzoom/project.yaml)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output")
	)

	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `auzoom - multi-resolution code navigation for AI agents

auzoom parses a Python project into a lazy, content-addressed graph of
imports, classes, functions, and methods, and serves it to agents as
five JSON-RPC tools (read, find, get_dependencies, get_calls, stats)
instead of handing over raw file contents.

Usage:
  auzoom <command> [options]

Commands:
  init          Create .auzoom/project.yaml configuration
  status        Show cache and index status
  warm          Pre-populate the cache from discovered entry points
  reset         Delete local cache data (destructive!)

Global Options:
  --json            Output in JSON format (for applicable commands)
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output
  --serve           Start the JSON-RPC server over stdio
  -c, --config      Path to .auzoom/project.yaml
  -V, --version     Show version and exit

Examples:
  auzoom init                  Create configuration
  auzoom warm                  Warm the cache from entry points
  auzoom status --json         Output cache stats as JSON
  auzoom --serve                Start serving JSON-RPC over stdio

For detailed command help: auzoom <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("auzoom version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(1)
	}
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{JSON: *jsonOutput, NoColor: *noColor, Verbose: *verbose, Quiet: *quiet}
	ui.InitColors(globals.NoColor)

	if *serveMode {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot access working directory: %v\n", err)
			os.Exit(1)
		}
		os.Exit(runServe(cwd, *configPath, globals))
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	case "warm":
		runWarm(cmdArgs, *configPath, globals)
	case "reset":
		runReset(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
