// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides colored terminal output for the auzoom CLI.
//
// Color usage guidelines:
//   - Red: errors, failures
//   - Yellow: warnings
//   - Green: success
//   - Cyan: info
//   - Bold: headers
//   - Dim: paths, secondary detail
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// NoColorRequested reports whether color output should be suppressed given
// the --no-color flag value. The NO_COLOR environment variable
// (https://no-color.org) takes the same precedence here as it does for
// InitColors, so every caller that needs to know "should this be colored?"
// — the CLI's global init and internal/errors' standalone Format — shares
// one precedence rule instead of each re-deriving it.
func NoColorRequested(noColor bool) bool {
	return noColor || os.Getenv("NO_COLOR") != ""
}

// InitColors configures global color output based on the --no-color flag
// and the NO_COLOR environment variable, falling back to TTY detection when
// neither was set.
func InitColors(noColor bool) {
	if NoColorRequested(noColor) {
		color.NoColor = true
		return
	}
	color.NoColor = !isatty.IsTerminal(stdoutFd())
}

func stdoutFd() uintptr {
	return 1
}

func Success(msg string) { _, _ = Green.Println("✓ " + msg) }

func Successf(format string, args ...any) { _, _ = Green.Printf("✓ "+format+"\n", args...) }

func Warning(msg string) { _, _ = Yellow.Println("⚠ " + msg) }

func Warningf(format string, args ...any) { _, _ = Yellow.Printf("⚠ "+format+"\n", args...) }

func Error(msg string) { _, _ = Red.Println("✗ " + msg) }

func Errorf(format string, args ...any) { _, _ = Red.Printf("✗ "+format+"\n", args...) }

func Info(msg string) { _, _ = Cyan.Println("ℹ " + msg) }

func Infof(format string, args ...any) { _, _ = Cyan.Printf("ℹ "+format+"\n", args...) }

// Header prints a bold header with an underline separator.
func Header(text string) {
	_, _ = Bold.Println(text)
	fmt.Println(strings.Repeat("=", len(text)))
}

func SubHeader(text string) { _, _ = Bold.Println(text) }

func Label(text string) string { return Bold.Sprint(text) }

func DimText(text string) string { return Dim.Sprint(text) }

func CountText(count int) string { return Cyan.Sprint(count) }
