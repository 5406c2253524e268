// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var entryPointNames = map[string]bool{
	"main.py": true, "app.py": true, "__main__.py": true,
	"manage.py": true, "run.py": true, "server.py": true, "cli.py": true,
}

var warmerSkipDirs = map[string]bool{
	".git": true, "venv": true, ".venv": true, "node_modules": true, "__pycache__": true,
}

const maxEntryPointCandidates = 5

// WarmerConfig configures C9's discovery limits.
type WarmerConfig struct {
	EntryPointScanLimit  int
	DiscoveryPreloadSize int
	WarmDelay            time.Duration
}

// DefaultWarmerConfig returns the documented defaults (§9).
func DefaultWarmerConfig() WarmerConfig {
	return WarmerConfig{EntryPointScanLimit: 50, DiscoveryPreloadSize: 10, WarmDelay: 500 * time.Millisecond}
}

// Warmer is the background worker that pre-populates the cache by
// discovering entry points and then warming discovered-but-unparsed
// imports (C9). It only calls the graph's public GetFile entry point,
// never touching internal structures directly (§5/§9).
type Warmer struct {
	graph  *Graph
	cfg    WarmerConfig
	logger *slog.Logger

	mu         sync.Mutex
	inProgress bool
	onProgress func(current, total int, path string)
}

// NewWarmer builds a Warmer over graph.
func NewWarmer(g *Graph, cfg WarmerConfig, logger *slog.Logger) *Warmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Warmer{graph: g, cfg: cfg, logger: logger}
}

// SetProgressCallback registers a callback invoked after each file warmed
// during Run, with the running count, the total planned for this pass, and
// the path just processed. Mirrors the ingestion pipeline's progress-callback
// shape so the CLI can drive a single progress bar per pass.
func (w *Warmer) SetProgressCallback(fn func(current, total int, path string)) {
	w.onProgress = fn
}

// Run performs one warming pass: entry points, a delay, then discovered
// files. It is safe to call from a goroutine or synchronously from the CLI.
// The discovered files are the indexed=false entries present when the pass
// starts; imports first discovered while the entry points are warmed are
// not warmed in the same pass.
func (w *Warmer) Run() {
	w.mu.Lock()
	if w.inProgress {
		w.mu.Unlock()
		return
	}
	w.inProgress = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.inProgress = false
		w.mu.Unlock()
	}()

	entryPoints := w.discoverEntryPoints()
	discovered := w.graph.cache.DiscoveredOnly()
	if len(discovered) > w.cfg.DiscoveryPreloadSize {
		discovered = discovered[:w.cfg.DiscoveryPreloadSize]
	}
	total := len(entryPoints) + len(discovered)

	done := 0
	report := func(path string) {
		done++
		if w.onProgress != nil {
			w.onProgress(done, total, path)
		}
	}

	for _, candidate := range entryPoints {
		w.warmFile(candidate)
		report(candidate)
	}

	if w.cfg.WarmDelay > 0 {
		time.Sleep(w.cfg.WarmDelay)
	}

	for _, path := range discovered {
		w.warmFile(path)
		report(path)
	}
}

// RunBackground launches Run on its own goroutine.
func (w *Warmer) RunBackground() {
	go w.Run()
}

func (w *Warmer) warmFile(path string) {
	if _, err := w.graph.GetFile(path, SerializeOptions{Level: LevelSkeleton, Format: FormatStandard}); err != nil {
		w.logger.Warn("warmer.warm_failed", "path", path, "err", err)
	}
}

// discoverEntryPoints finds conventional entry-point files plus files
// containing a __main__ guard, capped at maxEntryPointCandidates (§4.8).
func (w *Warmer) discoverEntryPoints() []string {
	var named []string
	var guarded []string
	scanned := 0
	limit := w.cfg.EntryPointScanLimit
	if limit <= 0 {
		limit = 50
	}

	_ = filepath.Walk(w.graph.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if warmerSkipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".py") {
			return nil
		}
		if entryPointNames[info.Name()] {
			named = append(named, path)
		}
		if scanned < limit {
			scanned++
			if hasMainGuard(path) {
				guarded = append(guarded, path)
			}
		}
		return nil
	})

	candidates := append(named, guarded...)
	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) >= maxEntryPointCandidates {
			break
		}
	}
	return out
}

func hasMainGuard(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), `__name__ == "__main__"`) ||
			strings.Contains(scanner.Text(), `__name__ == '__main__'`) {
			return true
		}
	}
	return false
}
