// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the .auzoom/project.yaml project configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/auzoom/internal/errors"
)

const (
	DefaultConfigDir  = ".auzoom"
	DefaultConfigFile = "project.yaml"
	configVersion     = "1"

	DefaultSmallFileThreshold   = 300
	DefaultEntryPointScanLimit  = 50
	DefaultDiscoveryPreloadSize = 10
)

// GraphConfig holds the knobs C5/C6 read on every request.
type GraphConfig struct {
	SmallFileThreshold    int  `yaml:"small_file_threshold"`
	CompactFormatEnabled  bool `yaml:"compact_format_enabled"`
	FieldSelectionEnabled bool `yaml:"field_selection_enabled"`
}

// WarmerConfig holds the cache warmer's discovery knobs (C9).
type WarmerConfig struct {
	EntryPointScanLimit  int `yaml:"entry_point_scan_limit"`
	DiscoveryPreloadSize int `yaml:"discovery_preload_limit"`
}

// Config represents the .auzoom/project.yaml configuration file.
type Config struct {
	Version   string       `yaml:"version"`
	ProjectID string       `yaml:"project_id"`
	Graph     GraphConfig  `yaml:"graph"`
	AutoWarm  bool         `yaml:"auto_warm"`
	Warmer    WarmerConfig `yaml:"warmer"`
}

// Default returns a Config populated with the documented defaults.
func Default(projectID string) *Config {
	return &Config{
		Version:   configVersion,
		ProjectID: projectID,
		Graph: GraphConfig{
			SmallFileThreshold:    DefaultSmallFileThreshold,
			CompactFormatEnabled:  false,
			FieldSelectionEnabled: false,
		},
		AutoWarm: true,
		Warmer: WarmerConfig{
			EntryPointScanLimit:  DefaultEntryPointScanLimit,
			DiscoveryPreloadSize: DefaultDiscoveryPreloadSize,
		},
	}
}

// Path returns the resolved path to the project config file.
//
// Resolution order: explicit configPath argument, then
// <root>/.auzoom/project.yaml.
func Path(root, configPath string) string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(root, DefaultConfigDir, DefaultConfigFile)
}

// Load reads and parses the config file at path, applying defaults for any
// zero-valued fields and environment-variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(
				"No project configuration found",
				path+" does not exist",
				"Run 'auzoom init' to create one",
			)
		}
		return nil, errors.NewInternalError(
			"Cannot read project configuration",
			err.Error(),
			"Check file permissions on "+path,
			err,
		)
	}

	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewInternalError(
			"Cannot parse project configuration",
			err.Error(),
			"Fix the YAML syntax in "+path+" or re-run 'auzoom init'",
			err,
		)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = configVersion
	}
	if cfg.Graph.SmallFileThreshold == 0 {
		cfg.Graph.SmallFileThreshold = DefaultSmallFileThreshold
	}
	if cfg.Warmer.EntryPointScanLimit == 0 {
		cfg.Warmer.EntryPointScanLimit = DefaultEntryPointScanLimit
	}
	if cfg.Warmer.DiscoveryPreloadSize == 0 {
		cfg.Warmer.DiscoveryPreloadSize = DefaultDiscoveryPreloadSize
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUZOOM_SMALL_FILE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Graph.SmallFileThreshold = n
		}
	}
	if v := os.Getenv("AUZOOM_COMPACT_FORMAT"); v != "" {
		cfg.Graph.CompactFormatEnabled = isTruthy(v)
	}
	if v := os.Getenv("AUZOOM_FIELD_SELECTION"); v != "" {
		cfg.Graph.FieldSelectionEnabled = isTruthy(v)
	}
	if v := os.Getenv("AUZOOM_AUTO_WARM"); v != "" {
		cfg.AutoWarm = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Save writes cfg as YAML to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewInternalError(
			"Cannot create configuration directory",
			err.Error(),
			"Check permissions on "+filepath.Dir(path),
			err,
		)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError("Cannot serialize configuration", err.Error(), "", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewInternalError(
			"Cannot write configuration file",
			err.Error(),
			"Check permissions on "+path,
			err,
		)
	}
	return nil
}
