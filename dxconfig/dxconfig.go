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
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dxconfig is the on-disk configuration format for dxcheck,
// loaded from ".dx/config.yaml" at the workspace root.
package dxconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dxtools/dxcheck/scheduler"
)

// Config is the full on-disk configuration.
type Config struct {
	// Include/Exclude are doublestar glob patterns, relative to the
	// workspace root. Exclude is applied after Include and after
	// .gitignore.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// RespectGitignore enables .gitignore-based exclusion during
	// discovery. Default: true.
	RespectGitignore bool `yaml:"respect_gitignore"`

	// Rules maps a rule-id to its enabled flag. A rule-id absent from
	// this map keeps its catalogue default (enabled).
	Rules map[string]bool `yaml:"rules"`

	// Scheduler carries the scheduler's tunable thresholds; zero fields
	// fall back to scheduler.DefaultConfig.
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// SchedulerConfig mirrors scheduler.Config's fields for YAML persistence.
// Zero values mean "use the default".
type SchedulerConfig struct {
	LowCountThreshold   int   `yaml:"low_count_threshold"`
	DefaultWorkerCount  int   `yaml:"default_worker_count"`
	MemoryHighWaterMark int64 `yaml:"memory_high_water_mark"`
}

// ToSchedulerConfig merges c onto scheduler.DefaultConfig, applying only
// the fields the user actually set.
func (c SchedulerConfig) ToSchedulerConfig() scheduler.Config {
	cfg := scheduler.DefaultConfig()
	if c.LowCountThreshold > 0 {
		cfg.LowCountThreshold = c.LowCountThreshold
	}
	if c.DefaultWorkerCount > 0 {
		cfg.DefaultWorkerCount = c.DefaultWorkerCount
	}
	if c.MemoryHighWaterMark > 0 {
		cfg.MemoryHighWaterMark = c.MemoryHighWaterMark
	}
	return cfg
}

// Default returns a Config with sensible defaults: respect .gitignore,
// fall back to extension-based discovery, every catalogue rule enabled.
func Default() Config {
	return Config{
		RespectGitignore: true,
		Rules:            map[string]bool{},
	}
}

// RelPath is where a workspace's config lives, relative to its root.
const RelPath = ".dx/config.yaml"

// Load reads and parses the config at "<workspaceRoot>/.dx/config.yaml".
// A missing file is not an error: Default() is returned instead, matching
// the CLI's "works with zero configuration" requirement.
func Load(workspaceRoot string) (Config, error) {
	path := filepath.Join(workspaceRoot, RelPath)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("dxconfig: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("dxconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to "<workspaceRoot>/.dx/config.yaml", creating the
// parent directory if needed.
func Save(workspaceRoot string, cfg Config) error {
	path := filepath.Join(workspaceRoot, RelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dxconfig: mkdir %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("dxconfig: encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dxconfig: write %s: %w", path, err)
	}
	return nil
}
