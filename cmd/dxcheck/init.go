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

package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/dxtools/dxcheck/dxconfig"
)

// runInit writes a default .dx/config.yaml at the given path, refusing to
// overwrite an existing one unless --force is passed.
func runInit(args []string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite an existing .dx/config.yaml")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	if !*force {
		if _, statErr := os.Stat(root + "/" + dxconfig.RelPath); statErr == nil {
			fmt.Fprintf(os.Stderr, "dxcheck init: %s already exists, pass --force to overwrite\n", dxconfig.RelPath)
			return 2
		}
	}

	cfg := dxconfig.Default()
	if err := dxconfig.Save(root, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "dxcheck init: %v\n", err)
		return 2
	}
	fmt.Printf("wrote %s\n", dxconfig.RelPath)
	return 0
}

// runConfig prints the effective configuration for the given path: the
// whole Config as JSON when --json is set, otherwise one summary line each
// for respect_gitignore, include, exclude, and the scheduler's low-count
// threshold.
func runConfig(args []string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	cfg, err := dxconfig.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dxcheck config: %v\n", err)
		return 2
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(cfg)
		return 0
	}

	fmt.Printf("respect_gitignore: %v\n", cfg.RespectGitignore)
	fmt.Printf("include: %v\n", cfg.Include)
	fmt.Printf("exclude: %v\n", cfg.Exclude)
	fmt.Printf("scheduler.low_count_threshold: %d\n", cfg.Scheduler.ToSchedulerConfig().LowCountThreshold)
	return 0
}
