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

// Package workspace discovers source files under a root directory,
// honoring .gitignore and an explicit include/exclude glob list.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/monochromegane/go-gitignore"

	"github.com/dxtools/dxcheck/ast"
)

// defaultExtensions is the fallback extension set when a Collector has no
// explicit include globs.
var defaultExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".mjs": true, ".cjs": true,
}

// File is a discovered source file: its path and bytes, read at most once
// per check, plus its dialect inferred from extension.
type File struct {
	Path    string
	Bytes   []byte
	Dialect ast.Dialect
}

// Collector walks a workspace root and produces the File set a check runs
// over.
type Collector struct {
	// Include, if non-empty, restricts discovery to paths matching at
	// least one of these doublestar patterns (relative to root).
	Include []string
	// Exclude paths matching any of these doublestar patterns are
	// skipped, evaluated after Include and after .gitignore.
	Exclude []string
	// RespectGitignore enables exclusion by the root directory's
	// .gitignore; .gitignore files in subdirectories are not read.
	RespectGitignore bool
}

// NewCollector returns a Collector with gitignore honored and no explicit
// include/exclude globs, matching the CLI's default behavior.
func NewCollector() *Collector {
	return &Collector{RespectGitignore: true}
}

// Discover walks root and returns every matching file, sorted by path for
// deterministic downstream ordering before scheduling reshuffles it. A
// file that cannot be read makes Discover return an error for the whole
// set; no per-file diagnostic is produced for it.
func (c *Collector) Discover(root string) ([]File, error) {
	var ignoreMatcher gitignore.IgnoreMatcher
	if c.RespectGitignore {
		gi := filepath.Join(root, ".gitignore")
		if m, err := gitignore.NewGitIgnore(gi); err == nil {
			ignoreMatcher = m
		}
	}

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "node_modules" || info.Name() == ".git" || info.Name() == ".dx" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if ignoreMatcher != nil && ignoreMatcher.Match(path, false) {
			return nil
		}
		if !c.matches(rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: discover %s: %w", root, err)
	}
	sort.Strings(paths)

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		bytes, readErr := os.ReadFile(p)
		if readErr != nil {
			return nil, fmt.Errorf("workspace: read %s: %w", p, readErr)
		}
		dialect, _ := ast.DialectFromExtension(extensionOf(p))
		files = append(files, File{Path: p, Bytes: bytes, Dialect: dialect})
	}
	return files, nil
}

func (c *Collector) matches(rel string) bool {
	if len(c.Exclude) > 0 {
		for _, pattern := range c.Exclude {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return false
			}
		}
	}
	if len(c.Include) > 0 {
		for _, pattern := range c.Include {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return true
			}
		}
		return false
	}
	return defaultExtensions[filepath.Ext(rel)]
}

func extensionOf(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	out := make([]byte, len(ext))
	for i := 0; i < len(ext); i++ {
		b := ext[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return string(out)
}
