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

// Package parser defines the contract the lint engine consumes to turn
// source bytes into an ast.Tree. The engine never depends on a concrete
// parser; parser/treesitter is the default adapter.
package parser

import "github.com/dxtools/dxcheck/ast"

// Parser turns source bytes into an AST plus any syntax errors the parser
// reported. The returned Tree may keep a reference to the input slice (the
// tree-sitter adapter's nodes do), so src is not modified while the tree is
// in use.
type Parser interface {
	Parse(dialect ast.Dialect, path string, src []byte) (ast.Tree, []ast.SyntaxError)
}

// DialectFromPath infers a dialect from a file path's extension, defaulting
// to plain JS per spec.md's "Algorithm" step 1.
func DialectFromPath(path string) ast.Dialect {
	ext := extensionOf(path)
	dialect, _ := ast.DialectFromExtension(ext)
	return dialect
}

func extensionOf(path string) string {
	dot := -1
	for i := len(path) - 1; i >= 0; i-- {
		c := path[i]
		if c == '/' || c == '\\' {
			break
		}
		if c == '.' {
			dot = i
			break
		}
	}
	if dot < 0 || dot == len(path)-1 {
		return ""
	}
	ext := path[dot+1:]
	out := make([]byte, len(ext))
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
