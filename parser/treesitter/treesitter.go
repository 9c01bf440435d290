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

// Package treesitter is the default parser.Parser adapter, backed by
// Tree-sitter grammars for JavaScript and TypeScript. Parsers are not
// thread-safe, so one sync.Pool per dialect is kept warm across calls —
// the same pattern the teacher codebase uses for its own multi-language
// pools.
package treesitter

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/dxtools/dxcheck/ast"
)

// Parser implements parser.Parser using Tree-sitter.
type Parser struct {
	jsPool  sync.Pool
	tsPool  sync.Pool
	tsxPool sync.Pool
	once    sync.Once
}

// New creates a Tree-sitter backed parser. It is safe for concurrent use
// by multiple goroutines: each call borrows a parser from the dialect's
// pool and returns it when done.
func New() *Parser {
	return &Parser{}
}

func (p *Parser) init() {
	p.once.Do(func() {
		p.jsPool.New = func() any {
			sp := sitter.NewParser()
			sp.SetLanguage(javascript.GetLanguage())
			return sp
		}
		p.tsPool.New = func() any {
			sp := sitter.NewParser()
			sp.SetLanguage(typescript.GetLanguage())
			return sp
		}
		p.tsxPool.New = func() any {
			sp := sitter.NewParser()
			sp.SetLanguage(tsx.GetLanguage())
			return sp
		}
	})
}

func (p *Parser) poolFor(dialect ast.Dialect) *sync.Pool {
	switch dialect {
	case ast.DialectTS:
		return &p.tsPool
	case ast.DialectTSX:
		return &p.tsxPool
	default:
		// JS and JSX share the javascript grammar, which understands JSX
		// syntax natively.
		return &p.jsPool
	}
}

// Parse implements parser.Parser.
func (p *Parser) Parse(dialect ast.Dialect, path string, src []byte) (ast.Tree, []ast.SyntaxError) {
	p.init()
	pool := p.poolFor(dialect)

	sp, ok := pool.Get().(*sitter.Parser)
	if !ok {
		sp = sitter.NewParser()
	}
	defer pool.Put(sp)

	tree, err := sp.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, []ast.SyntaxError{{Message: fmt.Sprintf("tree-sitter parse failed: %v", err)}}
	}

	root := tree.RootNode()
	if root == nil {
		return nil, []ast.SyntaxError{{Message: "tree-sitter produced no root node"}}
	}

	var syntaxErrors []ast.SyntaxError
	if root.HasError() {
		syntaxErrors = collectSyntaxErrors(root, nil)
		if len(syntaxErrors) == 0 {
			// HasError was true but no ERROR/MISSING node was found by
			// our walk (can happen with certain grammar recovery
			// strategies) — still surface something rather than silently
			// proceeding to run rules on a broken parse.
			syntaxErrors = []ast.SyntaxError{{Message: "syntax error", Span: ast.Span{}}}
		}
	}

	if len(syntaxErrors) > 0 {
		return nil, syntaxErrors
	}

	return &Tree{root: &Node{n: root, src: src}}, nil
}

func collectSyntaxErrors(n *sitter.Node, errs []ast.SyntaxError) []ast.SyntaxError {
	if n.IsMissing() {
		errs = append(errs, ast.SyntaxError{
			Message: fmt.Sprintf("missing %s", n.Type()),
			Span:    Span(n),
		})
	} else if n.Type() == "ERROR" {
		errs = append(errs, ast.SyntaxError{
			Message: "unexpected syntax",
			Span:    Span(n),
		})
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		errs = collectSyntaxErrors(n.Child(i), errs)
	}
	return errs
}

// Span converts a *sitter.Node's byte range into an ast.Span.
func Span(n *sitter.Node) ast.Span {
	return ast.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

// Tree adapts a *sitter.Tree's root to ast.Tree.
type Tree struct {
	root *Node
}

// Root implements ast.Tree.
func (t *Tree) Root() ast.Node { return t.root }

// Node adapts a *sitter.Node to ast.Node.
type Node struct {
	n   *sitter.Node
	src []byte
}

// Kind implements ast.Node.
func (n *Node) Kind() string { return n.n.Type() }

// Span implements ast.Node.
func (n *Node) Span() ast.Span { return Span(n.n) }

// Text implements ast.Node.
func (n *Node) Text(src []byte) string {
	start, end := n.n.StartByte(), n.n.EndByte()
	if int(end) > len(src) {
		end = uint32(len(src))
	}
	return string(src[start:end])
}

// Children implements ast.Node.
func (n *Node) Children() []ast.Node {
	count := int(n.n.ChildCount())
	if count == 0 {
		return nil
	}
	children := make([]ast.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.n.Child(i)
		if child == nil {
			continue
		}
		children = append(children, &Node{n: child, src: n.src})
	}
	return children
}
