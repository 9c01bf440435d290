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

// Package builtin is a small catalogue of example lint rules, written
// against lintengine's public Rule interfaces the same way a third-party
// rule package would be. It exists to exercise the engine end-to-end, not
// to be a complete JS/TS rule set.
package builtin

import (
	"fmt"

	"github.com/dxtools/dxcheck/ast"
	"github.com/dxtools/dxcheck/lintengine"
)

// NoDebugger flags `debugger;` statements left in source.
type NoDebugger struct{}

func (NoDebugger) Meta() lintengine.RuleMeta {
	return lintengine.RuleMeta{
		ID:              "no-debugger",
		Name:            "no debugger statements",
		DefaultSeverity: lintengine.SeverityWarning,
		Category:        "best-practices",
	}
}

func (r NoDebugger) OnNode(n ast.Node, ctx *lintengine.RuleContext) {
	if n.Kind() != "debugger_statement" {
		return
	}
	ctx.Report(lintengine.Diagnostic{
		Span:     n.Span(),
		Severity: r.Meta().DefaultSeverity,
		RuleID:   r.Meta().ID,
		Message:  "unexpected 'debugger' statement",
	})
}

// NoConsole flags calls to any console.* method, one diagnostic per call.
// It also keeps a per-file call count in scratch; the rule has no OnEnd
// phase, so no summary diagnostic is emitted from that count.
type NoConsole struct{}

func (NoConsole) Meta() lintengine.RuleMeta {
	return lintengine.RuleMeta{
		ID:              "no-console",
		Name:            "no console statements",
		DefaultSeverity: lintengine.SeverityInfo,
		Category:        "best-practices",
	}
}

func (r NoConsole) OnNode(n ast.Node, ctx *lintengine.RuleContext) {
	if n.Kind() != "call_expression" {
		return
	}
	children := n.Children()
	if len(children) == 0 || children[0].Kind() != "member_expression" {
		return
	}
	callee := children[0].Children()
	if len(callee) == 0 {
		return
	}
	if callee[0].Text(ctx.Src) != "console" {
		return
	}
	count, _ := ctx.Scratch(r.Meta().ID)["count"].(int)
	ctx.Scratch(r.Meta().ID)["count"] = count + 1
	ctx.Report(lintengine.Diagnostic{
		Span:     n.Span(),
		Severity: r.Meta().DefaultSeverity,
		RuleID:   r.Meta().ID,
		Message:  "unexpected console statement",
	})
}

// NoEval flags direct calls to eval().
type NoEval struct{}

func (NoEval) Meta() lintengine.RuleMeta {
	return lintengine.RuleMeta{
		ID:              "no-eval",
		Name:            "no eval",
		DefaultSeverity: lintengine.SeverityError,
		Category:        "security",
	}
}

func (r NoEval) OnNode(n ast.Node, ctx *lintengine.RuleContext) {
	if n.Kind() != "call_expression" {
		return
	}
	children := n.Children()
	if len(children) == 0 || children[0].Kind() != "identifier" {
		return
	}
	if children[0].Text(ctx.Src) != "eval" {
		return
	}
	ctx.Report(lintengine.Diagnostic{
		Span:     n.Span(),
		Severity: r.Meta().DefaultSeverity,
		RuleID:   r.Meta().ID,
		Message:  "eval() use is forbidden",
	})
}

// EqEqEq flags loose equality (== / !=) in favor of strict equality.
type EqEqEq struct{}

func (EqEqEq) Meta() lintengine.RuleMeta {
	return lintengine.RuleMeta{
		ID:              "eqeqeq",
		Name:            "require strict equality",
		DefaultSeverity: lintengine.SeverityWarning,
		Category:        "best-practices",
	}
}

func (r EqEqEq) OnNode(n ast.Node, ctx *lintengine.RuleContext) {
	if n.Kind() != "binary_expression" {
		return
	}
	children := n.Children()
	for _, c := range children {
		op := c.Text(ctx.Src)
		if op == "==" || op == "!=" {
			msg := fmt.Sprintf("expected %s and instead saw %s", strictFor(op), op)
			ctx.Report(lintengine.Diagnostic{
				Span:     n.Span(),
				Severity: r.Meta().DefaultSeverity,
				RuleID:   r.Meta().ID,
				Message:  msg,
			})
			return
		}
	}
}

func strictFor(op string) string {
	if op == "==" {
		return "==="
	}
	return "!=="
}

// AlwaysPanic is a test-only rule that panics on every node visited. It
// exists to exercise the panic-isolation property: the engine must keep
// running every other rule and emit one rule-panic diagnostic per
// invocation this rule received.
type AlwaysPanic struct{}

func (AlwaysPanic) Meta() lintengine.RuleMeta {
	return lintengine.RuleMeta{
		ID:              "always-panic",
		Name:            "always panic (test fixture)",
		DefaultSeverity: lintengine.SeverityError,
		Category:        "internal",
	}
}

func (AlwaysPanic) OnNode(ast.Node, *lintengine.RuleContext) {
	panic("always-panic: deliberate rule abort")
}

// All returns the default catalogue, in a stable registration order.
func All() []lintengine.Rule {
	return []lintengine.Rule{
		NoDebugger{},
		NoConsole{},
		NoEval{},
		EqEqEq{},
	}
}
