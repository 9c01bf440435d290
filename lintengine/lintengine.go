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

// Package lintengine fuses many lint rules into a single AST traversal per
// file. Rules are dispatched through capability interfaces (Starter,
// NodeVisitor, Ender) rather than a single fat interface, so a rule that
// only cares about specific node kinds pays no cost for the phases it
// doesn't implement.
package lintengine

import (
	"fmt"
	"log/slog"

	"github.com/dxtools/dxcheck/ast"
	"github.com/dxtools/dxcheck/parser"
)

// Severity ranks a Diagnostic's importance.
type Severity int

const (
	SeverityHint Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String renders a Severity the way diagnostics are printed and JSON-tagged.
func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "hint"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// FixHint is an optional machine-applicable fix attached to a Diagnostic.
type FixHint struct {
	Span        ast.Span `json:"span"`
	Replacement string   `json:"replacement"`
}

// Diagnostic is one finding reported by a rule.
type Diagnostic struct {
	File       string   `json:"file"`
	Span       ast.Span `json:"span"`
	Severity   Severity `json:"severity"`
	RuleID     string   `json:"rule_id"`
	Message    string   `json:"message"`
	Suggestion *string  `json:"suggestion,omitempty"`
	Fix        *FixHint `json:"fix,omitempty"`
}

// RuleMeta describes a rule's identity within the registry.
type RuleMeta struct {
	ID              string
	Name            string
	DefaultSeverity Severity
	Category        string
}

// Rule is the minimal contract every rule satisfies: identity. The
// capability interfaces below are detected by type assertion, mirroring
// spec'd "polymorphic over a capability set" rule shape without forcing
// every rule to implement every phase.
type Rule interface {
	Meta() RuleMeta
}

// Starter is implemented by rules that need to run once before the walk,
// e.g. to inspect the raw source bytes.
type Starter interface {
	Rule
	OnStart(src []byte, ctx *RuleContext)
}

// NodeVisitor is implemented by rules that inspect AST nodes during the
// walk. OnNode is called at the entry of every node, in source order; the
// rule decides internally whether a given kind matters to it.
type NodeVisitor interface {
	Rule
	OnNode(n ast.Node, ctx *RuleContext)
}

// Ender is implemented by rules that need a final pass after the walk
// completes, e.g. to flush state accumulated in Scratch.
type Ender interface {
	Rule
	OnEnd(ctx *RuleContext)
}

// RuleContext is the per-file state threaded through a rule's phases. It is
// created fresh for each CheckSource call and discarded after its
// diagnostics are drained.
type RuleContext struct {
	Path string
	Src  []byte

	diagnostics []Diagnostic
	scratch     map[string]map[string]any
}

func newRuleContext(path string, src []byte) *RuleContext {
	return &RuleContext{
		Path:    path,
		Src:     src,
		scratch: make(map[string]map[string]any),
	}
}

// NewRuleContext builds a RuleContext outside of an Engine run, for rule
// packages that want to unit-test a rule's OnStart/OnNode/OnEnd in
// isolation rather than through a full CheckSource call.
func NewRuleContext(path string, src []byte) *RuleContext {
	return newRuleContext(path, src)
}

// Diagnostics returns the diagnostics reported so far. Intended for tests;
// production callers should go through Engine.CheckSource's return value
// instead.
func (c *RuleContext) Diagnostics() []Diagnostic {
	return c.diagnostics
}

// Report appends a diagnostic. The diagnostics sequence is append-only:
// rules never see or mutate what another rule has already reported.
func (c *RuleContext) Report(d Diagnostic) {
	d.File = c.Path
	c.diagnostics = append(c.diagnostics, d)
}

// Scratch returns a rule-private map for carrying state between phases
// (e.g. OnNode accumulating into state OnEnd later flushes). Scratch state
// for one rule-id is never visible to another.
func (c *RuleContext) Scratch(ruleID string) map[string]any {
	m, ok := c.scratch[ruleID]
	if !ok {
		m = make(map[string]any)
		c.scratch[ruleID] = m
	}
	return m
}

func (c *RuleContext) drain() []Diagnostic {
	return c.diagnostics
}

// registeredRule pairs a Rule with the registry's bookkeeping for it.
type registeredRule struct {
	rule     Rule
	severity Severity
	enabled  bool
}

// Registry holds rules in registration order; that order is the dispatch
// order and is observable in the emitted-diagnostic sequence.
type Registry struct {
	order []string
	rules map[string]*registeredRule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*registeredRule)}
}

// Register adds a rule at its default severity, enabled. Registering a
// rule whose ID already exists panics — that is a configuration bug caught
// at startup, not a runtime condition.
func (r *Registry) Register(rule Rule) {
	meta := rule.Meta()
	if meta.ID == "" {
		panic("lintengine: rule registered with empty ID")
	}
	if _, exists := r.rules[meta.ID]; exists {
		panic(fmt.Sprintf("lintengine: duplicate rule id %q", meta.ID))
	}
	r.order = append(r.order, meta.ID)
	r.rules[meta.ID] = &registeredRule{rule: rule, severity: meta.DefaultSeverity, enabled: true}
}

// SetEnabled toggles a rule. Disabling a rule suppresses its emissions but
// not its panics from being caught — the fault barrier still wraps a
// disabled rule's absence of dispatch trivially (it is simply never
// invoked), but a rule re-enabled mid-process resumes normal behavior.
func (r *Registry) SetEnabled(ruleID string, enabled bool) {
	if rr, ok := r.rules[ruleID]; ok {
		rr.enabled = enabled
	}
}

// SetSeverity overrides a rule's effective severity.
func (r *Registry) SetSeverity(ruleID string, sev Severity) {
	if rr, ok := r.rules[ruleID]; ok {
		rr.severity = sev
	}
}

func (r *Registry) enabledInOrder() []*registeredRule {
	out := make([]*registeredRule, 0, len(r.order))
	for _, id := range r.order {
		rr := r.rules[id]
		if rr.enabled {
			out = append(out, rr)
		}
	}
	return out
}

// EngineFailure is returned from CheckSource only for catastrophic,
// non-diagnostic conditions (configuration or internal faults) — never for
// a source file that merely failed to parse, which instead surfaces as a
// parse-error diagnostic.
type EngineFailure struct {
	Reason string
}

func (e *EngineFailure) Error() string { return "lintengine: " + e.Reason }

// Engine runs the fused rule walk over one file at a time.
type Engine struct {
	parser   parser.Parser
	registry *Registry
	log      *slog.Logger
}

// New builds an Engine bound to a parser and a registry. Both must be
// non-nil; passing a nil registry is a configuration bug.
func New(p parser.Parser, registry *Registry, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{parser: p, registry: registry, log: log}
}

// CheckSource implements the seven-step fused-rule algorithm: infer
// dialect, parse, run start/walk/end phases through every enabled rule
// that implements the matching capability, and drain diagnostics.
func (e *Engine) CheckSource(path string, src []byte) ([]Diagnostic, error) {
	if e.registry == nil {
		return nil, &EngineFailure{Reason: "no rule registry configured"}
	}

	dialect := parser.DialectFromPath(path)

	tree, syntaxErrors := e.parser.Parse(dialect, path, src)
	if len(syntaxErrors) > 0 {
		diags := make([]Diagnostic, 0, len(syntaxErrors))
		for _, se := range syntaxErrors {
			diags = append(diags, Diagnostic{
				File:     path,
				Span:     se.Span,
				Severity: SeverityError,
				RuleID:   "parse-error",
				Message:  se.Message,
			})
		}
		return diags, nil
	}

	ctx := newRuleContext(path, src)
	rules := e.registry.enabledInOrder()

	for _, rr := range rules {
		starter, ok := rr.rule.(Starter)
		if !ok {
			continue
		}
		e.guard(rr, ctx, func() { starter.OnStart(src, ctx) })
	}

	ast.Walk(tree, func(n ast.Node) {
		for _, rr := range rules {
			visitor, ok := rr.rule.(NodeVisitor)
			if !ok {
				continue
			}
			e.guard(rr, ctx, func() { visitor.OnNode(n, ctx) })
		}
	})

	for _, rr := range rules {
		ender, ok := rr.rule.(Ender)
		if !ok {
			continue
		}
		e.guard(rr, ctx, func() { ender.OnEnd(ctx) })
	}

	return ctx.drain(), nil
}

// guard runs fn inside a recoverable fault barrier: a panicking rule is
// isolated to its own invocation, logged, and surfaced as a synthetic
// rule-panic diagnostic. Sibling rules and subsequent nodes are unaffected.
func (e *Engine) guard(rr *registeredRule, ctx *RuleContext, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			meta := rr.rule.Meta()
			e.log.Error("rule panicked", "rule_id", meta.ID, "file", ctx.Path, "panic", r)
			ctx.Report(Diagnostic{
				Severity: SeverityError,
				RuleID:   "rule-panic",
				Message:  fmt.Sprintf("rule %q panicked: %v", meta.ID, r),
			})
		}
	}()
	fn()
}
