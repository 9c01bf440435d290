package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dxtools/dxcheck/ast"
	"github.com/dxtools/dxcheck/lintengine"
	"github.com/dxtools/dxcheck/rules/builtin"
)

type fakeNode struct {
	kind     string
	text     string
	children []*fakeNode
}

func (n *fakeNode) Kind() string       { return n.kind }
func (n *fakeNode) Span() ast.Span     { return ast.Span{} }
func (n *fakeNode) Text([]byte) string { return n.text }
func (n *fakeNode) Children() []ast.Node {
	out := make([]ast.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func leaf(kind, text string) *fakeNode { return &fakeNode{kind: kind, text: text} }

func newCtx() *lintengine.RuleContext {
	return lintengine.NewRuleContext("a.js", nil)
}

func TestNoDebuggerFlagsDebuggerStatement(t *testing.T) {
	c := newCtx()
	builtin.NoDebugger{}.OnNode(leaf("debugger_statement", "debugger"), c)
	require.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, "no-debugger", c.Diagnostics()[0].RuleID)
}

func TestNoDebuggerIgnoresOtherNodes(t *testing.T) {
	c := newCtx()
	builtin.NoDebugger{}.OnNode(leaf("expression_statement", ""), c)
	assert.Empty(t, c.Diagnostics())
}

func TestNoConsoleFlagsConsoleCall(t *testing.T) {
	call := &fakeNode{kind: "call_expression", children: []*fakeNode{
		{kind: "member_expression", children: []*fakeNode{leaf("identifier", "console"), leaf("property_identifier", "log")}},
	}}
	c := newCtx()
	builtin.NoConsole{}.OnNode(call, c)
	require.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, "no-console", c.Diagnostics()[0].RuleID)
}

func TestNoConsoleIgnoresOtherCalls(t *testing.T) {
	call := &fakeNode{kind: "call_expression", children: []*fakeNode{
		{kind: "member_expression", children: []*fakeNode{leaf("identifier", "logger"), leaf("property_identifier", "log")}},
	}}
	c := newCtx()
	builtin.NoConsole{}.OnNode(call, c)
	assert.Empty(t, c.Diagnostics())
}

func TestNoEvalFlagsDirectCall(t *testing.T) {
	call := &fakeNode{kind: "call_expression", children: []*fakeNode{leaf("identifier", "eval")}}
	c := newCtx()
	builtin.NoEval{}.OnNode(call, c)
	require.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, lintengine.SeverityError, c.Diagnostics()[0].Severity)
}

func TestEqEqEqFlagsLooseEquality(t *testing.T) {
	bin := &fakeNode{kind: "binary_expression", children: []*fakeNode{leaf("identifier", "a"), leaf("==", "=="), leaf("number", "1")}}
	c := newCtx()
	builtin.EqEqEq{}.OnNode(bin, c)
	require.Len(t, c.Diagnostics(), 1)
	assert.Contains(t, c.Diagnostics()[0].Message, "===")
}

func TestAllReturnsStableCatalogueOrder(t *testing.T) {
	rules := builtin.All()
	require.Len(t, rules, 4)
	assert.Equal(t, "no-debugger", rules[0].Meta().ID)
}
