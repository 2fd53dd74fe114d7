package messages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/intl-extract/internal/jsast"
	"github.com/mvp-joe/intl-extract/internal/parsers"
)

func strNode(s string) *jsast.Node {
	return &jsast.Node{Kind: jsast.KindStringLiteral, Str: s, Pos: jsast.Pos{Line: 1, Column: 1}}
}

func numNode(f float64) *jsast.Node {
	return &jsast.Node{Kind: jsast.KindNumericLiteral, Number: f, Pos: jsast.Pos{Line: 1, Column: 1}}
}

func identNode(name string) *jsast.Node {
	return &jsast.Node{Kind: jsast.KindIdentifier, Name: name, Pos: jsast.Pos{Line: 1, Column: 1}}
}

func concatNode(left, right *jsast.Node) *jsast.Node {
	return &jsast.Node{Kind: jsast.KindBinaryExpression, Operator: "+", Left: left, Right: right}
}

func templateNode(quasis []string, exprs ...*jsast.Node) *jsast.Node {
	return &jsast.Node{Kind: jsast.KindTemplateLiteral, Quasis: quasis, Expressions: exprs, Pos: jsast.Pos{Line: 2, Column: 3}}
}

func containerNode(expr *jsast.Node) *jsast.Node {
	return &jsast.Node{Kind: jsast.KindExpressionContainer, Expression: expr}
}

func pair(key string, value *jsast.Node) Pair {
	return Pair{Key: identNode(key), Value: value}
}

func strPtr(s string) *string {
	return &s
}

// parseSource parses src with the tree-sitter parser as the file name.
func parseSource(t *testing.T, name, src string) *jsast.File {
	t.Helper()
	f, err := parsers.New().Parse(context.Background(), name, []byte(src))
	require.NoError(t, err)
	return f
}

// runSource parses and extracts src with the given options.
func runSource(t *testing.T, opts Options, name, src string) (*Result, error) {
	t.Helper()
	if opts.WorkingDir == "" {
		opts.WorkingDir = t.TempDir()
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e.Run(context.Background(), parseSource(t, name, src))
}
