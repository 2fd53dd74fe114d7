// Package jsast is the small syntax model the message extractor works on.
//
// Parsers lower their concrete trees into these nodes. Only the node kinds the
// extractor inspects get their own Kind; everything else is KindOther and is
// kept solely so traversal can reach nested invocations.
package jsast

import "fmt"

// Kind identifies the shape of a Node.
type Kind uint8

const (
	KindOther Kind = iota
	KindProgram
	KindImportDeclaration
	KindIdentifier
	KindStringLiteral
	KindNumericLiteral
	KindTemplateLiteral
	KindBinaryExpression
	KindUnaryExpression
	KindExpressionContainer
	KindObjectExpression
	KindProperty
	KindSpreadElement
	KindJSXAttribute
	KindJSXSpreadAttribute
	KindJSXOpeningElement
	KindCallExpression
)

var kindNames = [...]string{
	KindOther:               "Other",
	KindProgram:             "Program",
	KindImportDeclaration:   "ImportDeclaration",
	KindIdentifier:          "Identifier",
	KindStringLiteral:       "StringLiteral",
	KindNumericLiteral:      "NumericLiteral",
	KindTemplateLiteral:     "TemplateLiteral",
	KindBinaryExpression:    "BinaryExpression",
	KindUnaryExpression:     "UnaryExpression",
	KindExpressionContainer: "ExpressionContainer",
	KindObjectExpression:    "ObjectExpression",
	KindProperty:            "Property",
	KindSpreadElement:       "SpreadElement",
	KindJSXAttribute:        "JSXAttribute",
	KindJSXSpreadAttribute:  "JSXSpreadAttribute",
	KindJSXOpeningElement:   "JSXOpeningElement",
	KindCallExpression:      "CallExpression",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is a tagged union. Which fields are meaningful depends on Kind:
//
//	Identifier          Name
//	StringLiteral       Str (cooked)
//	NumericLiteral      Number, Raw
//	TemplateLiteral     Quasis (cooked), Expressions
//	BinaryExpression    Operator, Left, Right
//	UnaryExpression     Operator, Argument
//	ExpressionContainer Expression (nil for `{}`)
//	ObjectExpression    Properties
//	Property            Key, Value, Computed
//	SpreadElement       Argument
//	JSXAttribute        Key (attribute name), Value (nil when valueless)
//	JSXSpreadAttribute  Argument
//	JSXOpeningElement   Tag, Attributes, SelfClosing
//	CallExpression      Callee, Arguments
//	ImportDeclaration   Source
//
// Children always holds every direct child in document order, including the
// ones reachable through the typed fields.
type Node struct {
	Kind Kind
	Pos  Pos
	Raw  string

	Name        string
	Str         string
	Number      float64
	Operator    string
	Quasis      []string
	Expressions []*Node

	Left       *Node
	Right      *Node
	Argument   *Node
	Expression *Node
	Key        *Node
	Value      *Node
	Computed   bool

	Properties  []*Node
	Attributes  []*Node
	SelfClosing bool
	Callee      *Node
	Arguments   []*Node
	Source      string
	Tag         *Node

	Children []*Node
}

// Is reports whether n is non-nil and of kind k.
func (n *Node) Is(k Kind) bool {
	return n != nil && n.Kind == k
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindIdentifier:
		return fmt.Sprintf("%s(%s)@%s", n.Kind, n.Name, n.Pos)
	case KindStringLiteral:
		return fmt.Sprintf("%s(%q)@%s", n.Kind, n.Str, n.Pos)
	}
	return fmt.Sprintf("%s@%s", n.Kind, n.Pos)
}
