package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// lowerer converts a tree-sitter tree into jsast nodes and collects the
// import table on the way.
type lowerer struct {
	source  []byte
	imports []jsast.Import
}

// lowered pairs a tree-sitter node with its jsast counterpart so typed
// fields can be wired to the same instances that appear in Children.
type lowered struct {
	raw  *sitter.Node
	node *jsast.Node
}

func (l *lowerer) children(n *sitter.Node) []lowered {
	raws := namedChildren(n)
	out := make([]lowered, 0, len(raws))
	for _, r := range raws {
		out = append(out, lowered{raw: r, node: l.lower(r)})
	}
	return out
}

func nodesOf(ls []lowered) []*jsast.Node {
	out := make([]*jsast.Node, len(ls))
	for i, c := range ls {
		out[i] = c.node
	}
	return out
}

// field returns the lowered child that corresponds to the named field.
func field(n *sitter.Node, name string, kids []lowered) *jsast.Node {
	f := n.ChildByFieldName(name)
	if f == nil {
		return nil
	}
	for _, c := range kids {
		if sameNode(c.raw, f) {
			return c.node
		}
	}
	return nil
}

func (l *lowerer) lower(n *sitter.Node) *jsast.Node {
	if n.Kind() == "parenthesized_expression" {
		if inner := namedChildren(n); len(inner) == 1 {
			return l.lower(inner[0])
		}
	}

	out := &jsast.Node{
		Kind: jsast.KindOther,
		Pos:  nodePos(n),
		Raw:  extractNodeText(n, l.source),
	}

	switch n.Kind() {
	case "identifier", "property_identifier", "shorthand_property_identifier":
		out.Kind = jsast.KindIdentifier
		out.Name = out.Raw
		return out

	case "string":
		out.Kind = jsast.KindStringLiteral
		out.Str = cookString(n, l.source)
		return out

	case "number":
		if v, ok := parseNumber(out.Raw); ok {
			out.Kind = jsast.KindNumericLiteral
			out.Number = v
		}
		return out

	case "template_string":
		l.lowerTemplate(n, out)
		return out

	case "jsx_opening_element", "jsx_self_closing_element":
		l.lowerOpeningElement(n, out)
		return out

	case "jsx_attribute":
		kids := l.children(n)
		out.Kind = jsast.KindJSXAttribute
		out.Children = nodesOf(kids)
		if len(kids) > 0 {
			out.Key = kids[0].node
		}
		if len(kids) > 1 {
			out.Value = kids[1].node
		}
		return out

	case "object":
		l.lowerObject(n, out)
		return out
	}

	kids := l.children(n)
	out.Children = nodesOf(kids)

	switch n.Kind() {
	case "program":
		out.Kind = jsast.KindProgram

	case "import_statement":
		out.Kind = jsast.KindImportDeclaration
		l.collectImport(n, out)

	case "binary_expression":
		out.Kind = jsast.KindBinaryExpression
		out.Left = field(n, "left", kids)
		out.Right = field(n, "right", kids)
		out.Operator = extractNodeText(n.ChildByFieldName("operator"), l.source)

	case "unary_expression":
		out.Kind = jsast.KindUnaryExpression
		out.Argument = field(n, "argument", kids)
		out.Operator = extractNodeText(n.ChildByFieldName("operator"), l.source)

	case "jsx_expression":
		out.Kind = jsast.KindExpressionContainer
		if len(kids) > 0 {
			out.Expression = kids[0].node
		}

	case "spread_element":
		out.Kind = jsast.KindSpreadElement
		if len(kids) > 0 {
			out.Argument = kids[0].node
		}

	case "call_expression":
		args := n.ChildByFieldName("arguments")
		// Tagged templates share the node kind but are not invocations
		// with an argument list.
		if args == nil || args.Kind() != "arguments" {
			break
		}
		out.Kind = jsast.KindCallExpression
		out.Callee = field(n, "function", kids)
		for _, c := range kids {
			if sameNode(c.raw, args) {
				out.Arguments = c.node.Children
			}
		}
	}
	return out
}

func (l *lowerer) lowerTemplate(n *sitter.Node, out *jsast.Node) {
	out.Kind = jsast.KindTemplateLiteral
	var chunk cooker
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		switch child.Kind() {
		case "string_fragment":
			chunk.text(normalizeLineEndings(extractNodeText(child, l.source)))
		case "escape_sequence":
			chunk.escape(extractNodeText(child, l.source))
		case "template_substitution":
			out.Quasis = append(out.Quasis, chunk.String())
			chunk = cooker{}
			sub := &jsast.Node{Kind: jsast.KindOther, Pos: nodePos(child), Raw: extractNodeText(child, l.source)}
			if inner := namedChildren(child); len(inner) > 0 {
				sub = l.lower(inner[0])
			}
			out.Expressions = append(out.Expressions, sub)
		}
	}
	out.Quasis = append(out.Quasis, chunk.String())
	out.Children = out.Expressions
}

func (l *lowerer) lowerOpeningElement(n *sitter.Node, out *jsast.Node) {
	out.Kind = jsast.KindJSXOpeningElement
	out.SelfClosing = n.Kind() == "jsx_self_closing_element"
	kids := l.children(n)
	out.Tag = field(n, "name", kids)

	for i, c := range kids {
		switch c.raw.Kind() {
		case "jsx_attribute":
			out.Attributes = append(out.Attributes, c.node)
		case "jsx_expression":
			// {...descriptor} in attribute position.
			if c.node.Expression.Is(jsast.KindSpreadElement) {
				spread := &jsast.Node{
					Kind:     jsast.KindJSXSpreadAttribute,
					Pos:      c.node.Pos,
					Raw:      c.node.Raw,
					Argument: c.node.Expression.Argument,
					Children: c.node.Expression.Children,
				}
				kids[i].node = spread
				out.Attributes = append(out.Attributes, spread)
			}
		}
	}
	out.Children = nodesOf(kids)
}

func (l *lowerer) lowerObject(n *sitter.Node, out *jsast.Node) {
	out.Kind = jsast.KindObjectExpression
	for _, raw := range namedChildren(n) {
		var prop *jsast.Node
		switch raw.Kind() {
		case "pair", "method_definition":
			prop = l.lowerProperty(raw)
		case "shorthand_property_identifier":
			id := l.lower(raw)
			prop = &jsast.Node{
				Kind:     jsast.KindProperty,
				Pos:      id.Pos,
				Raw:      id.Raw,
				Key:      id,
				Value:    &jsast.Node{Kind: jsast.KindIdentifier, Pos: id.Pos, Raw: id.Raw, Name: id.Name},
				Children: []*jsast.Node{id},
			}
		default:
			prop = l.lower(raw)
		}
		out.Properties = append(out.Properties, prop)
		out.Children = append(out.Children, prop)
	}
}

func (l *lowerer) lowerProperty(n *sitter.Node) *jsast.Node {
	prop := &jsast.Node{
		Kind: jsast.KindProperty,
		Pos:  nodePos(n),
		Raw:  extractNodeText(n, l.source),
	}
	kids := l.children(n)
	prop.Children = nodesOf(kids)

	keyRaw := n.ChildByFieldName("key")
	if n.Kind() == "method_definition" {
		keyRaw = n.ChildByFieldName("name")
	}
	if keyRaw != nil && keyRaw.Kind() == "computed_property_name" {
		prop.Computed = true
		if inner := namedChildren(keyRaw); len(inner) > 0 {
			prop.Key = l.lower(inner[0])
		}
	} else {
		for _, c := range kids {
			if sameNode(c.raw, keyRaw) {
				prop.Key = c.node
			}
		}
	}

	if n.Kind() == "method_definition" {
		// A method is never a static value.
		prop.Value = &jsast.Node{Kind: jsast.KindOther, Pos: prop.Pos, Raw: prop.Raw}
		return prop
	}
	prop.Value = field(n, "value", kids)
	return prop
}
