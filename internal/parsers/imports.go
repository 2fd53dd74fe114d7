package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// collectImport records the bindings introduced by an import_statement.
//
//	import Intl from "m"                     -> Intl: default
//	import * as Intl from "m"                -> Intl: *
//	import {FormattedMessage as FM} from "m" -> FM: FormattedMessage
func (l *lowerer) collectImport(n *sitter.Node, out *jsast.Node) {
	src := n.ChildByFieldName("source")
	if src == nil {
		return
	}
	out.Source = cookString(src, l.source)

	// import type {...} binds no values.
	if typeOnly(n) {
		return
	}

	imp := jsast.Import{
		Source: out.Source,
		Pos:    out.Pos,
	}

	clause := findChildByType(n, "import_clause")
	for _, child := range namedChildren(clause) {
		switch child.Kind() {
		case "identifier":
			imp.Bindings = append(imp.Bindings, jsast.ImportBinding{
				Local:    extractNodeText(child, l.source),
				Imported: jsast.ImportedDefault,
			})
		case "namespace_import":
			if id := findChildByType(child, "identifier"); id != nil {
				imp.Bindings = append(imp.Bindings, jsast.ImportBinding{
					Local:    extractNodeText(id, l.source),
					Imported: jsast.ImportedNamespace,
				})
			}
		case "named_imports":
			for _, spec := range namedChildren(child) {
				if spec.Kind() != "import_specifier" || typeOnly(spec) {
					continue
				}
				if b, ok := l.importSpecifier(spec); ok {
					imp.Bindings = append(imp.Bindings, b)
				}
			}
		}
	}

	l.imports = append(l.imports, imp)
}

func (l *lowerer) importSpecifier(spec *sitter.Node) (jsast.ImportBinding, bool) {
	name := spec.ChildByFieldName("name")
	if name == nil {
		return jsast.ImportBinding{}, false
	}

	imported := extractNodeText(name, l.source)
	if name.Kind() == "string" {
		imported = cookString(name, l.source)
	}

	local := imported
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		local = extractNodeText(alias, l.source)
	}
	return jsast.ImportBinding{Local: local, Imported: imported}, true
}

// typeOnly reports whether an import statement or specifier carries the
// type or typeof modifier.
func typeOnly(n *sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.IsNamed() {
			continue
		}
		if k := child.Kind(); k == "type" || k == "typeof" {
			return true
		}
	}
	return false
}
