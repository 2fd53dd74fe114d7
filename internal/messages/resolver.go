package messages

import (
	"slices"

	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// Names recognised when imported from the catalog module.
var (
	ComponentNames = []string{"FormattedMessage", "FormattedHTMLMessage"}
	FunctionNames  = []string{"defineMessage"}
)

// DefaultModuleSourceName is the catalog module matched when none is configured.
const DefaultModuleSourceName = "react-intl"

func isTrackedName(name string) bool {
	return slices.Contains(ComponentNames, name) || slices.Contains(FunctionNames, name)
}

// ImportSpec is the snapshot of local names a unit binds from the catalog
// module, keyed by local name with the originally imported name as value.
type ImportSpec struct {
	source string
	locals map[string]string
}

// NewImportSpec derives the ImportSpec of file for moduleSource.
func NewImportSpec(file *jsast.File, moduleSource string) ImportSpec {
	spec := ImportSpec{
		source: moduleSource,
		locals: make(map[string]string),
	}
	for _, imp := range file.Imports {
		if imp.Source != moduleSource {
			continue
		}
		for _, b := range imp.Bindings {
			spec.locals[b.Local] = b.Imported
		}
	}
	return spec
}

// Relevant reports whether any import from the module brings in a tracked name.
func (s ImportSpec) Relevant() bool {
	for _, imported := range s.locals {
		if isTrackedName(imported) {
			return true
		}
	}
	return false
}

// References reports whether ref is an identifier bound to one of names
// imported from the module. Member expressions such as Intl.FormattedMessage
// never match.
func (s ImportSpec) References(ref *jsast.Node, names []string) bool {
	if !ref.Is(jsast.KindIdentifier) {
		return false
	}
	imported, ok := s.locals[ref.Name]
	if !ok {
		return false
	}
	return slices.Contains(names, imported)
}
