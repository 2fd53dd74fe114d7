package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/intl-extract/internal/jsast"
)

func TestImportSpec(t *testing.T) {
	t.Parallel()

	file := &jsast.File{Imports: []jsast.Import{
		{Source: "react-intl", Bindings: []jsast.ImportBinding{
			{Local: "FM", Imported: "FormattedMessage"},
			{Local: "defineMessage", Imported: "defineMessage"},
			{Local: "Intl", Imported: jsast.ImportedNamespace},
		}},
		{Source: "other-intl", Bindings: []jsast.ImportBinding{
			{Local: "FormattedMessage", Imported: "FormattedMessage"},
		}},
	}}
	spec := NewImportSpec(file, "react-intl")

	assert.True(t, spec.Relevant())
	assert.True(t, spec.References(identNode("FM"), ComponentNames))
	assert.False(t, spec.References(identNode("FM"), FunctionNames))
	assert.True(t, spec.References(identNode("defineMessage"), FunctionNames))
	assert.False(t, spec.References(identNode("FormattedMessage"), ComponentNames), "bound from another module")
	assert.False(t, spec.References(identNode("Intl"), ComponentNames))
	assert.False(t, spec.References(&jsast.Node{Kind: jsast.KindOther, Raw: "Intl.FormattedMessage"}, ComponentNames))
	assert.False(t, spec.References(nil, ComponentNames))
}

func TestImportSpec_Relevance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		imports []jsast.Import
		want    bool
	}{
		{"no imports", nil, false},
		{"untracked names only", []jsast.Import{{Source: "react-intl", Bindings: []jsast.ImportBinding{{Local: "injectIntl", Imported: "injectIntl"}}}}, false},
		{"namespace only", []jsast.Import{{Source: "react-intl", Bindings: []jsast.ImportBinding{{Local: "I", Imported: jsast.ImportedNamespace}}}}, false},
		{"tracked from other module", []jsast.Import{{Source: "intl", Bindings: []jsast.ImportBinding{{Local: "defineMessage", Imported: "defineMessage"}}}}, false},
		{"aliased tracked name", []jsast.Import{{Source: "react-intl", Bindings: []jsast.ImportBinding{{Local: "M", Imported: "FormattedHTMLMessage"}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := NewImportSpec(&jsast.File{Imports: tt.imports}, "react-intl")
			assert.Equal(t, tt.want, spec.Relevant())
		})
	}
}
