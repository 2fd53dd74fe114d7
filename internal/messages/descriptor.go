package messages

import (
	"strings"
	"unicode"

	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// Descriptor is one extracted message. Field order is the JSON output order.
// Absent optional fields are nil and omitted from JSON.
type Descriptor struct {
	ID             string  `json:"id"`
	Description    *string `json:"description,omitempty"`
	DefaultMessage *string `json:"defaultMessage,omitempty"`
}

// Descriptor keys that are retained; any other key is ignored.
const (
	keyID             = "id"
	keyDescription    = "description"
	keyDefaultMessage = "defaultMessage"
)

// Pair is one key/value entry taken from a matched invocation: a JSX
// attribute or an object literal property.
type Pair struct {
	Key      *jsast.Node
	Value    *jsast.Node
	Computed bool
	// Pos locates the entry itself; Value can be nil for valueless attributes.
	Pos jsast.Pos
}

func isDescriptorKey(key string) bool {
	switch key {
	case keyID, keyDescription, keyDefaultMessage:
		return true
	}
	return false
}

// ExtractDescriptor folds pairs into a Descriptor. Pairs are visited in
// order and every retained key has its value evaluated where it appears; a
// later key replaces the value of an earlier one. Values of other keys are
// never evaluated.
func ExtractDescriptor(file string, pairs []Pair) (Descriptor, error) {
	var d Descriptor
	for _, p := range pairs {
		key, err := descriptorKey(file, p)
		if err != nil {
			return Descriptor{}, err
		}
		if !isDescriptorKey(key) {
			continue
		}

		value, err := descriptorValue(file, p)
		if err != nil {
			return Descriptor{}, err
		}
		value = trimJS(value)

		switch key {
		case keyID:
			d.ID = value
		case keyDescription:
			d.Description = &value
		case keyDefaultMessage:
			d.DefaultMessage = &value
		}
	}
	return d, nil
}

func descriptorKey(file string, p Pair) (string, error) {
	if !p.Computed && p.Key.Is(jsast.KindIdentifier) {
		return p.Key.Name, nil
	}
	if c, ok := evaluate(p.Key); ok {
		return c.String(), nil
	}
	return "", extractionError(file, p.Key, p.Pos,
		"Message descriptor keys must be statically evaluate-able for extraction.")
}

func descriptorValue(file string, p Pair) (string, error) {
	n := p.Value
	if n.Is(jsast.KindExpressionContainer) {
		n = n.Expression
	}

	if c, ok := evaluate(n); ok {
		return c.String(), nil
	}

	if n.Is(jsast.KindTemplateLiteral) && len(n.Expressions) == 0 {
		return strings.Join(n.Quasis, ""), nil
	}

	return "", extractionError(file, n, p.Pos,
		"Messages must be statically evaluate-able for extraction.")
}

func extractionError(file string, n *jsast.Node, fallback jsast.Pos, msg string) error {
	pos := fallback
	if n != nil {
		pos = n.Pos
	}
	return diag.New(diag.ExtractionError, file, pos.Line, pos.Column, msg)
}

// trimJS trims the characters String.prototype.trim removes.
func trimJS(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
