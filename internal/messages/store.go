package messages

import (
	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// Store holds the descriptors of one unit keyed by id, in first-insertion order.
type Store struct {
	file     string
	index    map[string]int
	messages []Descriptor
}

// NewStore creates an empty store for the unit at file.
func NewStore(file string) *Store {
	return &Store{
		file:     file,
		index:    make(map[string]int),
		messages: []Descriptor{},
	}
}

// Insert validates d and adds it. A missing or duplicate id is fatal and is
// returned as err. A missing defaultMessage is not inserted and is returned
// as a warning.
func (s *Store) Insert(d Descriptor, pos jsast.Pos) (warning *diag.Diagnostic, err error) {
	if d.ID == "" {
		return nil, diag.New(diag.MissingID, s.file, pos.Line, pos.Column,
			"Message is missing an `id`.")
	}

	if _, dup := s.index[d.ID]; dup {
		return nil, diag.Newf(diag.DuplicateID, s.file, pos.Line, pos.Column,
			"Duplicate message id: %q", d.ID)
	}

	if d.DefaultMessage == nil || *d.DefaultMessage == "" {
		return diag.Newf(diag.MissingDefaultMessage, s.file, pos.Line, pos.Column,
			"Line %d: Message %q is missing a `defaultMessage` and will not be extracted.", pos.Line, d.ID), nil
	}

	s.index[d.ID] = len(s.messages)
	s.messages = append(s.messages, d)
	return nil, nil
}

// Has reports whether a descriptor with id was inserted.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of stored descriptors.
func (s *Store) Len() int {
	return len(s.messages)
}

// Values returns the descriptors in insertion order. The slice is a copy.
func (s *Store) Values() []Descriptor {
	out := make([]Descriptor, len(s.messages))
	copy(out, s.messages)
	return out
}
