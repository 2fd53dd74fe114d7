package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/jsast"
)

// Test Plan for Store:
// - Insert keeps first-insertion order
// - Empty id is a fatal MissingId
// - Repeated id is a fatal DuplicateId even for identical descriptors
// - Missing or empty defaultMessage yields one warning and no insert
// - Values returns a copy and an empty, non-nil slice for an empty store

func TestStore_InsertionOrder(t *testing.T) {
	t.Parallel()

	s := NewStore("a.js")
	for _, id := range []string{"c", "a", "b"} {
		warn, err := s.Insert(Descriptor{ID: id, DefaultMessage: strPtr(id)}, jsast.Pos{Line: 1})
		require.NoError(t, err)
		require.Nil(t, warn)
	}

	var ids []string
	for _, d := range s.Values() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Equal(t, 3, s.Len())
}

func TestStore_MissingID(t *testing.T) {
	t.Parallel()

	s := NewStore("a.js")
	_, err := s.Insert(Descriptor{DefaultMessage: strPtr("x")}, jsast.Pos{Line: 2, Column: 4})
	require.Error(t, err)
	assert.Equal(t, diag.MissingID, diag.CodeOf(err))
	assert.Equal(t, 0, s.Len())
}

func TestStore_DuplicateID(t *testing.T) {
	t.Parallel()

	s := NewStore("a.js")
	d := Descriptor{ID: "dup.key", DefaultMessage: strPtr("same")}

	_, err := s.Insert(d, jsast.Pos{Line: 1, Column: 1})
	require.NoError(t, err)

	_, err = s.Insert(d, jsast.Pos{Line: 5, Column: 2})
	require.Error(t, err)

	var dd *diag.Diagnostic
	require.ErrorAs(t, err, &dd)
	assert.Equal(t, diag.DuplicateID, dd.Code)
	assert.Equal(t, 5, dd.Line)
	assert.Contains(t, dd.Message, `"dup.key"`)

	assert.Equal(t, []Descriptor{d}, s.Values())
}

func TestStore_MissingDefaultMessage(t *testing.T) {
	t.Parallel()

	for _, dm := range []*string{nil, strPtr("")} {
		s := NewStore("a.js")
		warn, err := s.Insert(Descriptor{ID: "no.default", DefaultMessage: dm}, jsast.Pos{Line: 7, Column: 1})
		require.NoError(t, err)
		require.NotNil(t, warn)
		assert.Equal(t, diag.MissingDefaultMessage, warn.Code)
		assert.False(t, warn.IsFatal())
		assert.Contains(t, warn.Message, "Line 7")
		assert.False(t, s.Has("no.default"))
		assert.Empty(t, s.Values())
	}
}

func TestStore_DroppedIDIsNotReserved(t *testing.T) {
	t.Parallel()

	s := NewStore("a.js")
	warn, err := s.Insert(Descriptor{ID: "later"}, jsast.Pos{Line: 1})
	require.NoError(t, err)
	require.NotNil(t, warn)

	warn, err = s.Insert(Descriptor{ID: "later", DefaultMessage: strPtr("ok")}, jsast.Pos{Line: 2})
	require.NoError(t, err)
	assert.Nil(t, warn)
	assert.True(t, s.Has("later"))
}

func TestStore_ValuesIsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore("a.js")
	assert.NotNil(t, s.Values())

	_, err := s.Insert(Descriptor{ID: "a", DefaultMessage: strPtr("A")}, jsast.Pos{})
	require.NoError(t, err)

	vals := s.Values()
	vals[0].ID = "mutated"
	assert.Equal(t, "a", s.Values()[0].ID)
}
