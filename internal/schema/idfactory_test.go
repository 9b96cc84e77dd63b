package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqidFactoryMintAndResolve(t *testing.T) {
	s := testSchema(t)
	types := NewTypeRegistry(s, nil)
	f := NewSqidFactory(NewCodec(42, 8), types)

	contact := s.Model("Contact")
	id := f.NewID(contact)
	require.NotEmpty(t, id)
	assert.True(t, strings.HasPrefix(id, "contact_"))

	resolved, ok := f.Decode(id)
	require.True(t, ok)
	assert.Equal(t, "Contact", resolved.Model)
	num, _ := types.TypeNum("Contact")
	assert.Equal(t, num, resolved.ID.TypeNum)
}

func TestSqidFactoryMintsDistinctIDs(t *testing.T) {
	s := testSchema(t)
	f := NewSqidFactory(NewCodec(42, 8), NewTypeRegistry(s, nil))
	m := s.Model("Deal")

	seen := make(map[string]bool, 50)
	for i := 0; i < 50; i++ {
		id := f.NewID(m)
		require.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSqidFactoryDecodeUnknown(t *testing.T) {
	s := testSchema(t)
	f := NewSqidFactory(NewCodec(42, 8), NewTypeRegistry(s, nil))

	_, ok := f.Decode("nounderscore")
	assert.False(t, ok)

	_, ok = f.Decode("contact_!!!invalid!!!")
	assert.False(t, ok)

	// a segment carrying a type number no model maps to
	body, err := NewCodec(42, 8).Encode(9999, nil, 1, 1)
	require.NoError(t, err)
	_, ok = f.Decode("contact_" + body)
	assert.False(t, ok)
}
