package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPrefixedID(t *testing.T) {
	prefix, body, ok := SplitPrefixedID("contact_abc123")
	require.True(t, ok)
	assert.Equal(t, "contact", prefix)
	assert.Equal(t, "abc123", body)

	// split on the FIRST underscore only
	prefix, body, ok = SplitPrefixedID("contact_abc_def")
	require.True(t, ok)
	assert.Equal(t, "contact", prefix)
	assert.Equal(t, "abc_def", body)

	_, _, ok = SplitPrefixedID("nounderscorehere")
	assert.False(t, ok)
}

func TestBuildPrefixedID(t *testing.T) {
	s, err := Parse(RawSchema{
		{Name: "Contact", Fields: []RawField{{Name: "name", Expr: "string!"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "contact_xyz", BuildPrefixedID(s.Model("Contact"), "xyz"))
}
