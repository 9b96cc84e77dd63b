package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reparse(t *testing.T, q string) *AST {
	t.Helper()
	res, err := ParseQuery(q)
	require.NoError(t, err)
	return res.AST
}

func astEqual(t *testing.T, a, b *AST) {
	t.Helper()
	assert.Equal(t, Canonicalize(a), Canonicalize(b))
}

func TestCanonicalizeRoundTrip(t *testing.T) {
	cases := []string{
		"price.gt=25",
		"category.in=tools,misc",
		"price.between=10,50",
		"name.contains=cme",
		"category=tools&price.gt=20",
	}
	for _, q := range cases {
		original := reparse(t, q)
		canon := Canonicalize(original)
		reparsed, err := ParseQuery(canon)
		require.NoError(t, err)
		astEqual(t, original, reparsed.AST)
	}
}

func TestCanonicalizeFieldOrderIsAlphabetical(t *testing.T) {
	a := reparse(t, "zeta=1&alpha=2")
	canon := Canonicalize(a)
	assert.Equal(t, "alpha=2&zeta=1", canon)
}

func TestCanonicalizeBetweenCollapses(t *testing.T) {
	a := reparse(t, "price.gte=10&price.lte=50")
	canon := Canonicalize(a)
	assert.Equal(t, "price.between=10,50", canon)
}

func TestCanonicalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Canonicalize(&AST{}))
	assert.Equal(t, "", Canonicalize(nil))
}
