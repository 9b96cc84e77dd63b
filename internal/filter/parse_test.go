package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuerySymbolicOperators(t *testing.T) {
	res, err := ParseQuery("price%3E%3D25")
	require.NoError(t, err)
	require.NotNil(t, res.AST)
	require.Len(t, res.AST.And, 1)
	leaf := res.AST.And[0].Leaf
	require.NotNil(t, leaf)
	assert.Equal(t, "price", leaf.Field)
	assert.Equal(t, OpGte, leaf.Op)
	n, _ := leaf.Value.AsNumber()
	assert.Equal(t, 25.0, n)
}

func TestParseQuerySymbolicForms(t *testing.T) {
	// the whole expression embedded in the key (no "=" in the pair)
	res, err := ParseQuery("amount%3E10000")
	require.NoError(t, err)
	leaf := res.AST.And[0].Leaf
	assert.Equal(t, "amount", leaf.Field)
	assert.Equal(t, OpGt, leaf.Op)
	n, _ := leaf.Value.AsNumber()
	assert.Equal(t, 10000.0, n)

	// the "=" consumed as the pair separator, punctuation trailing the key
	res, err = ParseQuery("tier%21=Free")
	require.NoError(t, err)
	leaf = res.AST.And[0].Leaf
	assert.Equal(t, "tier", leaf.Field)
	assert.Equal(t, OpNe, leaf.Op)

	res, err = ParseQuery("price%3E=25")
	require.NoError(t, err)
	leaf = res.AST.And[0].Leaf
	assert.Equal(t, OpGte, leaf.Op, "a trailing > with a separate value means the caller wrote >=")

	res, err = ParseQuery("name%7E=acme")
	require.NoError(t, err)
	leaf = res.AST.And[0].Leaf
	assert.Equal(t, OpRegex, leaf.Op)
}

func TestParseQueryDotSuffix(t *testing.T) {
	res, err := ParseQuery("amount.gt=10000")
	require.NoError(t, err)
	leaf := res.AST.And[0].Leaf
	assert.Equal(t, "amount", leaf.Field)
	assert.Equal(t, OpGt, leaf.Op)
}

func TestParseQueryBracketForm(t *testing.T) {
	res, err := ParseQuery("price%5B%24gt%5D=25&category%5B%24in%5D=tools%2Cmisc")
	require.NoError(t, err)
	require.Len(t, res.AST.And, 2)

	var gotGt, gotIn bool
	for _, child := range res.AST.And {
		l := child.Leaf
		require.NotNil(t, l)
		switch l.Field {
		case "price":
			assert.Equal(t, OpGt, l.Op)
			gotGt = true
		case "category":
			assert.Equal(t, OpIn, l.Op)
			items, ok := l.Value.AsList()
			require.True(t, ok)
			require.Len(t, items, 2)
			gotIn = true
		}
	}
	assert.True(t, gotGt)
	assert.True(t, gotIn)
}

func TestParseQueryBareEqAndImplicitIn(t *testing.T) {
	res, err := ParseQuery("category=tools&sku=1,2,3")
	require.NoError(t, err)
	require.Len(t, res.AST.And, 2)
	for _, child := range res.AST.And {
		l := child.Leaf
		switch l.Field {
		case "category":
			assert.Equal(t, OpEq, l.Op)
		case "sku":
			assert.Equal(t, OpIn, l.Op)
			items, _ := l.Value.AsList()
			assert.Len(t, items, 3)
		}
	}
}

func TestParseQueryBetween(t *testing.T) {
	res, err := ParseQuery("price.between=10,50")
	require.NoError(t, err)
	require.Len(t, res.AST.And, 2)

	var gotLo, gotHi bool
	for _, child := range res.AST.And {
		l := child.Leaf
		n, _ := l.Value.AsNumber()
		if l.Op == OpGte && n == 10 {
			gotLo = true
		}
		if l.Op == OpLte && n == 50 {
			gotHi = true
		}
	}
	assert.True(t, gotLo)
	assert.True(t, gotHi)
}

func TestParseQueryContainsStartsEnds(t *testing.T) {
	res, err := ParseQuery("name.contains=cme")
	require.NoError(t, err)
	pattern, _ := res.AST.And[0].Leaf.Value.AsString()
	assert.Equal(t, "(?i)cme", pattern)

	res, err = ParseQuery("name.starts=Ac")
	require.NoError(t, err)
	pattern, _ = res.AST.And[0].Leaf.Value.AsString()
	assert.Equal(t, "^Ac", pattern)

	res, err = ParseQuery("name.ends=me")
	require.NoError(t, err)
	pattern, _ = res.AST.And[0].Leaf.Value.AsString()
	assert.Equal(t, "me$", pattern)
}

func TestParseQueryReservedParams(t *testing.T) {
	res, err := ParseQuery("limit=10&offset=5&fields=name,email&sort=-mrr&category=tools")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "email"}, res.Fields)
	assert.Equal(t, "-mrr", res.SortRaw)
	require.Len(t, res.AST.And, 1)
	assert.Equal(t, "category", res.AST.And[0].Leaf.Field)
}

func TestParseQueryEmpty(t *testing.T) {
	res, err := ParseQuery("")
	require.NoError(t, err)
	assert.True(t, res.AST.IsEmpty())
}
