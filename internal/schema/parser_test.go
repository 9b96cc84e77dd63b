package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicScalarTypes(t *testing.T) {
	raw := RawSchema{
		{Name: "Customer", Fields: []RawField{
			{Name: "name", Expr: "string!"},
			{Name: "email", Expr: "email!"},
			{Name: "tier", Expr: `Free | Pro | Enterprise = "Free"`},
			{Name: "mrr", Expr: "number = 0"},
		}},
	}

	s, err := Parse(raw)
	require.NoError(t, err)

	m := s.Model("Customer")
	require.NotNil(t, m)
	assert.Equal(t, "customer", m.Singular)
	assert.Equal(t, "customers", m.Plural)
	assert.Equal(t, "id", m.PrimaryKey)

	name := m.Field("name")
	require.NotNil(t, name)
	assert.Equal(t, TypeString, name.Type)
	assert.True(t, name.Required)

	email := m.Field("email")
	assert.Equal(t, TypeString, email.Type)
	assert.Equal(t, FormatEmail, email.Format)
	assert.True(t, email.Required)

	tier := m.Field("tier")
	assert.Equal(t, TypeString, tier.Type)
	assert.Equal(t, []string{"Free", "Pro", "Enterprise"}, tier.Enum)
	require.NotNil(t, tier.Default)
	s1, ok := tier.Default.AsString()
	require.True(t, ok)
	assert.Equal(t, "Free", s1)
	assert.False(t, tier.Required)

	mrr := m.Field("mrr")
	assert.Equal(t, TypeNumber, mrr.Type)
	require.NotNil(t, mrr.Default)
	n, ok := mrr.Default.AsNumber()
	require.True(t, ok)
	assert.Equal(t, 0.0, n)

	id := m.Field("id")
	require.NotNil(t, id)
	assert.Equal(t, TypeCUID, id.Type)
	assert.True(t, id.Required)
	assert.True(t, id.Unique)
	assert.True(t, id.Indexed)
}

func TestParseDecimalAndVector(t *testing.T) {
	raw := RawSchema{
		{Name: "Invoice", Fields: []RawField{
			{Name: "amount", Expr: "decimal(15,2)!"},
			{Name: "embedding", Expr: "vector[1536]"},
		}},
	}

	s, err := Parse(raw)
	require.NoError(t, err)
	m := s.Model("Invoice")

	amount := m.Field("amount")
	assert.Equal(t, TypeNumber, amount.Type)
	assert.Equal(t, 15, amount.Precision)
	assert.Equal(t, 2, amount.Scale)
	assert.True(t, amount.Required)

	embedding := m.Field("embedding")
	assert.Equal(t, TypeVector, embedding.Type)
	require.NotNil(t, embedding.Vector)
	assert.Equal(t, 1536, embedding.Vector.Dimensions)
	assert.True(t, embedding.Indexed)
}

func TestParseRelations(t *testing.T) {
	raw := RawSchema{
		{Name: "User", Fields: []RawField{
			{Name: "posts", Expr: "<- Post.author[]"},
		}},
		{Name: "Post", Fields: []RawField{
			{Name: "author", Expr: "-> User"},
		}},
	}

	s, err := Parse(raw)
	require.NoError(t, err)

	posts := s.Model("User").Field("posts")
	require.NotNil(t, posts.Relation)
	assert.Equal(t, RelationInverse, posts.Relation.Type)
	assert.Equal(t, "Post", posts.Relation.Target)
	assert.Equal(t, "author", posts.Relation.InverseField)
	assert.True(t, posts.Relation.Many)
	assert.False(t, posts.Required, "inverse relations are never required")

	author := s.Model("Post").Field("author")
	require.NotNil(t, author.Relation)
	assert.Equal(t, RelationForward, author.Relation.Type)
	assert.Equal(t, "User", author.Relation.Target)
	assert.True(t, author.Indexed, "forward relations are always indexed")
}

func TestParseUnresolvedRelation(t *testing.T) {
	raw := RawSchema{
		{Name: "Post", Fields: []RawField{
			{Name: "author", Expr: "-> Ghost"},
		}},
	}
	_, err := Parse(raw)
	require.Error(t, err)
	var urErr *UnresolvedRelationError
	require.ErrorAs(t, err, &urErr)
}

func TestParseInvalidIdentifier(t *testing.T) {
	raw := RawSchema{
		{Name: "users; DROP TABLE users--", Fields: []RawField{
			{Name: "name", Expr: "string"},
		}},
	}
	_, err := Parse(raw)
	require.Error(t, err)
	var idErr *InvalidIdentifierError
	require.ErrorAs(t, err, &idErr)
}

func TestParseCuidPrimaryKey(t *testing.T) {
	raw := RawSchema{
		{Name: "Widget", Fields: []RawField{
			{Name: "sku", Expr: "cuid!##"},
			{Name: "name", Expr: "string!"},
		}},
	}
	s, err := Parse(raw)
	require.NoError(t, err)
	m := s.Model("Widget")
	assert.Equal(t, "sku", m.PrimaryKey)
	// no synthesised `id` field since an alternate primary key was found
	assert.Nil(t, m.Field("id"))

	sku := m.Field("sku")
	assert.True(t, sku.Unique)
	assert.True(t, sku.Indexed)
}

func TestParseMetadata(t *testing.T) {
	raw := RawSchema{
		{Name: "Day", Fields: []RawField{
			{Name: "$name", Expr: "date"},
			{Name: "date", Expr: "date!"},
		}},
	}
	s, err := Parse(raw)
	require.NoError(t, err)
	m := s.Model("Day")
	assert.Equal(t, "date", m.NameField)
	assert.Equal(t, "days", m.Plural)
	assert.Nil(t, m.Field("$name"))
}

func TestParseModifierVariants(t *testing.T) {
	raw := RawSchema{
		{Name: "Product", Fields: []RawField{
			{Name: "sku", Expr: "string #unique"},
			{Name: "category", Expr: "string #index"},
		}},
	}
	s, err := Parse(raw)
	require.NoError(t, err)
	m := s.Model("Product")
	assert.True(t, m.Field("sku").Unique)
	assert.True(t, m.Field("sku").Indexed)
	assert.True(t, m.Field("category").Indexed)
	assert.False(t, m.Field("category").Unique)
}
