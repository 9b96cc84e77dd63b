package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/gatewayd/internal/schema"
)

func customerModel(t *testing.T) *schema.ParsedModel {
	t.Helper()
	s, err := schema.Parse(schema.RawSchema{
		{Name: "Customer", Fields: []schema.RawField{
			{Name: "name", Expr: "string!"},
			{Name: "email", Expr: "email!"},
			{Name: "tier", Expr: `Free | Pro | Enterprise = "Free"`},
			{Name: "mrr", Expr: "number = 0"},
			{Name: "tags", Expr: "string[]"},
		}},
	})
	require.NoError(t, err)
	return s.Model("Customer")
}

func TestBuildSchemaShape(t *testing.T) {
	m := customerModel(t)
	js := BuildSchema(m)

	assert.Equal(t, "object", js.Type)
	// required: fields with required=true and no default, excluding the
	// primary key
	assert.Equal(t, []string{"email", "name"}, js.Required)
	// the primary key is present as an optional property
	require.Contains(t, js.Properties, "id")
	assert.Equal(t, "string", js.Properties["id"].Type)

	tier := js.Properties["tier"]
	assert.ElementsMatch(t, []any{"Free", "Pro", "Enterprise"}, tier.Enum)

	tags := js.Properties["tags"]
	assert.Equal(t, "array", tags.Type)
	require.NotNil(t, tags.Items)
	assert.Equal(t, "string", tags.Items.Type)
}

func TestBuildSchemaOmitsInverseRelations(t *testing.T) {
	s, err := schema.Parse(schema.RawSchema{
		{Name: "User", Fields: []schema.RawField{
			{Name: "name", Expr: "string!"},
			{Name: "posts", Expr: "<- Post.author[]"},
		}},
		{Name: "Post", Fields: []schema.RawField{
			{Name: "title", Expr: "string!"},
			{Name: "author", Expr: "-> User"},
		}},
	})
	require.NoError(t, err)

	js := BuildSchema(s.Model("User"))
	assert.NotContains(t, js.Properties, "posts")

	post := BuildSchema(s.Model("Post"))
	require.Contains(t, post.Properties, "author")
	assert.Equal(t, "string", post.Properties["author"].Type)
}

func TestValidateCreateHappyPath(t *testing.T) {
	m := customerModel(t)
	errs, err := Validate(m, map[string]any{
		"id":    "cust_1",
		"name":  "Acme Inc",
		"email": "billing@acme.co",
	})
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateCreateReportsAllErrors(t *testing.T) {
	m := customerModel(t)
	errs, err := Validate(m, map[string]any{
		"mrr":     "not-a-number",
		"unknown": true,
	})
	require.NoError(t, err)

	// missing name, missing email, bad mrr type, unknown field — all at once
	fields := make(map[string]bool, len(errs))
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["mrr"])
	assert.True(t, fields["unknown"])
}

func TestValidatePartialSkipsRequired(t *testing.T) {
	m := customerModel(t)
	errs, err := ValidatePartial(m, map[string]any{"mrr": float64(199)})
	require.NoError(t, err)
	assert.Empty(t, errs)

	// but a type violation still fails
	errs, err = ValidatePartial(m, map[string]any{"mrr": "lots"})
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "mrr", errs[0].Field)
}

func TestValidateEnumViolation(t *testing.T) {
	m := customerModel(t)
	errs, err := ValidatePartial(m, map[string]any{"tier": "Platinum"})
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "tier", errs[0].Field)
}
