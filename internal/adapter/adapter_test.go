package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/gatewayd/internal/gwerr"
	"github.com/emergent-company/gatewayd/internal/schema"
	"github.com/emergent-company/gatewayd/internal/store"
)

func taskModel(t *testing.T) *schema.ParsedModel {
	t.Helper()
	s, err := schema.Parse(schema.RawSchema{
		{Name: "Task", Fields: []schema.RawField{
			{Name: "title", Expr: "string!"},
			{Name: "notes", Expr: "text"},
			{Name: "done", Expr: "boolean = false"},
		}},
	})
	require.NoError(t, err)
	return s.Model("Task")
}

func TestCreateStripsSystemFields(t *testing.T) {
	a := New("$")
	s := store.NewMemoryStore()
	m := taskModel(t)
	ctx := context.Background()

	// spec §8 scenario 5: meta-prefixed input is silently discarded;
	// the server is sole authority on meta values.
	doc, err := a.Create(ctx, s, m, RequestContext{}, map[string]any{
		"id":         "t1",
		"title":      "x",
		"$version":   float64(999),
		"$deletedAt": "2025-01-01T00:00:00Z",
		"_createdAt": "1999-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	v, _ := doc["version"].AsNumber()
	assert.Equal(t, 1.0, v)
	_, hasDeleted := doc["deletedAt"]
	assert.False(t, hasDeleted)

	got, err := s.Get(ctx, m.Plural, "t1")
	require.NoError(t, err)
	created, _ := got["createdAt"].AsString()
	assert.NotEqual(t, "1999-01-01T00:00:00Z", created)
}

func TestCreateStampsTypeAndAudit(t *testing.T) {
	a := New("$")
	s := store.NewMemoryStore()
	m := taskModel(t)

	doc, err := a.Create(context.Background(), s, m, RequestContext{UserID: "user_9", RequestID: "req_1"}, map[string]any{
		"id": "t1", "title": "x",
	})
	require.NoError(t, err)

	typ, _ := doc["type"].AsString()
	assert.Equal(t, "Task", typ)
	by, _ := doc["createdBy"].AsString()
	assert.Equal(t, "user_9", by)
	ctxVal, ok := doc["context"].AsObject()
	require.True(t, ok)
	rid, _ := ctxVal["requestId"].AsString()
	assert.Equal(t, "req_1", rid)
}

func TestCreateDerivesName(t *testing.T) {
	a := New("$")
	s := store.NewMemoryStore()
	m := taskModel(t)

	doc, err := a.Create(context.Background(), s, m, RequestContext{}, map[string]any{
		"id": "t1", "title": "write the report",
	})
	require.NoError(t, err)
	name, _ := doc["name"].AsString()
	assert.Equal(t, "write the report", name)

	doc, err = a.Create(context.Background(), s, m, RequestContext{}, map[string]any{"id": "t2"})
	require.NoError(t, err)
	name, _ = doc["name"].AsString()
	assert.Equal(t, "Task", name, "falls back to the model name")
}

func TestCreateDuplicateIDConflicts(t *testing.T) {
	a := New("$")
	s := store.NewMemoryStore()
	m := taskModel(t)
	ctx := context.Background()

	_, err := a.Create(ctx, s, m, RequestContext{}, map[string]any{"id": "t1", "title": "x"})
	require.NoError(t, err)
	_, err = a.Create(ctx, s, m, RequestContext{}, map[string]any{"id": "t1", "title": "y"})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeConflict, gwerr.As(err).Code)
}

func TestUpdateWrapsAndStamps(t *testing.T) {
	a := New("$")
	s := store.NewMemoryStore()
	m := taskModel(t)
	ctx := context.Background()

	_, err := a.Create(ctx, s, m, RequestContext{}, map[string]any{"id": "t1", "title": "x"})
	require.NoError(t, err)

	doc, err := a.Update(ctx, s, m, RequestContext{UserID: "user_2"}, "t1", map[string]any{
		"done":     true,
		"_version": float64(999),
	})
	require.NoError(t, err)

	v, _ := doc["version"].AsNumber()
	assert.Equal(t, 2.0, v, "client-supplied version is discarded; server increments")
	by, _ := doc["updatedBy"].AsString()
	assert.Equal(t, "user_2", by)
	title, _ := doc["title"].AsString()
	assert.Equal(t, "x", title)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	a := New("$")
	s := store.NewMemoryStore()
	m := taskModel(t)

	_, err := a.Update(context.Background(), s, m, RequestContext{}, "ghost", map[string]any{"done": true})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeNotFound, gwerr.As(err).Code)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	a := New("$")
	s := store.NewMemoryStore()
	m := taskModel(t)
	ctx := context.Background()

	_, err := a.Create(ctx, s, m, RequestContext{}, map[string]any{"id": "t1", "title": "x"})
	require.NoError(t, err)

	require.NoError(t, a.Delete(ctx, s, m, "t1"))

	_, err = a.Get(ctx, s, m, "t1")
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeNotFound, gwerr.As(err).Code)

	err = a.Delete(ctx, s, m, "t1")
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeNotFound, gwerr.As(err).Code)
}

func TestSearchBuildsOrOverStringFields(t *testing.T) {
	a := New("$")
	s := store.NewMemoryStore()
	m := taskModel(t)
	ctx := context.Background()

	_, err := a.Create(ctx, s, m, RequestContext{}, map[string]any{"id": "t1", "title": "quarterly report"})
	require.NoError(t, err)
	_, err = a.Create(ctx, s, m, RequestContext{}, map[string]any{"id": "t2", "title": "standup", "notes": "discuss the REPORT"})
	require.NoError(t, err)
	_, err = a.Create(ctx, s, m, RequestContext{}, map[string]any{"id": "t3", "title": "lunch"})
	require.NoError(t, err)

	res, err := a.Search(ctx, s, m, "report", nil, store.FindOptions{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total, "matches title OR notes, case-insensitively")
}

func TestFormatEntityPrefixesMeta(t *testing.T) {
	a := New("$")
	doc := store.Document{
		"id":      schema.Str("t1"),
		"version": schema.Number(3),
		"title":   schema.Str("x"),
	}
	out := a.FormatEntity(doc, "Task")

	assert.Equal(t, "t1", out["$id"])
	assert.Equal(t, 3.0, out["$version"])
	assert.Equal(t, "Task", out["$type"])
	assert.Equal(t, "x", out["title"])
	_, bare := out["id"]
	assert.False(t, bare, "meta fields never appear bare on the wire")
}

func TestFormatEntityLegacyPrefix(t *testing.T) {
	a := New("_")
	out := a.FormatEntity(store.Document{"id": schema.Str("t1")}, "Task")
	assert.Equal(t, "t1", out["_id"])
	assert.Equal(t, "Task", out["_type"])
}

func TestCreateMintsIDsViaGenerator(t *testing.T) {
	a := New("$")
	sch, err := schema.Parse(schema.RawSchema{
		{Name: "Task", Fields: []schema.RawField{{Name: "title", Expr: "string!"}}},
	})
	require.NoError(t, err)
	m := sch.Model("Task")
	a.IDs = schema.NewSqidFactory(schema.NewCodec(7, 8), schema.NewTypeRegistry(sch, nil))

	s := store.NewMemoryStore()
	doc, cerr := a.Create(context.Background(), s, m, RequestContext{}, map[string]any{"title": "x"})
	require.NoError(t, cerr)

	id, _ := doc["id"].AsString()
	assert.Contains(t, id, "task_")

	// a client-supplied id still wins over the generator
	doc, cerr = a.Create(context.Background(), s, m, RequestContext{}, map[string]any{"id": "t1", "title": "y"})
	require.NoError(t, cerr)
	id, _ = doc["id"].AsString()
	assert.Equal(t, "t1", id)
}

func TestStripSystemFieldsFoldsPrefixedID(t *testing.T) {
	a := New("$")
	clean := a.StripSystemFields(map[string]any{"$id": "t9", "title": "x"})
	assert.Equal(t, "t9", clean["id"])
	assert.Equal(t, "x", clean["title"])
}
