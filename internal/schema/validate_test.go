package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/adminhub/internal/access"
)

func articlesList(t *testing.T) *List {
	t.Helper()

	reg, err := NewRegistry(List{
		Key: "articles",
		Fields: []Field{
			Text("title", WithRequired(), WithMinLength(3), WithMaxLength(20)),
			Text("slug", WithPattern(`[a-z0-9-]+`)),
			Checkbox("published", WithDefault(false)),
			Integer("views"),
			Float("score"),
			Timestamp("publishedAt"),
			Timestamp("createdAt", WithDefaultNow()),
			Password("token"),
		},
	})
	require.NoError(t, err)

	return reg.MustGet("articles")
}

func TestValidateInput_Create(t *testing.T) {
	list := articlesList(t)

	out, err := list.ValidateInput(access.OperationCreate, map[string]any{
		"title":       "Hello World",
		"slug":        "hello-world",
		"views":       float64(3),
		"score":       "4.5",
		"publishedAt": "2026-08-01T10:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello World", out["title"])
	assert.Equal(t, "hello-world", out["slug"])
	assert.Equal(t, int64(3), out["views"], "JSON numbers coerce to int64")
	assert.Equal(t, 4.5, out["score"])
	assert.Equal(t, false, out["published"], "defaults fill absent fields")

	created, ok := out["createdAt"].(string)
	require.True(t, ok, "defaultNow fills the creation instant")

	_, perr := time.Parse(time.RFC3339Nano, created)
	assert.NoError(t, perr)

	assert.Equal(t, "2026-08-01T10:00:00Z", out["publishedAt"])
}

func TestValidateInput_CreateViolations(t *testing.T) {
	list := articlesList(t)

	_, err := list.ValidateInput(access.OperationCreate, map[string]any{
		"id":        "custom",
		"slug":      "Hello World!",
		"views":     "a lot",
		"published": "maybe",
		"headline":  "x",
	})
	require.Error(t, err)

	fields := map[string]string{}
	for _, fe := range FieldErrors(err) {
		fields[fe.Field] = fe.Message
	}

	assert.Contains(t, fields["id"], "assigned by the engine")
	assert.Contains(t, fields["slug"], "must match pattern")
	assert.Contains(t, fields["views"], "expected an integer")
	assert.Contains(t, fields["published"], "expected a boolean")
	assert.Contains(t, fields["headline"], "unknown field")
	assert.Contains(t, fields["title"], "required")
}

func TestValidateInput_RequiredNotEmpty(t *testing.T) {
	list := articlesList(t)

	_, err := list.ValidateInput(access.OperationCreate, map[string]any{"title": ""})
	require.Error(t, err)

	fes := FieldErrors(err)
	require.Len(t, fes, 1)
	assert.Equal(t, "title", fes[0].Field)

	_, err = list.ValidateInput(access.OperationCreate, map[string]any{"title": "ab"})
	require.Error(t, err, "length bounds apply")

	_, err = list.ValidateInput(access.OperationCreate, map[string]any{"title": nil})
	require.Error(t, err, "required fields cannot be nil")
}

func TestValidateInput_Update(t *testing.T) {
	list := articlesList(t)

	out, err := list.ValidateInput(access.OperationUpdate, map[string]any{
		"slug":        nil,
		"views":       7,
		"publishedAt": time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	val, present := out["slug"]
	require.True(t, present, "nil keeps the key to clear the field")
	assert.Nil(t, val)

	assert.Equal(t, int64(7), out["views"])
	assert.Equal(t, "2026-08-23T12:00:00Z", out["publishedAt"])

	_, hasTitle := out["title"]
	assert.False(t, hasTitle, "updates never fill defaults")

	_, hasCreated := out["createdAt"]
	assert.False(t, hasCreated)
}

func TestValidateInput_NoReadValidation(t *testing.T) {
	list := articlesList(t)

	_, err := list.ValidateInput(access.OperationRead, map[string]any{})
	require.Error(t, err)

	_, err = list.ValidateInput(access.OperationDelete, map[string]any{})
	require.Error(t, err)
}

func TestValidateInput_DoesNotMutateInput(t *testing.T) {
	list := articlesList(t)
	input := map[string]any{"title": "Immutable"}

	out, err := list.ValidateInput(access.OperationCreate, input)
	require.NoError(t, err)

	assert.NotContains(t, input, "published")
	assert.Contains(t, out, "published")
}

func TestValidateFilters(t *testing.T) {
	list := articlesList(t)

	out, err := list.ValidateFilters(map[string]any{
		"title":     "ab",
		"published": "true",
		"views":     float64(3),
		"slug":      nil,
	})
	require.NoError(t, err)

	assert.Equal(t, "ab", out["title"], "input length bounds do not apply to filters")
	assert.Equal(t, true, out["published"])
	assert.Equal(t, int64(3), out["views"])

	val, present := out["slug"]
	require.True(t, present, "nil probes for an unset field")
	assert.Nil(t, val)

	out, err = list.ValidateFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestValidateFilters_Violations(t *testing.T) {
	list := articlesList(t)

	_, err := list.ValidateFilters(map[string]any{
		"id":      "a1",
		"token":   "hunter2",
		"ghost":   true,
		"views":   "many",
		"title":   7,
	})
	require.Error(t, err)

	fes := FieldErrors(err)
	require.Len(t, fes, 5)

	byField := make(map[string]string, len(fes))
	for _, fe := range fes {
		byField[fe.Field] = fe.Message
	}

	assert.Contains(t, byField["id"], "load the item by id")
	assert.Contains(t, byField["token"], "sensitive")
	assert.Equal(t, "unknown field", byField["ghost"])
	assert.Equal(t, "expected an integer", byField["views"])
	assert.Equal(t, "expected a string", byField["title"])
}
