package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/adminhub/internal/access"
)

func postsList() List {
	return List{
		Key: "posts",
		Fields: []Field{
			Text("title", WithRequired(), WithMaxLength(120)),
			Text("slug", WithUnique(), WithPattern(`[a-z0-9-]+`)),
			Checkbox("published", WithDefault(false)),
			Timestamp("publishedAt"),
		},
		Access: access.ListAccess{Delete: access.AdminOnly},
		UI:     ListUI{InitialColumns: []string{"title", "published"}},
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(postsList())
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())

	list, ok := reg.Get("posts")
	require.True(t, ok)
	assert.Equal(t, "Posts", list.Label)
	assert.Equal(t, "Posts", list.Plural)
	assert.Equal(t, "title", list.UI.LabelField, "first text field becomes the label field")
	assert.Equal(t, defaultPageSize, list.UI.PageSize)
	assert.Equal(t, "Published At", mustField(t, list, "publishedAt").Label)

	assert.Equal(t, []string{"posts"}, reg.Keys())
}

func TestNewRegistry_ExplicitLabels(t *testing.T) {
	list := postsList()
	list.Label = "Article"

	reg, err := NewRegistry(list)
	require.NoError(t, err)

	got := reg.MustGet("posts")
	assert.Equal(t, "Article", got.Label)
	assert.Equal(t, "Articles", got.Plural)
}

func TestNewRegistry_AggregatesViolations(t *testing.T) {
	broken := List{
		Key: "Posts",
		Fields: []Field{
			Text("id"),
			Text("title", WithPattern(`[unclosed`)),
			{Key: "title", Type: FieldType("enum")},
			Text("body", WithMinLength(10), WithMaxLength(5)),
		},
		UI: ListUI{
			InitialColumns: []string{"missing"},
			LabelField:     "nope",
			InitialSort:    &Sort{Field: "title", Direction: SortDirection("UPWARD")},
		},
	}

	_, err := NewRegistry(broken)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "key must match")
	assert.Contains(t, msg, "reserved")
	assert.Contains(t, msg, "invalid pattern")
	assert.Contains(t, msg, "duplicate field")
	assert.Contains(t, msg, "unknown type")
	assert.Contains(t, msg, "min length 10 exceeds max length 5")
	assert.Contains(t, msg, `initial column "missing"`)
	assert.Contains(t, msg, `label field "nope"`)
	assert.Contains(t, msg, `initial sort direction`)
}

func TestNewRegistry_DuplicateListKey(t *testing.T) {
	_, err := NewRegistry(postsList(), postsList())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestNewRegistry_RejectsSensitiveColumns(t *testing.T) {
	list := List{
		Key: "accounts",
		Fields: []Field{
			Text("name"),
			Password("secret"),
		},
		UI: ListUI{InitialColumns: []string{"name", "secret"}},
	}

	_, err := NewRegistry(list)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensitive field")
}

func TestNewRegistry_DefaultValueChecked(t *testing.T) {
	list := List{
		Key:    "posts",
		Fields: []Field{Checkbox("published", WithDefault("maybe"))},
	}

	_, err := NewRegistry(list)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default value")
}

func TestRegistry_MustGet(t *testing.T) {
	reg, err := NewRegistry(postsList())
	require.NoError(t, err)

	assert.NotPanics(t, func() { reg.MustGet("posts") })
	assert.Panics(t, func() { reg.MustGet("pages") })
}

func mustField(t *testing.T, l *List, key string) Field {
	t.Helper()

	f, ok := l.Field(key)
	require.True(t, ok, "field %s", key)

	return f
}
