package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/session"
)

func TestCompilePredicate_MatchesHandWrittenRules(t *testing.T) {
	compiled, err := CompilePredicate(`session.isAdmin || session.itemId == item.id`)
	require.NoError(t, err)

	handWritten := access.AnyOf(access.AdminOnly, access.SelfOnly)

	tests := []struct {
		name string
		sess session.Session
		item map[string]any
		want bool
	}{
		{"admin on another item", session.New("admin-1", true, true), map[string]any{"id": "user-2"}, true},
		{"owner on own item", session.New("user-1", false, true), map[string]any{"id": "user-1"}, true},
		{"stranger on another item", session.New("user-1", false, true), map[string]any{"id": "user-2"}, false},
		{"anonymous", session.Anonymous(), map[string]any{"id": "user-1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := access.NewUpdateRequest(tt.sess, "users", tt.item, map[string]any{"name": "x"})

			got, err := compiled(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			ref, err := handWritten(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, ref, got, "compiled rule must agree with the predicate form")
		})
	}
}

func TestCompilePredicate_RequestContext(t *testing.T) {
	compiled, err := CompilePredicate(`operation == "update" && fieldPath == "password" && listKey == "users"`)
	require.NoError(t, err)

	req := access.NewUpdateRequest(session.New("user-1", false, true), "users",
		map[string]any{"id": "user-1"}, map[string]any{"password": "s3cret"},
	).ForField("password")

	got, err := compiled(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = compiled(context.Background(), req.ForField("name"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCompilePredicate_NilItemAndInput(t *testing.T) {
	compiled, err := CompilePredicate(`session.present && item.id == "user-1"`)
	require.NoError(t, err)

	// List reads carry no item, the rule still runs.
	req := access.NewReadRequest(session.New("user-1", false, true), "users", nil)

	got, err := compiled(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCompilePredicate_RejectsBadExpressions(t *testing.T) {
	_, err := CompilePredicate(`session.isAdmin ||`)
	require.Error(t, err)

	_, err = CompilePredicate(`session.itemId`)
	require.Error(t, err, "non-boolean expressions fail at compile time")

	_, err = CompilePredicate(`session.missing`)
	require.Error(t, err, "unknown environment names fail at compile time")
}

func usersSpec() ListSpec {
	return ListSpec{
		Key: "users",
		Fields: []FieldSpec{
			{Name: "name", Type: "text", Required: true},
			{Name: "email", Type: "text", Required: true, Unique: true},
			{
				Name: "password",
				Type: "password",
				Access: FieldAccessSpec{
					Update: `session.isAdmin || session.itemId == item.id`,
				},
			},
			{
				Name:    "isAdmin",
				Type:    "checkbox",
				Default: false,
				Access:  FieldAccessSpec{Update: `session.isAdmin`},
			},
			{Name: "createdAt", Type: "timestamp", DefaultNow: true},
		},
		Access: ListAccessSpec{Delete: `session.isAdmin`},
		UI: UISpec{
			HideDelete:     `!session.isAdmin`,
			InitialColumns: []string{"name", "email", "isAdmin"},
			InitialSort:    &SortSpec{Field: "createdAt", Direction: "desc"},
		},
	}
}

func TestFromSpec(t *testing.T) {
	list, err := FromSpec(usersSpec())
	require.NoError(t, err)

	reg, err := NewRegistry(list)
	require.NoError(t, err)

	users := reg.MustGet("users")
	assert.Equal(t, "Users", users.Label)
	require.NotNil(t, users.UI.InitialSort)
	assert.Equal(t, SortDesc, users.UI.InitialSort.Direction)

	admin := session.New("admin-1", true, true)
	member := session.New("user-1", false, true)

	t.Run("list access compiles", func(t *testing.T) {
		ok, err := users.Access.Delete(context.Background(), access.NewDeleteRequest(admin, "users", map[string]any{"id": "user-2"}))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = users.Access.Delete(context.Background(), access.NewDeleteRequest(member, "users", map[string]any{"id": "user-2"}))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("field access compiles", func(t *testing.T) {
		password, ok := users.Field("password")
		require.True(t, ok)

		req := access.NewUpdateRequest(member, "users",
			map[string]any{"id": "user-1"}, map[string]any{"password": "s3cret"},
		).ForField("password")

		granted, err := password.Access.Update(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("sensitive view defaults apply", func(t *testing.T) {
		password, ok := users.Field("password")
		require.True(t, ok)

		mode, err := password.ResolveViewMode(context.Background(), ViewItem, member, "users", map[string]any{"id": "user-2"})
		require.NoError(t, err)
		assert.Equal(t, access.FieldModeHidden, mode)

		mode, err = password.ResolveViewMode(context.Background(), ViewList, admin, "users", nil)
		require.NoError(t, err)
		assert.Equal(t, access.FieldModeHidden, mode)
	})

	t.Run("hide delete affordance compiles", func(t *testing.T) {
		hide, err := users.UI.HideDelete(context.Background(), access.NewReadRequest(member, "users", nil))
		require.NoError(t, err)
		assert.True(t, hide)

		hide, err = users.UI.HideDelete(context.Background(), access.NewReadRequest(admin, "users", nil))
		require.NoError(t, err)
		assert.False(t, hide)
	})
}

func TestFromSpec_ViewRules(t *testing.T) {
	spec := ListSpec{
		Key: "docs",
		Fields: []FieldSpec{
			{
				Name: "body",
				Type: "text",
				Views: ViewsSpec{
					ItemView: RuleSpec{When: `session.isAdmin`, Denied: "read"},
					ListView: RuleSpec{Mode: "hidden"},
				},
			},
		},
	}

	list, err := FromSpec(spec)
	require.NoError(t, err)

	body := list.Fields[0]

	mode, err := body.ResolveViewMode(context.Background(), ViewItem, session.New("admin-1", true, true), "docs", map[string]any{"id": "d1"})
	require.NoError(t, err)
	assert.Equal(t, access.FieldModeEdit, mode)

	mode, err = body.ResolveViewMode(context.Background(), ViewItem, session.New("user-1", false, true), "docs", map[string]any{"id": "d1"})
	require.NoError(t, err)
	assert.Equal(t, access.FieldModeRead, mode)

	mode, err = body.ResolveViewMode(context.Background(), ViewList, session.New("admin-1", true, true), "docs", nil)
	require.NoError(t, err)
	assert.Equal(t, access.FieldModeHidden, mode)
}

func TestFromSpec_AggregatesViolations(t *testing.T) {
	spec := ListSpec{
		Key: "broken",
		Fields: []FieldSpec{
			{
				Name:   "a",
				Type:   "text",
				Access: FieldAccessSpec{Read: `session.isAdmin ||`},
				Views: ViewsSpec{
					ItemView: RuleSpec{Mode: "sideways"},
					ListView: RuleSpec{Mode: "read", When: `session.isAdmin`},
				},
			},
			{
				Name:  "b",
				Type:  "text",
				Views: ViewsSpec{CreateView: RuleSpec{Allowed: "edit"}},
			},
		},
		Access: ListAccessSpec{Update: `input.`},
	}

	_, err := FromSpec(spec)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `field "a" access.read`)
	assert.Contains(t, msg, `static mode "sideways" is not edit, read or hidden`)
	assert.Contains(t, msg, "static mode excludes when/allowed/denied")
	assert.Contains(t, msg, "rule needs a mode or a when expression")
	assert.Contains(t, msg, "access.update")
}
