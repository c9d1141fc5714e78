package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/session"
)

func metaFixture(t *testing.T) (*access.Evaluator, *schema.Registry) {
	t.Helper()

	users := schema.NewList("users", []schema.Field{
		schema.Text("name", schema.WithRequired()),
		schema.Text("email", schema.WithRequired(), schema.WithUnique()),
		schema.Password("password",
			schema.WithUpdateAccess(access.AnyOf(access.AdminOnly, access.SelfOnly)),
		),
		schema.Checkbox("isAdmin", schema.WithUpdateAccess(access.AdminOnly)),
	},
		schema.WithListAccess(access.ListAccess{Delete: access.AdminOnly}),
		schema.WithListUI(schema.ListUI{
			HideDelete:     access.Not(access.AdminOnly),
			InitialColumns: []string{"name", "email", "isAdmin"},
		}),
	)

	audit := schema.NewList("auditEntries", []schema.Field{
		schema.Text("action"),
	}, schema.WithListAccess(access.ListAccess{Read: access.AdminOnly}))

	reg, err := schema.NewRegistry(users, audit)
	require.NoError(t, err)

	return access.NewEvaluator(access.DefaultEvaluatorConfig()), reg
}

func fieldMeta(t *testing.T, meta ListMeta, key string) FieldMeta {
	t.Helper()

	for _, fm := range meta.Fields {
		if fm.Key == key {
			return fm
		}
	}

	t.Fatalf("field %q not in meta", key)

	return FieldMeta{}
}

func TestBuildMeta_VisibilityFollowsReadAccess(t *testing.T) {
	ev, reg := metaFixture(t)

	metas, err := BuildMeta(context.Background(), ev, reg, session.Anonymous())
	require.NoError(t, err)
	require.Len(t, metas, 1, "the admin-only list is invisible to anonymous sessions")
	assert.Equal(t, "users", metas[0].Key)

	metas, err = BuildMeta(context.Background(), ev, reg, session.New("admin-1", true, true))
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestBuildListMeta_AnonymousSession(t *testing.T) {
	ev, reg := metaFixture(t)

	metas, err := BuildMeta(context.Background(), ev, reg, session.Anonymous())
	require.NoError(t, err)

	users := metas[0]
	assert.True(t, users.HideDelete)
	assert.False(t, users.HideCreate)
	assert.Equal(t, []string{"name", "email", "isAdmin"}, users.InitialColumns)

	password := fieldMeta(t, users, "password")
	assert.True(t, password.Sensitive)
	assert.Equal(t, access.FieldModeHidden, password.ItemMode)
	assert.Equal(t, access.FieldModeHidden, password.ListMode)

	isAdmin := fieldMeta(t, users, "isAdmin")
	assert.Equal(t, access.FieldModeRead, isAdmin.ItemMode)
	assert.Equal(t, access.FieldModeRead, isAdmin.ListMode)

	name := fieldMeta(t, users, "name")
	assert.Equal(t, access.FieldModeEdit, name.CreateMode)
	assert.Equal(t, access.FieldModeEdit, name.ItemMode)
	assert.True(t, name.Required)
}

func TestBuildListMeta_AdminSession(t *testing.T) {
	ev, reg := metaFixture(t)

	metas, err := BuildMeta(context.Background(), ev, reg, session.New("admin-1", true, true))
	require.NoError(t, err)

	users := metas[0]
	assert.False(t, users.HideDelete)

	assert.Equal(t, access.FieldModeEdit, fieldMeta(t, users, "isAdmin").ItemMode)
	assert.Equal(t, access.FieldModeEdit, fieldMeta(t, users, "password").ItemMode)
	assert.Equal(t, access.FieldModeHidden, fieldMeta(t, users, "password").ListMode)
}

func TestItemModes_RefinesSelfRules(t *testing.T) {
	_, reg := metaFixture(t)
	list := reg.MustGet("users")
	member := session.New("u1", false, true)

	// Generic meta resolves the self rule without an item, so the password
	// stays hidden until a concrete item is bound.
	meta, err := BuildListMeta(context.Background(), list, member)
	require.NoError(t, err)
	assert.Equal(t, access.FieldModeHidden, fieldMeta(t, meta, "password").ItemMode)

	modes, err := ItemModes(context.Background(), list, member, map[string]any{"id": "u1"})
	require.NoError(t, err)
	assert.Equal(t, access.FieldModeEdit, modes["password"])
	assert.Equal(t, access.FieldModeRead, modes["isAdmin"])

	modes, err = ItemModes(context.Background(), list, member, map[string]any{"id": "u2"})
	require.NoError(t, err)
	assert.Equal(t, access.FieldModeHidden, modes["password"])
}
