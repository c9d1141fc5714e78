package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/lists"
	"github.com/looplj/adminhub/internal/pkg/xcache"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/storage"
)

const testSecret = "test-secret"

type testServices struct {
	Store  *storage.Store
	Auth   *AuthService
	Items  *ItemService
	Meta   *MetaService
	System *SystemService
}

func newTestServices(t *testing.T, decls []schema.List, evCfg access.EvaluatorConfig) *testServices {
	t.Helper()

	store, err := storage.Open(storage.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg, err := schema.NewRegistry(decls...)
	require.NoError(t, err)

	ev := access.NewEvaluator(evCfg)

	auth, err := NewAuthService(AuthServiceParams{
		Config:      AuthConfig{Secret: testSecret, TokenTTL: time.Hour},
		CacheConfig: xcache.Config{Mode: xcache.ModeMemory},
		Store:       store,
		Registry:    reg,
		Evaluator:   ev,
	})
	require.NoError(t, err)
	t.Cleanup(auth.Close)

	items := NewItemService(ItemServiceParams{
		Store:       store,
		Registry:    reg,
		Evaluator:   ev,
		AuthService: auth,
	})

	meta := NewMetaService(MetaServiceParams{
		Store:     store,
		Registry:  reg,
		Evaluator: ev,
	})

	system := NewSystemService(SystemServiceParams{
		Store:     store,
		Registry:  reg,
		Evaluator: ev,
	})

	return &testServices{Store: store, Auth: auth, Items: items, Meta: meta, System: system}
}

func newUserTestServices(t *testing.T) *testServices {
	t.Helper()
	return newTestServices(t, lists.All(), access.DefaultEvaluatorConfig())
}

// seedUser inserts a user item directly into the store, bypassing the gates.
// The password is stored hashed when given.
func seedUser(t *testing.T, svc *testServices, id, name, email, password string, isAdmin, isEnabled bool) storage.Item {
	t.Helper()

	data := map[string]any{
		"name":      name,
		"email":     email,
		"isAdmin":   isAdmin,
		"isEnabled": isEnabled,
		"createdAt": time.Now().UTC().Format(time.RFC3339Nano),
	}

	if password != "" {
		hashed, err := HashPassword(password)
		require.NoError(t, err)

		data["password"] = hashed
	}

	item, err := svc.Store.Insert(context.Background(), lists.UserListKey, id, data)
	require.NoError(t, err)

	return item
}

// adminOnlyList is a fixture list no one but admins can touch.
func adminOnlyList() schema.List {
	return schema.NewList("auditEntries", []schema.Field{
		schema.Text("action", schema.WithRequired()),
	}, schema.WithListAccess(access.ListAccess{
		Create: access.AdminOnly,
		Read:   access.AdminOnly,
		Update: access.AdminOnly,
		Delete: access.AdminOnly,
	}))
}
