// Package lists holds the built-in list declarations registered on startup.
// Config-declared lists are added on top of these by the server.
package lists

import (
	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/schema"
)

// UserListKey is the key of the built-in user list.
const UserListKey = "users"

// Users declares the built-in user list. It is the identity list the auth
// layer resolves sessions against, so its rules guard the account surface:
// only admins delete accounts, passwords are self-service or admin, and the
// admin and enabled flags can only be flipped by admins.
func Users() schema.List {
	return schema.NewList(UserListKey, []schema.Field{
		schema.Text("name", schema.WithRequired()),
		schema.Text("email",
			schema.WithRequired(),
			schema.WithUnique(),
		),
		schema.Password("password",
			schema.WithUpdateAccess(access.AnyOf(access.AdminOnly, access.SelfOnly)),
		),
		schema.Checkbox("isAdmin",
			schema.WithLabel("Admin"),
			schema.WithDefault(false),
			schema.WithUpdateAccess(access.AdminOnly),
		),
		schema.Checkbox("isEnabled",
			schema.WithLabel("Enabled"),
			schema.WithDefault(true),
			schema.WithUpdateAccess(access.AdminOnly),
		),
		schema.Timestamp("createdAt", schema.WithDefaultNow()),
	},
		schema.WithListLabels("User", "Users"),
		schema.WithListAccess(access.ListAccess{
			Delete: access.AdminOnly,
		}),
		schema.WithListUI(schema.ListUI{
			HideDelete:     access.Not(access.AdminOnly),
			LabelField:     "name",
			InitialColumns: []string{"name", "email", "isAdmin"},
			InitialSort:    &schema.Sort{Field: "createdAt", Direction: schema.SortDesc},
		}),
	)
}

// All returns every built-in list in registration order.
func All() []schema.List {
	return []schema.List{Users()}
}
