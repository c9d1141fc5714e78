package schema

import (
	"context"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/session"
)

// View identifies one of the three admin views a field appears in.
type View string

const (
	// ViewItem is the detail view of one stored item.
	ViewItem View = "itemView"
	// ViewCreate is the creation form.
	ViewCreate View = "createView"
	// ViewList is the tabular list of items.
	ViewList View = "listView"
)

// ViewsConfig overrides the mode rules of a field per view. A zero rule
// falls back to the mode derived from the field's access predicates, which
// keeps what a session may do and what it sees aligned without a second
// copy of the predicate.
type ViewsConfig struct {
	ItemView   access.Rule
	CreateView access.Rule
	ListView   access.Rule
}

// ResolveViewMode computes the mode the admin presents for the field in the
// given view. Unless the field overrides the view rule, the mode derives
// from the field's own access predicates: the create view is editable when
// the create predicate grants, the list view readable when the read
// predicate grants, and the item view editable when the update predicate
// grants, falling back to read-only when only the read predicate grants.
func (f Field) ResolveViewMode(ctx context.Context, view View, sess session.Session, listKey string, item map[string]any) (access.FieldMode, error) {
	switch view {
	case ViewCreate:
		req := access.NewCreateRequest(sess, listKey, nil).ForField(f.Key)
		if !f.Views.CreateView.IsZero() {
			return f.Views.CreateView.Resolve(ctx, req)
		}

		return access.RuleFor(f.Access.Create).Resolve(ctx, req)

	case ViewList:
		req := access.NewReadRequest(sess, listKey, nil).ForField(f.Key)
		if !f.Views.ListView.IsZero() {
			return f.Views.ListView.Resolve(ctx, req)
		}

		rule := access.Rule{When: f.Access.Read, Allowed: access.FieldModeRead, Denied: access.FieldModeHidden}

		return rule.Resolve(ctx, req)

	case ViewItem:
		req := access.NewUpdateRequest(sess, listKey, item, nil).ForField(f.Key)
		if !f.Views.ItemView.IsZero() {
			return f.Views.ItemView.Resolve(ctx, req)
		}

		editable := true

		if f.Access.Update != nil {
			ok, err := f.Access.Update(ctx, req)
			if err != nil {
				return access.FieldModeHidden, err
			}

			editable = ok
		}

		if editable {
			return access.FieldModeEdit, nil
		}

		readable := true

		if f.Access.Read != nil {
			readReq := access.NewReadRequest(sess, listKey, item).ForField(f.Key)

			ok, err := f.Access.Read(ctx, readReq)
			if err != nil {
				return access.FieldModeHidden, err
			}

			readable = ok
		}

		if readable {
			return access.FieldModeRead, nil
		}

		return access.FieldModeHidden, nil

	default:
		return access.FieldModeHidden, nil
	}
}
