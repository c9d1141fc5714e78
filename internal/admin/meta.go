// Package admin materializes the presentation metadata served to admin
// clients: per-list UI affordances and per-field view modes, resolved for the
// acting session. The metadata shapes what a client renders and is never a
// substitute for the access checks the item pipeline runs.
package admin

import (
	"context"
	"fmt"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/session"
)

// FieldMeta describes one field of a list for the acting session.
type FieldMeta struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Type      string `json:"type"`
	Required  bool   `json:"required"`
	Unique    bool   `json:"unique"`
	Sensitive bool   `json:"sensitive"`
	Pattern   string `json:"pattern,omitempty"`
	MinLength int    `json:"minLength,omitempty"`
	MaxLength int    `json:"maxLength,omitempty"`

	// CreateMode, ListMode and ItemMode are the resolved view modes. ItemMode
	// is resolved without an item bound; item reads refine it per item.
	CreateMode access.FieldMode `json:"createMode"`
	ListMode   access.FieldMode `json:"listMode"`
	ItemMode   access.FieldMode `json:"itemMode"`
}

// SortMeta names the default ordering of a list view.
type SortMeta struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// ListMeta describes one list for the acting session.
type ListMeta struct {
	Key            string      `json:"key"`
	Label          string      `json:"label"`
	Plural         string      `json:"plural"`
	Description    string      `json:"description,omitempty"`
	LabelField     string      `json:"labelField"`
	InitialColumns []string    `json:"initialColumns"`
	InitialSort    *SortMeta   `json:"initialSort,omitempty"`
	PageSize       int         `json:"pageSize"`
	HideCreate     bool        `json:"hideCreate"`
	HideDelete     bool        `json:"hideDelete"`
	Fields         []FieldMeta `json:"fields"`
}

// BuildMeta resolves the metadata of every list the session may read,
// in registration order.
func BuildMeta(ctx context.Context, ev *access.Evaluator, reg *schema.Registry, sess session.Session) ([]ListMeta, error) {
	metas := make([]ListMeta, 0, reg.Len())

	for _, list := range reg.Lists() {
		visible, err := ev.AllowedList(ctx, list.Access, access.NewReadRequest(sess, list.Key, nil))
		if err != nil {
			return nil, err
		}

		if !visible {
			continue
		}

		meta, err := BuildListMeta(ctx, list, sess)
		if err != nil {
			return nil, err
		}

		metas = append(metas, meta)
	}

	return metas, nil
}

// BuildListMeta resolves the metadata of one list for the acting session.
// Item view modes are resolved without an item bound, so self-referential
// rules resolve to their stranger outcome until an item read refines them.
func BuildListMeta(ctx context.Context, list *schema.List, sess session.Session) (ListMeta, error) {
	req := access.NewReadRequest(sess, list.Key, nil)

	hideCreate, err := affordance(ctx, list.UI.HideCreate, req)
	if err != nil {
		return ListMeta{}, fmt.Errorf("list %q: hideCreate: %w", list.Key, err)
	}

	hideDelete, err := affordance(ctx, list.UI.HideDelete, req)
	if err != nil {
		return ListMeta{}, fmt.Errorf("list %q: hideDelete: %w", list.Key, err)
	}

	meta := ListMeta{
		Key:            list.Key,
		Label:          list.Label,
		Plural:         list.Plural,
		Description:    list.Description,
		LabelField:     list.UI.LabelField,
		InitialColumns: list.UI.InitialColumns,
		PageSize:       list.UI.PageSize,
		HideCreate:     hideCreate,
		HideDelete:     hideDelete,
		Fields:         make([]FieldMeta, 0, len(list.Fields)),
	}

	if list.UI.InitialSort != nil {
		meta.InitialSort = &SortMeta{
			Field:     list.UI.InitialSort.Field,
			Direction: string(list.UI.InitialSort.Direction),
		}
	}

	for _, field := range list.Fields {
		fm, err := buildFieldMeta(ctx, list.Key, field, sess)
		if err != nil {
			return ListMeta{}, err
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta, nil
}

// ItemModes resolves the item view mode of every field against a concrete
// item. Item reads and update forms use it to refine the generic list meta.
func ItemModes(ctx context.Context, list *schema.List, sess session.Session, item map[string]any) (map[string]access.FieldMode, error) {
	modes := make(map[string]access.FieldMode, len(list.Fields))

	for _, field := range list.Fields {
		mode, err := field.ResolveViewMode(ctx, schema.ViewItem, sess, list.Key, item)
		if err != nil {
			return nil, err
		}

		modes[field.Key] = mode
	}

	return modes, nil
}

func buildFieldMeta(ctx context.Context, listKey string, field schema.Field, sess session.Session) (FieldMeta, error) {
	fm := FieldMeta{
		Key:       field.Key,
		Label:     field.Label,
		Type:      string(field.Type),
		Required:  field.Required,
		Unique:    field.Unique,
		Sensitive: field.Sensitive(),
		Pattern:   field.Pattern,
		MinLength: field.MinLength,
		MaxLength: field.MaxLength,
	}

	views := []struct {
		view schema.View
		dest *access.FieldMode
	}{
		{schema.ViewCreate, &fm.CreateMode},
		{schema.ViewList, &fm.ListMode},
		{schema.ViewItem, &fm.ItemMode},
	}

	for _, v := range views {
		mode, err := field.ResolveViewMode(ctx, v.view, sess, listKey, nil)
		if err != nil {
			return FieldMeta{}, err
		}

		*v.dest = mode
	}

	return fm, nil
}

// affordance evaluates a UI predicate. A nil predicate never hides, a panic
// is contained like any other rule fault.
func affordance(ctx context.Context, pred access.Predicate, req access.Request) (hide bool, err error) {
	if pred == nil {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			hide = false
			err = fmt.Errorf("ui predicate panic: %v", r)
		}
	}()

	return pred(ctx, req)
}
