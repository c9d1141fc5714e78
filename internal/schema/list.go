// Package schema declares lists, their fields, and the access and
// presentation rules attached to them. Lists are built in code through the
// field constructors or loaded from config specs, then validated together in
// a Registry.
package schema

import (
	"strings"
	"unicode"

	"github.com/looplj/adminhub/internal/access"
)

// List is one declared content list.
type List struct {
	Key         string
	Label       string
	Plural      string
	Description string

	// Fields in declaration order, the id field is implicit and reserved.
	Fields []Field

	Access access.ListAccess
	UI     ListUI
}

// ListUI carries the UI-only affordances of a list. They shape what the
// admin renders and are never a substitute for access control.
type ListUI struct {
	// HideCreate hides the create affordance when the predicate grants.
	HideCreate access.Predicate
	// HideDelete hides the delete affordance when the predicate grants.
	HideDelete access.Predicate

	// LabelField names the field used as the display label of an item.
	LabelField string
	// InitialColumns are the list view columns shown before the operator
	// customizes them.
	InitialColumns []string
	// InitialSort is the default list ordering, nil for storage order.
	InitialSort *Sort
	// PageSize is the default page size of list reads.
	PageSize int
}

// Sort names a field and a direction.
type Sort struct {
	Field     string
	Direction SortDirection
}

// SortDirection is the ordering of a sorted column.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Valid checks if the direction is ASC or DESC.
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// ListOption configures NewList.
type ListOption func(*List)

// WithListAccess sets the list-level predicates.
func WithListAccess(a access.ListAccess) ListOption {
	return func(l *List) { l.Access = a }
}

// WithListUI sets the UI affordances.
func WithListUI(ui ListUI) ListOption {
	return func(l *List) { l.UI = ui }
}

// WithListLabels sets the singular and plural labels.
func WithListLabels(label, plural string) ListOption {
	return func(l *List) {
		l.Label = label
		l.Plural = plural
	}
}

// WithDescription sets the list description shown in the admin.
func WithDescription(desc string) ListOption {
	return func(l *List) { l.Description = desc }
}

// NewList builds a list from its key and ordered fields. Struct literals
// work just as well, the registry normalizes either form.
func NewList(key string, fields []Field, opts ...ListOption) List {
	l := List{Key: key, Fields: fields}

	for _, opt := range opts {
		opt(&l)
	}

	return l
}

// Field looks up a declared field by key.
func (l *List) Field(key string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Key == key {
			return f, true
		}
	}

	return Field{}, false
}

// FieldKeys returns the declared field keys in order.
func (l *List) FieldKeys() []string {
	keys := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		keys[i] = f.Key
	}

	return keys
}

// UniqueFields returns the fields flagged unique.
func (l *List) UniqueFields() []Field {
	var fields []Field

	for _, f := range l.Fields {
		if f.Unique {
			fields = append(fields, f)
		}
	}

	return fields
}

// normalize fills derivable zero values in place. List keys are plural by
// convention, so when no labels are given both labels take the titleized
// key rather than fabricating a singular.
func (l *List) normalize() {
	switch {
	case l.Label == "" && l.Plural == "":
		l.Label = titleize(l.Key)
		l.Plural = l.Label
	case l.Label == "":
		l.Label = l.Plural
	case l.Plural == "":
		l.Plural = l.Label + "s"
	}

	if l.UI.PageSize <= 0 {
		l.UI.PageSize = defaultPageSize
	}

	if l.UI.LabelField == "" {
		l.UI.LabelField = l.labelFieldDefault()
	}

	for i := range l.Fields {
		if l.Fields[i].Label == "" {
			l.Fields[i].Label = titleize(l.Fields[i].Key)
		}
	}
}

const defaultPageSize = 50

// labelFieldDefault picks "name" when declared, otherwise the first
// non-sensitive text field, otherwise the id.
func (l *List) labelFieldDefault() string {
	if _, ok := l.Field("name"); ok {
		return "name"
	}

	for _, f := range l.Fields {
		if f.Type == FieldTypeText {
			return f.Key
		}
	}

	return "id"
}

func titleize(key string) string {
	if key == "" {
		return ""
	}

	var b strings.Builder

	runes := []rune(key)
	b.WriteRune(unicode.ToUpper(runes[0]))

	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}

		b.WriteRune(r)
	}

	return b.String()
}
