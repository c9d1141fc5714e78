package schema

import (
	"github.com/looplj/adminhub/internal/access"
)

// FieldType identifies the value kind a field stores.
type FieldType string

const (
	// FieldTypeText stores a string with optional pattern and length bounds.
	FieldTypeText FieldType = "text"
	// FieldTypeCheckbox stores a boolean.
	FieldTypeCheckbox FieldType = "checkbox"
	// FieldTypePassword stores an opaque secret. Reads never return the
	// value, only a set marker.
	FieldTypePassword FieldType = "password"
	// FieldTypeTimestamp stores an RFC 3339 instant.
	FieldTypeTimestamp FieldType = "timestamp"
	// FieldTypeInteger stores an int64.
	FieldTypeInteger FieldType = "integer"
	// FieldTypeFloat stores a float64.
	FieldTypeFloat FieldType = "float"
)

// Valid checks if the type is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeCheckbox, FieldTypePassword, FieldTypeTimestamp, FieldTypeInteger, FieldTypeFloat:
		return true
	default:
		return false
	}
}

// Field is one declared field of a list.
type Field struct {
	Key   string
	Type  FieldType
	Label string

	// Required rejects creates that leave the field empty.
	Required bool
	// Unique rejects writes that duplicate the value of another item. The
	// check runs in the item service against the store.
	Unique bool

	// DefaultValue fills the field on create when no value is given.
	DefaultValue any
	// DefaultNow fills a timestamp field with the creation instant.
	DefaultNow bool

	// Pattern constrains text values, full-string anchored.
	Pattern   string
	MinLength int
	MaxLength int

	Access access.FieldAccess
	Views  ViewsConfig
}

// Sensitive checks if reads must redact the stored value.
func (f Field) Sensitive() bool {
	return f.Type == FieldTypePassword
}

// FieldOption configures a field constructor.
type FieldOption func(*Field)

// WithLabel sets the label shown in admin views.
func WithLabel(label string) FieldOption {
	return func(f *Field) { f.Label = label }
}

// WithRequired rejects creates that leave the field empty.
func WithRequired() FieldOption {
	return func(f *Field) { f.Required = true }
}

// WithUnique rejects writes duplicating another item's value.
func WithUnique() FieldOption {
	return func(f *Field) { f.Unique = true }
}

// WithDefault fills the field on create when no value is given.
func WithDefault(value any) FieldOption {
	return func(f *Field) { f.DefaultValue = value }
}

// WithDefaultNow fills a timestamp field with the creation instant.
func WithDefaultNow() FieldOption {
	return func(f *Field) { f.DefaultNow = true }
}

// WithPattern constrains text values to the anchored pattern.
func WithPattern(pattern string) FieldOption {
	return func(f *Field) { f.Pattern = pattern }
}

// WithMinLength sets the minimum rune count of a text value.
func WithMinLength(n int) FieldOption {
	return func(f *Field) { f.MinLength = n }
}

// WithMaxLength sets the maximum rune count of a text value.
func WithMaxLength(n int) FieldOption {
	return func(f *Field) { f.MaxLength = n }
}

// WithCreateAccess guards writing the field on create.
func WithCreateAccess(pred access.Predicate) FieldOption {
	return func(f *Field) { f.Access.Create = pred }
}

// WithReadAccess guards reading the field.
func WithReadAccess(pred access.Predicate) FieldOption {
	return func(f *Field) { f.Access.Read = pred }
}

// WithUpdateAccess guards writing the field on update.
func WithUpdateAccess(pred access.Predicate) FieldOption {
	return func(f *Field) { f.Access.Update = pred }
}

// WithItemView overrides the mode rule of the item view.
func WithItemView(rule access.Rule) FieldOption {
	return func(f *Field) { f.Views.ItemView = rule }
}

// WithCreateView overrides the mode rule of the create view.
func WithCreateView(rule access.Rule) FieldOption {
	return func(f *Field) { f.Views.CreateView = rule }
}

// WithListView overrides the mode rule of the list view.
func WithListView(rule access.Rule) FieldOption {
	return func(f *Field) { f.Views.ListView = rule }
}

// Text declares a string field.
func Text(key string, opts ...FieldOption) Field {
	return newField(key, FieldTypeText, opts)
}

// Checkbox declares a boolean field.
func Checkbox(key string, opts ...FieldOption) Field {
	return newField(key, FieldTypeCheckbox, opts)
}

// Password declares an opaque secret field. The stored value is redacted on
// read, and the item view derives its mode from the update predicate so a
// session that may not change the password does not see the field at all.
func Password(key string, opts ...FieldOption) Field {
	f := newField(key, FieldTypePassword, opts)
	f.applySensitiveViewDefaults()

	return f
}

// applySensitiveViewDefaults couples a sensitive field's item view to its
// update predicate and keeps it out of the list view.
func (f *Field) applySensitiveViewDefaults() {
	if !f.Sensitive() {
		return
	}

	if f.Views.ItemView.IsZero() {
		f.Views.ItemView = access.RuleFor(f.Access.Update)
	}

	if f.Views.ListView.IsZero() {
		f.Views.ListView = access.StaticRule(access.FieldModeHidden)
	}
}

// Timestamp declares an RFC 3339 instant field.
func Timestamp(key string, opts ...FieldOption) Field {
	return newField(key, FieldTypeTimestamp, opts)
}

// Integer declares an int64 field.
func Integer(key string, opts ...FieldOption) Field {
	return newField(key, FieldTypeInteger, opts)
}

// Float declares a float64 field.
func Float(key string, opts ...FieldOption) Field {
	return newField(key, FieldTypeFloat, opts)
}

func newField(key string, typ FieldType, opts []FieldOption) Field {
	f := Field{Key: key, Type: typ}

	for _, opt := range opts {
		opt(&f)
	}

	return f
}
