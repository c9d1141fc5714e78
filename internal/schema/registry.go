package schema

import (
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/looplj/adminhub/internal/pkg/xregexp"
)

// keyPattern constrains list and field keys to lowerCamel identifiers.
const keyPattern = `[a-z][a-zA-Z0-9]*`

// reservedFieldKeys are managed by the engine and cannot be declared.
var reservedFieldKeys = []string{"id"}

// Registry holds the validated lists of an installation, in declaration
// order. Construction validates every list and aggregates all violations
// into one error, so a broken config fails startup with the full picture.
type Registry struct {
	lists map[string]*List
	keys  []string
}

// NewRegistry validates and indexes the given lists.
func NewRegistry(lists ...List) (*Registry, error) {
	r := &Registry{lists: make(map[string]*List, len(lists))}

	var merr *multierror.Error

	for _, list := range lists {
		if err := validateList(&list); err != nil {
			merr = multierror.Append(merr, err)
			continue
		}

		if _, dup := r.lists[list.Key]; dup {
			merr = multierror.Append(merr, fmt.Errorf("list %q: duplicate key", list.Key))
			continue
		}

		list.normalize()

		stored := list
		r.lists[stored.Key] = &stored
		r.keys = append(r.keys, stored.Key)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	return r, nil
}

// Get looks up a list by key.
func (r *Registry) Get(key string) (*List, bool) {
	list, ok := r.lists[key]
	return list, ok
}

// MustGet looks up a list by key and panics when absent. For startup wiring
// of lists known to be registered.
func (r *Registry) MustGet(key string) *List {
	list, ok := r.lists[key]
	if !ok {
		panic(fmt.Sprintf("schema: list %q not registered", key))
	}

	return list
}

// Lists returns the lists in declaration order.
func (r *Registry) Lists() []*List {
	lists := make([]*List, len(r.keys))
	for i, key := range r.keys {
		lists[i] = r.lists[key]
	}

	return lists
}

// Keys returns the list keys in declaration order.
func (r *Registry) Keys() []string {
	return slices.Clone(r.keys)
}

// Len counts the registered lists.
func (r *Registry) Len() int {
	return len(r.keys)
}

func validateList(l *List) error {
	var merr *multierror.Error

	if l.Key == "" {
		merr = multierror.Append(merr, fmt.Errorf("list with empty key"))
		return merr.ErrorOrNil()
	}

	if !xregexp.MatchString(keyPattern, l.Key) {
		merr = multierror.Append(merr, fmt.Errorf("list %q: key must match %s", l.Key, keyPattern))
	}

	if len(l.Fields) == 0 {
		merr = multierror.Append(merr, fmt.Errorf("list %q: declares no fields", l.Key))
	}

	seen := make(map[string]bool, len(l.Fields))

	for _, f := range l.Fields {
		for _, err := range validateField(l.Key, f) {
			merr = multierror.Append(merr, err)
		}

		if seen[f.Key] {
			merr = multierror.Append(merr, fmt.Errorf("list %q: duplicate field %q", l.Key, f.Key))
		}

		seen[f.Key] = true
	}

	for _, col := range l.UI.InitialColumns {
		if col == "id" {
			continue
		}

		field, ok := l.Field(col)
		if !ok {
			merr = multierror.Append(merr, fmt.Errorf("list %q: initial column %q is not a declared field", l.Key, col))
			continue
		}

		if field.Sensitive() {
			merr = multierror.Append(merr, fmt.Errorf("list %q: initial column %q is a sensitive field", l.Key, col))
		}
	}

	if lf := l.UI.LabelField; lf != "" && lf != "id" {
		if _, ok := l.Field(lf); !ok {
			merr = multierror.Append(merr, fmt.Errorf("list %q: label field %q is not a declared field", l.Key, lf))
		}
	}

	if sort := l.UI.InitialSort; sort != nil {
		if _, ok := l.Field(sort.Field); !ok && sort.Field != "id" {
			merr = multierror.Append(merr, fmt.Errorf("list %q: initial sort field %q is not a declared field", l.Key, sort.Field))
		}

		if sort.Direction != "" && !sort.Direction.Valid() {
			merr = multierror.Append(merr, fmt.Errorf("list %q: initial sort direction %q", l.Key, sort.Direction))
		}
	}

	return merr.ErrorOrNil()
}

func validateField(listKey string, f Field) []error {
	var errs []error

	fail := func(format string, args ...any) {
		prefix := fmt.Sprintf("list %q field %q: ", listKey, f.Key)
		errs = append(errs, fmt.Errorf(prefix+format, args...))
	}

	if f.Key == "" {
		return []error{fmt.Errorf("list %q: field with empty key", listKey)}
	}

	if !xregexp.MatchString(keyPattern, f.Key) {
		fail("key must match %s", keyPattern)
	}

	if slices.Contains(reservedFieldKeys, f.Key) {
		fail("key is reserved")
	}

	if !f.Type.Valid() {
		fail("unknown type %q", string(f.Type))
		return errs
	}

	if f.Pattern != "" {
		if f.Type != FieldTypeText {
			fail("pattern applies to text fields only")
		} else if _, err := xregexp.Compile(f.Pattern); err != nil {
			fail("invalid pattern: %v", err)
		}
	}

	if f.MinLength < 0 || f.MaxLength < 0 {
		fail("negative length bound")
	}

	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		fail("min length %d exceeds max length %d", f.MinLength, f.MaxLength)
	}

	if (f.MinLength > 0 || f.MaxLength > 0) && f.Type != FieldTypeText && f.Type != FieldTypePassword {
		fail("length bounds apply to text and password fields")
	}

	if f.DefaultNow && f.Type != FieldTypeTimestamp {
		fail("defaultNow applies to timestamp fields")
	}

	if f.DefaultValue != nil {
		if f.Sensitive() {
			fail("sensitive fields cannot carry a default")
		} else if _, err := coerceValue(f, f.DefaultValue); err != nil {
			fail("default value: %v", err)
		}
	}

	return errs
}
