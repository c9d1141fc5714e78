package schema

import (
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/pkg/xregexp"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors extracts the field errors aggregated in err, in input order.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]FieldError, 0, len(merr.Errors))

		for _, e := range merr.Errors {
			var fe FieldError
			if errors.As(e, &fe) {
				out = append(out, fe)
			}
		}

		return out
	}

	var fe FieldError
	if errors.As(err, &fe) {
		return []FieldError{fe}
	}

	return nil
}

// ValidateInput checks and coerces input for a create or update against the
// declared fields. The returned map is a coerced copy, the given input is
// not modified. On create, defaults fill absent fields and required fields
// must be present and non-empty. On update, a nil value clears the field.
// All violations aggregate into one error.
func (l *List) ValidateInput(op access.Operation, input map[string]any) (map[string]any, error) {
	if op != access.OperationCreate && op != access.OperationUpdate {
		return nil, fmt.Errorf("schema: no input validation for operation %q", op)
	}

	var merr *multierror.Error

	out := make(map[string]any, len(input))

	for _, key := range orderedInputKeys(l, input) {
		value := input[key]

		if key == "id" {
			merr = multierror.Append(merr, FieldError{Field: key, Message: "assigned by the engine"})
			continue
		}

		field, ok := l.Field(key)
		if !ok {
			merr = multierror.Append(merr, FieldError{Field: key, Message: "unknown field"})
			continue
		}

		if value == nil {
			if field.Required {
				merr = multierror.Append(merr, FieldError{Field: key, Message: "required field cannot be cleared"})
				continue
			}

			out[key] = nil

			continue
		}

		coerced, err := coerceValue(field, value)
		if err != nil {
			merr = multierror.Append(merr, FieldError{Field: key, Message: err.Error()})
			continue
		}

		if field.Required && isEmptyValue(field, coerced) {
			merr = multierror.Append(merr, FieldError{Field: key, Message: "must not be empty"})
			continue
		}

		out[key] = coerced
	}

	if op == access.OperationCreate {
		for _, field := range l.Fields {
			if _, given := input[field.Key]; given {
				continue
			}

			switch {
			case field.DefaultNow:
				out[field.Key] = time.Now().UTC().Format(time.RFC3339Nano)
			case field.DefaultValue != nil:
				coerced, err := coerceValue(field, field.DefaultValue)
				if err != nil {
					merr = multierror.Append(merr, FieldError{Field: field.Key, Message: err.Error()})
					continue
				}

				out[field.Key] = coerced
			case field.Required:
				merr = multierror.Append(merr, FieldError{Field: field.Key, Message: "required"})
			}
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	return out, nil
}

// ValidateFilters checks and coerces equality filters for a list read.
// Filters name declared, non-sensitive fields and their values convert to
// the field's storage representation so they compare like stored values.
// The input constraints (length, pattern) do not apply, a filter may probe
// any well-typed value. All violations aggregate into one error.
func (l *List) ValidateFilters(filters map[string]any) (map[string]any, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	var merr *multierror.Error

	out := make(map[string]any, len(filters))

	for _, key := range orderedInputKeys(l, filters) {
		value := filters[key]

		if key == "id" {
			merr = multierror.Append(merr, FieldError{Field: key, Message: "load the item by id instead of filtering"})
			continue
		}

		field, ok := l.Field(key)
		if !ok {
			merr = multierror.Append(merr, FieldError{Field: key, Message: "unknown field"})
			continue
		}

		if field.Sensitive() {
			merr = multierror.Append(merr, FieldError{Field: key, Message: "cannot filter on a sensitive field"})
			continue
		}

		if value == nil {
			out[key] = nil
			continue
		}

		converted, err := convertValue(field, value)
		if err != nil {
			merr = multierror.Append(merr, FieldError{Field: key, Message: err.Error()})
			continue
		}

		out[key] = converted
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	return out, nil
}

// orderedInputKeys yields declared fields first in declaration order, then
// the unknown keys, so validation errors come out in a stable order.
func orderedInputKeys(l *List, input map[string]any) []string {
	keys := make([]string, 0, len(input))

	for _, f := range l.Fields {
		if _, ok := input[f.Key]; ok {
			keys = append(keys, f.Key)
		}
	}

	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	var unknown []string

	for k := range input {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}

	slices.Sort(unknown)

	return append(keys, unknown...)
}

// coerceValue converts value to the field's storage representation and
// enforces the field's input constraints.
func coerceValue(f Field, value any) (any, error) {
	converted, err := convertValue(f, value)
	if err != nil {
		return nil, err
	}

	if f.Type == FieldTypeText || f.Type == FieldTypePassword {
		s, _ := converted.(string)

		n := utf8.RuneCountInString(s)

		if f.MinLength > 0 && n < f.MinLength {
			return nil, fmt.Errorf("shorter than %d characters", f.MinLength)
		}

		if f.MaxLength > 0 && n > f.MaxLength {
			return nil, fmt.Errorf("longer than %d characters", f.MaxLength)
		}

		if f.Pattern != "" && !xregexp.MatchString(f.Pattern, s) {
			return nil, fmt.Errorf("must match pattern %s", f.Pattern)
		}
	}

	return converted, nil
}

// convertValue converts value to the field's storage representation.
func convertValue(f Field, value any) (any, error) {
	switch f.Type {
	case FieldTypeText, FieldTypePassword:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string")
		}

		return s, nil

	case FieldTypeCheckbox:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("expected a boolean")
		}

		return b, nil

	case FieldTypeTimestamp:
		t, err := cast.ToTimeE(value)
		if err != nil {
			return nil, fmt.Errorf("expected an RFC 3339 timestamp")
		}

		return t.UTC().Format(time.RFC3339Nano), nil

	case FieldTypeInteger:
		n, err := cast.ToInt64E(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer")
		}

		return n, nil

	case FieldTypeFloat:
		fl, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("expected a number")
		}

		return fl, nil

	default:
		return nil, fmt.Errorf("unknown field type %q", string(f.Type))
	}
}

func isEmptyValue(f Field, coerced any) bool {
	switch f.Type {
	case FieldTypeText, FieldTypePassword:
		s, _ := coerced.(string)
		return s == ""
	default:
		return false
	}
}
