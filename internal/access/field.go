package access

import (
	"context"
	"fmt"
)

// FieldMode controls how a field is presented in an admin view.
type FieldMode string

const (
	// FieldModeEdit shows the field with an editable input.
	FieldModeEdit FieldMode = "edit"
	// FieldModeRead shows the stored value without an input.
	FieldModeRead FieldMode = "read"
	// FieldModeHidden omits the field from the view entirely.
	FieldModeHidden FieldMode = "hidden"
)

// Valid checks if the mode is one of the three known modes.
func (m FieldMode) Valid() bool {
	switch m {
	case FieldModeEdit, FieldModeRead, FieldModeHidden:
		return true
	default:
		return false
	}
}

// String returns the wire name of the mode.
func (m FieldMode) String() string {
	return string(m)
}

// FieldAccess holds the field-level predicates of a field. Delete is absent
// on purpose, removing an item is decided at the list level.
// A nil predicate allows the operation.
type FieldAccess struct {
	Create Predicate
	Read   Predicate
	Update Predicate
}

// ForOperation returns the predicate guarding op at the field level.
func (a FieldAccess) ForOperation(op Operation) (Predicate, error) {
	switch op {
	case OperationCreate:
		return a.Create, nil
	case OperationRead:
		return a.Read, nil
	case OperationUpdate:
		return a.Update, nil
	default:
		return nil, fmt.Errorf("%w: no field-level check for operation %q", ErrInvalidRequest, string(op))
	}
}

// Rule couples one predicate with the view modes it resolves to. Declaring
// the decision once keeps what a session may do and what the view shows for
// the field from drifting apart.
//
// The zero rule resolves to FieldModeEdit unconditionally.
type Rule struct {
	// When decides the rule. Nil grants.
	When Predicate
	// Allowed is the mode presented when When grants. Defaults to
	// FieldModeEdit.
	Allowed FieldMode
	// Denied is the mode presented when When denies. Defaults to
	// FieldModeHidden.
	Denied FieldMode
}

// IsZero checks if the rule was left unset.
func (r Rule) IsZero() bool {
	return r.When == nil && r.Allowed == "" && r.Denied == ""
}

// RuleFor builds the common rule: edit when pred grants, hidden when it
// denies.
func RuleFor(pred Predicate) Rule {
	return Rule{When: pred, Allowed: FieldModeEdit, Denied: FieldModeHidden}
}

// StaticRule presents a fixed mode regardless of the session.
func StaticRule(mode FieldMode) Rule {
	return Rule{Allowed: mode, Denied: mode}
}

// WithDenied overrides the mode presented on deny.
func (r Rule) WithDenied(mode FieldMode) Rule {
	r.Denied = mode
	return r
}

// WithAllowed overrides the mode presented on grant.
func (r Rule) WithAllowed(mode FieldMode) Rule {
	r.Allowed = mode
	return r
}

// Resolve evaluates the rule for the request and returns the mode to
// present. Predicate errors resolve to FieldModeHidden alongside the error,
// so a failed rule never widens what the view shows.
func (r Rule) Resolve(ctx context.Context, req Request) (FieldMode, error) {
	allowed := r.Allowed
	if allowed == "" {
		allowed = FieldModeEdit
	}

	denied := r.Denied
	if denied == "" {
		denied = FieldModeHidden
	}

	if r.When == nil {
		return allowed, nil
	}

	ok, err := r.When(ctx, req)
	if err != nil {
		return FieldModeHidden, err
	}

	if !ok {
		return denied, nil
	}

	return allowed, nil
}
