package access

import (
	"fmt"

	"github.com/looplj/adminhub/internal/session"
)

// Request carries the arguments of a single access check.
//
// Which fields are populated is part of the contract between the evaluator
// and predicates: create checks carry Input and never an Item, read and
// delete checks carry an Item and never Input, update checks carry both.
// FieldPath is set for field-level checks only.
type Request struct {
	Session   session.Session
	ListKey   string
	Operation Operation

	// Item is the stored item under check. Nil for create checks, and for
	// multi-item checks evaluated once per operation.
	Item map[string]any

	// Input is the incoming data of a create or update.
	Input map[string]any

	// FieldPath names the field under check, empty for list-level checks.
	FieldPath string
}

// NewCreateRequest builds the check for inserting input into the list.
func NewCreateRequest(sess session.Session, listKey string, input map[string]any) Request {
	return Request{
		Session:   sess,
		ListKey:   listKey,
		Operation: OperationCreate,
		Input:     input,
	}
}

// NewReadRequest builds the check for reading item. A nil item stands for a
// multi-item read evaluated once per operation.
func NewReadRequest(sess session.Session, listKey string, item map[string]any) Request {
	return Request{
		Session:   sess,
		ListKey:   listKey,
		Operation: OperationRead,
		Item:      item,
	}
}

// NewUpdateRequest builds the check for applying input to item.
func NewUpdateRequest(sess session.Session, listKey string, item, input map[string]any) Request {
	return Request{
		Session:   sess,
		ListKey:   listKey,
		Operation: OperationUpdate,
		Item:      item,
		Input:     input,
	}
}

// NewDeleteRequest builds the check for removing item.
func NewDeleteRequest(sess session.Session, listKey string, item map[string]any) Request {
	return Request{
		Session:   sess,
		ListKey:   listKey,
		Operation: OperationDelete,
		Item:      item,
	}
}

// ForField derives the field-level check for fieldPath from a list-level
// request.
func (r Request) ForField(fieldPath string) Request {
	r.FieldPath = fieldPath
	return r
}

// ForItem rebinds the request to another stored item.
func (r Request) ForItem(item map[string]any) Request {
	r.Item = item
	return r
}

// ItemID returns the id of the bound item, or "" when no item is bound.
func (r Request) ItemID() string {
	if r.Item == nil {
		return ""
	}

	id, _ := r.Item["id"].(string)

	return id
}

// Validate checks the request against the per-operation shape contract.
func (r Request) Validate() error {
	if r.ListKey == "" {
		return fmt.Errorf("%w: missing list key", ErrInvalidRequest)
	}

	if !r.Operation.Valid() {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, string(r.Operation))
	}

	switch r.Operation {
	case OperationCreate:
		if r.Item != nil {
			return fmt.Errorf("%w: create check must not bind an item", ErrInvalidRequest)
		}
	case OperationRead:
		if r.Input != nil {
			return fmt.Errorf("%w: read check must not carry input", ErrInvalidRequest)
		}
	case OperationDelete:
		if r.Input != nil {
			return fmt.Errorf("%w: delete check must not carry input", ErrInvalidRequest)
		}

		if r.FieldPath != "" {
			return fmt.Errorf("%w: delete has no field-level check", ErrInvalidRequest)
		}
	case OperationUpdate:
	}

	return nil
}

// String returns a short description of the check for logs and errors.
func (r Request) String() string {
	target := r.ListKey
	if r.FieldPath != "" {
		target = r.ListKey + "." + r.FieldPath
	}

	return fmt.Sprintf("%s %s by %s", r.Operation, target, r.Session.String())
}
