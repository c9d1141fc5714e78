package access

import "context"

// Predicate decides one access check. A false return denies the request, an
// error return aborts the operation without deciding either way.
//
// Predicates receive the session as a plain value. When nobody is signed in
// the session is present-tagged false, so session-derived predicates deny
// anonymous requests without any nil handling.
type Predicate func(ctx context.Context, req Request) (bool, error)

// Allow grants every request.
func Allow(_ context.Context, _ Request) (bool, error) {
	return true, nil
}

// Deny rejects every request.
func Deny(_ context.Context, _ Request) (bool, error) {
	return false, nil
}

// Authenticated grants signed-in sessions.
func Authenticated(_ context.Context, req Request) (bool, error) {
	return req.Session.Present, nil
}

// AdminOnly grants signed-in sessions flagged as admin.
func AdminOnly(_ context.Context, req Request) (bool, error) {
	return req.Session.Admin(), nil
}

// SelfOnly grants a signed-in session operating on its own item. Multi-item
// checks bind no item and are denied.
func SelfOnly(_ context.Context, req Request) (bool, error) {
	return req.Session.IsSelf(req.ItemID()), nil
}

// AnyOf grants when at least one predicate grants. Evaluation stops at the
// first grant, errors abort immediately.
func AnyOf(preds ...Predicate) Predicate {
	return func(ctx context.Context, req Request) (bool, error) {
		for _, pred := range preds {
			ok, err := pred(ctx, req)
			if err != nil {
				return false, err
			}

			if ok {
				return true, nil
			}
		}

		return false, nil
	}
}

// AllOf grants when every predicate grants. Evaluation stops at the first
// deny, errors abort immediately.
func AllOf(preds ...Predicate) Predicate {
	return func(ctx context.Context, req Request) (bool, error) {
		for _, pred := range preds {
			ok, err := pred(ctx, req)
			if err != nil {
				return false, err
			}

			if !ok {
				return false, nil
			}
		}

		return true, nil
	}
}

// Not inverts a predicate. Errors pass through unchanged.
func Not(pred Predicate) Predicate {
	return func(ctx context.Context, req Request) (bool, error) {
		ok, err := pred(ctx, req)
		if err != nil {
			return false, err
		}

		return !ok, nil
	}
}
