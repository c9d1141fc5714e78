// Package access implements per-operation access control for lists and
// fields, evaluated against the session carried by each request.
//
// Core concepts:
//
//   - Request: the arguments of a single check. The populated fields depend
//     on the operation, see the New*Request constructors. Sessions are plain
//     values: an absent session is Present=false, never nil.
//
//   - Predicate: one decision function returning (allowed, error). A false
//     return denies. An error return does not deny, it aborts the whole
//     operation as an evaluation failure.
//
//   - ListAccess / FieldAccess: the per-operation predicates a list or field
//     declares. A nil predicate allows.
//
//   - Rule: one predicate coupled with the view modes it resolves to, so an
//     access decision and the mode presented for the field cannot drift
//     apart.
//
//   - Evaluator: runs predicates with panic containment and decision
//     logging, and applies the configured cardinality when an operation
//     covers more than one item.
//
// Usage rules:
//
//  1. Predicates must be deterministic for anonymous sessions: derive the
//     decision from req.Session, never from ambient state.
//  2. Never swallow a predicate error into a deny. Return it and let the
//     evaluator abort the operation.
//  3. Under CardinalityPerOperation multi-item checks bind no item, so
//     predicates reading req.Item must treat an empty item as deny.
//  4. Resolve view modes through Rule instead of writing a second copy of
//     the predicate.
package access
