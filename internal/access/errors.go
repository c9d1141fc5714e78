package access

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied marks a request a predicate decided against.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidRequest marks a check whose shape violates the per-operation
	// contract. It is a programming error, not a denial.
	ErrInvalidRequest = errors.New("invalid access request")
)

// EvaluationError reports a predicate that failed to decide: it returned an
// error, panicked, or received a malformed request. The operation aborts
// instead of falling back to allow or deny.
type EvaluationError struct {
	ListKey   string
	FieldPath string
	Operation Operation
	Err       error
}

func (e *EvaluationError) Error() string {
	if e.FieldPath != "" {
		return fmt.Sprintf("access evaluation failed for %s %s.%s: %v", e.Operation, e.ListKey, e.FieldPath, e.Err)
	}

	return fmt.Sprintf("access evaluation failed for %s %s: %v", e.Operation, e.ListKey, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// DeniedError attaches the denied check to ErrAccessDenied so callers can
// report which operation was rejected.
type DeniedError struct {
	Request Request
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Request.String())
}

func (e *DeniedError) Unwrap() error {
	return ErrAccessDenied
}

// IsDenied checks if err is a denial rather than an evaluation failure.
func IsDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsEvaluationFailure checks if err is a failed evaluation.
func IsEvaluationFailure(err error) bool {
	var evalErr *EvaluationError
	return errors.As(err, &evalErr)
}
