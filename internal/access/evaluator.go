package access

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/looplj/adminhub/internal/log"
)

// Cardinality controls how often a list-level predicate runs when an
// operation covers more than one item.
type Cardinality string

const (
	// CardinalityPerOperation runs the predicate once per operation.
	// Multi-item checks bind no item, so predicates reading req.Item must
	// treat an empty item as deny.
	CardinalityPerOperation Cardinality = "per_operation"
	// CardinalityPerItem runs the predicate once per targeted item. Reads
	// drop denied items from the result, mutations reject the whole batch on
	// the first denial.
	CardinalityPerItem Cardinality = "per_item"
)

// Valid checks if the cardinality is one of the two known modes.
func (c Cardinality) Valid() bool {
	return c == CardinalityPerOperation || c == CardinalityPerItem
}

// EvaluatorConfig configures the evaluator.
type EvaluatorConfig struct {
	// Cardinality applies to multi-item list-level checks.
	Cardinality Cardinality `conf:"cardinality" yaml:"cardinality" json:"cardinality"`
	// Workers bounds the concurrency of per-item read checks.
	Workers int `conf:"workers" yaml:"workers" json:"workers"`
}

// DefaultEvaluatorConfig returns the default evaluator config.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		Cardinality: CardinalityPerOperation,
		Workers:     8,
	}
}

// Evaluator runs list and field predicates with panic containment and
// decision logging.
type Evaluator struct {
	cardinality Cardinality
	workers     int
}

// NewEvaluator builds an evaluator from the given config. Invalid settings
// fall back to the defaults.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	if !cfg.Cardinality.Valid() {
		cfg.Cardinality = CardinalityPerOperation
	}

	if cfg.Workers <= 0 {
		cfg.Workers = DefaultEvaluatorConfig().Workers
	}

	return &Evaluator{
		cardinality: cfg.Cardinality,
		workers:     cfg.Workers,
	}
}

// Cardinality returns the configured multi-item cardinality.
func (e *Evaluator) Cardinality() Cardinality {
	return e.cardinality
}

// AllowedList evaluates the list-level predicate for the request.
func (e *Evaluator) AllowedList(ctx context.Context, list ListAccess, req Request) (bool, error) {
	return e.evaluate(ctx, list.ForOperation(req.Operation), req)
}

// CheckList is AllowedList folded into an error: a denial maps to a
// DeniedError wrapping ErrAccessDenied.
func (e *Evaluator) CheckList(ctx context.Context, list ListAccess, req Request) error {
	ok, err := e.AllowedList(ctx, list, req)
	if err != nil {
		return err
	}

	if !ok {
		return &DeniedError{Request: req}
	}

	return nil
}

// AllowedField evaluates the field-level predicate for req.FieldPath.
func (e *Evaluator) AllowedField(ctx context.Context, field FieldAccess, req Request) (bool, error) {
	if req.FieldPath == "" {
		return false, e.failure(req, fmt.Errorf("%w: field check without a field path", ErrInvalidRequest))
	}

	pred, err := field.ForOperation(req.Operation)
	if err != nil {
		return false, e.failure(req, err)
	}

	return e.evaluate(ctx, pred, req)
}

// CheckField is AllowedField folded into an error.
func (e *Evaluator) CheckField(ctx context.Context, field FieldAccess, req Request) error {
	ok, err := e.AllowedField(ctx, field, req)
	if err != nil {
		return err
	}

	if !ok {
		return &DeniedError{Request: req}
	}

	return nil
}

// FilterItems applies the list-level read predicate across items. Under
// CardinalityPerOperation the predicate runs once with no item bound and a
// denial empties the result. Under CardinalityPerItem each item is checked
// and denied items are dropped, preserving order.
func (e *Evaluator) FilterItems(ctx context.Context, list ListAccess, req Request, items []map[string]any) ([]map[string]any, error) {
	if req.Operation != OperationRead {
		return nil, e.failure(req, fmt.Errorf("%w: FilterItems covers reads only, got %q", ErrInvalidRequest, string(req.Operation)))
	}

	pred := list.ForOperation(OperationRead)

	if e.cardinality == CardinalityPerOperation {
		ok, err := e.evaluate(ctx, pred, req.ForItem(nil))
		if err != nil {
			return nil, err
		}

		if !ok {
			return []map[string]any{}, nil
		}

		return items, nil
	}

	allowed := make([]bool, len(items))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)

	for i, item := range items {
		group.Go(func() error {
			ok, err := e.evaluate(groupCtx, pred, req.ForItem(item))
			if err != nil {
				return err
			}

			allowed[i] = ok

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	filtered := make([]map[string]any, 0, len(items))

	for i, item := range items {
		if allowed[i] {
			filtered = append(filtered, item)
		}
	}

	return filtered, nil
}

// CheckItems applies a list-level mutation predicate across the targeted
// items. Under CardinalityPerOperation the predicate runs once with no item
// bound. Under CardinalityPerItem every item must be granted, the first
// denial rejects the whole batch.
func (e *Evaluator) CheckItems(ctx context.Context, list ListAccess, req Request, items []map[string]any) error {
	if req.Operation != OperationUpdate && req.Operation != OperationDelete {
		return e.failure(req, fmt.Errorf("%w: CheckItems covers update and delete, got %q", ErrInvalidRequest, string(req.Operation)))
	}

	pred := list.ForOperation(req.Operation)

	if e.cardinality == CardinalityPerOperation {
		bulkReq := req.ForItem(nil)

		ok, err := e.evaluate(ctx, pred, bulkReq)
		if err != nil {
			return err
		}

		if !ok {
			return &DeniedError{Request: bulkReq}
		}

		return nil
	}

	for _, item := range items {
		itemReq := req.ForItem(item)

		ok, err := e.evaluate(ctx, pred, itemReq)
		if err != nil {
			return err
		}

		if !ok {
			return &DeniedError{Request: itemReq}
		}
	}

	return nil
}

// evaluate runs one predicate under the evaluation contract: malformed
// requests and predicate errors abort, panics are contained and abort, a nil
// predicate allows.
func (e *Evaluator) evaluate(ctx context.Context, pred Predicate, req Request) (allowed bool, err error) {
	if verr := req.Validate(); verr != nil {
		return false, e.failure(req, verr)
	}

	if pred == nil {
		return true, nil
	}

	defer func() {
		if r := recover(); r != nil {
			allowed = false
			err = e.failure(req, fmt.Errorf("predicate panic: %v", r))
		}
	}()

	ok, perr := pred(ctx, req)
	if perr != nil {
		return false, e.failure(req, perr)
	}

	if log.DebugEnabled(ctx) {
		target := req.ListKey
		if req.FieldPath != "" {
			target = req.ListKey + "." + req.FieldPath
		}

		log.Debug(ctx, "access: decision",
			log.String("principal", req.Session.String()),
			log.String("target", target),
			log.String("operation", req.Operation.String()),
			log.String("decision", lo.Ternary(ok, "allow", "deny")),
		)
	}

	return ok, nil
}

func (e *Evaluator) failure(req Request, err error) *EvaluationError {
	return &EvaluationError{
		ListKey:   req.ListKey,
		FieldPath: req.FieldPath,
		Operation: req.Operation,
		Err:       err,
	}
}
