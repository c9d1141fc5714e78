package schema

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/looplj/adminhub/internal/access"
)

// exprEnv is the environment config-declared expressions run against. The
// session is flattened to wire names, so rules read the way the API speaks:
// `session.isAdmin || session.itemId == item.id`.
type exprEnv struct {
	Session   sessionEnv     `expr:"session"`
	Item      map[string]any `expr:"item"`
	Input     map[string]any `expr:"input"`
	ListKey   string         `expr:"listKey"`
	FieldPath string         `expr:"fieldPath"`
	Operation string         `expr:"operation"`
}

type sessionEnv struct {
	Present   bool   `expr:"present"`
	ItemID    string `expr:"itemId"`
	IsAdmin   bool   `expr:"isAdmin"`
	IsEnabled bool   `expr:"isEnabled"`
}

func newExprEnv(req access.Request) exprEnv {
	item := req.Item
	if item == nil {
		item = map[string]any{}
	}

	input := req.Input
	if input == nil {
		input = map[string]any{}
	}

	return exprEnv{
		Session: sessionEnv{
			Present:   req.Session.Present,
			ItemID:    req.Session.ItemID,
			IsAdmin:   req.Session.IsAdmin,
			IsEnabled: req.Session.IsEnabled,
		},
		Item:      item,
		Input:     input,
		ListKey:   req.ListKey,
		FieldPath: req.FieldPath,
		Operation: req.Operation.String(),
	}
}

// CompilePredicate compiles an access expression into a predicate. The
// expression is type checked against the rule environment and must yield a
// boolean. Compiled rules behave exactly like hand-written predicates: a
// runtime fault aborts the operation, it never decides.
func CompilePredicate(src string) (access.Predicate, error) {
	program, err := expr.Compile(src, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile access expression %q: %w", src, err)
	}

	return func(_ context.Context, req access.Request) (bool, error) {
		out, err := expr.Run(program, newExprEnv(req))
		if err != nil {
			return false, fmt.Errorf("access expression %q: %w", src, err)
		}

		ok, isBool := out.(bool)
		if !isBool {
			return false, fmt.Errorf("access expression %q: yielded %T, expected bool", src, out)
		}

		return ok, nil
	}, nil
}
