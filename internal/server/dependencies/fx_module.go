package dependencies

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/lists"
	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/storage"
)

var Module = fx.Module("dependencies",
	fx.Provide(log.New),
	fx.Provide(NewStore),
	fx.Provide(NewRegistry),
	fx.Provide(NewEvaluator),
)

// NewStore opens the item store. The caller owns the close, which happens on
// server shutdown.
func NewStore(cfg storage.Config) (*storage.Store, error) {
	return storage.Open(cfg)
}

// NewRegistry builds the list registry from the built-in lists plus whatever
// the config file declares. A bad declaration fails startup.
func NewRegistry(specs []schema.ListSpec) (*schema.Registry, error) {
	decls := lists.All()

	for _, spec := range specs {
		list, err := schema.FromSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid list %q: %w", spec.Key, err)
		}

		decls = append(decls, list)
	}

	return schema.NewRegistry(decls...)
}

func NewEvaluator() *access.Evaluator {
	return access.NewEvaluator(access.DefaultEvaluatorConfig())
}
