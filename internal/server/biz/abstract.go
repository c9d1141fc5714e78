package biz

import (
	"fmt"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/storage"
)

// AbstractService carries the dependencies every service shares: the content
// store, the list registry, and the access evaluator.
type AbstractService struct {
	store     *storage.Store
	registry  *schema.Registry
	evaluator *access.Evaluator
}

func (a *AbstractService) lookupList(key string) (*schema.List, error) {
	list, ok := a.registry.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, key)
	}

	return list, nil
}
