package biz

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/admin"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/session"
	"github.com/looplj/adminhub/internal/storage"
)

type MetaServiceParams struct {
	fx.In

	Store     *storage.Store
	Registry  *schema.Registry
	Evaluator *access.Evaluator
}

func NewMetaService(params MetaServiceParams) *MetaService {
	return &MetaService{
		AbstractService: &AbstractService{
			store:     params.Store,
			registry:  params.Registry,
			evaluator: params.Evaluator,
		},
	}
}

// MetaService serves the admin metadata of the registered lists.
type MetaService struct {
	*AbstractService
}

// VisibleLists resolves the metadata of every list the session may read.
func (s *MetaService) VisibleLists(ctx context.Context, sess session.Session) ([]admin.ListMeta, error) {
	return admin.BuildMeta(ctx, s.evaluator, s.registry, sess)
}

// ListMeta resolves the metadata of one list.
func (s *MetaService) ListMeta(ctx context.Context, sess session.Session, listKey string) (admin.ListMeta, error) {
	list, err := s.visibleList(ctx, sess, listKey)
	if err != nil {
		return admin.ListMeta{}, err
	}

	return admin.BuildListMeta(ctx, list, sess)
}

// ItemModes resolves the per-item field view modes of one stored item.
func (s *MetaService) ItemModes(ctx context.Context, sess session.Session, listKey, id string) (map[string]access.FieldMode, error) {
	list, err := s.visibleList(ctx, sess, listKey)
	if err != nil {
		return nil, err
	}

	item, err := s.store.Get(ctx, listKey, id)
	if err != nil {
		return nil, err
	}

	doc := item.Document()

	allowed, err := s.evaluator.AllowedList(ctx, list.Access, access.NewReadRequest(sess, listKey, doc))
	if err != nil {
		return nil, err
	}

	if !allowed {
		return nil, storage.ErrNotFound
	}

	return admin.ItemModes(ctx, list, sess, doc)
}

// JSONSchema exports the declared shape of one list as a JSON Schema.
func (s *MetaService) JSONSchema(ctx context.Context, sess session.Session, listKey string) (*jsonschema.Schema, error) {
	list, err := s.visibleList(ctx, sess, listKey)
	if err != nil {
		return nil, err
	}

	return list.JSONSchema()
}

// visibleList resolves a list the session may read. Unknown and unreadable
// come back as the same error so meta requests do not leak the registered
// keys.
func (s *MetaService) visibleList(ctx context.Context, sess session.Session, listKey string) (*schema.List, error) {
	list, err := s.lookupList(listKey)
	if err != nil {
		return nil, err
	}

	allowed, err := s.evaluator.AllowedList(ctx, list.Access, access.NewReadRequest(sess, listKey, nil))
	if err != nil {
		return nil, err
	}

	if !allowed {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, listKey)
	}

	return list, nil
}
