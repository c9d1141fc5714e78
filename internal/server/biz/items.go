package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/access"
	"github.com/looplj/adminhub/internal/lists"
	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/pkg/xcontext"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/session"
	"github.com/looplj/adminhub/internal/storage"
)

type ItemServiceParams struct {
	fx.In

	Store       *storage.Store
	Registry    *schema.Registry
	Evaluator   *access.Evaluator
	AuthService *AuthService
}

func NewItemService(params ItemServiceParams) *ItemService {
	return &ItemService{
		AbstractService: &AbstractService{
			store:     params.Store,
			registry:  params.Registry,
			evaluator: params.Evaluator,
		},
		AuthService: params.AuthService,
	}
}

// ItemService runs gated CRUD over list content. Every operation walks the
// same pipeline: list-level gate, field-level gates on the input keys, input
// validation, then the store write and a read-redacted response.
type ItemService struct {
	*AbstractService

	AuthService *AuthService
}

// CreateItem inserts input as a new item of the list.
func (s *ItemService) CreateItem(ctx context.Context, sess session.Session, listKey string, input map[string]any) (map[string]any, error) {
	list, err := s.lookupList(listKey)
	if err != nil {
		return nil, err
	}

	req := access.NewCreateRequest(sess, listKey, input)

	if err := s.evaluator.CheckList(ctx, list.Access, req); err != nil {
		return nil, err
	}

	if err := s.checkInputFields(ctx, list, req); err != nil {
		return nil, err
	}

	values, err := list.ValidateInput(access.OperationCreate, input)
	if err != nil {
		return nil, err
	}

	if err := s.checkUniqueFields(ctx, list, values, ""); err != nil {
		return nil, err
	}

	if err := hashSensitiveFields(list, values); err != nil {
		return nil, err
	}

	item, err := s.store.Insert(ctx, listKey, "", values)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "item created",
		log.String("list", listKey),
		log.String("id", item.ID),
		log.String("principal", sess.String()),
	)

	return s.redactItem(ctx, list, sess, item)
}

// GetItem loads one item when the session may read it. A denied read is
// indistinguishable from a missing item.
func (s *ItemService) GetItem(ctx context.Context, sess session.Session, listKey, id string) (map[string]any, error) {
	list, err := s.lookupList(listKey)
	if err != nil {
		return nil, err
	}

	item, err := s.store.Get(ctx, listKey, id)
	if err != nil {
		return nil, err
	}

	doc := item.Document()
	req := access.NewReadRequest(sess, listKey, doc)

	allowed, err := s.evaluator.AllowedList(ctx, list.Access, req)
	if err != nil {
		return nil, err
	}

	if !allowed {
		return nil, storage.ErrNotFound
	}

	return s.redactFields(ctx, list, req, doc)
}

// ListQuery selects one page of a list read. Pages order by creation time.
type ListQuery struct {
	ListKey string
	// Filters are equality matches on declared, non-sensitive fields.
	Filters map[string]any
	Limit   int
	// After is the next cursor of the previous page, empty for the first.
	After string
	// Order is ASC or DESC, empty follows the list's initial sort.
	Order storage.Order
}

// ItemPage is one page of redacted items. Next is empty on the last page.
type ItemPage struct {
	Items []map[string]any `json:"items"`
	Next  string           `json:"next,omitempty"`
}

// ListItems reads one page of the list. The list-level read gate follows the
// configured cardinality: per operation it runs once with no item bound, per
// item it drops denied items from the page.
func (s *ItemService) ListItems(ctx context.Context, sess session.Session, q ListQuery) (ItemPage, error) {
	list, err := s.lookupList(q.ListKey)
	if err != nil {
		return ItemPage{}, err
	}

	filters, err := list.ValidateFilters(q.Filters)
	if err != nil {
		return ItemPage{}, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = list.UI.PageSize
	}

	order := q.Order
	if order == "" {
		order = storage.OrderAsc
		if sort := list.UI.InitialSort; sort != nil && sort.Direction == schema.SortDesc {
			order = storage.OrderDesc
		}
	}

	page, err := s.store.List(ctx, storage.Query{
		ListKey: q.ListKey,
		Filters: filters,
		Limit:   limit,
		After:   q.After,
		Order:   order,
	})
	if err != nil {
		return ItemPage{}, err
	}

	docs := make([]map[string]any, len(page.Items))
	for i, item := range page.Items {
		docs[i] = item.Document()
	}

	req := access.NewReadRequest(sess, q.ListKey, nil)

	visible, err := s.evaluator.FilterItems(ctx, list.Access, req, docs)
	if err != nil {
		return ItemPage{}, err
	}

	out := ItemPage{Items: make([]map[string]any, 0, len(visible))}

	for _, doc := range visible {
		redacted, err := s.redactFields(ctx, list, req.ForItem(doc), doc)
		if err != nil {
			return ItemPage{}, err
		}

		out.Items = append(out.Items, redacted)
	}

	// The next cursor comes from the store page before access filtering, so
	// a page thinned by per-item denials still advances.
	out.Next = page.Next

	return out, nil
}

// UpdateItem applies input to one item under the update gates. The field
// gates see the stored item, so self-conditioned rules hold.
func (s *ItemService) UpdateItem(ctx context.Context, sess session.Session, listKey, id string, input map[string]any) (map[string]any, error) {
	list, err := s.lookupList(listKey)
	if err != nil {
		return nil, err
	}

	item, err := s.store.Get(ctx, listKey, id)
	if err != nil {
		return nil, err
	}

	req := access.NewUpdateRequest(sess, listKey, item.Document(), input)

	if err := s.evaluator.CheckList(ctx, list.Access, req); err != nil {
		return nil, err
	}

	if err := s.checkInputFields(ctx, list, req); err != nil {
		return nil, err
	}

	values, err := list.ValidateInput(access.OperationUpdate, input)
	if err != nil {
		return nil, err
	}

	if err := s.checkUniqueFields(ctx, list, values, id); err != nil {
		return nil, err
	}

	if err := hashSensitiveFields(list, values); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, listKey, id, values)
	if err != nil {
		return nil, err
	}

	s.invalidateUserSession(ctx, listKey, id)

	log.Info(ctx, "item updated",
		log.String("list", listKey),
		log.String("id", id),
		log.String("principal", sess.String()),
	)

	return s.redactItem(ctx, list, sess, updated)
}

// DeleteItem soft-deletes one item under the delete gate and returns its
// last readable document.
func (s *ItemService) DeleteItem(ctx context.Context, sess session.Session, listKey, id string) (map[string]any, error) {
	list, err := s.lookupList(listKey)
	if err != nil {
		return nil, err
	}

	item, err := s.store.Get(ctx, listKey, id)
	if err != nil {
		return nil, err
	}

	req := access.NewDeleteRequest(sess, listKey, item.Document())

	if err := s.evaluator.CheckList(ctx, list.Access, req); err != nil {
		return nil, err
	}

	if err := s.store.SoftDelete(ctx, listKey, id); err != nil {
		return nil, err
	}

	s.invalidateUserSession(ctx, listKey, id)

	log.Info(ctx, "item deleted",
		log.String("list", listKey),
		log.String("id", id),
		log.String("principal", sess.String()),
	)

	return s.redactItem(ctx, list, sess, item)
}

// BulkUpdate names one item and the patch to apply to it.
type BulkUpdate struct {
	ID    string         `json:"id"`
	Input map[string]any `json:"input"`
}

// BulkUpdateResult reports the outcome for one entry of a bulk update. Item
// is the redacted document on success, Err the per-entry failure.
type BulkUpdateResult struct {
	ID   string
	Item map[string]any
	Err  error
}

// BulkUpdateItems applies per-item patches under one bulk gate. The
// list-level predicate runs per the configured cardinality: once with no
// item bound, or once per target. A list-level denial or any predicate fault
// rejects the whole batch before anything is written. Field gate denials,
// validation failures and store errors stay per entry, the clean entries
// still apply.
func (s *ItemService) BulkUpdateItems(ctx context.Context, sess session.Session, listKey string, updates []BulkUpdate) ([]BulkUpdateResult, error) {
	list, err := s.lookupList(listKey)
	if err != nil {
		return nil, err
	}

	results := make([]BulkUpdateResult, len(updates))
	docs := make([]map[string]any, len(updates))

	for i, upd := range updates {
		results[i].ID = upd.ID

		item, err := s.store.Get(ctx, listKey, upd.ID)
		if err != nil {
			results[i].Err = err
			continue
		}

		docs[i] = item.Document()
	}

	if err := s.checkBulkUpdateGate(ctx, list, sess, updates, docs); err != nil {
		return nil, err
	}

	// Check phase. Every gate and validation runs before the first write, a
	// predicate fault must not leave a half-applied batch.
	values := make([]map[string]any, len(updates))

	for i, upd := range updates {
		if results[i].Err != nil {
			continue
		}

		req := access.NewUpdateRequest(sess, listKey, docs[i], upd.Input)

		if err := s.checkInputFields(ctx, list, req); err != nil {
			if !access.IsDenied(err) {
				return nil, err
			}

			results[i].Err = err

			continue
		}

		vals, err := list.ValidateInput(access.OperationUpdate, upd.Input)
		if err != nil {
			results[i].Err = err
			continue
		}

		if err := s.checkUniqueFields(ctx, list, vals, upd.ID); err != nil {
			if len(schema.FieldErrors(err)) == 0 {
				return nil, err
			}

			results[i].Err = err

			continue
		}

		values[i] = vals
	}

	// Apply phase.
	for i, upd := range updates {
		if results[i].Err != nil || values[i] == nil {
			continue
		}

		if err := hashSensitiveFields(list, values[i]); err != nil {
			results[i].Err = err
			continue
		}

		updated, err := s.store.Update(ctx, listKey, upd.ID, values[i])
		if err != nil {
			results[i].Err = err
			continue
		}

		s.invalidateUserSession(ctx, listKey, upd.ID)

		redacted, err := s.redactItem(ctx, list, sess, updated)
		if err != nil {
			results[i].Err = err
			continue
		}

		results[i].Item = redacted
	}

	log.Info(ctx, "items bulk updated",
		log.String("list", listKey),
		log.Int("count", len(updates)),
		log.String("principal", sess.String()),
	)

	return results, nil
}

// checkBulkUpdateGate runs the list-level update gate for the batch. The
// per-operation mode binds neither item nor input, the batch is
// heterogeneous; predicates reading either must treat nil as deny.
func (s *ItemService) checkBulkUpdateGate(ctx context.Context, list *schema.List, sess session.Session, updates []BulkUpdate, docs []map[string]any) error {
	if s.evaluator.Cardinality() == access.CardinalityPerItem {
		for i, upd := range updates {
			if docs[i] == nil {
				continue
			}

			req := access.NewUpdateRequest(sess, list.Key, docs[i], upd.Input)

			if err := s.evaluator.CheckList(ctx, list.Access, req); err != nil {
				return err
			}
		}

		return nil
	}

	return s.evaluator.CheckList(ctx, list.Access, access.NewUpdateRequest(sess, list.Key, nil, nil))
}

// checkInputFields runs the field-level gate of req's operation for every
// declared field present in the input. The first denial rejects the write.
// Unknown keys are left to input validation.
func (s *ItemService) checkInputFields(ctx context.Context, list *schema.List, req access.Request) error {
	for _, field := range list.Fields {
		if _, ok := req.Input[field.Key]; !ok {
			continue
		}

		if err := s.evaluator.CheckField(ctx, field.Access, req.ForField(field.Key)); err != nil {
			return err
		}
	}

	return nil
}

// checkUniqueFields rejects values that duplicate another live item. The
// check queries the store, nothing enforces it at the storage level, so two
// racing writes can still slip through.
func (s *ItemService) checkUniqueFields(ctx context.Context, list *schema.List, values map[string]any, excludeID string) error {
	var merr *multierror.Error

	for _, field := range list.UniqueFields() {
		value, ok := values[field.Key]
		if !ok || value == nil {
			continue
		}

		count, err := s.store.CountField(ctx, list.Key, field.Key, value, excludeID)
		if err != nil {
			return fmt.Errorf("check unique %q: %w", field.Key, err)
		}

		if count > 0 {
			merr = multierror.Append(merr, schema.FieldError{Field: field.Key, Message: "already in use"})
		}
	}

	return merr.ErrorOrNil()
}

// hashSensitiveFields replaces password values with their bcrypt hash.
// Cleared fields pass through as nil.
func hashSensitiveFields(list *schema.List, values map[string]any) error {
	for _, field := range list.Fields {
		if !field.Sensitive() {
			continue
		}

		value, ok := values[field.Key]
		if !ok || value == nil {
			continue
		}

		plain, ok := value.(string)
		if !ok {
			return fmt.Errorf("hash field %q: unexpected value type %T", field.Key, value)
		}

		hashed, err := HashPassword(plain)
		if err != nil {
			return fmt.Errorf("hash field %q: %w", field.Key, err)
		}

		values[field.Key] = hashed
	}

	return nil
}

// invalidateUserSession drops the auth cache entry when a write touched the
// users list. The write already landed, so the drop runs on a detached
// context and survives a canceled request.
func (s *ItemService) invalidateUserSession(ctx context.Context, listKey, id string) {
	if listKey != lists.UserListKey {
		return
	}

	ctx, cancel := xcontext.DetachWithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.AuthService.InvalidateUser(ctx, id)
}

// redactItem builds the externally visible document of item for sess. A
// session that cannot read the list back gets the id alone.
func (s *ItemService) redactItem(ctx context.Context, list *schema.List, sess session.Session, item storage.Item) (map[string]any, error) {
	doc := item.Document()
	req := access.NewReadRequest(sess, list.Key, doc)

	allowed, err := s.evaluator.AllowedList(ctx, list.Access, req)
	if err != nil {
		return nil, err
	}

	if !allowed {
		return map[string]any{"id": item.ID}, nil
	}

	return s.redactFields(ctx, list, req, doc)
}

// redactFields filters doc down to the declared fields the session may read.
// Sensitive values never leave the service, reads carry a set marker instead.
func (s *ItemService) redactFields(ctx context.Context, list *schema.List, req access.Request, doc map[string]any) (map[string]any, error) {
	out := map[string]any{"id": doc["id"]}

	for _, field := range list.Fields {
		allowed, err := s.evaluator.AllowedField(ctx, field.Access, req.ForField(field.Key))
		if err != nil {
			return nil, err
		}

		if !allowed {
			continue
		}

		value, ok := doc[field.Key]

		if field.Sensitive() {
			out[field.Key] = ok && value != nil && value != ""
			continue
		}

		if !ok {
			continue
		}

		out[field.Key] = value
	}

	return out, nil
}
