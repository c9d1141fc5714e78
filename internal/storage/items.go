package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/looplj/adminhub/internal/pkg/xmap"
)

// Item is one stored document. Data holds the declared fields as decoded by
// encoding/json, so numbers come back as float64.
type Item struct {
	ListKey   string
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document returns the item data with the engine-owned id injected.
func (it Item) Document() map[string]any {
	doc := make(map[string]any, len(it.Data)+1)
	for k, v := range it.Data {
		doc[k] = v
	}

	doc["id"] = it.ID

	return doc
}

// Order is the creation-time ordering of a list read.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// Query selects one page of a list.
type Query struct {
	ListKey string
	// Filters are equality matches on document fields.
	Filters map[string]any
	Limit   int
	// After is the encoded cursor of the previous page, empty for the first.
	After string
	Order Order
}

// Page is the result of a list read. Next is empty on the last page.
type Page struct {
	Items []Item
	Next  string
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

const itemColumns = `id, data, created_at, updated_at`

// Insert stores a new item. An empty id is assigned a fresh uuid.
func (s *Store) Insert(ctx context.Context, listKey, id string, data map[string]any) (Item, error) {
	if id == "" {
		id = uuid.NewString()
	}

	if data == nil {
		data = map[string]any{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Item{}, fmt.Errorf("encode item: %w", err)
	}

	now := s.now().UTC()
	nano := now.UnixNano()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO items (list_key, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		listKey, id, string(raw), nano, nano,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return Item{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}

		return Item{}, fmt.Errorf("insert item: %w", err)
	}

	return Item{
		ListKey:   listKey,
		ID:        id,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Restore writes an item back exactly as archived, reviving a soft-deleted
// row if one is in the way. Timestamps come from the archive, not the clock.
func (s *Store) Restore(ctx context.Context, item Item) error {
	raw, err := json.Marshal(item.Data)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO items (list_key, id, data, created_at, updated_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, NULL)
		 ON CONFLICT (list_key, id) DO UPDATE SET
			data = excluded.data,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = NULL`,
		item.ListKey, item.ID, string(raw),
		item.CreatedAt.UTC().UnixNano(), item.UpdatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("restore item: %w", err)
	}

	return nil
}

// Get loads one live item.
func (s *Store) Get(ctx context.Context, listKey, id string) (Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE list_key = ? AND id = ? AND deleted_at IS NULL`,
		listKey, id,
	)

	var (
		itemID, raw          string
		createdAt, updatedAt int64
	)

	if err := row.Scan(&itemID, &raw, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}

		return Item{}, fmt.Errorf("load item: %w", err)
	}

	return decodeItem(listKey, itemID, raw, createdAt, updatedAt)
}

// Update merges the patch into the stored document. A nil patch value clears
// the field. Patch keys are field names, never paths: the schema registry
// rejects keys that sjson would treat as nested.
func (s *Store) Update(ctx context.Context, listKey, id string, patch map[string]any) (Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Item{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op.

	var raw string

	err = tx.QueryRowContext(ctx,
		`SELECT data FROM items WHERE list_key = ? AND id = ? AND deleted_at IS NULL`,
		listKey, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}

	if err != nil {
		return Item{}, fmt.Errorf("load item: %w", err)
	}

	merged, err := mergeDocument(raw, patch)
	if err != nil {
		return Item{}, err
	}

	nano := s.now().UTC().UnixNano()

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET data = ?, updated_at = ? WHERE list_key = ? AND id = ?`,
		merged, nano, listKey, id,
	); err != nil {
		return Item{}, fmt.Errorf("update item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Item{}, fmt.Errorf("commit update: %w", err)
	}

	return s.Get(ctx, listKey, id)
}

// SoftDelete marks one live item deleted. The sweep worker purges it later.
func (s *Store) SoftDelete(ctx context.Context, listKey, id string) error {
	nano := s.now().UTC().UnixNano()

	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET deleted_at = ?, updated_at = ? WHERE list_key = ? AND id = ? AND deleted_at IS NULL`,
		nano, nano, listKey, id,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// PurgeDeleted removes soft-deleted items whose deletion is older than the
// given instant and returns how many went away.
func (s *Store) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE deleted_at IS NOT NULL AND deleted_at < ?`,
		before.UTC().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge items: %w", err)
	}

	return res.RowsAffected()
}

// List reads one page, newest first unless asked otherwise. Filters apply to
// the document before pagination, so pages stay full under filtering.
func (s *Store) List(ctx context.Context, q Query) (Page, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	order := q.Order
	if order != OrderAsc && order != OrderDesc {
		order = OrderDesc
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE list_key = ? AND deleted_at IS NULL`
	args := []any{q.ListKey}

	if q.After != "" {
		cur, err := DecodeCursor(q.After, q.ListKey)
		if err != nil {
			return Page{}, err
		}

		if order == OrderDesc {
			query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		} else {
			query += ` AND (created_at > ? OR (created_at = ? AND id > ?))`
		}

		args = append(args, cur.CreatedAt, cur.CreatedAt, cur.ID)
	}

	if order == OrderDesc {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var (
		page Page
		more bool
	)

	for rows.Next() {
		var (
			itemID, raw          string
			createdAt, updatedAt int64
		)

		if err := rows.Scan(&itemID, &raw, &createdAt, &updatedAt); err != nil {
			return Page{}, fmt.Errorf("scan item: %w", err)
		}

		if !matchesFilters(raw, q.Filters) {
			continue
		}

		if len(page.Items) == limit {
			more = true
			break
		}

		item, err := decodeItem(q.ListKey, itemID, raw, createdAt, updatedAt)
		if err != nil {
			return Page{}, err
		}

		page.Items = append(page.Items, item)
	}

	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("list items: %w", err)
	}

	if more {
		last := page.Items[len(page.Items)-1]
		page.Next = Cursor{
			ListKey:   q.ListKey,
			CreatedAt: last.CreatedAt.UnixNano(),
			ID:        last.ID,
		}.Encode()
	}

	return page, nil
}

// CountField counts live items whose field equals the value, excluding one
// id. The item service uses it to enforce unique field declarations.
func (s *Store) CountField(ctx context.Context, listKey, field string, value any, excludeID string) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM items WHERE list_key = ? AND deleted_at IS NULL`,
		listKey,
	)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close()

	count := 0

	for rows.Next() {
		var id, raw string

		if err := rows.Scan(&id, &raw); err != nil {
			return 0, fmt.Errorf("scan item: %w", err)
		}

		if id == excludeID {
			continue
		}

		if fieldEquals(gjson.Get(raw, field), value) {
			count++
		}
	}

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	return count, nil
}

// Counts reports the live and soft-deleted item counts of a list.
func (s *Store) Counts(ctx context.Context, listKey string) (live, deleted int, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE deleted_at IS NULL),
			COUNT(*) FILTER (WHERE deleted_at IS NOT NULL)
		FROM items WHERE list_key = ?`,
		listKey,
	)

	if err := row.Scan(&live, &deleted); err != nil {
		return 0, 0, fmt.Errorf("count items: %w", err)
	}

	return live, deleted, nil
}

// CountCreatedBetween counts live items of a list created inside the
// half-open interval [start, end).
func (s *Store) CountCreatedBetween(ctx context.Context, listKey string, start, end time.Time) (int, error) {
	var count int

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items
		WHERE list_key = ? AND deleted_at IS NULL AND created_at >= ? AND created_at < ?`,
		listKey, start.UTC().UnixNano(), end.UTC().UnixNano(),
	)

	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	return count, nil
}

func decodeItem(listKey, id, raw string, createdAt, updatedAt int64) (Item, error) {
	item := Item{
		ListKey:   listKey,
		ID:        id,
		CreatedAt: time.Unix(0, createdAt).UTC(),
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}

	if err := json.Unmarshal([]byte(raw), &item.Data); err != nil {
		return Item{}, fmt.Errorf("decode item %s: %w", id, err)
	}

	return item, nil
}

func mergeDocument(raw string, patch map[string]any) (string, error) {
	merged := raw

	for _, key := range xmap.SortedKeys(patch) {
		var err error

		if patch[key] == nil {
			merged, err = sjson.Delete(merged, key)
		} else {
			merged, err = sjson.Set(merged, key, patch[key])
		}

		if err != nil {
			return "", fmt.Errorf("merge field %q: %w", key, err)
		}
	}

	return merged, nil
}

func matchesFilters(raw string, filters map[string]any) bool {
	for field, want := range filters {
		if !fieldEquals(gjson.Get(raw, field), want) {
			return false
		}
	}

	return true
}

func fieldEquals(got gjson.Result, want any) bool {
	switch w := want.(type) {
	case nil:
		return !got.Exists() || got.Type == gjson.Null
	case bool:
		return got.IsBool() && got.Bool() == w
	case string:
		return got.Type == gjson.String && got.Str == w
	case int:
		return got.Type == gjson.Number && got.Num == float64(w)
	case int64:
		return got.Type == gjson.Number && got.Num == float64(w)
	case float64:
		return got.Type == gjson.Number && got.Num == w
	default:
		return got.Exists() && got.Value() == want
	}
}

func isConstraintViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}

	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}
