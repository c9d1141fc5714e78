package access

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/adminhub/internal/session"
)

func perOperationEvaluator() *Evaluator {
	return NewEvaluator(EvaluatorConfig{Cardinality: CardinalityPerOperation, Workers: 4})
}

func perItemEvaluator() *Evaluator {
	return NewEvaluator(EvaluatorConfig{Cardinality: CardinalityPerItem, Workers: 4})
}

func TestNewEvaluator_Defaults(t *testing.T) {
	ev := NewEvaluator(EvaluatorConfig{})
	assert.Equal(t, CardinalityPerOperation, ev.Cardinality())

	ev = NewEvaluator(EvaluatorConfig{Cardinality: Cardinality("per_request"), Workers: -1})
	assert.Equal(t, CardinalityPerOperation, ev.Cardinality())
	assert.Equal(t, DefaultEvaluatorConfig().Workers, ev.workers)
}

func TestEvaluator_NilPredicateAllows(t *testing.T) {
	ev := perOperationEvaluator()

	ok, err := ev.AllowedList(context.Background(), ListAccess{}, NewReadRequest(session.Anonymous(), "users", nil))
	require.NoError(t, err)
	assert.True(t, ok, "a list without a predicate leaves the operation open")
}

func TestEvaluator_CheckListDenial(t *testing.T) {
	ev := perOperationEvaluator()
	list := ListAccess{Delete: AdminOnly}

	req := NewDeleteRequest(session.New("user-1", false, true), "users", map[string]any{"id": "user-2"})

	err := ev.CheckList(context.Background(), list, req)
	require.Error(t, err)
	assert.True(t, IsDenied(err))
	assert.False(t, IsEvaluationFailure(err))

	var denied *DeniedError

	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "users", denied.Request.ListKey)
	assert.Equal(t, OperationDelete, denied.Request.Operation)
}

func TestEvaluator_PredicateErrorAborts(t *testing.T) {
	ev := perOperationEvaluator()
	wantErr := errors.New("directory unavailable")
	list := ListAccess{Read: func(context.Context, Request) (bool, error) { return true, wantErr }}

	ok, err := ev.AllowedList(context.Background(), list, NewReadRequest(session.Anonymous(), "users", nil))
	assert.False(t, ok, "an erroring predicate must not grant")
	require.Error(t, err)
	assert.True(t, IsEvaluationFailure(err))
	assert.False(t, IsDenied(err), "an evaluation failure is not a denial")
	assert.ErrorIs(t, err, wantErr)
}

func TestEvaluator_PanicContained(t *testing.T) {
	ev := perOperationEvaluator()
	list := ListAccess{Update: func(context.Context, Request) (bool, error) { panic("nil map write") }}

	req := NewUpdateRequest(session.New("admin-1", true, true), "users", map[string]any{"id": "x"}, map[string]any{"name": "y"})

	ok, err := ev.AllowedList(context.Background(), list, req)
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, IsEvaluationFailure(err))
	assert.Contains(t, err.Error(), "panic")
}

func TestEvaluator_ShapeViolationAborts(t *testing.T) {
	ev := perOperationEvaluator()

	req := Request{
		Session:   session.Anonymous(),
		ListKey:   "users",
		Operation: OperationCreate,
		Item:      map[string]any{"id": "x"},
	}

	_, err := ev.AllowedList(context.Background(), ListAccess{}, req)
	require.Error(t, err)
	assert.True(t, IsEvaluationFailure(err))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEvaluator_AllowedField(t *testing.T) {
	ev := perOperationEvaluator()
	field := FieldAccess{Update: AdminOnly}

	admin := session.New("admin-1", true, true)
	member := session.New("user-1", false, true)
	item := map[string]any{"id": "user-1"}

	ok, err := ev.AllowedField(context.Background(), field, NewUpdateRequest(admin, "users", item, nil).ForField("isAdmin"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.AllowedField(context.Background(), field, NewUpdateRequest(member, "users", item, nil).ForField("isAdmin"))
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("missing field path", func(t *testing.T) {
		_, err := ev.AllowedField(context.Background(), field, NewUpdateRequest(admin, "users", item, nil))
		require.Error(t, err)
		assert.True(t, IsEvaluationFailure(err))
	})

	t.Run("delete has no field check", func(t *testing.T) {
		req := NewDeleteRequest(admin, "users", item)
		req.FieldPath = "isAdmin"

		_, err := ev.AllowedField(context.Background(), field, req)
		require.Error(t, err)
		assert.True(t, IsEvaluationFailure(err))
	})
}

func TestEvaluator_FilterItems_PerOperation(t *testing.T) {
	ev := perOperationEvaluator()
	items := []map[string]any{
		{"id": "user-1"},
		{"id": "user-2"},
	}

	t.Run("grant keeps all items", func(t *testing.T) {
		var sawItem atomic.Bool

		list := ListAccess{Read: func(_ context.Context, req Request) (bool, error) {
			if req.Item != nil {
				sawItem.Store(true)
			}

			return true, nil
		}}

		got, err := ev.FilterItems(context.Background(), list, NewReadRequest(session.Anonymous(), "users", nil), items)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.False(t, sawItem.Load(), "per operation checks must not bind an item")
	})

	t.Run("deny empties the result", func(t *testing.T) {
		list := ListAccess{Read: Authenticated}

		got, err := ev.FilterItems(context.Background(), list, NewReadRequest(session.Anonymous(), "users", nil), items)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects mutations", func(t *testing.T) {
		_, err := ev.FilterItems(context.Background(), ListAccess{}, NewUpdateRequest(session.Anonymous(), "users", nil, nil), items)
		require.Error(t, err)
		assert.True(t, IsEvaluationFailure(err))
	})
}

func TestEvaluator_FilterItems_PerItem(t *testing.T) {
	ev := perItemEvaluator()
	member := session.New("user-2", false, true)

	items := []map[string]any{
		{"id": "user-1"},
		{"id": "user-2"},
		{"id": "user-3"},
		{"id": "user-2", "shadow": true},
	}

	list := ListAccess{Read: AnyOf(AdminOnly, SelfOnly)}

	got, err := ev.FilterItems(context.Background(), list, NewReadRequest(member, "users", nil), items)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "user-2", got[0]["id"])
	assert.Equal(t, true, got[1]["shadow"], "filtering must preserve item order")

	t.Run("error aborts the whole read", func(t *testing.T) {
		wantErr := errors.New("boom")
		failing := ListAccess{Read: func(_ context.Context, req Request) (bool, error) {
			if req.ItemID() == "user-3" {
				return false, wantErr
			}

			return true, nil
		}}

		_, err := ev.FilterItems(context.Background(), failing, NewReadRequest(member, "users", nil), items)
		require.Error(t, err)
		assert.True(t, IsEvaluationFailure(err))
	})
}

func TestEvaluator_CheckItems_PerOperation(t *testing.T) {
	ev := perOperationEvaluator()
	admin := session.New("admin-1", true, true)

	items := []map[string]any{{"id": "user-1"}, {"id": "user-2"}}

	var calls atomic.Int32

	list := ListAccess{Update: func(_ context.Context, req Request) (bool, error) {
		calls.Add(1)

		return req.Session.Admin(), nil
	}}

	err := ev.CheckItems(context.Background(), list, NewUpdateRequest(admin, "users", nil, map[string]any{"isEnabled": false}), items)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "per operation runs the predicate once for the batch")

	err = ev.CheckItems(context.Background(), list, NewUpdateRequest(session.Anonymous(), "users", nil, map[string]any{"isEnabled": false}), items)
	require.Error(t, err)
	assert.True(t, IsDenied(err))
}

func TestEvaluator_CheckItems_PerItem(t *testing.T) {
	ev := perItemEvaluator()
	member := session.New("user-1", false, true)

	items := []map[string]any{{"id": "user-1"}, {"id": "user-9"}}
	list := ListAccess{Update: AnyOf(AdminOnly, SelfOnly)}

	err := ev.CheckItems(context.Background(), list, NewUpdateRequest(member, "users", nil, map[string]any{"name": "x"}), items)
	require.Error(t, err, "one denied item rejects the whole batch")
	assert.True(t, IsDenied(err))

	var denied *DeniedError

	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "user-9", denied.Request.ItemID())

	err = ev.CheckItems(context.Background(), list, NewUpdateRequest(member, "users", nil, map[string]any{"name": "x"}), items[:1])
	require.NoError(t, err)

	t.Run("rejects create and read", func(t *testing.T) {
		err := ev.CheckItems(context.Background(), list, NewReadRequest(member, "users", nil), items)
		require.Error(t, err)
		assert.True(t, IsEvaluationFailure(err))
	})
}

func TestEvaluator_AnonymousDeterministicDeny(t *testing.T) {
	ev := perOperationEvaluator()

	list := ListAccess{
		Create: Authenticated,
		Read:   Authenticated,
		Update: AnyOf(AdminOnly, SelfOnly),
		Delete: AdminOnly,
	}

	anonymous := session.Anonymous()
	item := map[string]any{"id": "user-1"}

	reqs := []Request{
		NewCreateRequest(anonymous, "users", map[string]any{"name": "x"}),
		NewReadRequest(anonymous, "users", item),
		NewUpdateRequest(anonymous, "users", item, map[string]any{"name": "x"}),
		NewDeleteRequest(anonymous, "users", item),
	}

	for _, req := range reqs {
		ok, err := ev.AllowedList(context.Background(), list, req)
		require.NoError(t, err, "operation %s", req.Operation)
		assert.False(t, ok, "anonymous %s must be denied", req.Operation)
	}
}
