package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/adminhub/internal/session"
)

func TestFieldMode_Valid(t *testing.T) {
	assert.True(t, FieldModeEdit.Valid())
	assert.True(t, FieldModeRead.Valid())
	assert.True(t, FieldModeHidden.Valid())
	assert.False(t, FieldMode("visible").Valid())
	assert.False(t, FieldMode("").Valid())
}

func TestFieldAccess_ForOperation(t *testing.T) {
	fa := FieldAccess{Create: Allow, Read: Allow, Update: AdminOnly}

	for _, op := range []Operation{OperationCreate, OperationRead, OperationUpdate} {
		_, err := fa.ForOperation(op)
		require.NoError(t, err, "operation %s", op)
	}

	_, err := fa.ForOperation(OperationDelete)
	require.Error(t, err, "delete has no field-level check")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRule_Resolve(t *testing.T) {
	admin := session.New("admin-1", true, true)
	member := session.New("user-1", false, true)

	t.Run("grant resolves to allowed mode", func(t *testing.T) {
		rule := RuleFor(AdminOnly)

		mode, err := rule.Resolve(context.Background(), NewUpdateRequest(admin, "users", map[string]any{"id": "x"}, nil))
		require.NoError(t, err)
		assert.Equal(t, FieldModeEdit, mode)
	})

	t.Run("deny resolves to denied mode", func(t *testing.T) {
		rule := RuleFor(AdminOnly)

		mode, err := rule.Resolve(context.Background(), NewUpdateRequest(member, "users", map[string]any{"id": "x"}, nil))
		require.NoError(t, err)
		assert.Equal(t, FieldModeHidden, mode)
	})

	t.Run("denied mode override", func(t *testing.T) {
		rule := RuleFor(AdminOnly).WithDenied(FieldModeRead)

		mode, err := rule.Resolve(context.Background(), NewUpdateRequest(member, "users", map[string]any{"id": "x"}, nil))
		require.NoError(t, err)
		assert.Equal(t, FieldModeRead, mode)
	})

	t.Run("zero rule allows", func(t *testing.T) {
		var rule Rule

		mode, err := rule.Resolve(context.Background(), NewReadRequest(session.Anonymous(), "users", nil))
		require.NoError(t, err)
		assert.Equal(t, FieldModeEdit, mode)
	})

	t.Run("static rule ignores session", func(t *testing.T) {
		rule := StaticRule(FieldModeRead)

		mode, err := rule.Resolve(context.Background(), NewReadRequest(session.Anonymous(), "users", nil))
		require.NoError(t, err)
		assert.Equal(t, FieldModeRead, mode)
	})

	t.Run("predicate error resolves hidden", func(t *testing.T) {
		wantErr := errors.New("boom")
		rule := RuleFor(func(context.Context, Request) (bool, error) { return true, wantErr })

		mode, err := rule.Resolve(context.Background(), NewReadRequest(admin, "users", nil))
		require.ErrorIs(t, err, wantErr)
		assert.Equal(t, FieldModeHidden, mode, "a failed rule must not widen the view")
	})
}
