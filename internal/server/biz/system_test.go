package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/adminhub/internal/lists"
)

func TestSystemService_Status(t *testing.T) {
	svc := newUserTestServices(t)
	ctx := context.Background()

	seedUser(t, svc, "u1", "Ada", "ada@example.com", "", true, true)
	seedUser(t, svc, "u2", "Grace", "grace@example.com", "", false, true)
	require.NoError(t, svc.Store.SoftDelete(ctx, lists.UserListKey, "u2"))

	status, err := svc.System.Status(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, status.Build.Version)
	assert.NotEmpty(t, status.Build.Uptime)

	require.Len(t, status.Lists, 1)
	assert.Equal(t, lists.UserListKey, status.Lists[0].Key)
	assert.Equal(t, "User", status.Lists[0].Label)
	assert.Equal(t, 1, status.Lists[0].Live)
	assert.Equal(t, 1, status.Lists[0].Deleted)

	// Both rows were created just now; the deleted one leaves the
	// creation stats.
	assert.Equal(t, 1, status.Lists[0].CreatedToday)
	assert.Equal(t, 1, status.Lists[0].CreatedThisWeek)
	assert.Equal(t, 1, status.Lists[0].CreatedThisMonth)
}
