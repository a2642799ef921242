package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "medicart/internal/domain/user"
	"medicart/internal/persistence/memory"
	"medicart/internal/store"
)

func setup(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(context.Background(), memory.New())
	require.NoError(t, err)
	return NewService(st)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	require.NoError(t, svc.Register(ctx, "alice", "hunter22", "12 Main St"))

	assert.ErrorIs(t, svc.Register(ctx, "alice", "another1", "somewhere"), domain.ErrDuplicateName)
	assert.ErrorIs(t, svc.Register(ctx, "bob", "short", "somewhere"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Register(ctx, "", "longenough", "somewhere"), domain.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)
	require.NoError(t, svc.Register(ctx, "alice", "hunter22", "12 Main St"))

	u, err := svc.Authenticate(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.Admin)

	_, err = svc.Authenticate(ctx, "alice", "HUNTER22")
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "password comparison is case-sensitive")

	_, err = svc.Authenticate(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminIsProvisioned(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	u, err := svc.Authenticate(ctx, domain.AdminUsername, "admin123")
	require.NoError(t, err)
	assert.True(t, u.Admin)
	assert.True(t, svc.IsAdmin(ctx, domain.AdminUsername))
	assert.False(t, svc.IsAdmin(ctx, "alice"))
}
