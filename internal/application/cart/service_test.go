package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domcart "medicart/internal/domain/cart"
	"medicart/internal/domain/catalog"
	"medicart/internal/persistence/memory"
	"medicart/internal/store"
)

func setup(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(context.Background(), memory.New())
	require.NoError(t, err)
	return NewService(st)
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	require.NoError(t, svc.AddItem(ctx, "alice", "Paracetamol", 5))
	require.NoError(t, svc.AddItem(ctx, "alice", "Paracetamol", 3))

	contents, err := svc.Contents(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 8, contents.Lines["Paracetamol"])
	assert.InDelta(t, 80.0, contents.Subtotal, 1e-9)

	assert.ErrorIs(t, svc.AddItem(ctx, "alice", "Unobtainium", 1), catalog.ErrNotFound)
	assert.ErrorIs(t, svc.AddItem(ctx, "alice", "Paracetamol", 0), domcart.ErrInvalidQuantity)
	assert.ErrorIs(t, svc.AddItem(ctx, "alice", "Insulin", 31), catalog.ErrInsufficientStock)
}

func TestCartsAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	require.NoError(t, svc.AddItem(ctx, "alice", "Paracetamol", 5))
	require.NoError(t, svc.AddItem(ctx, "bob", "Insulin", 1))

	bob, err := svc.Contents(ctx, "bob")
	require.NoError(t, err)
	assert.NotContains(t, bob.Lines, "Paracetamol")
	assert.Equal(t, 1, bob.Lines["Insulin"])
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	require.NoError(t, svc.AddItem(ctx, "alice", "Antacid", 4))
	require.NoError(t, svc.SetQuantity(ctx, "alice", "Antacid", 2))

	contents, err := svc.Contents(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, contents.Lines["Antacid"])

	require.NoError(t, svc.SetQuantity(ctx, "alice", "Antacid", 0))
	contents, err = svc.Contents(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, contents.Lines)
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	require.NoError(t, svc.AddItem(ctx, "alice", "Antacid", 1))
	require.NoError(t, svc.RemoveItem(ctx, "alice", "Antacid"))
	assert.ErrorIs(t, svc.RemoveItem(ctx, "alice", "Antacid"), domcart.ErrNotFound)
}

func TestContentsOfUnknownUserIsEmpty(t *testing.T) {
	contents, err := setup(t).Contents(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, contents.Lines)
	assert.Zero(t, contents.Subtotal)
}

func TestAddDetected(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	added, err := svc.AddDetected(ctx, "alice", []string{"Paracetamol", "Unobtainium", "Livogon"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paracetamol", "Livogon"}, added)

	contents, err := svc.Contents(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, contents.Lines["Paracetamol"])
	assert.Equal(t, 1, contents.Lines["Livogon"])
}
