package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appOrder "medicart/internal/application/order"
	"medicart/internal/domain/catalog"
	"medicart/internal/infrastructure/id"
	"medicart/internal/persistence/memory"
	"medicart/internal/store"
)

func setup(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), memory.New())
	require.NoError(t, err)
	orders := appOrder.NewService(st, id.NewUUIDGenerator(), nil, nil)
	return NewService(st, orders), st
}

func TestAddMedicine(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)

	require.NoError(t, svc.AddMedicine(ctx, "Aspirin", 8, 120))

	t.Run("duplicate leaves catalog unchanged", func(t *testing.T) {
		err := svc.AddMedicine(ctx, "Aspirin", 99, 1)
		assert.ErrorIs(t, err, catalog.ErrDuplicateName)

		require.NoError(t, st.View(ctx, func(snap *store.Snapshot) error {
			assert.Equal(t, 120, snap.Catalog["Aspirin"].Stock)
			assert.InDelta(t, 8.0, snap.Catalog["Aspirin"].UnitPrice, 1e-9)
			return nil
		}))
	})

	t.Run("negative price or stock", func(t *testing.T) {
		assert.ErrorIs(t, svc.AddMedicine(ctx, "Bad", -1, 10), catalog.ErrInvalidInput)
		assert.ErrorIs(t, svc.AddMedicine(ctx, "Bad", 1, -10), catalog.ErrInvalidInput)
	})
}

func TestRemoveMedicine(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	require.NoError(t, svc.RemoveMedicine(ctx, "Paracetamol"))
	assert.ErrorIs(t, svc.RemoveMedicine(ctx, "Paracetamol"), catalog.ErrNotFound)
}

func TestRestock(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)

	require.NoError(t, svc.Restock(ctx, "Insulin", 10))
	require.NoError(t, st.View(ctx, func(snap *store.Snapshot) error {
		assert.Equal(t, 40, snap.Catalog["Insulin"].Stock)
		return nil
	}))

	assert.ErrorIs(t, svc.Restock(ctx, "Unobtainium", 1), catalog.ErrNotFound)
	assert.ErrorIs(t, svc.Restock(ctx, "Insulin", 0), catalog.ErrInvalidQuantity)
}

func TestListStockIsSorted(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	medicines, err := svc.ListStock(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, medicines)
	for i := 1; i < len(medicines); i++ {
		assert.Less(t, medicines[i-1].Name, medicines[i].Name)
	}
}
