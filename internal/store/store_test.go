package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicart/internal/domain/user"
)

// countingGateway records commits and can be told to fail.
type countingGateway struct {
	snap    *Snapshot
	commits int
	fail    error
}

func (g *countingGateway) Commit(ctx context.Context, snap *Snapshot) error {
	if g.fail != nil {
		return g.fail
	}
	g.commits++
	g.snap = snap.Clone()
	return nil
}

func (g *countingGateway) Load(ctx context.Context) (*Snapshot, error) {
	if g.snap == nil {
		return NewSnapshot(), nil
	}
	return g.snap.Clone(), nil
}

func TestOpenSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{}

	st, err := Open(ctx, gw)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.commits, "seeding is committed immediately")

	require.NoError(t, st.View(ctx, func(snap *Snapshot) error {
		assert.Len(t, snap.Catalog, 11)
		assert.Equal(t, 150, snap.Catalog["Paracetamol"].Stock)

		admin, ok := snap.Users[user.AdminUsername]
		require.True(t, ok)
		assert.True(t, admin.Admin)
		assert.NoError(t, admin.CheckPassword("admin123"))
		return nil
	}))
}

func TestOpenKeepsExistingState(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{}

	st, err := Open(ctx, gw)
	require.NoError(t, err)
	require.NoError(t, st.Update(ctx, func(snap *Snapshot) error {
		snap.Catalog["Paracetamol"].Stock = 7
		return nil
	}))

	reopened, err := Open(ctx, gw)
	require.NoError(t, err)
	require.NoError(t, reopened.View(ctx, func(snap *Snapshot) error {
		assert.Equal(t, 7, snap.Catalog["Paracetamol"].Stock, "existing catalog is not reseeded")
		return nil
	}))
}

func TestUpdateCommitsBeforeMutating(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{}
	st, err := Open(ctx, gw)
	require.NoError(t, err)

	before := gw.commits
	require.NoError(t, st.Update(ctx, func(snap *Snapshot) error {
		snap.Cart("alice")["Paracetamol"] = 2
		return nil
	}))
	assert.Equal(t, before+1, gw.commits, "every mutation is durable before it returns")
	assert.Equal(t, 2, gw.snap.Carts["alice"]["Paracetamol"])
}

func TestUpdateRollsBackOnCommitFailure(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{}
	st, err := Open(ctx, gw)
	require.NoError(t, err)

	gw.fail = errors.New("connection reset")
	err = st.Update(ctx, func(snap *Snapshot) error {
		snap.Catalog["Paracetamol"].Stock = 0
		return nil
	})
	require.ErrorIs(t, err, ErrPersistence)

	require.NoError(t, st.View(ctx, func(snap *Snapshot) error {
		assert.Equal(t, 150, snap.Catalog["Paracetamol"].Stock)
		return nil
	}))
}

func TestUpdateDiscardsChangesWhenFnFails(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{}
	st, err := Open(ctx, gw)
	require.NoError(t, err)

	before := gw.commits
	boom := errors.New("validation failed")
	err = st.Update(ctx, func(snap *Snapshot) error {
		snap.Catalog["Paracetamol"].Stock = 0
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, gw.commits, "nothing is committed when fn fails")

	require.NoError(t, st.View(ctx, func(snap *Snapshot) error {
		assert.Equal(t, 150, snap.Catalog["Paracetamol"].Stock)
		return nil
	}))
}
