package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "sid-1", "alice"))

	username, err := m.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = m.Get(ctx, "sid-2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Delete(ctx, "sid-1"))
	_, err = m.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Put(ctx, "sid-1", "alice"))

	m.now = func() time.Time { return now.Add(TTL + time.Second) }
	_, err := m.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
