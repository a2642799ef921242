// Package memory implements the persistence gateway in process memory, for
// tests and local runs without a database.
package memory

import (
	"context"
	"sync"

	"medicart/internal/store"
)

type Gateway struct {
	mu   sync.Mutex
	snap *store.Snapshot
}

func New() *Gateway {
	return &Gateway{}
}

func (g *Gateway) Commit(ctx context.Context, snap *store.Snapshot) error {
	_ = ctx

	g.mu.Lock()
	defer g.mu.Unlock()

	g.snap = snap.Clone()
	return nil
}

func (g *Gateway) Load(ctx context.Context) (*store.Snapshot, error) {
	_ = ctx

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.snap == nil {
		return store.NewSnapshot(), nil
	}
	return g.snap.Clone(), nil
}
