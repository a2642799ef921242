// Package store serializes every read and mutation of application state
// through one lock and commits the full snapshot to the persistence gateway
// before a mutation becomes visible.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"medicart/internal/domain/user"
)

// ErrPersistence wraps gateway failures. A failed commit aborts the mutation
// with no partial state.
var ErrPersistence = errors.New("store: persistence failure")

// Gateway persists and restores the whole snapshot.
type Gateway interface {
	Commit(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

type Store struct {
	mu   sync.Mutex
	gw   Gateway
	snap *Snapshot
}

// Open loads the last committed snapshot and provisions the defaults the
// system expects: the seed catalog when none exists and the admin account.
func Open(ctx context.Context, gw Gateway) (*Store, error) {
	snap, err := gw.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if snap == nil {
		snap = NewSnapshot()
	}

	dirty := false
	if len(snap.Catalog) == 0 {
		seedCatalog(snap)
		dirty = true
	}
	if _, ok := snap.Users[user.AdminUsername]; !ok {
		admin, err := user.New(user.AdminUsername, "admin123", "Admin Panel")
		if err != nil {
			return nil, err
		}
		admin.Admin = true
		snap.Users[admin.Username] = admin
		dirty = true
	} else if !snap.Users[user.AdminUsername].Admin {
		snap.Users[user.AdminUsername].Admin = true
		dirty = true
	}

	if dirty {
		if err := gw.Commit(ctx, snap); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	return &Store{gw: gw, snap: snap}, nil
}

// View runs fn against the current snapshot under the lock. fn must not
// mutate the snapshot or retain references to it.
func (s *Store) View(ctx context.Context, fn func(*Snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.snap)
}

// Update runs fn against a working copy of the snapshot. The copy replaces
// the live state only after the gateway commit succeeds, so every observable
// mutation is durable and a failure anywhere leaves state untouched.
func (s *Store) Update(ctx context.Context, fn func(*Snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.snap.Clone()
	if err := fn(work); err != nil {
		return err
	}
	if err := s.gw.Commit(ctx, work); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.snap = work
	return nil
}
