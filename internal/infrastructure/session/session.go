// Package session stores login sessions keyed by opaque session ids.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound means the session id is unknown or expired.
var ErrNotFound = errors.New("session: not found")

// TTL is how long a login session stays valid.
const TTL = time.Hour

// Store maps a session id to the owning username.
type Store interface {
	Put(ctx context.Context, sessionID, username string) error
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}
