package user

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domain "medicart/internal/domain/user"
	"medicart/internal/pkg/logging"
	"medicart/internal/store"
)

// Service handles registration and credential checks.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Register(ctx context.Context, username, password, address string) error {
	if username == "" {
		return domain.ErrInvalidInput
	}
	u, err := domain.New(username, password, address)
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(snap *store.Snapshot) error {
		if _, exists := snap.Users[username]; exists {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateName, username)
		}
		snap.Users[username] = u
		return nil
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("user_registered", zap.String("username", username))
	return nil
}

// Authenticate verifies the password and returns the user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	var u *domain.User
	err := s.store.View(ctx, func(snap *store.Snapshot) error {
		stored, ok := snap.Users[username]
		if !ok {
			return domain.ErrNotFound
		}
		if err := stored.CheckPassword(password); err != nil {
			return err
		}
		clone := *stored
		u = &clone
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// IsAdmin reports whether the username belongs to an administrator.
func (s *Service) IsAdmin(ctx context.Context, username string) bool {
	admin := false
	_ = s.store.View(ctx, func(snap *store.Snapshot) error {
		if u, ok := snap.Users[username]; ok {
			admin = u.Admin
		}
		return nil
	})
	return admin
}
