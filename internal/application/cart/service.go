package cart

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domcart "medicart/internal/domain/cart"
	"medicart/internal/domain/catalog"
	"medicart/internal/pkg/logging"
	"medicart/internal/store"
)

// Service mutates the per-user cart. Every mutation is validated against the
// current catalog and committed through the store.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Contents is the read projection of a cart: its lines plus the subtotal
// without the delivery fee.
type Contents struct {
	Lines    map[string]int `json:"lines"`
	Subtotal float64        `json:"subtotal"`
}

// AddItem increments the line for the medicine by quantity.
func (s *Service) AddItem(ctx context.Context, username, medicineName string, quantity int) error {
	logger := logging.FromContext(ctx)

	err := s.store.Update(ctx, func(snap *store.Snapshot) error {
		m, ok := snap.Catalog[medicineName]
		if !ok {
			return fmt.Errorf("%w: %s", catalog.ErrNotFound, medicineName)
		}
		return snap.Cart(username).Add(m, quantity)
	})
	if err != nil {
		return err
	}

	logger.Info("cart_item_added",
		zap.String("username", username),
		zap.String("medicine", medicineName),
		zap.Int("quantity", quantity),
	)
	return nil
}

// SetQuantity replaces the line for the medicine. A non-positive quantity
// removes the line.
func (s *Service) SetQuantity(ctx context.Context, username, medicineName string, quantity int) error {
	return s.store.Update(ctx, func(snap *store.Snapshot) error {
		m, ok := snap.Catalog[medicineName]
		if !ok {
			return fmt.Errorf("%w: %s", catalog.ErrNotFound, medicineName)
		}
		return snap.Cart(username).Set(m, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, username, medicineName string) error {
	return s.store.Update(ctx, func(snap *store.Snapshot) error {
		return snap.Cart(username).Remove(medicineName)
	})
}

func (s *Service) Contents(ctx context.Context, username string) (*Contents, error) {
	var out Contents
	err := s.store.View(ctx, func(snap *store.Snapshot) error {
		c := snap.Carts[username]
		out.Lines = c.Clone()
		out.Subtotal = c.Subtotal(snap.Catalog)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Lines == nil {
		out.Lines = domcart.New()
	}
	return &out, nil
}

// AddDetected adds one unit of every detected medicine that exists in the
// catalog and has stock, skipping the rest. Used by the prescription-scan
// flow, which must never fail the whole request over one unknown name.
func (s *Service) AddDetected(ctx context.Context, username string, names []string) ([]string, error) {
	added := make([]string, 0, len(names))
	err := s.store.Update(ctx, func(snap *store.Snapshot) error {
		c := snap.Cart(username)
		for _, name := range names {
			m, ok := snap.Catalog[name]
			if !ok {
				continue
			}
			if err := c.Add(m, 1); err != nil {
				continue
			}
			added = append(added, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}
