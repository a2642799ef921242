package admin

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	appOrder "medicart/internal/application/order"
	"medicart/internal/domain/catalog"
	"medicart/internal/pkg/logging"
	"medicart/internal/store"
)

// Service mutates the catalog and order statuses under elevated privilege.
// The transport layer decides who is an administrator; the service assumes
// the caller already is.
type Service struct {
	store  *store.Store
	orders *appOrder.Service
}

func NewService(st *store.Store, orders *appOrder.Service) *Service {
	return &Service{store: st, orders: orders}
}

func (s *Service) AddMedicine(ctx context.Context, name string, price float64, stock int) error {
	err := s.store.Update(ctx, func(snap *store.Snapshot) error {
		if _, exists := snap.Catalog[name]; exists {
			return fmt.Errorf("%w: %s", catalog.ErrDuplicateName, name)
		}
		m, err := catalog.New(name, price, stock)
		if err != nil {
			return err
		}
		snap.Catalog[name] = m
		return nil
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("medicine_added",
		zap.String("medicine", name),
		zap.Float64("price", price),
		zap.Int("stock", stock),
	)
	return nil
}

// RemoveMedicine deletes a catalog entry. Orders already holding the medicine
// keep their snapshot by name; only future restocking is lost.
func (s *Service) RemoveMedicine(ctx context.Context, name string) error {
	err := s.store.Update(ctx, func(snap *store.Snapshot) error {
		if _, ok := snap.Catalog[name]; !ok {
			return fmt.Errorf("%w: %s", catalog.ErrNotFound, name)
		}
		delete(snap.Catalog, name)
		return nil
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("medicine_removed", zap.String("medicine", name))
	return nil
}

// Restock adds quantity units to an existing medicine.
func (s *Service) Restock(ctx context.Context, name string, quantity int) error {
	return s.store.Update(ctx, func(snap *store.Snapshot) error {
		m, ok := snap.Catalog[name]
		if !ok {
			return fmt.Errorf("%w: %s", catalog.ErrNotFound, name)
		}
		return m.Restore(quantity)
	})
}

// ListStock returns the full catalog sorted by name.
func (s *Service) ListStock(ctx context.Context) ([]catalog.Medicine, error) {
	return s.Search(ctx, "")
}

// Search returns catalog entries whose name contains query, sorted by name.
func (s *Service) Search(ctx context.Context, query string) ([]catalog.Medicine, error) {
	var out []catalog.Medicine
	err := s.store.View(ctx, func(snap *store.Snapshot) error {
		out = snap.Catalog.Search(query)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	return s.orders.UpdateStatus(ctx, orderID, status)
}
