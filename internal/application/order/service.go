package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"medicart/internal/domain/catalog"
	domain "medicart/internal/domain/order"
	"medicart/internal/domain/pricing"
	"medicart/internal/infrastructure/id"
	"medicart/internal/pkg/logging"
	"medicart/internal/store"
)

const (
	tracerName = "medicart/order"
	opPlace    = "order.place"
	opCancel   = "order.cancel"
	idRetries  = 5
)

// Service owns the order lifecycle: placement, cancellation, projections and
// admin status writes. All mutations go through the store boundary, so stock
// decrement, cart clearing and order recording land atomically or not at all.
type Service struct {
	store    *store.Store
	ids      id.Generator
	now      func() time.Time
	outcomes *prometheus.CounterVec
}

// NewService wires the order service. now may be nil, in which case the
// system clock is used. outcomes may be nil to skip metrics.
func NewService(st *store.Store, ids id.Generator, now func() time.Time, outcomes *prometheus.CounterVec) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: st, ids: ids, now: now, outcomes: outcomes}
}

// Placed describes a successfully placed order.
type Placed struct {
	OrderID    string    `json:"order_id"`
	Total      float64   `json:"total"`
	DeliveryAt time.Time `json:"delivery_at"`
}

// Place snapshots the user's cart into a new Processing order: it re-validates
// stock per line (the authoritative check), decrements catalog stock, clears
// the cart and records the order, in one committed mutation.
func (s *Service) Place(ctx context.Context, username, prescription string) (_ *Placed, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "PlaceOrder")
	span.SetAttributes(attribute.String("order.owner", username))
	defer func() { s.finish(span, opPlace, err) }()

	logger := logging.FromContext(ctx)

	if strings.TrimSpace(prescription) == "" {
		return nil, domain.ErrMissingPrescription
	}

	var placed Placed
	err = s.store.Update(ctx, func(snap *store.Snapshot) error {
		c := snap.Carts[username]
		if c.IsEmpty() {
			return domain.ErrEmptyCart
		}

		for _, name := range sortedNames(c) {
			m, ok := snap.Catalog[name]
			if !ok {
				return fmt.Errorf("%w: %s", catalog.ErrNotFound, name)
			}
			if m.Stock < c[name] {
				return fmt.Errorf("%w: %s", catalog.ErrInsufficientStock, name)
			}
		}

		orderID, err := s.newOrderID(snap)
		if err != nil {
			return err
		}

		now := s.now()
		deliveryAt := pricing.DeliveryTime(now)
		total := pricing.TotalCost(c, snap.Catalog)

		o, err := domain.New(orderID, username, c, prescription, deliveryAt, total)
		if err != nil {
			return err
		}

		for name, qty := range c {
			if err := snap.Catalog[name].Deduct(qty); err != nil {
				return err
			}
		}
		c.Clear()
		snap.Orders[o.ID] = o

		placed = Placed{OrderID: o.ID, Total: o.Total, DeliveryAt: o.DeliveryAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", placed.OrderID))
	logger.Info("order_placed",
		zap.String("order_id", placed.OrderID),
		zap.String("username", username),
		zap.Float64("total", placed.Total),
		zap.Time("delivery_at", placed.DeliveryAt),
	)
	return &placed, nil
}

// Cancel deletes a Processing order and restores its stock. Ownership is
// always checked; cancellation closes 30 minutes before the delivery time.
func (s *Service) Cancel(ctx context.Context, username, orderID string) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CancelOrder")
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.owner", username),
	)
	defer func() { s.finish(span, opCancel, err) }()

	logger := logging.FromContext(ctx)

	err = s.store.Update(ctx, func(snap *store.Snapshot) error {
		o, ok := snap.Orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		if err := o.AuthorizeCancel(username, s.now()); err != nil {
			return err
		}
		// Medicines removed from the catalog since placement have nowhere to
		// restore stock to; the rest go back in full.
		for name, qty := range o.Items {
			if m, ok := snap.Catalog[name]; ok {
				if err := m.Restore(qty); err != nil {
					return err
				}
			}
		}
		delete(snap.Orders, orderID)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("order_cancelled",
		zap.String("order_id", orderID),
		zap.String("username", username),
	)
	return nil
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, username string) ([]domain.Order, error) {
	return s.list(ctx, func(o *domain.Order) bool { return o.Owner == username })
}

// ListAll returns every order in the ledger, newest first. Admin projection.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.list(ctx, func(*domain.Order) bool { return true })
}

func (s *Service) list(ctx context.Context, keep func(*domain.Order) bool) ([]domain.Order, error) {
	var out []domain.Order
	err := s.store.View(ctx, func(snap *store.Snapshot) error {
		for _, o := range snap.Orders {
			if keep(o) {
				out = append(out, *o.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ArrivalDate returns the delivery timestamp of one of the user's orders.
func (s *Service) ArrivalDate(ctx context.Context, username, orderID string) (time.Time, error) {
	var at time.Time
	err := s.store.View(ctx, func(snap *store.Snapshot) error {
		o, ok := snap.Orders[orderID]
		if !ok || o.Owner != username {
			return domain.ErrNotFound
		}
		at = o.DeliveryAt
		return nil
	})
	return at, err
}

// UpdateStatus overwrites an order's status with any value from the closed
// enum. Admin-only; forward sequencing is not enforced beyond the enum.
func (s *Service) UpdateStatus(ctx context.Context, orderID, newStatus string) error {
	status, err := domain.ParseStatus(newStatus)
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(snap *store.Snapshot) error {
		o, ok := snap.Orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		o.Status = status
		return nil
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("order_status_updated",
		zap.String("order_id", orderID),
		zap.String("status", newStatus),
	)
	return nil
}

// newOrderID draws short ids until one misses the ledger. 8 hex characters
// collide rarely at this scale, but a collision must not overwrite an order.
func (s *Service) newOrderID(snap *store.Snapshot) (string, error) {
	for i := 0; i < idRetries; i++ {
		orderID := s.ids.NewID()
		if _, taken := snap.Orders[orderID]; !taken {
			return orderID, nil
		}
	}
	return "", fmt.Errorf("order: id space exhausted after %d attempts", idRetries)
}

func (s *Service) finish(span trace.Span, op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	if s.outcomes != nil {
		s.outcomes.WithLabelValues(op, outcome).Inc()
	}
}

// sortedNames gives the stock check a stable order so the error always names
// the same offending medicine.
func sortedNames(items map[string]int) []string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
