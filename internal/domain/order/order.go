package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("order: not found")
	ErrEmptyCart           = errors.New("order: cart is empty")
	ErrMissingPrescription = errors.New("order: prescription is required")
	ErrUnauthorized        = errors.New("order: order belongs to another user")
	ErrInvalidState        = errors.New("order: only processing orders can be cancelled")
	ErrTooLateToCancel     = errors.New("order: too close to delivery time")
	ErrInvalidStatus       = errors.New("order: invalid status")
)

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

// ParseStatus validates a status value against the closed enum. Any value in
// the enum is an acceptable write; transitions are not required to be
// sequential.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusProcessing, StatusShipped, StatusDelivered:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// CancelWindow is how long before the delivery time cancellation stays open.
const CancelWindow = 30 * time.Minute

// Order is an immutable snapshot of a placed cart.
type Order struct {
	ID           string
	Owner        string
	Items        map[string]int
	Prescription string
	Status       Status
	DeliveryAt   time.Time
	Total        float64
	CreatedAt    time.Time
}

func New(id, owner string, items map[string]int, prescription string, deliveryAt time.Time, total float64) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if prescription == "" {
		return nil, ErrMissingPrescription
	}
	snapshot := make(map[string]int, len(items))
	for name, qty := range items {
		snapshot[name] = qty
	}
	return &Order{
		ID:           id,
		Owner:        owner,
		Items:        snapshot,
		Prescription: prescription,
		Status:       StatusProcessing,
		DeliveryAt:   deliveryAt,
		Total:        total,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (o *Order) Clone() *Order {
	clone := *o
	clone.Items = make(map[string]int, len(o.Items))
	for name, qty := range o.Items {
		clone.Items[name] = qty
	}
	return &clone
}

// AuthorizeCancel reports whether the order may be cancelled by owner at now.
// Ownership is always checked, regardless of which front end asks.
func (o *Order) AuthorizeCancel(owner string, now time.Time) error {
	if o.Owner != owner {
		return ErrUnauthorized
	}
	if o.Status != StatusProcessing {
		return ErrInvalidState
	}
	if !now.Before(o.DeliveryAt.Add(-CancelWindow)) {
		return ErrTooLateToCancel
	}
	return nil
}
