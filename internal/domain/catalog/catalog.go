package catalog

import (
	"errors"
	"strings"
)

var (
	ErrNotFound          = errors.New("catalog: medicine not found")
	ErrDuplicateName     = errors.New("catalog: medicine already exists")
	ErrInvalidInput      = errors.New("catalog: price and stock must be non-negative")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// Medicine is a catalog entry keyed by its name.
type Medicine struct {
	Name      string  `json:"name" db:"name"`
	UnitPrice float64 `json:"unit_price" db:"price"`
	Stock     int     `json:"stock" db:"stock"`
}

func New(name string, unitPrice float64, stock int) (*Medicine, error) {
	if unitPrice < 0 || stock < 0 {
		return nil, ErrInvalidInput
	}
	return &Medicine{
		Name:      name,
		UnitPrice: unitPrice,
		Stock:     stock,
	}, nil
}

// Deduct removes quantity units of stock. Stock never goes negative.
func (m *Medicine) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > m.Stock {
		return ErrInsufficientStock
	}
	m.Stock -= quantity
	return nil
}

// Restore returns quantity units of stock, e.g. after an order cancellation.
func (m *Medicine) Restore(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	m.Stock += quantity
	return nil
}

// Catalog maps medicine name to its entry.
type Catalog map[string]*Medicine

func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for name, m := range c {
		clone := *m
		out[name] = &clone
	}
	return out
}

// Search returns the medicines whose name contains query, case-insensitively.
// An empty query matches everything.
func (c Catalog) Search(query string) []Medicine {
	query = strings.ToLower(query)
	out := make([]Medicine, 0, len(c))
	for name, m := range c {
		if strings.Contains(strings.ToLower(name), query) {
			out = append(out, *m)
		}
	}
	return out
}
