package cart

import (
	"errors"

	"medicart/internal/domain/catalog"
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
	ErrNotFound        = errors.New("cart: medicine not in cart")
	ErrEmpty           = errors.New("cart: cart is empty")
)

// Cart maps medicine name to the quantity awaiting order placement.
type Cart map[string]int

func New() Cart {
	return make(Cart)
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for name, qty := range c {
		out[name] = qty
	}
	return out
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// Add increments the line for the medicine. Quantity is validated against the
// current stock; stock may still change before placement, so order placement
// re-validates.
func (c Cart) Add(m *catalog.Medicine, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > m.Stock {
		return catalog.ErrInsufficientStock
	}
	c[m.Name] += quantity
	return nil
}

// Set replaces the line for the medicine. A non-positive quantity removes it.
func (c Cart) Set(m *catalog.Medicine, quantity int) error {
	if quantity <= 0 {
		delete(c, m.Name)
		return nil
	}
	if quantity > m.Stock {
		return catalog.ErrInsufficientStock
	}
	c[m.Name] = quantity
	return nil
}

func (c Cart) Remove(name string) error {
	if _, ok := c[name]; !ok {
		return ErrNotFound
	}
	delete(c, name)
	return nil
}

func (c Cart) Clear() {
	for name := range c {
		delete(c, name)
	}
}

// Subtotal sums quantity times unit price over lines present in the catalog,
// without the delivery fee.
func (c Cart) Subtotal(cat catalog.Catalog) float64 {
	var total float64
	for name, qty := range c {
		if m, ok := cat[name]; ok {
			total += m.UnitPrice * float64(qty)
		}
	}
	return total
}
