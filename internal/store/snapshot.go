package store

import (
	"medicart/internal/domain/cart"
	"medicart/internal/domain/catalog"
	"medicart/internal/domain/order"
	"medicart/internal/domain/user"
)

// Snapshot is the whole application state: the four collections the
// persistence gateway commits and loads as one unit.
type Snapshot struct {
	Catalog catalog.Catalog
	Users   user.Directory
	Orders  map[string]*order.Order
	Carts   map[string]cart.Cart
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Catalog: make(catalog.Catalog),
		Users:   make(user.Directory),
		Orders:  make(map[string]*order.Order),
		Carts:   make(map[string]cart.Cart),
	}
}

func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Catalog: s.Catalog.Clone(),
		Users:   s.Users.Clone(),
		Orders:  make(map[string]*order.Order, len(s.Orders)),
		Carts:   make(map[string]cart.Cart, len(s.Carts)),
	}
	for id, o := range s.Orders {
		out.Orders[id] = o.Clone()
	}
	for owner, c := range s.Carts {
		out.Carts[owner] = c.Clone()
	}
	return out
}

// Cart returns the cart for the given user, creating it if needed.
func (s *Snapshot) Cart(username string) cart.Cart {
	c, ok := s.Carts[username]
	if !ok {
		c = cart.New()
		s.Carts[username] = c
	}
	return c
}
