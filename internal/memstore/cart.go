package memstore

import (
	"context"

	"github.com/almasdimas/shop-api/internal/domain/cart"
)

// CartRepo implements cart.Repository over the shared Store.
type CartRepo struct {
	s *Store
}

var _ cart.Repository = (*CartRepo)(nil)

// Carts returns the cart repository view of the store.
func (s *Store) Carts() *CartRepo {
	return &CartRepo{s: s}
}

// Get returns the user's cart, or (nil, nil) when none exists.
func (r *CartRepo) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	if !inTx(ctx) {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}

	c, ok := r.s.carts[userID]
	if !ok {
		return nil, nil
	}
	c = copyCart(c)
	return &c, nil
}

// Save upserts the whole cart document.
func (r *CartRepo) Save(ctx context.Context, c *cart.Cart) error {
	if !inTx(ctx) {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}

	r.s.carts[c.UserID] = copyCart(*c)
	return nil
}
