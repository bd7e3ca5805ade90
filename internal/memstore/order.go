package memstore

import (
	"context"
	"sort"

	"github.com/almasdimas/shop-api/internal/domain/order"
)

// OrderRepo implements order.Repository over the shared Store.
type OrderRepo struct {
	s *Store
}

var _ order.Repository = (*OrderRepo)(nil)
var _ order.Transactor = (*Store)(nil)

// Orders returns the order repository view of the store.
func (s *Store) Orders() *OrderRepo {
	return &OrderRepo{s: s}
}

// Create persists a new order.
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	if !inTx(ctx) {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}

	r.s.orders[o.ID] = copyOrder(*o)
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	if !inTx(ctx) {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	if !inTx(ctx) {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}

	out := make([]order.Order, 0)
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sortOrders(out)
	return out, nil
}

// ListAll returns every order, newest first.
func (r *OrderRepo) ListAll(ctx context.Context) ([]order.Order, error) {
	if !inTx(ctx) {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}

	out := make([]order.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, copyOrder(o))
	}
	sortOrders(out)
	return out, nil
}

// UpdateStatus writes the order status, guarded by the expected current
// value.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, expected, next order.Status) error {
	if !inTx(ctx) {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}

	o, ok := r.s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status != expected {
		return order.ErrStatusConflict
	}
	o.Status = next
	r.s.orders[id] = o
	return nil
}

func sortOrders(orders []order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
}
