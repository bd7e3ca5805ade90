package memstore

import (
	"context"
	"sort"

	"github.com/almasdimas/shop-api/internal/domain/product"
)

// ProductRepo implements product.Repository over the shared Store.
type ProductRepo struct {
	s *Store
}

var _ product.Repository = (*ProductRepo)(nil)

// Products returns the product repository view of the store.
func (s *Store) Products() *ProductRepo {
	return &ProductRepo{s: s}
}

// List returns all products ordered by ID.
func (r *ProductRepo) List(ctx context.Context) ([]product.Product, error) {
	if !inTx(ctx) {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}

	out := make([]product.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	if !inTx(ctx) {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}

	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	p = copyProduct(p)
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	if !inTx(ctx) {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}

	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

// DecrementStock performs the conditional check-and-decrement under the
// store lock, the in-memory equivalent of the SQL guarded UPDATE.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, quantity int) error {
	if !inTx(ctx) {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}

	p, ok := r.s.products[id]
	if !ok {
		return &product.InsufficientStockError{ProductID: id, Requested: quantity}
	}
	if p.StockQuantity < quantity {
		return &product.InsufficientStockError{
			ProductID: id,
			Name:      p.Name,
			Requested: quantity,
			Available: p.StockQuantity,
		}
	}
	p.StockQuantity -= quantity
	r.s.products[id] = p
	return nil
}
