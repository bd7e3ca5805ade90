// Package memstore is the in-memory persistence adapter used as a
// development fallback when no database is configured. It implements the
// same repository ports as the PostgreSQL adapter, scoped to the process
// lifetime.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/almasdimas/shop-api/internal/domain/auth"
	"github.com/almasdimas/shop-api/internal/domain/cart"
	"github.com/almasdimas/shop-api/internal/domain/order"
	"github.com/almasdimas/shop-api/internal/domain/product"
)

// Store holds every collection behind a single RWMutex. Reads take the
// read lock; writes take the write lock; InTx holds the write lock for the
// whole callback so a transaction observes and mutates a consistent state.
type Store struct {
	mu       sync.RWMutex
	products map[string]product.Product
	carts    map[string]cart.Cart
	orders   map[string]order.Order
	apikeys  map[string]auth.Identity // keyed by HMAC hash
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		products: make(map[string]product.Product),
		carts:    make(map[string]cart.Cart),
		orders:   make(map[string]order.Order),
		apikeys:  make(map[string]auth.Identity),
	}
}

type seedProduct struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Category      string          `json:"category"`
	Images        []string        `json:"images"`
	Rating        decimal.Decimal `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	StockQuantity int             `json:"stockQuantity"`
	Status        string          `json:"status"`
}

// NewFromSeed creates a Store populated with the embedded catalog JSON.
func NewFromSeed(seed []byte) (*Store, error) {
	var rows []seedProduct
	if err := json.Unmarshal(seed, &rows); err != nil {
		return nil, fmt.Errorf("parsing seed products: %w", err)
	}

	s := New()
	now := time.Now()
	for _, row := range rows {
		s.products[row.ID] = product.Product{
			ID:            row.ID,
			Name:          row.Name,
			Description:   row.Description,
			Price:         row.Price,
			OriginalPrice: row.OriginalPrice,
			Category:      row.Category,
			Images:        row.Images,
			Rating:        row.Rating,
			ReviewCount:   row.ReviewCount,
			StockQuantity: row.StockQuantity,
			Status:        product.Status(row.Status),
			CreatedAt:     now,
		}
	}
	return s, nil
}

// AddAPIKey registers an API key identity under its hash. Used by the
// development seeding in app wiring and by tests.
func (s *Store) AddAPIKey(hash string, id auth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id.KeyHash = hash
	s.apikeys[hash] = id
}

// ImportProduct upserts a product directly into the catalog, bypassing the
// JSON seed path. Used by tests and development tooling.
func (s *Store) ImportProduct(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.products[p.ID] = copyProduct(p)
}

type txMarker struct{}

// inTx reports whether ctx is inside an InTx callback, meaning the write
// lock is already held and repository methods must not lock again.
func inTx(ctx context.Context) bool {
	return ctx.Value(txMarker{}) != nil
}

// InTx implements order.Transactor. The write lock serializes transactions
// and a deep snapshot of every collection is restored when fn fails, so
// partial writes (stock decremented without a matching order, a cleared
// cart without an order) can never be observed.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, struct{}{})); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	products map[string]product.Product
	carts    map[string]cart.Cart
	orders   map[string]order.Order
}

// snapshot deep-copies the mutable collections. API keys are immutable at
// runtime and excluded. Caller must hold the write lock.
func (s *Store) snapshot() snapshot {
	snap := snapshot{
		products: make(map[string]product.Product, len(s.products)),
		carts:    make(map[string]cart.Cart, len(s.carts)),
		orders:   make(map[string]order.Order, len(s.orders)),
	}
	for id, p := range s.products {
		snap.products[id] = copyProduct(p)
	}
	for id, c := range s.carts {
		snap.carts[id] = copyCart(c)
	}
	for id, o := range s.orders {
		snap.orders[id] = copyOrder(o)
	}
	return snap
}

// restore replaces the mutable collections with a snapshot. Caller must
// hold the write lock.
func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
}

func copyProduct(p product.Product) product.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

func copyCart(c cart.Cart) cart.Cart {
	c.Items = append([]cart.Item(nil), c.Items...)
	return c
}

func copyOrder(o order.Order) order.Order {
	o.Items = append([]order.Item(nil), o.Items...)
	return o
}
