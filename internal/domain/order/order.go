package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for the order workflow.
var (
	// ErrEmptyCart is returned when checkout is attempted on an absent or
	// empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound is returned when a requested order does not exist, or when
	// a non-admin caller asks for another user's order.
	ErrNotFound = errors.New("order not found")
	// ErrStatusConflict is returned by Repository.UpdateStatus when the
	// stored status no longer matches the expected one, meaning a concurrent
	// transition won the race. Callers re-read and re-check the transition.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Item is a frozen copy of a cart line at order time. Price is the
// cart-time snapshot; it is never recomputed from the catalog.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is the immutable record of a completed purchase intent. Only
// Status and PaymentStatus change after creation, and only through the
// status service.
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	TotalAmount     decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	PaymentStatus   PaymentStatus
	Status          Status
	CreatedAt       time.Time
}

// Repository defines persistence operations for orders.
//
// UpdateStatus is a compare-and-set: it writes next only when the stored
// status still equals expected, and returns ErrStatusConflict otherwise.
// An unconditional overwrite is not an acceptable implementation: two
// concurrent transitions from the same state would both commit, and the
// later write could resurrect a terminal order.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, expected, next Status) error
}

// Transactor runs fn inside a single transactional boundary: every
// repository write issued through ctx either commits as a whole or rolls
// back as a whole. The Postgres adapter uses a database transaction; the
// in-memory adapter serializes on a store lock and restores a snapshot on
// error.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
