package product

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Status marks whether a product is available for sale.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Category      string
	Images        []string
	Rating        decimal.Decimal
	ReviewCount   int
	StockQuantity int
	Status        Status
	CreatedAt     time.Time
}

// InsufficientStockError indicates a requested quantity exceeds the
// product's available stock.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("not enough stock for %s", e.Name)
	}
	return fmt.Sprintf("not enough stock for product %s", e.ProductID)
}

// Repository defines persistence operations for the product catalog.
//
// DecrementStock must be a conditional atomic write: it decrements only when
// the remaining stock covers the requested quantity and returns
// *InsufficientStockError otherwise. A read-then-write sequence in
// application code is not an acceptable implementation: it oversells under
// concurrent checkouts.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	DecrementStock(ctx context.Context, id string, quantity int) error
}
