package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when a cart line for the given product does
// not exist.
var ErrItemNotFound = errors.New("item not found in cart")

// ErrInvalidQuantity is returned for a zero or negative quantity.
var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

// Item is a single cart line. Price is the product price captured when the
// line was first added; checkout charges this snapshot, never the current
// catalog price.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Cart holds a user's intended purchases prior to order placement. A user
// owns at most one cart; the invariant of one line per product is enforced
// by merge-on-add.
type Cart struct {
	UserID    string
	Items     []Item
	UpdatedAt time.Time
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

// find returns the index of the line for productID, or -1.
func (c *Cart) find(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Repository defines persistence operations for carts.
//
// Get returns (nil, nil) when the user has no cart document; callers
// materialize an empty cart without a persistence side effect. Save upserts
// the whole document; last-write-wins across a user's concurrent sessions
// is accepted.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
}
