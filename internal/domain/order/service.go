package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/almasdimas/shop-api/internal/domain/cart"
	"github.com/almasdimas/shop-api/internal/domain/product"
)

// CreateRequest holds the input for placing an order from a user's cart.
// Addresses are optional; empty values are stored as-is.
type CreateRequest struct {
	UserID          string
	ShippingAddress string
	BillingAddress  string
}

// Service encapsulates the order workflow: checkout, status transitions,
// and order queries.
type Service struct {
	products product.Repository
	carts    cart.Repository
	orders   Repository
	tx       Transactor
}

// NewService creates an order Service with the required dependencies.
func NewService(
	products product.Repository,
	carts cart.Repository,
	orders Repository,
	tx Transactor,
) *Service {
	return &Service{
		products: products,
		carts:    carts,
		orders:   orders,
		tx:       tx,
	}
}

// Create converts the user's cart into an order.
//
// The whole workflow runs inside one transactional boundary: the stock
// decrements, the order insert, and the cart clear either all commit or all
// roll back. Each line's stock is re-checked at decrement time by a
// conditional atomic write, so concurrent checkouts for the same product
// can never drive stock negative: exactly enough succeed to exhaust it and
// the rest fail with *product.InsufficientStockError.
//
// The order total uses each line's cart-time price snapshot. A catalog
// price change between add-to-cart and checkout does not reprice the order.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	var created *Order

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.carts.Get(ctx, req.UserID)
		if err != nil {
			return errors.Wrap(err, "get cart")
		}
		if c.Empty() {
			return ErrEmptyCart
		}

		items := make([]Item, len(c.Items))
		total := decimal.Zero
		for i, line := range c.Items {
			// Re-fetch for the current name in error messages; the decrement
			// below is the authoritative stock check.
			p, err := s.products.GetByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return &product.InsufficientStockError{ProductID: line.ProductID}
				}
				return errors.Wrapf(err, "get product %s", line.ProductID)
			}

			if err := s.products.DecrementStock(ctx, p.ID, line.Quantity); err != nil {
				var ise *product.InsufficientStockError
				if errors.As(err, &ise) && ise.Name == "" {
					ise.Name = p.Name
				}
				return err
			}

			items[i] = Item{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			}
			total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		o := &Order{
			ID:              uuid.New().String(),
			UserID:          req.UserID,
			Items:           items,
			TotalAmount:     total,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			PaymentStatus:   PaymentPending,
			Status:          StatusPending,
			CreatedAt:       time.Now(),
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}

		c.Items = []cart.Item{}
		c.UpdatedAt = time.Now()
		if err := s.carts.Save(ctx, c); err != nil {
			return errors.Wrap(err, "clear cart")
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a single order. Non-admin callers only see their own orders;
// anything else reads as ErrNotFound so order IDs do not leak existence.
func (s *Service) Get(ctx context.Context, id, userID string, admin bool) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns the caller's orders, or every order for admin callers.
func (s *Service) List(ctx context.Context, userID string, admin bool) ([]Order, error) {
	if admin {
		return s.orders.ListAll(ctx)
	}
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus transitions an order to a new status after checking the
// transition legality table. Unknown status values and illegal transitions
// are rejected.
//
// The write is a compare-and-set against the status the legality check saw.
// When a concurrent transition lands in between, the repository reports a
// conflict and the check is repeated against the fresh status, so a
// terminal order can never be overwritten by a racing request.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	var updated *Order

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		for {
			o, err := s.orders.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !CanTransition(o.Status, status) {
				return &IllegalTransitionError{From: o.Status, To: status}
			}
			err = s.orders.UpdateStatus(ctx, id, o.Status, status)
			if errors.Is(err, ErrStatusConflict) {
				continue
			}
			if err != nil {
				return errors.Wrap(err, "update status")
			}
			o.Status = status
			updated = o
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
