package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/almasdimas/shop-api/internal/domain/product"
)

// Service implements cart operations against the product catalog and the
// cart repository. Stock checks here are advisory: nothing is reserved
// while items sit in a cart, the authoritative check happens at checkout.
type Service struct {
	products product.Repository
	carts    Repository
}

// NewService creates a cart Service with the required dependencies.
func NewService(products product.Repository, carts Repository) *Service {
	return &Service{products: products, carts: carts}
}

// Get returns the user's cart, materializing an empty one when no cart
// document exists. The empty cart is not persisted.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c == nil {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}
	return c, nil
}

// AddItem merges quantity into an existing line for the product or appends
// a new line capturing the current catalog price. The requested quantity is
// validated against current stock.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > p.StockQuantity {
		return nil, &product.InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: quantity,
			Available: p.StockQuantity,
		}
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c == nil {
		c = &Cart{UserID: userID}
	}

	if i := c.find(productID); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, Item{
			ProductID: productID,
			Quantity:  quantity,
			Price:     p.Price,
		})
	}
	c.UpdatedAt = time.Now()

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// UpdateQuantity replaces the quantity of an existing line. It fails with
// ErrItemNotFound when the cart or the line is absent and re-validates the
// new quantity against current stock. The price snapshot is kept.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c == nil {
		return nil, ErrItemNotFound
	}
	i := c.find(productID)
	if i < 0 {
		return nil, ErrItemNotFound
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > p.StockQuantity {
		return nil, &product.InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: quantity,
			Available: p.StockQuantity,
		}
	}

	c.Items[i].Quantity = quantity
	c.UpdatedAt = time.Now()

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// RemoveItem deletes the line for productID. Removing an absent line, or
// removing from a user that has no cart at all, is not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c == nil {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}

	i := c.find(productID)
	if i < 0 {
		return c, nil
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.UpdatedAt = time.Now()

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// Clear empties the cart's line list. The cart document itself persists.
// Clearing a user with no cart is a no-op.
func (s *Service) Clear(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if c == nil {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}

	c.Items = []Item{}
	c.UpdatedAt = time.Now()

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}
