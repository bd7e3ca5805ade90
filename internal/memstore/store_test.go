package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almasdimas/shop-api/db"
	"github.com/almasdimas/shop-api/internal/domain/cart"
	"github.com/almasdimas/shop-api/internal/domain/order"
	"github.com/almasdimas/shop-api/internal/domain/product"
)

func seedStore(t *testing.T, products ...product.Product) *Store {
	t.Helper()
	s := New()
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func testProduct(id string, stock int) product.Product {
	return product.Product{
		ID:            id,
		Name:          "Product " + id,
		Price:         decimal.RequireFromString("100.00"),
		StockQuantity: stock,
		Status:        product.StatusActive,
	}
}

func TestNewFromSeed(t *testing.T) {
	s, err := NewFromSeed(db.SeedProducts)
	require.NoError(t, err)

	products, err := s.Products().List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, products)

	for _, p := range products {
		assert.NotEmpty(t, p.Name)
		assert.True(t, p.Price.IsPositive(), "price of %s", p.ID)
		assert.GreaterOrEqual(t, p.StockQuantity, 0)
	}
}

func TestDecrementStock(t *testing.T) {
	s := seedStore(t, testProduct("p1", 5))
	products := s.Products()
	ctx := context.Background()

	require.NoError(t, products.DecrementStock(ctx, "p1", 3))

	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockQuantity)

	// Exact exhaustion succeeds, one more fails.
	require.NoError(t, products.DecrementStock(ctx, "p1", 2))
	err = products.DecrementStock(ctx, "p1", 1)
	var ise *product.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 0, ise.Available)

	p, err = products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockQuantity)
}

func TestCartGetReturnsNilWhenAbsent(t *testing.T) {
	s := New()

	c, err := s.Carts().Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCartSaveIsolatesCallerSlice(t *testing.T) {
	carts := New().Carts()
	ctx := context.Background()

	c := &cart.Cart{UserID: "u1", Items: []cart.Item{
		{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("100.00")},
	}}
	require.NoError(t, carts.Save(ctx, c))

	// Mutating the caller's slice must not leak into the store.
	c.Items[0].Quantity = 99

	got, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestInTxRollbackRestoresState(t *testing.T) {
	s := seedStore(t, testProduct("p1", 5))
	products, carts, orders := s.Products(), s.Carts(), s.Orders()
	ctx := context.Background()
	require.NoError(t, carts.Save(ctx, &cart.Cart{UserID: "u1", Items: []cart.Item{
		{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("100.00")},
	}}))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context) error {
		if err := products.DecrementStock(ctx, "p1", 2); err != nil {
			return err
		}
		if err := orders.Create(ctx, &order.Order{ID: "o1", UserID: "u1"}); err != nil {
			return err
		}
		if err := carts.Save(ctx, &cart.Cart{UserID: "u1", Items: []cart.Item{}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Every write rolled back.
	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity)

	_, err = orders.GetByID(ctx, "o1")
	require.ErrorIs(t, err, order.ErrNotFound)

	c, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Items, 1)
}

func TestInTxCommitKeepsWrites(t *testing.T) {
	s := seedStore(t, testProduct("p1", 5))
	ctx := context.Background()

	err := s.InTx(ctx, func(ctx context.Context) error {
		return s.Products().DecrementStock(ctx, "p1", 1)
	})
	require.NoError(t, err)

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.StockQuantity)
}

func TestOrderListNewestFirst(t *testing.T) {
	orders := New().Orders()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		o := &order.Order{ID: fmt.Sprintf("o%d", i), UserID: "u1", Status: order.StatusPending}
		o.CreatedAt = o.CreatedAt.AddDate(0, 0, i)
		require.NoError(t, orders.Create(ctx, o))
	}

	got, err := orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "o3", got[0].ID)
	assert.Equal(t, "o1", got[2].ID)
}

func TestOrderUpdateStatusGuardsExpectedValue(t *testing.T) {
	orders := New().Orders()
	ctx := context.Background()

	require.NoError(t, orders.Create(ctx, &order.Order{
		ID: "o1", UserID: "u1", Status: order.StatusPending,
	}))

	// A stale expectation must not overwrite the stored status.
	err := orders.UpdateStatus(ctx, "o1", order.StatusProcessing, order.StatusShipped)
	require.ErrorIs(t, err, order.ErrStatusConflict)
	got, err := orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)

	require.NoError(t, orders.UpdateStatus(ctx, "o1", order.StatusPending, order.StatusProcessing))
	got, err = orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, got.Status)

	err = orders.UpdateStatus(ctx, "missing", order.StatusPending, order.StatusProcessing)
	require.ErrorIs(t, err, order.ErrNotFound)
}

// Concurrent checkouts through the order service must never drive stock
// negative: with 10 in stock and 20 buyers of 1, exactly 10 succeed.
func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	const stock, buyers = 10, 20

	s := seedStore(t, testProduct("p1", stock))
	ctx := context.Background()
	for i := 0; i < buyers; i++ {
		user := fmt.Sprintf("u%d", i)
		require.NoError(t, s.Carts().Save(ctx, &cart.Cart{UserID: user, Items: []cart.Item{
			{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("100.00")},
		}}))
	}

	svc := order.NewService(s.Products(), s.Carts(), s.Orders(), s)

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		user := fmt.Sprintf("u%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, order.CreateRequest{UserID: user})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var ise *product.InsufficientStockError
		require.ErrorAs(t, err, &ise)
		failed++
	}
	assert.Equal(t, stock, succeeded)
	assert.Equal(t, buyers-stock, failed)

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockQuantity)

	orders, err := s.Orders().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, stock)
}
