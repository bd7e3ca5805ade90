package product

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func catalog() []Product {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Product{
		{
			ID: "1", Name: "Bague Solitaire Diamant", Description: "Or blanc 18 carats",
			Price: dec("1250.00"), Category: "Bagues", Rating: dec("4.8"),
			StockQuantity: 5, CreatedAt: base,
		},
		{
			ID: "2", Name: "Collier Perles", Description: "Perles de culture",
			Price: dec("280.00"), Category: "Colliers", Rating: dec("4.5"),
			StockQuantity: 12, CreatedAt: base.Add(time.Hour),
		},
		{
			ID: "3", Name: "Bracelet Or Rose", Description: "Maille fine",
			Price: dec("420.00"), Category: "Bracelets", Rating: dec("4.2"),
			StockQuantity: 8, CreatedAt: base.Add(2 * time.Hour),
		},
		{
			ID: "4", Name: "Boucles Diamant", Description: "Puces serties",
			Price: dec("680.00"), Category: "Boucles", Rating: dec("4.8"),
			StockQuantity: 3, CreatedAt: base.Add(3 * time.Hour),
		},
		{
			ID: "5", Name: "Alliance Classique", Description: "Or jaune",
			Price: dec("380.00"), Category: "Bagues", Rating: dec("4.9"),
			StockQuantity: 20, CreatedAt: base.Add(4 * time.Hour),
		},
	}
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestQuery_NoFilterDefaultSort(t *testing.T) {
	got, info := Query(catalog(), Filter{}, Sort{}, PageRequest{})

	// Default sort is name ascending.
	assert.Equal(t, []string{"5", "1", "4", "3", "2"}, ids(got))
	assert.Equal(t, 5, info.TotalProducts)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Equal(t, 1, info.TotalPages)
	assert.False(t, info.HasNext)
	assert.False(t, info.HasPrev)
}

func TestQuery_CategoryFilter(t *testing.T) {
	got, info := Query(catalog(), Filter{Category: "Bagues"}, Sort{}, PageRequest{})

	assert.Equal(t, []string{"5", "1"}, ids(got))
	assert.Equal(t, 2, info.TotalProducts)
}

func TestQuery_PriceRange(t *testing.T) {
	min, max := dec("280.00"), dec("420.00")
	got, _ := Query(catalog(), Filter{MinPrice: &min, MaxPrice: &max}, Sort{Field: "price"}, PageRequest{})

	// Bounds are inclusive.
	assert.Equal(t, []string{"2", "5", "3"}, ids(got))
}

func TestQuery_SearchCaseInsensitive(t *testing.T) {
	got, _ := Query(catalog(), Filter{Search: "diamant"}, Sort{}, PageRequest{})
	assert.Equal(t, []string{"1", "4"}, ids(got))

	// Search matches descriptions too.
	got, _ = Query(catalog(), Filter{Search: "PERLES"}, Sort{}, PageRequest{})
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestQuery_SearchCategoryOptIn(t *testing.T) {
	// "bracelets" only appears in product 3's category.
	got, _ := Query(catalog(), Filter{Search: "bracelets"}, Sort{}, PageRequest{})
	assert.Empty(t, got)

	got, _ = Query(catalog(), Filter{Search: "bracelets", SearchCategory: true}, Sort{}, PageRequest{})
	assert.Equal(t, []string{"3"}, ids(got))
}

func TestQuery_FiltersCompose(t *testing.T) {
	max := dec("400.00")
	got, _ := Query(catalog(), Filter{Category: "Bagues", MaxPrice: &max}, Sort{}, PageRequest{})
	assert.Equal(t, []string{"5"}, ids(got))
}

func TestQuery_SortFields(t *testing.T) {
	byPrice, _ := Query(catalog(), Filter{}, Sort{Field: "price"}, PageRequest{})
	assert.Equal(t, []string{"2", "5", "3", "4", "1"}, ids(byPrice))

	byPriceDesc, _ := Query(catalog(), Filter{}, Sort{Field: "price", Desc: true}, PageRequest{})
	assert.Equal(t, []string{"1", "4", "3", "5", "2"}, ids(byPriceDesc))

	byStock, _ := Query(catalog(), Filter{}, Sort{Field: "stockQuantity"}, PageRequest{})
	assert.Equal(t, []string{"4", "1", "3", "2", "5"}, ids(byStock))

	byCreated, _ := Query(catalog(), Filter{}, Sort{Field: "createdAt", Desc: true}, PageRequest{})
	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, ids(byCreated))
}

func TestQuery_RatingTieBreaksOnID(t *testing.T) {
	// Products 1 and 4 share rating 4.8; the tie resolves by ID either way.
	asc, _ := Query(catalog(), Filter{}, Sort{Field: "rating"}, PageRequest{})
	assert.Equal(t, []string{"3", "2", "1", "4", "5"}, ids(asc))

	desc, _ := Query(catalog(), Filter{}, Sort{Field: "rating", Desc: true}, PageRequest{})
	assert.Equal(t, []string{"5", "4", "1", "2", "3"}, ids(desc))
}

func TestQuery_Pagination(t *testing.T) {
	got, info := Query(catalog(), Filter{}, Sort{}, PageRequest{Page: 1, Limit: 2})
	assert.Equal(t, []string{"5", "1"}, ids(got))
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.False(t, info.HasPrev)

	got, info = Query(catalog(), Filter{}, Sort{}, PageRequest{Page: 2, Limit: 2})
	assert.Equal(t, []string{"4", "3"}, ids(got))
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	got, info = Query(catalog(), Filter{}, Sort{}, PageRequest{Page: 3, Limit: 2})
	assert.Equal(t, []string{"2"}, ids(got))
	assert.False(t, info.HasNext)
	assert.True(t, info.HasPrev)
}

func TestQuery_PageBeyondEnd(t *testing.T) {
	got, info := Query(catalog(), Filter{}, Sort{}, PageRequest{Page: 9, Limit: 2})

	require.Empty(t, got)
	assert.Equal(t, 9, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.False(t, info.HasNext)
	assert.True(t, info.HasPrev)
}

func TestQuery_LimitClamping(t *testing.T) {
	big := make([]Product, 0, 150)
	for i := 0; i < 150; i++ {
		p := catalog()[0]
		p.ID = string(rune('a'+i/26)) + string(rune('a'+i%26))
		big = append(big, p)
	}

	got, _ := Query(big, Filter{}, Sort{}, PageRequest{Page: 1, Limit: 500})
	assert.Len(t, got, MaxPageLimit)

	got, _ = Query(big, Filter{}, Sort{}, PageRequest{Page: 1, Limit: 0})
	assert.Len(t, got, DefaultPageLimit)
}

func TestQuery_EmptyCatalog(t *testing.T) {
	got, info := Query(nil, Filter{}, Sort{}, PageRequest{})

	assert.Empty(t, got)
	assert.Equal(t, 0, info.TotalProducts)
	assert.Equal(t, 0, info.TotalPages)
	assert.False(t, info.HasNext)
	assert.False(t, info.HasPrev)
}
