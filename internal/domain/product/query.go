package product

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter narrows the catalog listing. Zero values mean "no constraint".
type Filter struct {
	// Category matches the product category exactly.
	Category string
	// MinPrice and MaxPrice are inclusive bounds.
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// Search is a case-insensitive substring match over name and description.
	Search string
	// SearchCategory additionally matches the search term against the
	// category. Used by the dedicated search endpoint only.
	SearchCategory bool
}

// Sort orders the catalog listing by a single scalar field.
type Sort struct {
	Field string // name, price, rating, stockQuantity, createdAt
	Desc  bool
}

// PageRequest selects a 1-based page of a fixed size.
type PageRequest struct {
	Page  int
	Limit int
}

// PageInfo describes the position of a returned page within the full
// filtered result set. Offsets are computed, not cursor-based, so results
// can drift when the catalog changes between pages of the same query.
type PageInfo struct {
	CurrentPage   int
	TotalPages    int
	TotalProducts int
	HasNext       bool
	HasPrev       bool
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Query filters, sorts, and paginates a catalog snapshot in memory. The sort
// is stable with a secondary tie-break on product ID so pagination is
// deterministic for equal field values.
func Query(products []Product, f Filter, s Sort, p PageRequest) ([]Product, PageInfo) {
	matched := make([]Product, 0, len(products))
	for _, prod := range products {
		if matches(prod, f) {
			matched = append(matched, prod)
		}
	}

	sortProducts(matched, s)

	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}

	total := len(matched)
	totalPages := (total + p.Limit - 1) / p.Limit
	start := (p.Page - 1) * p.Limit
	end := start + p.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	info := PageInfo{
		CurrentPage:   p.Page,
		TotalPages:    totalPages,
		TotalProducts: total,
		HasNext:       end < total,
		HasPrev:       start > 0,
	}
	return matched[start:end], info
}

func matches(p Product, f Filter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!(f.SearchCategory && strings.Contains(strings.ToLower(p.Category), term)) {
			return false
		}
	}
	return true
}

func sortProducts(products []Product, s Sort) {
	cmp := comparator(s.Field)
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if s.Desc {
			a, b = b, a
		}
		switch cmp(a, b) {
		case -1:
			return true
		case 1:
			return false
		}
		// Tie-break on ID keeps pagination deterministic.
		return a.ID < b.ID
	})
}

// comparator returns a three-way compare for the given sort field.
// Unknown fields fall back to name.
func comparator(field string) func(a, b Product) int {
	switch field {
	case "price":
		return func(a, b Product) int { return a.Price.Cmp(b.Price) }
	case "rating":
		return func(a, b Product) int { return a.Rating.Cmp(b.Rating) }
	case "stockQuantity":
		return func(a, b Product) int { return intCmp(a.StockQuantity, b.StockQuantity) }
	case "createdAt":
		return func(a, b Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b Product) int { return strings.Compare(a.Name, b.Name) }
	}
}

func intCmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
