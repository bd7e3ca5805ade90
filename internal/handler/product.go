package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/almasdimas/shop-api/internal/domain/product"
)

// productDTO is the JSON representation of a catalog product. Prices are
// rendered as JSON numbers.
type productDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice,omitempty"`
	Category      string   `json:"category"`
	Images        []string `json:"images"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	StockQuantity int      `json:"stockQuantity"`
	Status        string   `json:"status"`
}

// imageURL resolves a stored image path against the configured base URL.
// Absolute URLs are returned untouched.
func (h *Handler) imageURL(img string) string {
	if strings.Contains(img, "://") {
		return img
	}
	return h.imageBaseURL + img
}

func (h *Handler) toProductDTO(p product.Product) productDTO {
	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		images[i] = h.imageURL(img)
	}
	return productDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.InexactFloat64(),
		OriginalPrice: p.OriginalPrice.InexactFloat64(),
		Category:      p.Category,
		Images:        images,
		Rating:        p.Rating.InexactFloat64(),
		ReviewCount:   p.ReviewCount,
		StockQuantity: p.StockQuantity,
		Status:        string(p.Status),
	}
}

func (h *Handler) toProductDTOs(products []product.Product) []productDTO {
	out := make([]productDTO, len(products))
	for i, p := range products {
		out[i] = h.toProductDTO(p)
	}
	return out
}

// listProducts serves GET /api/products with filtering, sorting, and
// pagination over a full catalog scan.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, sort, page, err := parseCatalogQuery(r, false)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}

	all, err := h.products.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items, info := product.Query(all, filter, sort, page)
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       h.toProductDTOs(items),
		Pagination: toPagination(info),
	})
}

// searchProducts serves GET /api/products/search. The q parameter is
// required; the term additionally matches the category.
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondFail(w, http.StatusBadRequest, "Search term required")
		return
	}

	filter, sort, page, err := parseCatalogQuery(r, true)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Search = q
	filter.SearchCategory = true

	all, err := h.products.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items, info := product.Query(all, filter, sort, page)
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       h.toProductDTOs(items),
		SearchTerm: q,
		Pagination: toPagination(info),
	})
}

// getProduct serves GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.toProductDTO(*p))
}

func toPagination(info product.PageInfo) *pagination {
	return &pagination{
		CurrentPage:   info.CurrentPage,
		TotalPages:    info.TotalPages,
		TotalProducts: info.TotalProducts,
		HasNext:       info.HasNext,
		HasPrev:       info.HasPrev,
	}
}

// parseCatalogQuery reads the shared catalog query parameters. The search
// endpoint passes skipSearch=true and sets the term itself from q.
func parseCatalogQuery(r *http.Request, skipSearch bool) (product.Filter, product.Sort, product.PageRequest, error) {
	query := r.URL.Query()

	var filter product.Filter
	filter.Category = query.Get("category")
	if !skipSearch {
		filter.Search = query.Get("search")
	}

	if v := query.Get("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, product.Sort{}, product.PageRequest{}, errors.New("invalid minPrice")
		}
		filter.MinPrice = &d
	}
	if v := query.Get("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, product.Sort{}, product.PageRequest{}, errors.New("invalid maxPrice")
		}
		filter.MaxPrice = &d
	}

	sort := product.Sort{
		Field: query.Get("sortBy"),
		Desc:  query.Get("sortOrder") == "desc",
	}

	page := product.PageRequest{Page: 1, Limit: product.DefaultPageLimit}
	if v := query.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, sort, page, errors.New("invalid page")
		}
		page.Page = n
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, sort, page, errors.New("invalid limit")
		}
		page.Limit = n
	}

	return filter, sort, page, nil
}
