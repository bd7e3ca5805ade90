// Package handler implements the HTTP surface of the shop API. Every
// response uses a uniform envelope: {success, data?, message?, pagination?}.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/almasdimas/shop-api/internal/domain/auth"
	"github.com/almasdimas/shop-api/internal/domain/cart"
	"github.com/almasdimas/shop-api/internal/domain/order"
	"github.com/almasdimas/shop-api/internal/domain/product"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the REST API, delegating business logic to the domain
// services and repositories.
type Handler struct {
	products     product.Repository
	carts        *cart.Service
	orders       *order.Service
	auth         *auth.Authenticator
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	carts *cart.Service,
	orders *order.Service,
	authenticator *auth.Authenticator,
) *Handler {
	return &Handler{
		products:     products,
		carts:        carts,
		orders:       orders,
		auth:         authenticator,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// pagination is the page position block attached to catalog listings.
type pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProducts int  `json:"totalProducts"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

// envelope is the uniform response shape.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	SearchTerm string      `json:"searchTerm,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: msg, Data: data})
}

func respondFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

// respondError maps domain errors to HTTP statuses. Unexpected errors are
// logged with full detail and surfaced with a generic message.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ise *product.InsufficientStockError
		ivs *order.InvalidStatusError
		ilt *order.IllegalTransitionError
	)
	switch {
	case errors.Is(err, product.ErrNotFound):
		respondFail(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, cart.ErrItemNotFound):
		respondFail(w, http.StatusNotFound, "Item not found in cart")
	case errors.Is(err, order.ErrNotFound):
		respondFail(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondFail(w, http.StatusBadRequest, "Quantity must be greater than 0")
	case errors.Is(err, order.ErrEmptyCart):
		respondFail(w, http.StatusBadRequest, "Cart is empty")
	case errors.As(err, &ise):
		respondFail(w, http.StatusBadRequest, ise.Error())
	case errors.As(err, &ivs):
		respondFail(w, http.StatusBadRequest, ivs.Error())
	case errors.As(err, &ilt):
		respondFail(w, http.StatusBadRequest, ilt.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		respondFail(w, http.StatusUnauthorized, "Unauthorized")
	default:
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondFail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func notImplemented(w http.ResponseWriter, _ *http.Request) {
	respondFail(w, http.StatusNotImplemented, "Feature not implemented in development mode")
}
