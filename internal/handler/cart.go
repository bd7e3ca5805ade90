package handler

import (
	"net/http"
	"time"

	"github.com/almasdimas/shop-api/internal/domain/cart"
	"github.com/almasdimas/shop-api/internal/domain/product"
)

type cartItemDTO struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     float64         `json:"price"`
	Product   *lineProductDTO `json:"product,omitempty"`
}

type cartDTO struct {
	UserID    string        `json:"userId"`
	Items     []cartItemDTO `json:"items"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
}

func (h *Handler) toCartDTO(c *cart.Cart, prods map[string]product.Product) cartDTO {
	items := make([]cartItemDTO, len(c.Items))
	for i, item := range c.Items {
		items[i] = cartItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
			Product:   h.toLineProductDTO(prods, item.ProductID),
		}
	}
	dto := cartDTO{UserID: c.UserID, Items: items}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		dto.UpdatedAt = &t
	}
	return dto
}

// respondCart joins current catalog details onto the cart lines and writes
// the cart envelope.
func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, c *cart.Cart) {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	prods, err := h.lineProducts(r.Context(), ids)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.toCartDTO(c, prods))
}

// getCart serves GET /api/cart. A user without a cart document gets an
// empty cart shape.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	c, err := h.carts.Get(r.Context(), id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, r, c)
}

// addCartItem serves POST /api/cart/add.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == "" {
		respondFail(w, http.StatusBadRequest, "productId is required")
		return
	}

	c, err := h.carts.AddItem(r.Context(), id.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, r, c)
}

// updateCartItem serves PUT /api/cart/update/{productId}.
func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), id.UserID, r.PathValue("productId"), req.Quantity)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, r, c)
}

// removeCartItem serves DELETE /api/cart/remove/{productId}. Removing an
// absent line is not an error.
func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	c, err := h.carts.RemoveItem(r.Context(), id.UserID, r.PathValue("productId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, r, c)
}

// clearCart serves DELETE /api/cart/clear.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	c, err := h.carts.Clear(r.Context(), id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondCart(w, r, c)
}
