package handler

import "net/http"

// Register mounts every API route on the mux. Literal segments take
// precedence over wildcards, so /api/products/search wins over
// /api/products/{id}.
func (h *Handler) Register(mux *http.ServeMux) {
	// Public catalog.
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/search", h.searchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	// Catalog mutation is not available in this deployment mode.
	mux.HandleFunc("POST /api/products", notImplemented)
	mux.HandleFunc("PUT /api/products/{id}", notImplemented)
	mux.HandleFunc("DELETE /api/products/{id}", notImplemented)

	// Cart requires authentication.
	mux.HandleFunc("GET /api/cart", h.requireAuth(h.getCart))
	mux.HandleFunc("POST /api/cart/add", h.requireAuth(h.addCartItem))
	mux.HandleFunc("PUT /api/cart/update/{productId}", h.requireAuth(h.updateCartItem))
	mux.HandleFunc("DELETE /api/cart/remove/{productId}", h.requireAuth(h.removeCartItem))
	mux.HandleFunc("DELETE /api/cart/clear", h.requireAuth(h.clearCart))

	// Orders require authentication; status updates are admin-only.
	mux.HandleFunc("GET /api/orders", h.requireAuth(h.listOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.requireAuth(h.getOrder))
	mux.HandleFunc("POST /api/orders", h.requireAuth(h.createOrder))
	mux.HandleFunc("PUT /api/orders/{id}/status", h.requireAdmin(h.updateOrderStatus))
}
