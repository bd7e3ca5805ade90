package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/almasdimas/shop-api/internal/domain/order"
	"github.com/almasdimas/shop-api/internal/domain/product"
)

// lineProductDTO carries catalog details for a cart or order line, joined
// in for display. Nil when the product has left the catalog; the line's
// own snapshot price still stands.
type lineProductDTO struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

type orderItemDTO struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     float64         `json:"price"`
	Product   *lineProductDTO `json:"product,omitempty"`
}

// lineProducts fetches current catalog entries for the given line product
// IDs in one batch, keyed by ID. Missing products are simply absent.
func (h *Handler) lineProducts(ctx context.Context, ids []string) (map[string]product.Product, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	prods, err := h.products.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	out := make(map[string]product.Product, len(prods))
	for _, p := range prods {
		out[p.ID] = p
	}
	return out, nil
}

func (h *Handler) toLineProductDTO(prods map[string]product.Product, id string) *lineProductDTO {
	p, ok := prods[id]
	if !ok {
		return nil
	}
	dto := &lineProductDTO{
		Name:  p.Name,
		Price: p.Price.InexactFloat64(),
	}
	if len(p.Images) > 0 {
		dto.Image = h.imageURL(p.Images[0])
	}
	return dto
}

type orderDTO struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Items           []orderItemDTO `json:"items"`
	TotalAmount     float64        `json:"totalAmount"`
	ShippingAddress string         `json:"shippingAddress,omitempty"`
	BillingAddress  string         `json:"billingAddress,omitempty"`
	PaymentStatus   string         `json:"paymentStatus"`
	OrderStatus     string         `json:"orderStatus"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func (h *Handler) toOrderDTO(o *order.Order, prods map[string]product.Product) orderDTO {
	items := make([]orderItemDTO, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
			Product:   h.toLineProductDTO(prods, item.ProductID),
		}
	}
	return orderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PaymentStatus:   string(o.PaymentStatus),
		OrderStatus:     string(o.Status),
		CreatedAt:       o.CreatedAt,
	}
}

// listOrders serves GET /api/orders. Regular callers see their own orders;
// admin callers see every order.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	orders, err := h.orders.List(r.Context(), id.UserID, id.Admin)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var ids []string
	for i := range orders {
		for _, item := range orders[i].Items {
			ids = append(ids, item.ProductID)
		}
	}
	prods, err := h.lineProducts(r.Context(), ids)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]orderDTO, len(orders))
	for i := range orders {
		out[i] = h.toOrderDTO(&orders[i], prods)
	}
	respondData(w, http.StatusOK, out)
}

// getOrder serves GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	o, err := h.orders.Get(r.Context(), r.PathValue("id"), id.UserID, id.Admin)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	prods, err := h.orderProducts(r.Context(), o)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.toOrderDTO(o, prods))
}

func (h *Handler) orderProducts(ctx context.Context, o *order.Order) (map[string]product.Product, error) {
	ids := make([]string, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.ProductID
	}
	return h.lineProducts(ctx, ids)
}

// createOrder serves POST /api/orders: checkout of the caller's cart.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req struct {
		ShippingAddress string `json:"shippingAddress"`
		BillingAddress  string `json:"billingAddress"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			respondFail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		UserID:          id.UserID,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	prods, err := h.orderProducts(r.Context(), o)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusCreated, "Order created successfully", h.toOrderDTO(o, prods))
}

// updateOrderStatus serves PUT /api/orders/{id}/status (admin only).
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	prods, err := h.orderProducts(r.Context(), o)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Order status updated successfully", h.toOrderDTO(o, prods))
}
