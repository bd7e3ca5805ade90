package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/almasdimas/shop-api/internal/domain/auth"
)

type identityKey struct{}

// identityFrom returns the authenticated caller stored by requireAuth.
func identityFrom(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey{}).(*auth.Identity)
	return id
}

// apiKeyFrom extracts the raw API key from the request. Both
// "Authorization: Bearer <key>" and the legacy "api_key" header are
// accepted.
func apiKeyFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if key, ok := strings.CutPrefix(h, "Bearer "); ok {
			return key
		}
	}
	return r.Header.Get("api_key")
}

// requireAuth authenticates the request's API key and stores the resolved
// identity in the context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := h.auth.Authenticate(r.Context(), apiKeyFrom(r))
		if err != nil {
			respondFail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	}
}

// requireAdmin authenticates and additionally requires the admin flag.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if id := identityFrom(r.Context()); id == nil || !id.Admin {
			respondFail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}
