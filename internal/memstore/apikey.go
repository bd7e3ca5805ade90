package memstore

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/almasdimas/shop-api/internal/domain/auth"
)

// KeyRepo implements auth.Repository over the shared Store.
type KeyRepo struct {
	s *Store
}

var _ auth.Repository = (*KeyRepo)(nil)

// APIKeys returns the API key repository view of the store.
func (s *Store) APIKeys() *KeyRepo {
	return &KeyRepo{s: s}
}

// FindByHash looks up an API key identity by its HMAC-SHA256 hash.
func (r *KeyRepo) FindByHash(ctx context.Context, hash string) (*auth.Identity, error) {
	if !inTx(ctx) {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}

	id, ok := r.s.apikeys[hash]
	if !ok {
		return nil, errors.New("api key not found")
	}
	return &id, nil
}
