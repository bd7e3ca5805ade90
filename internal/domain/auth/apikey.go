package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned for missing, unknown, or inactive API keys.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the resolved caller behind a validated API key.
type Identity struct {
	KeyID   string
	KeyHash string
	UserID  string
	Name    string
	Admin   bool
}

// Repository provides lookup of API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*Identity, error)
}

// Authenticator validates raw API keys by HMAC hashing them with a
// server-side pepper and looking up the hash.
type Authenticator struct {
	keys   Repository
	pepper []byte
}

// NewAuthenticator creates an Authenticator with the given key repository
// and HMAC pepper.
func NewAuthenticator(keys Repository, pepper []byte) *Authenticator {
	return &Authenticator{keys: keys, pepper: pepper}
}

// HashKey computes the hex-encoded HMAC-SHA256 of a raw API key. Seeding
// tools use the same derivation as authentication.
func HashKey(key string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate resolves a raw API key to an Identity. The stored hash is
// compared in constant time to guard against timing side-channels even
// though the lookup itself already matched.
func (a *Authenticator) Authenticate(ctx context.Context, key string) (*Identity, error) {
	if key == "" {
		return nil, ErrUnauthorized
	}

	mac := hmac.New(sha256.New, a.pepper)
	mac.Write([]byte(key))
	hash := mac.Sum(nil)

	id, err := a.keys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		return nil, ErrUnauthorized
	}

	stored, err := hex.DecodeString(id.KeyHash)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, ErrUnauthorized
	}

	return id, nil
}
