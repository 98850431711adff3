package session

import (
	"log/slog"

	"github.com/Valency12/el-xolito-storefront/internal/storage"
)

// Tokens implements backend.TokenSource on top of the persisted store, so a
// restart finds the user still logged in.
type Tokens struct {
	store  storage.Store
	logger *slog.Logger
}

// NewTokens creates a token source over the store.
func NewTokens(store storage.Store, logger *slog.Logger) *Tokens {
	return &Tokens{store: store, logger: logger}
}

// AccessToken returns the stored access token, empty if logged out.
func (t *Tokens) AccessToken() string {
	v, _ := t.store.Get(storage.KeyAccessToken)
	return v
}

// RefreshToken returns the stored refresh token, empty if logged out.
func (t *Tokens) RefreshToken() string {
	v, _ := t.store.Get(storage.KeyRefreshToken)
	return v
}

// StoreAccessToken persists a freshly refreshed access token.
func (t *Tokens) StoreAccessToken(token string) error {
	return t.store.Set(storage.KeyAccessToken, token)
}

// ClearSession drops all session keys. Called when a refresh fails; the cart
// is deliberately untouched, a logged-out user keeps their cart.
func (t *Tokens) ClearSession() {
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyCurrentUser} {
		if err := t.store.Delete(key); err != nil {
			t.logger.Warn("failed to clear session key", "key", key, "error", err)
		}
	}
}
