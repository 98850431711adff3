// Package storage provides the persisted key-value store backing the
// storefront's durable state: the cart line list, the auth tokens and the
// current user record. Values are opaque strings (JSON at the call sites);
// every write is flushed synchronously so a reload sees the latest state.
package storage

// Well-known keys. These are the only durable artifacts of the storefront.
const (
	KeyCart         = "cart"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyCurrentUser  = "currentUser"
)

// Store is a string-keyed persisted map.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) (string, bool)
	// Set stores the value and flushes it durably before returning.
	Set(key, value string) error
	// Delete removes the key; deleting an absent key is not an error.
	Delete(key string) error
}
