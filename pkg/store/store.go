package store

import "context"

// Store is the thin adapter over the shared key-value store. Implementations
// must be safe for concurrent use; the authorization core performs no
// in-process locking around store calls.
type Store interface {
	// Get returns the value for key. The second return is false when the key
	// does not exist; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Keys returns all keys matching a glob-style pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Delete removes a key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
