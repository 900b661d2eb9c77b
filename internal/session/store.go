package session

import "context"

// Keys under which the session material is persisted. Each key is written
// and removed individually; clearing a session is a sequence of deletes with
// no transactional guarantee.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyTheme        = "theme"
)

// Store is durable key-value persistence for session material. It is
// injected into the Manager so that tests can run against an in-memory fake.
type Store interface {
	// Get returns the value for key, or serviceerr.ErrNotFound when the key
	// is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
