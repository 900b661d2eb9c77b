package session_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devshare/devshare-cli/internal/serviceerr"
	"github.com/devshare/devshare-cli/internal/session"
	sessionmock "github.com/devshare/devshare-cli/internal/session/mock"
)

// signedToken builds an HS256 JWT whose exp lies at the given offset from
// now. The signing key is irrelevant: only the claim is read back.
func signedToken(t *testing.T, expIn time.Duration) string {
	t.Helper()

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte("0123456789abcdef0123456789abcdef")},
		nil,
	)
	require.NoError(t, err)

	token, err := jwt.Signed(signer).
		Claims(jwt.Claims{Expiry: jwt.NewNumericDate(time.Now().Add(expIn))}).
		Serialize()
	require.NoError(t, err)

	return token
}

func TestRefreshIfExpiring(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		manager := newManager(t, sessionmock.NewInMemStore(), "http://localhost:5000")

		err := manager.RefreshIfExpiring(t.Context(), time.Minute)
		assert.ErrorIs(t, err, serviceerr.ErrNoSession)
	})

	t.Run("token comfortably valid is left alone", func(t *testing.T) {
		var calls atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			calls.Add(1)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, signedToken(t, time.Hour)),
			sessionmock.WithValue(session.KeyRefreshToken, "R"),
		)
		manager := newManager(t, store, srv.URL)

		require.NoError(t, manager.RefreshIfExpiring(t.Context(), 5*time.Minute))
		assert.Equal(t, int64(0), calls.Load())
	})

	t.Run("token inside the margin is refreshed", func(t *testing.T) {
		var calls atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			require.Equal(t, "/api/auth/refresh", r.URL.Path)
			fmt.Fprint(w, `{"access_token": "A2"}`)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, signedToken(t, 2*time.Minute)),
			sessionmock.WithValue(session.KeyRefreshToken, "R"),
		)
		manager := newManager(t, store, srv.URL)

		require.NoError(t, manager.RefreshIfExpiring(t.Context(), 5*time.Minute))
		assert.Equal(t, int64(1), calls.Load())
		assert.Equal(t, "A2", store.TGet(session.KeyAccessToken))
	})

	t.Run("expired token is refreshed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"access_token": "A2"}`)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, signedToken(t, -time.Minute)),
			sessionmock.WithValue(session.KeyRefreshToken, "R"),
		)
		manager := newManager(t, store, srv.URL)

		require.NoError(t, manager.RefreshIfExpiring(t.Context(), 5*time.Minute))
		assert.Equal(t, "A2", store.TGet(session.KeyAccessToken))
	})

	t.Run("opaque token is treated as expiring", func(t *testing.T) {
		var calls atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			fmt.Fprint(w, `{"access_token": "A2"}`)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, "not-a-jwt"),
			sessionmock.WithValue(session.KeyRefreshToken, "R"),
		)
		manager := newManager(t, store, srv.URL)

		require.NoError(t, manager.RefreshIfExpiring(t.Context(), 5*time.Minute))
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("propagates a rejected refresh", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message": "Token has been revoked"}`)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, signedToken(t, -time.Minute)),
			sessionmock.WithValue(session.KeyRefreshToken, "revoked"),
		)
		manager := newManager(t, store, srv.URL)

		err := manager.RefreshIfExpiring(t.Context(), 5*time.Minute)

		_, ok := serviceerr.AsAPIError(err)
		assert.True(t, ok)
	})
}
