package transport_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devshare/devshare-cli/internal/events"
	"github.com/devshare/devshare-cli/internal/session"
	sessionmock "github.com/devshare/devshare-cli/internal/session/mock"
	"github.com/devshare/devshare-cli/internal/transport"
)

// newStack wires a real session manager on the mock store behind the
// authenticated transport, with separate servers for the API and the auth
// endpoints.
func newStack(t *testing.T, store *sessionmock.Store, apiURL, authURL string) (*http.Client, *events.Bus) {
	t.Helper()

	manager, err := session.NewManager(store, authURL, &http.Client{})
	require.NoError(t, err)

	bus := events.NewBus()

	return &http.Client{
		Transport: transport.NewAuthTransport(manager, bus, nil),
	}, bus
}

func countEvents(bus *events.Bus, kind events.Kind) *atomic.Int64 {
	var count atomic.Int64

	bus.Subscribe(func(ev events.Event) {
		if ev.Kind == kind {
			count.Add(1)
		}
	})

	return &count
}

func TestAuthTransport(t *testing.T) {
	t.Run("valid token makes exactly one call and keeps the response intact", func(t *testing.T) {
		var calls atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "Bearer token-A", r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
			w.Header().Set("X-Custom", "kept")
			w.WriteHeader(http.StatusTeapot)
			fmt.Fprint(w, "body as sent")
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, "token-A"),
			sessionmock.WithValue(session.KeyRefreshToken, "refresh-A"),
		)
		client, _ := newStack(t, store, srv.URL, srv.URL)

		resp, err := client.Get(srv.URL + "/api/feed")
		require.NoError(t, err)

		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, int64(1), calls.Load())
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		assert.Equal(t, "kept", resp.Header.Get("X-Custom"))
		assert.Equal(t, "body as sent", string(body))
	})

	t.Run("401 then refresh success retries once and returns the retry response", func(t *testing.T) {
		var apiCalls, refreshCalls atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/auth/refresh" {
				refreshCalls.Add(1)
				assert.Equal(t, "Bearer refresh-A", r.Header.Get("Authorization"))
				fmt.Fprint(w, `{"access_token": "token-B", "refresh_token": "refresh-B"}`)

				return
			}

			apiCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer token-B" {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			fmt.Fprint(w, "fresh data")
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, "token-A"),
			sessionmock.WithValue(session.KeyRefreshToken, "refresh-A"),
		)
		client, bus := newStack(t, store, srv.URL, srv.URL)
		refreshed := countEvents(bus, events.SessionRefreshed)

		resp, err := client.Get(srv.URL + "/api/feed")
		require.NoError(t, err)

		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, int64(2), apiCalls.Load())
		assert.Equal(t, int64(1), refreshCalls.Load())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "fresh data", string(body))
		assert.Equal(t, "token-B", store.TGet(session.KeyAccessToken))
		assert.Equal(t, "refresh-B", store.TGet(session.KeyRefreshToken))
		assert.Equal(t, int64(1), refreshed.Load())
	})

	t.Run("401 without refresh token returns the original 401 and clears the store", func(t *testing.T) {
		var apiCalls, authCalls atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/auth/") {
				authCalls.Add(1)

				return
			}

			apiCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message": "token expired"}`)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, "token-A"),
			sessionmock.WithValue(session.KeyUser, `{"id": "u1"}`),
		)
		client, bus := newStack(t, store, srv.URL, srv.URL)
		expired := countEvents(bus, events.SessionExpired)

		resp, err := client.Get(srv.URL + "/api/feed")
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.Equal(t, int64(1), apiCalls.Load())
		assert.Equal(t, int64(0), authCalls.Load())
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.False(t, store.THas(session.KeyAccessToken))
		assert.False(t, store.THas(session.KeyRefreshToken))
		assert.False(t, store.THas(session.KeyUser))
		assert.Equal(t, int64(1), expired.Load())
	})

	t.Run("refresh rotating only the access token keeps the refresh token", func(t *testing.T) {
		var gotRetryAuth string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/api/auth/refresh":
				fmt.Fprint(w, `{"access_token": "token-NEW"}`)
			case r.Header.Get("Authorization") == "Bearer token-NEW":
				gotRetryAuth = r.Header.Get("Authorization")
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusUnauthorized)
			}
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, "token-A"),
			sessionmock.WithValue(session.KeyRefreshToken, "refresh-A"),
		)
		client, _ := newStack(t, store, srv.URL, srv.URL)

		resp, err := client.Get(srv.URL + "/api/feed")
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "Bearer token-NEW", gotRetryAuth)
		assert.Equal(t, "token-NEW", store.TGet(session.KeyAccessToken))
		assert.Equal(t, "refresh-A", store.TGet(session.KeyRefreshToken))
	})

	t.Run("no tokens at all sends no Authorization header and expires cleanly", func(t *testing.T) {
		var sawAuthHeader atomic.Bool

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Header["Authorization"]; ok {
				sawAuthHeader.Store(true)
			}

			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore()
		client, bus := newStack(t, store, srv.URL, srv.URL)
		expired := countEvents(bus, events.SessionExpired)

		resp, err := client.Get(srv.URL + "/api/feed")
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.False(t, sawAuthHeader.Load())
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, int64(1), expired.Load())
	})

	t.Run("retry replays the request body", func(t *testing.T) {
		var bodies []string
		var mu sync.Mutex

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/auth/refresh" {
				fmt.Fprint(w, `{"access_token": "token-B"}`)

				return
			}

			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(body))
			mu.Unlock()

			if r.Header.Get("Authorization") != "Bearer token-B" {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, "token-A"),
			sessionmock.WithValue(session.KeyRefreshToken, "refresh-A"),
		)
		client, _ := newStack(t, store, srv.URL, srv.URL)

		resp, err := client.Post(srv.URL+"/api/posts", "application/json", strings.NewReader(`{"title": "x"}`))
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, []string{`{"title": "x"}`, `{"title": "x"}`}, bodies)
	})

	t.Run("non-401 errors pass through without touching the session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, "token-A"),
			sessionmock.WithValue(session.KeyRefreshToken, "refresh-A"),
		)
		client, bus := newStack(t, store, srv.URL, srv.URL)
		expired := countEvents(bus, events.SessionExpired)

		resp, err := client.Get(srv.URL + "/api/feed")
		require.NoError(t, err)

		defer resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "token-A", store.TGet(session.KeyAccessToken))
		assert.Equal(t, int64(0), expired.Load())
	})

	t.Run("concurrent 401s trigger a single refresh", func(t *testing.T) {
		var refreshCalls atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/auth/refresh" {
				refreshCalls.Add(1)
				fmt.Fprint(w, `{"access_token": "token-B"}`)

				return
			}

			if r.Header.Get("Authorization") != "Bearer token-B" {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}
		}))
		defer srv.Close()

		store := sessionmock.NewInMemStore(
			sessionmock.WithValue(session.KeyAccessToken, "token-A"),
			sessionmock.WithValue(session.KeyRefreshToken, "refresh-A"),
		)
		client, _ := newStack(t, store, srv.URL, srv.URL)

		var wg sync.WaitGroup
		for range 8 {
			wg.Go(func() {
				resp, err := client.Get(srv.URL + "/api/feed")
				assert.NoError(t, err)

				if resp != nil {
					assert.Equal(t, http.StatusOK, resp.StatusCode)
					resp.Body.Close()
				}
			})
		}
		wg.Wait()

		assert.Equal(t, int64(1), refreshCalls.Load())
		assert.Equal(t, "token-B", store.TGet(session.KeyAccessToken))
	})

	t.Run("access token load failure surfaces as an error", func(t *testing.T) {
		store := sessionmock.NewInMemStore(
			sessionmock.WithGetError(assert.AnError),
		)

		client, _ := newStack(t, store, "http://127.0.0.1:1", "http://127.0.0.1:1")

		_, err := client.Get("http://127.0.0.1:1/api/feed") //nolint:bodyclose
		assert.ErrorIs(t, err, assert.AnError)
	})
}
