// Package transport implements the authenticated HTTP round tripper used by
// every API call: it attaches the stored bearer token and transparently
// recovers from token expiry with a single refresh-and-retry.
package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	slogctx "github.com/veqryn/slog-context"

	"github.com/devshare/devshare-cli/internal/events"
)

// TokenSource supplies and renews the bearer credential.
// *session.Manager satisfies it.
type TokenSource interface {
	// AccessToken returns the current access token, or the empty string
	// when the client is unauthenticated.
	AccessToken(ctx context.Context) (string, error)

	// Refresh exchanges the refresh token for a new access token. stale is
	// the token that was rejected; an error means the session is beyond
	// recovery.
	Refresh(ctx context.Context, stale string) (string, error)

	// Clear destroys the stored session.
	Clear(ctx context.Context) error
}

// AuthTransport is an http.RoundTripper wrapping Next.
//
// Behaviour on a 401 response: refresh exactly once; on success the original
// request is re-issued once with the new token and that response is returned
// regardless of its status. On refresh failure the session is cleared,
// events.SessionExpired is published, and the ORIGINAL 401 response is
// returned; the caller must treat it as terminal.
type AuthTransport struct {
	Tokens TokenSource
	Bus    *events.Bus
	Next   http.RoundTripper
}

func NewAuthTransport(tokens TokenSource, bus *events.Bus, next http.RoundTripper) *AuthTransport {
	return &AuthTransport{Tokens: tokens, Bus: bus, Next: next}
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, err := t.Tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := t.next().RoundTrip(t.authorize(req, token))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	newToken, refreshErr := t.Tokens.Refresh(ctx, token)
	if refreshErr != nil {
		slogctx.Warn(ctx, "Token refresh failed, clearing session", "error", refreshErr)
		if err := t.Tokens.Clear(ctx); err != nil {
			slogctx.Error(ctx, "Failed to clear session", "error", err)
		}
		t.publish(events.SessionExpired)

		return resp, nil
	}

	retry, ok := t.replay(req, newToken)
	if !ok {
		// The body was consumed and cannot be rebuilt; the 401 stands.
		slogctx.Warn(ctx, "Cannot replay request after token refresh")
		return resp, nil
	}

	// The original response is replaced by the retry's; release it.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	t.publish(events.SessionRefreshed)

	return t.next().RoundTrip(retry)
}

// authorize clones req and sets the Authorization header from the stored
// token, leaving every other caller-supplied header untouched. With no token
// stored the request goes out unauthenticated.
func (t *AuthTransport) authorize(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	if out.Header.Get("X-Request-Id") == "" {
		out.Header.Set("X-Request-Id", uuid.NewString())
	}

	return out
}

// replay rebuilds the original request for the single retry. Requests with a
// one-shot body (no GetBody) cannot be replayed.
func (t *AuthTransport) replay(req *http.Request, token string) (*http.Request, bool) {
	out := t.authorize(req, token)

	if req.Body == nil {
		return out, true
	}
	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	out.Body = body

	return out, true
}

func (t *AuthTransport) publish(kind events.Kind) {
	if t.Bus != nil {
		t.Bus.Publish(events.Event{Kind: kind})
	}
}

func (t *AuthTransport) next() http.RoundTripper {
	if t.Next != nil {
		return t.Next
	}
	return http.DefaultTransport
}
