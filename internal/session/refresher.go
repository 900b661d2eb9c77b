package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/devshare/devshare-cli/internal/serviceerr"
)

// Signature algorithms accepted when inspecting the access token. The token
// is never verified client-side; only its expiry claim is read.
var tokenSigAlgs = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.EdDSA,
}

// RefreshIfExpiring refreshes the access token when it expires within
// margin. It returns serviceerr.ErrNoSession when nothing is stored, so a
// long-running refresher can keep idling until someone logs in.
func (m *Manager) RefreshIfExpiring(ctx context.Context, margin time.Duration) error {
	token, err := m.get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("loading access token: %w", err)
	}
	if token == "" {
		return serviceerr.ErrNoSession
	}

	if !shouldRefresh(ctx, token, margin) {
		return nil
	}

	if _, err := m.Refresh(ctx, token); err != nil {
		return err
	}

	return nil
}

// shouldRefresh reports whether the token's exp claim falls within margin.
// An unparsable token is treated as expiring: refreshing it is harmless and
// the server is the authority on validity anyway.
func shouldRefresh(ctx context.Context, token string, margin time.Duration) bool {
	expiry, err := tokenExpiry(token)
	if err != nil {
		slogctx.Debug(ctx, "Could not read token expiry, refreshing", "error", err)
		return true
	}

	return time.Until(expiry) < margin
}

// tokenExpiry extracts the exp claim without verifying the signature.
func tokenExpiry(token string) (time.Time, error) {
	parsed, err := jwt.ParseSigned(token, tokenSigAlgs)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing access token: %w", err)
	}

	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return time.Time{}, fmt.Errorf("reading token claims: %w", err)
	}
	if claims.Expiry == nil {
		return time.Time{}, errors.New("access token has no expiry claim")
	}

	return claims.Expiry.Time(), nil
}
