// Package session holds the client's logged-in state: token persistence,
// the login/logout/refresh flows against the DevShare auth endpoints, and
// the proactive refresh used by the background refresher.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/devshare/devshare-cli/internal/serviceerr"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	logoutPath   = "/api/auth/logout"
	refreshPath  = "/api/auth/refresh"
)

// Manager owns the Session lifecycle. All mutations go through the injected
// Store; the Manager itself keeps no token state in memory.
type Manager struct {
	store   Store
	baseURL string
	client  *http.Client

	// refreshMu serialises token refreshes so that a burst of concurrent
	// 401s results in a single refresh call against the server.
	refreshMu sync.Mutex
}

// NewManager returns a Manager calling the API at baseURL. The given client
// must NOT be the authenticated client: auth endpoints attach their own
// bearer credentials.
func NewManager(store Store, baseURL string, client *http.Client) (*Manager, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Manager{
		store:   store,
		baseURL: u.String(),
		client:  client,
	}, nil
}

// RegisterRequest mirrors the POST /api/auth/register payload.
type RegisterRequest struct {
	Username        string `json:"username"`
	Fullname        string `json:"fullname"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register creates a new account. It does not log the user in; the server
// only acknowledges the registration.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) error {
	resp, err := m.postJSON(ctx, registerPath, req, "")
	if err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return decodeAPIError(resp)
	}

	slogctx.Info(ctx, "Registered new account", "username", req.Username)

	return nil
}

// Login exchanges credentials for a token pair and persists it. The caller
// is expected to fetch and cache the user profile afterwards.
func (m *Manager) Login(ctx context.Context, usernameOrEmail, password string) (Session, error) {
	body := struct {
		UsernameOrEmail string `json:"username_or_email"`
		Password        string `json:"password"`
	}{UsernameOrEmail: usernameOrEmail, Password: password}

	resp, err := m.postJSON(ctx, loginPath, body, "")
	if err != nil {
		return Session{}, fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Session{}, decodeAPIError(resp)
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return Session{}, fmt.Errorf("decoding login response: %w", err)
	}

	if err := m.store.Set(ctx, KeyAccessToken, tokens.AccessToken); err != nil {
		return Session{}, fmt.Errorf("storing access token: %w", err)
	}
	if err := m.store.Set(ctx, KeyRefreshToken, tokens.RefreshToken); err != nil {
		return Session{}, fmt.Errorf("storing refresh token: %w", err)
	}

	slogctx.Info(ctx, "Logged in", "user", usernameOrEmail)

	return Session{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

// Logout revokes the access token on the server and destroys the stored
// session. The local session is cleared even when the server call fails.
func (m *Manager) Logout(ctx context.Context) error {
	token, err := m.get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("loading access token: %w", err)
	}

	var revokeErr error
	if token != "" {
		resp, err := m.postJSON(ctx, logoutPath, nil, token)
		if err != nil {
			revokeErr = fmt.Errorf("revoking token: %w", err)
		} else {
			if resp.StatusCode != http.StatusOK {
				revokeErr = decodeAPIError(resp)
			}
			resp.Body.Close()
		}
	}

	if err := m.Clear(ctx); err != nil {
		return errors.Join(revokeErr, err)
	}

	slogctx.Info(ctx, "Logged out")

	return revokeErr
}

// Refresh exchanges the stored refresh token for a new access token and
// persists the result. When no refresh token is stored it returns
// serviceerr.ErrNoRefreshToken without any network call.
//
// stale is the access token the caller believes to be expired; pass the
// empty string to force a refresh. Concurrent callers are serialised, and a
// caller whose stale token was already replaced gets the replacement back
// without a second server round trip.
func (m *Manager) Refresh(ctx context.Context, stale string) (string, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	if stale != "" {
		if cur, err := m.get(ctx, KeyAccessToken); err == nil && cur != "" && cur != stale {
			return cur, nil
		}
	}

	refreshToken, err := m.get(ctx, KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("loading refresh token: %w", err)
	}
	if refreshToken == "" {
		return "", serviceerr.ErrNoRefreshToken
	}

	resp, err := m.postJSON(ctx, refreshPath, nil, refreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("refresh rejected: %w", decodeAPIError(resp))
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return "", fmt.Errorf("decoding refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return "", errors.New("refresh response missing access token")
	}

	if err := m.store.Set(ctx, KeyAccessToken, tokens.AccessToken); err != nil {
		return "", fmt.Errorf("storing access token: %w", err)
	}
	// The server may rotate the refresh token; keep the old one when the
	// response omits it.
	if tokens.RefreshToken != "" {
		if err := m.store.Set(ctx, KeyRefreshToken, tokens.RefreshToken); err != nil {
			return "", fmt.Errorf("storing refresh token: %w", err)
		}
	}

	slogctx.Debug(ctx, "Refreshed access token")

	return tokens.AccessToken, nil
}

// AccessToken returns the stored access token, or the empty string when the
// client is unauthenticated.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.get(ctx, KeyAccessToken)
}

// Current loads the full stored session. It returns serviceerr.ErrNoSession
// when neither token is present.
func (m *Manager) Current(ctx context.Context) (Session, error) {
	access, err := m.get(ctx, KeyAccessToken)
	if err != nil {
		return Session{}, fmt.Errorf("loading access token: %w", err)
	}
	refresh, err := m.get(ctx, KeyRefreshToken)
	if err != nil {
		return Session{}, fmt.Errorf("loading refresh token: %w", err)
	}

	s := Session{AccessToken: access, RefreshToken: refresh}
	if !s.Authenticated() {
		return Session{}, serviceerr.ErrNoSession
	}

	raw, err := m.get(ctx, KeyUser)
	if err != nil {
		return Session{}, fmt.Errorf("loading cached user: %w", err)
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.User); err != nil {
			return Session{}, fmt.Errorf("decoding cached user: %w", err)
		}
	}

	return s, nil
}

// CacheUser persists the user identity next to the tokens.
func (m *Manager) CacheUser(ctx context.Context, user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := m.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}
	return nil
}

// Clear removes the access token, refresh token and cached user. The keys
// are removed one by one; a failure on one key does not stop the others.
func (m *Manager) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUser} {
		if err := m.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Theme returns the stored UI theme preference, defaulting to "light".
func (m *Manager) Theme(ctx context.Context) (string, error) {
	theme, err := m.get(ctx, KeyTheme)
	if err != nil {
		return "", err
	}
	if theme == "" {
		return "light", nil
	}
	return theme, nil
}

// SetTheme stores the UI theme preference.
func (m *Manager) SetTheme(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return m.store.Set(ctx, KeyTheme, theme)
}

// get treats an absent key as an empty value.
func (m *Manager) get(ctx context.Context, key string) (string, error) {
	value, err := m.store.Get(ctx, key)
	if errors.Is(err, serviceerr.ErrNotFound) {
		return "", nil
	}
	return value, err
}

// postJSON issues a POST with an optional JSON body and optional bearer
// token. Auth endpoints never go through the authenticated transport.
func (m *Manager) postJSON(ctx context.Context, path string, body any, bearer string) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	return resp, nil
}

// decodeAPIError turns a non-2xx response into a serviceerr.APIError,
// consuming the body.
func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	return &serviceerr.APIError{StatusCode: resp.StatusCode, Message: payload.Message}
}
