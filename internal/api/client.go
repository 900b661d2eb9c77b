// Package api is the typed client for the DevShare REST API. All requests
// are expected to go through the authenticated transport; the package itself
// knows nothing about tokens.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/devshare/devshare-cli/internal/serviceerr"
)

// Client calls the DevShare API at a fixed base URL.
type Client struct {
	baseURL string
	client  *http.Client

	// cache holds recently fetched feed pages and profiles. Mutating calls
	// flush it; entries otherwise expire on their own.
	cache *gocache.Cache
}

// NewClient returns a Client using the given http.Client, which should carry
// the authenticated transport. A cacheTTL of zero disables response caching.
func NewClient(baseURL string, client *http.Client, cacheTTL time.Duration) (*Client, error) {
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

	c := &Client{
		baseURL: strings.TrimSuffix(u.String(), "/"),
		client:  client,
	}
	if cacheTTL > 0 {
		c.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}

	return c, nil
}

// Health checks the API health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil, nil)
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out (when non-nil). Non-2xx responses become APIErrors.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return req, nil
}

// do executes the request and maps non-2xx responses to errors, consuming
// and closing the body in the error case.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		// The transport has already spent its refresh-and-retry by the time
		// a 401 gets here; the session is gone for good.
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %w", serviceerr.ErrSessionExpired, decodeAPIError(resp))
		}
		return nil, decodeAPIError(resp)
	}

	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	return &serviceerr.APIError{StatusCode: resp.StatusCode, Message: payload.Message}
}

func (c *Client) cacheGet(key string, out any) bool {
	if c.cache == nil {
		return false
	}
	raw, ok := c.cache.Get(key)
	if !ok {
		return false
	}
	data, ok := raw.([]byte)
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (c *Client) cacheSet(key string, value any) {
	if c.cache == nil {
		return
	}
	if data, err := json.Marshal(value); err == nil {
		c.cache.SetDefault(key, data)
	}
}

// flushCache drops all cached responses. Called after any mutation so the
// next read reflects it.
func (c *Client) flushCache() {
	if c.cache != nil {
		c.cache.Flush()
	}
}
