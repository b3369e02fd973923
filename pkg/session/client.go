package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// package-level logger for pkg/session; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/session. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// APIError is a non-2xx response decoded into the server's error envelope.
type APIError struct {
	Status  int      `json:"-"`
	Code    string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is an authenticated pawferry API client. It holds a token pair in
// its TokenStore and transparently refreshes the pair once when a request
// comes back 403, then replays the request. Concurrent requests that hit a
// 403 at the same time coalesce into a single refresh call.
type Client struct {
	cfg    Config
	client *http.Client
	store  TokenStore

	refreshMu sync.Mutex
	closed    int32
}

// Account is the user object returned by the auth endpoints.
type Account struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

type authResult struct {
	User         *Account `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// NewClient creates a new API client. A nil httpClient or store selects the
// defaults.
func NewClient(cfg Config, httpClient *http.Client, store TokenStore) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Client{
		cfg:    cfg,
		client: httpClient,
		store:  store,
	}, nil
}

// Close releases idle connections on the underlying transport. Close is
// idempotent and safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil {
		c.client.CloseIdleConnections()
	}
	return nil
}

// Register creates an owner account and stores the returned token pair.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Account, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	})
}

// Login signs in and stores the returned token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*Account, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email": email, "password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, creds map[string]string) (*Account, error) {
	payload, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	var res authResult
	if err := c.send(ctx, http.MethodPost, path, payload, "", &res); err != nil {
		return nil, err
	}
	if err := c.store.Save(TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Logout tells the server the session is over and drops the stored pair. The
// local pair is cleared even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
	if cerr := c.store.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Refresh forces a token rotation using the stored refresh token.
func (c *Client) Refresh(ctx context.Context) error {
	pair, err := c.store.Load()
	if err != nil {
		return err
	}
	if pair.RefreshToken == "" {
		return errors.New("no refresh token stored")
	}
	return c.refreshSince(ctx, pair)
}

// Get issues an authenticated GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Patch issues an authenticated PATCH with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// do runs one request with the stored access token. A 403 means the server
// saw the credential and rejected it, so the pair is refreshed exactly once
// and the request replayed; a second 403 is returned as-is. A 401 means no
// usable credential and is never retried.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}

	pair, err := c.store.Load()
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, payload, pair.AccessToken, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden || pair.RefreshToken == "" {
		return err
	}

	if rerr := c.refreshSince(ctx, pair); rerr != nil {
		logger.Warn("session: token refresh failed", slog.String("err", rerr.Error()))
		return err
	}

	fresh, lerr := c.store.Load()
	if lerr != nil {
		return lerr
	}
	return c.send(ctx, method, path, payload, fresh.AccessToken, out)
}

// refreshSince rotates the stored pair if it still matches the pair the
// caller observed. The mutex makes concurrent 403s coalesce: the first
// caller refreshes, the rest see a changed pair and return immediately.
func (c *Client) refreshSince(ctx context.Context, stale TokenPair) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	cur, err := c.store.Load()
	if err != nil {
		return err
	}
	if cur.AccessToken != stale.AccessToken {
		return nil
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": cur.RefreshToken})
	if err != nil {
		return err
	}

	var res authResult
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", payload, "", &res); err != nil {
		// the refresh token itself is no longer good; drop the session
		_ = c.store.Clear()
		return err
	}

	logger.Info("session: token pair rotated")
	return c.store.Save(TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
}

// send builds a fresh request from the payload bytes every time so a replay
// after refresh never reuses a consumed body.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, bodyReader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(data) > 0 {
			return json.Unmarshal(data, out)
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	_ = json.Unmarshal(data, apiErr)
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
