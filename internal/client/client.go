// Package client is a Go client for the story API. Client holds the bearer
// token of one signed-in user and implements session.Authenticator, so a
// session.Provider can track it. Library keeps the in-memory story list a
// reader browses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/guarayo/cuentos/internal/auth"
	"github.com/guarayo/cuentos/internal/session"
)

// Error is a failure response from the API.
type Error struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}

// Client calls the API on behalf of at most one signed-in user.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	now     func() time.Time

	mu          sync.Mutex
	token       *auth.Token
	expiry      *time.Timer
	subscribers map[int]func(session.Session)
	next        int
}

// New creates a Client for the API rooted at baseURL (for example
// "http://localhost:8080/api"). A nil httpClient uses a client with a
// 30 second timeout.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        httpClient,
		logger:      logger.With("system", "client"),
		now:         time.Now,
		subscribers: make(map[int]func(session.Session)),
	}
}

// CurrentSession asks the API which session the held token resolves to.
// Without a token the session is anonymous and no request is made.
func (c *Client) CurrentSession(ctx context.Context) (session.Session, error) {
	if c.bearer() == "" {
		return session.AnonymousSession(), nil
	}

	var s session.Session
	if err := c.doJSON(ctx, http.MethodGet, "/auth/session", nil, &s); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return session.AnonymousSession(), nil
		}
		return session.AnonymousSession(), err
	}
	return s, nil
}

// Subscribe registers fn for every session change the client observes.
func (c *Client) Subscribe(fn func(session.Session)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// SignUp creates an account. When the API signs the new account in right
// away the token is kept and subscribers are notified.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	var result auth.SignUpResult
	creds := auth.Credentials{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", creds, &result); err != nil {
		return err
	}

	if result.Token != nil {
		c.setToken(result.Token)
	}
	return nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	var token auth.Token
	creds := auth.Credentials{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signin", creds, &token); err != nil {
		return session.AnonymousSession(), err
	}

	c.setToken(&token)
	return session.AuthenticatedSession(token.Identity), nil
}

// SignOut forgets the token before asking the API to revoke it.
func (c *Client) SignOut(ctx context.Context) error {
	raw := c.bearer()
	if raw == "" {
		return nil
	}
	c.clearToken(raw)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/signout", nil, "")
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+raw)
	return c.send(req, nil)
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return ""
	}
	return c.token.AccessToken
}

func (c *Client) setToken(t *auth.Token) {
	c.mu.Lock()
	if c.expiry != nil {
		c.expiry.Stop()
	}
	c.token = t

	raw := t.AccessToken
	c.expiry = time.AfterFunc(t.ExpiresAt.Sub(c.now()), func() {
		c.logger.Info("session expired")
		c.clearToken(raw)
	})
	c.mu.Unlock()

	c.notify(session.AuthenticatedSession(t.Identity))
}

// clearToken drops raw if it is still the held token.
func (c *Client) clearToken(raw string) {
	c.mu.Lock()
	if c.token == nil || c.token.AccessToken != raw {
		c.mu.Unlock()
		return
	}
	c.token = nil
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
	c.mu.Unlock()

	c.notify(session.AnonymousSession())
}

func (c *Client) notify(s session.Session) {
	c.mu.Lock()
	subs := make([]func(session.Session), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if raw := c.bearer(); raw != "" {
		req.Header.Set("Authorization", "Bearer "+raw)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

// send performs req and decodes a success body into out. A 401 to a request
// that carried the held token means the API no longer accepts it, so the
// token is dropped.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			if raw, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer "); ok {
				c.clearToken(raw)
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
