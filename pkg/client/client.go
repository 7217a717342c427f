// Package client is the HTTP client for the studyhall server. It carries
// the session cookie across calls (freshly minted by Login or pre-seeded
// from a stored credential), decodes the server's JSON responses into the
// shared domain types, and consumes the streaming mentor endpoints frame
// by frame.
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
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/studyhallco/studyhall/pkg/logger"
)

// DefaultIdleTimeout bounds how long a streaming call waits on a silent
// server before giving up on the stream.
const DefaultIdleTimeout = 90 * time.Second

const (
	apiPrefix = "/api/v1"

	// sessionCookie is the cookie name the server issues at login.
	sessionCookie = "studyhall_session"
)

// Config holds the configuration for a client.
type Config struct {
	// ServerURL is the base URL of the studyhall server.
	ServerURL string

	// Token pre-seeds the session cookie, typically from a stored
	// credential. Login replaces it with a fresh session.
	Token string

	// IdleTimeout aborts a streaming call when the server goes quiet for
	// this long. Zero means DefaultIdleTimeout.
	IdleTimeout time.Duration
}

// Client talks to one studyhall server. It is safe for concurrent use;
// each streaming call owns its own connection and releases it on every
// exit path.
type Client struct {
	baseURL string
	http    *http.Client
	idle    time.Duration
	logger  *slog.Logger
}

// New creates a client for the given server.
func New(c Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}

	if c.ServerURL == "" {
		return nil, errors.New("server URL is required")
	}
	parsed, err := url.Parse(c.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("server URL must be absolute: %s", c.ServerURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if c.Token != "" {
		jar.SetCookies(parsed, []*http.Cookie{{
			Name:  sessionCookie,
			Value: c.Token,
			Path:  "/",
		}})
	}

	idle := c.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(c.ServerURL, "/"),
		http:    &http.Client{Jar: jar},
		idle:    idle,
		logger:  log,
	}, nil
}

// ServerURL returns the base URL this client talks to.
func (c *Client) ServerURL() string {
	return c.baseURL
}

// SessionToken returns the current session cookie value, or empty when no
// session is held. After a successful Login this is the token to persist.
func (c *Client) SessionToken() string {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(parsed) {
		if cookie.Name == sessionCookie {
			return cookie.Value
		}
	}
	return ""
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var pong string
	if err := c.get(ctx, "/ping", &pong); err != nil {
		return err
	}
	if pong != "pong" {
		return fmt.Errorf("unexpected ping response: %q", pong)
	}
	return nil
}

// Stats reports storage totals for the server.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.get(ctx, apiPrefix+"/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// get issues a GET and decodes a 2xx JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

// post issues a POST with a JSON body and decodes a 2xx JSON response into
// out. A nil in sends no body; a nil out discards the response body.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reaching server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// openStream issues a POST and hands back the raw body of a 200 response
// for frame-by-frame consumption. The caller owns closing the body.
func (c *Client) openStream(ctx context.Context, path string, in any) (io.ReadCloser, error) {
	encoded, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reaching server: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

// decodeError turns a non-2xx response into an *APIError, reading the
// server's {"error": ...} body when present.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var wire struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &wire) == nil && wire.Error != "" {
			apiErr.Message = wire.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
	}
	return apiErr
}
