package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/pkg/log"
	"github.com/taskdeck/taskdeck/pkg/metrics"
)

const defaultTimeout = 15 * time.Second

// genericErrorMessage is used when an error response carries no
// recognizable message field.
const genericErrorMessage = "request failed"

// CookieStore persists session cookies between client lifetimes.
// Implemented by credstore.Store.
type CookieStore interface {
	Load(host string) ([]*http.Cookie, error)
	Save(host string, cookies []*http.Cookie) error
}

// Client talks to the task board backend. It owns the session cookie
// jar; all authenticated calls ride on the cookie established by Login.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	cookies CookieStore
	log     zerolog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A cookie jar is installed
// on it if it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithCookieStore persists session cookies so a CLI session survives
// across process invocations.
func WithCookieStore(cs CookieStore) Option {
	return func(c *Client) {
		c.cookies = cs
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log.WithComponent("api"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		c.http.Jar = jar
	}

	if c.cookies != nil {
		saved, err := c.cookies.Load(u.Host)
		if err != nil {
			c.log.Warn().Err(err).Msg("could not load saved session cookies")
		} else if len(saved) > 0 {
			c.http.Jar.SetCookies(u, saved)
		}
	}

	return c, nil
}

// Error is a rejection from the backend. Message is the server-supplied
// human-readable message when one was present, or a generic fallback.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// errorEnvelope covers the conventional fields backends put error
// messages under.
type errorEnvelope struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

// do performs one backend request. A non-2xx status is converted to
// *Error with the extracted message; transport failures are wrapped.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.BackendRequestDuration.WithLabelValues(op))

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reqBody)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(op, "transport_error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if c.cookies != nil {
		if err := c.cookies.Save(c.baseURL.Host, c.http.Jar.Cookies(c.baseURL)); err != nil {
			c.log.Warn().Err(err).Msg("could not persist session cookies")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestsTotal.WithLabelValues(op, "rejected").Inc()
		return c.rejection(op, resp)
	}
	metrics.BackendRequestsTotal.WithLabelValues(op, "success").Inc()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// rejection builds an *Error from a non-2xx response, preferring the
// server-supplied message over the generic fallback.
func (c *Client) rejection(op string, resp *http.Response) error {
	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    genericErrorMessage,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(data) > 0 {
		var env errorEnvelope
		if json.Unmarshal(data, &env) == nil {
			switch {
			case env.Message != "":
				apiErr.Message = env.Message
			case env.Err != "":
				apiErr.Message = env.Err
			}
		}
	}

	c.log.Debug().
		Str("operation", op).
		Int("status", resp.StatusCode).
		Str("message", apiErr.Message).
		Msg("backend rejected request")
	return apiErr
}
