package api

import (
	"context"
	"net/http"

	"github.com/taskdeck/taskdeck/pkg/types"
)

// LoginResponse is the payload returned by a successful login. The
// backend may include additional fields; User is the one the session
// layer depends on.
type LoginResponse struct {
	User    types.User `json:"user"`
	Message string     `json:"message,omitempty"`
}

// CheckSession asks the backend whether the current cookie identifies
// an authenticated user. An unauthenticated session is an *Error with
// the backend's status, not a transport failure.
func (c *Client) CheckSession(ctx context.Context) (*types.User, error) {
	var out struct {
		User types.User `json:"user"`
	}
	if err := c.do(ctx, "session_check", http.MethodGet, "/auth/check", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login authenticates with email and password. On success the session
// cookie is captured by the client's jar.
func (c *Client) Login(ctx context.Context, creds types.Credentials) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil)
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg types.Registration) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", reg, &out); err != nil {
		return err
	}
	if !out.Success {
		return &Error{StatusCode: http.StatusOK, Message: "registration was not accepted"}
	}
	return nil
}
