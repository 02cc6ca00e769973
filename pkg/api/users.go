package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taskdeck/taskdeck/pkg/types"
)

// ListUsers returns the user directory.
//
// The backend has shipped this endpoint with three response shapes: a
// bare array, {"users": [...]}, and {"data": [...]}. All three are
// normalized here so no caller ever sees the wire shape. Entries
// without an id are rejected rather than passed through.
func (c *Client) ListUsers(ctx context.Context) ([]types.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "list_users", http.MethodGet, "/users/list", nil, &raw); err != nil {
		return nil, err
	}

	users, err := decodeUserList(raw)
	if err != nil {
		return nil, fmt.Errorf("list_users: %w", err)
	}
	for _, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("list_users: user entry missing id")
		}
	}
	return users, nil
}

func decodeUserList(data []byte) ([]types.User, error) {
	var users []types.User
	if err := json.Unmarshal(data, &users); err == nil {
		return users, nil
	}

	var wrapped struct {
		Users []types.User `json:"users"`
		Data  []types.User `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("unrecognized user list shape: %w", err)
	}
	if wrapped.Users != nil {
		return wrapped.Users, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return nil, fmt.Errorf("unrecognized user list shape")
}
