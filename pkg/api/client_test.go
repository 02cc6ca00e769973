package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/pkg/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("not a url")
	assert.Error(t, err)

	_, err = NewClient("/just/a/path")
	assert.Error(t, err)
}

func TestLoginCapturesSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds types.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "admin@example.com", creds.Email)

		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "session-1", Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": types.User{ID: "u1", Name: "Admin User", Email: creds.Email, Role: types.RoleAdmin},
		})
	})
	mux.HandleFunc("/auth/check", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sid")
		if err != nil || cookie.Value != "session-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "not logged in"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": types.User{ID: "u1", Name: "Admin User", Role: types.RoleAdmin},
		})
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	resp, err := c.Login(ctx, types.Credentials{Email: "admin@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)

	user, err := c.CheckSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Admin User", user.Name)
}

func TestRejectionMessageExtraction(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message field", http.StatusUnauthorized, `{"message":"Invalid email or password"}`, "Invalid email or password"},
		{"error field", http.StatusBadRequest, `{"error":"title is required"}`, "title is required"},
		{"message preferred over error", http.StatusBadRequest, `{"message":"use me","error":"not me"}`, "use me"},
		{"empty body", http.StatusInternalServerError, ``, genericErrorMessage},
		{"non-json body", http.StatusBadGateway, `<html>upstream exploded</html>`, genericErrorMessage},
		{"json without known fields", http.StatusForbidden, `{"detail":"nope"}`, genericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			_, err := c.CheckSession(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1") // nothing listens here
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background())
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr), "transport failures are wrapped errors, not backend rejections")
}

func TestListUsersNormalizesShapes(t *testing.T) {
	users := []types.User{
		{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: types.RoleAdmin},
		{ID: "u2", Name: "Ben", Email: "ben@example.com", Role: types.RoleUser},
	}

	tests := []struct {
		name string
		body any
	}{
		{"bare array", users},
		{"users wrapper", map[string]any{"users": users}},
		{"data wrapper", map[string]any{"data": users}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/list", r.URL.Path)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))

			got, err := c.ListUsers(context.Background())
			require.NoError(t, err)
			assert.Equal(t, users, got)
		})
	}
}

func TestListUsersRejectsUnknownShape(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"records":[]}`)
	}))

	_, err := c.ListUsers(context.Background())
	assert.Error(t, err)
}

func TestListUsersEmptyArrayIsNotAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))

	got, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreateTaskSendsExplicitNullAssignee(t *testing.T) {
	var body map[string]json.RawMessage
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks/create", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(types.Task{ID: "t1", Title: "unassigned", Priority: types.PriorityMedium})
	}))

	_, err := c.CreateTask(context.Background(), types.TaskInput{
		Title:    "unassigned",
		Priority: types.PriorityMedium,
	})
	require.NoError(t, err)

	raw, present := body["assignedToId"]
	require.True(t, present, "assignedToId must be sent even when empty")
	assert.Equal(t, "null", string(raw))
}

func TestUpdateAndDeletePaths(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		if r.Method == http.MethodPut {
			_ = json.NewEncoder(w).Encode(types.Task{ID: "t1", Title: "edited"})
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}))

	_, err := c.UpdateTask(context.Background(), "t1", types.TaskInput{Title: "edited"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/tasks/t1", gotPath)

	require.NoError(t, c.DeleteTask(context.Background(), "t1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/tasks/t1", gotPath)
}

func TestRegisterSuccessFlag(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false}`)
	}))

	err := c.Register(context.Background(), types.Registration{
		Name: "Ada", Email: "ada@example.com", Password: "pw", Role: types.RoleUser,
	})
	assert.Error(t, err)
}

func TestDecodeUserList(t *testing.T) {
	got, err := decodeUserList([]byte(`{"users":[{"id":"u1","name":"Ada"}]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].ID)

	_, err = decodeUserList([]byte(`42`))
	assert.Error(t, err)
}
