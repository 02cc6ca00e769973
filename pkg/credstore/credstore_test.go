package credstore

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)

	in := []*http.Cookie{
		{Name: "sid", Value: "abc123", Path: "/", HttpOnly: true},
		{Name: "csrf", Value: "tok", Path: "/"},
	}
	require.NoError(t, s.Save("board.example.com:3000", in))

	out, err := s.Load("board.example.com:3000")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "sid", out[0].Name)
	assert.Equal(t, "abc123", out[0].Value)
	assert.True(t, out[0].HttpOnly)
}

func TestLoadUnknownHostIsEmpty(t *testing.T) {
	s := openStore(t)

	out, err := s.Load("never-seen.example.com")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestHostsAreIsolated(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Save("a.example.com", []*http.Cookie{{Name: "sid", Value: "for-a"}}))
	require.NoError(t, s.Save("b.example.com", []*http.Cookie{{Name: "sid", Value: "for-b"}}))

	out, err := s.Load("a.example.com")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "for-a", out[0].Value)
}

func TestExpiredCookiesAreDropped(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Save("board.example.com", []*http.Cookie{
		{Name: "stale", Value: "old", Expires: time.Now().Add(-time.Hour)},
		{Name: "fresh", Value: "new", Expires: time.Now().Add(time.Hour)},
	}))

	out, err := s.Load("board.example.com")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "fresh", out[0].Name)
}

func TestClearRemovesSession(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Save("board.example.com", []*http.Cookie{{Name: "sid", Value: "abc"}}))
	require.NoError(t, s.Clear("board.example.com"))

	out, err := s.Load("board.example.com")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSaveEmptyClearsHost(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Save("board.example.com", []*http.Cookie{{Name: "sid", Value: "abc"}}))
	require.NoError(t, s.Save("board.example.com", nil))

	out, err := s.Load("board.example.com")
	require.NoError(t, err)
	assert.Empty(t, out)
}
