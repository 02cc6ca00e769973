// Package credstore persists session cookies between CLI invocations.
// The browser original kept its session implicitly in the browser's
// cookie store; this is the equivalent for a short-lived process.
package credstore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketCookies = []byte("cookies")

// storedCookie is the subset of http.Cookie worth keeping on disk.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Domain  string    `json:"domain,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
	Secure  bool      `json:"secure,omitempty"`
	HTTP    bool      `json:"httpOnly,omitempty"`
}

// Store is a bbolt-backed cookie store keyed by backend host.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCookies)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cookie bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the cookies for a backend host, replacing any previous
// set. Expired cookies are dropped rather than written.
func (s *Store) Save(host string, cookies []*http.Cookie) error {
	now := time.Now()
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		stored = append(stored, storedCookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
			Secure:  c.Secure,
			HTTP:    c.HttpOnly,
		})
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCookies)
		if len(stored) == 0 {
			return b.Delete([]byte(host))
		}
		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		return b.Put([]byte(host), data)
	})
}

// Load returns the saved cookies for a backend host. A host with no
// saved session yields an empty slice, not an error.
func (s *Store) Load(host string) ([]*http.Cookie, error) {
	var stored []storedCookie
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCookies).Get([]byte(host))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stored)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTP,
		})
	}
	return cookies, nil
}

// Clear removes the saved session for a backend host.
func (s *Store) Clear(host string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCookies).Delete([]byte(host))
	})
}
