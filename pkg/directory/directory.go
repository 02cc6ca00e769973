package directory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/log"
	"github.com/taskdeck/taskdeck/pkg/metrics"
	"github.com/taskdeck/taskdeck/pkg/types"
)

// Seed directory installed when the user-listing endpoint is degraded.
// The IDs are stable and known to the backend's fixture data.
const (
	SeedAdminID = "4ab3acf9-5acf-4ef3-a3e7-6aa2701a7411"
	SeedUserID  = "4fa65b43-8069-4edb-b6b8-fa8b6aa5cc2f"
)

func seedUsers() []types.User {
	return []types.User{
		{ID: SeedAdminID, Name: "Admin User", Email: "admin@example.com", Role: types.RoleAdmin},
		{ID: SeedUserID, Name: "Test User", Email: "testuser@example.com", Role: types.RoleUser},
	}
}

// UserLister is the backend surface the resolver needs.
// Satisfied by *api.Client, which normalizes the wire shapes.
type UserLister interface {
	ListUsers(ctx context.Context) ([]types.User, error)
}

// Resolver owns the cached user directory. The cache is replaced
// wholesale on every Fetch, never merged. When a fetch fails or yields
// zero users the cache is replaced with a fixed two-entry seed table
// and the resolver records that it is degraded. The seed is a
// usability fallback, not real data, and callers can tell the
// difference through Degraded.
type Resolver struct {
	api UserLister
	log zerolog.Logger

	mu       sync.RWMutex
	users    map[string]types.User
	order    []string
	fetched  bool
	degraded bool

	broker *events.Broker
}

// Option configures the resolver.
type Option func(*Resolver)

// WithEvents publishes directory events to the given broker.
func WithEvents(b *events.Broker) Option {
	return func(r *Resolver) {
		r.broker = b
	}
}

// NewResolver creates a resolver with an empty cache.
func NewResolver(api UserLister, opts ...Option) *Resolver {
	r := &Resolver{
		api:   api,
		users: make(map[string]types.User),
		log:   log.WithComponent("directory"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch rebuilds the cache from the backend. On any failure, or on a
// normalized result of zero users, the seed table is installed and the
// resolver is marked degraded. Fetch never returns an error: a
// degraded directory is an operating condition, not a failure the
// caller can act on beyond retrying Fetch later.
func (r *Resolver) Fetch(ctx context.Context) {
	users, err := r.api.ListUsers(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("directory fetch failed, installing seed users")
		r.install(seedUsers(), true)
		return
	}
	if len(users) == 0 {
		r.log.Warn().Msg("directory fetch returned no users, installing seed users")
		r.install(seedUsers(), true)
		return
	}
	r.install(users, false)
	r.log.Debug().Int("users", len(users)).Msg("directory cache rebuilt")
}

// Resolve looks up a user by id in the cache. It never fetches as a
// side effect; callers that need freshness call Fetch first.
func (r *Resolver) Resolve(userID string) (types.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	return u, ok
}

// Users returns the cached directory in the order it was received.
func (r *Resolver) Users() []types.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out
}

// Degraded reports whether the seed fallback is in effect.
func (r *Resolver) Degraded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.degraded
}

// Fetched reports whether Fetch has been attempted at least once.
func (r *Resolver) Fetched() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fetched
}

func (r *Resolver) install(users []types.User, degraded bool) {
	r.mu.Lock()
	r.users = make(map[string]types.User, len(users))
	r.order = r.order[:0]
	for _, u := range users {
		if _, dup := r.users[u.ID]; dup {
			continue
		}
		r.users[u.ID] = u
		r.order = append(r.order, u.ID)
	}
	r.fetched = true
	r.degraded = degraded
	size := len(r.users)
	r.mu.Unlock()

	metrics.DirectorySize.Set(float64(size))
	if degraded {
		metrics.DirectoryDegraded.Set(1)
	} else {
		metrics.DirectoryDegraded.Set(0)
	}

	if r.broker != nil {
		evType := events.EventDirectoryLoaded
		msg := "directory cache rebuilt"
		if degraded {
			evType = events.EventDirectoryDegraded
			msg = "directory degraded, seed users installed"
		}
		r.broker.Publish(&events.Event{Type: evType, Message: msg})
	}
}
