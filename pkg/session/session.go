package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/pkg/api"
	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/log"
	"github.com/taskdeck/taskdeck/pkg/types"
)

// State is the authentication state of the session.
// Exactly one state holds at a time.
type State string

const (
	// StateLoading holds from construction until Initialize completes.
	StateLoading State = "loading"
	// StateAnonymous means no authenticated user.
	StateAnonymous State = "anonymous"
	// StateAuthenticated means a user is logged in.
	StateAuthenticated State = "authenticated"
)

// Authenticator is the backend surface the session manager needs.
// Satisfied by *api.Client.
type Authenticator interface {
	CheckSession(ctx context.Context) (*types.User, error)
	Login(ctx context.Context, creds types.Credentials) (*api.LoginResponse, error)
	Logout(ctx context.Context) error
}

// Manager owns the authenticated-identity state machine:
//
//	Loading -> Anonymous | Authenticated   (Initialize)
//	Anonymous/Authenticated -> Authenticated (Login)
//	Authenticated -> Anonymous             (Logout)
//
// The manager is the only component that mutates session state;
// consumers read it through State and CurrentUser.
type Manager struct {
	auth Authenticator
	log  zerolog.Logger

	mu     sync.RWMutex
	state  State
	user   *types.User
	closed bool

	broker *events.Broker
}

// Option configures the manager.
type Option func(*Manager)

// WithEvents publishes session.changed events to the given broker.
func WithEvents(b *events.Broker) Option {
	return func(m *Manager) {
		m.broker = b
	}
}

// NewManager creates a session manager in the Loading state.
func NewManager(auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		auth:  auth,
		state: StateLoading,
		log:   log.WithComponent("session"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize resolves the Loading state by asking the backend whether
// a session cookie already identifies a user. It never returns an
// error: any failure, including a plain "not logged in" rejection,
// lands the session in Anonymous. After Initialize the state is never
// Loading again.
func (m *Manager) Initialize(ctx context.Context) {
	user, err := m.auth.CheckSession(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("session check did not authenticate")
		m.transition(StateAnonymous, nil)
		return
	}
	m.transition(StateAuthenticated, user)
}

// Login authenticates with the backend. On success the session becomes
// Authenticated and the response payload is returned. On failure the
// session state is left exactly as it was and the error, carrying the
// server-supplied message when there was one, is propagated.
func (m *Manager) Login(ctx context.Context, creds types.Credentials) (*api.LoginResponse, error) {
	resp, err := m.auth.Login(ctx, creds)
	if err != nil {
		m.log.Debug().Err(err).Str("email", creds.Email).Msg("login rejected")
		return nil, err
	}

	user := resp.User
	m.transition(StateAuthenticated, &user)
	m.log.Info().Str("user_id", user.ID).Msg("logged in")
	return resp, nil
}

// Logout clears the session. The remote call is fire-and-forget: the
// local session transitions to Anonymous even if the backend call
// fails, since there is no recovery path for a stuck authenticated
// client.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.auth.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
	}
	m.transition(StateAnonymous, nil)
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentUser returns the authenticated user, or false when the
// session is Loading or Anonymous. The returned value is a copy.
func (m *Manager) CurrentUser() (types.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return types.User{}, false
	}
	return *m.user, true
}

// Close marks the manager disposed. In-flight operations that complete
// after Close do not mutate state.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *Manager) transition(state State, user *types.User) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.state = state
	m.user = user
	m.mu.Unlock()

	if m.broker != nil {
		meta := map[string]string{"state": string(state)}
		if user != nil {
			meta["user_id"] = user.ID
		}
		m.broker.Publish(&events.Event{
			Type:     events.EventSessionChanged,
			Message:  "session state changed",
			Metadata: meta,
		})
	}
}
