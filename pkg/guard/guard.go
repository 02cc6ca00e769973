// Package guard decides whether a protected view may render for the
// current session. The decision is advisory UX routing only; the
// backend enforces real authorization on every request.
package guard

import (
	"github.com/taskdeck/taskdeck/pkg/session"
	"github.com/taskdeck/taskdeck/pkg/types"
)

// Decision is the outcome of a route check.
type Decision string

const (
	// DecisionPending means the session is still initializing; show a
	// loading state and check again.
	DecisionPending Decision = "pending"
	// DecisionRender means the view may render.
	DecisionRender Decision = "render"
	// DecisionRedirectLogin means no user is authenticated.
	DecisionRedirectLogin Decision = "redirect_login"
	// DecisionRedirectUnauthorized means a user is authenticated but
	// lacks the required role.
	DecisionRedirectUnauthorized Decision = "redirect_unauthorized"
)

// Decide maps session state and an optional required role to a routing
// decision. Pass an empty requiredRole for views any authenticated
// user may see.
func Decide(state session.State, user *types.User, requiredRole types.Role) Decision {
	switch state {
	case session.StateLoading:
		return DecisionPending
	case session.StateAnonymous:
		return DecisionRedirectLogin
	case session.StateAuthenticated:
		if requiredRole == "" || (user != nil && user.Role == requiredRole) {
			return DecisionRender
		}
		return DecisionRedirectUnauthorized
	default:
		return DecisionRedirectLogin
	}
}

// Check is Decide applied to a live session manager.
func Check(m *session.Manager, requiredRole types.Role) Decision {
	state := m.State()
	var user *types.User
	if u, ok := m.CurrentUser(); ok {
		user = &u
	}
	return Decide(state, user, requiredRole)
}
