// Package gate decides, on every navigation, whether the current session may
// view a route. It is a pure decision function over the session snapshot and a
// route's declared requirement; it never mutates state and never errors.
package gate

import (
	"time"

	"github.com/maternalcare/portal-core/routes"
	"github.com/maternalcare/portal-core/session"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectForcedReset
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectForcedReset:
		return "redirect-forced-reset"
	case RedirectForbidden:
		return "redirect-forbidden"
	}
	return "unknown"
}

// SessionReader is the read-only view of the session store the gate needs.
type SessionReader interface {
	Current() session.Session
}

// Gate evaluates navigation requests against the current session.
type Gate struct {
	sessions SessionReader
	nowTime  func() time.Time
}

// GateOption modifies the Gate instance.
type GateOption func(*Gate)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) GateOption {
	return func(g *Gate) {
		g.nowTime = nowFunc
	}
}

// NewGate creates a gate reading from the given session store.
func NewGate(sessions SessionReader, options ...GateOption) (*Gate, error) {
	if sessions == nil {
		return nil, errNilSessions
	}
	g := &Gate{
		sessions: sessions,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Authorize answers whether the navigation to path may proceed, evaluated in
// strict order:
//
//  1. explicitly public routes are always allowed
//  2. no valid, unexpired access credential -> RedirectLogin
//  3. must-change-password set and path is not the role's designated reset
//     route -> RedirectForcedReset (dominates role checks: a freshly created
//     account may be fully authorized for its dashboard yet must stay blocked
//     until the temporary credential is replaced)
//  4. declared role set excludes the session's role -> RedirectForbidden
//  5. otherwise -> Allow
//
// Authentication is checked before forced-reset so unauthenticated callers
// learn nothing about roles.
func (g *Gate) Authorize(path string, requirement routes.Requirement) Decision {
	if requirement.IsPublic() {
		return Allow
	}

	current := g.sessions.Current()
	if !current.ActiveAt(g.nowTime()) {
		return RedirectLogin
	}

	if current.MustChangePassword {
		resetRoute, ok := routes.ResetRoute(current.Role)
		if !ok || path != resetRoute {
			return RedirectForcedReset
		}
	}

	if requirement.Defined() && !requirement.Includes(current.Role) {
		return RedirectForbidden
	}

	return Allow
}
