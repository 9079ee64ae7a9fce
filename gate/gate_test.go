package gate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maternalcare/portal-core/credential"
	"github.com/maternalcare/portal-core/gate"
	"github.com/maternalcare/portal-core/routes"
	"github.com/maternalcare/portal-core/session"
)

// fixedSessions returns a static session snapshot.
type fixedSessions struct {
	session session.Session
}

func (f fixedSessions) Current() session.Session {
	return f.session
}

var testNow = time.Unix(1_700_000_000, 0)

func newGate(t *testing.T, s session.Session) *gate.Gate {
	t.Helper()
	g, err := gate.NewGate(fixedSessions{session: s}, gate.WithNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)
	return g
}

func activeSession(role credential.Role, mustChange bool) session.Session {
	return session.Session{
		Authenticated:      true,
		Subject:            "u-001",
		Role:               role,
		AccessExpiry:       testNow.Add(10 * time.Minute),
		MustChangePassword: mustChange,
	}
}

func TestUnauthenticatedPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		session session.Session
	}{
		{name: "no credential", session: session.Session{}},
		{name: "expired credential", session: session.Session{
			Authenticated: true,
			Role:          credential.RoleMother,
			AccessExpiry:  testNow.Add(-time.Second),
		}},
		{name: "credential expiring exactly now", session: session.Session{
			Authenticated: true,
			Role:          credential.RoleMother,
			AccessExpiry:  testNow,
		}},
		{name: "must-change set but unauthenticated", session: session.Session{
			MustChangePassword: true,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGate(t, tc.session)
			decision := g.Authorize(routes.RouteMotherDashboard, routes.Require(credential.RoleMother))
			require.Equal(t, gate.RedirectLogin, decision)
		})
	}
}

func TestForcedResetPrecedence(t *testing.T) {
	g := newGate(t, activeSession(credential.RoleMother, true))

	// Any path other than the designated reset route is blocked, even one the
	// role is otherwise authorized for.
	for _, path := range []string{
		routes.RouteMotherDashboard,
		routes.RouteMotherProfile,
		routes.RouteAdminDashboard,
		"/mother/update-password-history", // substring lookalike must not match
	} {
		decision := g.Authorize(path, routes.Require(credential.RoleMother))
		require.Equal(t, gate.RedirectForcedReset, decision, "path %s", path)
	}

	decision := g.Authorize(routes.RouteMotherUpdatePassword, routes.Require(credential.RoleMother))
	require.Equal(t, gate.Allow, decision)
}

func TestForcedResetDominatesRoleCheck(t *testing.T) {
	g := newGate(t, activeSession(credential.RoleProvider, true))

	// A provider mid-reset requesting an admin route gets the reset redirect,
	// not forbidden.
	decision := g.Authorize(routes.RouteAdminDashboard, routes.Require(credential.RoleAdmin))
	require.Equal(t, gate.RedirectForcedReset, decision)
}

func TestRoleIsolation(t *testing.T) {
	g := newGate(t, activeSession(credential.RoleProvider, false))

	require.Equal(t, gate.RedirectForbidden,
		g.Authorize(routes.RouteAdminDashboard, routes.Require(credential.RoleAdmin)))
	require.Equal(t, gate.Allow,
		g.Authorize(routes.RouteProviderDashboard, routes.Require(credential.RoleProvider)))
}

func TestPublicRouteBypassesAllChecks(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		g := newGate(t, session.Session{})
		require.Equal(t, gate.Allow, g.Authorize(routes.RouteLogin, routes.Public()))
	})

	t.Run("mid forced reset", func(t *testing.T) {
		g := newGate(t, activeSession(credential.RoleMother, true))
		require.Equal(t, gate.Allow, g.Authorize(routes.RouteLogin, routes.Public()))
	})
}

func TestUndefinedRequirementAllowsAnyAuthenticatedRole(t *testing.T) {
	g := newGate(t, activeSession(credential.RoleAdmin, false))
	require.Equal(t, gate.Allow, g.Authorize("/shared/help", routes.Requirement{}))

	unauth := newGate(t, session.Session{})
	require.Equal(t, gate.RedirectLogin, unauth.Authorize("/shared/help", routes.Requirement{}))
}

func TestDecisionString(t *testing.T) {
	require.Equal(t, "allow", gate.Allow.String())
	require.Equal(t, "redirect-login", gate.RedirectLogin.String())
	require.Equal(t, "redirect-forced-reset", gate.RedirectForcedReset.String())
	require.Equal(t, "redirect-forbidden", gate.RedirectForbidden.String())
}
