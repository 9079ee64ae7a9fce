package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/maternalcare/portal-core/auth"
	"github.com/maternalcare/portal-core/credential"
	"github.com/maternalcare/portal-core/session"
	"github.com/maternalcare/portal-core/session/statefake"
)

func mintCredential(t *testing.T, subject string, role credential.Role, expiry time.Time) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"user_id":  subject,
		"username": subject,
		"role":     string(role),
		"exp":      expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

// fakeAuthenticator is a controllable external authentication collaborator.
type fakeAuthenticator struct {
	mu           sync.Mutex
	authCalls    int
	refreshCalls int

	authFn    func(identifier, secret string) (auth.LoginResult, error)
	refreshFn func(refreshCredential string) (string, error)
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, identifier, secret string) (auth.LoginResult, error) {
	f.mu.Lock()
	f.authCalls++
	fn := f.authFn
	f.mu.Unlock()
	return fn(identifier, secret)
}

func (f *fakeAuthenticator) RefreshCredential(_ context.Context, refreshCredential string) (string, error) {
	f.mu.Lock()
	f.refreshCalls++
	fn := f.refreshFn
	f.mu.Unlock()
	return fn(refreshCredential)
}

func (f *fakeAuthenticator) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls, f.refreshCalls
}

type testFixture struct {
	repo    *statefake.FakeStateRepo
	store   *session.Store
	api     *fakeAuthenticator
	service *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	repo := statefake.NewFakeStateRepo()
	store, err := session.NewStore(repo)
	require.NoError(t, err)

	api := &fakeAuthenticator{}
	service, err := auth.NewService(store, api)
	require.NoError(t, err)

	return &testFixture{repo: repo, store: store, api: api, service: service}
}

func (f *testFixture) loggedIn(t *testing.T, subject string, role credential.Role) string {
	t.Helper()
	access := mintCredential(t, subject, role, time.Now().Add(15*time.Minute))
	f.api.authFn = func(string, string) (auth.LoginResult, error) {
		return auth.LoginResult{AccessCredential: access, RefreshCredential: "refresh-1"}, nil
	}
	_, err := f.service.Login(context.Background(), subject, "correctpw")
	require.NoError(t, err)
	return access
}

func TestLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)

	access := mintCredential(t, "m001", credential.RoleMother, time.Now().Add(15*time.Minute))
	f.api.authFn = func(identifier, secret string) (auth.LoginResult, error) {
		require.Equal(t, "m001", identifier)
		require.Equal(t, "correctpw", secret)
		return auth.LoginResult{
			AccessCredential:   access,
			RefreshCredential:  "refresh-1",
			MustChangePassword: true,
		}, nil
	}

	sess, err := f.service.Login(context.Background(), "m001", "correctpw")
	require.NoError(t, err)
	require.True(t, sess.Authenticated)
	require.Equal(t, credential.RoleMother, sess.Role)
	require.True(t, sess.MustChangePassword)

	persisted, ok := f.repo.Persisted()
	require.True(t, ok)
	require.Equal(t, access, persisted.AccessCredential)
	require.Equal(t, "refresh-1", persisted.RefreshCredential)
	require.True(t, persisted.MustChangePassword)
}

func TestLoginRejectedLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)
	prior := f.loggedIn(t, "m001", credential.RoleMother)

	f.api.authFn = func(string, string) (auth.LoginResult, error) {
		return auth.LoginResult{}, auth.InvalidCredentialsErr
	}

	_, err := f.service.Login(context.Background(), "m001", "wrongpw")
	require.ErrorIs(t, err, auth.InvalidCredentialsErr)

	// Prior session untouched.
	require.True(t, f.store.Current().Authenticated)
	require.Equal(t, prior, f.store.AccessCredential())
}

func TestLoginServiceUnavailable(t *testing.T) {
	f := setupTestFixture(t)

	f.api.authFn = func(string, string) (auth.LoginResult, error) {
		return auth.LoginResult{}, errors.New("connection refused")
	}

	_, err := f.service.Login(context.Background(), "m001", "correctpw")
	require.ErrorIs(t, err, auth.AuthUnavailableErr)
	require.False(t, f.store.Current().Authenticated)
}

func TestLoginSupersededByNewerAttempt(t *testing.T) {
	f := setupTestFixture(t)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	firstAccess := mintCredential(t, "userA", credential.RoleMother, time.Now().Add(15*time.Minute))
	secondAccess := mintCredential(t, "userB", credential.RoleProvider, time.Now().Add(15*time.Minute))

	f.api.authFn = func(identifier, _ string) (auth.LoginResult, error) {
		if identifier == "userA" {
			close(firstStarted)
			<-releaseFirst
			return auth.LoginResult{AccessCredential: firstAccess, RefreshCredential: "refresh-a"}, nil
		}
		return auth.LoginResult{AccessCredential: secondAccess, RefreshCredential: "refresh-b"}, nil
	}

	firstErr := make(chan error, 1)
	go func() {
		_, err := f.service.Login(context.Background(), "userA", "pw")
		firstErr <- err
	}()
	<-firstStarted

	sess, err := f.service.Login(context.Background(), "userB", "pw")
	require.NoError(t, err)
	require.Equal(t, "userB", sess.Subject)

	close(releaseFirst)
	require.ErrorIs(t, <-firstErr, auth.LoginSupersededErr)

	// The slower first login must not have overwritten the newer session.
	require.Equal(t, "userB", f.store.Current().Subject)
	require.Equal(t, secondAccess, f.store.AccessCredential())
}

func TestRefreshSuccessPreservesIdentity(t *testing.T) {
	f := setupTestFixture(t)
	f.loggedIn(t, "m001", credential.RoleMother)
	before := f.store.Current()

	newAccess := mintCredential(t, "m001", credential.RoleMother, time.Now().Add(30*time.Minute))
	f.api.refreshFn = func(refreshCredential string) (string, error) {
		require.Equal(t, "refresh-1", refreshCredential)
		return newAccess, nil
	}

	got, err := f.service.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, newAccess, got)

	after := f.store.Current()
	require.Equal(t, before.Subject, after.Subject)
	require.Equal(t, before.Role, after.Role)
	require.True(t, after.AccessExpiry.After(before.AccessExpiry))
}

func TestRefreshWithoutCredentialClearsSession(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Refresh(context.Background())
	require.ErrorIs(t, err, auth.NoRefreshCredentialErr)

	_, refreshCalls := f.api.calls()
	require.Zero(t, refreshCalls, "must not contact the network without a refresh credential")
}

func TestRefreshRejectedClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.loggedIn(t, "m001", credential.RoleMother)

	f.api.refreshFn = func(string) (string, error) {
		return "", auth.RefreshRejectedErr
	}

	_, err := f.service.Refresh(context.Background())
	require.ErrorIs(t, err, auth.RefreshRejectedErr)

	require.False(t, f.store.Current().Authenticated)
	_, ok := f.repo.Persisted()
	require.False(t, ok)
}

func TestRefreshTransientFailureKeepsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.loggedIn(t, "m001", credential.RoleMother)

	f.api.refreshFn = func(string) (string, error) {
		return "", errors.New("dial tcp: i/o timeout")
	}

	_, err := f.service.Refresh(context.Background())
	require.ErrorIs(t, err, auth.RefreshUnavailableErr)

	// The refresh credential may still be valid: session kept.
	require.True(t, f.store.Current().Authenticated)
	require.Equal(t, "refresh-1", f.store.RefreshCredential())
}

func TestRefreshRoleChangeForcesLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.loggedIn(t, "m001", credential.RoleMother)

	swapped := mintCredential(t, "m001", credential.RoleAdmin, time.Now().Add(time.Hour))
	f.api.refreshFn = func(string) (string, error) {
		return swapped, nil
	}

	_, err := f.service.Refresh(context.Background())
	require.ErrorIs(t, err, auth.RefreshRejectedErr)
	require.ErrorContains(t, err, "identity")

	// Never silently widen access: the session ends up cleared.
	require.False(t, f.store.Current().Authenticated)
}

func TestRefreshSingleFlight(t *testing.T) {
	f := setupTestFixture(t)
	f.loggedIn(t, "m001", credential.RoleMother)

	newAccess := mintCredential(t, "m001", credential.RoleMother, time.Now().Add(30*time.Minute))
	inFlight := make(chan struct{})
	release := make(chan struct{})
	f.api.refreshFn = func(string) (string, error) {
		close(inFlight)
		<-release
		return newAccess, nil
	}

	type outcome struct {
		access string
		err    error
	}
	results := make(chan outcome, 2)
	go func() {
		access, err := f.service.Refresh(context.Background())
		results <- outcome{access, err}
	}()
	<-inFlight
	go func() {
		access, err := f.service.Refresh(context.Background())
		results <- outcome{access, err}
	}()

	// Give the second caller time to join the in-flight refresh, then let the
	// single network call complete.
	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		res := <-results
		require.NoError(t, res.err)
		require.Equal(t, newAccess, res.access)
	}

	_, refreshCalls := f.api.calls()
	require.Equal(t, 1, refreshCalls, "concurrent refreshes must share one network round trip")
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	f.loggedIn(t, "a001", credential.RoleAdmin)

	f.service.Logout()
	first := f.service.Current()
	f.service.Logout()
	second := f.service.Current()

	require.False(t, first.Authenticated)
	require.Equal(t, first, second)
	_, ok := f.repo.Persisted()
	require.False(t, ok)
}
