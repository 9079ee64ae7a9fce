package session

import (
	"sync"

	"github.com/maternalcare/portal-core/credential"
	"github.com/pkg/errors"
)

// Store owns the only mutable copy of the session. All mutation goes through
// Set, UpdateAccess, and Clear; Current always reflects the latest write.
type Store struct {
	repo StateRepo

	mu      sync.RWMutex
	session Session
	access  string
	refresh string
}

// NewStore creates a Store and rehydrates it from whatever the repo persisted
// in a prior process. If nothing was persisted, or the persisted access
// credential fails decode, the store starts unauthenticated regardless of what
// else was saved.
func NewStore(repo StateRepo) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[NewStore] state repo is required")
	}

	s := &Store{repo: repo}

	state, err := repo.Load()
	if err != nil {
		return s, nil
	}
	claims, err := credential.Decode(state.AccessCredential)
	if err != nil {
		return s, nil
	}

	s.access = state.AccessCredential
	s.refresh = state.RefreshCredential
	s.session = sessionFromClaims(claims, state.MustChangePassword)
	return s, nil
}

// Set replaces the stored credential pair and recomputes the session from the
// access credential. The pair and flag are persisted so a later process can
// rehydrate.
func (s *Store) Set(accessCredential, refreshCredential string, mustChangePassword bool) error {
	claims, err := credential.Decode(accessCredential)
	if err != nil {
		return errors.Wrap(err, "[Store.Set] decode access credential")
	}

	s.mu.Lock()
	s.access = accessCredential
	s.refresh = refreshCredential
	s.session = sessionFromClaims(claims, mustChangePassword)
	s.mu.Unlock()

	if err := s.repo.Save(State{
		AccessCredential:   accessCredential,
		RefreshCredential:  refreshCredential,
		MustChangePassword: mustChangePassword,
	}); err != nil {
		return errors.Wrap(err, "[Store.Set] persist state")
	}
	return nil
}

// UpdateAccess replaces only the access credential and its derived expiry. The
// role and subject must not change on refresh: a mismatch returns
// ErrIdentityChanged with no mutation, and the caller must treat it as a
// refresh failure.
func (s *Store) UpdateAccess(accessCredential string) error {
	claims, err := credential.Decode(accessCredential)
	if err != nil {
		return errors.Wrap(err, "[Store.UpdateAccess] decode access credential")
	}

	s.mu.Lock()
	if !s.session.Authenticated {
		s.mu.Unlock()
		return errors.New("[Store.UpdateAccess] no active session")
	}
	if claims.Role != s.session.Role || claims.Subject != s.session.Subject {
		s.mu.Unlock()
		return errors.Wrapf(ErrIdentityChanged, "role %q -> %q, subject %q -> %q",
			s.session.Role, claims.Role, s.session.Subject, claims.Subject)
	}
	s.access = accessCredential
	s.session.AccessExpiry = claims.ExpiresAt
	refresh := s.refresh
	mustChange := s.session.MustChangePassword
	s.mu.Unlock()

	if err := s.repo.Save(State{
		AccessCredential:   accessCredential,
		RefreshCredential:  refresh,
		MustChangePassword: mustChange,
	}); err != nil {
		return errors.Wrap(err, "[Store.UpdateAccess] persist state")
	}
	return nil
}

// Clear wipes the in-memory session and any persisted state. It is idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.session = Session{}
	s.mu.Unlock()

	if err := s.repo.Clear(); err != nil {
		return errors.Wrap(err, "[Store.Clear] clear persisted state")
	}
	return nil
}

// Current returns the latest session snapshot.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// AccessCredential returns the raw access credential for attaching to API
// calls, or "" when unauthenticated.
func (s *Store) AccessCredential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshCredential returns the raw refresh credential, or "" when absent.
func (s *Store) RefreshCredential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func sessionFromClaims(claims credential.Claims, mustChangePassword bool) Session {
	return Session{
		Authenticated:      true,
		Subject:            claims.Subject,
		SubjectName:        claims.Username,
		Role:               claims.Role,
		AccessExpiry:       claims.ExpiresAt,
		MustChangePassword: mustChangePassword,
	}
}
