// Package auth orchestrates login, logout, and silent refresh for the portal
// session. The Service is the only component allowed to call the external
// authentication operations and the only writer to the session store.
package auth

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/maternalcare/portal-core/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const refreshFlightKey = "refresh"

// Service is the session lifecycle manager.
type Service struct {
	store  *session.Store
	api    Authenticator
	logger zerolog.Logger

	// loginGen tags each in-flight login so a superseded attempt cannot
	// overwrite the result of a newer one. commitMu makes the tag check and the
	// store write one step.
	loginGen atomic.Uint64
	commitMu sync.Mutex

	refreshGroup singleflight.Group
}

// ServiceOption modifies the Service instance.
type ServiceOption func(*Service)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService initializes a lifecycle manager over the given store and external
// authenticator.
func NewService(store *session.Store, api Authenticator, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("[NewService] session store is required")
	}
	if api == nil {
		return nil, errors.New("[NewService] authenticator is required")
	}

	s := &Service{
		store:  store,
		api:    api,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login authenticates against the external service and, on success, replaces
// the stored session. On failure the prior session is untouched. If a newer
// Login started before this one resolved, the stale completion is discarded
// and LoginSupersededErr returned.
func (s *Service) Login(ctx context.Context, identifier, secret string) (session.Session, error) {
	gen := s.loginGen.Add(1)

	result, err := s.api.Authenticate(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, InvalidCredentialsErr) {
			s.logger.Debug().Str("identifier", identifier).Msg("login rejected")
			return session.Session{}, err
		}
		s.logger.Warn().Err(err).Msg("login failed: service unavailable")
		return session.Session{}, errors.Wrap(AuthUnavailableErr, err.Error())
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if s.loginGen.Load() != gen {
		return session.Session{}, LoginSupersededErr
	}

	if err := s.store.Set(result.AccessCredential, result.RefreshCredential, result.MustChangePassword); err != nil {
		return session.Session{}, errors.Wrap(err, "[Service.Login] store credentials")
	}

	current := s.store.Current()
	s.logger.Info().
		Str("subject", current.Subject).
		Str("role", string(current.Role)).
		Bool("must_change_password", current.MustChangePassword).
		Msg("login succeeded")
	return current, nil
}

// Refresh mints a new access credential from the stored refresh credential and
// returns it. Concurrent callers share a single in-flight refresh: only one
// network round trip occurs and every caller observes the same outcome.
//
// An absent or rejected refresh credential clears the session; a transient
// failure leaves it untouched.
func (s *Service) Refresh(ctx context.Context) (string, error) {
	result, err, _ := s.refreshGroup.Do(refreshFlightKey, func() (interface{}, error) {
		return s.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (s *Service) doRefresh(ctx context.Context) (string, error) {
	refreshCredential := s.store.RefreshCredential()
	if refreshCredential == "" {
		s.clear("refresh with no stored credential")
		return "", NoRefreshCredentialErr
	}

	newAccess, err := s.api.RefreshCredential(ctx, refreshCredential)
	if err != nil {
		if errors.Is(err, RefreshRejectedErr) {
			s.clear("refresh credential rejected by service")
			return "", err
		}
		s.logger.Warn().Err(err).Msg("refresh failed transiently, session kept")
		return "", errors.Wrap(RefreshUnavailableErr, err.Error())
	}

	if err := s.store.UpdateAccess(newAccess); err != nil {
		s.clear("refreshed credential failed identity invariant")
		return "", errors.Wrap(RefreshRejectedErr, err.Error())
	}

	s.logger.Debug().Msg("access credential refreshed")
	return newAccess, nil
}

// Logout clears the session unconditionally. It is purely local, never
// contacts the network, and is safe to call repeatedly.
func (s *Service) Logout() {
	s.clear("logout")
}

// Current returns the latest session snapshot.
func (s *Service) Current() session.Session {
	return s.store.Current()
}

func (s *Service) clear(reason string) {
	if err := s.store.Clear(); err != nil {
		s.logger.Warn().Err(err).Str("reason", reason).Msg("failed to clear persisted session state")
		return
	}
	s.logger.Info().Str("reason", reason).Msg("session cleared")
}
