// Package devserver is a development stand-in for the portal's backend API. It
// serves the two authentication operations the session core consumes, plus a
// couple of bearer-protected endpoints, so the client core can be exercised
// end to end without the real backend.
package devserver

import (
	"net/http"

	"github.com/maternalcare/portal-core/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// API path constants served by the development server.
const (
	RouteAPILogin          = "/api/login/"
	RouteAPITokenRefresh   = "/api/token/refresh/"
	RouteAPIProfile        = "/api/profile/"
	RouteAPIUpdatePassword = "/api/update-password/"
)

type Server struct {
	mux    *http.ServeMux
	users  *UserStore
	issuer *CredentialIssuer
	logger zerolog.Logger
}

// ServerOption modifies the Server instance.
type ServerOption func(*Server)

// WithServerLogger sets the request logger.
func WithServerLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// New builds the development server with the seeded demo accounts.
func New(cfg config.DevServerConfig, users *UserStore, options ...ServerOption) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[devserver.New] config is required")
	}
	if users == nil {
		return nil, errors.New("[devserver.New] user store is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		users:  users,
		issuer: NewCredentialIssuer(cfg.GetSigningKey(), cfg.GetAccessCredentialTTL(), cfg.GetRefreshCredentialTTL()),
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("POST "+RouteAPILogin, ChainMiddleware(s.Login(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.mux.HandleFunc("POST "+RouteAPITokenRefresh, ChainMiddleware(s.RefreshCredential(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.mux.HandleFunc("GET "+RouteAPIProfile, ChainMiddleware(s.Profile(), s.LoggingMiddleware, s.RecoverMiddleware, s.RequireBearer))
	s.mux.HandleFunc("POST "+RouteAPIUpdatePassword, ChainMiddleware(s.UpdatePassword(), s.LoggingMiddleware, s.RecoverMiddleware, s.RequireBearer))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
