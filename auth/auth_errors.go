package auth

import "errors"

var (
	// InvalidCredentialsErr means the authentication service rejected the
	// identifier/secret pair.
	InvalidCredentialsErr = errors.New("invalid identifier or secret")

	// AuthUnavailableErr means the authentication service could not be reached
	// or answered abnormally. The prior session, if any, is untouched.
	AuthUnavailableErr = errors.New("authentication service unavailable")

	// LoginSupersededErr means a newer login attempt started before this one
	// resolved; the stale completion is discarded.
	LoginSupersededErr = errors.New("login superseded by a newer attempt")

	// NoRefreshCredentialErr means no refresh credential is stored; the session
	// is cleared without contacting the network.
	NoRefreshCredentialErr = errors.New("no refresh credential")

	// RefreshRejectedErr means the service explicitly rejected the refresh
	// credential, or the replacement access credential failed the identity
	// invariant. The session is cleared.
	RefreshRejectedErr = errors.New("refresh credential rejected")

	// RefreshUnavailableErr means the refresh call failed for transient reasons
	// (network, timeout, server error). The session is kept: the refresh
	// credential may still be valid and the caller may retry.
	RefreshUnavailableErr = errors.New("refresh service unavailable")
)
