package auth

import "context"

// LoginResult is the payload returned by the external authenticate operation.
type LoginResult struct {
	AccessCredential   string
	RefreshCredential  string
	MustChangePassword bool
}

// Authenticator is the external authentication collaborator (the portal API).
//
// Implementations must return InvalidCredentialsErr (possibly wrapped) when the
// service explicitly rejects a login, and RefreshRejectedErr (possibly wrapped)
// when it explicitly rejects a refresh credential. Any other error is treated
// as a transient failure: timeouts are failures, not rejections.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (LoginResult, error)
	RefreshCredential(ctx context.Context, refreshCredential string) (string, error)
}
