package session

import "errors"

var (
	// ErrNoState is returned by StateRepo.Load when nothing has been persisted.
	ErrNoState = errors.New("no persisted session state")

	// ErrIdentityChanged signals that a replacement access credential decoded to
	// a different role or subject than the stored session. A mid-session
	// identity change must never silently widen access.
	ErrIdentityChanged = errors.New("access credential identity changed mid-session")
)
