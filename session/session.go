// Package session holds the process-wide session state derived from the current
// credential pair. The Store is the single source of truth: the lifecycle
// manager is its only writer, and every screen reads it through Current.
package session

import (
	"time"

	"github.com/maternalcare/portal-core/credential"
)

// Session is the derived, read-only view of the signed-in user. When
// Authenticated is false the remaining fields are meaningless.
type Session struct {
	Authenticated      bool
	Subject            string
	SubjectName        string
	Role               credential.Role
	AccessExpiry       time.Time
	MustChangePassword bool
}

// ActiveAt reports whether the session holds a credential that has not expired
// at the given instant. Expiry equality counts as expired.
func (s Session) ActiveAt(now time.Time) bool {
	return s.Authenticated && now.Before(s.AccessExpiry)
}
