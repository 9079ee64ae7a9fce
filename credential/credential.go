// Package credential decodes the opaque signed credentials issued by the portal
// API into their claims. Decoding is purely structural: the portal client never
// verifies signatures locally. Trust is delegated to the issuing API, and a
// successful decode means "well-formed", not "trusted".
package credential

import (
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Role is a portal role. The portal has exactly three role hierarchies; anything
// else in a credential is rejected at decode time.
type Role string

const (
	RoleMother   Role = "mother"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a raw role claim onto the closed enumeration. Unknown roles
// fail closed.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleMother, RoleProvider, RoleAdmin:
		return Role(raw), nil
	}
	return "", errors.Wrapf(ErrUnknownRole, "role %q", raw)
}

// Claims are the decoded fields of a credential.
type Claims struct {
	Subject   string    // user identifier ("user_id" claim)
	Username  string    // display name ("username" claim)
	Role      Role      // portal role ("role" claim)
	IssuedAt  time.Time // "iat" claim, zero if absent
	ExpiresAt time.Time // "exp" claim
}

// Decode parses a raw credential without verifying its signature. It fails if
// the credential is not a well-formed three-part token, the payload cannot be
// parsed, or the required "role"/"exp" claims are missing or malformed.
func Decode(raw string) (Claims, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, errors.Wrap(ErrMalformed, err.Error())
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, errors.Wrap(ErrMalformed, "claims are not a JSON object")
	}

	rawRole, ok := mapClaims["role"].(string)
	if !ok {
		return Claims{}, errors.Wrap(ErrMissingClaim, "role")
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return Claims{}, err
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, errors.Wrap(ErrMissingClaim, "exp")
	}

	claims := Claims{
		Role:      role,
		ExpiresAt: exp.Time,
	}
	claims.Subject, _ = mapClaims.GetSubject()
	if claims.Subject == "" {
		// The portal API issues the user identifier as "user_id", which may be
		// numeric depending on the backing store.
		switch userID := mapClaims["user_id"].(type) {
		case string:
			claims.Subject = userID
		case float64:
			claims.Subject = strconv.FormatInt(int64(userID), 10)
		}
	}
	claims.Username, _ = mapClaims["username"].(string)
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	return claims, nil
}

// IsExpired reports whether the claims have expired at the given instant.
// Equality counts as expired.
func IsExpired(claims Claims, now time.Time) bool {
	return !now.Before(claims.ExpiresAt)
}
