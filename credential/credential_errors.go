package credential

import "errors"

var (
	ErrMalformed    = errors.New("malformed credential")
	ErrMissingClaim = errors.New("credential missing required claim")
	ErrUnknownRole  = errors.New("unknown role")
)
