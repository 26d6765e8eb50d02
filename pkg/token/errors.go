package token

import "errors"

var (
	// ErrMalformedToken is returned for tokens that cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")

	// ErrSignatureMismatch is returned when the signature does not verify.
	ErrSignatureMismatch = errors.New("token signature mismatch")

	// ErrTokenExpired is returned when the signed expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrEmptySecret is returned when no signing secret is provided.
	ErrEmptySecret = errors.New("empty signing secret")
)
