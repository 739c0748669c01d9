package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CheckExpiry returns ErrCredentialExpired when token is a JWT whose exp claim
// lies before now. The signature is not verified; the API does that. Opaque
// (non-JWT) tokens and tokens without exp pass.
func CheckExpiry(token string, now time.Time) error {
	exp, ok := TokenExpiry(token)
	if !ok {
		return nil
	}
	if !now.Before(exp) {
		return ErrCredentialExpired
	}
	return nil
}

// TokenExpiry extracts the exp claim of a JWT without verifying it.
func TokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
