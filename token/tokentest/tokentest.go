// Package tokentest builds unsigned-looking access tokens for tests.
package tokentest

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// WithExpiry returns an HS256 token whose exp claim is exp. The signing key is
// irrelevant because clients never verify signatures.
func WithExpiry(exp time.Time) string {
	return WithClaims(jwtlib.MapClaims{"sub": "1", "exp": exp.Unix()})
}

func WithClaims(claims jwtlib.MapClaims) string {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return signed
}
