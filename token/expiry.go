// Package token reads the expiry claim of access tokens without verifying them.
//
// Nothing here is a security boundary: the API validates every token it receives
// and stays authoritative. The decoded expiry is advisory and only drives the
// session countdown and the decision to refresh.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrMissingExpiry is returned when a token decodes but carries no usable exp claim.
var ErrMissingExpiry = errors.New("token has no exp claim")

// Payload segments are URL-safe base64; some issuers keep the padding.
var parser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// Standard-alphabet segments are accepted as well.
var toURLAlphabet = strings.NewReplacer("+", "-", "/", "_")

// ExpiresAt decodes only the payload segment of raw and returns its exp claim.
// The header and signature are never inspected.
func ExpiresAt(raw string) (time.Time, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("token.ExpiresAt: expected 3 segments, got %d", len(parts))
	}

	payload, err := parser.DecodeSegment(toURLAlphabet.Replace(parts[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("token.ExpiresAt: %w", err)
	}

	claims := jwtlib.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("token.ExpiresAt: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("token.ExpiresAt: %w", err)
	}
	if exp == nil || exp.Unix() == 0 {
		return time.Time{}, ErrMissingExpiry
	}
	return exp.Time, nil
}

// SecondsUntilExpiry returns exp - now in whole seconds, negative once expired.
// It fails soft: any token that cannot be decoded counts as already expired (0).
func SecondsUntilExpiry(raw string, now time.Time) int64 {
	exp, err := ExpiresAt(raw)
	if err != nil {
		return 0
	}
	return exp.Unix() - now.Unix()
}
