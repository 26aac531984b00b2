package token_test

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
	"github.com/jrsteele09/go-subscription-client/storage"
	"github.com/jrsteele09/go-subscription-client/storage/storagefake"
	"github.com/jrsteele09/go-subscription-client/token"
	"github.com/jrsteele09/go-subscription-client/token/tokentest"
	"github.com/stretchr/testify/require"
)

// payloadOnly builds a token around a hand-encoded payload with the given header segment.
func payloadOnly(header string, claims string, enc *base64.Encoding) string {
	return header + "." + enc.EncodeToString([]byte(claims)) + ".sig"
}

func TestSecondsUntilExpiry(t *testing.T) {
	now := time.Unix(1_770_000_000, 0)
	expIn100 := fmt.Sprintf(`{"exp":%d}`, now.Unix()+100)

	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{name: "future", raw: tokentest.WithExpiry(now.Add(200 * time.Second)), want: 200},
		{name: "inside warning window", raw: tokentest.WithExpiry(now.Add(100 * time.Second)), want: 100},
		{name: "already expired", raw: tokentest.WithExpiry(now.Add(-5 * time.Second)), want: -5},
		{name: "not a jwt", raw: "not.a.jwt", want: 0},
		{name: "empty", raw: "", want: 0},
		{name: "two segments", raw: "abc.def", want: 0},
		{
			name: "payload not json",
			raw:  "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".sig",
			want: 0,
		},
		{name: "missing exp", raw: tokentest.WithClaims(jwtlib.MapClaims{"sub": "1"}), want: 0},
		{name: "exp not numeric", raw: tokentest.WithClaims(jwtlib.MapClaims{"exp": "soon"}), want: 0},
		{name: "exp zero", raw: tokentest.WithClaims(jwtlib.MapClaims{"exp": 0}), want: 0},
		{name: "header without alg", raw: payloadOnly("e30", expIn100, base64.RawURLEncoding), want: 100},
		{name: "header not base64", raw: payloadOnly("x", expIn100, base64.RawURLEncoding), want: 100},
		{name: "padded payload", raw: payloadOnly("x", expIn100, base64.URLEncoding), want: 100},
		{name: "four segments", raw: payloadOnly("x", expIn100, base64.RawURLEncoding) + ".extra", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, token.SecondsUntilExpiry(tt.raw, now))
		})
	}
}

func TestExpiresAt_StandardAlphabet(t *testing.T) {
	now := time.Unix(1_770_000_000, 0)
	claims := fmt.Sprintf(`{"exp":%d,"note":"??????"}`, now.Unix()+100)
	payload := base64.StdEncoding.EncodeToString([]byte(claims))
	require.True(t, strings.ContainsAny(payload, "+/"), payload)

	require.Equal(t, int64(100), token.SecondsUntilExpiry("x."+payload+".sig", now))
}

func TestExpiresAt_IgnoresSignature(t *testing.T) {
	exp := time.Unix(1_770_000_600, 0)
	raw := tokentest.WithExpiry(exp)

	// Swap the signature for garbage: the client still reads the claim.
	tampered := raw[:len(raw)-4] + "AAAA"
	got, err := token.ExpiresAt(tampered)
	require.NoError(t, err)
	require.True(t, exp.Equal(got))
}

func TestExpiresAt_Errors(t *testing.T) {
	_, err := token.ExpiresAt(tokentest.WithClaims(jwtlib.MapClaims{"sub": "1"}))
	require.ErrorIs(t, err, token.ErrMissingExpiry)

	_, err = token.ExpiresAt("not.a.jwt")
	require.Error(t, err)
}

func TestStoreSource(t *testing.T) {
	store := storagefake.NewFakeStore()
	src := token.NewStoreSource(store)

	t.Run("no token", func(t *testing.T) {
		_, err := src.Token()
		require.ErrorIs(t, err, apperrors.ErrNoAccessToken)
	})

	t.Run("reads storage on each call", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		raw := tokentest.WithExpiry(exp)
		require.NoError(t, store.Put(map[string]string{storage.KeyAccessToken: raw}))

		tok, err := src.Token()
		require.NoError(t, err)
		require.Equal(t, raw, tok.AccessToken)
		require.Equal(t, "Bearer", tok.Type())
		require.True(t, exp.Equal(tok.Expiry))
	})

	t.Run("opaque legacy token", func(t *testing.T) {
		legacy := storagefake.NewFakeStore()
		require.NoError(t, legacy.Put(map[string]string{storage.KeyLegacyToken: "opaque"}))

		tok, err := token.NewStoreSource(legacy).Token()
		require.NoError(t, err)
		require.Equal(t, "opaque", tok.AccessToken)
		require.True(t, tok.Expiry.IsZero())
	})
}
