package token

import (
	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
	"github.com/jrsteele09/go-subscription-client/storage"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*StoreSource)(nil)

// StoreSource serves the access token currently held in storage. It re-reads
// storage on every call so tokens written by a refresh or by another process are
// picked up immediately.
type StoreSource struct {
	store storage.Store
}

func NewStoreSource(store storage.Store) *StoreSource {
	return &StoreSource{store: store}
}

// Token returns ErrNoAccessToken when nobody is logged in. Expiry is filled in
// when the token carries a readable exp claim.
func (s *StoreSource) Token() (*oauth2.Token, error) {
	raw, err := storage.AccessToken(s.store)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, apperrors.ErrNoAccessToken
	}

	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if exp, err := ExpiresAt(raw); err == nil {
		tok.Expiry = exp
	}
	return tok, nil
}
