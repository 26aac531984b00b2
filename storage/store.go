// Package storage defines the durable local storage shared by the session manager
// and the API client. Storage is the source of truth for the current access token;
// in-memory session state is a cache of it.
package storage

import (
	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
)

// Storage keys. KeyLegacyToken mirrors KeyAccessToken for sessions written by
// older clients.
const (
	KeyAccessToken  = "access_token"
	KeyLegacyToken  = "token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// SessionKeys lists every key cleared on logout.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser, KeyLegacyToken}

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = apperrors.ErrKeyNotFound

// Store is a small string key/value store. Put and Delete apply all of their keys
// in one write so a reader never observes a partial update.
type Store interface {
	Get(key string) (string, error)
	Put(values map[string]string) error
	Delete(keys ...string) error
}

// GetOptional returns "" for absent keys and only reports real failures.
func GetOptional(s Store, key string) (string, error) {
	v, err := s.Get(key)
	if apperrors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// AccessToken returns the current access token, falling back to the legacy key.
func AccessToken(s Store) (string, error) {
	v, err := GetOptional(s, KeyAccessToken)
	if err != nil || v != "" {
		return v, err
	}
	return GetOptional(s, KeyLegacyToken)
}
