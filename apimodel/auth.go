// Package apimodel holds the JSON shapes exchanged with the subscription API.
package apimodel

import (
	"strings"

	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
)

// Credentials is the body of POST /api/auth/login and /api/auth/register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate mirrors the checks the login and register forms make before submitting.
func (c Credentials) Validate() error {
	email := strings.TrimSpace(c.Email)
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "valid email is required")
	}
	if c.Password == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "password is required")
	}
	return nil
}

// User is the authenticated identity returned by the auth endpoints.
type User struct {
	ID        int64  `json:"id,omitempty"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AuthResult is returned from login and register. Every field is optional when
// handed to session.Manager.Login: callers may adopt any subset.
type AuthResult struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// RefreshResult is returned from POST /api/auth/refresh.
type RefreshResult struct {
	AccessToken string `json:"access_token"`
}

// ErrorBody is the failure shape shared by every endpoint. Older routes use msg.
type ErrorBody struct {
	Error string `json:"error,omitempty"`
	Msg   string `json:"msg,omitempty"`
}

// Message returns error, then msg, then "".
func (e ErrorBody) Message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Msg
}

// Deleted is returned by the DELETE endpoints.
type Deleted struct {
	Deleted bool `json:"deleted"`
}
