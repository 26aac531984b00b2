package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-subscription-client/apimodel"
)

const refreshFailedMessage = "Refresh failed"

// Login exchanges credentials for an access token, refresh token and profile.
func (c *Client) Login(ctx context.Context, creds apimodel.Credentials) (*apimodel.AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", creds)
}

// Register creates an account and returns the same shape as Login.
func (c *Client) Register(ctx context.Context, creds apimodel.Credentials) (*apimodel.AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/register", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds apimodel.Credentials) (*apimodel.AuthResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	var result apimodel.AuthResult
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: creds}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh mints a new access token. The refresh token is sent as the bearer
// credential in place of the stored access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var result apimodel.RefreshResult
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/api/auth/refresh",
		bearer:   refreshToken,
		fallback: refreshFailedMessage,
	}, &result)
	if err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("%s: response has no access_token", refreshFailedMessage)
	}
	return result.AccessToken, nil
}

// Me returns the profile of the current access token's owner.
func (c *Client) Me(ctx context.Context) (*apimodel.User, error) {
	var user apimodel.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
