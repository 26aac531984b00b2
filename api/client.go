// Package api is the HTTP wrapper every page uses to talk to the subscription API.
// Requests carry the current access token from storage as a bearer credential;
// non-2xx responses become *APIError with the server's message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-subscription-client/apimodel"
	"github.com/jrsteele09/go-subscription-client/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const requestIDHeader = "X-Request-ID"

// APIError is a non-success HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
}

// New builds a client. tokens supplies the access token for each request and may
// be nil for a client that only calls unauthenticated endpoints.
func New(cfg config.APIConfig, tokens oauth2.TokenSource) *Client {
	return NewWithHTTPClient(cfg.GetBaseURL(), &http.Client{Timeout: cfg.GetRequestTimeout()}, tokens)
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client, tokens oauth2.TokenSource) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, tokens: tokens}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	form   *formBody

	// bearer overrides the token source, used by refresh.
	bearer string
	// fallback replaces the generic "Request failed (status)" message.
	fallback string
}

type formBody struct {
	contentType string
	data        io.Reader
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := "application/json"
	switch {
	case r.form != nil:
		body, contentType = r.form.data, r.form.contentType
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("api encode %s: %w", r.path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("api request %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	requestID := uuid.New().String()
	req.Header.Set(requestIDHeader, requestID)
	c.authorize(req, r.bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api read %s: %w", r.path, err)
	}

	log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw, r.fallback, requestID)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api decode %s: %w", r.path, err)
	}
	return nil
}

// authorize prefers an explicit bearer, then the token source. A missing token
// is not an error: login and register are sent without one.
func (c *Client) authorize(req *http.Request, bearer string) {
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
		return
	}
	if c.tokens == nil {
		return
	}
	tok, err := c.tokens.Token()
	if err != nil || tok.AccessToken == "" {
		return
	}
	tok.SetAuthHeader(req)
}

func newAPIError(status int, raw []byte, fallback, requestID string) *APIError {
	var body apimodel.ErrorBody
	_ = json.Unmarshal(raw, &body)

	msg := body.Message()
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed (%d)", status)
	}
	return &APIError{StatusCode: status, Message: msg, RequestID: requestID}
}
