package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-subscription-client/apimodel"
	"github.com/jrsteele09/go-subscription-client/internal/utils"
)

// ListCandidates returns detected recurring charges ordered by confidence. The
// API treats a missing status as pending.
func (c *Client) ListCandidates(ctx context.Context, status string) ([]apimodel.Candidate, error) {
	if status == "" {
		status = apimodel.CandidatePending
	}
	cands := []apimodel.Candidate{}
	r := request{method: http.MethodGet, path: "/api/candidates", query: url.Values{"status": {status}}}
	if err := c.do(ctx, r, &cands); err != nil {
		return nil, err
	}
	return cands, nil
}

func (c *Client) UpdateCandidate(ctx context.Context, id int64, patch apimodel.CandidatePatch) (*apimodel.Candidate, error) {
	var updated apimodel.Candidate
	if err := c.do(ctx, request{method: http.MethodPatch, path: candidatePath(id), body: patch}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// IgnoreCandidate marks a candidate as ignored so it drops off the pending list.
func (c *Client) IgnoreCandidate(ctx context.Context, id int64) (*apimodel.Candidate, error) {
	return c.UpdateCandidate(ctx, id, apimodel.CandidatePatch{Status: utils.Ptr(apimodel.CandidateIgnored)})
}

// ConfirmCandidate turns a pending candidate into an active subscription.
func (c *Client) ConfirmCandidate(ctx context.Context, id int64) (*apimodel.Confirmation, error) {
	var confirmation apimodel.Confirmation
	if err := c.do(ctx, request{method: http.MethodPost, path: candidatePath(id) + "/confirm"}, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (c *Client) DeleteCandidate(ctx context.Context, id int64) error {
	var deleted apimodel.Deleted
	return c.do(ctx, request{method: http.MethodDelete, path: candidatePath(id)}, &deleted)
}

func candidatePath(id int64) string {
	return fmt.Sprintf("/api/candidates/%d", id)
}
