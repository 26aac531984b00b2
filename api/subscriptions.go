package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-subscription-client/apimodel"
)

// ListSubscriptions returns the user's subscriptions, newest first. An empty
// status returns every status.
func (c *Client) ListSubscriptions(ctx context.Context, status string) ([]apimodel.Subscription, error) {
	r := request{method: http.MethodGet, path: "/api/subscriptions"}
	if status != "" {
		r.query = url.Values{"status": {status}}
	}
	subs := []apimodel.Subscription{}
	if err := c.do(ctx, r, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) CreateSubscription(ctx context.Context, sub apimodel.NewSubscription) (*apimodel.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	var created apimodel.Subscription
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/subscriptions", body: sub}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateSubscription(ctx context.Context, id int64, patch apimodel.SubscriptionPatch) (*apimodel.Subscription, error) {
	var updated apimodel.Subscription
	if err := c.do(ctx, request{method: http.MethodPatch, path: subscriptionPath(id), body: patch}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteSubscription(ctx context.Context, id int64) error {
	var deleted apimodel.Deleted
	return c.do(ctx, request{method: http.MethodDelete, path: subscriptionPath(id)}, &deleted)
}

func subscriptionPath(id int64) string {
	return fmt.Sprintf("/api/subscriptions/%d", id)
}
