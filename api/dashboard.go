package api

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-subscription-client/apimodel"
)

func (c *Client) Dashboard(ctx context.Context) (*apimodel.Dashboard, error) {
	var d apimodel.Dashboard
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/dashboard"}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
