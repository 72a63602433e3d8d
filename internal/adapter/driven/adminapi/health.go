package adminapi

import (
	"context"
	"fmt"
	"net/http"
)

type healthJSON struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health calls the public health endpoint and returns the service name. It
// bypasses the response cache.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/health", nil, nil, "")
	if err != nil {
		return "", err
	}

	var h healthJSON
	if err := c.do(c.stream, req, &h); err != nil {
		return "", err
	}
	if h.Status != "ok" {
		return h.Service, fmt.Errorf("service %q reports status %q", h.Service, h.Status)
	}
	return h.Service, nil
}
