package client

import "context"

// Health checks API availability
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, "GET", "/health", nil, nil)
}
