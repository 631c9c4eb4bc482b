package client

import (
	"context"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

// retryClient retries transient GitHub failures with exponential backoff,
// wrapping whatever transport chain was configured before it.
type retryClient struct {
	retryClient *retryablehttp.Client
}

func (r retryClient) Apply(ctx context.Context, c *Client) error {
	// The retry client drives the chain built so far.
	r.retryClient.HTTPClient = &http.Client{
		Transport: c.client.Transport,
	}
	r.retryClient.Logger = log.Ctx(ctx)

	c.client.Transport = &retryablehttp.RoundTripper{Client: r.retryClient}

	return nil
}
