// Package client builds the GitHub HTTP client used by the direct source
// generation: token auth, instrumentation, retry, and adaptive rate
// limiting compose as options over one transport chain.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/hashicorp/go-retryablehttp"
)

// Option configures the underlying HTTP client.
type Option interface {
	Apply(context.Context, *Client) error
}

// Client wraps a github.Client with a configurable transport chain.
type Client struct {
	gh     *github.Client
	client *http.Client
}

// New creates a Client, applying the options in order.
func New(ctx context.Context, options ...Option) (*Client, error) {
	c := &Client{
		client: &http.Client{Transport: http.DefaultTransport},
	}

	for _, opt := range options {
		err := opt.Apply(ctx, c)
		if err != nil {
			return nil, err
		}
	}

	c.gh = github.NewClient(c.client)

	return c, nil
}

// GithubClient returns the configured GitHub API client.
func (c *Client) GithubClient() *github.Client {
	return c.gh
}

// WithToken authenticates requests with a GitHub token.
func WithToken(token string) Option {
	return authClient{token: token}
}

// WithMetrics instruments the transport; with enable it also counts
// outbound requests.
func WithMetrics(enable bool) Option {
	return metricsClient{enabled: enable}
}

// WithRateLimiter throttles requests based on GitHub rate-limit response
// headers, keeping safetyBuffer requests in reserve.
func WithRateLimiter(remaining, safetyBuffer int, resetTime time.Time) Option {
	return adaptiveRateLimiter{
		remaining:    remaining,
		resetTime:    resetTime,
		safetyBuffer: safetyBuffer,
	}
}

// WithRetry retries failed requests with exponential backoff.
func WithRetry(retryMax int, retryWaitMin time.Duration) Option {
	r := retryClient{
		retryClient: retryablehttp.NewClient(),
	}

	r.retryClient.RetryMax = retryMax
	r.retryClient.RetryWaitMin = retryWaitMin

	return r
}
