package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotFound indicates that the hub API does not know the plugin.
var ErrNotFound = errors.New("plugin not found")

// APIError an API error.
type APIError struct {
	StatusCode int
	Message    string
}

func (a *APIError) Error() string {
	return fmt.Sprintf("%d: %s", a.StatusCode, a.Message)
}

// Client for the hub plugin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a hub API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// List gets the full plugin collection.
func (c *Client) List(ctx context.Context) ([]Plugin, error) {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	body, err := c.get(ctx, baseURL.String())
	if err != nil {
		return nil, err
	}

	var entries []map[string]interface{}
	err = json.Unmarshal(body, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal plugin collection: %w", err)
	}

	plugins := make([]Plugin, 0, len(entries))
	for _, entry := range entries {
		p, err := decodePlugin(entry)
		if err != nil {
			return nil, err
		}

		plugins = append(plugins, p)
	}

	return plugins, nil
}

// GetByID gets one fully populated detail record.
func (c *Client) GetByID(ctx context.Context, id int64) (*Detail, error) {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	endpoint, err := baseURL.Parse(path.Join(baseURL.Path, strconv.FormatInt(id, 10)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint URL: %w", err)
	}

	body, err := c.get(ctx, endpoint.String())
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}

		return nil, err
	}

	var entry map[string]interface{}
	err = json.Unmarshal(body, &entry)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal plugin detail: %w", err)
	}

	d, err := decodeDetail(entry)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call API: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, &APIError{
			Message:    string(body),
			StatusCode: resp.StatusCode,
		}
	}

	return body, nil
}
