// Package report submits plugin abuse reports to a webhook.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrInvalidReport indicates a report rejected before submission.
var ErrInvalidReport = errors.New("invalid report")

// Categories the accepted reporter categories.
var Categories = []string{"user", "plugin-author", "server-operator"}

// Report a structured report about a listed plugin.
type Report struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Plugin      string `json:"plugin"` // owner/name coordinate
}

// Client posts reports to the configured webhook. Only the response
// status is consumed; the body is discarded.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a report webhook client.
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Send validates and submits one report. The report id is assigned here.
func (c *Client) Send(ctx context.Context, r Report) error {
	if err := validate(r); err != nil {
		return err
	}

	r.ID = uuid.NewString()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("webhook refused report: status %d", resp.StatusCode)
	}

	return nil
}

func validate(r Report) error {
	if r.Plugin == "" {
		return fmt.Errorf("%w: missing plugin coordinate", ErrInvalidReport)
	}

	if r.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidReport)
	}

	for _, category := range Categories {
		if r.Category == category {
			return nil
		}
	}

	return fmt.Errorf("%w: unknown category %q", ErrInvalidReport, r.Category)
}
