package client

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metricsClient struct {
	enabled bool
}

func (mc metricsClient) Apply(_ context.Context, c *Client) error {
	if !mc.enabled {
		c.client.Transport = otelhttp.NewTransport(c.client.Transport)
		return nil
	}

	m := otel.Meter("vitrine")
	requestCounter, err := m.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Number of API calls."),
		metric.WithUnit("requests"),
	)
	if err != nil {
		return fmt.Errorf("creating counter: %w", err)
	}

	c.client.Transport = &requestMetricsTripper{
		requestCounter: requestCounter,
		next:           otelhttp.NewTransport(c.client.Transport),
	}

	return nil
}

type requestMetricsTripper struct {
	requestCounter metric.Int64Counter
	next           http.RoundTripper
}

func (rt *requestMetricsTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.requestCounter.Add(req.Context(), 1, metric.WithAttributes(
		attribute.String("method", req.Method),
		attribute.String("host", req.Host),
		attribute.String("path", req.URL.Path),
	))
	return rt.next.RoundTrip(req)
}
