package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/emberstone/vitrine/internal/server"
	"github.com/emberstone/vitrine/pkg/cache"
	"github.com/emberstone/vitrine/pkg/client"
	"github.com/emberstone/vitrine/pkg/core"
	"github.com/emberstone/vitrine/pkg/hub"
	"github.com/emberstone/vitrine/pkg/meter"
	"github.com/emberstone/vitrine/pkg/report"
	"github.com/emberstone/vitrine/pkg/sources"
	"github.com/emberstone/vitrine/pkg/tracer"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

func run(ctx context.Context, cfg Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	traceProvider, err := tracer.NewOTLPProvider(ctx, cfg.Tracing)
	if err != nil {
		log.Error().Err(err).Msg("Unable to configure trace provider.")
		return err
	}

	defer func() { _ = traceProvider.Stop(context.Background()) }()

	if cfg.EnableMetrics {
		meterProvider, errMeter := meter.NewOTLPProvider(ctx, cfg.Metrics)
		if errMeter != nil {
			log.Error().Err(errMeter).Msg("Unable to configure meter provider.")
			return errMeter
		}

		otel.SetMeterProvider(meterProvider)

		defer func() { _ = meterProvider.Stop(context.Background()) }()
	}

	store := cache.New()

	source, err := newSource(ctx, cfg, store)
	if err != nil {
		return err
	}

	loader := core.NewLoader(source, store, cfg.ListMaxAge, traceProvider.Tracer("vitrine"))
	reporter := report.NewClient(cfg.WebhookURL)

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.New(loader, reporter).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("address", cfg.ListenAddress).Str("source", cfg.Source).Msg("Starting vitrine")

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func newSource(ctx context.Context, cfg Config, store *cache.Store) (core.Source, error) {
	switch cfg.Source {
	case "github":
		options := []client.Option{
			client.WithMetrics(cfg.EnableMetrics),
			client.WithRetry(3, time.Second),
			client.WithRateLimiter(30, 5, time.Now().Add(time.Minute)),
		}

		if cfg.GithubToken != "" {
			options = append([]client.Option{client.WithToken(cfg.GithubToken)}, options...)
		}

		ghClient, err := client.New(ctx, options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}

		raw := sources.NewRaw(cfg.RawBaseURL)

		return sources.NewGitHub(ghClient.GithubClient(), raw, cfg.GithubSearchQuery), nil

	case "hub":
		if cfg.HubAPIURL == "" {
			return nil, errors.New("missing hub API URL")
		}

		return sources.NewHub(hub.NewClient(cfg.HubAPIURL), store), nil

	default:
		return nil, fmt.Errorf("unknown source: %s", cfg.Source)
	}
}
