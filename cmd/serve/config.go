package serve

import (
	"time"

	"github.com/emberstone/vitrine/pkg/meter"
	"github.com/emberstone/vitrine/pkg/tracer"
	"github.com/urfave/cli/v2"
)

// Config represents the configuration for the serve command.
type Config struct {
	ListenAddress string

	Source            string
	GithubToken       string
	GithubSearchQuery string
	RawBaseURL        string
	HubAPIURL         string
	WebhookURL        string
	ListMaxAge        time.Duration

	EnableMetrics bool
	Metrics       meter.Config
	Tracing       tracer.Config
}

func buildConfig(cliCtx *cli.Context) Config {
	return Config{
		ListenAddress:     cliCtx.String(flagListenAddress),
		Source:            cliCtx.String(flagSource),
		GithubToken:       cliCtx.String(flagGitHubToken),
		GithubSearchQuery: cliCtx.String(flagGithubSearchQuery),
		RawBaseURL:        cliCtx.String(flagRawBaseURL),
		HubAPIURL:         cliCtx.String(flagHubAPIURL),
		WebhookURL:        cliCtx.String(flagWebhookURL),
		ListMaxAge:        cliCtx.Duration(flagListMaxAge),
		EnableMetrics:     cliCtx.Bool(flagEnableMetrics),
		Metrics: meter.Config{
			Address:     cliCtx.String(flagMetricsAddress),
			Insecure:    cliCtx.Bool(flagMetricsInsecure),
			Username:    cliCtx.String(flagMetricsUsername),
			Password:    cliCtx.String(flagMetricsPassword),
			ServiceName: "vitrine",
		},
		Tracing: tracer.Config{
			Address:     cliCtx.String(flagTracingAddress),
			Insecure:    cliCtx.Bool(flagTracingInsecure),
			Username:    cliCtx.String(flagTracingUsername),
			Password:    cliCtx.String(flagTracingPassword),
			Probability: cliCtx.Float64(flagTracingProbability),
			ServiceName: "vitrine",
		},
	}
}
