package serve

import (
	"github.com/emberstone/vitrine/pkg/core"
	"github.com/emberstone/vitrine/pkg/logger"
	"github.com/emberstone/vitrine/pkg/sources"
	"github.com/ettle/strcase"
	"github.com/urfave/cli/v2"
)

const (
	flagLogLevel          = "log-level"
	flagListenAddress     = "listen-address"
	flagSource            = "source"
	flagGitHubToken       = "github-token"
	flagGithubSearchQuery = "github-search-query"
	flagRawBaseURL        = "raw-base-url"
	flagHubAPIURL         = "hub-api-url"
	flagWebhookURL        = "webhook-url"
	flagListMaxAge        = "list-max-age"

	flagEnableMetrics   = "enable-metrics"
	flagMetricsAddress  = "metrics-address"
	flagMetricsInsecure = "metrics-insecure"
	flagMetricsUsername = "metrics-username"
	flagMetricsPassword = "metrics-password"

	flagTracingAddress     = "tracing-address"
	flagTracingInsecure    = "tracing-insecure"
	flagTracingUsername    = "tracing-username"
	flagTracingPassword    = "tracing-password"
	flagTracingProbability = "tracing-probability"
)

// Command creates the serve command.
func Command() *cli.Command {
	cmd := &cli.Command{
		Name:        "serve",
		Usage:       "Serve the plugin catalog",
		Description: "Launch the vitrine catalog server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagLogLevel,
				Usage:   "Log level",
				EnvVars: []string{strcase.ToSNAKE(flagLogLevel)},
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    flagListenAddress,
				Usage:   "Address to listen on",
				EnvVars: []string{strcase.ToSNAKE(flagListenAddress)},
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:    flagSource,
				Usage:   "Plugin data source (hub or github)",
				EnvVars: []string{strcase.ToSNAKE(flagSource)},
				Value:   "hub",
			},
			&cli.StringFlag{
				Name:    flagGitHubToken,
				Usage:   "GitHub Token.",
				EnvVars: []string{strcase.ToSNAKE(flagGitHubToken)},
			},
			// flagGithubSearchQuery the query used to search plugins on GitHub.
			// https://help.github.com/en/github/searching-for-information-on-github/searching-for-repositories
			&cli.StringFlag{
				Name:    flagGithubSearchQuery,
				Usage:   "Github search query",
				EnvVars: []string{strcase.ToSNAKE(flagGithubSearchQuery)},
				Value:   sources.DefaultSearchQuery,
			},
			&cli.StringFlag{
				Name:    flagRawBaseURL,
				Usage:   "Raw content host base URL",
				EnvVars: []string{strcase.ToSNAKE(flagRawBaseURL)},
				Value:   sources.DefaultRawBaseURL,
			},
			&cli.StringFlag{
				Name:    flagHubAPIURL,
				Usage:   "Hub Plugin API URL",
				EnvVars: []string{strcase.ToSNAKE(flagHubAPIURL)},
			},
			&cli.StringFlag{
				Name:    flagWebhookURL,
				Usage:   "Report webhook URL",
				EnvVars: []string{strcase.ToSNAKE(flagWebhookURL)},
			},
			&cli.DurationFlag{
				Name:    flagListMaxAge,
				Usage:   "Staleness window of the plugin list",
				EnvVars: []string{strcase.ToSNAKE(flagListMaxAge)},
				Value:   core.DefaultListMaxAge,
			},
			&cli.BoolFlag{
				Name:    flagEnableMetrics,
				Usage:   "Enable metrics export",
				EnvVars: []string{strcase.ToSNAKE(flagEnableMetrics)},
			},
		},
		Action: func(cliCtx *cli.Context) error {
			logger.Setup(cliCtx.String(flagLogLevel))

			cfg := buildConfig(cliCtx)

			return run(cliCtx.Context, cfg)
		},
	}

	cmd.Flags = append(cmd.Flags, getMetricsFlags()...)
	cmd.Flags = append(cmd.Flags, getTracingFlags()...)

	return cmd
}

func getMetricsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagMetricsAddress,
			Usage:   "Address to send metrics",
			EnvVars: []string{strcase.ToSNAKE(flagMetricsAddress)},
			Value:   "otel-collector.observability.svc.cluster.local:4318",
		},
		&cli.BoolFlag{
			Name:    flagMetricsInsecure,
			Usage:   "use HTTP instead of HTTPS",
			EnvVars: []string{strcase.ToSNAKE(flagMetricsInsecure)},
			Value:   true,
		},
		&cli.StringFlag{
			Name:    flagMetricsUsername,
			Usage:   "Username to connect to OTEL",
			EnvVars: []string{strcase.ToSNAKE(flagMetricsUsername)},
			Value:   "prometheus",
		},
		&cli.StringFlag{
			Name:    flagMetricsPassword,
			Usage:   "Password to connect to OTEL",
			EnvVars: []string{strcase.ToSNAKE(flagMetricsPassword)},
			Value:   "prometheus",
		},
	}
}

func getTracingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagTracingAddress,
			Usage:   "Address to send traces",
			EnvVars: []string{strcase.ToSNAKE(flagTracingAddress)},
			Value:   "jaeger.jaeger.svc.cluster.local:4318",
		},
		&cli.BoolFlag{
			Name:    flagTracingInsecure,
			Usage:   "use HTTP instead of HTTPS",
			EnvVars: []string{strcase.ToSNAKE(flagTracingInsecure)},
			Value:   true,
		},
		&cli.StringFlag{
			Name:    flagTracingUsername,
			Usage:   "Username to connect to Jaeger",
			EnvVars: []string{strcase.ToSNAKE(flagTracingUsername)},
			Value:   "jaeger",
		},
		&cli.StringFlag{
			Name:    flagTracingPassword,
			Usage:   "Password to connect to Jaeger",
			EnvVars: []string{strcase.ToSNAKE(flagTracingPassword)},
			Value:   "jaeger",
		},
		&cli.Float64Flag{
			Name:    flagTracingProbability,
			Usage:   "Probability to send traces",
			EnvVars: []string{strcase.ToSNAKE(flagTracingProbability)},
			Value:   0,
		},
	}
}
