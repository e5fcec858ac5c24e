package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "loofah",
		Usage:   "feed tone-moderation daemon (scrubs the feed, gently)",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the HTTP API",
			Value:   ":8200",
			EnvVars: []string{"LOOFAH_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":8201",
			EnvVars: []string{"LOOFAH_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "prefs-path",
			Usage:   "file path for durable preference state (ignored when redis is configured)",
			Value:   "data/loofah/prefs.json",
			EnvVars: []string{"LOOFAH_PREFS_PATH"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for preference state, eg redis://localhost:6379/0",
			EnvVars: []string{"LOOFAH_REDIS_URL"},
		},
		&cli.DurationFlag{
			Name:    "pref-flush-interval",
			Usage:   "how often learned preferences are flushed to durable storage",
			Value:   5 * time.Second,
			EnvVars: []string{"LOOFAH_PREF_FLUSH_INTERVAL"},
		},
		&cli.StringFlag{
			Name:    "completion-host",
			Usage:   "base URL of the completion service; empty means local-fallback only",
			EnvVars: []string{"LOOFAH_COMPLETION_HOST"},
		},
		&cli.StringFlag{
			Name:    "completion-api-key",
			EnvVars: []string{"LOOFAH_COMPLETION_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "completion-model",
			Value:   "gpt-4o-mini",
			EnvVars: []string{"LOOFAH_COMPLETION_MODEL"},
		},
		&cli.DurationFlag{
			Name:    "completion-timeout",
			Usage:   "per-call deadline; slower counts as unavailable and falls back locally",
			Value:   15 * time.Second,
			EnvVars: []string{"LOOFAH_COMPLETION_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:    "completion-rate-limit",
			Usage:   "max requests per second to the completion service (0 for unlimited)",
			Value:   8,
			EnvVars: []string{"LOOFAH_COMPLETION_RATE_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "rewrite-workers",
			Usage:   "bound on concurrent completion calls per rewrite batch",
			Value:   4,
			EnvVars: []string{"LOOFAH_REWRITE_WORKERS"},
		},
		&cli.StringFlag{
			Name:    "admin-token",
			Usage:   "shared secret required (as bearer token) on learn endpoints; empty disables auth",
			EnvVars: []string{"LOOFAH_ADMIN_TOKEN"},
		},
		&cli.StringSliceFlag{
			Name:    "cors-allowed-origins",
			Usage:   "origins allowed for cross-origin requests",
			Value:   cli.NewStringSlice("*"),
			EnvVars: []string{"LOOFAH_CORS_ALLOWED_ORIGINS"},
		},
		&cli.StringFlag{
			Name:    "body-limit",
			Usage:   "max request body size accepted by the API",
			Value:   "1M",
			EnvVars: []string{"LOOFAH_BODY_LIMIT"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		// At a minimum, you need to set
		// OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			slog.Info("setting up trace exporter", "endpoint", ep)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				slog.Error("failed to create trace exporter", "err", err)
				os.Exit(-1)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					slog.Error("failed to shutdown trace exporter", "err", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("loofah"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),         // DataDog
					attribute.String("environment", os.Getenv("ENVIRONMENT")), // Others
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		srv, err := NewServer(Config{
			Logger:              logger,
			Bind:                cctx.String("bind"),
			PrefsPath:           cctx.String("prefs-path"),
			RedisURL:            cctx.String("redis-url"),
			PrefFlushInterval:   cctx.Duration("pref-flush-interval"),
			CompletionHost:      cctx.String("completion-host"),
			CompletionAPIKey:    cctx.String("completion-api-key"),
			CompletionModel:     cctx.String("completion-model"),
			CompletionTimeout:   cctx.Duration("completion-timeout"),
			CompletionRateLimit: cctx.Int("completion-rate-limit"),
			RewriteWorkers:      cctx.Int("rewrite-workers"),
			AdminToken:          cctx.String("admin-token"),
			CORSAllowedOrigins:  cctx.StringSlice("cors-allowed-origins"),
			BodyLimit:           cctx.String("body-limit"),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("metrics listener failed", "err", err)
			}
		}()

		return srv.RunAPI(ctx)
	},
}
