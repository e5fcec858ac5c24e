package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loofah-social/loofah/tonemod"
	"github.com/loofah-social/loofah/tonemod/completion"
	"github.com/loofah-social/loofah/tonemod/engine"
	"github.com/loofah-social/loofah/tonemod/prefstore"
	"github.com/loofah-social/loofah/tonemod/rewrite"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"golang.org/x/time/rate"
)

type Config struct {
	Logger              *slog.Logger
	Bind                string
	PrefsPath           string
	RedisURL            string
	PrefFlushInterval   time.Duration
	CompletionHost      string
	CompletionAPIKey    string
	CompletionModel     string
	CompletionTimeout   time.Duration
	CompletionRateLimit int
	RewriteWorkers      int
	AdminToken          string
	CORSAllowedOrigins  []string
	BodyLimit           string
}

type Server struct {
	logger            *slog.Logger
	echo              *echo.Echo
	httpd             *http.Server
	coordinator       *tonemod.Coordinator
	prefs             prefstore.PrefStore
	adminToken        string
	prefFlushInterval time.Duration
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var prefs prefstore.PrefStore
	if config.RedisURL != "" {
		ps, err := prefstore.NewRedisPrefStore(config.RedisURL, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing redis prefstore: %w", err)
		}
		prefs = ps
	} else {
		if dir := filepath.Dir(config.PrefsPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating preference state directory: %w", err)
			}
		}
		prefs = prefstore.NewFilePrefStore(config.PrefsPath, logger)
	}
	if err := prefs.Load(context.Background()); err != nil {
		// startup misconfiguration is the one fatal error class
		return nil, fmt.Errorf("loading preference state: %w", err)
	}

	var client *completion.Client
	if config.CompletionHost != "" {
		logger.Info("configuring completion service", "host", config.CompletionHost, "model", config.CompletionModel)
		client = completion.NewClient(config.CompletionHost, config.CompletionAPIKey, config.CompletionModel, logger)
		if config.CompletionTimeout > 0 {
			client.Timeout = config.CompletionTimeout
		}
		if config.CompletionRateLimit > 0 {
			client.Limiter = rate.NewLimiter(rate.Limit(config.CompletionRateLimit), config.CompletionRateLimit)
		}
	} else {
		logger.Info("no completion service configured, rewrites use local fallback only")
	}

	eng := engine.NewEngine(prefs, logger)
	orch := rewrite.NewOrchestrator(client, logger)
	if config.RewriteWorkers > 0 {
		orch.Workers = config.RewriteWorkers
	}

	s := &Server{
		logger:            logger,
		coordinator:       tonemod.NewCoordinator(eng, orch, logger),
		prefs:             prefs,
		adminToken:        config.AdminToken,
		prefFlushInterval: config.PrefFlushInterval,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(requestMetrics)
	e.Use(middleware.BodyLimit(orDefault(config.BodyLimit, "1M")))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))
	e.HTTPErrorHandler = s.errorHandler

	e.GET("/_health", s.handleHealthCheck)

	e.POST("/moderation/classify", s.handleClassify)
	e.POST("/moderation/rewrite", s.handleRewrite)
	e.GET("/moderation/dialects", s.handleDialects)

	// learn endpoints mutate shared state; gate them when a token is set
	learn := e.Group("/moderation/learn", s.adminAuthMiddleware)
	learn.POST("", s.handleLearn)
	learn.POST("/reset", s.handleLearnReset)

	s.echo = e
	s.httpd = &http.Server{
		Handler:        e,
		Addr:           config.Bind,
		ReadTimeout:    time.Minute,
		WriteTimeout:   time.Minute,
		MaxHeaderBytes: 1 * (1024 * 1024),
	}

	return s, nil
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}

// requires `Authorization: Bearer <admin-token>` when a token is configured
func (s *Server) adminAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.adminToken == "" {
			return next(c)
		}
		hdr := c.Request().Header.Get(echo.HeaderAuthorization)
		if hdr != "Bearer "+s.adminToken {
			return &echo.HTTPError{
				Code:    http.StatusForbidden,
				Message: "admin token required",
			}
		}
		return next(c)
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= 500 {
		s.logger.Warn("loofah-http-internal-error", "err", err)
	}
	if !c.Response().Committed {
		c.JSON(code, map[string]any{"error": msg})
	}
}

// RunAPI serves the HTTP API until ctx is cancelled, running the preference
// flusher alongside, then shuts down gracefully with one final flush.
func (s *Server) RunAPI(ctx context.Context) error {
	flushInterval := s.prefFlushInterval
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	flusherDone := make(chan struct{})
	flusherCtx, stopFlusher := context.WithCancel(context.Background())
	go func() {
		defer close(flusherDone)
		prefstore.RunFlusher(flusherCtx, s.prefs, flushInterval, s.logger)
	}()

	s.logger.Info("starting loofah API daemon", "bind", s.httpd.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stopFlusher()
		<-flusherDone
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.httpd.Shutdown(shutdownCtx)

	// final flush happens inside the flusher on cancel
	stopFlusher()
	<-flusherDone
	return err
}

func (s *Server) RunMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}

func (s *Server) handleHealthCheck(c echo.Context) error {
	return c.JSON(200, map[string]any{"status": "ok", "service": "loofah"})
}

// normalizeStyle tolerates sloppy client spacing in style specs
func normalizeStyle(style string) string {
	return strings.TrimSpace(style)
}
