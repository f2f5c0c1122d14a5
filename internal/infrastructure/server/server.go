package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/AgentOS/streamtrace/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/config"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/replay"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	srv      *http.Server
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	provider *sdktrace.TracerProvider
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.Info("Initializing streamtrace server",
		zap.String("addr", cfg.Address()),
		zap.String("exporter", cfg.Tracing.Exporter),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	// Initialize metrics first (needed by the handlers)
	var metrics *monitoring.Metrics
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = monitoring.NewMetrics(registry, cfg.Metrics.Namespace)
		logger.Info("Stream metrics initialized", zap.String("namespace", cfg.Metrics.Namespace))
	}

	// Request spans always go through the log tracer
	tracer := tracing.New(cfg.Tracing.Service, logger.Component("tracing"), cfg.Tracing.Buffer)

	var (
		spans    replay.SpanFactory
		provider *sdktrace.TracerProvider
	)
	switch cfg.Tracing.Exporter {
	case config.ExporterOTel:
		provider = tracing.NewTracerProvider(logger.Component("otel"))
		spans = replay.OTelSpans(provider.Tracer(cfg.Tracing.Service))
	default:
		spans = replay.TracerSpans(tracer)
	}
	logger.Info("Distributed tracing initialized", zap.String("exporter", cfg.Tracing.Exporter))

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
	}
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORS.Origins
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		useRateLimits(router, cfg.RateLimit, logger)
	}

	handlers := api.NewHandlers(cfg.Tracing.Service, spans, metrics, logger.Component("replay"))

	// Register routes
	router.GET("/health", handlers.Health)
	router.GET("/v1/stats", handlers.Stats)
	router.POST("/v1/replay", handlers.Replay)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		srv: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
		provider: provider,
	}, nil
}

// useRateLimits installs the global limiter, when configured, ahead of the
// per-client one so a rejected request never spends a client's budget
func useRateLimits(router *gin.Engine, cfg config.RateLimitConfig, logger *logging.Logger) {
	if cfg.GlobalRequestsPerSecond > 0 {
		burst := cfg.GlobalBurst
		if burst == 0 {
			burst = cfg.GlobalRequestsPerSecond
		}
		logger.Info("Global rate limiting enabled",
			zap.Int("rps", cfg.GlobalRequestsPerSecond),
			zap.Int("burst", burst),
		)
		router.Use(middleware.GlobalRateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.GlobalRequestsPerSecond,
			Burst:             burst,
		}))
	}

	logger.Info("Rate limiting enabled",
		zap.Int("rps", cfg.RequestsPerSecond),
		zap.Int("burst", cfg.Burst),
	)
	router.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}))
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the stream metrics, or nil when disabled
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Tracer returns the log tracer
func (s *Server) Tracer() *tracing.Tracer {
	return s.tracer
}

// Run starts the HTTP server and blocks until it is shut down
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server and flushes buffered spans
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}
	if s.provider != nil {
		if err := s.provider.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shut down tracer provider", zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to shut down tracer provider: %w", err))
		}
	}
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
