package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/config"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/replay"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/source"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse flags
	configPath := flag.String("config", "", "YAML config file (overrides env vars)")
	port := flag.String("port", "", "Server port (overrides config)")
	dev := flag.Bool("dev", false, "Development logging")
	replayPath := flag.String("replay", "", "Replay an SSE capture file (.gz supported) and exit")
	mode := flag.String("mode", string(replay.ModeSync), "Replay mode: sync or async")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
	}

	// Replay output goes to stdout, so logs go to stderr there
	outputs := []string{"stdout"}
	if *replayPath != "" {
		outputs = []string{"stderr"}
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: outputs,
		Service:     cfg.Tracing.Service,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *replayPath != "" {
		if err := runReplay(cfg, logger, *replayPath, *mode); err != nil {
			logger.Error("Replay failed", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		return
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Shutting down gracefully", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	case err := <-errChan:
		logger.Fatal("Server error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

// runReplay replays one capture file and prints the result as JSON
func runReplay(cfg *config.Config, logger *logging.Logger, path, modeName string) error {
	mode, err := replay.ParseMode(modeName)
	if err != nil {
		return err
	}

	src, err := source.Open(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var spans replay.SpanFactory
	switch cfg.Tracing.Exporter {
	case config.ExporterOTel:
		provider := tracing.NewTracerProvider(logger.Component("otel"))
		defer provider.Shutdown(context.Background())
		spans = replay.OTelSpans(provider.Tracer(cfg.Tracing.Service))
	default:
		tracer := tracing.New(cfg.Tracing.Service, logger.Component("tracing"), cfg.Tracing.Buffer)
		defer tracer.Close()
		spans = replay.TracerSpans(tracer)
	}

	span, traceID, ctx := spans(ctx, "chat.stream")
	result := replay.NewRunner(logger.Component("replay"), nil).Run(ctx, mode, src, span)

	out, err := sonic.ConfigStd.MarshalIndent(result.Response(traceID), "", "  ")
	if err != nil {
		return fmt.Errorf("encode replay result: %w", err)
	}
	fmt.Println(string(out))

	return result.Err
}
