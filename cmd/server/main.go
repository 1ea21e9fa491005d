package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hookvoice/hook-service/internal/api"
	"github.com/hookvoice/hook-service/internal/config"
	"github.com/hookvoice/hook-service/internal/generation"
	"github.com/hookvoice/hook-service/internal/hook"
	"github.com/hookvoice/hook-service/internal/observability"
	"github.com/hookvoice/hook-service/internal/tts"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("settings_path", cfg.SettingsPath).
		Str("gemini_model", cfg.GeminiModel).
		Str("fpt_endpoint", cfg.FPTEndpoint).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Hook service starting")

	// Settings are read fresh on every request so edits apply without a restart
	loadSettings := func() (*config.Settings, error) {
		return config.LoadSettings(cfg.SettingsPath)
	}

	pipeline := hook.NewPipeline(
		loadSettings,
		generation.NewGeminiClient(cfg.GeminiModel),
		tts.NewFPTClient(cfg.FPTEndpoint),
	)

	mux := http.NewServeMux()
	mux.Handle("/api/process", api.NewHandler(pipeline, cfg.MaxUploadBytes))
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	// Ready only when the settings document loads and validates. No provider
	// is called here to avoid spending quota on probes.
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"settings": func(ctx context.Context) (bool, error) {
			if _, err := loadSettings(); err != nil {
				return false, err
			}
			return true, nil
		},
	}))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("http://localhost:%s/api/process", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace())
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
