// Package main provides the entry point for the paper search service server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixir/paper-search-service/internal/config"
	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/enrichment"
	"github.com/helixir/paper-search-service/internal/enrichment/semanticscholar"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/papersources/arxiv"
	"github.com/helixir/paper-search-service/internal/search"
	httpserver "github.com/helixir/paper-search-service/internal/server/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("paper-search-service server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	// Wire the enrichment side: Semantic Scholar client behind the
	// never-fail enricher facade.
	s2Client := semanticscholar.NewClient(semanticscholar.Config{
		BaseURL:   cfg.Enrichment.SemanticScholar.BaseURL,
		APIKey:    cfg.Enrichment.SemanticScholar.APIKey,
		Timeout:   cfg.Enrichment.SemanticScholar.Timeout,
		RateLimit: cfg.Enrichment.SemanticScholar.RateLimit,
	}, nil)
	enricher := enrichment.NewSemanticScholarEnricher(s2Client, cfg.Enrichment.SemanticScholar.CallRate, logger)

	// Wire the primary sources and register their engines.
	registry := search.NewRegistry()
	if cfg.Sources.ArXiv.Enabled {
		arxivClient := arxiv.New(arxiv.Config{
			BaseURL:    cfg.Sources.ArXiv.BaseURL,
			Timeout:    cfg.Sources.ArXiv.Timeout,
			RateLimit:  cfg.Sources.ArXiv.RateLimit,
			MaxResults: cfg.Sources.ArXiv.MaxResults,
		})
		registry.Register(search.NewArxivEngine(arxivClient, enricher, metrics, logger))
	}

	service := search.NewService(registry, search.Config{
		DefaultMaxResults: cfg.Search.DefaultMaxResults,
		MaxResultsLimit:   cfg.Search.MaxResultsLimit,
		DefaultSort:       domain.SortMethod(cfg.Search.DefaultSort),
	}, metrics, logger)

	httpSrv := httpserver.NewServer(httpserver.Config{
		Address:      cfg.Server.HTTPAddress(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.ReadTimeout,
	}, service, logger)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// Start metrics server if configured.
	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().
		Str("http_address", cfg.Server.HTTPAddress()).
		Strs("sources", sourceNames(service))
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("paper-search-service ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}

	// Shut down metrics server if running.
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("paper-search-service stopped")
	return nil
}

// sourceNames lists registered source names for the startup log line.
func sourceNames(service *search.Service) []string {
	sources := service.Sources()
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	return names
}
