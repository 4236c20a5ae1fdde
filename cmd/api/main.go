package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fvc-catalog/internal/config"
	"fvc-catalog/internal/database"
	"fvc-catalog/internal/handler"
	"fvc-catalog/internal/middleware"
	"fvc-catalog/internal/repository"
	"fvc-catalog/internal/router"
	"fvc-catalog/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting catalog API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	productRepo, closeRepo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeRepo()

	if err := productRepo.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize product data: %w", err)
	}

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, cfg.Catalog, logger)
	defer catalogService.Close()

	if cfg.Catalog.SerializeWrites {
		logger.Info().Msg("catalog mutations are serialized through a single writer")
	}

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(catalogService, logger)

	// Initialize router
	mux := router.New(productHandler, cfg.Server.StaticDir, logger)
	if cfg.Server.RateLimit > 0 {
		mux = middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst, logger)(mux)
		logger.Info().
			Float64("rps", cfg.Server.RateLimit).
			Int("burst", cfg.Server.RateBurst).
			Msg("per-client rate limiting enabled")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("storage", cfg.Storage.Backend).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newRepository builds the product repository for the configured storage backend.
// The returned function releases any resources held by the backend.
func newRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.ProductRepository, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		repo, err := repository.NewS3Repository(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Key, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil

	case config.StorageBackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresRepository(pool, logger), pool.Close, nil

	default:
		logger.Info().Str("file", cfg.Storage.FilePath).Msg("using local JSON file storage")
		return repository.NewFileRepository(cfg.Storage.FilePath, logger), func() {}, nil
	}
}
