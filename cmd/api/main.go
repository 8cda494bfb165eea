package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/config"
	"fiscal-coupon/internal/coupon"
	"fiscal-coupon/internal/database"
	"fiscal-coupon/internal/driver/virtual"
	"fiscal-coupon/internal/handler"
	"fiscal-coupon/internal/model"
	"fiscal-coupon/internal/repository"
	"fiscal-coupon/internal/router"
	"fiscal-coupon/internal/service"

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
	logger.Info().Msg("starting fiscal coupon API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the device session
	profile, err := loadProfile(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load capability profile: %w", err)
	}

	printer, err := virtual.New(virtual.Config{
		Profile:      profile,
		Charset:      cfg.Device.Charset,
		SerialNumber: cfg.Device.SerialNumber,
		PendingReadX: cfg.Device.PendingReadX,
		Tape:         os.Stderr,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize device: %w", err)
	}

	machine, err := coupon.NewMachine(ctx, printer, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize device: %w", err)
	}

	// Initialize journal database
	pool, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	journalRepo := repository.NewJournalRepository(pool, logger)
	tillRepo := repository.NewTillRepository(pool, logger)

	// Initialize services
	session := service.NewSession(machine)
	couponService := service.NewCouponService(session, journalRepo, tillRepo, cfg.Recovery, logger)
	tillService := service.NewTillService(session, tillRepo, logger)

	// Initialize HTTP handlers
	couponHandler := handler.NewCouponHandler(couponService, logger)
	tillHandler := handler.NewTillHandler(tillService, logger)

	// Initialize router
	mux := router.New(couponHandler, tillHandler, cfg.Auth.APIKey, logger)

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

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// A coupon still in progress stays open in the device and is
		// cancelled by the recovery loop of the next issue.
		if state := machine.State(); state != model.StatusIdle {
			logger.Warn().Str("state", state.String()).Msg("coupon left in progress at shutdown")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// loadProfile returns the capability profile of the device: the built-in
// one, or the profile named by DEVICE_PROFILE read from S3 with a local
// file system fallback.
func loadProfile(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (capability.Set, error) {
	profile := capability.DefaultProfile()

	if cfg.Device.Profile != "" {
		fileLoader := capability.NewFileLoader(logger)
		var s3Loader capability.Loader

		if cfg.S3.Enabled {
			loader, err := capability.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
			if err != nil {
				logger.Warn().
					Err(err).
					Msg("failed to initialise S3 loader, falling back to local file system only")
			} else {
				s3Loader = loader
			}
		} else {
			logger.Info().Msg("using local file system for capability profiles (S3 disabled)")
		}

		loaded, err := capability.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger).
			Load(ctx, cfg.Device.Profile)
		if err != nil {
			return capability.Set{}, err
		}
		profile = loaded
	}

	if cfg.Device.Model != "" {
		profile.Model = cfg.Device.Model
	}

	return profile, nil
}
