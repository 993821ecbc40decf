package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"granel-store/internal/config"
	"granel-store/internal/database"
	"granel-store/internal/handler"
	"granel-store/internal/importer"
	"granel-store/internal/pricing"
	"granel-store/internal/repository"
	"granel-store/internal/router"
	"granel-store/internal/service"
	"granel-store/internal/whatsapp"
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
	logger.Info().Msg("starting granel-store API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	discountRepo := repository.NewDiscountRepository(pool, logger)

	// Initialize catalogue loader with S3 and local fallback
	fileLoader := importer.NewFileLoader(logger)
	var catalogueLoader importer.Loader

	if cfg.S3.Enabled {
		s3Loader, err := importer.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			catalogueLoader = fileLoader
		} else {
			catalogueLoader = s3Loader
		}
	} else {
		catalogueLoader = fileLoader
		logger.Info().Msg("using local file system for catalogue files (S3 disabled)")
	}

	// Initialize pricing and hand-off helpers
	pricer := pricing.NewCalculator(cfg.Checkout.DeliveryFee)
	whatsappBuilder := whatsapp.NewBuilder(cfg.WhatsApp.Number)

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(productRepo, logger)
	customerService := service.NewCustomerService(customerRepo, logger)
	discountService := service.NewDiscountService(discountRepo, logger)
	inventoryService := service.NewInventoryService(productRepo, cfg.Checkout.LowStockThreshold, logger)
	importService := service.NewImportService(catalogueLoader, productRepo, categoryRepo, logger)
	orderService := service.NewOrderService(
		orderRepo,
		productRepo,
		customerRepo,
		discountRepo,
		pricer,
		whatsappBuilder,
		cfg.Checkout,
		logger,
	)

	// Initialize HTTP handlers and router
	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Category: handler.NewCategoryHandler(categoryService, logger),
		Customer: handler.NewCustomerHandler(customerService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Discount: handler.NewDiscountHandler(discountService, logger),
		Stock:    handler.NewStockHandler(inventoryService, logger),
		Import:   handler.NewImportHandler(importService, logger),
	}, cfg.Auth.APIKey, logger)

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
