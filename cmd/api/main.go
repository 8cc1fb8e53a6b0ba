package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	trnUseCase "github.com/amirhossein-jamali/trn-engine/internal/domain/usecase/trn"

	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/messaging"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/repository"
	timeProvider "github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate essential configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == "production")

	// Setup database configuration, environment variables taking precedence
	dbConfig := database.CreateConfigFromViperConfig(cfg)

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err = dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer dbManager.Close()

	// Run migrations
	migrationMgr := migration.NewMigrationManagerWithTimeProvider(dbManager.DB(), appLogger, tp)
	if err = migrationMgr.MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize repositories
	portfolioRepo := repository.NewPortfolioRepository(dbManager.DB(), appLogger)
	trnRepo := repository.NewTrnRepository(dbManager.DB(), appLogger, tp)
	assetRepo := repository.NewAssetRepository(dbManager.DB(), appLogger, tp)
	fxRateRepo := repository.NewFxRateRepository(dbManager.DB(), appLogger)

	// Initialize the transaction engine
	trnService := trnUseCase.NewTrnService(
		portfolioRepo,
		trnRepo,
		assetRepo,
		fxRateRepo,
		tp,
		appLogger,
		cfg.Engine.DedupWindowDays,
	)

	// Root context cancelled on shutdown, stops background workers
	rootCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	// Start the trusted row import consumer when enabled
	if cfg.Redis.Enabled {
		consumer, err := messaging.NewImportConsumer(rootCtx, messaging.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Queue:    cfg.Redis.ImportQueue,
		}, trnService, appLogger)
		if err != nil {
			appLogger.Error("Failed to connect to redis", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		defer consumer.Close()
		go consumer.Run(rootCtx)
	}

	// Periodic settlement sweep
	go runSettlementSweep(rootCtx, trnService, appLogger,
		time.Duration(cfg.Engine.SweepIntervalMinutes)*time.Minute)

	// Initialize API handlers
	trnHandler := handler.NewTrnHandler(trnService, tp, appLogger)
	healthHandler := handler.NewHealthHandler(dbManager.PoolMonitor())

	// Initialize Gin router
	router := gin.New()

	// Setup middlewares
	routes.SetupMiddlewares(router, appLogger)

	// Setup routes
	routes.SetupRoutes(router, trnHandler, healthHandler)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)
	cancelWorkers()

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown the server
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// runSettlementSweep settles due event transactions on a fixed interval
func runSettlementSweep(ctx context.Context, svc *trnUseCase.Service, appLogger coreport.Logger, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			settled, err := svc.AutoSettle(ctx)
			if err != nil {
				appLogger.Error("Settlement sweep failed", map[string]any{
					"error": err.Error(),
				})
				continue
			}
			if settled > 0 {
				appLogger.Info("Settlement sweep completed", map[string]any{
					"settled": settled,
				})
			}
		}
	}
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	// Validate server configuration
	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}

	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}

	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}

	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	// Validate database configuration
	if cfg.Database.Host == "" {
		// In production, check if environment variable exists
		if cfg.Environment == config.Production && os.Getenv("TRN_DB_HOST") == "" {
			missingConfigs = append(missingConfigs, "database.host (or TRN_DB_HOST environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.host")
		}
	}

	if cfg.Database.Port == "" {
		if cfg.Environment == config.Production && os.Getenv("TRN_DB_PORT") == "" {
			missingConfigs = append(missingConfigs, "database.port (or TRN_DB_PORT environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.port")
		}
	}

	if cfg.Database.Username == "" {
		if cfg.Environment == config.Production && os.Getenv("TRN_DB_USERNAME") == "" {
			missingConfigs = append(missingConfigs, "database.username (or TRN_DB_USERNAME environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.username")
		}
	}

	if cfg.Database.Password == "" {
		if cfg.Environment == config.Production && os.Getenv("TRN_DB_PASSWORD") == "" {
			missingConfigs = append(missingConfigs, "database.password (or TRN_DB_PASSWORD environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.password")
		}
	}

	if cfg.Database.Database == "" {
		if cfg.Environment == config.Production && os.Getenv("TRN_DB_NAME") == "" {
			missingConfigs = append(missingConfigs, "database.database (or TRN_DB_NAME environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.database")
		}
	}

	if cfg.Database.QueryTimeout == 0 {
		missingConfigs = append(missingConfigs, "database.queryTimeout")
	}

	// Validate engine configuration
	if cfg.Engine.DedupWindowDays == 0 {
		missingConfigs = append(missingConfigs, "engine.dedupWindowDays")
	}

	if cfg.Engine.SweepIntervalMinutes == 0 {
		missingConfigs = append(missingConfigs, "engine.sweepIntervalMinutes")
	}

	// Redis is optional, but when enabled it needs an address and queue
	if cfg.Redis.Enabled {
		if cfg.Redis.Addr == "" {
			missingConfigs = append(missingConfigs, "redis.addr")
		}
		if cfg.Redis.ImportQueue == "" {
			missingConfigs = append(missingConfigs, "redis.importQueue")
		}
	}

	// Environment should be set with a valid value
	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	// Logger configuration
	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	// Return error with list of missing configurations
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	// If we're in production, do additional validation for sensitive settings
	if cfg.Environment == config.Production {
		var warnings []string

		// Check database security settings
		if strings.ToLower(cfg.Database.SSLMode) != "require" && strings.ToLower(cfg.Database.SSLMode) != "verify-ca" && strings.ToLower(cfg.Database.SSLMode) != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}

		// Check timeout settings
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}

		if cfg.Server.WriteTimeout < 5*time.Second {
			warnings = append(warnings, "server.writeTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential security issues in production configuration: %v", warnings)
		}
	}

	return nil
}
