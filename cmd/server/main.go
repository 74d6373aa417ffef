package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"wealthtrack/internal/config"
	"wealthtrack/internal/database"
	"wealthtrack/internal/handlers"
	"wealthtrack/internal/logger"
	"wealthtrack/internal/middleware"
	"wealthtrack/internal/services"
	"wealthtrack/internal/storage"
	"wealthtrack/internal/validator"

	_ "wealthtrack/internal/docs" // Import swagger docs
)

// @title           WealthTrack Sync API
// @version         1.0
// @description     Stores one workspace snapshot per opaque sync identifier so a portfolio can be moved between devices.

// @host      localhost:3001
// @BasePath  /api

func main() {
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.InitWithFile(appConfig.Env, logger.FileOptions{
		Path:       appConfig.LogFile,
		MaxSizeMB:  50,
		MaxBackups: 5,
	})
	defer logger.Sync()

	if err := run(appConfig); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run(appConfig *config.Config) error {
	log := logger.Get()

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	store, cleanup, err := openStore(appConfig)
	if err != nil {
		return err
	}
	defer cleanup()

	router := newRouter(appConfig, store)
	if appConfig.OperatorAPIKey == "" {
		log.Warn("OPERATOR_API_KEY is not set, /api/stats is disabled")
	}

	log.Infof("Snapshots stored in %s (%s driver)", store.Location(), appConfig.StorageDriver)
	log.Infof("Starting WealthTrack sync server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// newRouter wires the sync handlers and middleware over store.
func newRouter(appConfig *config.Config, store storage.Store) *gin.Engine {
	// Initialize services and handlers
	syncService := services.NewSyncService(store)
	syncHandler := handlers.NewSyncHandler(syncService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", syncHandler.Health)

	registerLimiter := middleware.NewClientRateLimiter(appConfig.RegisterRateLimit, appConfig.RegisterBurst)
	api.POST("/auth/register", middleware.RateLimit(registerLimiter), syncHandler.Register)

	data := api.Group("/data")
	data.POST("/upload", middleware.BodyLimit(appConfig.MaxBodyBytes), syncHandler.Upload)
	data.GET("/download/:userId", syncHandler.Download)
	data.DELETE("/delete/:userId", syncHandler.Delete)

	// Operator routes
	api.GET("/stats", middleware.OperatorAuthMiddleware(appConfig.OperatorAPIKey), syncHandler.Stats)

	return router
}

// openStore builds the snapshot store selected by STORAGE_DRIVER. The returned
// cleanup releases any database connection.
func openStore(appConfig *config.Config) (storage.Store, func(), error) {
	if appConfig.StorageDriver == config.StorageFile {
		store, err := storage.NewFileStore(appConfig.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		return store, func() {}, nil
	}

	dbConfig := database.NewConfig(appConfig)
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		_ = dbManager.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	location := fmt.Sprintf("postgres://%s:%s/%s", dbConfig.Host, dbConfig.Port, dbConfig.DBName)
	if appConfig.StorageDriver == config.StorageSQLite {
		if abs, err := filepath.Abs(dbConfig.SQLitePath); err == nil {
			location = abs
		}
	}

	cleanup := func() {
		if err := dbManager.Close(); err != nil {
			logger.Get().Warnf("failed to close database: %v", err)
		}
	}
	return storage.NewSQLStore(dbManager.DB(), location), cleanup, nil
}
