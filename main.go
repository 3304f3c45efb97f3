package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/controllers"
	"github.com/kendall-kelly/cnc-shop-api/middleware"
	"github.com/kendall-kelly/cnc-shop-api/services"
	"github.com/kendall-kelly/cnc-shop-api/utils"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	logger, err := utils.NewLogger(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	logger.Info("starting CNC shop API",
		zap.String("env", cfg.GoEnv),
		zap.String("env_file", cfg.EnvFile),
		zap.String("pipeline_policy", cfg.PipelinePolicy),
		zap.Bool("auth_enabled", cfg.AuthEnabled()),
	)

	if err := config.ConnectDatabase(cfg); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := config.Migrations(config.GetDB()); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("database migration completed")

	if err := configureDesignStore(context.Background(), cfg, logger); err != nil {
		logger.Fatal("failed to configure design file storage", zap.Error(err))
	}

	router, err := setupRouter(cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up router", zap.Error(err))
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// configureDesignStore keeps design files in S3 when a bucket is configured,
// otherwise in the local upload directory.
func configureDesignStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	utils.UploadDir = cfg.UploadDir
	if !cfg.UseS3() {
		controllers.SetDesignFileStore(services.NewLocalDesignStore(cfg.UploadDir))
		logger.Info("design files stored locally", zap.String("dir", cfg.UploadDir))
		return nil
	}

	s3Service, err := services.NewS3Service(ctx, cfg)
	if err != nil {
		return err
	}
	controllers.SetDesignFileStore(services.NewS3DesignStore(s3Service))
	logger.Info("design files stored in S3", zap.String("bucket", cfg.AWSS3Bucket), zap.String("region", cfg.AWSRegion))
	return nil
}

// setupRouter builds the engine with the middleware stack and every route.
// Health endpoints stay outside authentication and rate limiting.
func setupRouter(cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	v1.GET("/health", healthCheck)
	v1.GET("/database/status", databaseStatus)
	v1.GET("/uploads/:filename", controllers.GetUploadedFile)

	rateLimit, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	authenticate, err := middleware.Authenticate(cfg, logger)
	if err != nil {
		return nil, err
	}

	api := v1.Group("")
	api.Use(rateLimit, authenticate)
	controllers.RegisterRoutes(api)

	return router, nil
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "CNC Shop API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Migrator works on both PostgreSQL and SQLite.
	tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
