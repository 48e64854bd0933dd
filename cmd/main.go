package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"authz-service/internal/authz"
	"authz-service/internal/cache"
	"authz-service/internal/config"
	"authz-service/internal/directory"
	"authz-service/internal/handlers"
	"authz-service/internal/middleware"
	"authz-service/internal/models"
	"authz-service/internal/repository"
	"authz-service/internal/seeders"
	"authz-service/internal/services"
	"authz-service/internal/workflow"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.AutoMigrate(
		&models.Employee{},
		&models.ApprovalRequest{},
		&models.ApprovalDecision{},
		&models.ApprovalAuditLog{},
	); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	// Seed demo directory data (development only)
	if cfg.SeedDemo {
		if err := seeders.SeedDemoEmployees(db); err != nil {
			logger.Warnf("Failed to seed demo employees: %v", err)
		}
	}

	// Load access tables: built-in defaults, optionally overridden from file
	catalog := authz.NewCatalog()
	routeTables := authz.DefaultRouteTables()
	if cfg.TablesPath != "" {
		catalog, routeTables, err = authz.LoadTables(cfg.TablesPath)
		if err != nil {
			logger.Fatalf("Failed to load access tables from %s: %v", cfg.TablesPath, err)
		}
		logger.Infof("Access tables loaded from %s", cfg.TablesPath)
	}

	// Initialize role cache (optional - service works without Redis)
	var roleCache *cache.RoleCache
	if cfg.RedisAddr != "" {
		roleCache = cache.NewRoleCache(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), 0, 5*time.Minute)
		if roleCache.IsAvailable() {
			logger.Info("Role cache initialized")
		} else {
			logger.Warn("Redis unreachable, role lookups will hit the database")
		}
	} else {
		logger.Info("REDIS_ADDR not configured, role caching disabled")
	}

	// Initialize directory and workflow core
	dir := directory.New(db, roleCache)
	chains := workflow.NewChainResolver(dir)
	machine := workflow.NewMachine(chains, dir)

	// Initialize repository and services
	requestRepo := repository.NewRequestRepository(db)
	approvalService := services.NewApprovalService(requestRepo, machine, dir, logger)
	accessService := services.NewAccessService(catalog, routeTables, logger)

	// Initialize handlers
	approvalHandler := handlers.NewApprovalHandler(approvalService)
	accessHandler := handlers.NewAccessHandler(accessService, dir, cfg.TablesPath)
	employeeHandler := handlers.NewEmployeeHandler(db, dir)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))

	// Access check endpoints
	{
		api.POST("/access/can-perform", accessHandler.CanPerform)
		api.POST("/access/can-access-route", accessHandler.CanAccessRoute)
	}

	// Approval endpoints
	{
		api.POST("/approvals", approvalHandler.Submit) // Any authenticated employee may open a request for themselves
		api.GET("/approvals/pending", approvalHandler.ListPending)
		api.GET("/approvals/my-requests", approvalHandler.ListMyRequests) // No special permission needed for own requests
		api.GET("/approvals/:id", approvalHandler.GetRequest)
		api.DELETE("/approvals/:id", approvalHandler.Cancel) // Only requester can cancel
		api.POST("/approvals/:id/approve", middleware.RequirePermission(accessService, authz.ModuleApprovals, authz.ActionApprove), approvalHandler.Approve)
		api.POST("/approvals/:id/reject", middleware.RequirePermission(accessService, authz.ModuleApprovals, authz.ActionApprove), approvalHandler.Reject)
		api.GET("/approvals/:id/history", approvalHandler.GetHistory)
	}

	// Admin endpoints
	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(authz.RoleAdmin))
	{
		admin.POST("/access-tables/reload", accessHandler.ReloadTables)
		admin.GET("/employees/:id", employeeHandler.GetEmployee)
		admin.PUT("/employees/:id/role", employeeHandler.AssignRole)
	}

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8097"
	}

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Infof("Authz service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutting down server...")

	if roleCache != nil {
		if err := roleCache.Close(); err != nil {
			logger.Warnf("Failed to close role cache: %v", err)
		}
	}

	logger.Info("Server shutdown complete")
}
