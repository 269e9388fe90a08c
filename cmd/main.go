package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"variations-service/internal/clients"
	"variations-service/internal/config"
	"variations-service/internal/events"
	"variations-service/internal/handlers"
	"variations-service/internal/middleware"
	"variations-service/internal/repository"
	"variations-service/internal/session"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Product Variations API
// @version 1.0.0
// @description Attribute catalog and variation matrix service with multi-tenant support
// @termsOfService http://swagger.io/terms/

// @contact.name Variations API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8093
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	// Set Redis password from GCP Secret Manager
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repositories
	attributesRepo := repository.NewAttributesRepository(db, redisClient)
	variationsRepo := repository.NewVariationsRepository(db, redisClient)

	// Initialize event publisher for audit trail only if NATS_URL is set
	var eventsPublisher *events.Publisher
	natsURL := os.Getenv("NATS_URL")
	if natsURL != "" {
		var err error
		eventsPublisher, err = events.NewPublisher(logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
	}()

	// Initialize clients
	productsClient := clients.NewProductsClient()

	// Edit-session registry backed by Redis locks
	sessionManager := session.NewManager(redisClient, logger, cfg.SessionTTL)

	// Initialize handlers with event publisher (may be nil if NATS not configured)
	attributesHandler := handlers.NewAttributesHandler(attributesRepo, eventsPublisher)
	variationsHandler := handlers.NewVariationsHandler(attributesRepo, variationsRepo, sessionManager, productsClient, eventsPublisher)
	importHandler := handlers.NewImportHandler(attributesRepo)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("variations-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("variations-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "variations_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize RBAC middleware
	staffServiceURL := os.Getenv("STAFF_SERVICE_URL")
	if staffServiceURL == "" {
		staffServiceURL = "http://staff-service:8080"
	}
	rbacMw := rbac.NewMiddlewareWithURL(staffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("variations-service"))
	router.Use(gosharedmw.CompressionMiddleware())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	// Initialize Istio auth middleware for Keycloak JWT validation
	// During migration, AllowLegacyHeaders enables fallback to X-* headers from auth-bff
	istioAuthLogger := logrus.NewEntry(logger).WithField("component", "istio_auth")
	istioAuth := gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: true, // Allow X-User-ID, X-Tenant-ID during migration
		Logger:             istioAuthLogger,
	})

	// Authentication middleware
	// In development: use DevelopmentAuthMiddleware for local testing
	// In production: use IstioAuth which reads x-jwt-claim-* headers from Istio
	//                or falls back to X-* headers from auth-bff during migration
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
		api.Use(middleware.TenantMiddleware()) // Still needed in dev mode
	} else {
		api.Use(istioAuth)
	}

	// API routes
	v1 := api.Group("")
	{
		attributes := v1.Group("/attributes")
		{
			// Read operations - require products:read permission
			attributes.GET("", rbacMw.RequirePermission(rbac.PermissionProductsRead), attributesHandler.GetAttributes)
			attributes.GET("/:id", rbacMw.RequirePermission(rbac.PermissionProductsRead), attributesHandler.GetAttribute)

			// Create operations - require products:create permission
			attributes.POST("", rbacMw.RequirePermission(rbac.PermissionProductsCreate), attributesHandler.CreateAttribute)
			attributes.POST("/:id/values", rbacMw.RequirePermission(rbac.PermissionProductsCreate), attributesHandler.CreateValue)

			// Update operations - require products:update permission
			attributes.PUT("/:id", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), attributesHandler.UpdateAttribute)
			attributes.PUT("/:id/values/:valueId", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), attributesHandler.UpdateValue)

			// Delete operations - require products:delete permission
			attributes.DELETE("/bulk", rbacMw.RequirePermission(rbac.PermissionProductsDelete), attributesHandler.BulkDeleteAttributes)
			attributes.DELETE("/:id", rbacMw.RequirePermission(rbac.PermissionProductsDelete), attributesHandler.DeleteAttribute)
			attributes.DELETE("/:id/values/:valueId", rbacMw.RequirePermission(rbac.PermissionProductsDelete), attributesHandler.DeleteValue)

			// Import - require products:import permission
			attributes.GET("/import/template", rbacMw.RequirePermission(rbac.PermissionProductsImport), importHandler.GetImportTemplate)
			attributes.POST("/import", rbacMw.RequirePermission(rbac.PermissionProductsImport), importHandler.ImportAttributes)
		}

		products := v1.Group("/products/:productId")
		{
			// Persisted variations - require products:read permission
			products.GET("/variations", rbacMw.RequirePermission(rbac.PermissionProductsRead), variationsHandler.GetVariations)

			// Edit session lifecycle - require products:update permission
			sess := products.Group("/variations/session", rbacMw.RequirePermission(rbac.PermissionProductsUpdate))
			{
				sess.POST("", variationsHandler.OpenSession)
				sess.GET("", variationsHandler.GetSession)
				sess.DELETE("", variationsHandler.CloseSession)

				sess.POST("/attributes", variationsHandler.AttachAttribute)
				sess.DELETE("/attributes/:attributeId", variationsHandler.DetachAttribute)
				sess.PUT("/attributes/:attributeId/values", variationsHandler.SetSelectedValues)
				sess.PUT("/attributes/:attributeId/flags", variationsHandler.SetSelectionFlags)

				sess.POST("/generate", variationsHandler.GenerateVariations)
				sess.PATCH("/variations/:key", variationsHandler.UpdateVariation)
				sess.DELETE("/variations/:key", variationsHandler.RemoveVariation)

				sess.POST("/save", variationsHandler.SaveVariations)
			}
		}
	}

	// =============================================================================
	// PUBLIC STOREFRONT ENDPOINTS (no auth required, only tenant context)
	// These endpoints let public storefronts browse variation matrices
	// =============================================================================
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware()) // Require tenant context only
	{
		storefront.GET("/attributes", attributesHandler.GetAttributes)
		storefront.GET("/attributes/:id", attributesHandler.GetAttribute)
		storefront.GET("/products/:productId/variations", variationsHandler.GetVariations)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := cfg.Port

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Variations service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down variations-service...")

	// Shutdown tracer provider
	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Variations service stopped")
}
