// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"costbook/internal/domain/auth"
	"costbook/internal/domain/catalogs/account"
	"costbook/internal/domain/catalogs/category"
	"costbook/internal/domain/catalogs/product"
	"costbook/internal/domain/metrics"
	"costbook/internal/domain/records/entry"
	"costbook/internal/domain/records/purchase"
	"costbook/internal/domain/sharelink"
	"costbook/internal/infrastructure/http/v1/handlers"
	"costbook/internal/infrastructure/http/v1/middleware"
	"costbook/internal/infrastructure/storage/postgres"
	"costbook/internal/infrastructure/storage/postgres/catalog_repo"
	"costbook/internal/infrastructure/storage/postgres/metrics_repo"
	"costbook/internal/infrastructure/storage/postgres/record_repo"
	"costbook/internal/infrastructure/storage/postgres/sharelink_repo"
	"costbook/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager runs all repository work
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Domain wiring: repos take the TxManager, services compose repos.
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	accountRepo := catalog_repo.NewAccountRepo(cfg.TxManager)
	categoryRepo := catalog_repo.NewCategoryRepo(cfg.TxManager)
	entryRepo := record_repo.NewEntryRepo(cfg.TxManager)
	purchaseRepo := record_repo.NewPurchaseRepo(cfg.TxManager)
	metricsRepo := metrics_repo.NewMetricsRepo(cfg.TxManager)
	shareLinkRepo := sharelink_repo.NewShareLinkRepo(cfg.TxManager)

	productService := product.NewService(productRepo, cfg.TxManager)
	accountService := account.NewService(accountRepo, cfg.TxManager)
	categoryService := category.NewService(categoryRepo, cfg.TxManager)
	entryService := entry.NewService(entryRepo, accountService, categoryService, cfg.TxManager)
	purchaseService := purchase.NewService(purchaseRepo, productService, cfg.TxManager)
	metricsService := metrics.NewService(metricsRepo, accountService, categoryService, productService)
	shareLinkService := sharelink.NewService(shareLinkRepo, cfg.TxManager)

	baseHandler := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg, baseHandler)

		// Public share link resolution: the token is the capability.
		// Auth is optional so resolves by logged-in users still carry
		// their identity in the request log.
		public := v1.Group("")
		public.Use(middleware.OptionalAuth(cfg.JWTValidator))
		shareLinkHandler := handlers.NewShareLinkHandler(baseHandler, metricsService, shareLinkService)

		// Protected endpoints
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.UserContext())

		shareLinkHandler.RegisterRoutes(public, protected)

		catalogs := protected.Group("/catalog")
		RegisterCatalogRoutes(catalogs.Group("/products"), handlers.NewProductHandler(baseHandler, productService))
		RegisterCatalogRoutes(catalogs.Group("/accounts"), handlers.NewAccountHandler(baseHandler, accountService))
		RegisterCatalogRoutes(catalogs.Group("/categories"), handlers.NewCategoryHandler(baseHandler, categoryService))

		handlers.NewEntryHandler(baseHandler, entryService).RegisterRoutes(protected)
		handlers.NewPurchaseHandler(baseHandler, purchaseService).RegisterRoutes(protected)
		handlers.NewMetricsHandler(baseHandler, metricsService).RegisterRoutes(protected)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig, baseHandler *handlers.BaseHandler) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
	protectedAuth.Use(middleware.UserContext())

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}
