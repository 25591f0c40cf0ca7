package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "shopcatalog/docs"
	"shopcatalog/internal/caching"
	"shopcatalog/internal/config"
	"shopcatalog/internal/handlers"
	"shopcatalog/internal/jobs/background"
	"shopcatalog/internal/middleware"
	"shopcatalog/internal/repositories"
	"shopcatalog/internal/services"
	"shopcatalog/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/urfave/cli/v3"
)

const defaultShutdownTimeout = 15 * time.Second

type application struct {
	cache            caching.CacheService
	storage          services.MinioService
	categoryService  services.CategoryService
	attributeService services.AttributeService
	productService   services.ProductService
	filterService    services.FilterService
}

// newApplication wires repositories and services. storage may be nil.
func newApplication(cfg *config.Config, pool *pgxpool.Pool, storage services.MinioService) *application {
	cache := newCache(cfg)

	categoryRepo := repositories.NewCategoryRepo(pool)
	categoryAttributeRepo := repositories.NewCategoryAttributeRepo(pool)
	attributeRepo := repositories.NewAttributeRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	productAttributeRepo := repositories.NewProductAttributeRepo(pool)
	productImageRepo := repositories.NewProductImageRepo(pool)

	categoryService := services.NewCategoryService(categoryRepo, categoryAttributeRepo, attributeRepo, cache, cfg.TreeCacheTTL)
	attributeService := services.NewAttributeService(attributeRepo, categoryAttributeRepo, productRepo, productAttributeRepo, cache)
	presenter := services.NewProductPresenter(categoryService, attributeService, productImageRepo, storage, cfg.ImageURLExpiry)

	return &application{
		cache:            cache,
		storage:          storage,
		categoryService:  categoryService,
		attributeService: attributeService,
		productService:   services.NewProductService(productRepo, productImageRepo, categoryService, presenter, storage, cache),
		filterService: services.NewFilterService(categoryService, categoryAttributeRepo, attributeRepo, productRepo,
			productAttributeRepo, presenter),
	}
}

func newCache(cfg *config.Config) caching.CacheService {
	cache := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		log.Warnf("Redis unavailable, caching disabled: %v", err)
		return caching.NewNoopCacheService()
	}
	return cache
}

// newStorage returns nil when MinIO is disabled or unreachable.
func newStorage(ctx context.Context, cfg *config.Config) services.MinioService {
	if !cfg.MinioEnabled {
		log.Info("MinIO disabled, product images will be omitted")
		return nil
	}
	storage, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Warnf("Failed to initialize MinIO, product images disabled: %v", err)
		return nil
	}
	if err := storage.EnsureBucketExists(ctx); err != nil {
		log.Warnf("MinIO bucket %s unavailable, product images disabled: %v", cfg.MinioBucket, err)
		return nil
	}
	return storage
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cmd.Bool("migrate") {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	app := newApplication(cfg, pool, newStorage(ctx, cfg))

	stopJWKS := func() {}
	jwtConfig := middleware.JWTConfig(cfg.JWTSecret, nil)
	if cfg.JWKSURL != "" {
		kf, endBackground, err := middleware.NewJWKSKeyfunc(cfg.JWKSURL)
		if err != nil {
			return fmt.Errorf("load JWKS: %w", err)
		}
		stopJWKS = endBackground
		jwtConfig = middleware.JWTConfig("", kf)
	}
	defer stopJWKS()

	scheduler, err := background.NewJobScheduler(app.productService, cfg.NewArrivalDays, cfg.NewArrivalInterval)
	if err != nil {
		return fmt.Errorf("create job scheduler: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Errorf("Failed to stop job scheduler: %v", err)
		}
	}()

	e := newServer(app, pool, jwtConfig)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Shop catalog server v%s starting on port %d", version, cfg.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cmd.Duration("shutdown-timeout"))
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newServer(app *application, pool *pgxpool.Pool, jwtConfig echojwt.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = middleware.NewValidator()

	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	health := handlers.NewHealthHandlers(pool, app.cache, app.storage, version)
	e.GET("/health", health.HealthCheck)
	e.GET("/health/ready", health.ReadinessCheck)
	e.GET("/health/live", health.LivenessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	categoryHandlers := handlers.NewCategoryHandlers(app.categoryService)
	filterHandlers := handlers.NewFilterHandlers(app.filterService)
	productHandlers := handlers.NewProductHandlers(app.productService, app.attributeService)
	attributeHandlers := handlers.NewAttributeHandlers(app.attributeService)

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	v1.GET("/categories", categoryHandlers.Navigation)
	v1.GET("/categories/:id", categoryHandlers.GetCategory)
	v1.GET("/categories/:id/attributes", categoryHandlers.GetAttributes)
	v1.GET("/categories/:id/facets/:key", categoryHandlers.GetFacetValues)
	v1.GET("/categories/:id/filter", filterHandlers.FilterCategory)
	v1.GET("/products/filter", filterHandlers.FilterProducts)
	v1.GET("/products/new-arrivals", productHandlers.NewArrivals)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.GET("/products/:id/attributes/:key", productHandlers.GetAttributeValue)

	admin := v1.Group("/admin")
	admin.Use(echojwt.WithConfig(jwtConfig))
	admin.Use(middleware.RequireStaff())
	admin.Use(middleware.AuditAdmin())

	admin.POST("/categories", categoryHandlers.CreateCategory)
	admin.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	admin.DELETE("/categories/:id", categoryHandlers.DeleteCategory)
	admin.POST("/categories/:id/attributes", categoryHandlers.AddAttribute)
	admin.DELETE("/categories/:id/attributes/:key", categoryHandlers.RemoveAttribute)

	admin.GET("/attributes", attributeHandlers.ListAttributes)
	admin.POST("/attributes", attributeHandlers.CreateAttribute)
	admin.GET("/attributes/:key/values", attributeHandlers.ListValues)
	admin.POST("/attributes/:key/values", attributeHandlers.AddValue)

	admin.POST("/products", productHandlers.CreateProduct)
	admin.PUT("/products/:id", productHandlers.UpdateProduct)
	admin.DELETE("/products/:id", productHandlers.DeleteProduct)
	admin.GET("/products/:id/attributes", productHandlers.GetAttributes)
	admin.PUT("/products/:id/attributes/:key", productHandlers.SetAttribute)
	admin.PUT("/products/:id/legacy-attributes/:key", productHandlers.SetLegacyAttribute)
	admin.POST("/products/:id/cleanup-attributes", productHandlers.CleanupAttributes)
	admin.PUT("/products/:id/new-arrival", productHandlers.SetNewArrival)
	admin.POST("/products/:id/images", productHandlers.UploadImage)

	return e
}
