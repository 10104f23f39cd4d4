package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/remui-admin-api/api/swagger"
	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/remui-admin-api/internal/middleware"
	"github.com/noah-isme/remui-admin-api/internal/repository"
	"github.com/noah-isme/remui-admin-api/internal/service"
	"github.com/noah-isme/remui-admin-api/pkg/cache"
	"github.com/noah-isme/remui-admin-api/pkg/config"
	"github.com/noah-isme/remui-admin-api/pkg/database"
	"github.com/noah-isme/remui-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/remui-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/remui-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/remui-admin-api/web"
)

// @title RemUI Admin Listings API
// @version 1.0.0
// @description Searchable, paginated admin listings with type-ahead suggestions
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	store, db, err := openStore(cfg, metricsSvc, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open record store", "driver", cfg.Store.Driver, "error", err)
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["database"] = db.PingContext
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "listings", logr)
	defer cacheRepo.Close() //nolint:errcheck
	if redisClient != nil {
		checks["cache"] = cacheRepo.Ping
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.StatisticsTTL, logr, redisClient != nil)

	builder := entity.NewBuilder(entity.Limits{
		DefaultPageSize: cfg.Listing.DefaultPageSize,
		MaxPageSize:     cfg.Listing.MaxPageSize,
		SuggestionLimit: cfg.Listing.SuggestionLimit,
		MinChars:        cfg.Listing.SuggestionMinChars,
	}, validator.New())

	registry := entity.Catalogue(cfg.Database.TablePrefix)
	listingHandler := handler.NewListingHandler(
		registry,
		service.NewListService(store, builder, cfg.Listing.ActiveWindow, metricsSvc, logr),
		service.NewSuggestionService(store, builder, cacheSvc, cfg.Cache.SuggestionTTL, metricsSvc, logr),
		service.NewStatisticsService(store, builder, cacheSvc, cfg.Cache.StatisticsTTL, cfg.Listing.ActiveWindow, metricsSvc, logr),
		service.NewExportService(store, builder, cfg.Listing.ExportMaxRows, cfg.Listing.ActiveWindow, metricsSvc, logr),
		handler.ListingConfig{
			BasePath:       cfg.BasePath,
			AssetBase:      "/assets",
			PerPageOptions: cfg.Listing.PerPageOptions,
			Client: handler.ClientSettings{
				Debounce:       cfg.Client.Debounce,
				BlurGrace:      cfg.Client.BlurGrace,
				RequestTimeout: cfg.Client.RequestTimeout,
				MinChars:       builder.Limits().MinChars,
				Mode:           cfg.Client.Mode,
			},
		},
		logr,
	)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	tmpl, err := web.Templates()
	if err != nil {
		logr.Sugar().Fatalw("failed to parse templates", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/assets", http.FS(web.Static()))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := r.Group(cfg.BasePath)
	if cfg.JWT.Enabled {
		verifier := service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
		admin.Use(internalmiddleware.JWT(verifier), internalmiddleware.RBAC(cfg.JWT.AllowedRoles...))
	}
	admin.GET("/pages", listingHandler.Pages)
	admin.GET("/:page", listingHandler.Page)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver, "pages", len(registry.All()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	<-exit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// openStore selects the record store named by STORE_DRIVER. The returned
// database is nil for the memory driver.
func openStore(cfg *config.Config, metricsSvc *service.MetricsService, logr *zap.Logger) (service.RecordStore, *sqlx.DB, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		mem := repository.NewMemoryStore()
		if cfg.Store.SeedFile != "" {
			collections, err := repository.LoadSeedFile(cfg.Store.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			mem.LoadAll(collections)
			logr.Info("seeded memory store", zap.String("file", cfg.Store.SeedFile), zap.Int("collections", len(collections)))
		}
		return mem, nil, nil
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewRecordRepository(db, metricsSvc, cfg.Database.QueryTimeout), db, nil
}
