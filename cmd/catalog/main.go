package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"exchangecatalog/internal/adapter"
	"exchangecatalog/internal/config"
	cronrunner "exchangecatalog/internal/cron"
	"exchangecatalog/internal/db"
	"exchangecatalog/internal/handler"
	"exchangecatalog/internal/linking"
	"exchangecatalog/internal/logger"
	gormrepository "exchangecatalog/internal/repository/gorm"
	"exchangecatalog/internal/service"

	_ "exchangecatalog/docs"
)

func main() {
	cfgPath := os.Getenv("EXC_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("EXC_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}
	if err := db.SeedCanonicalSchema(dbConn); err != nil {
		logger.Fatal("canonical schema seed failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SystemSettingsService{Store: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}

	discoveryHTTP := &http.Client{Timeout: cfg.Discovery.HTTPTimeout}
	adapters := adapter.NewRegistry()
	adapters.Register(&adapter.Korbit{HTTP: discoveryHTTP, Logger: logger})
	adapters.Register(&adapter.Binance{HTTP: discoveryHTTP, Logger: logger})
	adapters.Register(&adapter.Bitmart{HTTP: discoveryHTTP, Logger: logger})
	adapters.Register(&adapter.Bitget{HTTP: discoveryHTTP, Logger: logger})
	adapters.Register(&adapter.Zaif{HTTP: discoveryHTTP, Logger: logger})

	mappingSvc := &service.MappingService{Store: store, Logger: logger}
	linkingSvc := &service.LinkingService{
		Store:      store,
		Strategies: linking.NewRegistry(),
		Logger:     logger,
	}
	discoverySvc := &service.DiscoveryService{
		Store:            store,
		Adapters:         adapters,
		Mappings:         mappingSvc,
		Linking:          linkingSvc,
		Logger:           logger,
		RegisterMappings: cfg.Discovery.RegisterMappings,
		ApplyLinks:       cfg.Discovery.ApplyLinks,
	}
	querySvc := &service.CatalogQueryService{Store: store}
	coverageSvc := &service.CoverageService{Store: store, Logger: logger}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	catalogHandler := &handler.CatalogHandler{
		Discovery: discoverySvc,
		Query:     querySvc,
		Logger:    logger,
	}
	catalogHandler.Register(engine)
	mappingHandler := &handler.MappingHandler{
		Mappings: mappingSvc,
		Query:    querySvc,
		Logger:   logger,
	}
	mappingHandler.Register(engine)
	coverageHandler := &handler.CoverageHandler{
		Coverage: coverageSvc,
		Logger:   logger,
	}
	coverageHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		vendors := cfg.Discovery.Vendors
		_, err = cronRunner.Add(cfg.Cron.Discovery, func(ctx context.Context) {
			if !settingsSvc.IsEnabled(ctx, service.FeatureScheduledDiscovery, true) {
				return
			}
			results := discoverySvc.DiscoverAll(ctx, vendors, false)
			for _, result := range results {
				logger.Info("cron discovery ok",
					zap.String("vendor", result.Vendor),
					zap.Int("endpoints", result.Endpoints),
					zap.Int("channels", result.Channels),
					zap.Int("products", result.Products),
					zap.Int("skipped", result.Skipped),
					zap.Int("mappings_created", result.Mappings.Created),
					zap.Int("mappings_failed", result.Mappings.Failed),
					zap.Int("endpoint_links", result.Links.EndpointLinks),
					zap.Int("channel_links", result.Links.ChannelLinks),
				)
			}
		})
		if err != nil {
			logger.Warn("cron register discovery failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
