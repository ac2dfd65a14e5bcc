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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"finboard/internal/analytics"
	"finboard/internal/cache"
	"finboard/internal/client/bcb"
	"finboard/internal/config"
	cronrunner "finboard/internal/cron"
	"finboard/internal/db"
	"finboard/internal/fx"
	"finboard/internal/handler"
	"finboard/internal/logger"
	gormrepository "finboard/internal/repository/gorm"
	"finboard/internal/service"
)

func main() {
	cfgPath := os.Getenv("FB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("FB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dbConn, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		log.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		log.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		log.Warn("init default system switches failed", zap.Error(err))
	}

	rateStore := initRateStore(cfg.Cache, log)
	bcbClient := bcb.NewClient(&http.Client{Timeout: cfg.FX.Timeout}, cfg.FX.BaseURL)
	if err := fx.CheckBase(cfg.FX.BaseCurrency, bcbClient); err != nil {
		log.Fatal("invalid fx.base_currency", zap.Error(err))
	}
	converter := fx.NewConverter(cfg.FX.BaseCurrency, bcbClient, fx.NewRateCache(rateStore, logger.Component(log, "fx_cache")), logger.Component(log, "fx"))
	if cfg.FX.Timeout > 0 {
		converter.Timeout = cfg.FX.Timeout
	}
	if cfg.FX.MaxLookbackDays > 0 {
		converter.MaxLookbackDays = cfg.FX.MaxLookbackDays
	}

	loc := cfg.Analytics.Location()
	journalSvc := &service.JournalService{Repo: store, Logger: logger.Component(log, "journal")}
	accountSvc := &service.AccountService{Repo: store, FX: converter, Logger: logger.Component(log, "accounts")}
	referenceSvc := &service.ReferenceService{Repo: store, Logger: logger.Component(log, "reference")}
	analyticsSvc := &service.AnalyticsService{
		Repo:     store,
		FX:       converter,
		Accounts: accountSvc,
		Logger:   logger.Component(log, "analytics"),
		Options: analytics.Options{
			Location:      loc,
			HistogramBins: cfg.Analytics.HistogramBins,
			Unclassified:  cfg.Analytics.UnclassifiedAs,
			BaseCurrency:  converter.BaseCurrency(),
		},
	}
	snapshotSvc := &service.SnapshotService{
		Repo:      store,
		Analytics: analyticsSvc,
		Logger:    logger.Component(log, "snapshots"),
		Flags:     settingsSvc,
	}
	warmupSvc := &service.FXWarmupService{
		FX:         converter,
		Currencies: cfg.FX.WarmupCurrencies,
		Logger:     logger.Component(log, "fx_warmup"),
		Flags:      settingsSvc,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(handler.RequestID())
	engine.Use(handler.AccessLog(logger.Component(log, "http")))
	engine.Use(handler.RequireUser(cfg.Server.DefaultUserID))

	(&handler.HealthHandler{DB: dbConn}).Register(engine)
	(&handler.AccountsHandler{Accounts: accountSvc}).Register(engine)
	(&handler.OperationsHandler{Journal: journalSvc}).Register(engine)
	(&handler.ReferenceHandler{Repo: store, Reference: referenceSvc}).Register(engine)
	(&handler.AnalyticsHandler{Analytics: analyticsSvc}).Register(engine)
	(&handler.FXHandler{FX: converter}).Register(engine)
	(&handler.SettingsHandler{Repo: store, Settings: settingsSvc}).Register(engine)
	handler.RegisterSwagger(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger.Component(log, "cron"), ctx, loc)
		if _, err := cronRunner.Add("performance_snapshot", cfg.Cron.PerformanceSnapshot, snapshotSvc.RunOnce); err != nil {
			log.Fatal("schedule performance snapshot failed", zap.Error(err))
		}
		if _, err := cronRunner.Add("fx_warmup", cfg.Cron.FXWarmup, warmupSvc.RunOnce); err != nil {
			log.Fatal("schedule fx warmup failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// initRateStore shares the rate cache through redis when an address is
// configured and falls back to process memory otherwise.
func initRateStore(cfg config.CacheConfig, log *zap.Logger) cache.Store {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return cache.NewMemoryStore()
	}
	rs := cache.NewRedisStore(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.KeyPrefix)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		log.Warn("redis unreachable, using in-memory rate cache", zap.String("addr", addr), zap.Error(err))
		_ = rs.Close()
		return cache.NewMemoryStore()
	}
	return rs
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,X-User-ID,X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
