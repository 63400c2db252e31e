package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appfaculty "github.com/school/backend/internal/application/faculty"
	appidentity "github.com/school/backend/internal/application/identity"
	"github.com/school/backend/internal/infrastructure/cache"
	"github.com/school/backend/internal/infrastructure/config"
	"github.com/school/backend/internal/infrastructure/event"
	"github.com/school/backend/internal/infrastructure/logger"
	"github.com/school/backend/internal/infrastructure/persistence"
	"github.com/school/backend/internal/infrastructure/storage"
	"github.com/school/backend/internal/infrastructure/telemetry"
	"github.com/school/backend/internal/interfaces/http/handler"
	"github.com/school/backend/internal/interfaces/http/middleware"
	"github.com/school/backend/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/school/backend/docs"
)

//	@title			School Backend API
//	@version		1.0
//	@description	Teacher, teacher position and user management for a school.

//	@contact.name	API Support
//	@contact.url	https://github.com/school/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:5000
//	@BasePath	/api

const apiVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if _, err := maxprocs.Set(maxprocs.Logger(baseLog.Sugar().Infof)); err != nil {
		baseLog.Warn("Failed to set GOMAXPROCS", zap.Error(err))
	}

	ctx := context.Background()

	// Telemetry providers. All of them are no-ops when telemetry is disabled.
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog, zapcore.InfoLevel)
	defer func() {
		_ = logger.Sync(log)
	}()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting School Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to enable database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	positionRepo := persistence.NewGormPositionRepository(db.DB)
	teacherRepo := persistence.NewGormTeacherRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	userService := appidentity.NewUserService(userRepo, log)
	positionService := appfaculty.NewPositionService(positionRepo, log)
	teacherQueries := appfaculty.NewTeacherQueryService(teacherRepo, userRepo, positionRepo, log)
	teacherService := appfaculty.NewTeacherService(txScope, teacherQueries, log)

	statsCache, closeCache, err := cache.NewStatsCacheFactory(cfg.Redis, cfg.Cache, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create stats cache", zap.Error(err))
	}
	teacherQueries.SetStatsCache(statsCache)

	objectStorage, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	avatarCfg := appidentity.DefaultAvatarConfig()
	if cfg.Storage.PresignExpiration > 0 {
		avatarCfg.UploadURLExpiry = cfg.Storage.PresignExpiration
	}
	if cfg.Storage.MaxAvatarSize > 0 {
		avatarCfg.MaxFileSize = cfg.Storage.MaxAvatarSize
	}
	userService.SetObjectStorage(objectStorage, avatarCfg)

	// Prometheus registry served on /metrics
	registry := telemetry.NewRegistry()
	registry.MustRegister(telemetry.NewTeacherPopulationCollector(teacherQueries, log))
	eventCounter, err := telemetry.NewDomainEventCounter(registry)
	if err != nil {
		log.Fatal("Failed to register event counter", zap.Error(err))
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appfaculty.NewStatsInvalidationHandler(teacherQueries, log))
	eventBus.Subscribe(eventCounter)

	var forwarder interface{ Close() error }
	if cfg.Event.ForwardEnabled {
		publisher, err := event.NewPublisher(cfg.Event, log)
		if err != nil {
			log.Fatal("Failed to create event publisher", zap.Error(err))
		}
		forwarder = publisher
		serializer := event.NewEventSerializer()
		event.RegisterAllEvents(serializer)
		eventBus.Subscribe(event.NewBrokerForwarder(publisher, serializer, cfg.Event.Topic, log))
		log.Info("Forwarding domain events",
			zap.String("topic", cfg.Event.Topic),
			zap.Strings("kafka_brokers", cfg.Event.KafkaBrokers),
		)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	userService.SetEventPublisher(eventBus)
	positionService.SetEventPublisher(eventBus)
	teacherService.SetEventPublisher(eventBus)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request ID first so every later layer can log and tag it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health", "/metrics"))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       meterProvider.IsEnabled(),
		Logger:        log,
	}))
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))
	engine.Use(middleware.Secure())
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	health := handler.NewHealthHandler().AddCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis health check disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			health.AddCheck("redis", func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			})
		}
	}
	engine.GET("/health", health.Check)

	if cfg.Telemetry.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	}

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine)
	r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	r.Register(handler.NewTeacherHandler(teacherService, teacherQueries).Routes()).
		Register(handler.NewPositionHandler(positionService).Routes()).
		Register(handler.NewUserHandler(userService).Routes()).
		Register(handler.NewSystemHandler(cfg.App.Name, apiVersion).Routes())
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Release in reverse order of construction
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if forwarder != nil {
		if err := forwarder.Close(); err != nil {
			log.Error("Error closing event publisher", zap.Error(err))
		}
	}
	if err := closeCache(); err != nil {
		log.Error("Error closing stats cache", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
