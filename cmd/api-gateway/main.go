package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

// @title SMA Timetable API
// @version 1.0.0
// @description School timetable generation and substitute recommendation
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	var db *sqlx.DB
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(ctx, db, logr); err != nil {
				logr.Fatal("failed to run migrations", zap.Error(err))
			}
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Scheduler.CacheTTL, logr, redisClient != nil)

	var persistence *service.PersistenceService
	var store service.WorkspaceStore
	if db != nil {
		persistence, err = newPersistence(db, cfg, metrics, logr)
		if err != nil {
			logr.Fatal("failed to build persistence", zap.Error(err))
		}
		// Workers outlive the signal context so Stop can flush pending saves.
		persistence.Start(context.Background())
		store = persistence
	}

	workspaces := service.NewWorkspaceService(store, logr)
	timetableSvc := service.NewTimetableService(workspaces, cacheSvc, metrics, service.TimetableConfig{
		AllowOverfill: cfg.Scheduler.AllowOverfill,
		CacheTTL:      cfg.Scheduler.CacheTTL,
	}, validate, logr)
	schoolSvc := service.NewSchoolDataService(workspaces, timetableSvc, validate, logr)
	substitutionSvc := service.NewSubstitutionService(workspaces, timetableSvc, metrics, validate, logr)
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		Credentials:       ownerCredentials(cfg.JWT.APIKeys),
	})

	fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(workspaces, fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		Retention: cfg.Exports.SignedURLTTL,
	}, validate, logr, nil, nil)
	go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	registerRoutes(r, cfg, routeDeps{
		auth:           authSvc,
		metrics:        metrics,
		authHandler:    handler.NewAuthHandler(authSvc),
		metricsHandler: handler.NewMetricsHandler(metrics),
		timetable:      handler.NewTimetableHandler(timetableSvc),
		substitutions:  handler.NewSubstitutionHandler(substitutionSvc),
		schoolData:     handler.NewSchoolDataHandler(schoolSvc),
		exports:        handler.NewExportHandler(exportSvc),
	})

	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "database", db != nil, "cache", cacheSvc.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if persistence != nil {
		if err := persistence.Stop(shutdownCtx); err != nil {
			logr.Error("pending workspace saves lost", zap.Error(err))
		}
	}
}

func newPersistence(db *sqlx.DB, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*service.PersistenceService, error) {
	teachers, err := repository.NewRecordRepository(db, models.RecordKindTeachers)
	if err != nil {
		return nil, err
	}
	classes, err := repository.NewRecordRepository(db, models.RecordKindClasses)
	if err != nil {
		return nil, err
	}
	subjects, err := repository.NewRecordRepository(db, models.RecordKindSubjects)
	if err != nil {
		return nil, err
	}
	return service.NewPersistenceService(service.PersistenceRepositories{
		School:    repository.NewSchoolSettingsRepository(db),
		Teachers:  teachers,
		Classes:   classes,
		Subjects:  subjects,
		TimeSlots: repository.NewTimeSlotConfigRepository(db),
		Versions:  repository.NewTimetableVersionRepository(db),
	}, service.PersistenceConfig{
		Debounce:     cfg.Persistence.Debounce,
		ListDebounce: cfg.Persistence.ListDebounce,
		Workers:      cfg.Persistence.Workers,
		Retries:      cfg.Persistence.Retries,
		RetryDelay:   500 * time.Millisecond,
	}, metrics, logr), nil
}

func ownerCredentials(keys []config.APIKey) []service.OwnerCredential {
	out := make([]service.OwnerCredential, 0, len(keys))
	for _, key := range keys {
		out = append(out, service.OwnerCredential{OwnerID: key.OwnerID, Role: models.UserRole(key.Role), Hash: key.Hash})
	}
	return out
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := exports.Cleanup(0); err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			}
		}
	}
}
