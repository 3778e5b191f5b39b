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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/equivalence-api/api/swagger"
	"github.com/noah-isme/equivalence-api/internal/handler"
	"github.com/noah-isme/equivalence-api/internal/repository"
	"github.com/noah-isme/equivalence-api/internal/router"
	"github.com/noah-isme/equivalence-api/internal/service"
	"github.com/noah-isme/equivalence-api/pkg/cache"
	"github.com/noah-isme/equivalence-api/pkg/config"
	"github.com/noah-isme/equivalence-api/pkg/database"
	"github.com/noah-isme/equivalence-api/pkg/export"
	"github.com/noah-isme/equivalence-api/pkg/jobs"
	"github.com/noah-isme/equivalence-api/pkg/llm"
	"github.com/noah-isme/equivalence-api/pkg/logger"
	"github.com/noah-isme/equivalence-api/pkg/pdftext"
)

// @title Curriculum Equivalence API
// @version 1.0.0
// @description Compares student transcripts against a base curriculum and stores equivalence reports
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to apply schema", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Reports.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
			redisClient = nil
		}
	}

	analyzer, err := llm.NewClient(llm.Config{
		Endpoint:    cfg.Analyzer.BaseURL,
		Model:       cfg.Analyzer.Model,
		APIKey:      cfg.Analyzer.APIKey,
		Temperature: cfg.Analyzer.Temperature,
		Timeout:     cfg.Analyzer.Timeout,
	}, logr)
	if err != nil {
		logr.Fatal("failed to init analyzer client", zap.Error(err))
	}

	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validator.New(), logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	reportSvc := service.NewReportService(reportRepo, cacheSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr,
		service.ReportServiceConfig{CacheTTL: cfg.Reports.CacheTTL})

	warmups := jobs.NewQueue("report-warmup", reportSvc.HandleWarmup, jobs.QueueConfig{
		Workers: cfg.Reports.WarmupWorkers,
		Logger:  logr,
	})
	warmups.Start(ctx)
	defer warmups.Stop()

	analysisSvc := service.NewAnalysisService(pdftext.New(), analyzer, reportRepo, warmups, metrics, logr, service.AnalysisConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		MaxInputChars:    cfg.Analyzer.MaxInputChars,
	})

	engine := router.Setup(router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Analysis: handler.NewAnalysisHandler(analysisSvc),
		Report:   handler.NewReportHandler(reportSvc),
		Metrics:  handler.NewMetricsHandler(metrics, db),
	}, authSvc, metrics, logr, router.Options{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		MaxRequestBytes: cfg.Uploads.MaxRequestSizeBytes,
		EnableDocs:      cfg.Env != config.EnvProduction,
	})

	// Analyzer calls can take most of ANALYZER_TIMEOUT, so the write timeout
	// leaves room on top of it.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.Analyzer.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "model", analyzer.Model())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
