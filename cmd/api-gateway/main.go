package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-adp-api/api/swagger"
	"github.com/noah-isme/exam-adp-api/internal/handler"
	"github.com/noah-isme/exam-adp-api/internal/repository"
	"github.com/noah-isme/exam-adp-api/internal/service"
	"github.com/noah-isme/exam-adp-api/pkg/cache"
	"github.com/noah-isme/exam-adp-api/pkg/config"
	"github.com/noah-isme/exam-adp-api/pkg/database"
	"github.com/noah-isme/exam-adp-api/pkg/jobs"
	"github.com/noah-isme/exam-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-adp-api/pkg/middleware/requestid"
)

// @title Exam ADP API
// @version 0.1.0
// @description Final score calculation service for the exam administration platform
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	extraFieldRepo := repository.NewExtraFieldRepository(db)
	extraScoreRepo := repository.NewExtraScoreRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Summaries.CacheTTL, logr, cfg.Summaries.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, extraScoreRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, studentRepo, validate, logr)
	extraFieldSvc := service.NewExtraFieldService(extraFieldRepo, cacheSvc, validate, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, cacheSvc, validate, logr)

	summarySvc := service.NewSummaryService(service.SummaryServiceDeps{
		Students:    studentRepo,
		Attempts:    examRepo,
		ExtraFields: extraFieldRepo,
		ExtraScores: extraScoreRepo,
		Settings:    settingsSvc,
		Store:       summaryRepo,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Logger:      logr,
	})

	queue := jobs.NewQueue("summaries", summarySvc.HandleRecalculateJob, jobs.QueueConfig{
		Workers:    cfg.Summaries.WorkerConcurrency,
		MaxRetries: cfg.Summaries.WorkerRetries,
		Logger:     logr,
	})
	summarySvc.SetQueue(queue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Exams:       handler.NewExamHandler(examSvc),
		ExtraFields: handler.NewExtraFieldHandler(extraFieldSvc),
		Settings:    handler.NewSettingsHandler(settingsSvc),
		Summaries:   handler.NewSummaryHandler(summarySvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, db),
	}, authSvc, metricsSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
