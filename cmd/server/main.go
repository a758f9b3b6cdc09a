package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeprep/internal/api"
	"codeprep/internal/api/middleware"
	"codeprep/internal/app/service"
	"codeprep/internal/common/security"
	"codeprep/internal/domain/repository"
	"codeprep/internal/platform/cache"
	"codeprep/internal/platform/config"
	"codeprep/internal/platform/database"
	"codeprep/internal/platform/metrics"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Production() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	metrics.MustRegister()

	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		zap.S().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(schemaCtx, db); err != nil {
		schemaCancel()
		zap.S().Fatalw("schema bootstrap failed", "error", err)
	}
	schemaCancel()
	zap.S().Info("database connected")

	rdb, err := cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zap.S().Fatalw("redis connection failed", "error", err)
	}
	defer rdb.Close()
	zap.S().Info("redis connected")

	tokenAuth := security.NewTokenAuth(cfg.ProviderJWTKey)
	verifier, err := security.NewWebhookVerifier(cfg.WebhookSecret)
	if err != nil {
		zap.S().Fatalw("invalid webhook secret", "error", err)
	}

	userRepo := repository.NewPgUserRepository(db)
	problemRepo := repository.NewPgProblemRepository(db)
	analyticsRepo := repository.NewPgAnalyticsRepository(db)

	guard := middleware.NewAuthGuard(userRepo)

	router := api.NewRouter(api.Deps{
		Config:           cfg,
		TokenAuth:        tokenAuth,
		WebhookVerifier:  verifier,
		Guard:            guard,
		RateLimitStore:   middleware.NewRedisCounterStore(rdb),
		AuthService:      service.NewAuthService(userRepo),
		ProblemService:   service.NewProblemService(problemRepo),
		UserService:      service.NewUserService(userRepo),
		AnalyticsService: service.NewAnalyticsService(analyticsRepo, rdb, cfg.AnalyticsCacheTTL),
		WebhookService:   service.NewWebhookService(userRepo),
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		zap.S().Infow("server starting", "port", cfg.APIPort, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("server failed", "error", err)
		}
	}()

	<-stop

	zap.S().Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.S().Fatalw("server shutdown failed", "error", err)
	}
	zap.S().Info("server stopped gracefully")
}
