package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zhiyi-cms/config"
	"zhiyi-cms/editor"
	"zhiyi-cms/generation"
	"zhiyi-cms/handlers"
	"zhiyi-cms/helper"
	"zhiyi-cms/logger"
	"zhiyi-cms/middleware"
	"zhiyi-cms/repositories"
	"zhiyi-cms/services"

	"github.com/gin-gonic/gin"
)

const generationTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := logger.New("info", false, "zhiyi-cms")
		bootstrap.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty, "zhiyi-cms")
	log.Info().Str("env", cfg.Server.Env).Msg("Starting article service")

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := config.RunMigrations(&cfg.Database, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Repositories
	articleRepo := repositories.NewArticleRepository(db)
	userRepo := repositories.NewUserRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	h := helper.NewHTTPHelper()
	client := generation.NewClient(&http.Client{Timeout: generationTimeout}, log)

	// Services
	articleService := services.NewArticleService(articleRepo, h.Validate, log)
	authService := services.NewAuthService(userRepo, h.Validate, log)
	settingsService := services.NewSettingsService(settingsRepo, client, cfg.Relay.URL, log)
	generationService := services.NewGenerationService(settingsService, client)

	drafts, err := editor.NewStore(cfg.Editor.SessionCapacity)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create draft store")
	}

	router := handlers.NewRouter(handlers.Deps{
		DB:              db,
		Helper:          h,
		Log:             log,
		ArticleService:  articleService,
		AuthService:     authService,
		SettingsService: settingsService,
		Generator:       generationService,
		Drafts:          drafts,
		LoginLimiter: middleware.NewRateLimiter(
			middleware.PerMinute(cfg.RateLimit.LoginPerMinute),
			cfg.RateLimit.LoginBurst,
		),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("relay", cfg.Relay.URL).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited gracefully")
}
