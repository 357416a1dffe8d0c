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

	"github.com/formforge/formbuilder-service/internal/auth"
	"github.com/formforge/formbuilder-service/internal/cache"
	"github.com/formforge/formbuilder-service/internal/config"
	"github.com/formforge/formbuilder-service/internal/handlers"
	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/ratelimit"
	"github.com/formforge/formbuilder-service/internal/repositories/postgres"
	"github.com/formforge/formbuilder-service/internal/services"
	"github.com/formforge/formbuilder-service/internal/utils"
	"github.com/formforge/formbuilder-service/internal/validator"
	"github.com/formforge/formbuilder-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	var appLogger utils.Logger
	if cfg.Environment == "production" {
		appLogger = utils.NewDefaultLogger()
	} else {
		appLogger = utils.NewDevelopmentLogger()
	}
	slogger := appLogger.(*utils.SlogLogger).GetSlogLogger()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.Form{},
		&models.FormSettings{},
		&models.Question{},
		&models.Response{},
	); err != nil {
		appLogger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Redis is optional; without it every form load goes to Postgres.
	var formCache cache.FormCache = cache.NoopFormCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		appLogger.Warn("Redis unavailable, running without form cache", "error", err)
	} else {
		defer redisClient.Close()
		formCache = cache.NewFormCache(cache.NewRedisCache(redisClient, slogger), slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		appLogger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	auth.Init(cfg.Casdoor)

	repo := postgres.NewRepository(db)
	serviceManager := services.NewServiceManager(repo, formCache, publisher, slogger, validator.New())

	limiter := ratelimit.NewPerKeyLimiter(cfg.SubmitRatePerSecond, cfg.SubmitBurst)
	handlerManager := handlers.NewHandlerManager(serviceManager, limiter, appLogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(appLogger))
	router.Use(utils.ContextLogger(appLogger))

	handlerManager.SetupRoutes(router, auth.RequireAuth())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", "error", err)
	}
}
