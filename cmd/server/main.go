package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accidentsev/internal/app"
	"accidentsev/internal/cache"
	"accidentsev/internal/config"
	"accidentsev/internal/form"
	"accidentsev/internal/service"
	"accidentsev/internal/transport/rest"
	"accidentsev/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title Accident Severity API
// @version 1.0
// @description Guided accident form and severity prediction
// @host localhost:8080
// @BasePath /
func main() {
	cfg := config.Load()
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("started",
		zap.String("metaPath", cfg.Model.MetaPath),
		zap.String("modelPath", cfg.Model.ModelPath),
		zap.Bool("remoteModel", cfg.Model.IsRemote()),
		zap.String("store", cfg.StoreDriver),
	)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// A malformed catalog is fatal: the form cannot be shown without it.
	core, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to load reference data", zap.Error(err))
	}

	// The model loads in the background; /predict answers 503 until it is ready.
	core.Scorer.Start(ctx, core.Loader)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("failed to ping Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr()))

	// Prediction records
	store, closeStore, err := app.OpenRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open prediction store", zap.Error(err))
	}
	defer closeStore()
	if store != nil {
		core.Predictions.SetRecordStore(store)
	}
	core.Predictions.SetStats(cache.NewStatsCache(rdb))

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)
	defer wsHub.Close()

	// Initialize services
	machine := form.NewMachine(core.Schema)
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.SessionTTL)
	recapSvc := service.NewRecapService(core.Schema, core.Catalog, machine)
	sessionSvc := service.NewSessionService(machine, core.Catalog, cache.NewFormCache(rdb, cfg.SessionTTL), authSvc, core.Predictions, recapSvc, logger)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		Schema:            core.Schema,
		Catalog:           core.Catalog,
		AuthService:       authSvc,
		PredictionService: core.Predictions,
		SessionService:    sessionSvc,
		WSHub:             wsHub,
		CORS:              cfg.CORS,
		Logger:            logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
