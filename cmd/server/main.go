package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/config"
	"github.com/Dias221467/Lingo_Connect/internal/database"
	"github.com/Dias221467/Lingo_Connect/internal/handlers"
	"github.com/Dias221467/Lingo_Connect/internal/repository"
	cron "github.com/Dias221467/Lingo_Connect/internal/scheduler"
	"github.com/Dias221467/Lingo_Connect/internal/services"
	"github.com/Dias221467/Lingo_Connect/pkg/cache"
	"github.com/Dias221467/Lingo_Connect/pkg/logger"
)

func main() {
	// Load configuration from .env, config file and environment
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel, cfg.LogFile)
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(ctx); err != nil {
			logger.Log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		logger.Log.WithError(err).Warn("Failed to ensure indexes")
	}
	cancelIndex()

	// Unseen count cache is optional
	var countCache services.CountCache
	if cfg.RedisAddr != "" {
		redisCtx, cancelRedis := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.NewRedisClient(redisCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancelRedis()
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, unseen counts will not be cached")
		} else {
			defer client.Close()
			countCache = cache.NewRedisCountCache(client, cfg.CountCacheTTL)
			logger.Log.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
		}
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	friendService := services.NewFriendService(friendRepo, userRepo, countCache)

	// --- Handlers ---
	router := newRouter(cfg.JWTSecret, routeHandlers{
		user:         handlers.NewUserHandler(userService, cfg),
		friend:       handlers.NewFriendHandler(friendService),
		notification: handlers.NewNotificationHandler(friendService, cfg.JWTSecret, cfg.CountPollInterval),
	})

	if cfg.KeepAliveURL != "" {
		keepAlive, err := cron.StartKeepAliveCronJobs(cfg.KeepAliveSchedule, cfg.KeepAliveURL)
		if err != nil {
			logger.Log.WithError(err).Error("Keep-alive job not started")
		} else {
			defer keepAlive.Stop()
		}
	}

	c := newCORS(cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
}
