package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"choresbot/internal/bot"
	"choresbot/internal/config"
	"choresbot/internal/db"
	httpServer "choresbot/internal/http"
	"choresbot/internal/logger"
	"choresbot/internal/repository"
	"choresbot/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	uow := repository.NewUnitOfWork(pool)
	users := service.NewUserService(uow)
	tasks := service.NewTaskService(uow)
	views := service.NewTaskViews(tasks)

	limiter := bot.NewRateLimiter(
		cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		cfg.CommandRateLimit, time.Duration(cfg.CommandRateWindow)*time.Second,
	)

	b, err := bot.New(cfg, users, tasks, views, limiter)
	if err != nil {
		logger.Fatal("failed to create bot", "error", err)
	}
	go b.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: httpServer.NewEngine(pool),
	}
	go func() {
		logger.Info("ops server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	b.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("ops server forced to shutdown", "error", err)
	}

	logger.Info("exited")
}
