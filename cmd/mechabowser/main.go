package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/analytics"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/bot"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/config"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/modlog"
	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.Connect(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	cancelConnect()
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	modLogger := modlog.NewLogger(logger)
	analyticsSvc := analytics.New(store)

	botSvc, err := bot.New(cfg, logger, store, modLogger, analyticsSvc)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started", zap.String("guild_id", cfg.GuildID))

	var server *http.Server
	if cfg.Health.Enabled {
		server = &http.Server{Addr: cfg.Health.Addr}
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		go func() {
			logger.Info("health endpoint enabled", zap.String("addr", cfg.Health.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(ctx)
	}
	botSvc.Close(ctx)
	if err := store.Close(ctx); err != nil {
		logger.Warn("storage close failed", zap.Error(err))
	}
}
