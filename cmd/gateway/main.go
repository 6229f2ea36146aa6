package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iurnickita/sankhyagw/internal/auth"
	"github.com/iurnickita/sankhyagw/internal/config"
	"github.com/iurnickita/sankhyagw/internal/handler"
	"github.com/iurnickita/sankhyagw/internal/logger"
	"github.com/iurnickita/sankhyagw/internal/service"
	"github.com/iurnickita/sankhyagw/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// .env необязателен
	_ = godotenv.Load()

	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	service, err := service.NewService(cfg.Sankhya, store, zaplog)
	if err != nil {
		return err
	}
	auth := auth.NewAuth(cfg.Handler.AuthSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zaplog.Info("sankhya gateway starting",
		zap.Bool("tokenCache", cfg.Sankhya.TokenCache),
		zap.Int("maxAttempts", cfg.Sankhya.MaxAttempts),
	)
	return handler.Serve(ctx, cfg.Handler, auth, service, zaplog)
}
