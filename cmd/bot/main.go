package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/akuznetsov/shopbot/internal/bot"
	"github.com/akuznetsov/shopbot/internal/config"
	"github.com/akuznetsov/shopbot/internal/repository"
	"github.com/akuznetsov/shopbot/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("конфигурация", "error", err)
		os.Exit(1)
	}

	repo, err := repository.NewSQLiteRepository(cfg.DBPath, logger)
	if err != nil {
		logger.Error("хранилище", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Стартовые данные каталога записываются до начала обработки событий.
	if err := repo.Seed(context.Background()); err != nil {
		logger.Error("заполнение каталога", "error", err)
		os.Exit(1)
	}

	b, err := bot.NewBot(cfg.TelegramToken, bot.Services{
		Users:   service.NewUsers(repo),
		Catalog: service.NewCatalog(repo),
		Cart:    service.NewCart(repo),
		Admin:   service.NewAdmin(repo, cfg.AdminIDs),
	}, logger)
	if err != nil {
		logger.Error("создание бота", "error", err)
		os.Exit(1)
	}

	logger.Info("магазин-бот запущен", "admins", len(cfg.AdminIDs))
	if err := b.Start(); err != nil {
		logger.Error("остановка бота", "error", err)
		os.Exit(1)
	}
}
