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

// Request — структура входящего запроса от API Gateway.
type Request struct {
	Body string `json:"body"`
}

// Response — структура ответа для API Gateway.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler обрабатывает одно webhook-обновление в serverless-окружении.
func Handler(ctx context.Context, request Request) (*Response, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}

	repo, err := repository.NewSQLiteRepository(cfg.DBPath, logger)
	if err != nil {
		return errorResponse(err)
	}
	defer repo.Close()

	if err := repo.Seed(ctx); err != nil {
		return errorResponse(err)
	}

	b, err := bot.NewBot(cfg.TelegramToken, bot.Services{
		Users:   service.NewUsers(repo),
		Catalog: service.NewCatalog(repo),
		Cart:    service.NewCart(repo),
		Admin:   service.NewAdmin(repo, cfg.AdminIDs),
	}, logger)
	if err != nil {
		return errorResponse(err)
	}

	if err := b.HandleWebhook([]byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Body:       "",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования.
}
