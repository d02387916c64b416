package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config — настройки процесса: токен бота, путь к базе и список админов.
type Config struct {
	TelegramToken string
	DBPath        string
	AdminIDs      []int64
}

func LoadConfig() (*Config, error) {
	// .env не обязателен: в облаке переменные приходят из окружения.
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("BOT_TOKEN"),
		DBPath:        os.Getenv("DB_PATH"),
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("config: не задан BOT_TOKEN")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "shop.db"
	}

	adminIDs, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = adminIDs

	return cfg, nil
}

// parseAdminIDs разбирает список идентификаторов через запятую: "123,456".
// Пустая переменная — пустой список: бот работает без админов.
func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: неверный элемент ADMIN_IDS %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
