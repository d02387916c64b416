package bot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/akuznetsov/shopbot/internal/service"
)

// Services — сервисы ядра, которые использует навигация.
type Services struct {
	Users   *service.Users
	Catalog *service.Catalog
	Cart    *service.Cart
	Admin   *service.Admin
}

// Bot связывает транспорт Telegram с навигацией магазина: превращает
// обновления во внутренние события, раскладывает их по сессиям
// пользователей и отправляет инструкции отрисовки обратно в Telegram.
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *service.Users
	catalog  *service.Catalog
	cart     *service.Cart
	admin    *service.Admin
	sessions *Sessions
	logger   *slog.Logger
}

func NewBot(token string, services Services, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b := &Bot{
		api:     api,
		users:   services.Users,
		catalog: services.Catalog,
		cart:    services.Cart,
		admin:   services.Admin,
		logger:  logger,
	}
	b.sessions = NewSessions(logger, b.process)
	return b, nil
}

// Start запускает бота в режиме long polling. Ошибки обработки отдельных
// обновлений логируются и не останавливают цикл.
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		b.dispatchUpdate(update)
	}

	return nil
}

// HandleWebhook — точка входа для входящих webhook-обновлений. В отличие
// от цикла опроса дожидается конца обработки: serverless-среда завершает
// процесс сразу после ответа.
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}

	ev, ok := eventFromUpdate(update)
	if !ok {
		return nil
	}

	b.sessions.DispatchWait(ev)
	return nil
}

// dispatchUpdate переводит обновление во внутреннее событие и ставит его в
// очередь сессии пользователя. Очередь гарантирует порядок обработки
// событий одного пользователя; разные пользователи идут параллельно.
func (b *Bot) dispatchUpdate(update tgbotapi.Update) {
	ev, ok := eventFromUpdate(update)
	if !ok {
		return
	}

	b.sessions.Dispatch(ev)
}

// process обрабатывает одно событие внутри горутины сессии.
func (b *Bot) process(sess *Session, ev Event) {
	logger := b.logger.With("event_id", uuid.NewString(), "user_id", ev.UserID)
	logger.Debug("событие получено", "text", ev.Text)

	render := b.handleEvent(context.Background(), sess, ev)

	if err := b.deliver(ev, render); err != nil {
		logger.Error("не удалось отправить ответ", "error", err)
	}
}
