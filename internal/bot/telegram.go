package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Преобразования между API Telegram и внутренними типами ядра живут только
// здесь: обновление → Event на входе, Render → сообщение на выходе.

// eventFromUpdate переводит обновление Telegram во внутреннее событие.
// Callback-токены разбираются на этом рубеже; неизвестный токен дает
// событие без действия и без текста, на которое ядро молча не отвечает, а
// транспорт все равно подтверждает callback.
func eventFromUpdate(update tgbotapi.Update) (Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil {
			return Event{}, false
		}
		ev := Event{
			UserID:     cb.From.ID,
			ChatID:     cb.Message.Chat.ID,
			MessageID:  cb.Message.MessageID,
			CallbackID: cb.ID,
		}
		if action, ok := ParseAction(cb.Data); ok {
			ev.Action = &action
		}
		return ev, true

	case update.Message != nil:
		m := update.Message
		if m.From == nil {
			return Event{}, false
		}
		return Event{
			UserID: m.From.ID,
			ChatID: m.Chat.ID,
			Text:   m.Text,
		}, true
	}
	return Event{}, false
}

// deliver отправляет инструкцию отрисовки в Telegram: отвечает на callback
// (снимая индикатор загрузки и показывая всплывающее подтверждение), затем
// редактирует или отправляет сообщение.
func (b *Bot) deliver(ev Event, r Render) error {
	if ev.CallbackID != "" {
		if _, err := b.api.Request(tgbotapi.NewCallback(ev.CallbackID, r.Toast)); err != nil {
			return err
		}
	}
	if r.Text == "" {
		return nil
	}

	if r.Edit && ev.MessageID != 0 {
		edit := tgbotapi.NewEditMessageText(ev.ChatID, ev.MessageID, r.Text)
		if r.Markdown {
			edit.ParseMode = tgbotapi.ModeMarkdown
		}
		if r.Keyboard == KeyboardInline {
			markup := inlineMarkup(r.Rows)
			edit.ReplyMarkup = &markup
		}
		_, err := b.api.Send(edit)
		return err
	}

	msg := tgbotapi.NewMessage(ev.ChatID, r.Text)
	if r.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	switch r.Keyboard {
	case KeyboardReply:
		msg.ReplyMarkup = replyMarkup(r.Rows)
	case KeyboardInline:
		msg.ReplyMarkup = inlineMarkup(r.Rows)
	}
	_, err := b.api.Send(msg)
	return err
}

func replyMarkup(rows [][]Button) tgbotapi.ReplyKeyboardMarkup {
	keyboard := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(button.Label))
		}
		keyboard = append(keyboard, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(keyboard...)
	markup.ResizeKeyboard = true
	return markup
}

func inlineMarkup(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Action))
		}
		keyboard = append(keyboard, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}
