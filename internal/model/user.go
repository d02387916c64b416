package model

// User — покупатель магазина. Создается при первом /start и никогда не
// удаляется.
type User struct {
	ID      int64  `json:"id"`      // идентификатор пользователя Telegram
	Balance int64  `json:"balance"` // баланс в копейках
	Email   string `json:"email"`   // пустая строка, если почта не указана
}
