package model

// Category — категория каталога. Стартовый набор записывается при запуске,
// новые добавляются администратором.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
