package model

// Product — товар каталога. Цена хранится в копейках, чтобы суммы корзины
// считались без потерь точности.
type Product struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"` // копейки
}

// ProductListing — строка админского списка товаров с названием категории.
type ProductListing struct {
	ID           int64
	Name         string
	Price        int64 // копейки
	CategoryName string
}
