package model

// CartLine — позиция корзины, уже соединенная с товаром для отображения.
// Ключ корзины (user_id, product_id) уникален, повторные добавления
// увеличивают Quantity.
type CartLine struct {
	ProductName string
	Price       int64 // копейки
	Quantity    int64
}

// Subtotal возвращает стоимость позиции в копейках.
func (l CartLine) Subtotal() int64 {
	return l.Price * l.Quantity
}
