package bot

import "github.com/akuznetsov/shopbot/internal/model"

// Reply-клавиатуры трех меню и inline-клавиатуры каталога. Здесь строятся
// только ряды кнопок рендера; в разметку Telegram их превращает транспорт.

func (b *Bot) mainKeyboard(userID int64) [][]Button {
	second := []Button{{Label: "Профиль"}}
	if b.admin.IsAdmin(userID) {
		second = append(second, Button{Label: "Админка"})
	}
	return [][]Button{
		{{Label: "Магазин"}, {Label: "Поддержка"}},
		second,
	}
}

func shopKeyboard() [][]Button {
	return [][]Button{
		{{Label: "Каталог"}, {Label: "Корзина"}},
		{{Label: "Назад"}},
	}
}

func adminKeyboard() [][]Button {
	return [][]Button{
		{{Label: "Товары"}, {Label: "Изменить цену"}},
		{{Label: "Добавить товар"}, {Label: "Назад"}},
	}
}

// categoriesKeyboard — inline-кнопки категорий, по две в ряд.
func categoriesKeyboard(categories []model.Category) [][]Button {
	var rows [][]Button
	var row []Button
	for _, category := range categories {
		row = append(row, Button{
			Label:  category.Name,
			Action: Action{Kind: ActionSelectCategory, ID: category.ID}.Data(),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// productsKeyboard — inline-кнопки товаров категории, по одной в ряд, плюс
// возврат к списку категорий.
func productsKeyboard(products []model.Product) [][]Button {
	var rows [][]Button
	for _, product := range products {
		rows = append(rows, []Button{{
			Label:  product.Name,
			Action: Action{Kind: ActionSelectProduct, ID: product.ID}.Data(),
		}})
	}
	rows = append(rows, []Button{{
		Label:  "Назад",
		Action: Action{Kind: ActionBackToCatalog}.Data(),
	}})
	return rows
}

func productKeyboard(productID int64) [][]Button {
	return [][]Button{
		{{Label: "Добавить в корзину", Action: Action{Kind: ActionAddToCart, ID: productID}.Data()}},
		{{Label: "Назад", Action: Action{Kind: ActionBackToCatalog}.Data()}},
	}
}

func cartKeyboard() [][]Button {
	return [][]Button{
		{{Label: "Очистить корзину", Action: Action{Kind: ActionClearCart}.Data()}},
		{{Label: "Назад", Action: Action{Kind: ActionBackToShop}.Data()}},
	}
}
