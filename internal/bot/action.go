package bot

import (
	"strconv"
	"strings"
)

// ActionKind определяет тип действия inline-кнопки.
type ActionKind int

const (
	ActionSelectCategory ActionKind = iota
	ActionSelectProduct
	ActionAddToCart
	ActionClearCart
	ActionBackToCatalog
	ActionBackToShop
)

// Action — типизированное действие inline-кнопки. Текстовые callback-токены
// разбираются один раз на границе транспорта; ядро сравнивает только Kind и
// ID и никогда не смотрит в строки.
type Action struct {
	Kind ActionKind
	ID   int64 // идентификатор категории или товара, если действие его несет
}

// ParseAction разбирает callback-токен кнопки: "cat_3", "prod_7", "add_7",
// "clear_cart", "back_to_cat", "back_to_shop".
func ParseAction(data string) (Action, bool) {
	switch data {
	case "clear_cart":
		return Action{Kind: ActionClearCart}, true
	case "back_to_cat":
		return Action{Kind: ActionBackToCatalog}, true
	case "back_to_shop":
		return Action{Kind: ActionBackToShop}, true
	}
	switch {
	case strings.HasPrefix(data, "cat_"):
		return actionWithID(ActionSelectCategory, strings.TrimPrefix(data, "cat_"))
	case strings.HasPrefix(data, "prod_"):
		return actionWithID(ActionSelectProduct, strings.TrimPrefix(data, "prod_"))
	case strings.HasPrefix(data, "add_"):
		return actionWithID(ActionAddToCart, strings.TrimPrefix(data, "add_"))
	}
	return Action{}, false
}

func actionWithID(kind ActionKind, raw string) (Action, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Action{}, false
	}
	return Action{Kind: kind, ID: id}, true
}

// Data возвращает callback-токен действия для кнопки.
func (a Action) Data() string {
	switch a.Kind {
	case ActionSelectCategory:
		return "cat_" + strconv.FormatInt(a.ID, 10)
	case ActionSelectProduct:
		return "prod_" + strconv.FormatInt(a.ID, 10)
	case ActionAddToCart:
		return "add_" + strconv.FormatInt(a.ID, 10)
	case ActionClearCart:
		return "clear_cart"
	case ActionBackToCatalog:
		return "back_to_cat"
	case ActionBackToShop:
		return "back_to_shop"
	}
	return ""
}
