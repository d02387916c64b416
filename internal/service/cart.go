package service

import (
	"context"

	"github.com/akuznetsov/shopbot/internal/model"
	"github.com/akuznetsov/shopbot/internal/repository"
)

// CartView — содержимое корзины с посчитанными суммами в копейках.
type CartView struct {
	Lines []model.CartLine
	Total int64
}

// Empty сообщает, что в корзине нет ни одной позиции.
func (v CartView) Empty() bool {
	return len(v.Lines) == 0
}

// Cart управляет корзиной пользователя поверх хранилища.
type Cart struct {
	repo repository.Repository
}

func NewCart(repo repository.Repository) *Cart {
	return &Cart{repo: repo}
}

// Add кладет товар в корзину. Несуществующий товар — ErrNotFound хранилища;
// повторное добавление увеличивает количество.
func (s *Cart) Add(ctx context.Context, userID, productID int64) error {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return err
	}
	return s.repo.UpsertCartItem(ctx, userID, productID)
}

// View возвращает позиции корзины с промежуточными суммами и итогом.
func (s *Cart) View(ctx context.Context, userID int64) (CartView, error) {
	lines, err := s.repo.ListCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	view := CartView{Lines: lines}
	for _, line := range lines {
		view.Total += line.Subtotal()
	}
	return view, nil
}

// Clear опустошает корзину. На пустой корзине тоже успешен.
func (s *Cart) Clear(ctx context.Context, userID int64) error {
	return s.repo.ClearCart(ctx, userID)
}
