package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/akuznetsov/shopbot/internal/model"
	"github.com/akuznetsov/shopbot/internal/repository"
)

// PriceChange — результат успешной смены цены для подтверждающего
// сообщения.
type PriceChange struct {
	Product  model.Product // товар с уже новой ценой
	OldPrice int64
}

// Admin выполняет административные операции. Членство в списке админов
// проверяется в момент выполнения каждой операции, а не при входе в меню:
// отозванные посреди сессии права перестают действовать сразу, а прямой
// вызов команды в обход меню ничего не дает.
type Admin struct {
	repo     repository.Repository
	adminIDs map[int64]struct{}
}

func NewAdmin(repo repository.Repository, adminIDs []int64) *Admin {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	return &Admin{repo: repo, adminIDs: ids}
}

// IsAdmin сообщает, входит ли пользователь в список админов.
func (s *Admin) IsAdmin(userID int64) bool {
	_, ok := s.adminIDs[userID]
	return ok
}

// ListProducts возвращает все товары с категориями для админского списка.
func (s *Admin) ListProducts(ctx context.Context, adminID int64) ([]model.ProductListing, error) {
	if !s.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}
	return s.repo.ListAllProducts(ctx)
}

// ChangePrice разбирает ввод вида "7 99990" — идентификатор товара и новая
// цена в рублях через пробел — и выставляет цену. Ошибка формата —
// ErrValidation, неизвестный товар — ErrNotFound хранилища.
func (s *Admin) ChangePrice(ctx context.Context, adminID int64, input string) (PriceChange, error) {
	if !s.IsAdmin(adminID) {
		return PriceChange{}, ErrUnauthorized
	}

	fields := strings.Fields(input)
	if len(fields) != 2 {
		return PriceChange{}, fmt.Errorf("ожидаются два значения, получено %d: %w", len(fields), ErrValidation)
	}
	productID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return PriceChange{}, fmt.Errorf("идентификатор товара %q: %w", fields[0], ErrValidation)
	}
	price, err := model.ParseRub(fields[1])
	if err != nil {
		return PriceChange{}, fmt.Errorf("цена %q: %w", fields[1], ErrValidation)
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return PriceChange{}, err
	}
	if err := s.repo.UpdateProductPrice(ctx, productID, price); err != nil {
		return PriceChange{}, err
	}

	change := PriceChange{Product: product, OldPrice: product.Price}
	change.Product.Price = price
	return change, nil
}

// AddProduct разбирает команду вида
// "Категория | Название | Описание | Цена" и создает товар. Категория
// ищется по точному имени; ее отсутствие — ErrNotFound хранилища.
func (s *Admin) AddProduct(ctx context.Context, adminID int64, payload string) (model.Product, error) {
	if !s.IsAdmin(adminID) {
		return model.Product{}, ErrUnauthorized
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return model.Product{}, fmt.Errorf("ожидаются четыре поля, получено %d: %w", len(parts), ErrValidation)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" || parts[1] == "" {
		return model.Product{}, fmt.Errorf("категория и название не могут быть пустыми: %w", ErrValidation)
	}
	price, err := model.ParseRub(parts[3])
	if err != nil {
		return model.Product{}, fmt.Errorf("цена %q: %w", parts[3], ErrValidation)
	}

	category, err := s.repo.GetCategoryByName(ctx, parts[0])
	if err != nil {
		return model.Product{}, err
	}

	product := model.Product{
		CategoryID:  category.ID,
		Name:        parts[1],
		Description: parts[2],
		Price:       price,
	}
	if err := s.repo.CreateProduct(ctx, &product); err != nil {
		return model.Product{}, err
	}
	return product, nil
}

// AddCategory создает категорию с указанным именем (команда /addcat).
// Занятое имя — ошибка валидации, сырой конфликт хранилища наружу не
// выходит.
func (s *Admin) AddCategory(ctx context.Context, adminID int64, name string) (model.Category, error) {
	if !s.IsAdmin(adminID) {
		return model.Category{}, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("пустое название категории: %w", ErrValidation)
	}
	category, err := s.repo.CreateCategory(ctx, name)
	if errors.Is(err, repository.ErrConflict) {
		return model.Category{}, fmt.Errorf("категория %q уже существует: %w: %w", name, ErrValidation, err)
	}
	return category, err
}
