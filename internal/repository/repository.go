package repository

import (
	"context"
	"errors"

	"github.com/akuznetsov/shopbot/internal/model"
)

// ErrNotFound возвращается, когда запись с указанным идентификатором или
// именем отсутствует в хранилище.
var ErrNotFound = errors.New("запись не найдена")

// ErrConflict возвращается при нарушении уникальности, например при
// создании категории с занятым именем. Сырая ошибка движка наружу не
// выходит.
var ErrConflict = errors.New("запись уже существует")

// Repository определяет интерфейс хранилища магазина. Каждый вызов —
// отдельная атомарная операция; транзакций, охватывающих несколько вызовов,
// наружу не выдается.
type Repository interface {
	// Пользователи
	EnsureUser(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (model.User, error)

	// Категории
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (model.Category, error)
	CreateCategory(ctx context.Context, name string) (model.Category, error)

	// Товары
	ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.ProductListing, error)
	GetProduct(ctx context.Context, productID int64) (model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProductPrice(ctx context.Context, productID, price int64) error

	// Корзина
	UpsertCartItem(ctx context.Context, userID, productID int64) error
	ListCart(ctx context.Context, userID int64) ([]model.CartLine, error)
	ClearCart(ctx context.Context, userID int64) error
}
