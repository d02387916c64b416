package service

import (
	"context"

	"github.com/akuznetsov/shopbot/internal/model"
	"github.com/akuznetsov/shopbot/internal/repository"
)

// Catalog предоставляет чтение каталога: категории, товары категории,
// карточка товара. Бизнес-логики сверх хранилища здесь нет.
type Catalog struct {
	repo repository.Repository
}

func NewCatalog(repo repository.Repository) *Catalog {
	return &Catalog{repo: repo}
}

func (s *Catalog) Categories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Catalog) Products(ctx context.Context, categoryID int64) ([]model.Product, error) {
	return s.repo.ListProducts(ctx, categoryID)
}

func (s *Catalog) Product(ctx context.Context, productID int64) (model.Product, error) {
	return s.repo.GetProduct(ctx, productID)
}
