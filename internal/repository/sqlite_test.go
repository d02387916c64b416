package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/akuznetsov/shopbot/internal/model"
	"github.com/akuznetsov/shopbot/internal/repository"
)

// openTestRepo открывает базу по указанному пути и заполняет стартовый
// каталог: 3 категории, товары 1 и 2 в категории 1, товар 3 в категории 2.
func openTestRepo(t *testing.T, path string) *repository.SQLiteRepository {
	t.Helper()

	repo, err := repository.NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	if err := repo.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return repo
}

func TestSeedIdempotent(t *testing.T) {
	repo := openTestRepo(t, ":memory:")
	ctx := context.Background()

	// Повторный Seed на непустом каталоге ничего не добавляет.
	if err := repo.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	categories, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("категорий = %d, ожидалось 3", len(categories))
	}
	if categories[0].Name != "Смартфоны" {
		t.Errorf("первая категория = %q, ожидалась %q", categories[0].Name, "Смартфоны")
	}

	products, err := repo.ListProducts(ctx, 1)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("товаров в категории 1 = %d, ожидалось 2", len(products))
	}

	empty, err := repo.ListProducts(ctx, 3)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("товаров в пустой категории = %d, ожидалось 0", len(empty))
	}
}

func TestEnsureUserIdempotent(t *testing.T) {
	repo := openTestRepo(t, ":memory:")
	ctx := context.Background()

	if err := repo.EnsureUser(ctx, 7); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if err := repo.EnsureUser(ctx, 7); err != nil {
		t.Fatalf("повторный EnsureUser: %v", err)
	}

	user, err := repo.GetProfile(ctx, 7)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if user.Balance != 0 {
		t.Errorf("баланс = %d, ожидался 0", user.Balance)
	}
	if user.Email != "" {
		t.Errorf("почта = %q, ожидалась пустая", user.Email)
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	repo := openTestRepo(t, ":memory:")

	user, err := repo.GetProfile(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if user.ID != 999 || user.Balance != 0 || user.Email != "" {
		t.Errorf("профиль неизвестного пользователя = %+v, ожидались значения по умолчанию", user)
	}
}

func TestCreateProductRoundTrip(t *testing.T) {
	repo := openTestRepo(t, ":memory:")
	ctx := context.Background()

	product := model.Product{CategoryID: 1, Name: "X", Description: "d", Price: 100}
	if err := repo.CreateProduct(ctx, &product); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.ID == 0 {
		t.Fatal("CreateProduct не присвоил идентификатор")
	}

	got, err := repo.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got != product {
		t.Errorf("GetProduct = %+v, ожидалось %+v", got, product)
	}
}

func TestCreateProductUnknownCategory(t *testing.T) {
	repo := openTestRepo(t, ":memory:")

	product := model.Product{CategoryID: 999, Name: "X", Description: "d", Price: 100}
	err := repo.CreateProduct(context.Background(), &product)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("CreateProduct = %v, ожидался ErrNotFound", err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	repo := openTestRepo(t, ":memory:")

	_, err := repo.GetProduct(context.Background(), 999)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetProduct = %v, ожидался ErrNotFound", err)
	}
}

func TestGetCategoryByName(t *testing.T) {
	repo := openTestRepo(t, ":memory:")
	ctx := context.Background()

	category, err := repo.GetCategoryByName(ctx, "Ноутбуки")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}
	if category.ID != 2 {
		t.Errorf("ID категории = %d, ожидался 2", category.ID)
	}

	_, err = repo.GetCategoryByName(ctx, "Телевизоры")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetCategoryByName = %v, ожидался ErrNotFound", err)
	}
}

func TestCreateCategory(t *testing.T) {
	repo := openTestRepo(t, ":memory:")
	ctx := context.Background()

	created, err := repo.CreateCategory(ctx, "Планшеты")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	found, err := repo.GetCategoryByName(ctx, "Планшеты")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, ожидался %d", found.ID, created.ID)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	repo := openTestRepo(t, ":memory:")

	_, err := repo.CreateCategory(context.Background(), "Смартфоны")
	if !errors.Is(err, repository.ErrConflict) {
		t.Errorf("CreateCategory = %v, ожидался ErrConflict", err)
	}
}

func TestUpdateProductPrice(t *testing.T) {
	repo := openTestRepo(t, ":memory:")
	ctx := context.Background()

	if err := repo.UpdateProductPrice(ctx, 1, 12345); err != nil {
		t.Fatalf("UpdateProductPrice: %v", err)
	}

	product, err := repo.GetProduct(ctx, 1)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.Price != 12345 {
		t.Errorf("цена = %d, ожидалось 12345", product.Price)
	}

	err = repo.UpdateProductPrice(ctx, 999, 100)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("UpdateProductPrice = %v, ожидался ErrNotFound", err)
	}
}

func TestUpsertCartIncrement(t *testing.T) {
	repo := openTestRepo(t, ":memory:")
	ctx := context.Background()

	if err := repo.UpsertCartItem(ctx, 7, 1); err != nil {
		t.Fatalf("UpsertCartItem: %v", err)
	}
	if err := repo.UpsertCartItem(ctx, 7, 1); err != nil {
		t.Fatalf("повторный UpsertCartItem: %v", err)
	}

	lines, err := repo.ListCart(ctx, 7)
	if err != nil {
		t.Fatalf("ListCart: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("позиций = %d, ожидалась 1", len(lines))
	}
	want := model.CartLine{ProductName: "iPhone 15", Price: 8999000, Quantity: 2}
	if lines[0] != want {
		t.Errorf("позиция = %+v, ожидалась %+v", lines[0], want)
	}
}

func TestClearCart(t *testing.T) {
	repo := openTestRepo(t, ":memory:")
	ctx := context.Background()

	if err := repo.UpsertCartItem(ctx, 7, 1); err != nil {
		t.Fatalf("UpsertCartItem: %v", err)
	}
	if err := repo.UpsertCartItem(ctx, 7, 3); err != nil {
		t.Fatalf("UpsertCartItem: %v", err)
	}

	if err := repo.ClearCart(ctx, 7); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	lines, err := repo.ListCart(ctx, 7)
	if err != nil {
		t.Fatalf("ListCart: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("позиций после очистки = %d, ожидалось 0", len(lines))
	}

	// Очистка пустой корзины тоже успешна.
	if err := repo.ClearCart(ctx, 7); err != nil {
		t.Errorf("повторный ClearCart: %v", err)
	}
}

// TestConcurrentCartAdds проверяет, что параллельные добавления одной пары
// (пользователь, товар) не теряют инкременты и не создают дублей. База на
// диске: пул из нескольких соединений дает настоящую конкуренцию писателей.
func TestConcurrentCartAdds(t *testing.T) {
	repo := openTestRepo(t, filepath.Join(t.TempDir(), "shop.db"))
	ctx := context.Background()

	const adds = 25
	errs := make(chan error, adds)
	var wg sync.WaitGroup
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.UpsertCartItem(ctx, 7, 1)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("UpsertCartItem: %v", err)
		}
	}

	lines, err := repo.ListCart(ctx, 7)
	if err != nil {
		t.Fatalf("ListCart: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("позиций = %d, ожидалась 1", len(lines))
	}
	if lines[0].Quantity != adds {
		t.Errorf("количество = %d, ожидалось %d", lines[0].Quantity, adds)
	}
}

func TestListAllProducts(t *testing.T) {
	repo := openTestRepo(t, ":memory:")

	listings, err := repo.ListAllProducts(context.Background())
	if err != nil {
		t.Fatalf("ListAllProducts: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("товаров = %d, ожидалось 3", len(listings))
	}
	want := model.ProductListing{ID: 1, Name: "iPhone 15", Price: 8999000, CategoryName: "Смартфоны"}
	if listings[0] != want {
		t.Errorf("первая строка = %+v, ожидалась %+v", listings[0], want)
	}
}
