package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/akuznetsov/shopbot/internal/model"
)

// Схема хранилища: четыре таблицы из предметной области. Цены и балансы —
// целые копейки. Составной первичный ключ корзины исключает дубли позиций
// для одной пары (пользователь, товар).
const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY,
	balance INTEGER NOT NULL DEFAULT 0,
	email   TEXT
);
CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id INTEGER NOT NULL REFERENCES categories(id),
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	price       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE TABLE IF NOT EXISTS cart (
	user_id    INTEGER NOT NULL,
	product_id INTEGER NOT NULL,
	quantity   INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (user_id, product_id)
);
`

// SQLiteRepository хранит данные магазина в локальной базе SQLite.
// Пул соединений безопасен для конкурентного использования; прагмы и схема
// применяются к каждому соединению при первом использовании.
type SQLiteRepository struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
}

// NewSQLiteRepository открывает (и при необходимости создает) базу по
// указанному пути. ":memory:" переводится в URI с общим кешем и пулом из
// одного соединения: литерал ":memory:" дал бы каждому соединению пула
// собственную пустую базу.
func NewSQLiteRepository(path string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	poolSize := 4
	if path == ":memory:" {
		path = "file::memory:?mode=memory&cache=shared"
		poolSize = 1
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("repository: открытие %s: %w", path, err)
	}

	logger.Info("база данных открыта", "path", path, "pool_size", poolSize)

	return &SQLiteRepository{pool: pool, logger: logger}, nil
}

// prepareConn применяет прагмы и схему. WAL позволяет читать параллельно с
// единственным писателем; busy_timeout разруливает конкуренцию писателей.
func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("repository: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("repository: создание схемы: %w", err)
	}
	return nil
}

// Close закрывает пул соединений. Блокируется, пока занятые соединения не
// будут возвращены.
func (r *SQLiteRepository) Close() error {
	if err := r.pool.Close(); err != nil {
		return fmt.Errorf("repository: закрытие базы: %w", err)
	}
	return nil
}

// Seed заполняет пустой каталог стартовыми категориями и товарами.
// Выполняется один раз при запуске, до начала обработки событий; на
// непустом каталоге ничего не делает.
func (r *SQLiteRepository) Seed(ctx context.Context) (err error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("repository: seed: %w", err)
	}
	defer r.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("repository: seed: %w", err)
	}
	defer endTransaction(&err)

	var count int64
	err = sqlitex.Execute(conn, "SELECT COUNT(*) FROM categories", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("repository: seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	categories := []string{"Смартфоны", "Ноутбуки", "Аксессуары"}
	for _, name := range categories {
		err = sqlitex.Execute(conn, "INSERT INTO categories (name) VALUES (?)", &sqlitex.ExecOptions{
			Args: []any{name},
		})
		if err != nil {
			return fmt.Errorf("repository: seed категории %q: %w", name, err)
		}
	}

	products := []model.Product{
		{CategoryID: 1, Name: "iPhone 15", Description: `128 ГБ, черный, OLED 6.1"`, Price: 8999000},
		{CategoryID: 1, Name: "Samsung S24", Description: `256 ГБ, зеленый, AMOLED 6.2"`, Price: 7999000},
		{CategoryID: 2, Name: "MacBook Air M2", Description: "8 ГБ / 256 ГБ, серебристый", Price: 11999000},
	}
	for _, p := range products {
		err = sqlitex.Execute(conn,
			"INSERT INTO products (category_id, name, description, price) VALUES (?, ?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{p.CategoryID, p.Name, p.Description, p.Price}})
		if err != nil {
			return fmt.Errorf("repository: seed товара %q: %w", p.Name, err)
		}
	}

	r.logger.Info("каталог заполнен стартовыми данными",
		"categories", len(categories),
		"products", len(products),
	)
	return nil
}

// EnsureUser создает запись пользователя с балансом по умолчанию, если ее
// еще нет. Повторные вызовы ничего не меняют.
func (r *SQLiteRepository) EnsureUser(ctx context.Context, userID int64) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("repository: ensure user: %w", err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, "INSERT OR IGNORE INTO users (user_id) VALUES (?)", &sqlitex.ExecOptions{
		Args: []any{userID},
	})
	if err != nil {
		return fmt.Errorf("repository: ensure user %d: %w", userID, err)
	}
	return nil
}

// GetProfile возвращает баланс и почту пользователя. Для неизвестного
// пользователя возвращаются значения по умолчанию, а не ошибка: профиль
// показывается и тому, кто еще не прошел /start.
func (r *SQLiteRepository) GetProfile(ctx context.Context, userID int64) (model.User, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("repository: профиль %d: %w", userID, err)
	}
	defer r.pool.Put(conn)

	user := model.User{ID: userID}
	err = sqlitex.Execute(conn, "SELECT balance, email FROM users WHERE user_id = ?", &sqlitex.ExecOptions{
		Args: []any{userID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			user.Balance = stmt.ColumnInt64(0)
			if !stmt.ColumnIsNull(1) {
				user.Email = stmt.ColumnText(1)
			}
			return nil
		},
	})
	if err != nil {
		return model.User{}, fmt.Errorf("repository: профиль %d: %w", userID, err)
	}
	return user, nil
}

// ListCategories возвращает категории в порядке добавления.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: категории: %w", err)
	}
	defer r.pool.Put(conn)

	var categories []model.Category
	err = sqlitex.Execute(conn, "SELECT id, name FROM categories ORDER BY id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			categories = append(categories, model.Category{
				ID:   stmt.ColumnInt64(0),
				Name: stmt.ColumnText(1),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: категории: %w", err)
	}
	return categories, nil
}

// GetCategoryByName ищет категорию по точному имени. Используется при
// добавлении товара командой /addprod.
func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, name string) (model.Category, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return model.Category{}, fmt.Errorf("repository: категория %q: %w", name, err)
	}
	defer r.pool.Put(conn)

	category := model.Category{Name: name}
	err = sqlitex.Execute(conn, "SELECT id FROM categories WHERE name = ?", &sqlitex.ExecOptions{
		Args: []any{name},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			category.ID = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return model.Category{}, fmt.Errorf("repository: категория %q: %w", name, err)
	}
	if category.ID == 0 {
		return model.Category{}, fmt.Errorf("repository: категория %q: %w", name, ErrNotFound)
	}
	return category, nil
}

// CreateCategory добавляет категорию с уникальным именем. Занятое имя —
// ErrConflict.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return model.Category{}, fmt.Errorf("repository: создание категории %q: %w", name, err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, "INSERT INTO categories (name) VALUES (?)", &sqlitex.ExecOptions{
		Args: []any{name},
	})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return model.Category{}, fmt.Errorf("repository: категория %q: %w", name, ErrConflict)
		}
		return model.Category{}, fmt.Errorf("repository: создание категории %q: %w", name, err)
	}
	return model.Category{ID: conn.LastInsertRowID(), Name: name}, nil
}

// ListProducts возвращает товары категории в порядке добавления. Пустая
// категория — пустой список, не ошибка.
func (r *SQLiteRepository) ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: товары категории %d: %w", categoryID, err)
	}
	defer r.pool.Put(conn)

	var products []model.Product
	err = sqlitex.Execute(conn,
		"SELECT id, category_id, name, description, price FROM products WHERE category_id = ? ORDER BY id",
		&sqlitex.ExecOptions{
			Args: []any{categoryID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				products = append(products, scanProduct(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("repository: товары категории %d: %w", categoryID, err)
	}
	return products, nil
}

// ListAllProducts возвращает все товары с названием категории для
// админского списка.
func (r *SQLiteRepository) ListAllProducts(ctx context.Context) ([]model.ProductListing, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: список товаров: %w", err)
	}
	defer r.pool.Put(conn)

	var listings []model.ProductListing
	err = sqlitex.Execute(conn,
		`SELECT p.id, p.name, p.price, c.name
		 FROM products p JOIN categories c ON p.category_id = c.id
		 ORDER BY p.id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				listings = append(listings, model.ProductListing{
					ID:           stmt.ColumnInt64(0),
					Name:         stmt.ColumnText(1),
					Price:        stmt.ColumnInt64(2),
					CategoryName: stmt.ColumnText(3),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("repository: список товаров: %w", err)
	}
	return listings, nil
}

// GetProduct возвращает товар по идентификатору.
func (r *SQLiteRepository) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return model.Product{}, fmt.Errorf("repository: товар %d: %w", productID, err)
	}
	defer r.pool.Put(conn)

	var product model.Product
	err = sqlitex.Execute(conn,
		"SELECT id, category_id, name, description, price FROM products WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{productID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				product = scanProduct(stmt)
				return nil
			},
		})
	if err != nil {
		return model.Product{}, fmt.Errorf("repository: товар %d: %w", productID, err)
	}
	if product.ID == 0 {
		return model.Product{}, fmt.Errorf("repository: товар %d: %w", productID, ErrNotFound)
	}
	return product, nil
}

// CreateProduct создает товар в существующей категории и записывает
// присвоенный идентификатор в product.ID. Неизвестная категория —
// ErrNotFound.
func (r *SQLiteRepository) CreateProduct(ctx context.Context, product *model.Product) (err error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("repository: создание товара: %w", err)
	}
	defer r.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("repository: создание товара: %w", err)
	}
	defer endTransaction(&err)

	var exists bool
	err = sqlitex.Execute(conn, "SELECT 1 FROM categories WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{product.CategoryID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			exists = true
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("repository: создание товара: %w", err)
	}
	if !exists {
		return fmt.Errorf("repository: категория %d: %w", product.CategoryID, ErrNotFound)
	}

	err = sqlitex.Execute(conn,
		"INSERT INTO products (category_id, name, description, price) VALUES (?, ?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{product.CategoryID, product.Name, product.Description, product.Price}})
	if err != nil {
		return fmt.Errorf("repository: создание товара %q: %w", product.Name, err)
	}
	product.ID = conn.LastInsertRowID()
	return nil
}

// UpdateProductPrice выставляет новую цену существующему товару.
// Валидация цены — обязанность вызывающего.
func (r *SQLiteRepository) UpdateProductPrice(ctx context.Context, productID, price int64) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("repository: цена товара %d: %w", productID, err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, "UPDATE products SET price = ? WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{price, productID},
	})
	if err != nil {
		return fmt.Errorf("repository: цена товара %d: %w", productID, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("repository: товар %d: %w", productID, ErrNotFound)
	}
	return nil
}

// UpsertCartItem добавляет товар в корзину: новая пара (пользователь,
// товар) получает количество 1, существующая увеличивается на 1. Один
// SQL-оператор, поэтому параллельные добавления не теряют инкременты и не
// плодят дублей.
func (r *SQLiteRepository) UpsertCartItem(ctx context.Context, userID, productID int64) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("repository: корзина %d: %w", userID, err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO cart (user_id, product_id, quantity) VALUES (?, ?, 1)
		 ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = quantity + 1`,
		&sqlitex.ExecOptions{Args: []any{userID, productID}})
	if err != nil {
		return fmt.Errorf("repository: корзина %d, товар %d: %w", userID, productID, err)
	}
	return nil
}

// ListCart возвращает позиции корзины, соединенные с товарами, в порядке
// добавления товаров в каталог.
func (r *SQLiteRepository) ListCart(ctx context.Context, userID int64) ([]model.CartLine, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: корзина %d: %w", userID, err)
	}
	defer r.pool.Put(conn)

	var lines []model.CartLine
	err = sqlitex.Execute(conn,
		`SELECT p.name, p.price, c.quantity
		 FROM cart c JOIN products p ON c.product_id = p.id
		 WHERE c.user_id = ?
		 ORDER BY c.product_id`,
		&sqlitex.ExecOptions{
			Args: []any{userID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				lines = append(lines, model.CartLine{
					ProductName: stmt.ColumnText(0),
					Price:       stmt.ColumnInt64(1),
					Quantity:    stmt.ColumnInt64(2),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("repository: корзина %d: %w", userID, err)
	}
	return lines, nil
}

// ClearCart удаляет все позиции корзины пользователя. На пустой корзине
// ничего не делает.
func (r *SQLiteRepository) ClearCart(ctx context.Context, userID int64) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("repository: очистка корзины %d: %w", userID, err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM cart WHERE user_id = ?", &sqlitex.ExecOptions{
		Args: []any{userID},
	})
	if err != nil {
		return fmt.Errorf("repository: очистка корзины %d: %w", userID, err)
	}
	return nil
}

func scanProduct(stmt *sqlite.Stmt) model.Product {
	return model.Product{
		ID:          stmt.ColumnInt64(0),
		CategoryID:  stmt.ColumnInt64(1),
		Name:        stmt.ColumnText(2),
		Description: stmt.ColumnText(3),
		Price:       stmt.ColumnInt64(4),
	}
}
