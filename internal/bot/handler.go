package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akuznetsov/shopbot/internal/model"
	"github.com/akuznetsov/shopbot/internal/repository"
	"github.com/akuznetsov/shopbot/internal/service"
)

// handleEvent — центральная точка диспетчеризации: по текущему экрану
// сессии и событию выбирает переход, дергает сервисы и возвращает
// инструкцию отрисовки. Вызывается только горутиной сессии, поэтому поля
// sess меняются без блокировок.
//
// Порядок проверок важен: взведенный админский ввод перехватывает
// следующее текстовое сообщение целиком, до разбора команд и навигации.
func (b *Bot) handleEvent(ctx context.Context, sess *Session, ev Event) Render {
	if sess.Pending == PendingPriceInput && ev.Text != "" {
		return b.consumePriceInput(ctx, sess, ev)
	}
	if strings.HasPrefix(ev.Text, "/") {
		return b.handleCommand(ctx, sess, ev)
	}
	if ev.Action != nil {
		return b.handleAction(ctx, sess, ev, *ev.Action)
	}
	if ev.Text != "" {
		return b.handleText(ctx, sess, ev)
	}
	return Render{}
}

func (b *Bot) handleCommand(ctx context.Context, sess *Session, ev Event) Render {
	cmd, rest := splitCommand(ev.Text)

	switch cmd {
	case "/start":
		if err := b.users.Ensure(ctx, ev.UserID); err != nil {
			b.logger.Error("регистрация пользователя", "user_id", ev.UserID, "error", err)
			return b.errorRender("Не получилось начать, попробуйте еще раз.")
		}
		sess.Screen = ScreenMain
		sess.Pending = PendingNone
		return Render{
			Text:     "Добро пожаловать в *Магазин*!",
			Markdown: true,
			Keyboard: KeyboardReply,
			Rows:     b.mainKeyboard(ev.UserID),
		}

	// Команды админа работают с любого экрана: они разбираются целиком из
	// одного сообщения, а права проверяются внутри сервиса.
	case "/addprod":
		return b.handleAddProduct(ctx, ev.UserID, rest)
	case "/addcat":
		return b.handleAddCategory(ctx, ev.UserID, rest)
	}
	return b.helpRender()
}

func (b *Bot) handleAddProduct(ctx context.Context, userID int64, payload string) Render {
	product, err := b.admin.AddProduct(ctx, userID, payload)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return Render{}
	case errors.Is(err, service.ErrValidation):
		return Render{
			Text:     "Формат: /addprod Категория | Название | Описание | Цена",
			Keyboard: KeyboardReply,
			Rows:     adminKeyboard(),
		}
	case errors.Is(err, repository.ErrNotFound):
		return Render{
			Text:     "Категория не найдена! Сначала добавьте: /addcat Название",
			Keyboard: KeyboardReply,
			Rows:     adminKeyboard(),
		}
	case err != nil:
		b.logger.Error("добавление товара", "user_id", userID, "error", err)
		return b.errorRender("Не получилось добавить товар, попробуйте еще раз.")
	}
	return Render{
		Text:     fmt.Sprintf("Товар *%s* добавлен за %s!", product.Name, model.FormatRub(product.Price)),
		Markdown: true,
		Keyboard: KeyboardReply,
		Rows:     adminKeyboard(),
	}
}

func (b *Bot) handleAddCategory(ctx context.Context, userID int64, name string) Render {
	category, err := b.admin.AddCategory(ctx, userID, name)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return Render{}
	case errors.Is(err, repository.ErrConflict):
		return Render{
			Text:     fmt.Sprintf("Категория *%s* уже существует.", strings.TrimSpace(name)),
			Markdown: true,
			Keyboard: KeyboardReply,
			Rows:     adminKeyboard(),
		}
	case errors.Is(err, service.ErrValidation):
		return Render{
			Text:     "Формат: /addcat Название",
			Keyboard: KeyboardReply,
			Rows:     adminKeyboard(),
		}
	case err != nil:
		b.logger.Error("добавление категории", "user_id", userID, "error", err)
		return b.errorRender("Не получилось добавить категорию, попробуйте еще раз.")
	}
	return Render{
		Text:     fmt.Sprintf("Категория *%s* добавлена!", category.Name),
		Markdown: true,
		Keyboard: KeyboardReply,
		Rows:     adminKeyboard(),
	}
}

// consumePriceInput обрабатывает взведенный ввод смены цены. Слот
// сбрасывается при любом исходе: зависший взведенный ввод перехватывал бы
// все последующие сообщения админа.
func (b *Bot) consumePriceInput(ctx context.Context, sess *Session, ev Event) Render {
	sess.Pending = PendingNone
	sess.Screen = ScreenAdmin

	change, err := b.admin.ChangePrice(ctx, ev.UserID, ev.Text)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return Render{}
	case errors.Is(err, service.ErrValidation):
		return Render{
			Text:     "Неверный формат. Пример: `7 99990`",
			Markdown: true,
			Keyboard: KeyboardReply,
			Rows:     adminKeyboard(),
		}
	case errors.Is(err, repository.ErrNotFound):
		return Render{
			Text:     "Товар не найден.",
			Keyboard: KeyboardReply,
			Rows:     adminKeyboard(),
		}
	case err != nil:
		b.logger.Error("смена цены", "user_id", ev.UserID, "error", err)
		return b.errorRender("Не получилось изменить цену, попробуйте еще раз.")
	}
	return Render{
		Text: fmt.Sprintf("Цена товара *%s* изменена: %s → %s.",
			change.Product.Name, model.FormatRub(change.OldPrice), model.FormatRub(change.Product.Price)),
		Markdown: true,
		Keyboard: KeyboardReply,
		Rows:     adminKeyboard(),
	}
}

// handleText маршрутизирует нажатия кнопок меню по текущему экрану.
// Нераспознанный ввод — короткая подсказка без смены экрана.
func (b *Bot) handleText(ctx context.Context, sess *Session, ev Event) Render {
	switch sess.Screen {
	case ScreenMain:
		switch ev.Text {
		case "Магазин":
			sess.Screen = ScreenShop
			return b.shopMenuRender()
		case "Поддержка":
			return Render{
				Text:     "*Поддержка:*\n\nПочта: `akuznetsov348@ya.ru`\nВремя работы: 10:00 – 20:00",
				Markdown: true,
				Keyboard: KeyboardReply,
				Rows:     b.mainKeyboard(ev.UserID),
			}
		case "Профиль":
			return b.profileRender(ctx, ev.UserID)
		case "Админка":
			// Не-админу молча не отвечаем: само наличие админки не подтверждается.
			if !b.admin.IsAdmin(ev.UserID) {
				return Render{}
			}
			sess.Screen = ScreenAdmin
			return b.adminMenuRender()
		}

	// Торговые экраны делят одну reply-клавиатуру, поэтому "Каталог" и
	// "Корзина" работают и из каталога, и из карточки товара, и из корзины.
	case ScreenShop, ScreenCatalog, ScreenProduct, ScreenCart:
		switch ev.Text {
		case "Каталог":
			sess.Screen = ScreenCatalog
			sess.CategoryID = 0
			return b.categoriesRender(ctx, false)
		case "Корзина":
			sess.Screen = ScreenCart
			return b.cartRender(ctx, ev.UserID)
		case "Назад":
			if sess.Screen == ScreenShop {
				sess.Screen = ScreenMain
				return b.mainMenuRender(ev.UserID)
			}
			sess.Screen = ScreenShop
			return b.shopMenuRender()
		}

	case ScreenAdmin, ScreenAdminProducts:
		switch ev.Text {
		case "Товары":
			return b.adminProductsRender(ctx, sess, ev.UserID)
		case "Изменить цену":
			if !b.admin.IsAdmin(ev.UserID) {
				return Render{}
			}
			sess.Pending = PendingPriceInput
			return Render{
				Text:     "Введите ID товара и новую цену:\n\nПример: `7 99990`",
				Markdown: true,
				Keyboard: KeyboardReply,
				Rows:     adminKeyboard(),
			}
		case "Добавить товар":
			if !b.admin.IsAdmin(ev.UserID) {
				return Render{}
			}
			return Render{
				Text: "Формат:\n/addprod Категория | Название | Описание | Цена\n\n" +
					"Пример:\n/addprod Смартфоны | iPhone 16 | 256 ГБ | 99990",
				Keyboard: KeyboardReply,
				Rows:     adminKeyboard(),
			}
		case "Назад":
			if sess.Screen == ScreenAdminProducts {
				sess.Screen = ScreenAdmin
				return b.adminMenuRender()
			}
			sess.Screen = ScreenMain
			return b.mainMenuRender(ev.UserID)
		}
	}

	return b.helpRender()
}

// handleAction обрабатывает нажатия inline-кнопок.
func (b *Bot) handleAction(ctx context.Context, sess *Session, ev Event, action Action) Render {
	switch action.Kind {
	case ActionSelectCategory:
		sess.Screen = ScreenCatalog
		sess.CategoryID = action.ID
		return b.productsRender(ctx, action.ID)

	case ActionSelectProduct:
		product, err := b.catalog.Product(ctx, action.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return Render{Toast: "Товар не найден."}
		}
		if err != nil {
			b.logger.Error("карточка товара", "product_id", action.ID, "error", err)
			return b.errorRender("Не получилось открыть товар, попробуйте еще раз.")
		}
		sess.Screen = ScreenProduct
		sess.ProductID = product.ID
		sess.CategoryID = product.CategoryID
		return Render{
			Text: fmt.Sprintf("*%s*\n\n%s\n\n*Цена:* %s",
				product.Name, product.Description, model.FormatRub(product.Price)),
			Markdown: true,
			Keyboard: KeyboardInline,
			Rows:     productKeyboard(product.ID),
			Edit:     true,
		}

	case ActionAddToCart:
		// Экран не меняется: пользователь остается в карточке и может
		// добавить товар еще раз.
		err := b.cart.Add(ctx, ev.UserID, action.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return Render{Toast: "Товар не найден."}
		}
		if err != nil {
			b.logger.Error("добавление в корзину", "user_id", ev.UserID, "product_id", action.ID, "error", err)
			return Render{Toast: "Не получилось, попробуйте еще раз."}
		}
		return Render{Toast: "Добавлено в корзину!"}

	case ActionClearCart:
		if err := b.cart.Clear(ctx, ev.UserID); err != nil {
			b.logger.Error("очистка корзины", "user_id", ev.UserID, "error", err)
			return b.errorRender("Не получилось очистить корзину, попробуйте еще раз.")
		}
		sess.Screen = ScreenCart
		return Render{Text: "Корзина очищена!", Edit: true}

	case ActionBackToCatalog:
		// Из карточки товара возвращаемся к списку товаров его категории,
		// из списка товаров — к списку категорий.
		if sess.Screen == ScreenProduct && sess.CategoryID != 0 {
			sess.Screen = ScreenCatalog
			return b.productsRender(ctx, sess.CategoryID)
		}
		sess.Screen = ScreenCatalog
		sess.CategoryID = 0
		return b.categoriesRender(ctx, true)

	case ActionBackToShop:
		sess.Screen = ScreenShop
		return b.shopMenuRender()
	}
	return Render{}
}

func (b *Bot) mainMenuRender(userID int64) Render {
	return Render{
		Text:     "Главное меню:",
		Keyboard: KeyboardReply,
		Rows:     b.mainKeyboard(userID),
	}
}

func (b *Bot) shopMenuRender() Render {
	return Render{
		Text:     "Выберите действие:",
		Keyboard: KeyboardReply,
		Rows:     shopKeyboard(),
	}
}

func (b *Bot) adminMenuRender() Render {
	return Render{
		Text:     "Админ-панель:",
		Keyboard: KeyboardReply,
		Rows:     adminKeyboard(),
	}
}

func (b *Bot) categoriesRender(ctx context.Context, edit bool) Render {
	categories, err := b.catalog.Categories(ctx)
	if err != nil {
		b.logger.Error("список категорий", "error", err)
		return b.errorRender("Не получилось открыть каталог, попробуйте еще раз.")
	}
	return Render{
		Text:     "Выберите категорию:",
		Keyboard: KeyboardInline,
		Rows:     categoriesKeyboard(categories),
		Edit:     edit,
	}
}

func (b *Bot) productsRender(ctx context.Context, categoryID int64) Render {
	products, err := b.catalog.Products(ctx, categoryID)
	if err != nil {
		b.logger.Error("список товаров", "category_id", categoryID, "error", err)
		return b.errorRender("Не получилось открыть каталог, попробуйте еще раз.")
	}
	return Render{
		Text:     "Выберите товар:",
		Keyboard: KeyboardInline,
		Rows:     productsKeyboard(products),
		Edit:     true,
	}
}

func (b *Bot) cartRender(ctx context.Context, userID int64) Render {
	view, err := b.cart.View(ctx, userID)
	if err != nil {
		b.logger.Error("просмотр корзины", "user_id", userID, "error", err)
		return b.errorRender("Не получилось открыть корзину, попробуйте еще раз.")
	}
	if view.Empty() {
		return Render{
			Text:     "Корзина пуста.",
			Keyboard: KeyboardReply,
			Rows:     shopKeyboard(),
		}
	}

	var text strings.Builder
	text.WriteString("*Ваша корзина:*\n\n")
	for _, line := range view.Lines {
		fmt.Fprintf(&text, "• %s × %d = %s\n", line.ProductName, line.Quantity, model.FormatRub(line.Subtotal()))
	}
	fmt.Fprintf(&text, "\n*Итого:* %s", model.FormatRub(view.Total))

	return Render{
		Text:     text.String(),
		Markdown: true,
		Keyboard: KeyboardInline,
		Rows:     cartKeyboard(),
	}
}

func (b *Bot) profileRender(ctx context.Context, userID int64) Render {
	user, err := b.users.Profile(ctx, userID)
	if err != nil {
		b.logger.Error("профиль", "user_id", userID, "error", err)
		return b.errorRender("Не получилось открыть профиль, попробуйте еще раз.")
	}
	email := user.Email
	if email == "" {
		email = "не указана"
	}
	return Render{
		Text: fmt.Sprintf("*Ваш профиль:*\n\nID: `%d`\nБаланс: `%s`\nПочта: `%s`",
			user.ID, model.FormatRubExact(user.Balance), email),
		Markdown: true,
		Keyboard: KeyboardReply,
		Rows:     b.mainKeyboard(userID),
	}
}

func (b *Bot) adminProductsRender(ctx context.Context, sess *Session, userID int64) Render {
	listings, err := b.admin.ListProducts(ctx, userID)
	if errors.Is(err, service.ErrUnauthorized) {
		return Render{}
	}
	if err != nil {
		b.logger.Error("админский список товаров", "user_id", userID, "error", err)
		return b.errorRender("Не получилось открыть список товаров, попробуйте еще раз.")
	}
	sess.Screen = ScreenAdminProducts
	if len(listings) == 0 {
		return Render{
			Text:     "Нет товаров.",
			Keyboard: KeyboardReply,
			Rows:     adminKeyboard(),
		}
	}

	var text strings.Builder
	text.WriteString("*Товары в магазине:*\n\n")
	for _, listing := range listings {
		fmt.Fprintf(&text, "ID: `%d`\n%s\nЦена: %s\nКатегория: %s\n\n",
			listing.ID, listing.Name, model.FormatRub(listing.Price), listing.CategoryName)
	}
	return Render{
		Text:     text.String(),
		Markdown: true,
		Keyboard: KeyboardReply,
		Rows:     adminKeyboard(),
	}
}

func (b *Bot) helpRender() Render {
	return Render{Text: "Не понимаю. Воспользуйтесь кнопками меню."}
}

func (b *Bot) errorRender(text string) Render {
	return Render{Text: text}
}

// splitCommand отделяет имя команды от аргументов и отбрасывает упоминание
// бота: "/addprod@shopbot Категория | ..." → "/addprod", "Категория | ...".
func splitCommand(text string) (cmd, rest string) {
	cmd = text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmd = text[:i]
		rest = strings.TrimSpace(text[i+1:])
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, rest
}
