package bot

import (
	"io"
	"log/slog"
	"sync"
)

// Screen — текущий экран пользователя в навигации.
type Screen int

const (
	ScreenMain Screen = iota
	ScreenShop
	ScreenCatalog
	ScreenProduct
	ScreenCart
	ScreenAdmin
	ScreenAdminProducts
)

// Pending — ожидаемый от администратора ввод.
type Pending int

const (
	PendingNone       Pending = iota
	PendingPriceInput // следующее текстовое сообщение — "ID цена"
)

// Event — входящее событие от транспорта: текстовое сообщение (команда или
// кнопка меню) либо нажатие inline-кнопки. Поля ChatID, MessageID и
// CallbackID нужны только для доставки ответа и ядром не читаются.
type Event struct {
	UserID int64
	Text   string
	Action *Action

	ChatID     int64
	MessageID  int    // сообщение с inline-клавиатурой, которое можно редактировать
	CallbackID string // для ответа на callback-запрос

	done chan struct{} // закрывается после обработки, если задан
}

// Session — состояние навигации одного пользователя: текущий экран,
// открытая категория и товар, ожидаемый админский ввод. Все поля читает и
// меняет единственная горутина-обработчик этого пользователя, поэтому
// синхронизация на уровне полей не нужна.
type Session struct {
	UserID     int64
	Screen     Screen
	CategoryID int64 // категория, открытая в каталоге
	ProductID  int64 // товар, открытый в карточке
	Pending    Pending

	inbox chan Event
}

// Sessions — реестр сессий, по одной на пользователя, с общим
// обработчиком. Сессия создается лениво при первом событии и живет до
// конца процесса. События одного пользователя обрабатываются строго в
// порядке поступления его собственной горутиной; события разных
// пользователей идут параллельно.
type Sessions struct {
	mu     sync.Mutex
	m      map[int64]*Session
	handle func(*Session, Event)
	logger *slog.Logger
}

func NewSessions(logger *slog.Logger, handle func(*Session, Event)) *Sessions {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sessions{
		m:      make(map[int64]*Session),
		handle: handle,
		logger: logger,
	}
}

// session возвращает сессию пользователя, при первом обращении создавая ее
// вместе с горутиной-обработчиком.
func (s *Sessions) session(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[userID]
	if !ok {
		sess = &Session{
			UserID: userID,
			inbox:  make(chan Event, 16),
		}
		s.m[userID] = sess
		go func() {
			for queued := range sess.inbox {
				s.handle(sess, queued)
				if queued.done != nil {
					close(queued.done)
				}
			}
		}()
	}
	return sess
}

// Dispatch ставит событие в очередь сессии пользователя. Переполненная
// очередь — событие отбрасывается с предупреждением: затор одного
// пользователя не должен останавливать раздачу событий остальным.
func (s *Sessions) Dispatch(ev Event) {
	sess := s.session(ev.UserID)
	select {
	case sess.inbox <- ev:
	default:
		s.logger.Warn("очередь событий пользователя переполнена, событие отброшено",
			"user_id", ev.UserID)
		if ev.done != nil {
			close(ev.done)
		}
	}
}

// DispatchWait ставит событие в очередь и дожидается его обработки.
// Нужен webhook-входу: serverless-среда завершает процесс сразу после
// ответа, поэтому обработка должна закончиться до возврата. Здесь очередь
// не сбрасывается: webhook несет ровно одно событие.
func (s *Sessions) DispatchWait(ev Event) {
	done := make(chan struct{})
	ev.done = done
	s.session(ev.UserID).inbox <- ev
	<-done
}
