package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDispatchPerUserOrder проверяет, что события одного пользователя
// обрабатываются строго в порядке постановки, даже когда события двух
// пользователей перемешаны.
func TestDispatchPerUserOrder(t *testing.T) {
	const perUser = 50
	var mu sync.Mutex
	seen := make(map[int64][]string)

	var wg sync.WaitGroup
	wg.Add(2 * perUser)
	sessions := NewSessions(nil, func(sess *Session, ev Event) {
		mu.Lock()
		seen[sess.UserID] = append(seen[sess.UserID], ev.Text)
		mu.Unlock()
		wg.Done()
	})

	for i := 0; i < perUser; i++ {
		text := string(rune('a' + i%26))
		sessions.Dispatch(Event{UserID: 1, Text: text})
		sessions.Dispatch(Event{UserID: 2, Text: text})
	}
	wg.Wait()

	require.Len(t, seen[1], perUser)
	require.Len(t, seen[2], perUser)
	for i := 0; i < perUser; i++ {
		want := string(rune('a' + i%26))
		assert.Equal(t, want, seen[1][i], "пользователь 1, событие %d", i)
		assert.Equal(t, want, seen[2][i], "пользователь 2, событие %d", i)
	}
}

// TestDispatchSessionState проверяет, что обработчик видит одну и ту же
// сессию пользователя между событиями: экран, выставленный первым событием,
// читается вторым.
func TestDispatchSessionState(t *testing.T) {
	screens := make(chan Screen, 2)
	sessions := NewSessions(nil, func(sess *Session, ev Event) {
		if ev.Text == "открыть" {
			sess.Screen = ScreenShop
		}
		screens <- sess.Screen
	})

	sessions.DispatchWait(Event{UserID: 7, Text: "открыть"})
	sessions.DispatchWait(Event{UserID: 7, Text: "прочитать"})

	assert.Equal(t, ScreenShop, <-screens)
	assert.Equal(t, ScreenShop, <-screens)
}

// TestDispatchWait проверяет, что DispatchWait возвращается только после
// обработки события.
func TestDispatchWait(t *testing.T) {
	handled := false
	sessions := NewSessions(nil, func(sess *Session, ev Event) {
		handled = true
	})

	sessions.DispatchWait(Event{UserID: 7})

	assert.True(t, handled)
}

// TestDispatchShedsOverflow проверяет, что переполненная очередь одного
// пользователя не блокирует Dispatch: лишнее событие отбрасывается, а
// остальные обрабатываются.
func TestDispatchShedsOverflow(t *testing.T) {
	started := make(chan struct{}, 64)
	gate := make(chan struct{})
	var mu sync.Mutex
	var handled []string

	sessions := NewSessions(nil, func(sess *Session, ev Event) {
		started <- struct{}{}
		<-gate
		mu.Lock()
		handled = append(handled, ev.Text)
		mu.Unlock()
	})

	// Первое событие занимает обработчик, следующие 16 заполняют очередь.
	sessions.Dispatch(Event{UserID: 1, Text: "первое"})
	<-started
	for i := 0; i < 16; i++ {
		sessions.Dispatch(Event{UserID: 1, Text: "в очереди"})
	}

	// Очередь полна: событие отбрасывается, вызов не блокируется.
	sessions.Dispatch(Event{UserID: 1, Text: "лишнее"})

	// Другой пользователь обслуживается несмотря на затор первого.
	userDone := make(chan struct{})
	go func() {
		sessions.DispatchWait(Event{UserID: 2, Text: "другой"})
		close(userDone)
	}()

	close(gate)
	<-userDone
	sessions.DispatchWait(Event{UserID: 1, Text: "последнее"})

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, handled, "лишнее")
	assert.Contains(t, handled, "другой")
	assert.Contains(t, handled, "последнее")
	// 1 + 16 + 1 у первого пользователя, 1 у второго.
	assert.Len(t, handled, 19)
}