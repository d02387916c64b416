package bot

// KeyboardKind определяет, какая клавиатура прикладывается к сообщению.
type KeyboardKind int

const (
	KeyboardNone   KeyboardKind = iota
	KeyboardReply               // постоянное меню внизу экрана
	KeyboardInline              // кнопки под сообщением
)

// Button — одна кнопка инструкции отрисовки. Для inline-кнопок Action
// содержит callback-токен, reply-кнопки используют только Label.
type Button struct {
	Label  string
	Action string
}

// Render — инструкция отрисовки: текст, разметка и набор доступных
// действий. Ядро формирует Render, транспортный слой превращает его в
// сообщение Telegram. Пустой Render означает молчаливый отказ: ничего не
// отправляется и экран не меняется.
type Render struct {
	Text     string
	Markdown bool
	Keyboard KeyboardKind
	Rows     [][]Button
	Edit     bool   // заменить текст сообщения с inline-клавиатурой вместо отправки нового
	Toast    string // короткое всплывающее подтверждение callback-действия
}

// Empty сообщает, что отправлять нечего.
func (r Render) Empty() bool {
	return r.Text == "" && r.Toast == ""
}
