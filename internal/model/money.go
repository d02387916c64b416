package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Денежные суммы хранятся в копейках (int64). Наружу они показываются в
// рублях: цены — целыми, баланс — с двумя знаками после запятой, тысячи
// разделяются пробелом ("89 990 ₽").

// FormatRub форматирует сумму как целые рубли: "89 990 ₽".
// Неполный рубль округляется до ближайшего.
func FormatRub(kopecks int64) string {
	sign := ""
	if kopecks < 0 {
		sign = "-"
		kopecks = -kopecks
	}
	rub := (kopecks + 50) / 100
	return sign + groupDigits(strconv.FormatInt(rub, 10)) + " ₽"
}

// FormatRubExact форматирует сумму с копейками: "1 234.50 ₽".
func FormatRubExact(kopecks int64) string {
	sign := ""
	if kopecks < 0 {
		sign = "-"
		kopecks = -kopecks
	}
	return fmt.Sprintf("%s%s.%02d ₽", sign, groupDigits(strconv.FormatInt(kopecks/100, 10)), kopecks%100)
}

// ParseRub разбирает введенную администратором цену в рублях ("99990" или
// "999.50") и возвращает копейки. Отрицательные, нечисловые и не
// помещающиеся в int64 копеек значения отклоняются.
func ParseRub(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("недопустимая сумма %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("недопустимая сумма %q", s)
	}
	kopecks := math.Round(f * 100)
	if kopecks >= math.MaxInt64 {
		return 0, fmt.Errorf("недопустимая сумма %q", s)
	}
	return int64(kopecks), nil
}

// groupDigits разделяет группы тысяч пробелами: "89990" → "89 990".
func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
