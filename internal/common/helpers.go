// Package common содержит общие утилиты, используемые во всём сервисе:
// ошибки, канонические дни и форматирование текста для напоминаний.
package common

import (
	"fmt"
	"strings"
)

// PluralizeDays возвращает "day" или "days" для числа n.
//
//	PluralizeDays(1) → "day"
//	PluralizeDays(7) → "days"
func PluralizeDays(n int) string {
	if n == 1 || n == -1 {
		return "day"
	}
	return "days"
}

// FormatStreak создаёт строку вида "7 days".
func FormatStreak(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizeDays(n))
}

// NormalizeID обрезает пробелы вокруг идентификатора.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
