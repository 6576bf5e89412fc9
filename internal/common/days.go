// Package common — days.go вычисляет канонический «день челленджа».
//
// Все пользователи и все серверы должны сходиться в том, когда начинается
// новый день, поэтому день всегда считается в одной фиксированной зоне,
// а не в локальном времени устройства. Текущее время передаётся явно.
package common

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// DayLayout — формат канонического дня: 2006-01-02.
const DayLayout = "2006-01-02"

const dayLength = 24 * time.Hour

// DayResolver переводит моменты времени в канонические дни.
type DayResolver struct {
	loc *time.Location
}

// NewDayResolver создаёт резолвер для зоны name (например "UTC").
// Если зону загрузить не удалось — используется UTC.
func NewDayResolver(name string) *DayResolver {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithError(err).WithField("timezone", name).Warn("Не удалось загрузить часовой пояс, используем UTC")
		loc = time.UTC
	}
	return &DayResolver{loc: loc}
}

// Location возвращает фиксированную зону резолвера.
func (r *DayResolver) Location() *time.Location {
	return r.loc
}

// Today возвращает канонический день для момента now.
func (r *DayResolver) Today(now time.Time) string {
	return now.In(r.loc).Format(DayLayout)
}

// Yesterday возвращает канонический день, предшествующий now.
func (r *DayResolver) Yesterday(now time.Time) string {
	t := now.In(r.loc)
	// Сутки в зоне с переводом часов бывают 23 или 25 часов, поэтому не Add(-24h)
	return time.Date(t.Year(), t.Month(), t.Day()-1, 0, 0, 0, 0, r.loc).Format(DayLayout)
}

// DaysBetween возвращает модуль количества дней между a и b.
// Оба дня берутся как полночь, разница делится на длину суток с округлением вниз.
// Арифметика идёт по календарным датам в UTC, чтобы переход на летнее время
// в зоне резолвера не превращал соседние дни в «0 дней».
//
// Примеры:
//
//	DaysBetween("2025-03-10", "2025-03-11") → 1
//	DaysBetween("2025-03-14", "2025-03-10") → 4
func DaysBetween(a, b string) (int, error) {
	ta, err := parseCalendarDay(a)
	if err != nil {
		return 0, err
	}
	tb, err := parseCalendarDay(b)
	if err != nil {
		return 0, err
	}
	diff := tb.Sub(ta)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / dayLength), nil
}

// DayIndex возвращает номер дня от начала эпохи Unix.
// Используется для детерминированной ротации челленджей.
func DayIndex(day string) (int, error) {
	t, err := parseCalendarDay(day)
	if err != nil {
		return 0, err
	}
	return int(t.Unix() / int64(dayLength/time.Second)), nil
}

// IsDay проверяет, что строка — корректный канонический день.
func IsDay(day string) bool {
	_, err := parseCalendarDay(day)
	return err == nil
}

func parseCalendarDay(day string) (time.Time, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, NewValidationError("date", "ожидается формат YYYY-MM-DD, получено "+day)
	}
	return t, nil
}
