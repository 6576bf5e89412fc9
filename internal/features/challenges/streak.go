// Package challenges — streak.go пересчитывает серию дней после выполнения челленджа.
package challenges

import "serotonyl.ru/wingman-challenges/internal/common"

// UpdateStreak возвращает новое состояние серии после выполнения челленджа в день completedDate.
//
// Алгоритм:
//  1. Серии нет (или нет даты последнего выполнения) → 1/1, дата = completedDate
//  2. Тот же день повторно → без изменений
//  3. Разрыв в 1 день → CurrentStreak+1, LongestStreak = max
//  4. Разрыв 0 → без изменений (не ошибка)
//  5. Разрыв больше 1 дня → CurrentStreak = 1, рекорд не трогаем
//
// Вызывать не чаще раза в день на пользователя: повторные вызовы за тот же день
// ничего не меняют, но вызывающий отвечает за то, чтобы серию двигало только
// первое выполнение дня.
func UpdateStreak(current *Streak, completedDate string) (Streak, error) {
	if !common.IsDay(completedDate) {
		return Streak{}, common.NewValidationError("date", "ожидается формат YYYY-MM-DD, получено "+completedDate)
	}

	if current == nil || current.LastCompletedDate == "" {
		return Streak{CurrentStreak: 1, LongestStreak: 1, LastCompletedDate: completedDate}, nil
	}

	next := *current
	if next.LastCompletedDate == completedDate {
		return next, nil
	}

	gap, err := common.DaysBetween(next.LastCompletedDate, completedDate)
	if err != nil {
		return Streak{}, err
	}

	switch {
	case gap == 0:
		return next, nil
	case gap == 1:
		next.CurrentStreak++
	default:
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	next.LastCompletedDate = completedDate
	return next, nil
}

// EffectiveStreak возвращает серию для отображения: если последнее выполнение
// было раньше вчерашнего дня, серия уже прервана и показывается как 0.
// В базе при этом хранится исходное значение.
func EffectiveStreak(s *Streak, today, yesterday string) int {
	if s == nil {
		return 0
	}
	if s.LastCompletedDate == today || s.LastCompletedDate == yesterday {
		return s.CurrentStreak
	}
	return 0
}
