// Package challenges — progress.go сливает присланный прогресс с сохранённым.
// Главная гарантия: челлендж можно отметить выполненным за день ровно один раз.
package challenges

import (
	"fmt"
	"slices"
	"time"

	"serotonyl.ru/wingman-challenges/internal/common"
)

// MergeResult — результат слияния прогресса.
type MergeResult struct {
	// Merged — все записи пользователя: другие дни + нетронутые сегодня + новые/обновлённые сегодня
	Merged []ProgressEntry
	// Accepted — принятые записи этой отправки (в порядке отправки)
	Accepted []ProgressEntry
	// CompletedThisSubmission — принятые записи с Completed == true.
	// Только они двигают серию и журнал.
	CompletedThisSubmission []ProgressEntry
	// Skipped — сколько записей пропущено (челлендж уже выполнен сегодня)
	Skipped int
}

// ValidateSubmission проверяет присланные записи.
// Любая ошибка отклоняет отправку целиком.
func ValidateSubmission(submitted []SubmittedEntry) error {
	if len(submitted) == 0 {
		return common.NewValidationError("entries", "нет записей прогресса")
	}
	for i, e := range submitted {
		field := fmt.Sprintf("entries[%d]", i)
		if common.NormalizeID(e.ChallengeID) == "" {
			return common.NewValidationError(field+".challengeId", "обязательное непустое поле")
		}
		if e.Completed == nil {
			return common.NewValidationError(field+".completed", "обязательное булево поле")
		}
		if e.Progress != nil && *e.Progress < 0 {
			return common.NewValidationError(field+".progress", "не может быть отрицательным")
		}
		if e.Target != nil && *e.Target < 0 {
			return common.NewValidationError(field+".target", "не может быть отрицательным")
		}
	}
	return nil
}

// MergeProgress сливает submitted с existing для дня today.
//
// Правила:
//   - все присланные записи получают Date = today, что бы ни прислал клиент
//   - записи за другие дни сохраняются как есть
//   - сегодняшние записи по челленджам, которых нет в отправке, сохраняются
//   - если челлендж уже выполнен сегодня — присланная запись пропускается
//   - иначе запись добавляется или заменяет невыполненную запись за сегодня
//
// now проставляется в CompletedAt выполненных записей, у которых его нет.
// Присланный клиентом CompletedAt должен быть не позже now и попадать в today;
// день момента считается в зоне now.
func MergeProgress(existing []ProgressEntry, submitted []SubmittedEntry, today string, now time.Time) (MergeResult, error) {
	if !common.IsDay(today) {
		return MergeResult{}, common.NewValidationError("today", "ожидается формат YYYY-MM-DD, получено "+today)
	}
	if err := ValidateSubmission(submitted); err != nil {
		return MergeResult{}, err
	}
	if err := validateCompletedAt(submitted, today, now); err != nil {
		return MergeResult{}, err
	}

	targeted := make(map[string]bool, len(submitted))
	for _, e := range submitted {
		targeted[common.NormalizeID(e.ChallengeID)] = true
	}

	var otherDays, untouchedToday []ProgressEntry
	// Текущие сегодняшние записи по челленджам из отправки
	todayByID := make(map[string]ProgressEntry)
	for _, e := range existing {
		switch {
		case e.Date != today:
			otherDays = append(otherDays, e)
		case !targeted[e.ChallengeID]:
			untouchedToday = append(untouchedToday, e)
		default:
			todayByID[e.ChallengeID] = e
		}
	}

	// Порядок обновлённых записей: сначала как в existing, новые — в порядке отправки
	var order []string
	for _, e := range existing {
		if e.Date == today && targeted[e.ChallengeID] && !slices.Contains(order, e.ChallengeID) {
			order = append(order, e.ChallengeID)
		}
	}

	var result MergeResult
	for _, s := range submitted {
		id := common.NormalizeID(s.ChallengeID)
		if prev, ok := todayByID[id]; ok && prev.Completed {
			result.Skipped++
			continue
		}

		entry := ProgressEntry{
			ChallengeID: id,
			Date:        today,
			Completed:   *s.Completed,
			Progress:    s.Progress,
			Target:      s.Target,
		}
		if entry.Completed {
			completedAt := now
			if s.CompletedAt != nil {
				completedAt = *s.CompletedAt
			}
			entry.CompletedAt = &completedAt
		}

		if _, ok := todayByID[id]; !ok {
			order = append(order, id)
		}
		todayByID[id] = entry
		result.Accepted = append(result.Accepted, entry)
	}

	// После принятой выполненной записи челлендж дальше пропускается,
	// так что на каждый challengeId здесь не больше одной записи
	for _, entry := range result.Accepted {
		if entry.Completed {
			result.CompletedThisSubmission = append(result.CompletedThisSubmission, entry)
		}
	}

	merged := make([]ProgressEntry, 0, len(otherDays)+len(untouchedToday)+len(order))
	merged = append(merged, otherDays...)
	merged = append(merged, untouchedToday...)
	for _, id := range order {
		merged = append(merged, todayByID[id])
	}
	result.Merged = merged
	return result, nil
}

func validateCompletedAt(submitted []SubmittedEntry, today string, now time.Time) error {
	for i, e := range submitted {
		if e.CompletedAt == nil {
			continue
		}
		field := fmt.Sprintf("entries[%d].completedAt", i)
		if e.CompletedAt.After(now) {
			return common.NewValidationError(field, "момент выполнения в будущем")
		}
		if day := e.CompletedAt.In(now.Location()).Format(common.DayLayout); day != today {
			return common.NewValidationError(field, "момент выполнения не относится к дню "+today+", получено "+day)
		}
	}
	return nil
}

// EntriesForDay возвращает записи за день day.
func EntriesForDay(entries []ProgressEntry, day string) []ProgressEntry {
	var out []ProgressEntry
	for _, e := range entries {
		if e.Date == day {
			out = append(out, e)
		}
	}
	return out
}
