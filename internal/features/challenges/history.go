// Package challenges — history.go дополняет журнал выполнений.
package challenges

import (
	"github.com/google/uuid"
)

// DefinitionLookup ищет описание челленджа по ID.
type DefinitionLookup func(id string) (ChallengeDefinition, bool)

// AppendHistory возвращает новые записи журнала для челленджей из completed,
// у которых ещё нет записи за today. Журнал и прогресс дедуплицируются
// раздельно: при повторах запись журнала может существовать без записи прогресса
// и наоборот.
//
// Все записи одной отправки получают один и тот же streakAtCompletion —
// серию уже после пересчёта за этот день.
func AppendHistory(completed []ProgressEntry, existing []HistoryEntry, today string, lookup DefinitionLookup, streakAtCompletion int) []HistoryEntry {
	recorded := make(map[string]bool)
	for _, h := range existing {
		if h.Date == today {
			recorded[h.ChallengeID] = true
		}
	}

	var out []HistoryEntry
	for _, e := range completed {
		if recorded[e.ChallengeID] {
			continue
		}
		recorded[e.ChallengeID] = true

		def, ok := ChallengeDefinition{}, false
		if lookup != nil {
			def, ok = lookup(e.ChallengeID)
		}
		if !ok {
			def = ChallengeDefinition{ID: e.ChallengeID, Title: e.ChallengeID}
		}

		entry := HistoryEntry{
			ID:                   uuid.New(),
			ChallengeID:          e.ChallengeID,
			Date:                 today,
			ChallengeTitle:       def.Title,
			ChallengeDescription: def.Description,
			Difficulty:           def.Difficulty,
			StreakAtCompletion:   streakAtCompletion,
		}
		if e.CompletedAt != nil {
			entry.CompletedAt = *e.CompletedAt
		}
		out = append(out, entry)
	}
	return out
}
