// Package challenges — rewards.go определяет награды за вехи серии.
// Награда за веху выдаётся один раз за всё время, даже если серия потом
// прервалась и снова доросла до порога.
package challenges

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultMilestones — пороги серии по умолчанию (дней подряд).
var DefaultMilestones = []int{3, 7, 14, 30, 100}

// milestoneTiers — названия уровней по порядку вех.
// Вехи сверх таблицы получают уровень "legend".
var milestoneTiers = []string{"bronze", "silver", "gold", "platinum", "diamond"}

// TierFor возвращает уровень для вехи с индексом idx в возрастающем списке.
func TierFor(idx int) string {
	if idx >= 0 && idx < len(milestoneTiers) {
		return milestoneTiers[idx]
	}
	return "legend"
}

// FormatRewardID создаёт идентификатор награды: "streak-7".
func FormatRewardID(milestone int) string {
	return fmt.Sprintf("streak-%d", milestone)
}

// CheckAndAwardRewards возвращает только НОВЫЕ награды для серии streak.
// milestones должны идти по возрастанию. Награда появляется, если
// CurrentStreak >= порога и среди existing нет награды за эту веху.
// Сохранение existing + результат — забота вызывающего.
func CheckAndAwardRewards(streak Streak, existing []Reward, milestones []int, now time.Time) []Reward {
	awarded := make(map[int]bool, len(existing))
	for _, r := range existing {
		awarded[r.Milestone] = true
	}

	var result []Reward
	for i, threshold := range milestones {
		if streak.CurrentStreak < threshold {
			// Список возрастающий — дальше только большие пороги
			break
		}
		if awarded[threshold] {
			continue
		}
		awarded[threshold] = true
		result = append(result, Reward{
			ID:           uuid.New(),
			RewardID:     FormatRewardID(threshold),
			Tier:         TierFor(i),
			Milestone:    threshold,
			StreakAtEarn: streak.CurrentStreak,
			EarnedAt:     now,
		})
	}
	return result
}
