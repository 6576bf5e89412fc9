// Package challenges управляет ежедневными челленджами: стрики, награды за вехи,
// идемпотентный прогресс и журнал выполнений.
// models.go описывает структуры данных, которые хранятся в документе пользователя.
package challenges

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty — сложность челленджа.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ChallengeDefinition — справочное описание челленджа. Не изменяется сервисом.
type ChallengeDefinition struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
}

// ProgressEntry — прогресс пользователя по челленджу за конкретный день.
// Ключ записи — (ChallengeID, Date), на ключ не больше одной записи.
type ProgressEntry struct {
	ChallengeID string     `json:"challengeId"`
	Date        string     `json:"date"` // YYYY-MM-DD
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Progress    *int       `json:"progress,omitempty"` // для челленджей с частичным прогрессом
	Target      *int       `json:"target,omitempty"`
}

// SubmittedEntry — запись прогресса в том виде, в каком её прислал клиент.
// Completed — указатель: отсутствие поля отличается от false.
type SubmittedEntry struct {
	ChallengeID string
	Completed   *bool
	CompletedAt *time.Time
	Progress    *int
	Target      *int
}

// Streak — серия дней подряд с хотя бы одним выполненным челленджем.
// Инвариант: LongestStreak >= CurrentStreak, LongestStreak не убывает.
type Streak struct {
	CurrentStreak     int    `json:"currentStreak"`
	LongestStreak     int    `json:"longestStreak"`
	LastCompletedDate string `json:"lastCompletedDate,omitempty"`
}

// Reward — запись о достижении вехи. Создаётся один раз и больше не меняется.
type Reward struct {
	ID           uuid.UUID `json:"id"`
	RewardID     string    `json:"rewardId"` // streak-7
	Tier         string    `json:"tier"`
	Milestone    int       `json:"milestone"`
	StreakAtEarn int       `json:"streakAtEarn"`
	EarnedAt     time.Time `json:"earnedAt"`
}

// HistoryEntry — запись журнала выполнений. Журнал только дополняется.
// Название и описание — снимок на момент выполнения, а не ссылка.
type HistoryEntry struct {
	ID                   uuid.UUID  `json:"id"`
	ChallengeID          string     `json:"challengeId"`
	Date                 string     `json:"date"`
	CompletedAt          time.Time  `json:"completedAt"`
	ChallengeTitle       string     `json:"challengeTitle"`
	ChallengeDescription string     `json:"challengeDescription"`
	Difficulty           Difficulty `json:"difficulty,omitempty"`
	StreakAtCompletion   int        `json:"streakAtCompletion"`
}

// UserState — документ пользователя со всеми полями челленджей.
type UserState struct {
	UserID string
	// LegacyProgress — старое поле challengeProgress, зеркало первой записи последней отправки
	LegacyProgress *ProgressEntry
	Progresses     []ProgressEntry
	Streak         *Streak
	Rewards        []Reward
	History        []HistoryEntry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubmitResult — ответ на отправку прогресса за день.
type SubmitResult struct {
	Progresses []ProgressEntry `json:"progresses"` // записи за сегодня после слияния
	Streak     Streak          `json:"streak"`
	NewRewards []Reward        `json:"newRewards"`
}

// TodayChallenge — челлендж дня с отметкой о выполнении.
type TodayChallenge struct {
	ChallengeDefinition
	Completed bool `json:"completed"`
}

// StateView — состояние пользователя для отображения.
type StateView struct {
	UserID          string           `json:"userId"`
	Today           string           `json:"today"`
	Challenges      []TodayChallenge `json:"challenges"`
	Progresses      []ProgressEntry  `json:"progresses"`
	Streak          Streak           `json:"streak"`
	EffectiveStreak int              `json:"effectiveStreak"`
	Rewards         []Reward         `json:"rewards"`
}

// AtRiskStreak — пользователь, который может потерять серию сегодня.
type AtRiskStreak struct {
	UserID string
	Streak Streak
}
