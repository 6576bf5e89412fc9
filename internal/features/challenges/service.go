// Package challenges — service.go содержит основную бизнес-логику челленджей.
// Сервис собирает чистые функции (слияние прогресса, серия, награды, журнал)
// в одну отправку и выполняет её внутри атомарного обновления состояния пользователя.
package challenges

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wingman-challenges/internal/common"
	"serotonyl.ru/wingman-challenges/internal/config"
)

// Store — хранилище состояний пользователей. Реализуется Repository.
type Store interface {
	Create(ctx context.Context, userID string) (*UserState, error)
	Get(ctx context.Context, userID string) (*UserState, error)
	UpdateState(ctx context.Context, userID string, fn func(state *UserState) (bool, error)) error
	ListAtRisk(ctx context.Context, lastDay string, minStreak int) ([]AtRiskStreak, error)
	CountActive(ctx context.Context, today, yesterday string) (int, error)
}

// Service управляет челленджами пользователей.
type Service struct {
	store   Store               // Хранилище состояний
	catalog *Catalog            // Справочник челленджей
	days    *common.DayResolver // Граница дня
	cfg     *config.Config      // Конфигурация
	clock   func() time.Time
}

// NewService создаёт новый сервис челленджей.
func NewService(store Store, catalog *Catalog, days *common.DayResolver, cfg *config.Config) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		days:    days,
		cfg:     cfg,
		clock:   time.Now,
	}
}

// SetClock подменяет источник текущего времени.
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Catalog возвращает справочник челленджей.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// SubmitDailyProgress принимает прогресс пользователя за сегодня.
//
// Алгоритм (внутри одной транзакции с блокировкой строки пользователя):
//  1. Сливаем присланное с сохранённым, уже выполненные за сегодня пропускаем
//  2. Если что-то впервые выполнено сегодня — пересчитываем серию
//  3. Проверяем вехи и выдаём новые награды
//  4. Пишем в журнал челленджи, которых там ещё нет за сегодня
//  5. Обновляем старое поле challengeProgress (первая принятая запись)
func (s *Service) SubmitDailyProgress(ctx context.Context, userID string, entries []SubmittedEntry) (*SubmitResult, error) {
	userID = common.NormalizeID(userID)
	if userID == "" {
		return nil, common.NewValidationError("userId", "обязательное поле")
	}
	// Время в зоне резолвера: по нему проверяется день присланного completedAt
	now := s.clock().In(s.days.Location())
	today := s.days.Today(now)

	// Валидируем до похода в БД: при ошибке состояние не трогаем
	err := ValidateSubmission(entries)
	if err == nil {
		err = validateCompletedAt(entries, today, now)
	}
	if err != nil {
		submissionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	var (
		result   SubmitResult
		skipped  int
		accepted int
		added    int
	)
	err = s.store.UpdateState(ctx, userID, func(state *UserState) (bool, error) {
		merge, err := MergeProgress(state.Progresses, entries, today, now)
		if err != nil {
			return false, err
		}
		skipped = merge.Skipped
		accepted = len(merge.Accepted)

		if len(merge.Accepted) == 0 {
			// Повторная отправка уже выполненного — ничего не меняется
			result = snapshot(state, today, nil)
			return false, nil
		}

		state.Progresses = merge.Merged
		legacy := merge.Accepted[0]
		state.LegacyProgress = &legacy

		var newRewards []Reward
		if len(merge.CompletedThisSubmission) > 0 {
			updated, err := UpdateStreak(state.Streak, today)
			if err != nil {
				return false, err
			}
			state.Streak = &updated

			newRewards = CheckAndAwardRewards(updated, state.Rewards, s.cfg.Milestones, now)
			state.Rewards = append(state.Rewards, newRewards...)

			history := AppendHistory(merge.CompletedThisSubmission, state.History, today, s.catalog.Lookup, updated.CurrentStreak)
			state.History = append(state.History, history...)
			added = len(history)
		}

		result = snapshot(state, today, newRewards)
		return true, nil
	})
	if err != nil {
		submissionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("отправка прогресса (user_id=%s): %w", userID, err)
	}

	submissionsTotal.WithLabelValues("ok").Inc()
	skippedEntriesTotal.Add(float64(skipped))
	for _, r := range result.NewRewards {
		rewardsTotal.WithLabelValues(r.Tier).Inc()
	}

	log.WithFields(log.Fields{
		"user_id":     userID,
		"today":       today,
		"submitted":   len(entries),
		"accepted":    accepted,
		"skipped":     skipped,
		"history":     added,
		"streak":      result.Streak.CurrentStreak,
		"new_rewards": len(result.NewRewards),
	}).Debug("Прогресс челленджей принят")

	return &result, nil
}

// snapshot собирает ответ из состояния.
func snapshot(state *UserState, today string, newRewards []Reward) SubmitResult {
	res := SubmitResult{
		Progresses: EntriesForDay(state.Progresses, today),
		NewRewards: newRewards,
	}
	if res.Progresses == nil {
		res.Progresses = []ProgressEntry{}
	}
	if res.NewRewards == nil {
		res.NewRewards = []Reward{}
	}
	if state.Streak != nil {
		res.Streak = *state.Streak
	}
	return res
}

// GetState возвращает состояние челленджей пользователя на сегодня.
func (s *Service) GetState(ctx context.Context, userID string) (*StateView, error) {
	userID = common.NormalizeID(userID)
	if userID == "" {
		return nil, common.NewValidationError("userId", "обязательное поле")
	}
	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	today, yesterday := s.days.Today(now), s.days.Yesterday(now)
	progresses := EntriesForDay(state.Progresses, today)

	completed := make(map[string]bool, len(progresses))
	for _, p := range progresses {
		if p.Completed {
			completed[p.ChallengeID] = true
		}
	}

	defs, err := s.catalog.ForDay(today, s.cfg.ChallengesPerDay)
	if err != nil {
		return nil, err
	}
	view := &StateView{
		UserID:          state.UserID,
		Today:           today,
		Challenges:      make([]TodayChallenge, 0, len(defs)),
		Progresses:      progresses,
		EffectiveStreak: EffectiveStreak(state.Streak, today, yesterday),
		Rewards:         state.Rewards,
	}
	for _, d := range defs {
		view.Challenges = append(view.Challenges, TodayChallenge{ChallengeDefinition: d, Completed: completed[d.ID]})
	}
	if view.Progresses == nil {
		view.Progresses = []ProgressEntry{}
	}
	if view.Rewards == nil {
		view.Rewards = []Reward{}
	}
	if state.Streak != nil {
		view.Streak = *state.Streak
	}
	return view, nil
}

// TodayChallenges возвращает челленджи текущего дня.
func (s *Service) TodayChallenges() (string, []ChallengeDefinition, error) {
	today := s.days.Today(s.clock())
	defs, err := s.catalog.ForDay(today, s.cfg.ChallengesPerDay)
	return today, defs, err
}

// GetHistory возвращает журнал выполнений, новые записи первыми.
// from/to (YYYY-MM-DD, включительно) необязательны. limit <= 0 или больше
// HISTORY_PAGE_LIMIT заменяется на HISTORY_PAGE_LIMIT.
func (s *Service) GetHistory(ctx context.Context, userID, from, to string, limit int) ([]HistoryEntry, error) {
	userID = common.NormalizeID(userID)
	if userID == "" {
		return nil, common.NewValidationError("userId", "обязательное поле")
	}
	if from != "" && !common.IsDay(from) {
		return nil, common.NewValidationError("from", "ожидается формат YYYY-MM-DD")
	}
	if to != "" && !common.IsDay(to) {
		return nil, common.NewValidationError("to", "ожидается формат YYYY-MM-DD")
	}
	if from != "" && to != "" && from > to {
		return nil, common.NewValidationError("from", "from позже to")
	}
	if limit <= 0 || limit > s.cfg.HistoryPageLimit {
		limit = s.cfg.HistoryPageLimit
	}

	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// YYYY-MM-DD сравнивается как строка в том же порядке, что и даты
	out := make([]HistoryEntry, 0, len(state.History))
	for _, h := range state.History {
		if from != "" && h.Date < from {
			continue
		}
		if to != "" && h.Date > to {
			continue
		}
		out = append(out, h)
	}
	slices.SortStableFunc(out, func(a, b HistoryEntry) int {
		if c := strings.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return b.CompletedAt.Compare(a.CompletedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateState создаёт пустое состояние челленджей для пользователя.
func (s *Service) CreateState(ctx context.Context, userID string) (*UserState, error) {
	userID = common.NormalizeID(userID)
	if userID == "" {
		return nil, common.NewValidationError("userId", "обязательное поле")
	}
	state, err := s.store.Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.WithField("user_id", userID).Info("Состояние челленджей создано")
	return state, nil
}

// SendReminders напоминает пользователям с длинной серией, что сегодня
// они ещё ничего не выполнили. Запускается кроном раз в день.
func (s *Service) SendReminders(ctx context.Context, sendFunc func(userID, text string)) error {
	yesterday := s.days.Yesterday(s.clock())
	atRisk, err := s.store.ListAtRisk(ctx, yesterday, s.cfg.ReminderMinStreak)
	if err != nil {
		return err
	}

	for _, item := range atRisk {
		msg := fmt.Sprintf("Your daily challenge streak is %s! Complete a challenge today to keep it going.",
			common.FormatStreak(item.Streak.CurrentStreak))
		sendFunc(item.UserID, msg)
	}

	log.WithFields(log.Fields{
		"last_day": yesterday,
		"sent":     len(atRisk),
	}).Info("Напоминания о сериях отправлены")
	return nil
}

// RefreshActiveStreaks пересчитывает метрику живых серий.
func (s *Service) RefreshActiveStreaks(ctx context.Context) (int, error) {
	now := s.clock()
	n, err := s.store.CountActive(ctx, s.days.Today(now), s.days.Yesterday(now))
	if err != nil {
		return 0, err
	}
	activeStreaks.Set(float64(n))
	return n, nil
}
