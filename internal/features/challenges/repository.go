// Package challenges — repository.go хранит состояние челленджей в таблице challenge_users.
// Одна строка на пользователя, коллекции лежат в JSONB-колонках в формате документа.
package challenges

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/wingman-challenges/internal/common"
)

// Repository предоставляет методы для работы с таблицей challenge_users.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий челленджей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectState = `
	SELECT user_id, challenge_progress, challenge_progresses, challenge_streak,
	       challenge_rewards, challenge_history, created_at, updated_at
	FROM challenge_users
	WHERE user_id = $1
`

// Create создаёт пустое состояние пользователя.
func (r *Repository) Create(ctx context.Context, userID string) (*UserState, error) {
	query := `
		INSERT INTO challenge_users (user_id, challenge_progresses, challenge_rewards, challenge_history)
		VALUES ($1, '[]', '[]', '[]')
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at, updated_at
	`
	state := &UserState{UserID: userID}
	err := r.db.QueryRow(ctx, query, userID).Scan(&state.CreatedAt, &state.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка создания состояния: %w", err)
	}
	return state, nil
}

// Get возвращает состояние пользователя.
func (r *Repository) Get(ctx context.Context, userID string) (*UserState, error) {
	return scanState(r.db.QueryRow(ctx, selectState, userID), userID)
}

// UpdateState атомарно читает, изменяет и записывает состояние пользователя.
// Строка блокируется FOR UPDATE до конца транзакции, поэтому параллельные
// отправки одного пользователя выполняются строго по очереди.
// Если fn вернул changed == false, запись не выполняется.
func (r *Repository) UpdateState(ctx context.Context, userID string, fn func(state *UserState) (bool, error)) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	// Откатываем транзакцию, если что-то пошло не так
	defer tx.Rollback(ctx)

	state, err := scanState(tx.QueryRow(ctx, selectState+" FOR UPDATE", userID), userID)
	if err != nil {
		return err
	}

	changed, err := fn(state)
	if err != nil {
		return err
	}
	if !changed {
		return tx.Commit(ctx)
	}

	legacy, err := marshalNullable(state.LegacyProgress)
	if err != nil {
		return err
	}
	progresses, err := marshalList(state.Progresses)
	if err != nil {
		return err
	}
	streak, err := marshalNullable(state.Streak)
	if err != nil {
		return err
	}
	rewards, err := marshalList(state.Rewards)
	if err != nil {
		return err
	}
	history, err := marshalList(state.History)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE challenge_users
		SET challenge_progress = $2, challenge_progresses = $3, challenge_streak = $4,
		    challenge_rewards = $5, challenge_history = $6, updated_at = NOW()
		WHERE user_id = $1
	`, userID, legacy, progresses, streak, rewards, history)
	if err != nil {
		return fmt.Errorf("ошибка обновления состояния: %w", err)
	}

	return tx.Commit(ctx)
}

// ListAtRisk возвращает пользователей с серией >= minStreak, у которых
// последнее выполнение было в день lastDay (обычно вчера).
func (r *Repository) ListAtRisk(ctx context.Context, lastDay string, minStreak int) ([]AtRiskStreak, error) {
	query := `
		SELECT user_id, challenge_streak
		FROM challenge_users
		WHERE challenge_streak->>'lastCompletedDate' = $1
		  AND (challenge_streak->>'currentStreak')::int >= $2
		ORDER BY user_id
	`
	rows, err := r.db.Query(ctx, query, lastDay, minStreak)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения серий: %w", err)
	}
	defer rows.Close()

	var out []AtRiskStreak
	for rows.Next() {
		var (
			item AtRiskStreak
			raw  []byte
		)
		if err := rows.Scan(&item.UserID, &raw); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		if err := json.Unmarshal(raw, &item.Streak); err != nil {
			return nil, fmt.Errorf("битый challenge_streak (user_id=%s): %w", item.UserID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CountActive считает пользователей с живой серией (выполняли сегодня или вчера).
func (r *Repository) CountActive(ctx context.Context, today, yesterday string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM challenge_users
		WHERE challenge_streak->>'lastCompletedDate' IN ($1, $2)
		  AND (challenge_streak->>'currentStreak')::int > 0
	`
	var n int
	if err := r.db.QueryRow(ctx, query, today, yesterday).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта серий: %w", err)
	}
	return n, nil
}

func scanState(row pgx.Row, userID string) (*UserState, error) {
	var (
		s                                            UserState
		legacy, progresses, streak, rewards, history []byte
		createdAt, updatedAt                         time.Time
	)
	err := row.Scan(&s.UserID, &legacy, &progresses, &streak, &rewards, &history, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("состояние не прочитано (user_id=%s): %w", userID, err)
	}
	s.CreatedAt, s.UpdatedAt = createdAt, updatedAt

	if err := unmarshalIfPresent(legacy, &s.LegacyProgress); err != nil {
		return nil, fmt.Errorf("challenge_progress: %w", err)
	}
	if err := unmarshalIfPresent(progresses, &s.Progresses); err != nil {
		return nil, fmt.Errorf("challenge_progresses: %w", err)
	}
	if err := unmarshalIfPresent(streak, &s.Streak); err != nil {
		return nil, fmt.Errorf("challenge_streak: %w", err)
	}
	if err := unmarshalIfPresent(rewards, &s.Rewards); err != nil {
		return nil, fmt.Errorf("challenge_rewards: %w", err)
	}
	if err := unmarshalIfPresent(history, &s.History); err != nil {
		return nil, fmt.Errorf("challenge_history: %w", err)
	}
	return &s, nil
}

func unmarshalIfPresent(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// marshalNullable кодирует указатель: nil → SQL NULL.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования JSON: %w", err)
	}
	return b, nil
}

// marshalList кодирует список: nil → [] (колонки NOT NULL).
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования JSON: %w", err)
	}
	return b, nil
}
