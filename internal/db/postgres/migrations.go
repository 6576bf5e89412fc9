package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Migration — одна встроенная SQL-миграция.
type Migration struct {
	Version int
	SQL     string
}

// RunMigrations создаёт таблицу schema_migrations и применяет миграции по порядку.
// Уже применённые версии пропускаются, каждая миграция идёт в своей транзакции.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, migrations []Migration) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			ok, err := applyMigration(ctx, tx, m)
			if ok {
				applied++
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("миграция %d: %w", m.Version, err)
		}
	}

	log.WithFields(log.Fields{
		"total":   len(migrations),
		"applied": applied,
	}).Info("Миграции применены")
	return nil
}

// applyMigration выполняет m, если её версии ещё нет в schema_migrations.
// Возвращает true, если миграция действительно выполнялась.
func applyMigration(ctx context.Context, tx pgx.Tx, m Migration) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.Version,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки версии: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return false, fmt.Errorf("ошибка выполнения SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version); err != nil {
		return false, fmt.Errorf("ошибка записи версии: %w", err)
	}
	return true, nil
}
