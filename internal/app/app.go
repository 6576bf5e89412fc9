// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// HTTP-сервер и планировщик.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wingman-challenges/internal/api"
	"serotonyl.ru/wingman-challenges/internal/api/middleware"
	"serotonyl.ru/wingman-challenges/internal/common"
	"serotonyl.ru/wingman-challenges/internal/config"
	"serotonyl.ru/wingman-challenges/internal/db/postgres"
	"serotonyl.ru/wingman-challenges/internal/features/admin"
	"serotonyl.ru/wingman-challenges/internal/features/challenges"
	"serotonyl.ru/wingman-challenges/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Server      *http.Server
	Scheduler   *jobs.Scheduler
	DB          *pgxpool.Pool
	RateLimiter *middleware.RateLimiter
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool, challenges.Migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Метрики ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	middleware.RegisterMetrics(registry)
	challenges.RegisterMetrics(registry)

	// === 3. Репозитории и сервисы ===
	days := common.NewDayResolver(cfg.AppTimezone)
	challengeRepo := challenges.NewRepository(pool)
	challengeService := challenges.NewService(challengeRepo, challenges.NewCatalog(), days, cfg)
	adminService := admin.NewService(challengeService, cfg.AdminTokenHash)

	// === 4. Обработчики и роутер ===
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router := api.NewRouter(cfg, pool, registry,
		challenges.NewHandler(challengeService).WithSubmitLimit(limiter.Middleware),
		admin.NewHandler(adminService),
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// === 5. Планировщик задач ===
	scheduler := jobs.NewScheduler(challengeService, days.Location(), cfg.ReminderCron, cfg.FeatureRemindersEnabled, logReminder)

	return &App{
		Server:      server,
		Scheduler:   scheduler,
		DB:          pool,
		RateLimiter: limiter,
	}, nil
}

// logReminder — доставка напоминаний по умолчанию: пишем в лог.
// Каналы доставки (email, push) подключаются снаружи сервиса.
func logReminder(userID, text string) {
	log.WithField("user_id", userID).Info(text)
}
