// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: напоминания о сериях под угрозой
// и ежечасный пересчёт метрики живых серий.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wingman-challenges/internal/features/challenges"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron             *cron.Cron
	challengeService *challenges.Service
	sendFunc         func(userID, text string)
	reminderSpec     string
	remindersEnabled bool
}

// NewScheduler создаёт планировщик задач в зоне loc (та же зона, что и граница дня).
func NewScheduler(challengeService *challenges.Service, loc *time.Location, reminderSpec string, remindersEnabled bool, sendFunc func(userID, text string)) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:             cron.New(cron.WithLocation(loc)),
		challengeService: challengeService,
		sendFunc:         sendFunc,
		reminderSpec:     reminderSpec,
		remindersEnabled: remindersEnabled,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.remindersEnabled {
		if _, err := s.cron.AddFunc(s.reminderSpec, func() {
			log.Info("[CRON] Напоминания о сериях")
			if err := s.challengeService.SendReminders(ctx, s.sendFunc); err != nil {
				log.WithError(err).Error("[CRON] Ошибка напоминаний")
			}
		}); err != nil {
			return err
		}
	}

	// Метрика живых серий каждый час
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		n, err := s.challengeService.RefreshActiveStreaks(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка пересчёта серий")
			return
		}
		log.WithField("active", n).Debug("[CRON] Живые серии пересчитаны")
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("reminders", s.remindersEnabled).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
