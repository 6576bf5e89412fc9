package jobs

import (
	"context"
	"testing"
	"time"
)

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(nil, time.UTC, "every evening", true, func(string, string) {})
	if err := s.Start(context.Background()); err == nil {
		s.Stop()
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStartWithoutReminders(t *testing.T) {
	s := NewScheduler(nil, nil, "every evening", false, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("reminders disabled, schedule must be ignored: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want only the hourly refresh", got)
	}
	s.Stop()
}
