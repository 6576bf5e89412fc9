package challenges

import (
	"errors"
	"testing"
	"time"

	"serotonyl.ru/wingman-challenges/internal/common"
)

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func TestMergeProgressStampsTodayAndKeepsOtherDays(t *testing.T) {
	yesterday := ProgressEntry{ChallengeID: "boss-guide", Date: "2025-03-10", Completed: true}
	existing := []ProgressEntry{yesterday}

	res, err := MergeProgress(existing, []SubmittedEntry{
		{ChallengeID: "boss-guide", Completed: boolPtr(true)},
	}, "2025-03-11", testNow)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Merged) != 2 {
		t.Fatalf("merged = %+v, want 2 entries", res.Merged)
	}
	if res.Merged[0] != yesterday {
		t.Errorf("other day entry changed: %+v", res.Merged[0])
	}
	today := res.Merged[1]
	if today.Date != "2025-03-11" || !today.Completed {
		t.Errorf("today entry = %+v", today)
	}
	if today.CompletedAt == nil || !today.CompletedAt.Equal(testNow) {
		t.Errorf("completedAt = %v, want %v", today.CompletedAt, testNow)
	}
	if len(res.CompletedThisSubmission) != 1 {
		t.Errorf("completed = %+v, want 1", res.CompletedThisSubmission)
	}
}

func TestMergeProgressSkipsAlreadyCompletedToday(t *testing.T) {
	done := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)
	existing := []ProgressEntry{
		{ChallengeID: "boss-guide", Date: "2025-03-11", Completed: true, CompletedAt: &done},
	}

	res, err := MergeProgress(existing, []SubmittedEntry{
		{ChallengeID: "boss-guide", Completed: boolPtr(true)},
		{ChallengeID: "boss-guide", Completed: boolPtr(false)},
	}, "2025-03-11", testNow)
	if err != nil {
		t.Fatal(err)
	}

	if res.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", res.Skipped)
	}
	if len(res.Accepted) != 0 || len(res.CompletedThisSubmission) != 0 {
		t.Errorf("nothing must be accepted: %+v", res)
	}
	if len(res.Merged) != 1 || !res.Merged[0].CompletedAt.Equal(done) {
		t.Errorf("merged = %+v, want stored entry", res.Merged)
	}
}

func TestMergeProgressIsIdempotentAcrossCalls(t *testing.T) {
	submit := []SubmittedEntry{{ChallengeID: "daily-login", Completed: boolPtr(true)}}

	first, err := MergeProgress(nil, submit, "2025-03-11", testNow)
	if err != nil {
		t.Fatal(err)
	}
	second, err := MergeProgress(first.Merged, submit, "2025-03-11", testNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if len(second.Merged) != len(first.Merged) {
		t.Fatalf("merged grew: %d → %d", len(first.Merged), len(second.Merged))
	}
	if !second.Merged[0].CompletedAt.Equal(*first.Merged[0].CompletedAt) {
		t.Error("completion time must not be overwritten")
	}
	if len(second.CompletedThisSubmission) != 0 {
		t.Errorf("second call completed = %+v, want none", second.CompletedThisSubmission)
	}
}

func TestMergeProgressReplacesIncompleteEntry(t *testing.T) {
	existing := []ProgressEntry{
		{ChallengeID: "like-three-posts", Date: "2025-03-11", Completed: false, Progress: intPtr(1), Target: intPtr(3)},
		{ChallengeID: "daily-login", Date: "2025-03-11", Completed: true},
	}

	res, err := MergeProgress(existing, []SubmittedEntry{
		{ChallengeID: "like-three-posts", Completed: boolPtr(true), Progress: intPtr(3), Target: intPtr(3)},
	}, "2025-03-11", testNow)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Merged) != 2 {
		t.Fatalf("merged = %+v", res.Merged)
	}
	// untouchedToday идёт перед обновлёнными
	if res.Merged[0].ChallengeID != "daily-login" {
		t.Errorf("merged[0] = %+v, want untouched daily-login", res.Merged[0])
	}
	updated := res.Merged[1]
	if !updated.Completed || *updated.Progress != 3 {
		t.Errorf("updated = %+v", updated)
	}
	if len(res.CompletedThisSubmission) != 1 || res.CompletedThisSubmission[0].ChallengeID != "like-three-posts" {
		t.Errorf("completed = %+v", res.CompletedThisSubmission)
	}
}

func TestMergeProgressIgnoresOtherDayProgressCounters(t *testing.T) {
	existing := []ProgressEntry{
		{ChallengeID: "like-three-posts", Date: "2025-03-10", Completed: false, Progress: intPtr(2), Target: intPtr(3)},
	}

	res, err := MergeProgress(existing, []SubmittedEntry{
		{ChallengeID: "like-three-posts", Completed: boolPtr(false)},
	}, "2025-03-11", testNow)
	if err != nil {
		t.Fatal(err)
	}
	today := EntriesForDay(res.Merged, "2025-03-11")
	if len(today) != 1 || today[0].Progress != nil || today[0].Target != nil {
		t.Errorf("today = %+v, counters must not carry over", today)
	}
	if today[0].CompletedAt != nil {
		t.Error("incomplete entry must not get completedAt")
	}
}

func TestMergeProgressMultipleCompletionsInOneCall(t *testing.T) {
	res, err := MergeProgress(nil, []SubmittedEntry{
		{ChallengeID: "daily-login", Completed: boolPtr(true)},
		{ChallengeID: "boss-guide", Completed: boolPtr(false)},
		{ChallengeID: "retro-classic", Completed: boolPtr(true)},
		{ChallengeID: "daily-login", Completed: boolPtr(true)},
	}, "2025-03-11", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Merged) != 3 {
		t.Errorf("merged = %d entries, want 3", len(res.Merged))
	}
	if len(res.CompletedThisSubmission) != 2 {
		t.Errorf("completed = %+v, want 2", res.CompletedThisSubmission)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
}

func TestMergeProgressUsesClientCompletedAt(t *testing.T) {
	at := time.Date(2025, 3, 11, 7, 15, 0, 0, time.UTC)
	res, err := MergeProgress(nil, []SubmittedEntry{
		{ChallengeID: " daily-login ", Completed: boolPtr(true), CompletedAt: &at},
	}, "2025-03-11", testNow)
	if err != nil {
		t.Fatal(err)
	}
	e := res.Merged[0]
	if e.ChallengeID != "daily-login" {
		t.Errorf("challengeId = %q, want trimmed", e.ChallengeID)
	}
	if !e.CompletedAt.Equal(at) {
		t.Errorf("completedAt = %v, want %v", e.CompletedAt, at)
	}
}

func TestMergeProgressRejectsCompletedAtOutsideToday(t *testing.T) {
	future := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	laterToday := testNow.Add(time.Hour)
	yesterday := testNow.AddDate(0, 0, -1)
	msk := time.FixedZone("MSK", 3*3600)
	// 2025-03-11 01:00 по Москве — это ещё 2025-03-10 22:00 UTC
	otherZone := time.Date(2025, 3, 11, 1, 0, 0, 0, msk)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"far future", future},
		{"later today", laterToday},
		{"yesterday", yesterday},
		{"same wall day in another zone", otherZone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			res, err := MergeProgress(nil, []SubmittedEntry{
				{ChallengeID: "daily-login", Completed: boolPtr(true), CompletedAt: &at},
			}, "2025-03-11", testNow)
			var verr *common.ValidationError
			if !errors.As(err, &verr) || verr.Field != "entries[0].completedAt" {
				t.Fatalf("error = %v, want completedAt validation error", err)
			}
			if res.Merged != nil {
				t.Errorf("merged must be empty on error: %+v", res.Merged)
			}
		})
	}

	// Ровно now допустим
	at := testNow
	if _, err := MergeProgress(nil, []SubmittedEntry{
		{ChallengeID: "daily-login", Completed: boolPtr(true), CompletedAt: &at},
	}, "2025-03-11", testNow); err != nil {
		t.Errorf("completedAt == now rejected: %v", err)
	}
}

func TestMergeProgressValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry SubmittedEntry
	}{
		{"missing challengeId", SubmittedEntry{Completed: boolPtr(true)}},
		{"blank challengeId", SubmittedEntry{ChallengeID: "   ", Completed: boolPtr(true)}},
		{"missing completed", SubmittedEntry{ChallengeID: "daily-login"}},
		{"negative progress", SubmittedEntry{ChallengeID: "daily-login", Completed: boolPtr(false), Progress: intPtr(-1)}},
		{"negative target", SubmittedEntry{ChallengeID: "daily-login", Completed: boolPtr(false), Target: intPtr(-3)}},
	}

	existing := []ProgressEntry{{ChallengeID: "boss-guide", Date: "2025-03-11", Completed: false}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Валидная запись впереди не должна спасти отправку
			submitted := []SubmittedEntry{{ChallengeID: "boss-guide", Completed: boolPtr(true)}, tt.entry}
			res, err := MergeProgress(existing, submitted, "2025-03-11", testNow)
			if !errors.Is(err, common.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			if res.Merged != nil {
				t.Errorf("merged must be empty on error: %+v", res.Merged)
			}
		})
	}

	if _, err := MergeProgress(nil, nil, "2025-03-11", testNow); !errors.Is(err, common.ErrValidation) {
		t.Errorf("empty submission error = %v, want ErrValidation", err)
	}
	if _, err := MergeProgress(nil, []SubmittedEntry{{ChallengeID: "x", Completed: boolPtr(true)}}, "today", testNow); !errors.Is(err, common.ErrValidation) {
		t.Errorf("bad today error = %v, want ErrValidation", err)
	}
}
