package challenges

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

func TestCheckAndAwardRewardsGrantsOnlyNewMilestone(t *testing.T) {
	existing := []Reward{{Milestone: 3, RewardID: "streak-3"}}
	streak := Streak{CurrentStreak: 7, LongestStreak: 7, LastCompletedDate: "2025-03-11"}

	got := CheckAndAwardRewards(streak, existing, []int{3, 7, 14}, testNow)
	if len(got) != 1 {
		t.Fatalf("got %d rewards, want 1: %+v", len(got), got)
	}
	r := got[0]
	if r.Milestone != 7 || r.RewardID != "streak-7" || r.Tier != "silver" {
		t.Errorf("reward = %+v", r)
	}
	if r.StreakAtEarn != 7 || !r.EarnedAt.Equal(testNow) {
		t.Errorf("reward meta = %+v", r)
	}
}

func TestCheckAndAwardRewardsCatchUpSeveralMilestones(t *testing.T) {
	streak := Streak{CurrentStreak: 14, LongestStreak: 14}
	got := CheckAndAwardRewards(streak, nil, []int{3, 7, 14, 30}, testNow)
	if len(got) != 3 {
		t.Fatalf("got %d rewards, want 3", len(got))
	}
	for i, want := range []int{3, 7, 14} {
		if got[i].Milestone != want {
			t.Errorf("reward %d milestone = %d, want %d", i, got[i].Milestone, want)
		}
	}
	if got[0].ID == got[1].ID {
		t.Error("reward IDs must be unique")
	}
}

func TestCheckAndAwardRewardsNeverReawards(t *testing.T) {
	milestones := []int{3, 7}
	existing := []Reward{{Milestone: 3}, {Milestone: 7}}

	// Серия прервалась и снова доросла до порогов
	for _, current := range []int{1, 3, 5, 7, 50} {
		got := CheckAndAwardRewards(Streak{CurrentStreak: current, LongestStreak: 50}, existing, milestones, testNow)
		if len(got) != 0 {
			t.Errorf("current=%d: got %+v, want none", current, got)
		}
	}
}

func TestCheckAndAwardRewardsBelowFirstMilestone(t *testing.T) {
	got := CheckAndAwardRewards(Streak{CurrentStreak: 2, LongestStreak: 2}, nil, DefaultMilestones, testNow)
	if len(got) != 0 {
		t.Errorf("got %+v, want none", got)
	}
}

func TestTierFor(t *testing.T) {
	if TierFor(0) != "bronze" || TierFor(4) != "diamond" || TierFor(5) != "legend" {
		t.Errorf("unexpected tiers: %s %s %s", TierFor(0), TierFor(4), TierFor(5))
	}
}
