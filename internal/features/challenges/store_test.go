package challenges

import (
	"context"
	"slices"
	"sync"
	"time"

	"serotonyl.ru/wingman-challenges/internal/common"
)

// memStore — Store в памяти для тестов сервиса и обработчиков.
type memStore struct {
	mu     sync.Mutex
	states map[string]*UserState
	writes int
}

func newMemStore(userIDs ...string) *memStore {
	s := &memStore{states: make(map[string]*UserState)}
	for _, id := range userIDs {
		s.states[id] = &UserState{UserID: id}
	}
	return s
}

func (m *memStore) Create(_ context.Context, userID string) (*UserState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[userID]; ok {
		return nil, common.ErrUserExists
	}
	st := &UserState{UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.states[userID] = st
	return cloneState(st), nil
}

func (m *memStore) Get(_ context.Context, userID string) (*UserState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return cloneState(st), nil
}

func (m *memStore) UpdateState(_ context.Context, userID string, fn func(*UserState) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	work := cloneState(st)
	changed, err := fn(work)
	if err != nil || !changed {
		return err
	}
	m.states[userID] = work
	m.writes++
	return nil
}

func (m *memStore) ListAtRisk(_ context.Context, lastDay string, minStreak int) ([]AtRiskStreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AtRiskStreak
	for id, st := range m.states {
		if st.Streak != nil && st.Streak.LastCompletedDate == lastDay && st.Streak.CurrentStreak >= minStreak {
			out = append(out, AtRiskStreak{UserID: id, Streak: *st.Streak})
		}
	}
	slices.SortFunc(out, func(a, b AtRiskStreak) int {
		if a.UserID < b.UserID {
			return -1
		}
		if a.UserID > b.UserID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *memStore) CountActive(_ context.Context, today, yesterday string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, st := range m.states {
		if st.Streak != nil && st.Streak.CurrentStreak > 0 &&
			(st.Streak.LastCompletedDate == today || st.Streak.LastCompletedDate == yesterday) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) state(userID string) *UserState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.states[userID])
}

func cloneState(st *UserState) *UserState {
	if st == nil {
		return nil
	}
	c := *st
	c.Progresses = slices.Clone(st.Progresses)
	c.Rewards = slices.Clone(st.Rewards)
	c.History = slices.Clone(st.History)
	if st.Streak != nil {
		s := *st.Streak
		c.Streak = &s
	}
	if st.LegacyProgress != nil {
		p := *st.LegacyProgress
		c.LegacyProgress = &p
	}
	return &c
}
