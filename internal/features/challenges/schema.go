package challenges

import "serotonyl.ru/wingman-challenges/internal/db/postgres"

// Migrations — схема таблицы challenge_users. Применяется при старте приложения.
var Migrations = []postgres.Migration{
	{Version: 1, SQL: migration001ChallengeUsers},
	{Version: 2, SQL: migration002StreakIndex},
}

var migration001ChallengeUsers = `
CREATE TABLE IF NOT EXISTS challenge_users (
    user_id TEXT PRIMARY KEY,
    challenge_progress JSONB,
    challenge_progresses JSONB NOT NULL DEFAULT '[]',
    challenge_streak JSONB,
    challenge_rewards JSONB NOT NULL DEFAULT '[]',
    challenge_history JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);
`

var migration002StreakIndex = `
CREATE INDEX IF NOT EXISTS idx_challenge_users_last_completed
    ON challenge_users ((challenge_streak->>'lastCompletedDate'));
`
