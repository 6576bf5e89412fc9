// Package challenges — catalog.go содержит встроенный список ежедневных челленджей.
// ID менять нельзя: клиенты и журнал ссылаются на них.
package challenges

import "serotonyl.ru/wingman-challenges/internal/common"

var builtinDefinitions = []ChallengeDefinition{
	{ID: "ask-wingman-strategy", Title: "Strategist", Description: "Ask Wingman for a strategy tip for the game you are playing", Difficulty: DifficultyEasy},
	{ID: "post-forum-question", Title: "Curious Gamer", Description: "Post a question in the community forum", Difficulty: DifficultyEasy},
	{ID: "reply-forum-thread", Title: "Helping Hand", Description: "Reply to another player's forum thread", Difficulty: DifficultyEasy},
	{ID: "like-three-posts", Title: "Supporter", Description: "Like three posts from other players", Difficulty: DifficultyEasy},
	{ID: "explore-new-genre", Title: "Genre Explorer", Description: "Ask about a game from a genre you have never asked about", Difficulty: DifficultyMedium},
	{ID: "share-game-tip", Title: "Tip Master", Description: "Share a tip for your favorite game in the forum", Difficulty: DifficultyMedium},
	{ID: "boss-guide", Title: "Boss Hunter", Description: "Ask Wingman how to beat a specific boss", Difficulty: DifficultyMedium},
	{ID: "speedrun-route", Title: "Speedrunner", Description: "Ask Wingman for a speedrun route or skip", Difficulty: DifficultyHard},
	{ID: "hidden-secrets", Title: "Secret Seeker", Description: "Ask about three hidden secrets or easter eggs", Difficulty: DifficultyHard},
	{ID: "retro-classic", Title: "Retro Fan", Description: "Ask about a game released before 2000", Difficulty: DifficultyMedium},
	{ID: "build-optimizer", Title: "Theorycrafter", Description: "Ask Wingman to review or optimize a character build", Difficulty: DifficultyHard},
	{ID: "daily-login", Title: "Regular", Description: "Open Wingman and check today's challenges", Difficulty: DifficultyEasy},
}

// Catalog — справочник челленджей.
type Catalog struct {
	defs []ChallengeDefinition
	byID map[string]ChallengeDefinition
}

// NewCatalog создаёт справочник. Без аргументов используется встроенный список.
func NewCatalog(defs ...ChallengeDefinition) *Catalog {
	if len(defs) == 0 {
		defs = builtinDefinitions
	}
	c := &Catalog{byID: make(map[string]ChallengeDefinition, len(defs))}
	for _, d := range defs {
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.byID[d.ID] = d
		c.defs = append(c.defs, d)
	}
	return c
}

// Lookup ищет челлендж по ID.
func (c *Catalog) Lookup(id string) (ChallengeDefinition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// All возвращает копию всех определений.
func (c *Catalog) All() []ChallengeDefinition {
	out := make([]ChallengeDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// ForDay возвращает n челленджей дня day. Выбор детерминирован:
// все серверы показывают один и тот же набор, на следующий день набор сдвигается на n.
func (c *Catalog) ForDay(day string, n int) ([]ChallengeDefinition, error) {
	if n <= 0 || len(c.defs) == 0 {
		return nil, nil
	}
	if n > len(c.defs) {
		n = len(c.defs)
	}
	idx, err := common.DayIndex(day)
	if err != nil {
		return nil, err
	}
	start := (idx * n) % len(c.defs)
	if start < 0 {
		start += len(c.defs)
	}
	out := make([]ChallengeDefinition, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, c.defs[(start+i)%len(c.defs)])
	}
	return out, nil
}
