package models

import (
	"sort"
	"strings"
	"time"
)

// AnonymousPlayer is recorded when a finished game has no player name.
const AnonymousPlayer = "Anónimo"

// ScoreEntry is one finished game on the scoreboard.
type ScoreEntry struct {
	Name    string    `json:"name"`
	Score   int       `json:"score"`
	Moves   int       `json:"moves"`
	Seconds int       `json:"seconds"`
	Draw    int       `json:"draw"`
	TS      time.Time `json:"ts"`
}

// NewScoreEntry builds an entry for a won save.
func NewScoreEntry(s Save) ScoreEntry {
	name := strings.TrimSpace(s.Player)
	if name == "" {
		name = AnonymousPlayer
	}
	return ScoreEntry{
		Name:    name,
		Score:   s.Score,
		Moves:   s.Moves,
		Seconds: s.Seconds,
		Draw:    s.DrawCount,
		TS:      time.Now().UTC(),
	}
}

// SortScoreEntries orders best first: higher score, then less time, then
// fewer moves, then earlier finish.
func SortScoreEntries(entries []ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Seconds != b.Seconds {
			return a.Seconds < b.Seconds
		}
		if a.Moves != b.Moves {
			return a.Moves < b.Moves
		}
		return a.TS.Before(b.TS)
	})
}

// LeaderRow is a player's best result across their saves.
type LeaderRow struct {
	Player   string `json:"player"`
	MaxScore int    `json:"max_score"`
	Games    int    `json:"games"`
}

// Leaderboard groups named saves by player and ranks players by their best
// score, then by name. A limit of zero or less returns every row.
func Leaderboard(saves []Save, limit int) []LeaderRow {
	best := map[string]*LeaderRow{}
	for _, s := range saves {
		if s.Player == "" {
			continue
		}
		row, ok := best[s.Player]
		if !ok {
			best[s.Player] = &LeaderRow{Player: s.Player, MaxScore: s.Score, Games: 1}
			continue
		}
		row.Games++
		row.MaxScore = max(row.MaxScore, s.Score)
	}

	out := make([]LeaderRow, 0, len(best))
	for _, r := range best {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MaxScore != out[j].MaxScore {
			return out[i].MaxScore > out[j].MaxScore
		}
		return out[i].Player < out[j].Player
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
