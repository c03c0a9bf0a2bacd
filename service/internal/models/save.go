// Package models defines the persisted records of the service.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
)

// Save is a persisted game: its settings, progress counters and full board.
type Save struct {
	ID        uuid.UUID       `json:"id"`
	Mode      engine.Mode     `json:"mode"`
	DrawCount int             `json:"draw_count"`
	Seed      int64           `json:"seed"`
	Player    string          `json:"player,omitempty"`
	Score     int             `json:"score"`
	Moves     int             `json:"moves"`
	Seconds   int             `json:"seconds"`
	Won       bool            `json:"won"`
	State     engine.Snapshot `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewSave deals a fresh game from cfg and captures it as a save. A zero seed
// picks a random one, which the save then records.
func NewSave(id uuid.UUID, cfg engine.Config, player string) (Save, *engine.Game, error) {
	g, err := engine.New(cfg)
	if err != nil {
		return Save{}, nil, err
	}
	now := time.Now().UTC()
	s := Save{
		ID:        id,
		Mode:      g.Mode(),
		DrawCount: g.DrawCount(),
		Seed:      g.Seed(),
		Player:    player,
		CreatedAt: now,
	}
	s.SyncFrom(g)
	return s, g, nil
}

// SyncFrom copies the game's current board and counters into the save.
func (s *Save) SyncFrom(g *engine.Game) {
	st := g.Snapshot()
	s.State = st
	s.Score = st.Score
	s.Moves = st.Moves
	s.Seconds = st.Seconds
	s.Won = st.Won
	s.UpdatedAt = time.Now().UTC()
}

// SetState replaces the stored board with st and refreshes the counters.
func (s *Save) SetState(st engine.Snapshot) {
	s.State = st
	s.Mode = st.Mode
	s.DrawCount = st.DrawCount
	s.Score = st.Score
	s.Moves = st.Moves
	s.Seconds = st.Seconds
	s.Won = st.Won
	s.UpdatedAt = time.Now().UTC()
}
