// internal/game/engine_adapter.go
package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/models"
	"github.com/sirupsen/logrus"
)

// Restore rebuilds a game from a stored board. The deal seed is carried for
// display; the board itself comes from snap.
func Restore(saveID uuid.UUID, seed int64, player string, snap engine.Snapshot, policy engine.ScoringPolicy) (*SolitaireGame, error) {
	eng, err := engine.FromSnapshot(snap, engine.Config{Seed: seed, Scoring: &policy})
	if err != nil {
		return nil, fmt.Errorf("restore save %s: %w", saveID, err)
	}
	return NewSolitaireGame(saveID, eng, player), nil
}

// LoadSave replaces the board with a stored save and points the game at it.
// History is cleared and the timer resumes from the save's seconds.
func (g *SolitaireGame) LoadSave(s models.Save) (StateView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	policy := g.Engine.Policy()
	eng, err := engine.FromSnapshot(s.State, engine.Config{Seed: s.Seed, Scoring: &policy})
	if err != nil {
		return g.stateLocked(), err
	}
	g.Engine = eng
	g.SaveID = s.ID
	g.Seed = s.Seed
	g.Persisted = true
	if s.Player != "" {
		g.Player = s.Player
	}
	g.wonFired = eng.IsWon()
	g.Log = g.Log.WithField("save_id", s.ID)

	view := g.stateLocked()
	g.Log.Info("save loaded")
	g.fireEvent(GameEvent{Type: EventSyncState, State: &view})
	return view, nil
}

// rejectReason maps an engine error to the short code sent to clients.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, engine.ErrUnknownMoveType):
		return "unknown_move"
	case errors.Is(err, engine.ErrInvalidMove):
		return "invalid_move"
	case errors.Is(err, engine.ErrNoHistory):
		return "no_history"
	default:
		return "error"
	}
}

// moveFields describes m for structured logs.
func moveFields(m engine.Move) logrus.Fields {
	f := logrus.Fields{"move": string(m.Type)}
	switch m.Type {
	case engine.MoveTableauToTableau:
		f["from"], f["start"], f["to"] = m.FromCol, m.StartIndex, m.ToCol
	case engine.MoveTableauToFoundation:
		f["from"] = m.FromCol
	case engine.MoveWasteToTableau:
		f["to"] = m.ToCol
	}
	return f
}
