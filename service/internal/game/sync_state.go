// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
)

// StateView is the state sent to clients: the engine snapshot plus the
// session identity of the game. Snapshot fields are inlined in JSON.
type StateView struct {
	engine.Snapshot

	GameID  uuid.UUID `json:"game_id"`
	SaveID  uuid.UUID `json:"save_id"`
	Player  string    `json:"player,omitempty"`
	Seed    int64     `json:"seed"`
	CanUndo bool      `json:"can_undo"`
	CanRedo bool      `json:"can_redo"`
}

// stateLocked builds the current view.
// Assumes lock is held by caller.
func (g *SolitaireGame) stateLocked() StateView {
	return StateView{
		Snapshot: g.Engine.Snapshot(),
		GameID:   g.ID,
		SaveID:   g.SaveID,
		Player:   g.Player,
		Seed:     g.Seed,
		CanUndo:  g.Engine.CanUndo(),
		CanRedo:  g.Engine.CanRedo(),
	}
}
