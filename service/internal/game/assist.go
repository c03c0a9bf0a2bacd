// internal/game/assist.go
package game

import "github.com/jason-s-yu/klondike/engine"

// Hint returns the best suggestion for the current position.
func (g *SolitaireGame) Hint() (engine.Hint, bool) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Engine.Hint()
}

// Hints returns up to limit suggestions, best first.
func (g *SolitaireGame) Hints(limit int) []engine.Hint {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Engine.Hints(limit)
}

// Autoplay sends every safe card to the foundations, up to limit moves, and
// returns how many were moved. Nothing is broadcast when nothing moved.
func (g *SolitaireGame) Autoplay(limit int) (int, StateView) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	moved := g.Engine.Autoplay(limit)
	view := g.stateLocked()
	if moved == 0 {
		return 0, view
	}
	g.Log.WithField("moved", moved).Debug("autoplay")
	g.fireEvent(GameEvent{Type: EventAutoplay, Moved: moved, State: &view})
	g.checkWonLocked(view)
	return moved, view
}
