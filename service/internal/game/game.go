// internal/game/game.go
package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/sirupsen/logrus"
)

// OnGameWonFunc is called once when a game reaches the won state. It runs
// with the game lock held and must not call back into the game.
type OnGameWonFunc func(g *SolitaireGame, final StateView)

// GameEventType names an event pushed to websocket subscribers.
type GameEventType string

const (
	EventMoveApplied  GameEventType = "move_applied"
	EventMoveRejected GameEventType = "move_rejected"
	EventUndo         GameEventType = "undo"
	EventRedo         GameEventType = "redo"
	EventAutoplay     GameEventType = "autoplay"
	EventGameWon      GameEventType = "game_won"
	EventSyncState    GameEventType = "sync_state" // sent to a subscriber when it attaches
)

// GameEvent is the structure broadcast for every state change.
type GameEvent struct {
	Type   GameEventType `json:"type"`
	GameID uuid.UUID     `json:"game_id"`
	Move   *engine.Move  `json:"move,omitempty"`
	Moved  int           `json:"moved,omitempty"` // cards sent up by autoplay
	Reason string        `json:"reason,omitempty"`

	State *StateView `json:"state,omitempty"`
}

// subscriberBuffer is the per-subscriber queue depth. Events for a subscriber
// whose queue is full are dropped; the next state-bearing event resyncs it.
const subscriberBuffer = 16

// SolitaireGame is one player's live game inside the service. All access to
// Engine goes through Mu.
type SolitaireGame struct {
	ID     uuid.UUID // session game identifier, stable across loads
	SaveID uuid.UUID // save the game writes through to
	Player string
	Seed   int64

	// Persisted reports whether a save row exists for SaveID. Default games
	// dealt for a new session stay in memory until their first move.
	Persisted bool

	Engine *engine.Game
	Mu     sync.Mutex

	// Communication callbacks.
	BroadcastFn func(ev GameEvent)
	OnGameWon   OnGameWonFunc

	Log *logrus.Entry

	subs     map[int]chan GameEvent
	nextSub  int
	wonFired bool
}

// NewSolitaireGame wraps an engine game. A game that is already won when
// wrapped never fires OnGameWon.
func NewSolitaireGame(saveID uuid.UUID, eng *engine.Game, player string) *SolitaireGame {
	id, _ := uuid.NewRandom()
	g := &SolitaireGame{
		ID:     id,
		SaveID: saveID,
		Player: player,
		Seed:   eng.Seed(),
		Engine: eng,
		subs:   make(map[int]chan GameEvent),
	}
	g.wonFired = eng.IsWon()
	g.Log = logrus.WithFields(logrus.Fields{"game_id": g.ID, "save_id": saveID})
	return g
}

// ApplyMove applies m and broadcasts the outcome. A rejected move leaves the
// game unchanged and returns the engine error.
func (g *SolitaireGame) ApplyMove(m engine.Move) (StateView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if err := g.Engine.ApplyMove(m); err != nil {
		g.Log.WithFields(moveFields(m)).WithError(err).Debug("move rejected")
		g.fireEvent(GameEvent{Type: EventMoveRejected, Move: &m, Reason: rejectReason(err)})
		return g.stateLocked(), err
	}
	view := g.stateLocked()
	g.Log.WithFields(moveFields(m)).WithField("score", view.Score).Debug("move applied")
	g.fireEvent(GameEvent{Type: EventMoveApplied, Move: &m, State: &view})
	g.checkWonLocked(view)
	return view, nil
}

// Undo steps back one history entry.
func (g *SolitaireGame) Undo() (StateView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if err := g.Engine.Undo(); err != nil {
		return g.stateLocked(), err
	}
	view := g.stateLocked()
	g.fireEvent(GameEvent{Type: EventUndo, State: &view})
	return view, nil
}

// Redo re-applies the most recently undone step.
func (g *SolitaireGame) Redo() (StateView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if err := g.Engine.Redo(); err != nil {
		return g.stateLocked(), err
	}
	view := g.stateLocked()
	g.fireEvent(GameEvent{Type: EventRedo, State: &view})
	g.checkWonLocked(view)
	return view, nil
}

// State returns the current view.
func (g *SolitaireGame) State() StateView {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.stateLocked()
}

// Snapshot returns a deep copy of the engine state.
func (g *SolitaireGame) Snapshot() engine.Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Engine.Snapshot()
}

// SetPlayer changes the name recorded for this game.
func (g *SolitaireGame) SetPlayer(name string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.Player = name
}

// PlayerName returns the name recorded for this game.
func (g *SolitaireGame) PlayerName() string {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Player
}

// Subscribe registers a websocket listener. The returned channel first
// receives a sync_state event; cancel unregisters and closes it.
func (g *SolitaireGame) Subscribe() (<-chan GameEvent, func()) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	id := g.nextSub
	g.nextSub++
	ch := make(chan GameEvent, subscriberBuffer)
	g.subs[id] = ch

	view := g.stateLocked()
	ch <- GameEvent{Type: EventSyncState, GameID: g.ID, State: &view}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			g.Mu.Lock()
			defer g.Mu.Unlock()
			if c, ok := g.subs[id]; ok {
				delete(g.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// CloseSubscribers detaches every listener and closes its channel. Used when
// the session moves on to another game.
func (g *SolitaireGame) CloseSubscribers() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	for id, ch := range g.subs {
		delete(g.subs, id)
		close(ch)
	}
}

// Subscribers reports how many listeners are attached.
func (g *SolitaireGame) Subscribers() int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return len(g.subs)
}

// fireEvent hands ev to BroadcastFn and every subscriber.
// Assumes lock is held by caller.
func (g *SolitaireGame) fireEvent(ev GameEvent) {
	ev.GameID = g.ID
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
	for id, ch := range g.subs {
		select {
		case ch <- ev:
		default:
			g.Log.WithField("subscriber", id).Warn("subscriber queue full, dropping event")
		}
	}
}

// checkWonLocked fires game_won and OnGameWon the first time view is won.
// Assumes lock is held by caller.
func (g *SolitaireGame) checkWonLocked(view StateView) {
	if !view.Won || g.wonFired {
		return
	}
	g.wonFired = true
	g.Log.WithFields(logrus.Fields{"score": view.Score, "moves": view.Moves, "seconds": view.Seconds}).Info("game won")
	g.fireEvent(GameEvent{Type: EventGameWon, State: &view})
	if g.OnGameWon != nil {
		g.OnGameWon(g, view)
	}
}
