// Package engine implements the Klondike solitaire rules.
//
// A Game owns the authoritative state of one deal: seven tableau columns,
// four foundations, the waste and the stock. It validates and applies moves,
// keeps a whole-state undo/redo history and tracks score, moves and elapsed
// time. The package performs no I/O and is not safe for concurrent use; the
// caller serializes access to each Game.
package engine

import "time"

// NumColumns is the number of tableau columns.
const NumColumns = 7

// FoundationSize is the number of cards in a completed foundation.
const FoundationSize = 13

// Game holds the complete state of one Klondike game.
type Game struct {
	mode      Mode
	drawCount int
	seed      int64
	policy    ScoringPolicy
	clock     Clock

	tableau     [NumColumns]Pile
	foundations [NumSuits]Pile
	waste       Pile
	stock       Pile

	scoring Scoring
	history History[Snapshot]
}

// New shuffles a deck with cfg.Seed (generating one when zero) and deals it.
func New(cfg Config) (*Game, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = NewSeed()
	}
	g := newEmpty(cfg)
	g.deal()
	return g, nil
}

// newEmpty builds a game with empty piles from a normalized config.
func newEmpty(cfg Config) *Game {
	g := &Game{
		mode:      cfg.Mode,
		drawCount: cfg.DrawCount,
		seed:      cfg.Seed,
		policy:    *cfg.Scoring,
		clock:     cfg.Clock,
	}
	g.resetPiles()
	return g
}

func (g *Game) resetPiles() {
	for i := range g.tableau {
		g.tableau[i] = NewTableau()
	}
	for _, s := range Suits {
		g.foundations[s] = NewFoundation(s)
	}
	g.waste = NewWaste()
	g.stock = NewStock()
}

// deal lays out the classic Klondike opening: column c gets c+1 cards with
// only the last face up; the rest go to stock face down in deal order.
func (g *Game) deal() {
	deck := NewDeck()
	Shuffle(deck, g.seed)

	next := 0
	for col := 0; col < NumColumns; col++ {
		for n := 0; n <= col; n++ {
			g.tableau[col].place(deck[next])
			next++
		}
		g.tableau[col].flipTop()
	}
	g.stock.place(deck[next:]...)

	g.scoring = Scoring{}
	g.scoring.startAt(g.clock.Now())
	g.history.Clear()
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// Mode returns the scoring mode.
func (g *Game) Mode() Mode { return g.mode }

// DrawCount returns how many cards a draw turns over (1 or 3).
func (g *Game) DrawCount() int { return g.drawCount }

// Seed returns the shuffle seed the game was dealt from.
func (g *Game) Seed() int64 { return g.seed }

// Policy returns the scoring policy in force.
func (g *Game) Policy() ScoringPolicy { return g.policy }

// Score returns the accumulated points.
func (g *Game) Score() int { return g.scoring.Score }

// Moves returns the number of successful moves.
func (g *Game) Moves() int { return g.scoring.Moves }

// Seconds returns elapsed play time.
func (g *Game) Seconds() int { return g.scoring.Seconds(g.clock.Now()) }

// Tableau returns a copy of column col, bottom to top.
func (g *Game) Tableau(col int) []Card {
	if col < 0 || col >= NumColumns {
		return nil
	}
	return g.tableau[col].Cards()
}

// Foundation returns a copy of the foundation for suit, bottom to top.
func (g *Game) Foundation(s Suit) []Card {
	if !s.Valid() {
		return nil
	}
	return g.foundations[s].Cards()
}

// Waste returns a copy of the waste, bottom to top.
func (g *Game) Waste() []Card { return g.waste.Cards() }

// Stock returns a copy of the stock, front (next to draw) first.
func (g *Game) Stock() []Card { return g.stock.Cards() }

// CanUndo reports whether Undo would succeed.
func (g *Game) CanUndo() bool { return g.history.CanUndo() }

// CanRedo reports whether Redo would succeed.
func (g *Game) CanRedo() bool { return g.history.CanRedo() }

// HistoryDepth returns the undo and redo stack sizes.
func (g *Game) HistoryDepth() (undo, redo int) { return g.history.Depth() }

// IsWon is true when every foundation holds all thirteen cards.
func (g *Game) IsWon() bool {
	for i := range g.foundations {
		if g.foundations[i].Len() != FoundationSize {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Undo / Redo
// ---------------------------------------------------------------------------

// Undo restores the state before the most recent move.
func (g *Game) Undo() error {
	prev, ok := g.history.PopUndo()
	if !ok {
		return ErrNoHistory
	}
	g.history.PushRedo(g.Snapshot())
	g.restore(prev)
	g.scoring.addPoints(g.policy.UndoPenalty)
	return nil
}

// Redo re-applies the most recently undone move.
func (g *Game) Redo() error {
	next, ok := g.history.PopRedo()
	if !ok {
		return ErrNoHistory
	}
	g.history.pushUndoKeepRedo(g.Snapshot())
	g.restore(next)
	return nil
}

// record runs fn and, if it changed the game, keeps the pre-move snapshot as
// an undo entry. A rejected move leaves history untouched.
func (g *Game) record(fn func() bool) bool {
	before := g.Snapshot()
	if !fn() {
		return false
	}
	g.history.PushUndo(before)
	return true
}

// now is a small indirection so tests can reason about the clock.
func (g *Game) now() time.Time { return g.clock.Now() }
