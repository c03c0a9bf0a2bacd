package engine

import "fmt"

// ApplyMove validates and applies a move descriptor. Illegal moves return an
// error wrapping ErrInvalidMove and leave the game untouched; unrecognised
// tags return ErrUnknownMoveType.
func (g *Game) ApplyMove(m Move) error {
	var ok bool
	switch m.Type {
	case MoveDraw:
		ok = g.Draw()
	case MoveRecycle:
		ok = g.stock.IsEmpty() && g.Draw()
	case MoveTableauToTableau:
		ok = g.MoveTableauToTableau(m.FromCol, m.StartIndex, m.ToCol)
	case MoveTableauToFoundation:
		ok = g.MoveTableauToFoundation(m.FromCol)
	case MoveWasteToTableau:
		ok = g.MoveWasteToTableau(m.ToCol)
	case MoveWasteToFoundation:
		ok = g.MoveWasteToFoundation()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMoveType, string(m.Type))
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidMove, m)
	}
	return nil
}

// Draw turns up to DrawCount cards from stock onto the waste. With an empty
// stock it recycles the waste back into the stock face down instead.
func (g *Game) Draw() bool { return g.record(g.draw) }

// MoveTableauToTableau moves the run starting at start in column from onto column to.
func (g *Game) MoveTableauToTableau(from, start, to int) bool {
	return g.record(func() bool { return g.tableauToTableau(from, start, to) })
}

// MoveTableauToFoundation moves the top of column from to its foundation.
func (g *Game) MoveTableauToFoundation(from int) bool {
	return g.record(func() bool { return g.tableauToFoundation(from) })
}

// MoveWasteToTableau moves the waste top onto column to.
func (g *Game) MoveWasteToTableau(to int) bool {
	return g.record(func() bool { return g.wasteToTableau(to) })
}

// MoveWasteToFoundation moves the waste top to its foundation.
func (g *Game) MoveWasteToFoundation() bool { return g.record(g.wasteToFoundation) }

// ---------------------------------------------------------------------------
// Transitions. Each validates fully before its first mutation.
// ---------------------------------------------------------------------------

func (g *Game) draw() bool {
	if g.stock.IsEmpty() {
		return g.recycle()
	}
	for n := 0; n < g.drawCount && !g.stock.IsEmpty(); n++ {
		c, _ := g.stock.Pop()
		g.waste.place(c.Up())
	}
	g.scoring.addMove()
	return true
}

// recycle turns the waste over into the stock. The stock receives the waste
// in reverse order, face down.
func (g *Game) recycle() bool {
	if g.waste.IsEmpty() {
		return false
	}
	cards := g.waste.cards
	for i := len(cards) - 1; i >= 0; i-- {
		g.stock.place(cards[i].Down())
	}
	g.waste.clear()
	g.scoring.addPoints(g.policy.recyclePenalty(g.drawCount))
	g.scoring.addMove()
	return true
}

func validColumn(i int) bool { return i >= 0 && i < NumColumns }

func (g *Game) tableauToTableau(from, start, to int) bool {
	if !validColumn(from) || !validColumn(to) || from == to {
		return false
	}
	src, dst := &g.tableau[from], &g.tableau[to]
	if !src.runFrom(start) || !dst.CanAccept(src.cards[start]) {
		return false
	}
	dst.place(src.cards[start:]...)
	src.cards = src.cards[:start]
	src.flipTop()
	g.scoring.addPoints(g.policy.TableauToTableau)
	g.scoring.addMove()
	return true
}

func (g *Game) tableauToFoundation(from int) bool {
	if !validColumn(from) {
		return false
	}
	src := &g.tableau[from]
	top, ok := src.Peek()
	if !ok || !top.FaceUp() {
		return false
	}
	dst := &g.foundations[top.Suit()]
	if !dst.CanAccept(top) {
		return false
	}
	_, _ = src.Pop()
	dst.place(top)
	src.flipTop()
	g.scoring.addPoints(g.policy.TableauToFoundation)
	g.scoring.addMove()
	return true
}

func (g *Game) wasteToTableau(to int) bool {
	if !validColumn(to) {
		return false
	}
	top, ok := g.waste.Peek()
	if !ok {
		return false
	}
	dst := &g.tableau[to]
	if !dst.CanAccept(top) {
		return false
	}
	_, _ = g.waste.Pop()
	dst.place(top.Up())
	g.scoring.addPoints(g.policy.WasteToTableau)
	g.scoring.addMove()
	return true
}

func (g *Game) wasteToFoundation() bool {
	top, ok := g.waste.Peek()
	if !ok {
		return false
	}
	dst := &g.foundations[top.Suit()]
	if !dst.CanAccept(top) {
		return false
	}
	_, _ = g.waste.Pop()
	dst.place(top.Up())
	g.scoring.addPoints(g.policy.WasteToFoundation)
	g.scoring.addMove()
	return true
}
