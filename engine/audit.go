package engine

import "fmt"

// Audit verifies the structural invariants of a dealt game: exactly 52
// distinct cards, ordered single-suit foundations, face-down stock, face-up
// waste, and tableau columns whose face-up part is a valid run with a face-up
// top. It returns the first violation found.
func (g *Game) Audit() error {
	seen := make(map[Card]bool, DeckSize)
	count := func(where string, cards []Card) error {
		for _, c := range cards {
			id := c.Identity()
			if !c.Suit().Valid() || !c.Rank().Valid() {
				return fmt.Errorf("%s holds invalid card %#x", where, uint8(c))
			}
			if seen[id] {
				return fmt.Errorf("%s holds duplicate %s", where, id.Up())
			}
			seen[id] = true
		}
		return nil
	}

	if err := count("stock", g.stock.cards); err != nil {
		return err
	}
	for _, c := range g.stock.cards {
		if c.FaceUp() {
			return fmt.Errorf("stock holds face-up %s", c)
		}
	}
	if err := count("waste", g.waste.cards); err != nil {
		return err
	}
	for _, c := range g.waste.cards {
		if !c.FaceUp() {
			return fmt.Errorf("waste holds face-down %s", c)
		}
	}

	for _, suit := range Suits {
		f := g.foundations[suit].cards
		where := fmt.Sprintf("foundation %s", suit)
		if err := count(where, f); err != nil {
			return err
		}
		for i, c := range f {
			if c.Suit() != suit || c.Rank() != Rank(i+1) {
				return fmt.Errorf("%s out of order at %d: %s", where, i, c)
			}
		}
	}

	for i := range g.tableau {
		col := &g.tableau[i]
		where := fmt.Sprintf("tableau %d", i)
		if err := count(where, col.cards); err != nil {
			return err
		}
		if col.IsEmpty() {
			continue
		}
		first := col.firstFaceUp()
		if first < 0 {
			return fmt.Errorf("%s has a face-down top", where)
		}
		if !col.runFrom(first) {
			return fmt.Errorf("%s face-up cards from %d are not a run", where, first)
		}
	}

	if len(seen) != DeckSize {
		return fmt.Errorf("game holds %d cards, want %d", len(seen), DeckSize)
	}
	return nil
}
