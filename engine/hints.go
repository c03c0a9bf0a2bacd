package engine

import "sort"

// Hint priorities.
const (
	hintWasteToFoundation   = 100
	hintTableauToFoundation = 90
	hintTableauReveal       = 80
	hintWasteToTableau      = 70
	hintTableauToTableau    = 40
	hintDraw                = 10
	hintRecycle             = 5

	maxRunBonus = 5
)

// Hint is a suggested move with a priority and UI metadata.
type Hint struct {
	Move         Move   `json:"move"`
	Score        int    `json:"score"`
	Explain      string `json:"explain"`
	FromZone     string `json:"from_zone,omitempty"`
	ToZone       string `json:"to_zone,omitempty"`
	ToFoundation string `json:"to_foundation,omitempty"`
}

// board is a read-only view of a snapshot's piles used for hint search.
type board struct {
	stock       Pile
	waste       Pile
	foundations [NumSuits]Pile
	tableau     [NumColumns]Pile
}

func boardOf(s Snapshot) (*board, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	b := &board{stock: NewStock(), waste: NewWaste()}
	stock, _ := cardsOf(s.Stock)
	waste, _ := cardsOf(s.Waste)
	b.stock.place(stock...)
	b.waste.place(waste...)
	for _, suit := range Suits {
		b.foundations[suit] = NewFoundation(suit)
	}
	for k, recs := range s.Foundations {
		suit, _ := ParseSuit(k)
		cards, _ := cardsOf(recs)
		b.foundations[suit].place(cards...)
	}
	for i, recs := range s.Tableau {
		b.tableau[i] = NewTableau()
		cards, _ := cardsOf(recs)
		b.tableau[i].place(cards...)
	}
	return b, nil
}

// Hints lists legal moves for s ordered by descending priority. It never
// mutates s. A limit of zero or less returns every hint; an invalid snapshot
// yields none.
func Hints(s Snapshot, limit int) []Hint {
	b, err := boardOf(s)
	if err != nil {
		return nil
	}
	var out []Hint

	wtop, hasWaste := b.waste.Peek()
	if hasWaste && b.foundations[wtop.Suit()].CanAccept(wtop) {
		out = append(out, Hint{
			Move:         W2F(),
			Score:        hintWasteToFoundation,
			Explain:      "Waste to foundation",
			FromZone:     KindWaste.String(),
			ToFoundation: wtop.Suit().String(),
		})
	}

	for i := range b.tableau {
		top, ok := b.tableau[i].Peek()
		if !ok || !top.FaceUp() || !b.foundations[top.Suit()].CanAccept(top) {
			continue
		}
		out = append(out, Hint{
			Move:         T2F(i),
			Score:        hintTableauToFoundation,
			Explain:      "Top card to foundation",
			ToFoundation: top.Suit().String(),
		})
	}

	if hasWaste {
		for j := range b.tableau {
			if b.tableau[j].CanAccept(wtop) {
				out = append(out, Hint{
					Move:     W2T(j),
					Score:    hintWasteToTableau,
					Explain:  "Waste to column",
					FromZone: KindWaste.String(),
				})
			}
		}
	}

	out = append(out, b.runHints()...)

	if len(out) == 0 {
		switch {
		case !b.stock.IsEmpty():
			out = append(out, Hint{
				Move:     DrawMove(),
				Score:    hintDraw,
				Explain:  "Draw from stock",
				FromZone: KindStock.String(),
			})
		case !b.waste.IsEmpty():
			out = append(out, Hint{
				Move:     RecycleMove(),
				Score:    hintRecycle,
				Explain:  "Recycle waste into stock",
				FromZone: KindWaste.String(),
				ToZone:   KindStock.String(),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Move.Type > out[j].Move.Type
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// runHints finds every face-up run that can move onto another column.
func (b *board) runHints() []Hint {
	var out []Hint
	for i := range b.tableau {
		col := &b.tableau[i]
		first := col.firstFaceUp()
		if first < 0 {
			continue
		}
		for start := first; start < col.Len(); start++ {
			if !col.runFrom(start) {
				continue
			}
			head := col.cards[start]
			reveals := start == first && first > 0
			for j := range b.tableau {
				if j == i || !b.tableau[j].CanAccept(head) {
					continue
				}
				h := Hint{
					Move:    T2T(i, start, j),
					Score:   hintTableauToTableau + min(maxRunBonus, col.Len()-start),
					Explain: "Move run",
				}
				if reveals {
					h.Score = hintTableauReveal + min(maxRunBonus, col.Len()-start)
					h.Explain = "Move run and reveal a card"
				}
				out = append(out, h)
			}
		}
	}
	return out
}

// Hint returns the single best suggestion for the current position.
func (g *Game) Hint() (Hint, bool) {
	hs := Hints(g.Snapshot(), 1)
	if len(hs) == 0 {
		return Hint{}, false
	}
	return hs[0], true
}

// Hints returns up to limit suggestions for the current position.
func (g *Game) Hints(limit int) []Hint { return Hints(g.Snapshot(), limit) }
