package engine

import (
	"encoding/json"
	"fmt"
)

// CardRecord is the wire form of a card.
type CardRecord struct {
	Rank   int    `json:"rank"`
	Suit   string `json:"suit"`
	FaceUp bool   `json:"face_up"`
}

// Record converts c to its wire form.
func (c Card) Record() CardRecord {
	return CardRecord{Rank: int(c.Rank()), Suit: c.Suit().String(), FaceUp: c.FaceUp()}
}

// Card converts a wire record back to a Card.
func (r CardRecord) Card() (Card, error) {
	rank := Rank(r.Rank)
	if r.Rank < 1 || r.Rank > 13 {
		return NoCard, fmt.Errorf("%w: rank %d out of range", ErrMalformedSnapshot, r.Rank)
	}
	suit, ok := ParseSuit(r.Suit)
	if !ok {
		return NoCard, fmt.Errorf("%w: unknown suit %q", ErrMalformedSnapshot, r.Suit)
	}
	c := NewCard(suit, rank)
	if r.FaceUp {
		c = c.Up()
	}
	return c, nil
}

// Snapshot is a self-contained, cycle-free copy of a game's state. It is the
// unit of undo/redo and of persistence.
type Snapshot struct {
	Mode        Mode                    `json:"mode"`
	DrawCount   int                     `json:"draw_count"`
	Stock       []CardRecord            `json:"stock"`
	Waste       []CardRecord            `json:"waste"`
	Foundations map[string][]CardRecord `json:"foundations"`
	Tableau     [][]CardRecord          `json:"tableau"`
	Score       int                     `json:"score"`
	Moves       int                     `json:"moves"`
	Seconds     int                     `json:"seconds"`
	Won         bool                    `json:"won"`
}

func records(cards []Card) []CardRecord {
	out := make([]CardRecord, len(cards))
	for i, c := range cards {
		out[i] = c.Record()
	}
	return out
}

func cardsOf(recs []CardRecord) ([]Card, error) {
	out := make([]Card, len(recs))
	for i, r := range recs {
		c, err := r.Card()
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Mode:        g.mode,
		DrawCount:   g.drawCount,
		Stock:       records(g.stock.cards),
		Waste:       records(g.waste.cards),
		Foundations: make(map[string][]CardRecord, NumSuits),
		Tableau:     make([][]CardRecord, NumColumns),
		Score:       g.scoring.Score,
		Moves:       g.scoring.Moves,
		Seconds:     g.Seconds(),
		Won:         g.IsWon(),
	}
	for _, suit := range Suits {
		s.Foundations[suit.String()] = records(g.foundations[suit].cards)
	}
	for i := range g.tableau {
		s.Tableau[i] = records(g.tableau[i].cards)
	}
	return s
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Stock = append([]CardRecord(nil), s.Stock...)
	out.Waste = append([]CardRecord(nil), s.Waste...)
	if s.Foundations != nil {
		out.Foundations = make(map[string][]CardRecord, len(s.Foundations))
		for k, v := range s.Foundations {
			out.Foundations[k] = append([]CardRecord(nil), v...)
		}
	}
	if s.Tableau != nil {
		out.Tableau = make([][]CardRecord, len(s.Tableau))
		for i, col := range s.Tableau {
			out.Tableau[i] = append([]CardRecord(nil), col...)
		}
	}
	return out
}

// Validate checks the snapshot's shape and every card record. It does not
// require a full 52-card layout; use Game.Audit for the full invariants.
func (s Snapshot) Validate() error {
	if s.DrawCount != 1 && s.DrawCount != 3 {
		return fmt.Errorf("%w: draw_count %d", ErrMalformedSnapshot, s.DrawCount)
	}
	if s.Mode != "" && !s.Mode.Valid() {
		return fmt.Errorf("%w: mode %q", ErrMalformedSnapshot, s.Mode)
	}
	if len(s.Tableau) != NumColumns {
		return fmt.Errorf("%w: %d tableau columns, want %d", ErrMalformedSnapshot, len(s.Tableau), NumColumns)
	}
	for k := range s.Foundations {
		if _, ok := ParseSuit(k); !ok {
			return fmt.Errorf("%w: foundation key %q", ErrMalformedSnapshot, k)
		}
	}
	piles := [][]CardRecord{s.Stock, s.Waste}
	piles = append(piles, s.Tableau...)
	for _, f := range s.Foundations {
		piles = append(piles, f)
	}
	for _, p := range piles {
		if _, err := cardsOf(p); err != nil {
			return err
		}
	}
	return nil
}

// FromSnapshot builds a Game whose state is s. Mode and draw count come from
// the snapshot; scoring, clock and seed come from cfg.
func FromSnapshot(s Snapshot, cfg Config) (*Game, error) {
	cfg.Mode = s.Mode
	cfg.DrawCount = s.DrawCount
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	g := newEmpty(cfg)
	if err := g.Load(s); err != nil {
		return nil, err
	}
	return g, nil
}

// Load replaces the live state with s and clears the undo/redo history.
// Elapsed time continues from s.Seconds.
func (g *Game) Load(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	g.restore(s)
	g.mode = normalizeMode(s.Mode)
	g.drawCount = s.DrawCount
	g.scoring.resumeAt(g.now(), s.Seconds)
	g.history.Clear()
	return nil
}

// restore installs a snapshot that has already been validated. The timer
// basis is left alone so that undo never rewinds the clock.
func (g *Game) restore(s Snapshot) {
	g.resetPiles()
	stock, _ := cardsOf(s.Stock)
	waste, _ := cardsOf(s.Waste)
	g.stock.place(stock...)
	g.waste.place(waste...)
	for k, recs := range s.Foundations {
		suit, _ := ParseSuit(k)
		cards, _ := cardsOf(recs)
		g.foundations[suit].place(cards...)
	}
	for i, recs := range s.Tableau {
		cards, _ := cardsOf(recs)
		g.tableau[i].place(cards...)
	}
	g.scoring.Score = s.Score
	g.scoring.Moves = s.Moves
}

// MarshalSnapshot encodes s as JSON.
func MarshalSnapshot(s Snapshot) ([]byte, error) { return json.Marshal(s) }

// UnmarshalSnapshot decodes and validates a JSON snapshot.
func UnmarshalSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
