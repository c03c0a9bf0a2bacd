package engine

import "fmt"

// PileKind is the closed set of pile variants.
type PileKind uint8

const (
	KindTableau PileKind = iota
	KindFoundation
	KindWaste
	KindStock
)

func (k PileKind) String() string {
	switch k {
	case KindTableau:
		return "tableau"
	case KindFoundation:
		return "foundation"
	case KindWaste:
		return "waste"
	case KindStock:
		return "stock"
	}
	return fmt.Sprintf("pile(%d)", uint8(k))
}

// Pile is an ordered card container. For every kind except stock the last
// element is the accessible top; stock is a FIFO whose front is drawn first.
type Pile struct {
	kind  PileKind
	suit  Suit // foundation only
	cards []Card
}

// NewTableau returns an empty tableau column.
func NewTableau() Pile { return Pile{kind: KindTableau} }

// NewFoundation returns an empty foundation for suit.
func NewFoundation(suit Suit) Pile { return Pile{kind: KindFoundation, suit: suit} }

// NewWaste returns an empty waste pile.
func NewWaste() Pile { return Pile{kind: KindWaste} }

// NewStock returns an empty stock.
func NewStock() Pile { return Pile{kind: KindStock} }

// Kind returns the pile variant.
func (p *Pile) Kind() PileKind { return p.kind }

// Suit returns the suit a foundation is bound to.
func (p *Pile) Suit() Suit { return p.suit }

// Len returns the number of cards.
func (p *Pile) Len() int { return len(p.cards) }

// IsEmpty reports whether the pile holds no cards.
func (p *Pile) IsEmpty() bool { return len(p.cards) == 0 }

// Cards returns a copy of the pile in stack order.
func (p *Pile) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}

// Peek returns the accessible card without removing it.
func (p *Pile) Peek() (Card, bool) {
	if len(p.cards) == 0 {
		return NoCard, false
	}
	if p.kind == KindStock {
		return p.cards[0], true
	}
	return p.cards[len(p.cards)-1], true
}

// CanAccept applies the acceptance rule of the pile's variant.
func (p *Pile) CanAccept(c Card) bool {
	switch p.kind {
	case KindTableau:
		top, ok := p.Peek()
		if !ok {
			return c.Rank() == RankKing
		}
		return top.FaceUp() && alternates(top, c)
	case KindFoundation:
		if c.Suit() != p.suit {
			return false
		}
		top, ok := p.Peek()
		if !ok {
			return c.Rank() == RankAce
		}
		return c.Rank() == top.Rank()+1
	case KindWaste:
		return true
	case KindStock:
		return !c.FaceUp()
	}
	return false
}

// Push appends c to the pile if the variant accepts it.
func (p *Pile) Push(c Card) error {
	if !p.CanAccept(c) {
		return fmt.Errorf("%w: %s does not accept %s", ErrInvalidMove, p.kind, c)
	}
	p.cards = append(p.cards, c)
	return nil
}

// Pop removes and returns the accessible card.
func (p *Pile) Pop() (Card, error) {
	n := len(p.cards)
	if n == 0 {
		return NoCard, fmt.Errorf("%w: %s", ErrEmptyPile, p.kind)
	}
	if p.kind == KindStock {
		c := p.cards[0]
		p.cards = p.cards[1:]
		return c, nil
	}
	c := p.cards[n-1]
	p.cards = p.cards[:n-1]
	return c, nil
}

// place appends without checking acceptance. Setup and restore only.
func (p *Pile) place(c ...Card) { p.cards = append(p.cards, c...) }

// clear drops every card, keeping capacity.
func (p *Pile) clear() { p.cards = p.cards[:0] }

// flipTop turns a face-down tableau top face up.
func (p *Pile) flipTop() bool {
	n := len(p.cards)
	if n == 0 || p.cards[n-1].FaceUp() {
		return false
	}
	p.cards[n-1] = p.cards[n-1].Flip()
	return true
}

// runFrom reports whether cards[start:] is a face-up, descending,
// alternating-color run.
func (p *Pile) runFrom(start int) bool {
	if start < 0 || start >= len(p.cards) {
		return false
	}
	for i := start; i < len(p.cards); i++ {
		if !p.cards[i].FaceUp() {
			return false
		}
		if i > start && !alternates(p.cards[i-1], p.cards[i]) {
			return false
		}
	}
	return true
}

// firstFaceUp returns the index of the first face-up card, or -1.
func (p *Pile) firstFaceUp() int {
	for i, c := range p.cards {
		if c.FaceUp() {
			return i
		}
	}
	return -1
}
