package engine

import "fmt"

// Suit identifies one of the four French suits.
type Suit uint8

// Suit constants, in foundation order.
const (
	SuitHearts   Suit = 0
	SuitDiamonds Suit = 1
	SuitClubs    Suit = 2
	SuitSpades   Suit = 3
)

// NumSuits is the number of suits (and foundations).
const NumSuits = 4

// Suits lists every suit in foundation order.
var Suits = [NumSuits]Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

var suitNames = [NumSuits]string{"hearts", "diamonds", "clubs", "spades"}

// String returns the wire name of the suit ("hearts", "diamonds", ...).
func (s Suit) String() string {
	if s < NumSuits {
		return suitNames[s]
	}
	return fmt.Sprintf("suit(%d)", uint8(s))
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool { return s < NumSuits }

// IsRed is true for hearts and diamonds.
func (s Suit) IsRed() bool { return s == SuitHearts || s == SuitDiamonds }

// ParseSuit maps a wire name back to a Suit.
func ParseSuit(name string) (Suit, bool) {
	for i, n := range suitNames {
		if n == name {
			return Suit(i), true
		}
	}
	return 0, false
}

// Rank is a card rank, Ace=1 through King=13.
type Rank uint8

// Rank constants.
const (
	RankAce   Rank = 1
	RankTwo   Rank = 2
	RankThree Rank = 3
	RankFour  Rank = 4
	RankFive  Rank = 5
	RankSix   Rank = 6
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
)

// Valid reports whether r is within Ace..King.
func (r Rank) Valid() bool { return r >= RankAce && r <= RankKing }

// Card is a packed uint8: bit 7 = face up, bits 4-5 = suit, lower 4 bits = rank.
// The zero value is NoCard.
type Card uint8

// NoCard represents the absence of a card.
const NoCard Card = 0

const faceUpBit Card = 0x80

// NewCard constructs a face-down Card from suit and rank.
func NewCard(suit Suit, rank Rank) Card {
	return Card((uint8(suit)&0x03)<<4 | uint8(rank)&0x0F)
}

// Suit returns the suit bits.
func (c Card) Suit() Suit { return Suit((uint8(c) >> 4) & 0x03) }

// Rank returns the rank bits.
func (c Card) Rank() Rank { return Rank(uint8(c) & 0x0F) }

// FaceUp reports whether the card is showing.
func (c Card) FaceUp() bool { return c&faceUpBit != 0 }

// IsRed is true when the card's suit is red.
func (c Card) IsRed() bool { return c.Suit().IsRed() }

// Flip returns a copy of c with the face-up bit inverted.
func (c Card) Flip() Card { return c ^ faceUpBit }

// Up returns c face up.
func (c Card) Up() Card { return c | faceUpBit }

// Down returns c face down.
func (c Card) Down() Card { return c &^ faceUpBit }

// Identity strips orientation so two values of the same physical card compare equal.
func (c Card) Identity() Card { return c.Down() }

var rankLabels = [...]string{"?", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
var suitSymbols = [NumSuits]string{"♥", "♦", "♣", "♠"}

// String renders the card as rank plus suit symbol, bracketed when face down.
func (c Card) String() string {
	if c == NoCard {
		return "--"
	}
	r := c.Rank()
	label := "?"
	if r.Valid() {
		label = rankLabels[r]
	}
	s := label + suitSymbols[c.Suit()]
	if !c.FaceUp() {
		return "[" + s + "]"
	}
	return s
}

// alternates reports whether lower may sit directly on upper in a tableau run.
func alternates(upper, lower Card) bool {
	return upper.Rank() == lower.Rank()+1 && upper.IsRed() != lower.IsRed()
}
