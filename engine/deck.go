package engine

import "math/rand/v2"

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// NewDeck returns all 52 cards face down, suit-major then rank order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := RankAce; r <= RankKing; r++ {
			deck = append(deck, NewCard(s, r))
		}
	}
	return deck
}

// rng is an xorshift64 generator; identical seeds replay identical streams.
type rng uint64

func newRNG(seed int64) rng {
	r := rng(uint64(seed))
	if r == 0 {
		r = 1 // xorshift can't start at 0
	}
	return r
}

func (r *rng) next() uint64 {
	x := uint64(*r)
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*r = rng(x)
	return x
}

// intn returns a number in [0, n).
func (r *rng) intn(n int) int { return int(r.next() % uint64(n)) }

// Shuffle permutes deck in place with a Fisher-Yates pass driven by seed.
func Shuffle(deck []Card, seed int64) {
	r := newRNG(seed)
	for i := len(deck) - 1; i > 0; i-- {
		j := r.intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// NewSeed returns a random positive seed for games started without one.
func NewSeed() int64 {
	return rand.Int64N(1<<30) + 1
}
