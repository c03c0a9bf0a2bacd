package engine

import "testing"

// TestCardSuitRank verifies Suit/Rank roundtrip for every suit×rank combo.
func TestCardSuitRank(t *testing.T) {
	for _, s := range Suits {
		for r := RankAce; r <= RankKing; r++ {
			c := NewCard(s, r)
			if c.Suit() != s {
				t.Errorf("NewCard(%s,%d).Suit() = %s", s, r, c.Suit())
			}
			if c.Rank() != r {
				t.Errorf("NewCard(%s,%d).Rank() = %d", s, r, c.Rank())
			}
			if c.FaceUp() {
				t.Errorf("NewCard(%s,%d) is face up", s, r)
			}
		}
	}
}

// TestCardFlip verifies orientation changes never touch identity.
func TestCardFlip(t *testing.T) {
	c := NewCard(SuitSpades, RankQueen)
	f := c.Flip()
	if !f.FaceUp() {
		t.Fatal("Flip of face-down card is not face up")
	}
	if f.Identity() != c.Identity() {
		t.Errorf("Flip changed identity: %v vs %v", f, c)
	}
	if f.Flip() != c {
		t.Errorf("double Flip = %v, want %v", f.Flip(), c)
	}
	if c.Up().Down() != c {
		t.Errorf("Up().Down() = %v, want %v", c.Up().Down(), c)
	}
}

func TestCardString(t *testing.T) {
	tests := []struct {
		c    Card
		want string
	}{
		{up(SuitHearts, RankAce), "A♥"},
		{down(SuitHearts, RankAce), "[A♥]"},
		{up(SuitSpades, RankTen), "10♠"},
		{up(SuitClubs, RankKing), "K♣"},
		{NoCard, "--"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSuitColorsAndNames(t *testing.T) {
	red := map[Suit]bool{SuitHearts: true, SuitDiamonds: true, SuitClubs: false, SuitSpades: false}
	for s, want := range red {
		if s.IsRed() != want {
			t.Errorf("%s.IsRed() = %v, want %v", s, s.IsRed(), want)
		}
		got, ok := ParseSuit(s.String())
		if !ok || got != s {
			t.Errorf("ParseSuit(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseSuit("stars"); ok {
		t.Error("ParseSuit accepted an unknown suit")
	}
}

// TestAlternates verifies the run rule: one rank lower, opposite color.
func TestAlternates(t *testing.T) {
	tests := []struct {
		upper, lower Card
		want         bool
	}{
		{up(SuitHearts, RankEight), up(SuitClubs, RankSeven), true},
		{up(SuitSpades, RankEight), up(SuitDiamonds, RankSeven), true},
		{up(SuitHearts, RankEight), up(SuitDiamonds, RankSeven), false},
		{up(SuitHearts, RankEight), up(SuitClubs, RankSix), false},
		{up(SuitHearts, RankSeven), up(SuitClubs, RankEight), false},
	}
	for _, tt := range tests {
		if got := alternates(tt.upper, tt.lower); got != tt.want {
			t.Errorf("alternates(%v, %v) = %v, want %v", tt.upper, tt.lower, got, tt.want)
		}
	}
}
