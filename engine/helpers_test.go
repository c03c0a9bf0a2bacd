package engine

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// emptyGame returns a game with no cards anywhere and a running timer.
func emptyGame(t *testing.T, drawCount int) (*Game, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	cfg, err := Config{DrawCount: drawCount, Seed: 1, Clock: clk}.normalized()
	if err != nil {
		t.Fatalf("normalized: %v", err)
	}
	g := newEmpty(cfg)
	g.scoring.startAt(clk.Now())
	return g, clk
}

// dealt returns a freshly dealt game on a fake clock.
func dealt(t *testing.T, seed int64, drawCount int) (*Game, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	g, err := New(Config{DrawCount: drawCount, Seed: seed, Clock: clk})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g, clk
}

func up(s Suit, r Rank) Card   { return NewCard(s, r).Up() }
func down(s Suit, r Rank) Card { return NewCard(s, r) }

// fillFoundation places Ace through top of suit on its foundation.
func fillFoundation(g *Game, s Suit, top Rank) {
	for r := RankAce; r <= top; r++ {
		g.foundations[s].place(up(s, r))
	}
}
