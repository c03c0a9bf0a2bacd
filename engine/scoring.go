package engine

import (
	"fmt"
	"time"
)

// Scoring accumulates points and moves and remembers when play started.
type Scoring struct {
	Score int
	Moves int
	start time.Time
}

// startAt sets the timer basis.
func (s *Scoring) startAt(t time.Time) { s.start = t }

// resumeAt sets the timer basis so that elapsed seconds at now equals seconds.
func (s *Scoring) resumeAt(now time.Time, seconds int) {
	s.start = now.Add(-time.Duration(seconds) * time.Second)
}

// Seconds returns whole seconds elapsed since the timer basis.
func (s *Scoring) Seconds(now time.Time) int {
	if s.start.IsZero() {
		return 0
	}
	d := now.Sub(s.start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func (s *Scoring) addPoints(pts int) { s.Score += pts }
func (s *Scoring) addMove()          { s.Moves++ }

func errInvalidDrawCount(n int) error {
	return fmt.Errorf("%w: draw count must be 1 or 3, got %d", ErrInvalidConfig, n)
}
