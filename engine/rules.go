package engine

import "time"

// Mode selects how points are interpreted. It does not change their sign.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeVegas    Mode = "vegas"
)

// Valid reports whether m is a known scoring mode.
func (m Mode) Valid() bool { return m == ModeStandard || m == ModeVegas }

func normalizeMode(m Mode) Mode {
	if m.Valid() {
		return m
	}
	return ModeStandard
}

// ScoringPolicy holds the point value of every scored transition.
type ScoringPolicy struct {
	WasteToFoundation   int `yaml:"waste_to_foundation" json:"waste_to_foundation"`
	TableauToFoundation int `yaml:"tableau_to_foundation" json:"tableau_to_foundation"`
	WasteToTableau      int `yaml:"waste_to_tableau" json:"waste_to_tableau"`
	TableauToTableau    int `yaml:"tableau_to_tableau" json:"tableau_to_tableau"`
	RecycleDrawOne      int `yaml:"recycle_draw_one" json:"recycle_draw_one"`
	RecycleDrawThree    int `yaml:"recycle_draw_three" json:"recycle_draw_three"`
	UndoPenalty         int `yaml:"undo_penalty" json:"undo_penalty"`
}

// DefaultScoring returns the standard point table.
func DefaultScoring() ScoringPolicy {
	return ScoringPolicy{
		WasteToFoundation:   10,
		TableauToFoundation: 10,
		WasteToTableau:      5,
		TableauToTableau:    3,
		RecycleDrawOne:      -100,
		RecycleDrawThree:    -20,
		UndoPenalty:         0,
	}
}

// recyclePenalty returns the recycle cost for the given draw count.
func (p ScoringPolicy) recyclePenalty(drawCount int) int {
	if drawCount == 3 {
		return p.RecycleDrawThree
	}
	return p.RecycleDrawOne
}

// Clock supplies the current time. Elapsed time is computed on demand.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// Config carries the settings for a new or loaded game.
type Config struct {
	Mode      Mode
	DrawCount int   // 1 or 3; 0 means 1
	Seed      int64 // 0 means generate one
	Scoring   *ScoringPolicy
	Clock     Clock
}

func (c Config) normalized() (Config, error) {
	c.Mode = normalizeMode(c.Mode)
	if c.DrawCount == 0 {
		c.DrawCount = 1
	}
	if c.DrawCount != 1 && c.DrawCount != 3 {
		return c, errInvalidDrawCount(c.DrawCount)
	}
	if c.Scoring == nil {
		p := DefaultScoring()
		c.Scoring = &p
	}
	if c.Clock == nil {
		c.Clock = RealClock{}
	}
	return c, nil
}
