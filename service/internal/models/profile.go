package models

import (
	"errors"
	"regexp"
)

// ErrInvalidName reports a display name outside the allowed pattern.
var ErrInvalidName = errors.New("invalid name")

// Letters (including Latin-1 accents), spaces and hyphens, 2 to 32 runes.
var namePattern = regexp.MustCompile(`^[A-Za-zÀ-ÿ\- ]{2,32}$`)

// Profile holds per-session preferences.
type Profile struct {
	Name         string `json:"name,omitempty"`
	Language     string `json:"language,omitempty"`
	HighContrast bool   `json:"high_contrast"`
}

// ValidName reports whether name is an acceptable display name.
func ValidName(name string) bool { return namePattern.MatchString(name) }

// Validate checks the profile's fields. An empty name is allowed.
func (p Profile) Validate() error {
	if p.Name != "" && !ValidName(p.Name) {
		return ErrInvalidName
	}
	return nil
}
