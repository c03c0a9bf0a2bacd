// Package database persists saves, scoreboard entries and profiles.
package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/service/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when creating a record whose id is taken.
	ErrExists = errors.New("already exists")
)

// SaveRepo stores saved games.
type SaveRepo interface {
	Create(ctx context.Context, s models.Save) error
	Get(ctx context.Context, id uuid.UUID) (models.Save, error)
	Update(ctx context.Context, s models.Save) error
	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Save, error)
}

// ScoreRepo stores scoreboard entries.
type ScoreRepo interface {
	Add(ctx context.Context, e models.ScoreEntry) error
	// List returns every entry, best first.
	List(ctx context.Context) ([]models.ScoreEntry, error)
}

// ProfileRepo stores per-session preferences.
type ProfileRepo interface {
	Get(ctx context.Context, user string) (models.Profile, error)
	Set(ctx context.Context, user string, p models.Profile) error
}
