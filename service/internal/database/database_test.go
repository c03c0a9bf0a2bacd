package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSave(t *testing.T, player string) models.Save {
	t.Helper()
	s, _, err := models.NewSave(uuid.New(), engine.Config{Seed: 42}, player)
	require.NoError(t, err)
	return s
}

// exerciseSaveRepo runs the SaveRepo contract against any implementation.
func exerciseSaveRepo(t *testing.T, repo SaveRepo) {
	ctx := context.Background()
	s := newSave(t, "Ana")

	require.NoError(t, repo.Create(ctx, s))
	assert.ErrorIs(t, repo.Create(ctx, s), ErrExists)

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.Seed, got.Seed)
	assert.Equal(t, s.State.Stock, got.State.Stock)

	s.Score = 77
	s.Player = "Bea"
	require.NoError(t, repo.Update(ctx, s))
	got, err = repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 77, got.Score)
	assert.Equal(t, "Bea", got.Player)

	missing := newSave(t, "")
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)
	_, err = repo.Get(ctx, missing.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	other := newSave(t, "")
	other.CreatedAt = s.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, other))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, s.ID, list[0].ID)

	require.NoError(t, repo.Delete(ctx, s.ID))
	require.NoError(t, repo.Delete(ctx, s.ID), "deleting twice is a no-op")
	_, err = repo.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySaveRepo(t *testing.T) {
	exerciseSaveRepo(t, NewMemorySaveRepo())
}

func TestFileSaveRepo(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileSaveRepo(dir)
	require.NoError(t, err)
	exerciseSaveRepo(t, repo)

	// A second handle on the same directory sees the same data.
	again, err := NewFileSaveRepo(dir)
	require.NoError(t, err)
	list, err := again.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileSaveRepoCorruptFileReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "saves.json"), []byte("{not json"), 0o644))
	repo, err := NewFileSaveRepo(dir)
	require.NoError(t, err)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.Create(context.Background(), newSave(t, "")))
	list, err = repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileScoreRepoSorted(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFileScoreRepo(t.TempDir())
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.Add(ctx, models.ScoreEntry{Name: "b", Score: 50, Seconds: 10, TS: now}))
	require.NoError(t, repo.Add(ctx, models.ScoreEntry{Name: "a", Score: 90, Seconds: 99, TS: now}))
	require.NoError(t, repo.Add(ctx, models.ScoreEntry{Name: "c", Score: 50, Seconds: 5, TS: now}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "c", list[1].Name)
	assert.Equal(t, "b", list[2].Name)
}

func TestFileProfileRepo(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFileProfileRepo(t.TempDir())
	require.NoError(t, err)

	p, err := repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, models.Profile{}, p)

	want := models.Profile{Name: "José", Language: "es", HighContrast: true}
	require.NoError(t, repo.Set(ctx, "sid-1", want))
	p, err = repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, want, p)

	assert.ErrorIs(t, repo.Set(ctx, "sid-1", models.Profile{Name: "x1"}), models.ErrInvalidName)
	p, err = repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, want, p, "rejected update leaves the stored profile")
}

// TestPostgres runs the SaveRepo contract against a live database when
// KLONDIKE_TEST_DATABASE_URL is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("KLONDIKE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("KLONDIKE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))
	_, err = db.Exec(ctx, `TRUNCATE saves, scores, profiles`)
	require.NoError(t, err)

	exerciseSaveRepo(t, db)

	scores := db.Scores()
	require.NoError(t, scores.Add(ctx, models.ScoreEntry{Name: "a", Score: 10, TS: time.Now().UTC()}))
	list, err := scores.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	profiles := db.Profiles()
	require.NoError(t, profiles.Set(ctx, "sid", models.Profile{Name: "Ana"}))
	p, err := profiles.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
}
