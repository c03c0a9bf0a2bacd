package database

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/service/internal/models"
)

// MemorySaveRepo keeps saves in process memory.
type MemorySaveRepo struct {
	mu    sync.RWMutex
	saves map[uuid.UUID]models.Save
}

// NewMemorySaveRepo returns an empty repository.
func NewMemorySaveRepo() *MemorySaveRepo {
	return &MemorySaveRepo{saves: map[uuid.UUID]models.Save{}}
}

func (r *MemorySaveRepo) Create(_ context.Context, s models.Save) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.saves[s.ID]; ok {
		return ErrExists
	}
	r.saves[s.ID] = s
	return nil
}

func (r *MemorySaveRepo) Get(_ context.Context, id uuid.UUID) (models.Save, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.saves[id]
	if !ok {
		return models.Save{}, ErrNotFound
	}
	return s, nil
}

func (r *MemorySaveRepo) Update(_ context.Context, s models.Save) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.saves[s.ID]; !ok {
		return ErrNotFound
	}
	r.saves[s.ID] = s
	return nil
}

func (r *MemorySaveRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.saves, id)
	return nil
}

func (r *MemorySaveRepo) List(_ context.Context) ([]models.Save, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedSaves(r.saves), nil
}

// sortedSaves returns the map values oldest first.
func sortedSaves(m map[uuid.UUID]models.Save) []models.Save {
	out := make([]models.Save, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
