package database

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/service/internal/models"
)

// jsonFile is a whole-file JSON document: every operation reads the file,
// and every write rewrites it.
type jsonFile struct {
	mu   sync.Mutex
	path string
}

func newJSONFile(dataDir, name string) (*jsonFile, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &jsonFile{path: filepath.Join(dataDir, name)}, nil
}

// readLocked decodes the file into out. A missing or corrupt file leaves out
// untouched.
func (f *jsonFile) readLocked(out any) error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	_ = json.Unmarshal(b, out)
	return nil
}

func (f *jsonFile) writeLocked(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// FileSaveRepo stores saves in saves.json as an id -> save object.
type FileSaveRepo struct{ f *jsonFile }

// NewFileSaveRepo opens (or lazily creates) dataDir/saves.json.
func NewFileSaveRepo(dataDir string) (*FileSaveRepo, error) {
	f, err := newJSONFile(dataDir, "saves.json")
	if err != nil {
		return nil, err
	}
	return &FileSaveRepo{f: f}, nil
}

func (r *FileSaveRepo) load() (map[uuid.UUID]models.Save, error) {
	m := map[uuid.UUID]models.Save{}
	if err := r.f.readLocked(&m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[uuid.UUID]models.Save{}
	}
	return m, nil
}

func (r *FileSaveRepo) Create(_ context.Context, s models.Save) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := m[s.ID]; ok {
		return ErrExists
	}
	m[s.ID] = s
	return r.f.writeLocked(m)
}

func (r *FileSaveRepo) Get(_ context.Context, id uuid.UUID) (models.Save, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, err := r.load()
	if err != nil {
		return models.Save{}, err
	}
	s, ok := m[id]
	if !ok {
		return models.Save{}, ErrNotFound
	}
	return s, nil
}

func (r *FileSaveRepo) Update(_ context.Context, s models.Save) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := m[s.ID]; !ok {
		return ErrNotFound
	}
	m[s.ID] = s
	return r.f.writeLocked(m)
}

func (r *FileSaveRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := m[id]; !ok {
		return nil
	}
	delete(m, id)
	return r.f.writeLocked(m)
}

func (r *FileSaveRepo) List(_ context.Context) ([]models.Save, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, err := r.load()
	if err != nil {
		return nil, err
	}
	return sortedSaves(m), nil
}

// FileScoreRepo stores the scoreboard in scoreboard.json as a list.
type FileScoreRepo struct{ f *jsonFile }

// NewFileScoreRepo opens (or lazily creates) dataDir/scoreboard.json.
func NewFileScoreRepo(dataDir string) (*FileScoreRepo, error) {
	f, err := newJSONFile(dataDir, "scoreboard.json")
	if err != nil {
		return nil, err
	}
	return &FileScoreRepo{f: f}, nil
}

func (r *FileScoreRepo) Add(_ context.Context, e models.ScoreEntry) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var entries []models.ScoreEntry
	if err := r.f.readLocked(&entries); err != nil {
		return err
	}
	entries = append(entries, e)
	return r.f.writeLocked(entries)
}

func (r *FileScoreRepo) List(_ context.Context) ([]models.ScoreEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var entries []models.ScoreEntry
	if err := r.f.readLocked(&entries); err != nil {
		return nil, err
	}
	models.SortScoreEntries(entries)
	return entries, nil
}

// FileProfileRepo stores profiles in profiles.json as a user -> profile object.
type FileProfileRepo struct{ f *jsonFile }

// NewFileProfileRepo opens (or lazily creates) dataDir/profiles.json.
func NewFileProfileRepo(dataDir string) (*FileProfileRepo, error) {
	f, err := newJSONFile(dataDir, "profiles.json")
	if err != nil {
		return nil, err
	}
	return &FileProfileRepo{f: f}, nil
}

// Get returns the stored profile, or the zero profile for an unknown user.
func (r *FileProfileRepo) Get(_ context.Context, user string) (models.Profile, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m := map[string]models.Profile{}
	if err := r.f.readLocked(&m); err != nil {
		return models.Profile{}, err
	}
	return m[user], nil
}

func (r *FileProfileRepo) Set(_ context.Context, user string, p models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m := map[string]models.Profile{}
	if err := r.f.readLocked(&m); err != nil {
		return err
	}
	if m == nil {
		m = map[string]models.Profile{}
	}
	m[user] = p
	return r.f.writeLocked(m)
}
