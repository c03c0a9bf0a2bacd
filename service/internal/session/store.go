// Package session maps browser sessions to live games and keeps them in the
// cache so they survive restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/cache"
	"github.com/jason-s-yu/klondike/service/internal/database"
	"github.com/jason-s-yu/klondike/service/internal/game"
	"github.com/jason-s-yu/klondike/service/internal/models"
	"github.com/sirupsen/logrus"
)

// AttachFunc is run on every game the store creates or rehydrates, before it
// is handed out. Handlers use it to wire OnGameWon.
type AttachFunc func(sid string, g *game.SolitaireGame)

// Store holds the live game of each session. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	games map[string]*game.SolitaireGame
	seen  map[string]time.Time // last Ensure per session
	now   func() time.Time

	saves  database.SaveRepo
	cache  cache.Cache // nil disables write-through
	policy engine.ScoringPolicy
	log    *logrus.Entry

	OnAttach AttachFunc
}

// NewStore builds a store. c may be nil.
func NewStore(saves database.SaveRepo, c cache.Cache, policy engine.ScoringPolicy, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		games:  make(map[string]*game.SolitaireGame),
		seen:   make(map[string]time.Time),
		now:    time.Now,
		saves:  saves,
		cache:  c,
		policy: policy,
		log:    log.WithField("component", "session"),
	}
}

// Policy is the scoring policy new games are dealt with.
func (s *Store) Policy() engine.ScoringPolicy { return s.policy }

// Get returns the session's live game without touching the cache.
func (s *Store) Get(sid string) (*game.SolitaireGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[sid]
	return g, ok
}

// Set installs g as the session's game.
func (s *Store) Set(sid string, g *game.SolitaireGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachLocked(sid, g)
}

// Delete forgets the session locally and in the cache. Its listeners are
// disconnected.
func (s *Store) Delete(ctx context.Context, sid string) error {
	s.mu.Lock()
	g, ok := s.games[sid]
	s.forgetLocked(sid)
	s.mu.Unlock()
	if ok {
		g.CloseSubscribers()
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, sid)
}

// Sweep deletes sessions not seen for longer than idle. Sessions with an
// attached websocket are kept. It returns how many were removed.
func (s *Store) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var stale []string
	for sid, at := range s.seen {
		if !at.Before(cutoff) {
			continue
		}
		if g, ok := s.games[sid]; ok && g.Subscribers() > 0 {
			continue
		}
		stale = append(stale, sid)
		s.forgetLocked(sid)
	}
	s.mu.Unlock()

	var errs error
	if s.cache != nil {
		for _, sid := range stale {
			if err := s.cache.Delete(ctx, sid); err != nil {
				errs = errors.Join(errs, fmt.Errorf("evict session %s: %w", sid, err))
			}
		}
	}
	if len(stale) > 0 {
		s.log.WithField("evicted", len(stale)).Info("idle sessions evicted")
	}
	return len(stale), errs
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// Ensure returns the session's game. On a local miss it rehydrates from the
// cache, falling back to dealing a new default game.
func (s *Store) Ensure(ctx context.Context, sid string) (*game.SolitaireGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen[sid] = s.now()
	if g, ok := s.games[sid]; ok {
		return g, nil
	}
	if g, err := s.rehydrate(ctx, sid); err == nil {
		s.attachLocked(sid, g)
		s.log.WithField("sid", sid).Debug("session rehydrated from cache")
		return g, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.WithField("sid", sid).WithError(err).Warn("cache rehydrate failed, dealing new game")
	}

	return s.createLocked(ctx, sid, engine.Config{}, "", false)
}

// NewGame deals a fresh game for the session, replacing any current one.
func (s *Store) NewGame(ctx context.Context, sid string, cfg engine.Config, player string) (*game.SolitaireGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx, sid, cfg, player, true)
}

// Persist writes the session's game through to its save and the cache.
// A game without a save gets one once it has a move on the board. A save
// deleted while the game was live is not recreated.
func (s *Store) Persist(ctx context.Context, sid string) error {
	g, ok := s.Get(sid)
	if !ok {
		return fmt.Errorf("persist session %s: %w", sid, database.ErrNotFound)
	}

	g.Mu.Lock()
	rec := recordOf(g)
	g.Mu.Unlock()

	err := s.writeSave(ctx, sid, g, &rec)
	if s.cache != nil {
		if cerr := s.cache.Put(ctx, sid, rec); cerr != nil {
			err = errors.Join(err, fmt.Errorf("cache session %s: %w", sid, cerr))
		}
	}
	return err
}

// writeSave creates or updates the save behind rec, marking rec and g
// persisted once a save row exists.
func (s *Store) writeSave(ctx context.Context, sid string, g *game.SolitaireGame, rec *cache.Record) error {
	log := s.log.WithFields(logrus.Fields{"sid": sid, "save_id": rec.SaveID})
	if !rec.Persisted {
		if rec.State.Moves == 0 {
			return nil
		}
		err := s.saves.Create(ctx, saveOf(*rec))
		if err != nil && !errors.Is(err, database.ErrExists) {
			return fmt.Errorf("create save: %w", err)
		}
		rec.Persisted = true
		g.Mu.Lock()
		if g.SaveID == rec.SaveID {
			g.Persisted = true
		}
		g.Mu.Unlock()
		if err == nil {
			log.Info("save created on first move")
			return nil
		}
	}

	save, err := s.saves.Get(ctx, rec.SaveID)
	if errors.Is(err, database.ErrNotFound) {
		log.Debug("save gone, skipping write-through")
		return nil
	}
	if err != nil {
		return err
	}
	save.Seed = rec.Seed
	save.Player = rec.Player
	save.SetState(rec.State)
	return s.saves.Update(ctx, save)
}

// createLocked deals a game and installs it for sid. With persist set the
// save is stored right away; otherwise Persist creates it after the first
// move. Assumes s.mu is held.
func (s *Store) createLocked(ctx context.Context, sid string, cfg engine.Config, player string, persist bool) (*game.SolitaireGame, error) {
	policy := s.policy
	cfg.Scoring = &policy
	save, eng, err := models.NewSave(uuid.New(), cfg, player)
	if err != nil {
		return nil, err
	}
	if persist {
		if err := s.saves.Create(ctx, save); err != nil {
			return nil, fmt.Errorf("create save: %w", err)
		}
	}
	g := game.NewSolitaireGame(save.ID, eng, player)
	g.Persisted = persist
	s.attachLocked(sid, g)
	s.log.WithFields(logrus.Fields{"sid": sid, "save_id": save.ID, "seed": save.Seed, "draw": save.DrawCount, "persisted": persist}).Info("new game dealt")

	if s.cache != nil {
		if err := s.cache.Put(ctx, sid, recordOf(g)); err != nil {
			s.log.WithField("sid", sid).WithError(err).Warn("cache write failed")
		}
	}
	return g, nil
}

func (s *Store) rehydrate(ctx context.Context, sid string) (*game.SolitaireGame, error) {
	if s.cache == nil {
		return nil, cache.ErrMiss
	}
	rec, err := s.cache.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	g, err := game.Restore(rec.SaveID, rec.Seed, rec.Player, rec.State, s.policy)
	if err != nil {
		return nil, err
	}
	g.Persisted = rec.Persisted
	return g, nil
}

// attachLocked installs g for sid, disconnecting listeners of the game it
// replaces. Assumes s.mu is held.
func (s *Store) attachLocked(sid string, g *game.SolitaireGame) {
	g.Log = s.log.WithFields(logrus.Fields{"sid": sid, "game_id": g.ID, "save_id": g.SaveID})
	if s.OnAttach != nil {
		s.OnAttach(sid, g)
	}
	if old, ok := s.games[sid]; ok && old != g {
		old.CloseSubscribers()
	}
	s.games[sid] = g
	s.seen[sid] = s.now()
}

// forgetLocked assumes s.mu is held.
func (s *Store) forgetLocked(sid string) {
	delete(s.games, sid)
	delete(s.seen, sid)
}

// recordOf assumes g.Mu is held.
func recordOf(g *game.SolitaireGame) cache.Record {
	return cache.Record{
		SaveID:    g.SaveID,
		Player:    g.Player,
		Seed:      g.Seed,
		DrawCount: g.Engine.DrawCount(),
		State:     g.Engine.Snapshot(),
		Persisted: g.Persisted,
	}
}

// saveOf builds the first save row of a session game dealt without one.
func saveOf(rec cache.Record) models.Save {
	save := models.Save{
		ID:        rec.SaveID,
		Seed:      rec.Seed,
		Player:    rec.Player,
		CreatedAt: time.Now().UTC(),
	}
	save.SetState(rec.State)
	return save
}
