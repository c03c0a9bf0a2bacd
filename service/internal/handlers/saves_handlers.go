package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/models"
)

type createSaveRequest struct {
	Mode engine.Mode `json:"mode"`
	Draw int         `json:"draw"`
	Seed *int64      `json:"seed"`
}

type updateSaveRequest struct {
	State *engine.Snapshot `json:"state"`
}

// defaultLeaderboardLimit applies to GET /api/leaderboard without ?limit=.
const defaultLeaderboardLimit = 50

func saveID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid save id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) listSaves(w http.ResponseWriter, r *http.Request) {
	items, err := s.saves.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if items == nil {
		items = []models.Save{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// createSave deals and stores a game without touching the session.
func (s *Server) createSave(w http.ResponseWriter, r *http.Request) {
	var req createSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	if req.Mode != "" && !req.Mode.Valid() {
		writeErr(w, http.StatusBadRequest, "unknown mode "+string(req.Mode))
		return
	}
	policy := s.store.Policy()
	cfg := engine.Config{Mode: req.Mode, DrawCount: req.Draw, Scoring: &policy}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	save, _, err := models.NewSave(uuid.New(), cfg, "")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.saves.Create(r.Context(), save); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": save.ID})
}

func (s *Server) getSave(w http.ResponseWriter, r *http.Request) {
	id, ok := saveID(w, r)
	if !ok {
		return
	}
	save, err := s.saves.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, save)
}

// updateSave replaces a save's board. A body without state only bumps the
// save's timestamp.
func (s *Server) updateSave(w http.ResponseWriter, r *http.Request) {
	id, ok := saveID(w, r)
	if !ok {
		return
	}
	var req updateSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	if req.State != nil {
		if err := req.State.Validate(); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	save, err := s.saves.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.State != nil {
		save.SetState(*req.State)
	}
	if err := s.saves.Update(r.Context(), save); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) deleteSave(w http.ResponseWriter, r *http.Request) {
	id, ok := saveID(w, r)
	if !ok {
		return
	}
	if err := s.saves.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// loadSave makes a stored save the session's live game.
func (s *Server) loadSave(w http.ResponseWriter, r *http.Request) {
	id, ok := saveID(w, r)
	if !ok {
		return
	}
	save, err := s.saves.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := g.LoadSave(save)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.persist(r)
	writeJSON(w, http.StatusOK, okStateResponse{OK: true, State: view})
}

func (s *Server) scoreboard(w http.ResponseWriter, r *http.Request) {
	items, err := s.scores.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if items == nil {
		items = []models.ScoreEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultLeaderboardLimit)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	saves, err := s.saves.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items := models.Leaderboard(saves, limit)
	if items == nil {
		items = []models.LeaderRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := decodeJSON(r, &p); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	if err := s.profiles.Set(r.Context(), sessionID(r), p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
