package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/game"
)

type newGameRequest struct {
	Mode       engine.Mode `json:"mode"`
	Draw       int         `json:"draw"`
	Seed       *int64      `json:"seed"`
	PlayerName string      `json:"player_name"`
}

type moveRequest struct {
	Move *engine.Move `json:"move"`
}

type autoplayRequest struct {
	Limit int `json:"limit"`
}

type playerRequest struct {
	PlayerName string `json:"player_name"`
}

type okStateResponse struct {
	OK    bool           `json:"ok"`
	State game.StateView `json:"state"`
}

// defaultHintsLimit applies to GET /api/game/hints without ?limit=.
const defaultHintsLimit = 10

// current returns the caller's game, dealing one on first use.
func (s *Server) current(r *http.Request) (*game.SolitaireGame, error) {
	g, err := s.store.Ensure(r.Context(), sessionID(r))
	s.metrics.Sessions.Set(float64(s.store.Len()))
	return g, err
}

// persist writes the session's game through to the cache and its save. A
// failed write is logged; the move itself has already happened.
func (s *Server) persist(r *http.Request) {
	if err := s.store.Persist(r.Context(), sessionID(r)); err != nil {
		s.log.WithField("request_id", RequestIDFromContext(r.Context())).WithError(err).Error("persist session")
	}
}

func (s *Server) newGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	if req.Mode != "" && !req.Mode.Valid() {
		writeErr(w, http.StatusBadRequest, "unknown mode "+string(req.Mode))
		return
	}
	cfg := engine.Config{Mode: req.Mode, DrawCount: req.Draw}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	g, err := s.store.NewGame(r.Context(), sessionID(r), cfg, strings.TrimSpace(req.PlayerName))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.GamesStarted.Inc()
	s.metrics.Sessions.Set(float64(s.store.Len()))
	view := g.State()
	writeJSON(w, http.StatusOK, map[string]any{"id": view.SaveID, "state": view})
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	if req.Move == nil {
		writeErr(w, http.StatusBadRequest, "move is required")
		return
	}
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := g.ApplyMove(*req.Move)
	label := string(req.Move.Type)
	if !req.Move.Type.Known() {
		label = "unknown"
	}
	s.metrics.Move(label, err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.persist(r)
	writeJSON(w, http.StatusOK, okStateResponse{OK: true, State: view})
}

func (s *Server) hint(w http.ResponseWriter, r *http.Request) {
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var out *engine.Hint
	if h, ok := g.Hint(); ok {
		out = &h
	}
	writeJSON(w, http.StatusOK, map[string]any{"hint": out})
}

func (s *Server) hints(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultHintsLimit)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items := g.Hints(limit)
	if items == nil {
		items = []engine.Hint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, "undo", (*game.SolitaireGame).Undo)
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, "redo", (*game.SolitaireGame).Redo)
}

// step runs an undo or redo.
func (s *Server) step(w http.ResponseWriter, r *http.Request, direction string, fn func(*game.SolitaireGame) (game.StateView, error)) {
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := fn(g)
	if errors.Is(err, engine.ErrNoHistory) {
		writeErr(w, http.StatusBadRequest, "nothing to "+direction)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.History.WithLabelValues(direction).Inc()
	s.persist(r)
	writeJSON(w, http.StatusOK, okStateResponse{OK: true, State: view})
}

func (s *Server) autoplay(w http.ResponseWriter, r *http.Request) {
	var req autoplayRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	moved, view := g.Autoplay(req.Limit)
	if moved > 0 {
		s.metrics.AutoplayMoves.Add(float64(moved))
		s.persist(r)
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "state": view})
}

func (s *Server) setPlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g.SetPlayer(strings.TrimSpace(req.PlayerName))
	s.persist(r)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.State())
}
