// Package handlers exposes the game, saves, scoreboard and profile routes
// over HTTP and a websocket event stream.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/klondike/service/internal/database"
	"github.com/jason-s-yu/klondike/service/internal/game"
	"github.com/jason-s-yu/klondike/service/internal/metrics"
	"github.com/jason-s-yu/klondike/service/internal/models"
	"github.com/jason-s-yu/klondike/service/internal/session"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators a Server needs. Metrics and Log may be nil.
type Deps struct {
	Store    *session.Store
	Tokens   *session.Tokens
	Saves    database.SaveRepo
	Scores   database.ScoreRepo
	Profiles database.ProfileRepo
	Metrics  *metrics.Metrics
	Log      *logrus.Logger
}

// Server routes requests to the session's game and the repositories.
type Server struct {
	store    *session.Store
	tokens   *session.Tokens
	saves    database.SaveRepo
	scores   database.ScoreRepo
	profiles database.ProfileRepo
	metrics  *metrics.Metrics
	log      *logrus.Logger
}

// scoreWriteTimeout bounds the scoreboard write done when a game is won.
const scoreWriteTimeout = 5 * time.Second

// New builds the server from d, filling in a default logger and metrics, and
// hooks game wins on every session game into the scoreboard.
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	s := &Server{
		store:    d.Store,
		tokens:   d.Tokens,
		saves:    d.Saves,
		scores:   d.Scores,
		profiles: d.Profiles,
		metrics:  d.Metrics,
		log:      d.Log,
	}
	s.store.OnAttach = s.attach
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithRecover(s.log), WithAccessLog(s.log, s.metrics))

	r.Get("/api/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Route("/api/game", func(r chi.Router) {
			r.Post("/new", s.newGame)
			r.Post("/move", s.move)
			r.Post("/hint", s.hint)
			r.Get("/hints", s.hints)
			r.Post("/undo", s.undo)
			r.Post("/redo", s.redo)
			r.Post("/autoplay", s.autoplay)
			r.Post("/player", s.setPlayer)
			r.Get("/state", s.state)
			r.Get("/ws", s.stream)
		})

		r.Route("/api/saves", func(r chi.Router) {
			r.Get("/", s.listSaves)
			r.Post("/", s.createSave)
			r.Get("/{id}", s.getSave)
			r.Put("/{id}", s.updateSave)
			r.Delete("/{id}", s.deleteSave)
			r.Post("/{id}/load", s.loadSave)
		})

		r.Get("/api/scoreboard", s.scoreboard)
		r.Get("/api/leaderboard", s.leaderboard)
		r.Get("/api/profile", s.getProfile)
		r.Put("/api/profile", s.putProfile)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

// attach wires a session game into the scoreboard. It runs under the store
// lock.
func (s *Server) attach(sid string, g *game.SolitaireGame) {
	g.OnGameWon = func(g *game.SolitaireGame, final game.StateView) {
		s.metrics.GamesWon.Inc()
		entry := models.NewScoreEntry(models.Save{
			Player:    g.Player,
			Score:     final.Score,
			Moves:     final.Moves,
			Seconds:   final.Seconds,
			DrawCount: final.DrawCount,
		})
		ctx, cancel := context.WithTimeout(context.Background(), scoreWriteTimeout)
		defer cancel()
		if err := s.scores.Add(ctx, entry); err != nil {
			g.Log.WithError(err).Error("scoreboard write failed")
			return
		}
		g.Log.WithFields(logrus.Fields{"sid": sid, "name": entry.Name, "score": entry.Score}).Info("score recorded")
	}
}
