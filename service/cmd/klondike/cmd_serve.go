package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/klondike/service/internal/cache"
	"github.com/jason-s-yu/klondike/service/internal/config"
	"github.com/jason-s-yu/klondike/service/internal/database"
	"github.com/jason-s-yu/klondike/service/internal/handlers"
	"github.com/jason-s-yu/klondike/service/internal/metrics"
	"github.com/jason-s-yu/klondike/service/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// repos bundles the storage the server runs on.
type repos struct {
	saves    database.SaveRepo
	scores   database.ScoreRepo
	profiles database.ProfileRepo
	close    func()
}

// openRepos uses Postgres when DATABASE_URL is set and JSON files in the
// data directory otherwise.
func openRepos(ctx context.Context, cfg config.Config, log *logrus.Logger) (repos, error) {
	if cfg.DatabaseURL != "" {
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return repos{}, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repos{}, err
		}
		log.Info("storage: postgres")
		return repos{saves: db, scores: db.Scores(), profiles: db.Profiles(), close: db.Close}, nil
	}

	saves, err := database.NewFileSaveRepo(cfg.DataDir)
	if err != nil {
		return repos{}, err
	}
	scores, err := database.NewFileScoreRepo(cfg.DataDir)
	if err != nil {
		return repos{}, err
	}
	profiles, err := database.NewFileProfileRepo(cfg.DataDir)
	if err != nil {
		return repos{}, err
	}
	log.WithField("dir", cfg.DataDir).Info("storage: json files")
	return repos{saves: saves, scores: scores, profiles: profiles, close: func() {}}, nil
}

// openCache connects to Redis when REDIS_URL is set. The service runs
// without it if the server cannot be reached.
func openCache(ctx context.Context, cfg config.Config, log *logrus.Logger) (cache.Cache, func()) {
	if cfg.RedisURL == "" {
		return nil, func() {}
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, sessions stay in memory")
		return nil, func() {}
	}
	log.Info("session cache: redis")
	return rc, func() { _ = rc.Close() }
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg)
	if cfg.GeneratedSecret {
		log.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	store, err := openRepos(startCtx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()
	sessionCache, closeCache := openCache(startCtx, cfg, log)
	defer closeCache()

	tokens, err := session.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	sessions := session.NewStore(store.saves, sessionCache, cfg.Scoring, log)
	m := metrics.New()
	srv := handlers.New(handlers.Deps{
		Store:    sessions,
		Tokens:   tokens,
		Saves:    store.saves,
		Scores:   store.scores,
		Profiles: store.profiles,
		Metrics:  m,
		Log:      log,
	})
	go sweepSessions(ctx, sessions, m, cfg.SessionTTL, log)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with the signal so websocket streams unwind.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
		return err
	}
	return nil
}

// sweepSessions evicts sessions idle for longer than ttl until ctx ends. By
// then their token has expired too, so nothing can reach them.
func sweepSessions(ctx context.Context, sessions *session.Store, m *metrics.Metrics, ttl time.Duration, log *logrus.Logger) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := sessions.Sweep(ctx, ttl); err != nil {
				log.WithError(err).Warn("session sweep failed")
			}
			m.Sessions.Set(float64(sessions.Len()))
		}
	}
}
