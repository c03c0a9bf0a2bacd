package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/database"
	"github.com/jason-s-yu/klondike/service/internal/metrics"
	"github.com/jason-s-yu/klondike/service/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(bytes.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		dealSeed, dealDraw, dealMode, hintLimit = 0, 1, "standard", 5
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDealIsDeterministic(t *testing.T) {
	a, err := run(t, nil, "deal", "--seed", "123")
	require.NoError(t, err)
	b, err := run(t, nil, "deal", "--seed", "123")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	s, err := engine.UnmarshalSnapshot([]byte(a))
	require.NoError(t, err)
	assert.Len(t, s.Stock, 24)
	assert.Equal(t, 1, s.DrawCount)
}

func TestDealRejectsBadFlags(t *testing.T) {
	_, err := run(t, nil, "deal", "--draw", "2")
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
	_, err = run(t, nil, "deal", "--mode", "poker")
	assert.Error(t, err)
}

func TestHintFromFileAndStdin(t *testing.T) {
	snap, err := run(t, nil, "deal", "--seed", "42", "--draw", "3")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(snap), 0o644))

	fromFile, err := run(t, nil, "hint", path, "--limit", "3")
	require.NoError(t, err)
	var hints []engine.Hint
	require.NoError(t, json.Unmarshal([]byte(fromFile), &hints))
	assert.NotEmpty(t, hints)
	assert.LessOrEqual(t, len(hints), 3)

	fromStdin, err := run(t, []byte(snap), "hint", "-", "--limit", "3")
	require.NoError(t, err)
	assert.Equal(t, fromFile, fromStdin)
}

func TestHintRejectsMalformed(t *testing.T) {
	_, err := run(t, []byte(`{"draw_count": 2}`), "hint")
	assert.ErrorIs(t, err, engine.ErrMalformedSnapshot)
}

func TestSweepSessionsStopsWithContext(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	sessions := session.NewStore(database.NewMemorySaveRepo(), nil, engine.DefaultScoring(), log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweepSessions(ctx, sessions, metrics.New(), time.Hour, log)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}

	// A zero TTL disables sweeping.
	sweepSessions(context.Background(), sessions, metrics.New(), 0, log)
}
