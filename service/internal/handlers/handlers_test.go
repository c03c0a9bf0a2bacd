package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/klondike/engine"
	"github.com/jason-s-yu/klondike/service/internal/database"
	"github.com/jason-s-yu/klondike/service/internal/game"
	"github.com/jason-s-yu/klondike/service/internal/models"
	"github.com/jason-s-yu/klondike/service/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ts    *httptest.Server
	saves *database.MemorySaveRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	dir := t.TempDir()
	saves := database.NewMemorySaveRepo()
	scores, err := database.NewFileScoreRepo(dir)
	require.NoError(t, err)
	profiles, err := database.NewFileProfileRepo(dir)
	require.NoError(t, err)
	tokens, err := session.NewTokens([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	srv := New(Deps{
		Store:    session.NewStore(saves, nil, engine.DefaultScoring(), log),
		Tokens:   tokens,
		Saves:    saves,
		Scores:   scores,
		Profiles: profiles,
		Log:      log,
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, saves: saves}
}

// client is one browser: it keeps its own session cookie.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (e *testEnv) client(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: e.ts.URL, http: &http.Client{Jar: jar}}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type errorBody struct {
	Error string `json:"error"`
}

type stateBody struct {
	OK    bool           `json:"ok"`
	State game.StateView `json:"state"`
}

func (c *client) newGame(seed int64) (string, game.StateView) {
	c.t.Helper()
	var out struct {
		ID    string         `json:"id"`
		State game.StateView `json:"state"`
	}
	code := c.do("POST", "/api/game/new", map[string]any{"mode": "standard", "draw": 1, "seed": seed}, &out)
	require.Equal(c.t, http.StatusOK, code)
	return out.ID, out.State
}

func fullSuit(s engine.Suit, upTo int) []engine.CardRecord {
	var out []engine.CardRecord
	for r := 1; r <= upTo; r++ {
		out = append(out, engine.CardRecord{Rank: r, Suit: s.String(), FaceUp: true})
	}
	return out
}

// nearlyWon needs one w2f to finish.
func nearlyWon() engine.Snapshot {
	return engine.Snapshot{
		Mode:      engine.ModeStandard,
		DrawCount: 1,
		Stock:     []engine.CardRecord{},
		Waste:     []engine.CardRecord{{Rank: 13, Suit: "spades", FaceUp: true}},
		Foundations: map[string][]engine.CardRecord{
			"hearts":   fullSuit(engine.SuitHearts, 13),
			"diamonds": fullSuit(engine.SuitDiamonds, 13),
			"clubs":    fullSuit(engine.SuitClubs, 13),
			"spades":   fullSuit(engine.SuitSpades, 12),
		},
		Tableau: make([][]engine.CardRecord, engine.NumColumns),
	}
}

func TestGameLifecycle(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	var initial game.StateView
	require.Equal(t, http.StatusOK, c.do("GET", "/api/game/state", nil, &initial))
	assert.Len(t, initial.Tableau, engine.NumColumns)

	id, st := c.newGame(123)
	assert.Equal(t, int64(123), st.Seed)
	assert.Len(t, st.Stock, 24)

	var moved stateBody
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/move", map[string]any{"move": map[string]any{"type": "draw"}}, &moved))
	assert.True(t, moved.OK)
	assert.Len(t, moved.State.Waste, 1)
	assert.Equal(t, 1, moved.State.Moves)

	var hint struct {
		Hint *engine.Hint `json:"hint"`
	}
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/hint", nil, &hint))
	require.NotNil(t, hint.Hint)

	var list struct {
		Items []models.Save `json:"items"`
	}
	require.Equal(t, http.StatusOK, c.do("GET", "/api/saves", nil, &list))
	var found *models.Save
	for i := range list.Items {
		if list.Items[i].ID.String() == id {
			found = &list.Items[i]
		}
	}
	require.NotNil(t, found, "new game is listed")
	assert.Equal(t, 1, found.Moves, "move was written through to the save")
}

func TestReadsDoNotCreateSaves(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		for _, path := range []string{"/api/game/state", "/api/game/hints"} {
			resp, err := http.Get(env.ts.URL + path)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
	}
	items, err := env.saves.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items, "cookieless reads leave no saves behind")
}

func TestDefaultGameSavedOnFirstMove(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	st := c.stateOf()
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/player", map[string]any{"player_name": "Eva"}, nil))
	items, err := env.saves.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/move", map[string]any{"move": map[string]any{"type": "draw"}}, nil))
	save, err := env.saves.Get(context.Background(), st.SaveID)
	require.NoError(t, err, "first move stores the session game")
	assert.Equal(t, 1, save.Moves)
	assert.Equal(t, "Eva", save.Player)
	assert.Equal(t, st.Seed, save.Seed)
}

func TestMoveErrors(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.newGame(123)
	before := c.stateOf()

	cases := []struct {
		name string
		body any
	}{
		{"illegal", map[string]any{"move": map[string]any{"type": "t2t", "from_col": 0, "start_index": 0, "to_col": 0}}},
		{"missing move", map[string]any{}},
		{"unknown tag", map[string]any{"move": map[string]any{"type": "teleport"}}},
		{"missing field", map[string]any{"move": map[string]any{"type": "t2f"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e errorBody
			assert.Equal(t, http.StatusBadRequest, c.do("POST", "/api/game/move", tc.body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
	after := c.stateOf()
	assert.Equal(t, before.Stock, after.Stock)
	assert.Equal(t, before.Tableau, after.Tableau)
	assert.Equal(t, 0, after.Moves)
}

func (c *client) stateOf() game.StateView {
	c.t.Helper()
	var st game.StateView
	require.Equal(c.t, http.StatusOK, c.do("GET", "/api/game/state", nil, &st))
	return st
}

func TestUndoRedoRoutes(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	_, start := c.newGame(7)

	var e errorBody
	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/api/game/undo", nil, &e))
	assert.Equal(t, "nothing to undo", e.Error)

	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/move", map[string]any{"move": map[string]any{"type": "draw"}}, nil))

	var undone stateBody
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/undo", nil, &undone))
	assert.Equal(t, start.Stock, undone.State.Stock)
	assert.True(t, undone.State.CanRedo)

	var redone stateBody
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/redo", nil, &redone))
	assert.Len(t, redone.State.Waste, 1)

	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/api/game/redo", nil, &e))
	assert.Equal(t, "nothing to redo", e.Error)
}

func TestNewGameValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/api/game/new", map[string]any{"draw": 2}, nil))
	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/api/game/new", map[string]any{"mode": "poker"}, nil))

	var out struct {
		State game.StateView `json:"state"`
	}
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/new", map[string]any{"mode": "vegas", "draw": 3}, &out))
	assert.Equal(t, engine.ModeVegas, out.State.Mode)
	assert.Equal(t, 3, out.State.DrawCount)
	assert.NotZero(t, out.State.Seed, "missing seed is generated")
}

func TestWinRecordsScore(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	var created struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusOK, c.do("POST", "/api/saves", map[string]any{"draw": 1, "seed": 5}, &created))
	require.Equal(t, http.StatusOK, c.do("PUT", "/api/saves/"+created.ID, map[string]any{"state": nearlyWon()}, nil))

	var loaded stateBody
	require.Equal(t, http.StatusOK, c.do("POST", "/api/saves/"+created.ID+"/load", nil, &loaded))
	assert.Equal(t, created.ID, loaded.State.SaveID.String())
	assert.Equal(t, int64(5), loaded.State.Seed)
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/player", map[string]any{"player_name": "Luis"}, nil))

	var won stateBody
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/move", map[string]any{"move": map[string]any{"type": "w2f"}}, &won))
	assert.True(t, won.State.Won)

	var board struct {
		Items []models.ScoreEntry `json:"items"`
	}
	require.Equal(t, http.StatusOK, c.do("GET", "/api/scoreboard", nil, &board))
	require.Len(t, board.Items, 1)
	assert.Equal(t, "Luis", board.Items[0].Name)
	assert.Equal(t, 10, board.Items[0].Score)

	// Undo and redo back into the won state do not score twice.
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/undo", nil, nil))
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/redo", nil, nil))
	require.Equal(t, http.StatusOK, c.do("GET", "/api/scoreboard", nil, &board))
	assert.Len(t, board.Items, 1)

	var leaders struct {
		Items []models.LeaderRow `json:"items"`
	}
	require.Equal(t, http.StatusOK, c.do("GET", "/api/leaderboard?limit=5", nil, &leaders))
	require.Len(t, leaders.Items, 1)
	assert.Equal(t, "Luis", leaders.Items[0].Player)
	assert.Equal(t, 10, leaders.Items[0].MaxScore)
}

func TestAnonymousWin(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	var created struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusOK, c.do("POST", "/api/saves", map[string]any{}, &created))
	require.Equal(t, http.StatusOK, c.do("PUT", "/api/saves/"+created.ID, map[string]any{"state": nearlyWon()}, nil))
	require.Equal(t, http.StatusOK, c.do("POST", "/api/saves/"+created.ID+"/load", nil, nil))

	var out struct {
		Moved int            `json:"moved"`
		State game.StateView `json:"state"`
	}
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/autoplay", nil, &out))
	assert.Equal(t, 1, out.Moved)
	assert.True(t, out.State.Won)

	var board struct {
		Items []models.ScoreEntry `json:"items"`
	}
	require.Equal(t, http.StatusOK, c.do("GET", "/api/scoreboard", nil, &board))
	require.Len(t, board.Items, 1)
	assert.Equal(t, models.AnonymousPlayer, board.Items[0].Name)
}

func TestSavesCRUD(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	var created struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusOK, c.do("POST", "/api/saves", map[string]any{"mode": "vegas", "draw": 3, "seed": 11}, &created))

	var got models.Save
	require.Equal(t, http.StatusOK, c.do("GET", "/api/saves/"+created.ID, nil, &got))
	assert.Equal(t, engine.ModeVegas, got.Mode)
	assert.Equal(t, int64(11), got.Seed)

	bad := nearlyWon()
	bad.Tableau = bad.Tableau[:2]
	assert.Equal(t, http.StatusBadRequest, c.do("PUT", "/api/saves/"+created.ID, map[string]any{"state": bad}, nil))

	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/saves/not-a-uuid", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do("GET", "/api/saves/00000000-0000-0000-0000-000000000001", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do("PUT", "/api/saves/00000000-0000-0000-0000-000000000001", map[string]any{}, nil))
	assert.Equal(t, http.StatusNotFound, c.do("POST", "/api/saves/00000000-0000-0000-0000-000000000001/load", nil, nil))

	require.Equal(t, http.StatusOK, c.do("DELETE", "/api/saves/"+created.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do("GET", "/api/saves/"+created.ID, nil, nil))
	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/api/saves", map[string]any{"draw": 4}, nil))
}

func TestProfileRoutes(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	var p models.Profile
	require.Equal(t, http.StatusOK, c.do("GET", "/api/profile", nil, &p))
	assert.Equal(t, models.Profile{}, p)

	want := models.Profile{Name: "José", Language: "es", HighContrast: true}
	require.Equal(t, http.StatusOK, c.do("PUT", "/api/profile", want, nil))
	require.Equal(t, http.StatusOK, c.do("GET", "/api/profile", nil, &p))
	assert.Equal(t, want, p)

	assert.Equal(t, http.StatusBadRequest, c.do("PUT", "/api/profile", models.Profile{Name: "R2D2"}, nil))

	other := env.client(t)
	require.Equal(t, http.StatusOK, other.do("GET", "/api/profile", nil, &p))
	assert.Equal(t, models.Profile{}, p, "profiles are per session")
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	a, b := env.client(t), env.client(t)
	a.newGame(1)
	b.newGame(2)

	assert.Equal(t, int64(1), a.stateOf().Seed)
	assert.Equal(t, int64(2), b.stateOf().Seed)
}

func TestForgedCookieGetsNewSession(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest("GET", env.ts.URL+"/api/game/state", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "forged"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fresh *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			fresh = ck
		}
	}
	require.NotNil(t, fresh)
	assert.NotEqual(t, "forged", fresh.Value)
	assert.True(t, fresh.HttpOnly)
}

func TestHintsRoute(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.newGame(123)

	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/game/hints?limit=abc", nil, nil))
	var out struct {
		Items []engine.Hint `json:"items"`
	}
	require.Equal(t, http.StatusOK, c.do("GET", "/api/game/hints?limit=2", nil, &out))
	assert.LessOrEqual(t, len(out.Items), 2)
	assert.NotEmpty(t, out.Items)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	var h map[string]any
	require.Equal(t, http.StatusOK, c.do("GET", "/api/health", nil, &h))
	assert.Equal(t, "ok", h["status"])

	c.newGame(3)
	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/move", map[string]any{"move": map[string]any{"type": "draw"}}, nil))

	resp, err := c.http.Get(env.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	assert.Contains(t, text, `klondike_moves_total{result="ok",type="draw"} 1`)
	assert.Contains(t, text, "klondike_games_started_total 1")
	assert.Contains(t, text, `route="/api/game/move"`)
}

func TestRequestIDEchoed(t *testing.T) {
	env := newTestEnv(t)
	req, _ := http.NewRequest("GET", env.ts.URL+"/api/health", nil)
	req.Header.Set("X-Request-Id", "abc123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc123", resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(env.ts.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Len(t, resp.Header.Get("X-Request-Id"), 24)
}

func TestRecoverMiddleware(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := WithRecover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestWebsocketStream(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.newGame(123)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/game/ws"
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPClient: c.http})
	require.NoError(t, err)
	defer conn.CloseNow()

	var ev game.GameEvent
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, game.EventSyncState, ev.Type)
	require.NotNil(t, ev.State)
	assert.Equal(t, int64(123), ev.State.Seed)

	require.Equal(t, http.StatusOK, c.do("POST", "/api/game/move", map[string]any{"move": map[string]any{"type": "draw"}}, nil))
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, game.EventMoveApplied, ev.Type)
	require.NotNil(t, ev.Move)
	assert.Equal(t, engine.MoveDraw, ev.Move.Type)

	// A new deal replaces the game and ends the stream.
	c.newGame(9)
	err = wsjson.Read(ctx, conn, &ev)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}
