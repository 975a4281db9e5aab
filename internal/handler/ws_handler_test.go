package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlive-backend/internal/config"
	"github.com/stemsi/quizlive-backend/internal/game"
	"github.com/stemsi/quizlive-backend/internal/validator"
	ws "github.com/stemsi/quizlive-backend/internal/websocket"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	m.Run()
}

type frame struct {
	Event   ws.Event        `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type testServer struct {
	srv    *httptest.Server
	cancel context.CancelFunc
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		ScoreDecayFactor:      2.0,
		HostInactivityTimeout: time.Minute,
		CommandQueueSize:      16,
	}
	log := zerolog.Nop()
	hub := ws.NewHub(log)
	engine := game.NewEngine(cfg, hub, log)

	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)

	r := gin.New()
	r.GET("/ws", NewWSHandler(engine, hub, log, nil).Stream)

	srv := httptest.NewServer(r)
	ts := &testServer{srv: srv, cancel: cancel}
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return ts
}

func (ts *testServer) dial(t *testing.T) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws"
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d, want 101", resp.StatusCode)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *gorilla.Conn, event ws.Event, payload interface{}) {
	t.Helper()
	env := map[string]interface{}{"event": event}
	if payload != nil {
		env["payload"] = payload
	}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func read(t *testing.T, conn *gorilla.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func readUpdate(t *testing.T, conn *gorilla.Conn) *game.SessionView {
	t.Helper()
	f := read(t, conn)
	if f.Event != ws.EventGameUpdate {
		t.Fatalf("event = %s, want game:update (payload %s)", f.Event, f.Payload)
	}
	if string(f.Payload) == "null" {
		return nil
	}
	var view game.SessionView
	if err := json.Unmarshal(f.Payload, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return &view
}

func hostQuiz() map[string]interface{} {
	return map[string]interface{}{
		"title": "Capitals",
		"questions": []map[string]interface{}{
			{
				"text":      "Capital of France?",
				"timeLimit": 20,
				"options": []map[string]interface{}{
					{"text": "Paris", "isCorrect": true},
					{"text": "Lyon"},
				},
			},
		},
	}
}

func TestStreamFullGameFlow(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)

	// Create: the broadcast reaches our own connection too.
	send(t, conn, ws.EventHostCreate, map[string]interface{}{
		"hostId":   "host-1",
		"quizData": hostQuiz(),
	})
	view := readUpdate(t, conn)
	if view == nil || view.State != "LOBBY" {
		t.Fatalf("view = %+v, want LOBBY", view)
	}

	// Join a player from a second connection.
	player := ts.dial(t)
	send(t, player, ws.EventPlayerJoin, map[string]interface{}{
		"playerId": "p1",
		"nickname": "alice",
	})
	view = readUpdate(t, player)
	if len(view.Players) != 1 || view.Players[0].Nickname != "alice" {
		t.Fatalf("players = %+v, want [alice]", view.Players)
	}
	_ = readUpdate(t, conn) // host sees the same broadcast

	// Duplicate nickname from a third connection fails.
	dupe := ts.dial(t)
	send(t, dupe, ws.EventPlayerJoin, map[string]interface{}{
		"playerId": "p2",
		"nickname": "ALICE",
	})
	if f := read(t, dupe); f.Event != ws.EventGameError {
		t.Fatalf("event = %s, want game:error", f.Event)
	}

	// Start: options must be stripped of correctness in flight.
	send(t, conn, ws.EventGameStart, nil)
	view = readUpdate(t, conn)
	if view.State != "QUESTION" {
		t.Fatalf("state = %s, want QUESTION", view.State)
	}
	if view.QuestionStartedAt == nil {
		t.Fatal("questionStartedAt missing during QUESTION")
	}
	for _, opt := range view.Quiz.Questions[0].Options {
		if opt.IsCorrect != nil {
			t.Fatal("isCorrect leaked over the wire during QUESTION")
		}
	}

	// Direct state request is answered on this connection only.
	send(t, conn, ws.EventGetState, nil)
	_ = readUpdate(t, player) // player's copy of the start broadcast
	view = readUpdate(t, conn)
	if view.State != "QUESTION" {
		t.Fatalf("get-state view = %s, want QUESTION", view.State)
	}
}

func TestStreamMalformedPayloadRejected(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)

	send(t, conn, ws.EventPlayerJoin, map[string]interface{}{
		"playerId": "p1",
		// nickname missing
	})
	if f := read(t, conn); f.Event != ws.EventGameError {
		t.Fatalf("event = %s, want game:error", f.Event)
	}

	send(t, conn, ws.EventHostCreate, "not-an-object")
	if f := read(t, conn); f.Event != ws.EventGameError {
		t.Fatalf("event = %s, want game:error", f.Event)
	}
}

func TestStreamUnsupportedEvent(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)

	send(t, conn, ws.Event("game:hack"), nil)
	if f := read(t, conn); f.Event != ws.EventGameError {
		t.Fatalf("event = %s, want game:error", f.Event)
	}
}
