package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlive-backend/internal/config"
	"github.com/stemsi/quizlive-backend/internal/game"
	"github.com/stemsi/quizlive-backend/internal/handler"
	"github.com/stemsi/quizlive-backend/internal/response"
	ws "github.com/stemsi/quizlive-backend/internal/websocket"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		GinMode:          gin.TestMode,
		ScoreDecayFactor: 2.0,
		CommandQueueSize: 8,
	}
	log := zerolog.Nop()
	hub := ws.NewHub(log)
	engine := game.NewEngine(cfg, hub, log)
	return SetupRouter(&Handlers{
		WS:      handler.NewWSHandler(engine, hub, log, nil),
		Session: handler.NewSessionHandler(engine),
	}, cfg)
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Status != "ok" {
		t.Fatalf("status = %q, want ok", body.Data.Status)
	}
}

func TestUnknownRouteReturnsTypedNotFound(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body struct {
		Error *struct {
			Code response.ErrCode `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error == nil || body.Error.Code != response.ErrNotFound {
		t.Fatalf("error = %+v, want code NOT_FOUND", body.Error)
	}
}
