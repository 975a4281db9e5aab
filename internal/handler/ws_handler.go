package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlive-backend/internal/game"
	"github.com/stemsi/quizlive-backend/internal/logger"
	"github.com/stemsi/quizlive-backend/internal/validator"
	ws "github.com/stemsi/quizlive-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) gorilla.Upgrader {
	return gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler upgrades connections into the game room and pipes their
// events into the engine.
type WSHandler struct {
	engine   *game.Engine
	hub      *ws.Hub
	log      zerolog.Logger
	upgrader gorilla.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(engine *game.Engine, hub *ws.Hub, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		engine:   engine,
		hub:      hub,
		log:      logger.Component(log, "ws_handler"),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws
// Upgrades to WebSocket and joins the session room. Every inbound frame
// is validated here and dispatched as a typed command; the engine never
// sees a malformed payload.
func (h *WSHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(conn, h.log)
	h.hub.Register(client)
	go client.WritePump()

	wsLog := h.log.With().Str("conn_id", client.ID()).Logger()
	wsLog.Info().Msg("Client connected")

	defer func() {
		h.hub.Unregister(client)
		// Serialized with every other mutation, so host/player offline
		// bookkeeping cannot race an in-flight command.
		h.engine.Dispatch(game.Disconnected{ConnID: client.ID()})
		client.Close()
		wsLog.Info().Msg("Client disconnected")
	}()

	for {
		var env ws.Envelope
		if err := client.ReadEnvelope(&env); err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseGoingAway, gorilla.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		h.route(client, wsLog, &env)
	}
}

func (h *WSHandler) route(client *ws.Client, wsLog zerolog.Logger, env *ws.Envelope) {
	switch env.Event {
	case ws.EventGetState:
		h.engine.Dispatch(game.GetState{Conn: client})

	case ws.EventHostCreate:
		var p ws.HostCreatePayload
		if !h.decode(client, wsLog, env, &p) {
			return
		}
		h.engine.Dispatch(game.HostCreate{Conn: client, HostID: p.HostID, Quiz: p.QuizData})

	case ws.EventHostRejoin:
		var p ws.HostRejoinPayload
		if !h.decode(client, wsLog, env, &p) {
			return
		}
		h.engine.Dispatch(game.HostRejoin{Conn: client, HostID: p.HostID})

	case ws.EventTogglePause:
		h.engine.Dispatch(game.TogglePause{Conn: client})

	case ws.EventPlayerJoin:
		var p ws.PlayerJoinPayload
		if !h.decode(client, wsLog, env, &p) {
			return
		}
		nickname := strings.TrimSpace(p.Nickname)
		if nickname == "" {
			client.Send(ws.EventGameError, "Invalid payload: nickname is a required field")
			return
		}
		h.engine.Dispatch(game.PlayerJoin{Conn: client, PlayerID: p.PlayerID, Nickname: nickname})

	case ws.EventPlayerRejoin:
		var p ws.PlayerRejoinPayload
		if !h.decode(client, wsLog, env, &p) {
			return
		}
		h.engine.Dispatch(game.PlayerRejoin{Conn: client, PlayerID: p.PlayerID})

	case ws.EventGameStart:
		h.engine.Dispatch(game.StartGame{Conn: client})

	case ws.EventPlayerAnswer:
		var p ws.PlayerAnswerPayload
		if !h.decode(client, wsLog, env, &p) {
			return
		}
		h.engine.Dispatch(game.PlayerAnswer{Conn: client, PlayerID: p.PlayerID, AnswerIndex: *p.AnswerIndex})

	case ws.EventGameNext:
		h.engine.Dispatch(game.AdvanceGame{Conn: client})

	default:
		wsLog.Debug().Str("event", string(env.Event)).Msg("Unsupported event")
		client.Send(ws.EventGameError, "Unsupported event.")
	}
}

// decode unmarshals and validates an inbound payload. On failure the
// offending connection gets a game:error and the command never reaches
// the engine.
func (h *WSHandler) decode(client *ws.Client, wsLog zerolog.Logger, env *ws.Envelope, dst interface{}) bool {
	if len(env.Payload) == 0 {
		client.Send(ws.EventGameError, "Missing payload.")
		return false
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		wsLog.Debug().Err(err).Str("event", string(env.Event)).Msg("Malformed payload")
		client.Send(ws.EventGameError, "Malformed payload.")
		return false
	}
	if fields := validator.Struct(dst); fields != nil {
		wsLog.Debug().Interface("fields", fields).Str("event", string(env.Event)).Msg("Payload validation failed")
		client.Send(ws.EventGameError, "Invalid payload: "+firstField(fields))
		return false
	}
	return true
}

func firstField(fields map[string]string) string {
	for _, msg := range fields {
		return msg
	}
	return "validation failed"
}
