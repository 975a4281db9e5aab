package websocket

import (
	"encoding/json"

	"github.com/stemsi/quizlive-backend/internal/model"
)

// ─── Events (Client → Server) ───────────────────────────────────────

type Event string

const (
	EventGetState     Event = "game:get-state"
	EventHostCreate   Event = "host:create"
	EventHostRejoin   Event = "host:rejoin"
	EventTogglePause  Event = "host:toggle-pause"
	EventPlayerJoin   Event = "player:join"
	EventPlayerRejoin Event = "player:rejoin"
	EventGameStart    Event = "game:start"
	EventPlayerAnswer Event = "player:answer"
	EventGameNext     Event = "game:next"
)

// ─── Events (Server → Client) ───────────────────────────────────────

const (
	// EventGameUpdate carries the projected session view (or null) and is
	// emitted on every mutation and on direct get-state/rejoin replies.
	EventGameUpdate Event = "game:update"
	// EventGameError carries a message string, sent only to the single
	// offending connection.
	EventGameError Event = "game:error"
	// EventGameEnded announces session termination (superseded by a new
	// game, or host-inactivity timeout).
	EventGameEnded Event = "game:ended"
)

// Envelope frames every message in both directions. Payload is decoded
// lazily once the event is known.
type Envelope struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound is the server→client frame before serialization.
type Outbound struct {
	Event   Event       `json:"event"`
	Payload interface{} `json:"payload"`
}

// ─── Inbound payloads ───────────────────────────────────────────────

// HostCreatePayload starts a brand-new game, replacing any prior session.
type HostCreatePayload struct {
	HostID   string     `json:"hostId" validate:"required,max=128"`
	QuizData model.Quiz `json:"quizData" validate:"required"`
}

// HostRejoinPayload rebinds the host's durable id to a fresh connection.
type HostRejoinPayload struct {
	HostID string `json:"hostId" validate:"required,max=128"`
}

// PlayerJoinPayload admits a new player while the session is in LOBBY.
type PlayerJoinPayload struct {
	PlayerID string `json:"playerId" validate:"required,max=128"`
	Nickname string `json:"nickname" validate:"required,min=1,max=24"`
}

// PlayerRejoinPayload rebinds an existing player's durable id.
type PlayerRejoinPayload struct {
	PlayerID string `json:"playerId" validate:"required,max=128"`
}

// PlayerAnswerPayload submits an answer index for the open question.
// AnswerIndex is a pointer so index 0 survives the required check.
type PlayerAnswerPayload struct {
	PlayerID    string `json:"playerId" validate:"required,max=128"`
	AnswerIndex *int   `json:"answerIndex" validate:"required,gte=0"`
}
