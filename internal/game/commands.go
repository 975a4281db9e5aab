package game

import (
	"github.com/stemsi/quizlive-backend/internal/model"
	ws "github.com/stemsi/quizlive-backend/internal/websocket"
)

// Conn is the engine's view of one live connection: a volatile handle for
// authorization checks plus a non-blocking send path for direct replies.
type Conn interface {
	ID() string
	Send(event ws.Event, payload interface{})
}

// Broadcaster fans an event out to every connection in the room.
type Broadcaster interface {
	Broadcast(event ws.Event, payload interface{})
}

// Command is the closed set of inputs processed by the engine's run loop.
// Every mutation of the session flows through exactly one of these.
type Command interface {
	isCommand()
}

// GetState asks for the current projected view, delivered to the sender only.
type GetState struct {
	Conn Conn
}

// HostCreate starts a brand-new session, replacing and terminating any
// prior one.
type HostCreate struct {
	Conn   Conn
	HostID string
	Quiz   model.Quiz
}

// HostRejoin rebinds the durable host id to a fresh connection.
type HostRejoin struct {
	Conn   Conn
	HostID string
}

// TogglePause flips between PAUSED and the state it was entered from.
type TogglePause struct {
	Conn Conn
}

// PlayerJoin admits a player while the session is in LOBBY.
type PlayerJoin struct {
	Conn     Conn
	PlayerID string
	Nickname string
}

// PlayerRejoin rebinds an existing player's durable id to a fresh connection.
type PlayerRejoin struct {
	Conn     Conn
	PlayerID string
}

// StartGame moves LOBBY to the first QUESTION.
type StartGame struct {
	Conn Conn
}

// PlayerAnswer records a player's single answer for the open question.
type PlayerAnswer struct {
	Conn        Conn
	PlayerID    string
	AnswerIndex int
}

// AdvanceGame is the host's game:next trigger.
type AdvanceGame struct {
	Conn Conn
}

// Disconnected reports that a connection handle went away. Identity is
// never invalidated by it: durable ids stay bound until teardown.
type Disconnected struct {
	ConnID string
}

// hostTimeout is posted by the inactivity timer; generation guards
// against stale timers that fired before being superseded.
type hostTimeout struct {
	generation uint64
}

// snapshotRequest serves read-only projections (REST snapshot) through
// the same serialization point as every mutation.
type snapshotRequest struct {
	reply chan *SessionView
}

func (GetState) isCommand()        {}
func (HostCreate) isCommand()      {}
func (HostRejoin) isCommand()      {}
func (TogglePause) isCommand()     {}
func (PlayerJoin) isCommand()      {}
func (PlayerRejoin) isCommand()    {}
func (StartGame) isCommand()       {}
func (PlayerAnswer) isCommand()    {}
func (AdvanceGame) isCommand()     {}
func (Disconnected) isCommand()    {}
func (hostTimeout) isCommand()     {}
func (snapshotRequest) isCommand() {}
