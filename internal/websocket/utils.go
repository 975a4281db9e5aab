package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single outbound frame.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before it is
	// considered dead. Refreshed on every pong.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// WriteTyped sends a strongly-typed payload over the WebSocket with a
// write deadline.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// ReadEnvelope reads and decodes the next inbound frame. The read
// deadline is refreshed by the pong handler installed in Client.
func ReadEnvelope(conn *websocket.Conn, env *Envelope) error {
	return conn.ReadJSON(env)
}
