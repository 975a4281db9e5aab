package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// sendQueueSize bounds the per-connection outbound queue. A client that
// cannot drain this many frames is effectively dead.
const sendQueueSize = 32

// Client wraps one live WebSocket connection. Its uuid is the volatile
// connection handle: durable host/player ids are bound to it by the game
// engine and rebound on reconnect.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan Outbound
	log  zerolog.Logger
	once sync.Once
	done chan struct{}
}

// NewClient allocates a fresh connection handle around an upgraded conn.
func NewClient(conn *websocket.Conn, log zerolog.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan Outbound, sendQueueSize),
		log:  log.With().Str("conn_id", id).Logger(),
		done: make(chan struct{}),
	}
}

// ID returns the volatile connection handle.
func (c *Client) ID() string {
	return c.id
}

// Send queues an event for delivery. It never blocks: when the queue is
// full the frame is dropped, since every game:update supersedes the last
// and a stalled client will be refreshed by the next broadcast anyway.
func (c *Client) Send(event Event, payload interface{}) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- Outbound{Event: event, Payload: payload}:
	default:
		c.log.Warn().Str("event", string(event)).Msg("Send queue full, dropping frame")
	}
}

// WritePump drains the send queue onto the wire and keeps the connection
// alive with periodic pings. Run in its own goroutine; returns when Close
// is called or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := WriteTyped(c.conn, msg); err != nil {
				c.log.Debug().Err(err).Msg("Write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadEnvelope reads the next inbound frame, refreshing the liveness
// deadline. The pong handler is installed on first use.
func (c *Client) ReadEnvelope(env *Envelope) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return ReadEnvelope(c.conn, env)
}

// Close tears down the connection and stops the write pump. Idempotent.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
