package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

var errClientClosed = errors.New("connection is closed")

// Client is one websocket connection. It satisfies game.Transport:
// Send and Close may be called from any goroutine, including after the
// peer has gone away.
type Client struct {
	conn     *websocket.Conn
	log      *zap.SugaredLogger
	playerID string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn, playerID string, log *zap.SugaredLogger) *Client {
	return &Client{
		conn:     conn,
		log:      log,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
	}
}

// Send queues one frame for the write pump. A closed or backed-up
// connection rejects the frame; the caller treats that as a dead peer.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// Close shuts the connection down. Safe to call more than once and
// concurrently with Send.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	return c.conn.Close()
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings. One per connection; exits when the
// channel closes or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debugf("websocket write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debugf("websocket ping failed: %v", err)
				return
			}
		}
	}
}
