package ws

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/parlorgames/backend/internal/game"
	"github.com/parlorgames/backend/internal/logging"
	"github.com/parlorgames/backend/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// authPattern matches "Player <id>": case-insensitive scheme, flexible
// whitespace, one token.
var authPattern = regexp.MustCompile(`^\s*(?i:player)\s+(\S+)\s*$`)

// parseAuthorization extracts the player id from an Authorization
// header value, or returns empty when the header is absent or does not
// follow the scheme.
func parseAuthorization(header string) string {
	match := authPattern.FindStringSubmatch(header)
	if match == nil {
		return ""
	}
	return match[1]
}

// Handler upgrades GET /ws and runs the connection against the manager.
// The Authorization header is captured once at handshake; every request
// on the connection is attributed to that player.
func Handler(m *game.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warnf("websocket upgrade failed: %v", err)
			return
		}
		playerID := parseAuthorization(c.GetHeader("Authorization"))
		client := newClient(conn, playerID, log)
		go client.writePump()
		go client.readPump(m)
	}
}

// readPump drives the connection: one frame in, one pass through the
// manager, queued work flushed after the lock is released. Exits when
// the peer goes away, then runs the disconnect cascade.
func (c *Client) readPump(m *game.Manager) {
	defer func() {
		m.HandleDisconnect(c).Flush()
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debugf("websocket read failed: %v", err)
			}
			return
		}
		c.log.Debugf("received: %s", logging.Mask(string(data)))
		c.handleFrame(m, data)
	}
}

// handleFrame decodes and runs one request. Any failure turns into a
// single REQUEST_FAILED on this connection; other players never hear
// about it.
func (c *Client) handleFrame(m *game.Manager, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		c.fail(err)
		return
	}
	if env.Message != protocol.MessageRegisterPlayer && c.playerID == "" {
		c.fail(protocol.NewError(protocol.ReasonMissingAuth))
		return
	}
	q, err := m.HandleRequest(c, env, c.playerID)
	if err != nil {
		c.fail(err)
		return
	}
	q.Flush()
}

// fail reports a rejected request back to the offending connection.
func (c *Client) fail(err error) {
	data, encodeErr := protocol.Encode(protocol.NewFailure(err))
	if encodeErr != nil {
		c.log.Errorf("encoding failure event: %v", encodeErr)
		return
	}
	if sendErr := c.Send(data); sendErr != nil {
		c.log.Debugf("reporting failure: %v", sendErr)
	}
}
