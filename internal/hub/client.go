package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/event"
)

// Connection lifecycle states. Authentication must complete before any
// room-join or message command is accepted.
type connState int32

const (
	stateConnecting connState = iota
	stateAuthenticating
	stateAuthenticated
	stateDisconnected
)

var (
	// tuning parameters
	writeWait          = 10 * time.Second       // time allowed to write a frame to the peer
	pongWait           = 30 * time.Second       // time allowed to read the next pong
	pingInterval       = (pongWait * 9) / 10    // ping period
	maxMessageSize     = 16 * 1024              // max inbound frame size
	sendBufSize        = 256                    // per-connection outbound buffer
	sendTimeout        = 2 * time.Second        // timeout for enqueuing outbound events
	unregisterTimeout  = 5 * time.Second        // timeout for handing a client to the unregister channel
	inboundSendTimeout = 500 * time.Millisecond // timeout for handing a frame to a worker queue
	authWindow         = 10 * time.Second       // handshake window to authenticate after connect
)

// Client is one live socket session. Identity fields are zero until the
// authentication handshake succeeds; after that the client is bound to
// its user and joined to its personal and group rooms.
type Client struct {
	ID     string
	conn   *websocket.Conn
	hub    *Hub
	egress chan event.WsEvent

	mu       sync.RWMutex
	state    connState
	userID   int64
	email    string
	userName string
	rooms    map[string]struct{}

	authTimer *time.Timer

	ctx            context.Context
	cancel         context.CancelFunc
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
}

func newClient(conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(h.ctx)
	return &Client{
		ID:         uuid.New().String(),
		conn:       conn,
		hub:        h,
		egress:     make(chan event.WsEvent, sendBufSize),
		state:      stateAuthenticating,
		rooms:      make(map[string]struct{}),
		ctx:        ctx,
		cancel:     cancel,
		connClosed: make(chan struct{}),
	}
}

// UserID returns the owning user id, zero before authentication.
func (c *Client) UserID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// UserName returns the display name bound at authentication.
func (c *Client) UserName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userName
}

// Email returns the email bound at authentication.
func (c *Client) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == stateAuthenticated
}

// bindIdentity promotes the client to the authenticated state. The
// disconnected state is terminal: a handshake that resolves after the
// connection was torn down must not resurrect it, so the transition
// fails and the caller skips registration.
func (c *Client) bindIdentity(userID int64, email, name string) bool {
	c.mu.Lock()
	if c.state == stateDisconnected {
		c.mu.Unlock()
		return false
	}
	c.userID = userID
	c.email = email
	c.userName = name
	c.state = stateAuthenticated
	c.mu.Unlock()

	if c.authTimer != nil {
		c.authTimer.Stop()
	}
	return true
}

func (c *Client) markDisconnected() {
	c.mu.Lock()
	c.state = stateDisconnected
	c.mu.Unlock()
}

// trackRoom records a room membership on the client so unregister can
// leave every room without walking all shards.
func (c *Client) trackRoom(roomID string) {
	c.mu.Lock()
	c.rooms[roomID] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) untrackRoom(roomID string) {
	c.mu.Lock()
	delete(c.rooms, roomID)
	c.mu.Unlock()
}

// roomList returns a snapshot of the client's room memberships.
func (c *Client) roomList() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	return ids
}

// readPump reads frames from the socket and hands each one to the
// worker queue assigned to this connection. Frames from one connection
// are always processed in arrival order.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-time.After(unregisterTimeout):
			c.hub.logger.Warn("unregister timed out", zap.String("client", c.ID))
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var ev event.WsEvent
			if err := c.conn.ReadJSON(&ev); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					c.hub.logger.Debug("client disconnected", zap.String("client", c.ID))
					return
				}
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					c.hub.logger.Debug("client read timeout", zap.String("client", c.ID))
					return
				}
				c.hub.logger.Debug("client read error",
					zap.String("client", c.ID), zap.Error(err))
				return
			}

			if !c.hub.dispatch(c, ev) {
				c.hub.logger.Warn("inbound queue full, dropping client",
					zap.String("client", c.ID))
				c.cancel()
				c.conn.Close()
				return
			}
		}
	}
}

// writePump drains the egress channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
		c.connClosedOnce.Do(func() { close(c.connClosed) })
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		case ev := <-c.egress:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.hub.logger.Debug("client write error",
					zap.String("client", c.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// SafeSend attempts to enqueue an event without ever blocking past the
// timeout. Returns false when the client is already gone; delivery to a
// vanished connection is a no-op, not an error.
func (c *Client) SafeSend(ev event.WsEvent, timeout time.Duration) bool {
	c.mu.RLock()
	gone := c.state == stateDisconnected
	c.mu.RUnlock()
	if gone {
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- ev:
		return true
	case <-time.After(timeout):
		return false
	}
}

// SendError emits a targeted error event to this client only.
func (c *Client) SendError(message string) {
	ev, err := event.Outbound(event.EventError, event.ErrorPayload{Message: message})
	if err != nil {
		return
	}
	c.SafeSend(ev, sendTimeout)
}

// Close tears the client down once: marks the terminal state, cancels
// the pumps, and force-closes the socket if the write pump does not.
// The egress channel is never closed; senders are fenced off by the
// state check in SafeSend and the drained context.
func (c *Client) Close() {
	c.once.Do(func() {
		c.markDisconnected()
		if c.authTimer != nil {
			c.authTimer.Stop()
		}
		c.cancel()

		if c.conn == nil {
			c.connClosedOnce.Do(func() { close(c.connClosed) })
			return
		}

		go func() {
			select {
			case <-c.connClosed:
				// write pump closed it
			case <-time.After(5 * time.Second):
				_ = c.conn.Close()
			}
		}()
	})
}
