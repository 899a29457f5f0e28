package hub

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"github.com/OmerBirol/lenslight-tr/internal/event"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	// tuning parameters
	writeWait         = 10 * time.Second       // time allowed to write a message to the peer
	pongWait          = 20 * time.Second       // time allowed to read the next pong message from the peer
	pingInterval      = (pongWait * 9) / 10    // send pings to peer with this period
	maxMessageSize    = 16 * 1024 * 1024       // max inbound frame; image sends arrive base64-encoded
	sendBufSize       = 256                    // per-connection outbound buffer size
	sendTimeout       = 2 * time.Second        // timeout for enqueuing outbound messages
	kickOnFull        = true                   // when true, disconnect client when egress is full
	registerTimeout   = 5 * time.Second        // timeout for client registration
	unregisterTimeout = 5 * time.Second        // timeout for client unregistration
)

// Client is one live connection session. It opens unidentified, becomes
// identified when the identify event announces a user, and terminates when
// the transport closes.
type Client struct {
	ID      string
	conn    *websocket.Conn
	manager *Hub
	egress  chan event.WsEvent

	// identity and joined group scopes, set after the handshake
	mu     sync.RWMutex
	userID string
	rooms  map[string]struct{}

	// cancel or stop goroutine
	cancel         context.CancelFunc
	ctx            context.Context
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
	closed         bool
	closedMu       sync.RWMutex
}

// RegisterClient creates a new unidentified client for a WebSocket
// connection and starts its read/write pumps.
func RegisterClient(conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		ID:         uuid.New().String(),
		conn:       conn,
		manager:    h,
		egress:     make(chan event.WsEvent, sendBufSize),
		rooms:      make(map[string]struct{}),
		cancel:     cancel,
		ctx:        ctx,
		connClosed: make(chan struct{}),
	}

	select {
	case h.register <- client:
		go client.ReadMessages()
		go client.WriteMessages()
		log.Printf("client %s connected", client.ID)
		return client
	case <-time.After(registerTimeout):
		log.Printf("failed to register client %s: timeout", client.ID)
		cancel()
		conn.Close()
		return nil
	}
}

// UserID returns the announced identity, or "" while unidentified.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// Identified reports whether the connection has announced an identity.
func (c *Client) Identified() bool {
	return c.UserID() != ""
}

func (c *Client) identify(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

func (c *Client) addRoom(groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[groupID] = struct{}{}
}

func (c *Client) joinedRooms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for groupID := range c.rooms {
		rooms = append(rooms, groupID)
	}
	return rooms
}

// ReadMessages pumps inbound events and hands each to the hub's dispatcher
// on this goroutine, preserving per-sender ordering.
func (c *Client) ReadMessages() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-time.After(unregisterTimeout):
			log.Printf("failed to unregister client %s: timeout", c.ID)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

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
					log.Printf("client disconnected: %v", c.ID)
					return
				}

				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseInternalServerErr,
					websocket.CloseProtocolError,
				) {
					log.Printf("unexpected close for %s: %v", c.ID, err)
				}

				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					log.Printf("client %s timed out - closing connection", c.ID)
					return
				}

				log.Printf("error reading from client %s: %v", c.ID, err)
				return
			}

			c.manager.handleEvent(ev, c)
		}
	}
}

// WriteMessages pumps the egress queue to the connection and keeps the
// ping/pong heartbeat alive.
func (c *Client) WriteMessages() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()

		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-c.egress:
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, nil); err != nil {
					log.Printf("connection closed: %v", err)
				}
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Printf("write error for client %s: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Printf("ping error for client %s: %v", c.ID, err)
				return
			}
		}
	}
}

func (c *Client) pongHandler(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// SafeSend attempts to enqueue an event for delivery. Returns false if the
// client is closed or the egress buffer stays full past the timeout.
func (c *Client) SafeSend(ev event.WsEvent, timeout time.Duration) bool {
	if c.IsClosed() {
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- ev:
		return true
	case <-time.After(timeout):
		if kickOnFull {
			log.Printf("egress full, disconnecting client %s", c.ID)
			select {
			case c.manager.unregister <- c:
			case <-time.After(unregisterTimeout):
				log.Printf("failed to unregister client %s: timeout", c.ID)
			}
		}
		return false
	}
}

// Close tears the session down once; safe to call from any goroutine.
func (c *Client) Close() {
	c.once.Do(func() {
		c.closedMu.Lock()
		c.closed = true
		c.closedMu.Unlock()

		c.cancel()
		close(c.egress)

		// Wait for WriteMessages to close conn, or force close after timeout
		go func() {
			select {
			case <-c.connClosed:
			case <-time.After(5 * time.Second):
				_ = c.conn.Close()
				log.Printf("safety timeout: force closed connection for client %s", c.ID)
			}
		}()
	})
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}
