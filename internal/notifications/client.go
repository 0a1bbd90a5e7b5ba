package notifications

import (
	"log/slog"
	"sync"
	"time"

	"empleos/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// Keepalive timings of a notification socket. The server pings every
// pingEvery; a peer silent for idleTimeout is dropped.
const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingEvery    = idleTimeout * 9 / 10

	// Clients only answer pings and send close frames.
	inboundLimit = 512
	sendBuffer   = 32
)

const hubLabel = "notifications"

// Client is one open notification socket. The hub queues events on send;
// Serve writes them out.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Serve runs the socket until the peer leaves or the hub shuts down. The
// caller's goroutine reads; a second goroutine writes.
func (c *Client) Serve() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	c.readLoop()
	c.hub.UnregisterClient(c)
	c.closeSend()
	<-done
}

func (c *Client) readLoop() {
	c.conn.SetReadLimit(inboundLimit)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(idleTimeout)) }
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Default().Debug("notification socket dropped",
					slog.Any("user_id", c.userID), slog.String("error", err.Error()))
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return c.conn.WriteMessage(kind, data)
	}
	for {
		select {
		case msg, open := <-c.send:
			if !open {
				_ = write(websocket.CloseMessage, nil)
				return
			}
			if write(websocket.TextMessage, msg) != nil {
				return
			}
		case <-ping.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

// TrySend queues msg without blocking. When the buffer is full the event
// is dropped; it is still in the user's inbox.
func (c *Client) TrySend(msg []byte) {
	defer func() {
		// send was closed by Shutdown.
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(hubLabel, "closed").Inc()
		}
	}()

	select {
	case c.send <- msg:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(hubLabel, "full").Inc()
	}
}
