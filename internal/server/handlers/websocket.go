// internal/server/handlers/websocket.go

package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// analysisFeedSubject is the broker subject bridged onto the websocket.
const analysisFeedSubject = "analysis.article.completed"

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// feedClient bridges one websocket connection to the analysis event feed.
type feedClient struct {
	conn      *websocket.Conn
	send      chan []byte
	sub       *nats.Subscription
	log       *logrus.Logger
	done      chan struct{}
	closeOnce sync.Once
}

// AnalysisFeedHandler streams analysis completion events from NATS to
// dashboard clients. The feed is one-way; inbound messages are ignored
// and only keep the connection's liveness checks running.
func AnalysisFeedHandler(natsConn *nats.Conn, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if natsConn == nil {
			http.Error(w, "Event feed unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Warn("failed to upgrade to websocket")
			return
		}

		client := &feedClient{
			conn: conn,
			send: make(chan []byte, 64),
			log:  log,
			done: make(chan struct{}),
		}

		sub, err := natsConn.Subscribe(analysisFeedSubject, func(msg *nats.Msg) {
			select {
			case client.send <- msg.Data:
			default:
				// Slow consumer: drop the event rather than block the bus.
			}
		})
		if err != nil {
			log.WithError(err).Error("failed to subscribe to analysis events")
			conn.Close()
			return
		}
		client.sub = sub

		log.WithField("remote", r.RemoteAddr).Info("analysis feed client connected")

		go client.writePump()
		go client.readPump()
	}
}

// readPump drains inbound frames so pong handling works, and tears the
// client down when the peer goes away.
func (c *feedClient) readPump() {
	config := DefaultWebSocketConfig()

	defer c.close()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Debug("websocket read error")
			}
			return
		}
	}
}

// writePump forwards feed events to the peer and keeps it alive with pings.
func (c *feedClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// close releases the NATS subscription and the connection exactly once.
func (c *feedClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.sub != nil {
			c.sub.Unsubscribe()
		}
		c.conn.Close()
	})
}
