// internal/web/websocket.go - live check cycle feed
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"netwatch/internal/metrics"
	"netwatch/internal/monitoring"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
	hub  *wsHub
}

// wsHub fans out check cycle results to connected clients. Clients are
// registered on upgrade and dropped when their send buffer fills or
// their connection dies.
type wsHub struct {
	mu      sync.Mutex
	clients map[*wsClient]bool
	metrics *metrics.Collector
}

func newWSHub(collector *metrics.Collector) *wsHub {
	return &wsHub{
		clients: make(map[*wsClient]bool),
		metrics: collector,
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade websocket")
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan WSMessage, 256),
		hub:  s.hub,
	}
	s.hub.register(client)

	go client.writePump()
	go client.readPump()
}

// BroadcastCycle publishes one completed check cycle's summaries.
func (h *wsHub) BroadcastCycle(summaries []monitoring.Summary) {
	h.broadcast(WSMessage{
		Type: "check_cycle",
		Data: gin.H{
			"timestamp": time.Now(),
			"results":   summaries,
		},
	})
}

func (h *wsHub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.RecordWebSocketConnection(1)
	}
}

func (h *wsHub) unregister(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok && h.metrics != nil {
		h.metrics.RecordWebSocketConnection(-1)
	}
}

func (h *wsHub) broadcast(message WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.hub.unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
