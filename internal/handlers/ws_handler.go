package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quizmaster/internal/security"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WSHandler carries quiz events over a websocket. Each client message is an
// Event and is answered with a StateView.
type WSHandler struct {
	quiz     *QuizHandler
	limiter  *security.RateLimiter
	upgrader websocket.Upgrader
}

// NewWSHandler creates a websocket handler. The upgrader keeps gorilla's
// same-origin check.
func NewWSHandler(quiz *QuizHandler, middleware *Middleware) *WSHandler {
	return &WSHandler{
		quiz:    quiz,
		limiter: middleware.limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 5 * time.Second,
		},
	}
}

// Register adds the websocket route to mux
func (h *WSHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", h.Serve)
}

type wsClient struct {
	conn   *websocket.Conn
	userID string
	send   chan StateView
	done   chan struct{}
}

// Serve upgrades the connection and runs the client's pumps
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed for %s: %v", userID, err)
		return
	}

	c := &wsClient{conn: conn, userID: userID, send: make(chan StateView, 8), done: make(chan struct{})}
	go h.writePump(c)
	h.readPump(c)
}

func (h *WSHandler) readPump(c *wsClient) {
	defer func() {
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Websocket read error for %s: %v", c.userID, err)
			}
			return
		}

		var view StateView
		if ev.Type != EventState && h.limiter != nil && !h.limiter.Allow(c.userID) {
			view, _ = h.quiz.Apply(c.userID, Event{Type: EventState})
			view.Error = ErrTooManyRequests
		} else {
			var err error
			view, err = h.quiz.Apply(c.userID, ev)
			if err != nil {
				log.Printf("Websocket event %q for %s: %v", ev.Type, c.userID, err)
			}
		}
		select {
		case c.send <- view:
		case <-c.done:
			return
		}
	}
}

func (h *WSHandler) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	for {
		select {
		case view, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(view); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
