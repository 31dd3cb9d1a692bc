// Package eventstream pushes session events to WebSocket clients.
package eventstream

import (
	"net/http"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/metrics"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type subscriber struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Hub fans events out to the subscribers of each session. Slow subscribers lose events
// instead of blocking the publisher.
type Hub struct {
	upgrader websocket.Upgrader
	accept   func(sessionID string) bool
	logger   port.Logger

	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
	wg     sync.WaitGroup
}

var _ port.EventPublisher = (*Hub)(nil)

// NewHub creates a hub. accept decides whether a session id may subscribe; a nil accept
// admits every non-empty id. checkOrigin may be nil to allow all origins.
func NewHub(accept func(sessionID string) bool, checkOrigin func(r *http.Request) bool, l port.Logger) *Hub {
	if accept == nil {
		accept = func(string) bool { return true }
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		accept:   accept,
		logger:   l,
		subs:     make(map[*subscriber]struct{}),
	}
}

// Publish implements port.EventPublisher.
func (h *Hub) Publish(event entity.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("Failed to marshal event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if s.sessionID != event.SessionID {
			continue
		}
		select {
		case s.send <- msg:
		default:
			h.logger.Warn("Dropping event for slow subscriber", "session", s.sessionID, "type", event.Type)
		}
	}
}

// Handler upgrades requests carrying ?session=<id> to a WebSocket subscription.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" || !h.accept(sessionID) {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("Websocket upgrade failed", "error", err)
			return
		}

		s := &subscriber{sessionID: sessionID, conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			_ = conn.Close()
			return
		}
		h.subs[s] = struct{}{}
		h.wg.Add(2)
		h.mu.Unlock()
		metrics.EventSubscribers.Inc()
		h.logger.Debug("Event subscriber connected", "session", sessionID)

		go h.writeLoop(s)
		go h.readLoop(s)
	}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and waits for their goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for s := range h.subs {
		s.close()
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		metrics.EventSubscribers.Dec()
	}
	h.mu.Unlock()
	s.close()
}

// readLoop consumes client frames so pongs and close frames are processed.
func (h *Hub) readLoop(s *subscriber) {
	defer h.wg.Done()
	defer h.remove(s)

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(s *subscriber) {
	defer h.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("Websocket write failed", "session", s.sessionID, "error", err)
				h.remove(s)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(s)
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
