package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/metrics"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

type watcher struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (w *watcher) close() {
	w.once.Do(func() { close(w.send) })
}

// Hub broadcasts change events to every connected websocket watcher.
type Hub struct {
	upgrader websocket.Upgrader
	logger   ectologger.Logger

	mu       sync.Mutex
	watchers map[*watcher]struct{}
	closed   bool
}

func NewHub(logger ectologger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:   logger,
		watchers: make(map[*watcher]struct{}),
	}
}

// ServeWS handles GET /sync/watch. The connection receives one JSON change event per
// message until either side closes it.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote the error response
		h.logger.WithContext(c.Request().Context()).WithError(err).Warn("websocket upgrade failed")
		return nil
	}

	w := &watcher{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(w) {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		return conn.Close()
	}

	go h.writeLoop(w)
	h.readLoop(w)
	return nil
}

// Notify broadcasts event. Watchers too slow to keep up are disconnected and can resync
// with a pull.
func (h *Hub) Notify(ctx context.Context, event models.ChangeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("failed to marshal change event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for w := range h.watchers {
		select {
		case w.send <- data:
		default:
			h.logger.WithContext(ctx).Warn("dropping slow change watcher")
			h.removeLocked(w)
		}
	}
}

// Count returns the number of connected watchers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// Close disconnects every watcher and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for w := range h.watchers {
		h.removeLocked(w)
	}
}

func (h *Hub) add(w *watcher) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.watchers[w] = struct{}{}
	metrics.WatchersConnected.Inc()
	return true
}

func (h *Hub) remove(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(w)
}

func (h *Hub) removeLocked(w *watcher) {
	if _, ok := h.watchers[w]; !ok {
		return
	}
	delete(h.watchers, w)
	metrics.WatchersConnected.Dec()
	w.close()
}

// readLoop discards client messages and returns when the connection fails.
func (h *Hub) readLoop(w *watcher) {
	defer func() {
		h.remove(w)
		_ = w.conn.Close()
	}()

	w.conn.SetReadLimit(512)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(w *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = w.conn.Close()
	}()

	for {
		select {
		case data, ok := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
