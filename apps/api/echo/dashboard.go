package echoapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/entry"
	"github.com/oinstituto/atlas/core/expectation"
	"github.com/oinstituto/atlas/core/realtime"
)

const (
	wsWriteWait   = 10 * time.Second
	wsPongWait    = 60 * time.Second
	wsPingPeriod  = wsPongWait * 9 / 10
	wsClientQueue = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // the dashboard is public
}

type dashboard struct {
	Total      int                         `json:"total"`
	Entries    []entry.Entry               `json:"entries"`
	Chart      []expectation.Slice         `json:"chart"`
	Categories []expectation.CategoryCount `json:"categories"`
	Cloud      []expectation.Bubble        `json:"cloud"`
}

func newDashboard(entries []entry.Entry) dashboard {
	words := expectation.Words(entries)
	return dashboard{
		Total:      len(entries),
		Entries:    entries,
		Chart:      expectation.Chart(words),
		Categories: expectation.CountCategories(words),
		Cloud:      expectation.Cloud(entries),
	}
}

// streamMessage is one websocket frame: a full snapshot, or one change.
type streamMessage struct {
	Type    string        `json:"type"` // snapshot | insert | delete
	Entries []entry.Entry `json:"entries,omitempty"`
	Entry   *entry.Entry  `json:"entry,omitempty"`
}

func snapshotMessage(entries []entry.Entry) streamMessage {
	if entries == nil {
		entries = []entry.Entry{}
	}
	return streamMessage{Type: "snapshot", Entries: entries}
}

// hub fans the board changes out to the websocket clients.
type hub struct {
	watcher *realtime.Watcher
	logger  core.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan streamMessage
	done chan struct{}
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.done) })
}

// push never blocks: a client that cannot keep up is dropped.
func (c *wsClient) push(msg streamMessage) {
	select {
	case c.send <- msg:
	default:
		c.close()
	}
}

func registerDashboardAPI(g *echo.Group, watcher *realtime.Watcher, logger core.Logger) *hub {
	h := &hub{watcher: watcher, logger: logger, clients: make(map[*wsClient]struct{})}

	dg := g.Group("/dashboard")
	dg.GET("", h.dashboard)
	dg.GET("/ws", h.stream)
	return h
}

func (h *hub) dashboard(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, newDashboard(h.watcher.Board().Snapshot()))
}

func (h *hub) stream(ctx echo.Context) error {
	if err := h.watcher.Err(); err != nil {
		return err // a shutdown error: 500, then a graceful stop
	}
	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		h.logger.Warn("dashboard stream: upgrade failed", err)
		return nil // the upgrader already answered
	}

	c := &wsClient{conn: conn, send: make(chan streamMessage, wsClientQueue), done: make(chan struct{})}
	snapshot, detach := h.watcher.Attach(func(ch entry.Change) {
		switch ch.Op {
		case entry.OpInsert, entry.OpDelete:
			e := ch.Entry.Summary()
			c.push(streamMessage{Type: strings.ToLower(string(ch.Op)), Entry: &e})
		case entry.OpResync:
			c.push(snapshotMessage(h.watcher.Board().Snapshot()))
		}
	})

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("dashboard stream: client connected", map[string]interface{}{"clients": total})

	defer func() {
		detach()
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	go h.readPump(c)
	h.writePump(c, snapshot)
	return nil
}

// readPump only watches for the client going away.
func (h *hub) readPump(c *wsClient) {
	defer c.close()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump sends the snapshot first, then every queued change.
func (h *hub) writePump(c *wsClient, snapshot []entry.Entry) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	write := func(msg streamMessage) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.logger.Debug("dashboard stream: write failed", err)
			return false
		}
		return true
	}

	if !write(snapshotMessage(snapshot)) {
		return
	}
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
			return
		case msg := <-c.send:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
	}
}
