package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	// The console is a local tool; CORS already allows any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is sent from server to browser.
type wsMessage struct {
	Type     string          `json:"type"`
	ClientID string          `json:"client_id,omitempty"`
	Status   *statusResponse `json:"status,omitempty"`
	Lines    []consoleLine   `json:"lines,omitempty"`
}

// wsInbound is sent from browser to server.
type wsInbound struct {
	Type string `json:"type"`
}

type client struct {
	id     string
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	pongs  chan struct{}
	once   sync.Once
}

// close unblocks both loops. Close and WriteControl may be called
// concurrently with the writer goroutine.
func (cl *client) close(code int, reason string) {
	cl.once.Do(func() {
		cl.cancel()
		_ = cl.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = cl.conn.Close()
	})
}

// hub tracks live websocket clients so Stop can disconnect them.
type hub struct {
	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

func newHub() *hub {
	return &hub{clients: make(map[string]*client)}
}

func (h *hub) add(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl.id] = cl
	return true
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, cl := range clients {
		cl.close(websocket.CloseGoingAway, "server stopping")
	}
}

func (b *Backend) handleWS(c *gin.Context) {
	since, err := parseSince(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since must be a non-negative integer"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	cl := &client{
		id:     uuid.NewString(),
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		pongs:  make(chan struct{}, 1),
	}
	if !b.hub.add(cl) {
		cl.close(websocket.CloseGoingAway, "server stopping")
		return
	}
	defer b.hub.remove(cl.id)

	b.opts.Metrics.IncWSConnections()
	defer b.opts.Metrics.DecWSConnections()
	logger := b.logger.With(zap.String("client_id", cl.id))
	logger.Debug("websocket client connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.writeLoop(cl, since, logger)
	}()

	b.readLoop(cl)
	cl.close(websocket.CloseNormalClosure, "")
	<-done
	logger.Debug("websocket client disconnected")
}

// readLoop handles pings until the connection fails or is closed.
func (b *Backend) readLoop(cl *client) {
	cl.conn.SetReadLimit(maxMessageSize)
	for {
		var msg wsInbound
		if err := cl.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			select {
			case cl.pongs <- struct{}{}:
			default:
			}
		}
	}
}

// writeLoop owns every data write on the connection. It sends a hello, then
// the status and any console lines after since on every tick.
func (b *Backend) writeLoop(cl *client, since uint64, logger *zap.Logger) {
	defer cl.close(websocket.CloseGoingAway, "")

	if err := b.send(cl, wsMessage{Type: "hello", ClientID: cl.id}); err != nil {
		return
	}
	cursor, err := b.pushUpdate(cl, since)
	if err != nil {
		return
	}

	ticker := time.NewTicker(b.opts.PushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-cl.ctx.Done():
			return
		case <-cl.pongs:
			if err := b.send(cl, wsMessage{Type: "pong"}); err != nil {
				return
			}
		case <-ticker.C:
			if cursor, err = b.pushUpdate(cl, cursor); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

func (b *Backend) pushUpdate(cl *client, cursor uint64) (uint64, error) {
	snap := b.opts.Store.Snapshot()
	status := newStatusResponse(snap)
	msg := wsMessage{
		Type:   "update",
		Status: &status,
		Lines:  newConsoleLines(b.opts.Store.LinesSince(cursor)),
	}
	if err := b.send(cl, msg); err != nil {
		return cursor, err
	}
	if n := len(msg.Lines); n > 0 {
		cursor = msg.Lines[n-1].Seq
	}
	return cursor, nil
}

func (b *Backend) send(cl *client, msg wsMessage) error {
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := cl.conn.WriteJSON(msg); err != nil {
		return err
	}
	b.opts.Metrics.IncWSMessages()
	return nil
}
