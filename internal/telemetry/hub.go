package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/ghostsim/internal/core/observability/log"
	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/internal/replay"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingPeriod   = pongTimeout * 9 / 10
	// Path is where Start serves the websocket endpoint.
	Path = "/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans frames out to every connected client. Clients that fall behind
// lose frames instead of slowing the simulation down.
type Hub struct {
	log log.Log

	mu      sync.RWMutex
	clients map[*client]struct{}

	server   *http.Server
	listener net.Listener

	published atomic.Uint64
	dropped   atomic.Uint64
}

func NewHub(logger log.Log) *Hub {
	return &Hub{
		log:     logger,
		clients: make(map[*client]struct{}),
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped counts frames not delivered to a slow client.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Publish encodes f once and queues it for every client.
func (h *Hub) Publish(f Frame) error {
	data, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", f.Frame, err)
	}
	h.published.Add(1)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Observer publishes one frame out of every. Zero publishes all of them.
func (h *Hub) Observer(every uint32) replay.Observer {
	if every == 0 {
		every = 1
	}
	return func(runID uuid.UUID, frameIdx uint32, p *player.Player) {
		if frameIdx%every != 0 {
			return
		}
		if err := h.Publish(NewFrame(runID, frameIdx, p.Physics(), p.Status())); err != nil {
			h.log.Warn("telemetry publish failed", log.Uint32("frame", frameIdx), log.Error(err))
		}
	}
}

// ServeHTTP upgrades the request and keeps the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("telemetry upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.register(c)
	h.log.Info("telemetry client connected", log.String("client_id", c.id), log.String("remote", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
		h.log.Info("telemetry client disconnected", log.String("client_id", c.id))
	}
}

// readPump discards client messages and notices disconnects.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("telemetry read failed", log.String("client_id", c.id), log.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				h.log.Debug("telemetry write failed", log.String("client_id", c.id), log.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start listens on addr and serves the hub at Path in the background.
func (h *Hub) Start(ctx context.Context, addr string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.server != nil {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("telemetry listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(Path, h)
	h.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	h.listener = listener

	go func(srv *http.Server) {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error("telemetry server stopped", log.Error(err))
		}
	}(h.server)

	h.log.Info("telemetry listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the listening address once started.
func (h *Hub) Addr() net.Addr {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

// Stop shuts the server down and disconnects every client.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	srv := h.server
	h.server, h.listener = nil, nil
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	if srv == nil {
		return ErrNotStarted
	}
	for c := range clients {
		c.close()
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}
	h.log.Info("telemetry stopped",
		log.Uint64("published", h.published.Load()),
		log.Uint64("dropped", h.dropped.Load()),
	)
	return nil
}
