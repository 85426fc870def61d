// Emoji Guesser
//
// Players join a room over a websocket, then race to name the phrase behind
// a string of emojis. Faster correct answers on harder phrases score more.
//
// Features:
// - One websocket endpoint: $path/ws; rooms are chosen by messages, not URLs
// - Each connection gets a transient uuid v7 handle
// - Per-connection bounded send queues; connections that fall behind are dropped
// - Ping/pong keepalive with read and write deadlines
// - Optional origin allow-list for the websocket upgrade
// - Room snapshots as JSON at $path/rooms/:code
// - QR code for sharing a room at $path/rooms/:code/qr, backed by go-qrcode
// - Idle rooms reaped after a configurable timeout

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/emojiguesser/games/emoji"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 32
	disconnectWait = 5 * time.Second
)

type Client struct {
	conn   *websocket.Conn
	handle string
	send   chan any
	done   chan struct{}
	once   sync.Once
}

// close stops the write pump and closes the connection, which in turn ends
// the read pump.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// socketTransport delivers room notifications to websocket clients by handle.
type socketTransport struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *zap.Logger
}

func newSocketTransport(log *zap.Logger) *socketTransport {
	return &socketTransport{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (t *socketTransport) add(conn *websocket.Conn, handle string) *Client {
	c := &Client{
		conn:   conn,
		handle: handle,
		send:   make(chan any, sendQueueSize),
		done:   make(chan struct{}),
	}

	t.mu.Lock()
	t.clients[handle] = c
	t.mu.Unlock()

	return c
}

func (t *socketTransport) remove(c *Client) {
	t.mu.Lock()
	if t.clients[c.handle] == c {
		delete(t.clients, c.handle)
	}
	t.mu.Unlock()

	c.close()
}

// Send queues msg for handle. It never blocks: a client whose queue is full
// is disconnected.
func (t *socketTransport) Send(handle string, msg any) {
	t.mu.RLock()
	c := t.clients[handle]
	t.mu.RUnlock()

	if c == nil {
		return
	}

	select {
	case <-c.done:
	case c.send <- msg:
	default:
		t.log.Warn("send queue full, dropping client", zap.String("handle", handle))
		t.remove(c)
	}
}

func (t *socketTransport) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.clients)
}

func (t *socketTransport) closeAll() {
	t.mu.Lock()
	clients := make([]*Client, 0, len(t.clients))
	for _, c := range t.clients {
		clients = append(clients, c)
	}
	clear(t.clients)
	t.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (c *Client) readPump(ctx context.Context, dir *emoji.Directory, log *zap.Logger) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read failed", zap.String("handle", c.handle), zap.Error(err))
			}
			return
		}

		var msg emoji.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("ignoring malformed message", zap.String("handle", c.handle), zap.Error(err))
			continue
		}

		err = dir.Handle(ctx, c.handle, msg)
		if errors.Is(err, emoji.ErrShutdown) || errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// checkOrigin allows any origin when allowed is empty, and requests without
// an Origin header always.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return true
		}
	}

	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o), "/"))] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		_, ok := origins[strings.ToLower(strings.TrimSuffix(origin, "/"))]
		return ok
	}
}

func serveEmojiSocket(ctx context.Context, cfg *Config, log *zap.Logger, dir *emoji.Directory, t *socketTransport) httprouter.Handle {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg.allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id, err := uuid.NewV7()
		if err != nil {
			http.Error(w, "unable to assign connection id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug("websocket upgrade failed", zap.String("remote", realIP(r)), zap.Error(err))
			return
		}

		c := t.add(conn, id.String())

		logf(cfg, log, "SOCKET: %s connected from %s (%d open)", c.handle, realIP(r), t.count())

		go c.writePump()
		c.readPump(ctx, dir, log)

		t.remove(c)

		leaveCtx, cancel := context.WithTimeout(context.Background(), disconnectWait)
		dir.Disconnect(leaveCtx, c.handle)
		cancel()

		logf(cfg, log, "SOCKET: %s disconnected", c.handle)
	}
}

func serveRoomInfo(cfg *Config, dir *emoji.Directory, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		info, err := dir.Lookup(r.Context(), ps.ByName("code"))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		var body any = info
		switch {
		case errors.Is(err, emoji.ErrRoomNotFound):
			w.WriteHeader(http.StatusNotFound)
			body = emoji.ErrorMessage{Type: emoji.TypeError, Message: err.Error()}
		case err != nil:
			w.WriteHeader(http.StatusServiceUnavailable)
			body = emoji.ErrorMessage{Type: emoji.TypeError, Message: "room unavailable"}
		}

		if err := json.NewEncoder(w).Encode(body); err != nil {
			errs <- err
		}
	}
}

// roomLink builds the shareable URL for a room, respecting TLS and
// X-Forwarded-Proto if present.
func roomLink(cfg *Config, r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/?room=" + code
}

// serveRoomQR generates a PNG QR code linking to the room using go-qrcode.
func serveRoomQR(cfg *Config, dir *emoji.Directory, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		info, err := dir.Lookup(r.Context(), ps.ByName("code"))
		if err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(roomLink(cfg, r, info.Code), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

// registerEmojiGame sets up routes so that:
//   - $path/ws               → WebSocket for all rooms
//   - $path/rooms/:code      → JSON snapshot of a room
//   - $path/rooms/:code/qr   → PNG QR code linking to a room
func registerEmojiGame(ctx context.Context, cfg *Config, log *zap.Logger, path string, mux *httprouter.Router, dir *emoji.Directory, t *socketTransport, errs chan<- error) {
	mux.GET(cfg.prefix+path+"/ws", serveEmojiSocket(ctx, cfg, log, dir, t))

	mux.GET(cfg.prefix+path+"/rooms/:code", serveRoomInfo(cfg, dir, errs))

	mux.GET(cfg.prefix+path+"/rooms/:code/qr", serveRoomQR(cfg, dir, errs))
}
