package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/flipseven/flipseven-server/internal/game"
	"github.com/flipseven/flipseven-server/internal/room"
	"github.com/flipseven/flipseven-server/internal/session"
	"github.com/flipseven/flipseven-server/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// ClientMessage is an intent sent by a connected client.
type ClientMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"room_code,omitempty"`
	Name     string `json:"name,omitempty"`
	Target   string `json:"target,omitempty"`
}

// ServerMessage is a frame pushed to a connected client.
type ServerMessage struct {
	Type     string     `json:"type"`
	UID      string     `json:"uid,omitempty"`
	Token    string     `json:"token,omitempty"`
	RoomCode string     `json:"room_code,omitempty"`
	Room     *game.Room `json:"room,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// Server is the websocket transport: one client per connection,
// per-room snapshot subscriptions, JSON intent messages in.
type Server struct {
	sessions *session.Manager
	ctrl     *room.Controller
	store    store.Store
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewServer wires the transport over the session manager, transaction
// controller, and room store.
func NewServer(sessions *session.Manager, ctrl *room.Controller, st store.Store, logger *zap.Logger) *Server {
	return &Server{
		sessions: sessions,
		ctrl:     ctrl,
		store:    st,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ListenAndServe runs the websocket endpoint until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("websocket server listening", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Client is one websocket connection bound to an anonymous session.
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte
	uid    string

	mu          sync.Mutex
	roomCode    string
	unsubscribe func()
	closed      bool

	// inFlight suppresses re-entrant intent submissions from rapid
	// repeated input. Liveness only: correctness comes from the store's
	// compare-and-swap plus the engine preconditions.
	inFlight atomic.Bool
}

// handleWS upgrades the connection and binds it to a session. A
// presented token reattaches the existing identity; otherwise a fresh
// anonymous session is issued.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	var uid, token string
	if presented := r.URL.Query().Get("token"); presented != "" {
		uid, err = s.sessions.Validate(presented)
		if err == nil {
			token = presented
		}
	}
	if uid == "" {
		uid, token, err = s.sessions.Issue()
		if err != nil {
			s.logger.Error("failed to issue session", zap.Error(err))
			conn.Close()
			return
		}
	}

	client := &Client{
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		uid:    uid,
	}
	client.enqueue(ServerMessage{Type: "session", UID: uid, Token: token})

	s.logger.Info("client connected", zap.String("uid", uid))
	go client.writePump()
	go client.readPump()
}

func (c *Client) enqueue(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.server.logger.Error("failed to encode message", zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer: drop the frame, the next snapshot resyncs.
	}
}

func (c *Client) readPump() {
	defer c.close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(ServerMessage{Type: "error", Error: "malformed message"})
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func (c *Client) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case "create_room":
		c.handleCreate(msg.Name)
	case "join_room":
		c.handleJoin(msg.RoomCode, msg.Name)
	case "start_game", "hit", "stay", "resolve_action", "next_round", "restart":
		c.dispatchIntent(msg)
	default:
		c.enqueue(ServerMessage{Type: "error", Error: "unknown message type"})
	}
}

func (c *Client) handleCreate(name string) {
	ctx := context.Background()
	code, err := c.server.ctrl.CreateRoom(ctx, c.uid, name)
	if err != nil {
		c.enqueue(ServerMessage{Type: "error", Error: err.Error()})
		return
	}
	c.watchRoom(code)
}

func (c *Client) handleJoin(code, name string) {
	ctx := context.Background()
	if err := c.server.ctrl.JoinRoom(ctx, code, c.uid, name); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.enqueue(ServerMessage{Type: "error", Error: "room not found"})
		} else {
			c.enqueue(ServerMessage{Type: "error", Error: err.Error()})
		}
		return
	}
	c.watchRoom(code)
}

// dispatchIntent runs a game intent asynchronously under the in-flight
// guard: while one of this client's intents is running, further ones
// are dropped.
func (c *Client) dispatchIntent(msg ClientMessage) {
	c.mu.Lock()
	code := c.roomCode
	c.mu.Unlock()
	if code == "" {
		c.enqueue(ServerMessage{Type: "error", Error: "not in a room"})
		return
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.inFlight.Store(false)
		ctx := context.Background()
		var err error
		switch msg.Type {
		case "start_game":
			err = c.server.ctrl.StartGame(ctx, code, c.uid)
		case "hit":
			err = c.server.ctrl.Hit(ctx, code, c.uid)
		case "stay":
			err = c.server.ctrl.Stay(ctx, code, c.uid)
		case "resolve_action":
			err = c.server.ctrl.ResolveAction(ctx, code, c.uid, msg.Target)
		case "next_round":
			err = c.server.ctrl.StartNextRound(ctx, code, c.uid)
		case "restart":
			err = c.server.ctrl.RestartGame(ctx, code, c.uid)
		}
		if err != nil {
			c.enqueue(ServerMessage{Type: "error", Error: err.Error()})
		}
	}()
}

// watchRoom switches the client's subscription to the given room and
// pushes the current snapshot immediately.
func (c *Client) watchRoom(code string) {
	ch, cancel := c.server.store.Subscribe(code)

	c.mu.Lock()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.roomCode = code
	c.unsubscribe = cancel
	c.mu.Unlock()

	if snapshot, err := c.server.store.Get(context.Background(), code); err == nil {
		c.enqueue(ServerMessage{Type: "room_state", RoomCode: code, Room: snapshot})
	}

	go func() {
		for snapshot := range ch {
			c.enqueue(ServerMessage{Type: "room_state", RoomCode: code, Room: snapshot})
		}
	}()
}

func (c *Client) close() {
	c.mu.Lock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.server.logger.Info("client disconnected", zap.String("uid", c.uid))
}
