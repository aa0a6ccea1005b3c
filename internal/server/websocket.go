package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/siakng/monopoly-server-go/internal/config"
	"github.com/siakng/monopoly-server-go/internal/game"
	"github.com/siakng/monopoly-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 64 * 1024
)

// Message types sent by the hub in addition to engine events.
const (
	MessageJoined = "joined"
	MessageError  = "error"
)

// ServerMessage is a hub-originated frame.
type ServerMessage struct {
	Type     string `json:"type"`
	GameID   string `json:"game_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Client is one websocket connection seated in a game.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	name     string
	gameID   string
}

// gameMessage goes to every client of a game, or only to client when set.
type gameMessage struct {
	gameID  string
	client  *Client
	payload []byte
}

type room struct {
	seats   []game.Seat
	clients map[*Client]bool
}

// Hub connects websocket clients to engine games. Each connection takes a
// seat in the game named by its query string; client frames become engine
// commands and the engine's events are fanned out to every client of the
// game they belong to.
type Hub struct {
	engine   *game.Engine
	logger   *zap.Logger
	upgrader websocket.Upgrader
	sendSize int

	broadcast chan gameMessage
	done      chan struct{}

	// seating orders seat admission against start_game; taken before mu.
	seating sync.Mutex

	mu    sync.RWMutex
	rooms map[string]*room
}

// NewHub creates a hub serving engine and subscribes it to the engine's events.
func NewHub(engine *game.Engine, cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	sendSize := cfg.SendBufferSize
	if sendSize < 1 {
		sendSize = 256
	}

	h := &Hub{
		engine: engine,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		sendSize:  sendSize,
		broadcast: make(chan gameMessage, 64),
		done:      make(chan struct{}),
		rooms:     make(map[string]*room),
	}

	engine.Events().Subscribe(h.onEvent)
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[strings.TrimRight(origin, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Run fans messages out to clients until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case msg := <-h.broadcast:
			h.mu.Lock()
			if r, ok := h.rooms[msg.gameID]; ok {
				for client := range r.clients {
					if msg.client != nil && msg.client != client {
						continue
					}
					select {
					case client.send <- msg.payload:
					default:
						h.logger.Warn("dropping slow client",
							zap.String("game_id", client.gameID),
							zap.String("player_id", client.playerID),
						)
						h.dropLocked(client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// join seats client in its game's room. It fails once the game has left the
// waiting phase, so every seat in a room is either pending or in the game.
func (h *Hub) join(client *Client) error {
	h.seating.Lock()
	defer h.seating.Unlock()

	if err := h.requireWaiting(client.gameID); err != nil {
		return err
	}

	h.mu.Lock()
	r, ok := h.rooms[client.gameID]
	if !ok {
		r = &room{clients: make(map[*Client]bool)}
		h.rooms[client.gameID] = r
	}
	r.clients[client] = true
	r.seats = append(r.seats, game.Seat{ID: client.playerID, Name: client.name})
	h.mu.Unlock()

	h.logger.Info("client joined",
		zap.String("game_id", client.gameID),
		zap.String("player_id", client.playerID),
		zap.String("name", client.name),
	)
	return nil
}

// drop removes a client and reports whether its game has no clients left.
func (h *Hub) drop(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(client)
	_, occupied := h.rooms[client.gameID]
	return !occupied
}

func (h *Hub) publish(msg gameMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) dropLocked(client *Client) {
	r, ok := h.rooms[client.gameID]
	if !ok || !r.clients[client] {
		return
	}
	delete(r.clients, client)
	close(client.send)

	for i, seat := range r.seats {
		if seat.ID == client.playerID {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			break
		}
	}
	if len(r.clients) == 0 {
		delete(h.rooms, client.gameID)
	}

	h.logger.Info("client left",
		zap.String("game_id", client.gameID),
		zap.String("player_id", client.playerID),
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for gameID, r := range h.rooms {
		for client := range r.clients {
			close(client.send)
		}
		delete(h.rooms, gameID)
	}
}

func (h *Hub) onEvent(evt rules.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("failed to encode event",
			zap.String("game_id", evt.GameID),
			zap.String("type", string(evt.Type)),
			zap.Error(err),
		)
		return
	}

	h.publish(gameMessage{gameID: evt.GameID, payload: payload})
}

func (h *Hub) seats(gameID string) []game.Seat {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[gameID]
	if !ok {
		return nil
	}
	return append([]game.Seat(nil), r.seats...)
}

// ServeWS upgrades /ws?game=<id>&name=<name>. The game is created on demand
// and only accepts new seats while it is waiting to start.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimSpace(r.URL.Query().Get("game"))
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if gameID == "" {
		http.Error(w, "missing game", http.StatusBadRequest)
		return
	}
	if name == "" {
		name = "Mahasiswa"
	}

	if err := h.ensureWaitingGame(gameID); err != nil {
		h.logger.Info("join refused",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, h.sendSize),
		playerID: uuid.NewString(),
		name:     name,
		gameID:   gameID,
	}
	joined, _ := json.Marshal(ServerMessage{Type: MessageJoined, GameID: gameID, PlayerID: client.playerID})
	client.send <- joined
	if err := h.join(client); err != nil {
		h.logger.Info("join refused after upgrade",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
		refused, _ := json.Marshal(ServerMessage{Type: MessageError, GameID: gameID, Message: err.Error()})
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, refused)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "game already started"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) ensureWaitingGame(gameID string) error {
	if _, err := h.engine.Snapshot(gameID); errors.Is(err, rules.ErrLookup) {
		if _, err := h.engine.CreateGame(gameID); err != nil && !errors.Is(err, rules.ErrState) {
			return err
		}
	}
	return h.requireWaiting(gameID)
}

func (h *Hub) requireWaiting(gameID string) error {
	snap, err := h.engine.Snapshot(gameID)
	if err != nil {
		return err
	}
	if snap.Phase != rules.PhaseWaiting.String() {
		return fmt.Errorf("game %s has already started", gameID)
	}
	return nil
}

// handle turns one client frame into an engine command.
func (h *Hub) handle(c *Client, raw []byte) {
	var cmd game.Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		c.reply(ServerMessage{Type: MessageError, Message: "malformed message"})
		return
	}

	cmd.PlayerID = c.playerID
	cmd.Seats = nil

	var err error
	if cmd.Type == game.CommandStartGame {
		err = h.start(c.gameID, cmd)
	} else {
		_, err = h.engine.Execute(c.gameID, cmd)
	}
	if err != nil {
		c.reply(ServerMessage{Type: MessageError, Message: err.Error()})
	}
}

// start seats the room's current clients; no one can join until it returns.
func (h *Hub) start(gameID string, cmd game.Command) error {
	h.seating.Lock()
	defer h.seating.Unlock()

	cmd.Seats = h.seats(gameID)
	_, err := h.engine.Execute(gameID, cmd)
	return err
}

// leave removes a disconnected player from a running game and forgets games
// nobody is connected to any more.
func (h *Hub) leave(c *Client) {
	empty := h.drop(c)

	snap, err := h.engine.Snapshot(c.gameID)
	if err != nil {
		return
	}

	if snap.Phase == rules.PhaseRolling.String() || snap.Phase == rules.PhaseEndTurn.String() {
		_, err := h.engine.Execute(c.gameID, game.Command{Type: game.CommandRemovePlayer, PlayerID: c.playerID})
		if err != nil && !errors.Is(err, rules.ErrLookup) {
			h.logger.Warn("failed to remove disconnected player",
				zap.String("game_id", c.gameID),
				zap.String("player_id", c.playerID),
				zap.Error(err),
			)
		}
	}

	if empty {
		h.engine.RemoveGame(c.gameID)
	}
}

// reply queues a frame for this client only.
func (c *Client) reply(msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.hub.publish(gameMessage{gameID: c.gameID, client: c, payload: payload})
}

func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		c.hub.leave(c)
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error",
					zap.String("player_id", c.playerID),
					zap.Error(err),
				)
			}
			return
		}
		c.hub.handle(c, message)
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
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// StartWebSocketServer serves the hub at /ws until ctx is cancelled.
func StartWebSocketServer(ctx context.Context, cfg config.WebSocketConfig, hub *Hub, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("websocket server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting WebSocket server", zap.String("address", cfg.Address))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server: %w", err)
	}
	return nil
}
