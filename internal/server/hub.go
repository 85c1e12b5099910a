package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hexlands/internal/game"
	"hexlands/internal/protocol"
)

// Hub maintains the set of active clients and routes their messages.
type Hub struct {
	server *Server
	log    *zap.Logger

	// Registered clients
	clients map[*Client]bool

	// Clients in each game
	gameClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	handlers *Handlers

	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(server *Server) *Hub {
	h := &Hub{
		server:      server,
		log:         server.log.Named("hub"),
		clients:     make(map[*Client]bool),
		gameClients: make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
	h.handlers = NewHandlers(h)
	return h
}

// Run is the hub's main loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.sendWelcome(client)

		case client := <-h.unregister:
			h.handleDisconnect(client)
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Receive handles a message on the sending client's read goroutine, so one
// client's messages are handled in order.
func (h *Hub) Receive(client *Client, msg *protocol.Message) {
	h.handlers.Handle(client, msg)
}

func (h *Hub) sendWelcome(client *Client) {
	msg, _ := protocol.NewMessage(protocol.TypeWelcome, protocol.WelcomePayload{
		ServerVersion: h.server.cfg.Version,
	})
	client.Send(msg)
}

func (h *Hub) handleDisconnect(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	gameID, seat := client.Seat()
	if gameID != "" {
		delete(h.gameClients[gameID], client)
	}
	h.mu.Unlock()

	if gameID != "" {
		if err := h.server.db.SetSeatConnected(gameID, seat, false); err != nil {
			h.log.Warn("failed to mark seat disconnected", zap.String("game", gameID), zap.Int("seat", seat), zap.Error(err))
		}
	}
	client.close()
}

// AddClientToGame seats a client in a game's broadcast group.
func (h *Hub) AddClientToGame(client *Client, gameID string, seat int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, _ := client.Seat(); old != "" && old != gameID {
		delete(h.gameClients[old], client)
	}
	if h.gameClients[gameID] == nil {
		h.gameClients[gameID] = make(map[*Client]bool)
	}
	h.gameClients[gameID][client] = true
	client.setSeat(gameID, seat)
}

func (h *Hub) clientsIn(gameID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.gameClients[gameID]))
	for c := range h.gameClients[gameID] {
		out = append(out, c)
	}
	return out
}

// notifyGame sends the same message to every client in a game.
func (h *Hub) notifyGame(gameID string, msgType protocol.MessageType, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		h.log.Error("failed to build message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	for _, c := range h.clientsIn(gameID) {
		c.Send(msg)
	}
}

// publish pushes the result of a command: events, then each client's view,
// then the end of the game if it came.
func (h *Hub) publish(s *Session, out *Outcome) {
	for _, step := range out.Steps {
		envs, err := protocol.EncodeEvents(step.Events)
		if err != nil {
			h.log.Error("failed to encode events", zap.Error(err))
			continue
		}
		if len(envs) > 0 {
			h.notifyGame(s.ID, protocol.TypeEvents, protocol.EventsPayload{GameID: s.ID, Events: envs})
		}
	}
	for _, c := range h.clientsIn(s.ID) {
		h.sendState(c, s)
	}
	if out.Over {
		winner, name, points := s.Winner()
		h.notifyGame(s.ID, protocol.TypeGameEnded, protocol.GameEndedPayload{
			GameID:     s.ID,
			WinnerID:   winner,
			WinnerName: name,
			Points:     points,
		})
	}
}

func (h *Hub) sendState(c *Client, s *Session) {
	_, seat := c.Seat()
	view, board, err := s.View(seat)
	if err != nil {
		h.log.Warn("no view for seat", zap.String("game", s.ID), zap.Int("seat", seat), zap.Error(err))
		return
	}
	msg, err := protocol.NewMessage(protocol.TypeGameState, protocol.GameStatePayload{
		GameID: s.ID,
		Seat:   seat,
		View:   view,
		Board:  board,
	})
	if err != nil {
		h.log.Error("failed to build state", zap.Error(err))
		return
	}
	c.Send(msg)
}

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan *protocol.Message

	mu       sync.Mutex
	closed   bool
	playerID string
	name     string
	gameID   string
	seat     int
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
)

// NewClient creates a new client.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan *protocol.Message, 256),
		seat: game.NoPlayer,
	}
}

// Player returns the authenticated player, if any.
func (c *Client) Player() (id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID, c.name
}

func (c *Client) setPlayer(id, name string) {
	c.mu.Lock()
	c.playerID, c.name = id, name
	c.mu.Unlock()
}

// Seat returns the game and seat the client plays.
func (c *Client) Seat() (gameID string, seat int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID, c.seat
}

func (c *Client) setSeat(gameID string, seat int) {
	c.mu.Lock()
	c.gameID, c.seat = gameID, seat
	c.mu.Unlock()
}

// Send queues a message to be sent to the client.
func (c *Client) Send(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		// Channel full, client too slow
		go c.hub.Unregister(c)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump pumps messages from the WebSocket to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket error", zap.Error(err))
			}
			break
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.log.Debug("invalid message", zap.Error(err))
			errMsg, _ := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{
				Code:    protocol.ErrCodeInvalidMessage,
				Message: err.Error(),
			})
			c.Send(errMsg)
			continue
		}

		c.hub.Receive(c, &msg)
	}
}

// WritePump pumps messages from the hub to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.hub.log.Error("failed to marshal message", zap.Error(err))
				continue
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
