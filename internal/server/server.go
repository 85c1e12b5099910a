// Package server implements the Hexlands game server: a websocket command
// channel, an HTTP query API and one authoritative session per game.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hexlands/internal/database"
	"hexlands/internal/game"
	"hexlands/internal/protocol"
)

// Server is the main game server.
type Server struct {
	cfg      Config
	db       *database.DB
	hub      *Hub
	sessions *Sessions
	upgrader websocket.Upgrader
	router   *gin.Engine
	server   *http.Server
	log      *zap.Logger
	stop     context.CancelFunc
}

// GameDefaults are applied to create_game requests that leave fields unset.
type GameDefaults struct {
	Bots     int
	Settings game.Settings
}

// Config holds server configuration.
type Config struct {
	Addr    string
	DBPath  string
	Version string
	Game    GameDefaults
}

// New opens the database and builds the server. Nothing listens until Start.
func New(cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}
	if cfg.Game.Settings.VictoryPoints == 0 {
		cfg.Game.Settings = game.DefaultSettings()
	}

	db, err := database.New(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		db:       db,
		log:      log,
		sessions: newSessions(db, log.Named("session")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.hub = NewHub(s)
	s.router = s.routes()
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start restores stored games and starts the hub, which runs until ctx is
// done. Run calls it; callers serving Handler themselves call it directly.
func (s *Server) Start(ctx context.Context) (int, error) {
	n, err := s.sessions.Restore()
	if err != nil {
		return 0, fmt.Errorf("restore sessions: %w", err)
	}
	go s.hub.Run(ctx)
	return n, nil
}

// Run starts the server and serves until Stop.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	n, err := s.Start(ctx)
	if err != nil {
		cancel()
		return err
	}

	s.log.Info("server listening",
		zap.String("addr", s.cfg.Addr),
		zap.String("db", s.cfg.DBPath),
		zap.Int("restored", n))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	if s.stop != nil {
		s.stop()
	}
	return s.db.Close()
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(accessLog(s.log.Named("http")))

	r.GET("/healthz", s.handleHealth)
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	api.GET("/games", s.handleListGames)
	api.GET("/games/:id/players/:seat", s.handlePlayerView)
	api.GET("/games/:id/valid/:seat", s.handleValidMoves)
	api.GET("/games/:id/history", s.handleHistory)
	api.DELETE("/games/:id", s.handleDeleteGame)
	api.GET("/players/me/games", s.handleMyGames)
	return r
}

// accessLog writes one line per request.
func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) listGames() ([]protocol.GameListItem, error) {
	games, err := s.db.ListGames(database.GameStatusStarted)
	if err != nil {
		return nil, err
	}
	items := make([]protocol.GameListItem, 0, len(games))
	for _, g := range games {
		seats, err := s.db.GetSeats(g.ID)
		if err != nil {
			return nil, err
		}
		var open []int
		for _, seat := range seats {
			if seat.Open() {
				open = append(open, seat.Seat)
			}
		}
		items = append(items, protocol.GameListItem{
			ID:          g.ID,
			Name:        g.Name,
			Status:      string(g.Status),
			Phase:       g.Phase,
			Turn:        g.Turn,
			PlayerCount: g.SeatCount,
			OpenSeats:   open,
		})
	}
	return items, nil
}

func (s *Server) handleListGames(c *gin.Context) {
	items, err := s.listGames()
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, protocol.GameListPayload{Games: items})
}

// handlePlayerView returns a seat's view. Hands are private, so the caller
// must hold the seat's token.
func (s *Server) handlePlayerView(c *gin.Context) {
	sess, seat, ok := s.seatParams(c)
	if !ok {
		return
	}
	if !s.authorizeSeat(c, sess.ID, seat) {
		return
	}
	view, board, err := sess.View(seat)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, protocol.GameStatePayload{GameID: sess.ID, Seat: seat, View: view, Board: board})
}

func (s *Server) handleValidMoves(c *gin.Context) {
	sess, seat, ok := s.seatParams(c)
	if !ok {
		return
	}
	moves, err := sess.ValidMoves(seat)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, moves)
}

func (s *Server) handleHistory(c *gin.Context) {
	gameID := c.Param("id")
	if _, err := s.db.GetGame(gameID); err != nil {
		s.abort(c, err)
		return
	}
	var since int64
	if v := c.Query("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, protocol.ErrorPayload{Code: protocol.ErrCodeInvalidMessage, Message: "bad since"})
			return
		}
		since = n
	}
	events, err := s.db.GetGameHistorySince(gameID, since)
	if err != nil {
		s.abort(c, err)
		return
	}
	out := protocol.GameHistoryPayload{Events: make([]protocol.HistoryEvent, 0, len(events))}
	for _, ev := range events {
		out.Events = append(out.Events, protocol.HistoryEvent{
			ID:         ev.ID,
			Turn:       ev.Turn,
			Phase:      ev.Phase,
			PlayerID:   ev.Seat,
			PlayerName: ev.PlayerName,
			EventType:  ev.EventType,
			Message:    ev.Message,
		})
	}
	c.JSON(http.StatusOK, out)
}

// handleMyGames lists the unfinished games the caller holds a seat in.
func (s *Server) handleMyGames(c *gin.Context) {
	player, ok := s.bearer(c)
	if !ok {
		return
	}
	games, err := s.db.GetPlayerGames(player.ID)
	if err != nil {
		s.abort(c, err)
		return
	}
	items := make([]protocol.GameListItem, 0, len(games))
	for _, g := range games {
		items = append(items, protocol.GameListItem{
			ID:          g.ID,
			Name:        g.Name,
			Status:      string(g.Status),
			Phase:       g.Phase,
			Turn:        g.Turn,
			PlayerCount: g.SeatCount,
		})
	}
	c.JSON(http.StatusOK, protocol.GameListPayload{Games: items})
}

// handleDeleteGame abandons a game. Only its creator may.
func (s *Server) handleDeleteGame(c *gin.Context) {
	player, ok := s.bearer(c)
	if !ok {
		return
	}
	gameID := c.Param("id")
	g, err := s.db.GetGame(gameID)
	if err != nil {
		s.abort(c, err)
		return
	}
	if g.CreatedBy != player.ID {
		c.JSON(http.StatusForbidden, protocol.ErrorPayload{Code: protocol.ErrCodeNotInGame, Message: "only the creator may delete a game"})
		return
	}
	s.sessions.Drop(gameID)
	if err := s.db.DeleteGame(gameID); err != nil {
		s.abort(c, err)
		return
	}
	s.log.Info("game deleted", zap.String("game", gameID), zap.String("player", player.ID))
	c.Status(http.StatusNoContent)
}

func (s *Server) seatParams(c *gin.Context) (*Session, int, bool) {
	seat, err := strconv.Atoi(c.Param("seat"))
	if err != nil {
		c.JSON(http.StatusBadRequest, protocol.ErrorPayload{Code: protocol.ErrCodeInvalidMessage, Message: "bad seat"})
		return nil, 0, false
	}
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.abort(c, err)
		return nil, 0, false
	}
	return sess, seat, true
}

// bearer resolves the request's token to a player, answering 401 when it
// cannot.
func (s *Server) bearer(c *gin.Context) (*database.Player, bool) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		c.JSON(http.StatusUnauthorized, protocol.ErrorPayload{Code: protocol.ErrCodeNotAuthenticated, Message: "missing token"})
		return nil, false
	}
	player, err := s.db.GetPlayerByToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, protocol.ErrorPayload{Code: protocol.ErrCodeNotAuthenticated, Message: "unknown token"})
		return nil, false
	}
	return player, true
}

func (s *Server) authorizeSeat(c *gin.Context, gameID string, seat int) bool {
	player, ok := s.bearer(c)
	if !ok {
		return false
	}
	held, err := s.db.FindSeat(gameID, player.ID)
	if err != nil || held != seat {
		c.JSON(http.StatusForbidden, protocol.ErrorPayload{Code: protocol.ErrCodeNotInGame, Message: "seat belongs to another player"})
		return false
	}
	return true
}

func (s *Server) abort(c *gin.Context, err error) {
	code := errorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case protocol.ErrCodeGameNotFound, protocol.ErrCodeInvalidTarget:
		status = http.StatusNotFound
	case protocol.ErrCodeInternalError:
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	default:
		status = http.StatusBadRequest
	}
	c.JSON(status, protocol.ErrorPayload{Code: code, Message: err.Error()})
}
