package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"hexlands/internal/bot"
	"hexlands/internal/database"
	"hexlands/internal/game"
	"hexlands/internal/protocol"
)

// maxBotSteps bounds how many bot actions run after one human action.
const maxBotSteps = 10000

// Session owns the authoritative engine of one game. Every command goes
// through Submit, which holds the lock for the whole command and the bot
// moves that follow it.
type Session struct {
	ID string

	mu     sync.Mutex
	engine *game.Engine
	bots   map[int]bool
	brain  *bot.Brain
	db     *database.DB
	log    *zap.Logger
}

// Step is one accepted action and what it produced.
type Step struct {
	Seat   int
	Action game.Action
	Events []game.Event
}

// Outcome is the result of a submitted command.
type Outcome struct {
	Err   error // rule violation of the submitted command
	Steps []Step
	Over  bool
}

func newSession(e *game.Engine, seats []*database.Seat, db *database.DB, log *zap.Logger) *Session {
	s := &Session{
		ID:     e.State().ID,
		engine: e,
		bots:   make(map[int]bool),
		brain:  bot.New(),
		db:     db,
		log:    log.With(zap.String("game", e.State().ID)),
	}
	for _, seat := range seats {
		if seat.IsBot {
			s.bots[seat.Seat] = true
		}
	}
	return s
}

// Submit applies a command for a seat, records it, and then lets bot seats
// play until a human decision is needed.
func (s *Session) Submit(seat int, a game.Action) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &Outcome{}
	if err := s.engine.Apply(seat, a); err != nil {
		s.log.Debug("action rejected", zap.Int("seat", seat), zap.String("action", a.ActionName()), zap.Error(err))
		out.Err = err
		if logErr := s.db.LogAction(s.record(seat, a, err)); logErr != nil {
			return nil, fmt.Errorf("log rejected action: %w", logErr)
		}
		return out, nil
	}
	if err := s.commit(out, seat, a); err != nil {
		return nil, err
	}
	if err := s.runBots(out); err != nil {
		return nil, err
	}
	out.Over = s.engine.State().IsGameOver()
	return out, nil
}

// Advance runs bot seats without a preceding human command, for new and
// restored games.
func (s *Session) Advance() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &Outcome{}
	if err := s.runBots(out); err != nil {
		return nil, err
	}
	out.Over = s.engine.State().IsGameOver()
	return out, nil
}

func (s *Session) runBots(out *Outcome) error {
	state := s.engine.State()
	for i := 0; i < maxBotSteps; i++ {
		seat := state.AwaitingSeat()
		if seat == game.NoPlayer || !s.bots[seat] {
			return nil
		}
		a := s.brain.Decide(state, seat)
		if a == nil {
			return nil
		}
		if err := s.engine.Apply(seat, a); err != nil {
			// The bot only proposes legal moves; a rejection means the
			// seat would spin forever, so hand control back.
			s.log.Error("bot action rejected", zap.Int("seat", seat), zap.String("action", a.ActionName()), zap.Error(err))
			return s.db.LogAction(s.record(seat, a, err))
		}
		if err := s.commit(out, seat, a); err != nil {
			return err
		}
	}
	s.log.Warn("bot step limit reached", zap.Int("steps", maxBotSteps))
	return nil
}

// commit drains the engine's events and persists the action with the
// resulting snapshot.
func (s *Session) commit(out *Outcome, seat int, a game.Action) error {
	events := s.engine.TakeEvents()
	state := s.engine.State()

	history := make([]*database.HistoryEvent, 0, len(events))
	for _, ev := range events {
		history = append(history, &database.HistoryEvent{
			GameID:     s.ID,
			Turn:       state.Turn,
			Phase:      state.Phase.String(),
			Seat:       seat,
			PlayerName: playerName(state, seat),
			EventType:  ev.EventType(),
			Message:    describeEvent(state, ev),
		})
	}
	if err := s.db.RecordAction(s.record(seat, a, nil), state, history); err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	if state.IsGameOver() {
		if err := s.db.EndGame(s.ID, state.Winner); err != nil {
			return fmt.Errorf("end game: %w", err)
		}
		s.log.Info("game over", zap.Int("winner", state.Winner), zap.Int("turn", state.Turn))
	}
	out.Steps = append(out.Steps, Step{Seat: seat, Action: a, Events: events})
	return nil
}

func (s *Session) record(seat int, a game.Action, err error) *database.ActionRecord {
	data, _ := json.Marshal(a)
	rec := &database.ActionRecord{
		GameID:     s.ID,
		Seat:       seat,
		ActionType: a.ActionName(),
		ActionJSON: string(data),
	}
	if err != nil {
		rec.ErrorCode = string(protocol.CodeFor(err))
	}
	return rec
}

// View returns one seat's view of the game with a snapshot of the board,
// safe to encode after the session moves on.
func (s *Session) View(seat int) (game.PlayerView, *game.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.engine.PlayerView(seat)
	if err != nil {
		return game.PlayerView{}, nil, err
	}
	return v, s.engine.State().Board.Clone(), nil
}

// ValidMoves lists legal placements for a seat.
func (s *Session) ValidMoves(seat int) (protocol.ValidMovesPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.engine.State()
	if state.Player(seat) == nil {
		return protocol.ValidMovesPayload{}, game.ErrUnknownTarget
	}
	return protocol.ValidMovesPayload{
		Seat:        seat,
		Phase:       state.Phase.String(),
		Settlements: state.ValidSettlementVertices(seat),
		Roads:       state.ValidRoadEdges(seat),
		RobberTiles: state.ValidRobberTiles(seat),
	}, nil
}

// Winner returns the winning seat with its name and points, or NoPlayer.
func (s *Session) Winner() (int, string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.engine.State().GetWinner(); p != nil {
		return p.ID, p.Name, p.TotalPoints()
	}
	return game.NoPlayer, "", 0
}

// Sessions keeps the live sessions, loading stored games on first use.
type Sessions struct {
	db  *database.DB
	log *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func newSessions(db *database.DB, log *zap.Logger) *Sessions {
	return &Sessions{
		db:       db,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new game and stores it.
func (m *Sessions) Create(name, ownerID string, players []*game.Player, settings game.Settings) (*Session, error) {
	e, err := game.InitializeGame(players, settings, game.Options{Logger: m.log})
	if err != nil {
		return nil, err
	}
	state := e.State()

	seats := make([]database.Seat, len(players))
	for i, p := range players {
		seats[i] = database.Seat{Seat: p.ID, Name: p.Name, Color: string(p.Color), IsBot: p.IsBot}
	}
	seats[0].PlayerID = ownerID

	if _, err := m.db.CreateGame(state.ID, name, ownerID, state.Settings, seats); err != nil {
		return nil, fmt.Errorf("store game: %w", err)
	}
	if err := m.db.SaveGameState(state.ID, state); err != nil {
		return nil, fmt.Errorf("store state: %w", err)
	}

	ptrs := make([]*database.Seat, len(seats))
	for i := range seats {
		ptrs[i] = &seats[i]
	}
	s := newSession(e, ptrs, m.db, m.log)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the live session for a game, restoring it from its latest
// snapshot if needed.
func (m *Sessions) Get(gameID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[gameID]; ok {
		return s, nil
	}
	if _, err := m.db.GetGame(gameID); err != nil {
		return nil, err
	}
	state, err := m.db.LoadGameState(gameID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	seats, err := m.db.GetSeats(gameID)
	if err != nil {
		return nil, fmt.Errorf("load seats: %w", err)
	}

	e := game.Resume(state, game.Options{
		Logger: m.log,
		Rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	})
	s := newSession(e, seats, m.db, m.log)
	m.sessions[gameID] = s
	m.log.Info("session restored", zap.String("game", gameID), zap.String("phase", state.Phase.String()))
	return s, nil
}

// Drop forgets a game's session.
func (m *Sessions) Drop(gameID string) {
	m.mu.Lock()
	delete(m.sessions, gameID)
	m.mu.Unlock()
}

// Restore loads every unfinished game and lets its bots catch up.
func (m *Sessions) Restore() (int, error) {
	games, err := m.db.ListGames(database.GameStatusStarted)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, g := range games {
		s, err := m.Get(g.ID)
		if err != nil {
			m.log.Warn("skipping game", zap.String("game", g.ID), zap.Error(err))
			continue
		}
		if _, err := s.Advance(); err != nil {
			m.log.Warn("advance failed", zap.String("game", g.ID), zap.Error(err))
		}
		n++
	}
	return n, nil
}

func playerName(g *game.GameState, seat int) string {
	if p := g.Player(seat); p != nil {
		return p.Name
	}
	return ""
}
