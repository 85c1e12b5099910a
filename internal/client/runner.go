package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hexlands/internal/bot"
	"hexlands/internal/game"
	"hexlands/internal/protocol"
)

var (
	// ErrConnectionClosed is returned when the server drops the connection
	// before the game ends.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrNoOpenSeat is returned when no listed game has a seat to take.
	ErrNoOpenSeat = errors.New("no open seat")
)

// RunnerConfig says where to play.
type RunnerConfig struct {
	Server     string
	Token      string // empty registers a new player
	Name       string
	GameID     string // empty takes the first open seat listed
	Seat       int    // negative takes any open seat
	ThinkDelay time.Duration

	// Create, when set, hosts a new game in seat 0 instead of joining one.
	Create *protocol.CreateGamePayload
}

// Runner plays one seat remotely, deciding with a bot.Brain from the state
// messages the server sends.
type Runner struct {
	cfg   RunnerConfig
	net   *NetworkClient
	brain *bot.Brain
	log   *zap.Logger

	token    string
	gameID   string
	seat     int
	joined   bool
	last     *protocol.GameStatePayload
	pending  string // id of the action awaiting its result
	fallback bool   // fallback already sent for the current position
}

// NewRunner creates a runner. Call Run to play.
func NewRunner(cfg RunnerConfig, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:   cfg,
		net:   NewNetworkClient(log.Named("net")),
		brain: bot.New(),
		log:   log,
		token: cfg.Token,
		seat:  game.NoPlayer,
	}
}

// Token returns the player token issued by the server, for reconnecting.
func (r *Runner) Token() string {
	return r.token
}

// Seat returns the game and seat the runner joined.
func (r *Runner) Seat() (string, int) {
	return r.gameID, r.seat
}

// Run connects, takes a seat and plays until the game ends, the connection
// drops or ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.net.Connect(ctx, r.cfg.Server); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer r.net.Disconnect()

	if _, err := r.net.SendPayload(protocol.TypeAuthenticate, protocol.AuthenticatePayload{
		Token: r.cfg.Token,
		Name:  r.cfg.Name,
	}); err != nil {
		return err
	}

	recv := r.net.RecvChan()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-recv:
			if !ok {
				return ErrConnectionClosed
			}
			done, err := r.handle(ctx, msg)
			if err != nil || done {
				return err
			}
		}
	}
}

func (r *Runner) handle(ctx context.Context, msg *protocol.Message) (bool, error) {
	switch msg.Type {
	case protocol.TypeAuthResult:
		var p protocol.AuthResultPayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		if !p.Success {
			return false, fmt.Errorf("authentication failed: %s", p.Error)
		}
		r.token = p.Token
		r.log.Info("authenticated", zap.String("player", p.PlayerID), zap.String("name", p.Name))
		if r.cfg.Create != nil {
			_, err := r.net.SendPayload(protocol.TypeCreateGame, *r.cfg.Create)
			return false, err
		}
		if r.cfg.GameID == "" {
			_, err := r.net.SendPayload(protocol.TypeListGames, struct{}{})
			return false, err
		}
		return false, r.join(r.cfg.GameID, r.cfg.Seat)

	case protocol.TypeGameList:
		var p protocol.GameListPayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		gameID, seat, ok := pickSeat(p.Games, r.cfg.Seat)
		if !ok {
			return false, ErrNoOpenSeat
		}
		return false, r.join(gameID, seat)

	case protocol.TypeGameCreated, protocol.TypeJoinedGame:
		var p protocol.JoinedGamePayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		r.gameID, r.seat, r.joined = p.GameID, p.Seat, true
		r.log.Info("seated", zap.String("game", p.GameID), zap.Int("seat", p.Seat))
		return false, r.act(ctx)

	case protocol.TypeGameState:
		var p protocol.GameStatePayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		r.last = &p
		r.fallback = false
		return false, r.act(ctx)

	case protocol.TypeActionResult:
		var p protocol.ActionResultPayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		if msg.ID != r.pending {
			return false, nil
		}
		r.pending = ""
		if !p.Success {
			r.log.Warn("action rejected", zap.Any("error", p.Error))
			return false, r.recover()
		}

	case protocol.TypeGameEnded:
		var p protocol.GameEndedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		r.log.Info("game over",
			zap.String("winner", p.WinnerName),
			zap.Int("points", p.Points),
			zap.Bool("won", p.WinnerID == r.seat))
		return true, nil

	case protocol.TypeError:
		var p protocol.ErrorPayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		if !r.joined {
			return false, fmt.Errorf("server refused: %s: %s", p.Code, p.Message)
		}
		r.log.Warn("server error", zap.String("code", string(p.Code)), zap.String("message", p.Message))
		if msg.ID == r.pending {
			r.pending = ""
			return false, r.recover()
		}

	case protocol.TypeEvents:
		r.log.Debug("events", zap.Int("bytes", len(msg.Payload)))
	}
	return false, nil
}

func (r *Runner) join(gameID string, seat int) error {
	_, err := r.net.SendPayload(protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: gameID, Seat: seat})
	return err
}

// pickSeat chooses the first open seat, or the wanted one when seat is not
// negative.
func pickSeat(games []protocol.GameListItem, seat int) (string, int, bool) {
	for _, g := range games {
		for _, open := range g.OpenSeats {
			if seat < 0 || open == seat {
				return g.ID, open, true
			}
		}
	}
	return "", 0, false
}

// act moves when the last state waits on this seat.
func (r *Runner) act(ctx context.Context) error {
	if r.pending != "" || r.last == nil || !r.joined {
		return nil
	}
	view := r.last.View
	if view.Winner != game.NoPlayer || view.AwaitingSeat != r.seat {
		return nil
	}

	a := r.brain.Decide(game.EstimateState(view, r.last.Board), r.seat)
	if a == nil {
		return r.recover()
	}

	if r.cfg.ThinkDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.cfg.ThinkDelay):
		}
	}
	return r.send(a)
}

// recover sends a move that is always legal in the common positions when the
// brain's choice was refused or it had none. It is tried once per state.
func (r *Runner) recover() error {
	if r.fallback || r.last == nil {
		return nil
	}
	r.fallback = true

	view := r.last.View
	if view.AwaitingSeat != r.seat {
		return nil
	}
	for _, t := range view.Trades {
		if t.To == r.seat {
			return r.send(game.DeclineTrade{TradeID: t.ID})
		}
	}
	if view.Phase != game.PhasePlay || view.CurrentPlayer != r.seat || view.RobberPending {
		r.log.Warn("no move available", zap.String("phase", view.Phase.String()))
		return nil
	}
	if !view.HasRolled {
		return r.send(game.RollDice{})
	}
	return r.send(game.EndTurn{})
}

func (r *Runner) send(a game.Action) error {
	payload, err := protocol.EncodeAction(r.gameID, a)
	if err != nil {
		return err
	}
	id, err := r.net.SendPayload(protocol.TypeAction, payload)
	if err != nil {
		return err
	}
	r.pending = id
	r.log.Debug("action sent", zap.String("action", payload.Action))
	return nil
}
