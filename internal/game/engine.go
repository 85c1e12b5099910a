package game

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Options configures an Engine. Zero values are usable.
type Options struct {
	Logger *zap.Logger
	Dice   DiceSource
	Rand   *rand.Rand
}

// Engine is the only thing that mutates a GameState. Each command validates
// fully before touching anything, so a rejected command changes nothing.
// Engine is not safe for concurrent use; callers serialize commands.
type Engine struct {
	state  *GameState
	rng    *rand.Rand
	dice   DiceSource
	log    *zap.Logger
	events []Event
}

func newEngine(state *GameState, opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		seed := state.Settings.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	dice := opts.Dice
	if dice == nil {
		if state.Settings.FairDice {
			dice = NewFairDice(rng)
		} else {
			dice = NewRandomDice(rng)
		}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		state: state,
		rng:   rng,
		dice:  dice,
		log:   log.With(zap.String("game", state.ID)),
	}
}

// Resume wraps an existing state, for example one restored from storage.
func Resume(state *GameState, opts Options) *Engine {
	return newEngine(state, opts)
}

// State returns the live state. Callers must treat it as read-only.
func (e *Engine) State() *GameState {
	return e.state
}

// CurrentPhase returns the phase of the game.
func (e *Engine) CurrentPhase() Phase {
	return e.state.Phase
}

// TakeEvents returns and clears the events queued since the last call.
func (e *Engine) TakeEvents() []Event {
	events := e.events
	e.events = nil
	return events
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
}

func (e *Engine) setPhase(p Phase) {
	if e.state.Phase == p {
		return
	}
	e.log.Info("phase changed", zap.Stringer("from", e.state.Phase), zap.Stringer("to", p))
	e.state.Phase = p
	e.emit(PhaseChanged{Phase: p})
}

// requireTurn checks phase, then seat, then turn.
func (e *Engine) requireTurn(playerID int, phase Phase) error {
	g := e.state
	if g.Phase != phase {
		return wrongPhase(phase, g.Phase)
	}
	if g.Player(playerID) == nil {
		return ruleError(KindUnknownTarget, "seat %d", playerID)
	}
	if g.CurrentPlayer != playerID {
		return ErrNotYourTurn
	}
	return nil
}

// requireMainAction is the precondition for building, buying and trading:
// the player's turn in play, dice rolled, robber settled.
func (e *Engine) requireMainAction(playerID int) error {
	if err := e.requireTurn(playerID, PhasePlay); err != nil {
		return err
	}
	if !e.state.HasRolled {
		return ErrDiceNotRolled
	}
	if e.state.RobberPending {
		return ruleError(KindOutOfSequence, "robber must be moved first")
	}
	return nil
}

// pay moves cost from a player to the bank.
func (e *Engine) pay(p *Player, cost Stockpile) {
	if !p.Resources.Spend(cost) {
		e.invariant("player %d spent %s without covering it", p.ID, cost)
		return
	}
	e.state.Bank.Resources.Deposit(cost)
}

// grant moves resources from the bank to a player.
func (e *Engine) grant(p *Player, r Resource, amount int) {
	if amount <= 0 {
		return
	}
	if !e.state.Bank.Resources.Remove(r, amount) {
		e.invariant("bank paid %d %s it did not hold", amount, r)
		return
	}
	p.Resources.Add(r, amount)
}

// finish runs after every accepted command: the conservation check and the
// victory check for the active player.
func (e *Engine) finish() {
	e.checkConservation()
	g := e.state
	if g.Phase == PhaseEnd {
		return
	}
	p := g.GetCurrentPlayer()
	if p != nil && p.TotalPoints() >= g.Settings.VictoryPoints {
		g.Winner = p.ID
		e.log.Info("game over", zap.Int("winner", p.ID), zap.Int("points", p.TotalPoints()))
		e.setPhase(PhaseEnd)
		e.emit(GameOver{WinnerID: p.ID})
	}
}

func (e *Engine) checkConservation() {
	g := e.state
	for _, r := range AllResources {
		total := g.Bank.Resources[r]
		if total < 0 {
			e.invariant("bank holds %d %s", total, r)
		}
		for _, p := range g.Players {
			if p.Resources[r] < 0 {
				e.invariant("player %d holds %d %s", p.ID, p.Resources[r], r)
			}
			total += p.Resources[r]
		}
		if total != BankResourceUnits {
			e.invariant("%d %s in circulation, want %d", total, r, BankResourceUnits)
		}
	}
}

// invariant reports an engine bug. Debug builds panic.
func (e *Engine) invariant(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if debugAssertions {
		panic("invariant violated: " + msg)
	}
	e.log.Error("invariant violated", zap.String("detail", msg))
}

func logPlayer(from, to int) []zap.Field {
	return []zap.Field{zap.Int("from", from), zap.Int("to", to)}
}
