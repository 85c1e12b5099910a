package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seat limits.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// InitializeGame builds a new board and bank, seats the players in order and
// returns an engine positioned at the first setup placement.
func InitializeGame(players []*Player, settings Settings, opts Options) (*Engine, error) {
	if len(players) < MinPlayers {
		return nil, fmt.Errorf("need at least %d players", MinPlayers)
	}
	if len(players) > MaxPlayers {
		return nil, fmt.Errorf("max %d players", MaxPlayers)
	}
	if settings.VictoryPoints <= 0 {
		settings.VictoryPoints = DefaultSettings().VictoryPoints
	}
	if settings.DiscardLimit <= 0 {
		settings.DiscardLimit = DefaultSettings().DiscardLimit
	}

	state := &GameState{
		ID:                uuid.New().String(),
		Settings:          settings,
		Phase:             PhaseSetup,
		Players:           make([]*Player, len(players)),
		SetupSettlement:   NoVertex,
		DiscardOwed:       make([]int, len(players)),
		LongestRoadHolder: NoPlayer,
		LargestArmyHolder: NoPlayer,
		Winner:            NoPlayer,
		Trades:            make(map[string]*TradeOffer),
	}
	for i, p := range players {
		if p == nil {
			return nil, fmt.Errorf("seat %d is empty", i)
		}
		p.ID = i
		state.Players[i] = p
	}

	e := newEngine(state, opts)
	state.Board = NewBoard(e.rng)
	state.Bank = NewBank(e.rng)
	state.CurrentPlayer = state.SetupOrder()[0]

	e.log.Info("game initialized",
		zap.Int("players", len(players)),
		zap.Int("victoryPoints", settings.VictoryPoints),
		zap.Bool("fairDice", settings.FairDice))
	return e, nil
}
