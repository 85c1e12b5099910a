// Package game contains the rules engine for Hexlands: the board graph, the
// bank, players, the turn and phase machine, and every legality check.
// Only Engine mutates a GameState.
package game

import "fmt"

// GameState represents the complete state of a game.
type GameState struct {
	ID                string                 `json:"id"`
	Settings          Settings               `json:"settings"`
	Board             *Board                 `json:"board"`
	Bank              *Bank                  `json:"bank"`
	Players           []*Player              `json:"players"`
	Phase             Phase                  `json:"phase"`
	Turn              int                    `json:"turn"`
	CurrentPlayer     int                    `json:"currentPlayer"`
	Dice              int                    `json:"dice"`
	HasRolled         bool                   `json:"hasRolled"`
	RobberPending     bool                   `json:"robberPending"`
	DevCardPlayed     bool                   `json:"devCardPlayed"`
	FreeRoads         int                    `json:"freeRoads"`
	SetupStep         int                    `json:"setupStep"`
	SetupSettlement   VertexID               `json:"setupSettlement"` // NoVertex until placed this step
	DiscardQueue      []int                  `json:"discardQueue,omitempty"`
	DiscardOwed       []int                  `json:"discardOwed"`
	LongestRoadHolder int                    `json:"longestRoadHolder"`
	LargestArmyHolder int                    `json:"largestArmyHolder"`
	Trades            map[string]*TradeOffer `json:"trades,omitempty"`
	Winner            int                    `json:"winner"`
}

// Settings contains the configurable game parameters.
type Settings struct {
	VictoryPoints int   `json:"victoryPoints"`
	DiscardLimit  int   `json:"discardLimit"`
	FairDice      bool  `json:"fairDice"`
	Seed          int64 `json:"seed"`
}

// DefaultSettings returns the standard rules: 10 points to win, discard when
// holding more than 7 cards on a 7.
func DefaultSettings() Settings {
	return Settings{
		VictoryPoints: 10,
		DiscardLimit:  7,
	}
}

// Phase represents the game phase.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlay
	PhaseDiscardCards
	PhaseEnd
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhasePlay:
		return "play"
	case PhaseDiscardCards:
		return "discardCards"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	if p < PhaseSetup || p > PhaseEnd {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for q := PhaseSetup; q <= PhaseEnd; q++ {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

// Player returns the player in seat id, or nil.
func (g *GameState) Player(id int) *Player {
	if id < 0 || id >= len(g.Players) {
		return nil
	}
	return g.Players[id]
}

// GetCurrentPlayer returns the player whose turn it is. During discards that
// is still the player who rolled.
func (g *GameState) GetCurrentPlayer() *Player {
	return g.Player(g.CurrentPlayer)
}

// IsGameOver reports whether a player has won.
func (g *GameState) IsGameOver() bool {
	return g.Phase == PhaseEnd
}

// GetWinner returns the winning player, or nil.
func (g *GameState) GetWinner() *Player {
	if g.Phase != PhaseEnd {
		return nil
	}
	return g.Player(g.Winner)
}

// SetupOrder is the snake order of setup placements: each seat forward, then
// each seat in reverse.
func (g *GameState) SetupOrder() []int {
	n := len(g.Players)
	order := make([]int, 0, 2*n)
	for i := 0; i < n; i++ {
		order = append(order, i)
	}
	for i := n - 1; i >= 0; i-- {
		order = append(order, i)
	}
	return order
}

// DiscardDue returns how many cards a player still has to discard, or 0.
func (g *GameState) DiscardDue(playerID int) int {
	if playerID < 0 || playerID >= len(g.DiscardOwed) {
		return 0
	}
	return g.DiscardOwed[playerID]
}

// AwaitingDiscardFrom returns the player who must discard next, if any.
func (g *GameState) AwaitingDiscardFrom() (int, bool) {
	if g.Phase != PhaseDiscardCards || len(g.DiscardQueue) == 0 {
		return NoPlayer, false
	}
	return g.DiscardQueue[0], true
}

// CountBuildings counts a player's pieces of a kind on the board.
func (g *GameState) CountBuildings(playerID int, kind BuildingKind) int {
	n := 0
	if kind == BuildingRoad {
		for _, e := range g.Board.Edges {
			if e.Road != nil && e.Road.Owner == playerID {
				n++
			}
		}
		return n
	}
	for _, v := range g.Board.Vertices {
		if v.Building != nil && v.Building.Owner == playerID && v.Building.Kind == kind {
			n++
		}
	}
	return n
}

// AwaitingSeat returns the seat the game is waiting on: the head of the
// discard queue, then the counterparty of an open trade, then the current
// player. NoPlayer once the game is over.
func (g *GameState) AwaitingSeat() int {
	switch g.Phase {
	case PhaseEnd:
		return NoPlayer
	case PhaseDiscardCards:
		id, _ := g.AwaitingDiscardFrom()
		return id
	}
	for _, id := range g.PendingTradeIDs() {
		return g.Trades[id].To
	}
	return g.CurrentPlayer
}
