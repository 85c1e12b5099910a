package game

import "hexlands/pkg/maps"

// Event is something that happened as the result of an accepted command.
// Engines queue events until TakeEvents drains them.
type Event interface {
	EventType() string
}

// ResourcesDistributed: a player received resources from the bank through
// production or initial placement.
type ResourcesDistributed struct {
	PlayerID int      `json:"playerId"`
	Resource Resource `json:"resource"`
	Amount   int      `json:"amount"`
}

// BuildingPlaced: a road, settlement or city went on the board. Vertex is set
// for settlements and cities, Edge for roads.
type BuildingPlaced struct {
	Kind     BuildingKind `json:"kind"`
	PlayerID int          `json:"playerId"`
	Vertex   VertexID     `json:"vertex"`
	Edge     EdgeID       `json:"edge"`
	Position maps.Point   `json:"position"`
}

// LongestRoadChanged carries the new holder, or NoPlayer when revoked.
type LongestRoadChanged struct {
	PlayerID int `json:"playerId"`
}

// LargestArmyChanged carries the new holder, or NoPlayer when revoked.
type LargestArmyChanged struct {
	PlayerID int `json:"playerId"`
}

type RobberMoved struct {
	TileID TileID `json:"tileId"`
}

// ResourceStolen covers the robber (one unit) and monopoly (everything).
type ResourceStolen struct {
	FromID   int      `json:"fromId"`
	ToID     int      `json:"toId"`
	Resource Resource `json:"resource"`
	Amount   int      `json:"amount"`
}

type GameOver struct {
	WinnerID int `json:"winnerId"`
}

type DiceRolled struct {
	PlayerID int `json:"playerId"`
	Total    int `json:"total"`
}

type PhaseChanged struct {
	Phase Phase `json:"phase"`
}

type TurnChanged struct {
	PlayerID int `json:"playerId"`
}

type CardsDiscarded struct {
	PlayerID int `json:"playerId"`
	Count    int `json:"count"`
}

// DevCardBought does not reveal the card drawn.
type DevCardBought struct {
	PlayerID int `json:"playerId"`
}

type DevCardPlayed struct {
	PlayerID int     `json:"playerId"`
	Card     DevCard `json:"card"`
}

type TradeProposed struct {
	TradeID string `json:"tradeId"`
	From    int    `json:"from"`
	To      int    `json:"to"`
}

type TradeExecuted struct {
	TradeID string `json:"tradeId"`
}

type TradeDeclined struct {
	TradeID string `json:"tradeId"`
}

func (ResourcesDistributed) EventType() string { return "resources_distributed" }
func (BuildingPlaced) EventType() string       { return "building_placed" }
func (LongestRoadChanged) EventType() string   { return "longest_road_changed" }
func (LargestArmyChanged) EventType() string   { return "largest_army_changed" }
func (RobberMoved) EventType() string          { return "robber_moved" }
func (ResourceStolen) EventType() string       { return "resource_stolen" }
func (GameOver) EventType() string             { return "game_over" }
func (DiceRolled) EventType() string           { return "dice_rolled" }
func (PhaseChanged) EventType() string         { return "phase_changed" }
func (TurnChanged) EventType() string          { return "turn_changed" }
func (CardsDiscarded) EventType() string       { return "cards_discarded" }
func (DevCardBought) EventType() string        { return "dev_card_bought" }
func (DevCardPlayed) EventType() string        { return "dev_card_played" }
func (TradeProposed) EventType() string        { return "trade_proposed" }
func (TradeExecuted) EventType() string        { return "trade_executed" }
func (TradeDeclined) EventType() string        { return "trade_declined" }
