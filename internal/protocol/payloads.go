package protocol

import (
	"encoding/json"

	"hexlands/internal/game"
)

// ==================== Authentication Payloads ====================

// AuthenticatePayload is sent to authenticate/register a player.
type AuthenticatePayload struct {
	Token string `json:"token,omitempty"` // Existing token for returning players
	Name  string `json:"name"`            // Display name
}

// AuthResultPayload is the response to authentication.
type AuthResultPayload struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"` // Save this for reconnecting
	Name     string `json:"name"`
	Error    string `json:"error,omitempty"`
}

// ==================== Lobby Payloads ====================

// CreateGamePayload is sent to create a new game. The creator takes seat 0
// and the remaining seats up to Bots are filled with computer players.
type CreateGamePayload struct {
	Name          string `json:"name"`
	Bots          int    `json:"bots"`
	OpenSeats     int    `json:"open_seats,omitempty"` // seats left for remote players
	VictoryPoints int    `json:"victory_points,omitempty"`
	FairDice      bool   `json:"fair_dice,omitempty"`
	Seed          int64  `json:"seed,omitempty"`
}

// GameCreatedPayload is the response when a game is created.
type GameCreatedPayload struct {
	GameID string `json:"game_id"`
	Seat   int    `json:"seat"`
}

// JoinGamePayload is sent to take an open seat, or to rejoin one the player
// already holds.
type JoinGamePayload struct {
	GameID string `json:"game_id"`
	Seat   int    `json:"seat"`
}

// JoinedGamePayload is the response when successfully joining a game.
type JoinedGamePayload struct {
	GameID string `json:"game_id"`
	Seat   int    `json:"seat"`
}

// GameListPayload contains a list of games.
type GameListPayload struct {
	Games []GameListItem `json:"games"`
}

// GameListItem is a summary of a game.
type GameListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Phase       string `json:"phase,omitempty"`
	Turn        int    `json:"turn"`
	PlayerCount int    `json:"player_count"`
	OpenSeats   []int  `json:"open_seats,omitempty"`
}

// ==================== Game Flow Payloads ====================

// ActionPayload carries one command. Action is the action name and Data its
// fields; see EncodeAction.
type ActionPayload struct {
	GameID string          `json:"game_id"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ActionResultPayload is the result of a player action.
type ActionResultPayload struct {
	ActionID string        `json:"action_id"`
	Success  bool          `json:"success"`
	Error    *ErrorPayload `json:"error,omitempty"`
}

// GameStatePayload is one seat's view of the game plus the public board.
type GameStatePayload struct {
	GameID string          `json:"game_id"`
	Seat   int             `json:"seat"`
	View   game.PlayerView `json:"view"`
	Board  *game.Board     `json:"board"`
}

// EventsPayload carries the events produced by one accepted action.
type EventsPayload struct {
	GameID string          `json:"game_id"`
	Events []EventEnvelope `json:"events"`
}

// EventEnvelope tags an event with its type.
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameEndedPayload is sent when the game concludes.
type GameEndedPayload struct {
	GameID     string `json:"game_id"`
	WinnerID   int    `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	Points     int    `json:"points"`
}

// GameHistoryPayload contains game history events.
type GameHistoryPayload struct {
	Events []HistoryEvent `json:"events"`
}

// HistoryEvent is a single event in the game history log.
type HistoryEvent struct {
	ID         int64  `json:"id"`
	Turn       int    `json:"turn"`
	Phase      string `json:"phase"`
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	EventType  string `json:"event_type"`
	Message    string `json:"message"`
}

// ValidMovesPayload lists legal placements for a seat.
type ValidMovesPayload struct {
	Seat        int             `json:"seat"`
	Phase       string          `json:"phase"`
	Settlements []game.VertexID `json:"settlements"`
	Roads       []game.EdgeID   `json:"roads"`
	RobberTiles []game.TileID   `json:"robber_tiles"`
}

// ==================== System Payloads ====================

// WelcomePayload is sent on connection.
type WelcomePayload struct {
	ServerVersion string `json:"server_version"`
}
