package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hexlands/internal/game"
)

// GameStatus represents the lifecycle of a stored game.
type GameStatus string

const (
	GameStatusStarted  GameStatus = "started"
	GameStatusFinished GameStatus = "finished"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrSeatNotFound  = errors.New("seat not found")
	ErrSeatTaken     = errors.New("seat is already taken")
	ErrStateNotFound = errors.New("no saved state")
)

// GameInfo is the summary shown in game lists.
type GameInfo struct {
	ID        string
	Name      string
	Status    GameStatus
	CreatedAt time.Time
	Turn      int
	Phase     string
	SeatCount int
}

// Game is a stored game with its settings.
type Game struct {
	GameInfo
	CreatedBy  string
	Settings   game.Settings
	WinnerSeat int
	EndedAt    *time.Time
}

// Seat is one seat of a stored game. PlayerID is empty for bots and for
// seats nobody has claimed yet.
type Seat struct {
	Seat        int
	PlayerID    string
	Name        string
	Color       string
	IsBot       bool
	IsConnected bool
}

// Open reports whether a human may still claim the seat.
func (s *Seat) Open() bool {
	return !s.IsBot && s.PlayerID == ""
}

// CreateGame stores a new game with its seats.
func (db *DB) CreateGame(id, name, createdBy string, settings game.Settings, seats []Seat) (*Game, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.Exec(`
		INSERT INTO games (id, name, status, created_by, settings_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, name, GameStatusStarted, nullString(createdBy), string(settingsJSON), now)
	if err != nil {
		return nil, err
	}

	for _, s := range seats {
		_, err = tx.Exec(`
			INSERT INTO game_seats (game_id, seat, player_id, name, color, is_bot)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, s.Seat, nullString(s.PlayerID), s.Name, s.Color, s.IsBot)
		if err != nil {
			return nil, fmt.Errorf("insert seat %d: %w", s.Seat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Game{
		GameInfo: GameInfo{
			ID:        id,
			Name:      name,
			Status:    GameStatusStarted,
			CreatedAt: now,
			Phase:     game.PhaseSetup.String(),
			SeatCount: len(seats),
		},
		CreatedBy:  createdBy,
		Settings:   settings,
		WinnerSeat: game.NoPlayer,
	}, nil
}

// GetGame retrieves a game by ID.
func (db *DB) GetGame(id string) (*Game, error) {
	var g Game
	var createdBy sql.NullString
	var settingsJSON string
	var winner sql.NullInt64
	var endedAt sql.NullTime

	err := db.conn.QueryRow(`
		SELECT g.id, g.name, g.status, g.created_by, g.settings_json, g.winner_seat,
		       g.created_at, g.ended_at,
		       COALESCE(s.turn, 0), COALESCE(s.phase, ?),
		       (SELECT COUNT(*) FROM game_seats WHERE game_id = g.id)
		FROM games g
		LEFT JOIN game_state s ON s.game_id = g.id
		WHERE g.id = ?
	`, game.PhaseSetup.String(), id).Scan(
		&g.ID, &g.Name, &g.Status, &createdBy, &settingsJSON, &winner,
		&g.CreatedAt, &endedAt,
		&g.Turn, &g.Phase, &g.SeatCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(settingsJSON), &g.Settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	g.CreatedBy = createdBy.String
	g.WinnerSeat = game.NoPlayer
	if winner.Valid {
		g.WinnerSeat = int(winner.Int64)
	}
	if endedAt.Valid {
		g.EndedAt = &endedAt.Time
	}
	return &g, nil
}

// ListGames returns games with the given status, newest first. An empty
// status lists everything.
func (db *DB) ListGames(status GameStatus) ([]*GameInfo, error) {
	rows, err := db.conn.Query(`
		SELECT g.id, g.name, g.status, g.created_at,
		       COALESCE(s.turn, 0), COALESCE(s.phase, ''),
		       (SELECT COUNT(*) FROM game_seats WHERE game_id = g.id)
		FROM games g
		LEFT JOIN game_state s ON s.game_id = g.id
		WHERE ? = '' OR g.status = ?
		ORDER BY g.created_at DESC
	`, status, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGameInfos(rows)
}

func scanGameInfos(rows *sql.Rows) ([]*GameInfo, error) {
	var games []*GameInfo
	for rows.Next() {
		var g GameInfo
		if err := rows.Scan(&g.ID, &g.Name, &g.Status, &g.CreatedAt, &g.Turn, &g.Phase, &g.SeatCount); err != nil {
			return nil, err
		}
		games = append(games, &g)
	}
	return games, rows.Err()
}

// GetSeats returns the seats of a game in seat order.
func (db *DB) GetSeats(gameID string) ([]*Seat, error) {
	rows, err := db.conn.Query(`
		SELECT seat, player_id, name, color, is_bot, is_connected
		FROM game_seats WHERE game_id = ?
		ORDER BY seat
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []*Seat
	for rows.Next() {
		var s Seat
		var playerID sql.NullString
		if err := rows.Scan(&s.Seat, &playerID, &s.Name, &s.Color, &s.IsBot, &s.IsConnected); err != nil {
			return nil, err
		}
		s.PlayerID = playerID.String
		seats = append(seats, &s)
	}
	return seats, rows.Err()
}

// ClaimSeat gives an open seat to a player. Claiming a seat the player
// already holds succeeds.
func (db *DB) ClaimSeat(gameID string, seat int, playerID, name string) error {
	var current sql.NullString
	var isBot bool
	err := db.conn.QueryRow(`
		SELECT player_id, is_bot FROM game_seats WHERE game_id = ? AND seat = ?
	`, gameID, seat).Scan(&current, &isBot)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSeatNotFound
	}
	if err != nil {
		return err
	}
	if current.String == playerID {
		return nil
	}
	if isBot || current.Valid {
		return ErrSeatTaken
	}

	_, err = db.conn.Exec(`
		UPDATE game_seats SET player_id = ?, name = ?
		WHERE game_id = ? AND seat = ? AND player_id IS NULL
	`, playerID, name, gameID, seat)
	return err
}

// FindSeat returns the seat a player holds in a game.
func (db *DB) FindSeat(gameID, playerID string) (int, error) {
	var seat int
	err := db.conn.QueryRow(`
		SELECT seat FROM game_seats WHERE game_id = ? AND player_id = ?
	`, gameID, playerID).Scan(&seat)
	if errors.Is(err, sql.ErrNoRows) {
		return game.NoPlayer, ErrSeatNotFound
	}
	return seat, err
}

// SetSeatConnected updates a seat's connection flag.
func (db *DB) SetSeatConnected(gameID string, seat int, connected bool) error {
	_, err := db.conn.Exec(`
		UPDATE game_seats SET is_connected = ? WHERE game_id = ? AND seat = ?
	`, connected, gameID, seat)
	return err
}

// SaveGameState stores the latest snapshot of a game.
func (db *DB) SaveGameState(gameID string, state *game.GameState) error {
	return saveState(db.conn, gameID, state)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func saveState(x execer, gameID string, state *game.GameState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = x.Exec(`
		INSERT INTO game_state (game_id, state_json, current_seat, turn, phase, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			state_json = excluded.state_json,
			current_seat = excluded.current_seat,
			turn = excluded.turn,
			phase = excluded.phase,
			updated_at = excluded.updated_at
	`, gameID, string(stateJSON), state.CurrentPlayer, state.Turn, state.Phase.String(), time.Now())
	return err
}

// LoadGameState restores the latest snapshot of a game.
func (db *DB) LoadGameState(gameID string) (*game.GameState, error) {
	var stateJSON string
	err := db.conn.QueryRow(`
		SELECT state_json FROM game_state WHERE game_id = ?
	`, gameID).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}

	var state game.GameState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if state.Board == nil {
		return nil, fmt.Errorf("state of game %s has no board", gameID)
	}
	if err := state.Board.Validate(); err != nil {
		return nil, fmt.Errorf("state of game %s: %w", gameID, err)
	}
	return &state, nil
}

// EndGame marks a game finished.
func (db *DB) EndGame(gameID string, winnerSeat int) error {
	res, err := db.conn.Exec(`
		UPDATE games SET status = ?, winner_seat = ?, ended_at = ?
		WHERE id = ?
	`, GameStatusFinished, winnerSeat, time.Now(), gameID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGameNotFound
	}
	return nil
}

// DeleteGame removes a game and everything attached to it.
func (db *DB) DeleteGame(gameID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"game_history", "game_actions", "game_state", "game_seats"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE game_id = ?", gameID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	if _, err := tx.Exec("DELETE FROM games WHERE id = ?", gameID); err != nil {
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
