package database

import (
	"database/sql"
	"time"

	"hexlands/internal/game"
)

// HistoryEvent is one line of a game's public feed.
type HistoryEvent struct {
	ID         int64
	GameID     string
	Turn       int
	Phase      string
	Seat       int
	PlayerName string
	EventType  string
	Message    string
	CreatedAt  time.Time
}

// ActionRecord is one command received for a game. ErrorCode is empty when
// the engine accepted it.
type ActionRecord struct {
	ID         int64
	GameID     string
	Seat       int
	ActionType string
	ActionJSON string
	ErrorCode  string
	CreatedAt  time.Time
}

// AddHistoryEvent appends to a game's history feed.
func (db *DB) AddHistoryEvent(ev *HistoryEvent) error {
	return addHistory(db.conn, ev)
}

func addHistory(x execer, ev *HistoryEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	res, err := x.Exec(`
		INSERT INTO game_history (game_id, turn, phase, seat, player_name, event_type, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.GameID, ev.Turn, ev.Phase, ev.Seat, ev.PlayerName, ev.EventType, ev.Message, ev.CreatedAt)
	if err != nil {
		return err
	}
	ev.ID, _ = res.LastInsertId()
	return nil
}

// GetGameHistory returns the full feed of a game in order.
func (db *DB) GetGameHistory(gameID string) ([]*HistoryEvent, error) {
	return db.GetGameHistorySince(gameID, 0)
}

// GetGameHistorySince returns feed entries with an ID greater than afterID.
func (db *DB) GetGameHistorySince(gameID string, afterID int64) ([]*HistoryEvent, error) {
	rows, err := db.conn.Query(`
		SELECT id, game_id, turn, phase, seat, player_name, event_type, message, created_at
		FROM game_history
		WHERE game_id = ? AND id > ?
		ORDER BY id ASC
	`, gameID, afterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*HistoryEvent
	for rows.Next() {
		var ev HistoryEvent
		if err := rows.Scan(&ev.ID, &ev.GameID, &ev.Turn, &ev.Phase, &ev.Seat,
			&ev.PlayerName, &ev.EventType, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// LogAction appends a command to the action log.
func (db *DB) LogAction(rec *ActionRecord) error {
	return logAction(db.conn, rec)
}

func logAction(x execer, rec *ActionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := x.Exec(`
		INSERT INTO game_actions (game_id, seat, action_type, action_json, error_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.GameID, rec.Seat, rec.ActionType, rec.ActionJSON, nullString(rec.ErrorCode), rec.CreatedAt)
	if err != nil {
		return err
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

// GetActions returns a game's action log in order.
func (db *DB) GetActions(gameID string) ([]*ActionRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, game_id, seat, action_type, action_json, error_code, created_at
		FROM game_actions
		WHERE game_id = ?
		ORDER BY id ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ActionRecord
	for rows.Next() {
		var rec ActionRecord
		var code sql.NullString
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.Seat, &rec.ActionType,
			&rec.ActionJSON, &code, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ErrorCode = code.String
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// RecordAction stores an accepted command together with the snapshot it
// produced and the history lines it generated, in one transaction.
func (db *DB) RecordAction(rec *ActionRecord, state *game.GameState, history []*HistoryEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := logAction(tx, rec); err != nil {
		return err
	}
	if err := saveState(tx, rec.GameID, state); err != nil {
		return err
	}
	for _, ev := range history {
		if err := addHistory(tx, ev); err != nil {
			return err
		}
	}
	return tx.Commit()
}
