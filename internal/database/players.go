package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Player is a registered identity. Token is the bearer secret a client
// presents to reconnect.
type Player struct {
	ID         string
	Token      string
	Name       string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

var ErrPlayerNotFound = errors.New("player not found")

// CreatePlayer registers a name and issues it a fresh token.
func (db *DB) CreatePlayer(name string) (*Player, error) {
	id := uuid.New().String()
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = db.conn.Exec(`
		INSERT INTO players (id, token, name, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, token, name, now, now)
	if err != nil {
		return nil, err
	}

	return &Player{
		ID:         id,
		Token:      token,
		Name:       name,
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

// GetPlayerByToken resolves a bearer token to its player.
func (db *DB) GetPlayerByToken(token string) (*Player, error) {
	return db.scanPlayer(db.conn.QueryRow(`
		SELECT id, token, name, created_at, last_seen_at
		FROM players WHERE token = ?
	`, token))
}

func (db *DB) scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.Token, &p.Name, &p.CreatedAt, &p.LastSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) UpdatePlayerLastSeen(id string) error {
	_, err := db.conn.Exec(`
		UPDATE players SET last_seen_at = ? WHERE id = ?
	`, time.Now(), id)
	return err
}

// GetPlayerGames returns the unfinished games a player holds a seat in.
func (db *DB) GetPlayerGames(playerID string) ([]*GameInfo, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT g.id, g.name, g.status, g.created_at,
		       COALESCE(s.turn, 0), COALESCE(s.phase, ''),
		       (SELECT COUNT(*) FROM game_seats WHERE game_id = g.id) AS seat_count
		FROM games g
		JOIN game_seats gs ON gs.game_id = g.id
		LEFT JOIN game_state s ON s.game_id = g.id
		WHERE gs.player_id = ? AND g.status != ?
		ORDER BY g.created_at DESC
	`, playerID, GameStatusFinished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGameInfos(rows)
}

// generateToken returns 32 random bytes, hex encoded.
func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
