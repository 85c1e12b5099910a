package database

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Players: opaque tokens, no accounts
			CREATE TABLE players (
				id TEXT PRIMARY KEY,
				token TEXT UNIQUE NOT NULL,
				name TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_players_token ON players(token);

			CREATE TABLE games (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'started',
				created_by TEXT,
				settings_json TEXT NOT NULL,
				winner_seat INTEGER,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				ended_at DATETIME,
				FOREIGN KEY (created_by) REFERENCES players(id)
			);
			CREATE INDEX idx_games_status ON games(status);

			-- Seats: one row per seat; player_id is NULL for bots and open seats
			CREATE TABLE game_seats (
				game_id TEXT NOT NULL,
				seat INTEGER NOT NULL,
				player_id TEXT,
				name TEXT NOT NULL,
				color TEXT NOT NULL,
				is_bot BOOLEAN DEFAULT FALSE,
				is_connected BOOLEAN DEFAULT FALSE,
				PRIMARY KEY (game_id, seat),
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE,
				FOREIGN KEY (player_id) REFERENCES players(id)
			);
			CREATE INDEX idx_game_seats_player ON game_seats(player_id);

			-- Latest snapshot per game
			CREATE TABLE game_state (
				game_id TEXT PRIMARY KEY,
				state_json TEXT NOT NULL,
				current_seat INTEGER,
				turn INTEGER DEFAULT 0,
				phase TEXT,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);

			-- Every command received, accepted or not
			CREATE TABLE game_actions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id TEXT NOT NULL,
				seat INTEGER NOT NULL,
				action_type TEXT NOT NULL,
				action_json TEXT NOT NULL,
				error_code TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_game_actions_game ON game_actions(game_id);
		`,
	},
	{
		id:   2,
		name: "add_game_history",
		sql: `
			CREATE TABLE game_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id TEXT NOT NULL,
				turn INTEGER NOT NULL,
				phase TEXT NOT NULL,
				seat INTEGER NOT NULL,
				player_name TEXT NOT NULL DEFAULT '',
				event_type TEXT NOT NULL,
				message TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_game_history_game ON game_history(game_id);
		`,
	},
}
