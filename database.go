package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// MatchRow represents a completed match
type MatchRow struct {
	ID        string
	Mode      string
	Arena     string
	Duration  float64
	Winner    string // name of the first placed player
	CreatedAt time.Time
}

// MatchPlayerRow represents a slot's result in a match
type MatchPlayerRow struct {
	MatchID   string
	Slot      int
	Name      string
	IsBot     bool
	Placement int
	Score     float64
	Kills     int
	Deaths    int
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		arena TEXT NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id TEXT NOT NULL REFERENCES matches(id),
		slot INTEGER NOT NULL,
		name TEXT NOT NULL,
		is_bot INTEGER NOT NULL DEFAULT 0,
		placement INTEGER NOT NULL DEFAULT 0,
		score REAL NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, slot)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		session_id TEXT,
		data TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at);
	CREATE INDEX IF NOT EXISTS idx_analytics_type ON analytics_events(event_type, created_at);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Error().Err(err).Msg("DB migration error")
	}
	return err
}

// GetSetting returns a stored setting, "" when missing
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil && err != sql.ErrNoRows {
		log.Error().Err(err).Str("key", key).Msg("read setting")
	}
	return value
}

// SetSetting stores a setting, replacing any previous value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// SaveOutcome records a finished match and its players in one transaction
func (db *DB) SaveOutcome(o MatchOutcome) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("save outcome: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO matches (id, mode, arena, duration) VALUES (?, ?, ?, ?)",
		o.ID, o.Mode, o.Arena, o.Duration,
	); err != nil {
		return fmt.Errorf("save outcome %s: %w", o.ID, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO match_players (match_id, slot, name, is_bot, placement, score, kills, deaths) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save outcome: %w", err)
	}
	defer stmt.Close()
	for _, p := range o.Players {
		if _, err := stmt.Exec(o.ID, p.Slot, p.Name, p.IsBot, p.Placement, p.Score, p.Kills, p.Deaths); err != nil {
			return fmt.Errorf("save outcome %s slot %d: %w", o.ID, p.Slot, err)
		}
	}
	return tx.Commit()
}

// RecentMatches returns the latest matches, newest first
func (db *DB) RecentMatches(limit int) ([]MatchRow, error) {
	rows, err := db.conn.Query(`
		SELECT m.id, m.mode, m.arena, m.duration, m.created_at,
			COALESCE((SELECT name FROM match_players mp
				WHERE mp.match_id = m.id AND mp.placement = 1 ORDER BY slot LIMIT 1), '')
		FROM matches m
		ORDER BY m.created_at DESC, m.rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MatchRow
	for rows.Next() {
		var r MatchRow
		if err := rows.Scan(&r.ID, &r.Mode, &r.Arena, &r.Duration, &r.CreatedAt, &r.Winner); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// MatchPlayers returns the players of a match ordered by placement
func (db *DB) MatchPlayers(matchID string) ([]MatchPlayerRow, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, slot, name, is_bot, placement, score, kills, deaths
		FROM match_players WHERE match_id = ?
		ORDER BY placement, slot
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MatchPlayerRow
	for rows.Next() {
		var r MatchPlayerRow
		if err := rows.Scan(&r.MatchID, &r.Slot, &r.Name, &r.IsBot, &r.Placement, &r.Score, &r.Kills, &r.Deaths); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
