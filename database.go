package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	startingGold = 1000
	startingGems = 100
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow represents an account record
type PlayerRow struct {
	ID        string
	Username  string
	PassHash  string
	IsGuest   bool
	IsAdmin   bool
	CreatedAt time.Time
}

// ProfileRow represents a player's economy profile
type ProfileRow struct {
	PlayerID string
	Gold     int
	Gems     int
	Trophies int
	Wins     int
	Losses   int
	Deck     []string
}

// ChestRow represents one chest slot
type ChestRow struct {
	ID       string
	PlayerID string
	Type     string
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL for concurrent readers alongside the result writer
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

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		is_guest INTEGER NOT NULL DEFAULT 0,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		player_id TEXT PRIMARY KEY REFERENCES players(id),
		gold INTEGER NOT NULL DEFAULT 0,
		gems INTEGER NOT NULL DEFAULT 0,
		trophies INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		deck TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS cards (
		player_id TEXT NOT NULL REFERENCES players(id),
		card_id TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, card_id)
	);

	CREATE TABLE IF NOT EXISTS chests (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL REFERENCES players(id),
		type TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		player_id TEXT NOT NULL DEFAULT '',
		match_id TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chests_player ON chests(player_id);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// CreatePlayer creates an account with its starter profile and returns the ID
func (db *DB) CreatePlayer(username, passHash string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO players (id, username, pass_hash) VALUES (?, ?, ?)",
		id, username, passHash,
	)
	if err != nil {
		return "", err
	}
	deck, _ := json.Marshal(DefaultDeck)
	_, err = db.conn.Exec(
		"INSERT INTO profiles (player_id, gold, gems, deck) VALUES (?, ?, ?, ?)",
		id, startingGold, startingGems, string(deck),
	)
	return id, err
}

// CreateGuest creates a passwordless guest account with a starter profile
func (db *DB) CreateGuest(username string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO players (id, username, pass_hash, is_guest) VALUES (?, ?, '', 1)",
		id, username,
	)
	if err != nil {
		return "", err
	}
	deck, _ := json.Marshal(DefaultDeck)
	_, err = db.conn.Exec(
		"INSERT INTO profiles (player_id, gold, gems, deck) VALUES (?, ?, ?, ?)",
		id, startingGold, startingGems, string(deck),
	)
	return id, err
}

// GetPlayerByUsername returns a player by username, nil if absent
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, is_guest, is_admin, created_at FROM players WHERE username = ?",
		username,
	)
	return scanPlayer(row)
}

// GetPlayerByID returns a player by ID, nil if absent
func (db *DB) GetPlayerByID(id string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, is_guest, is_admin, created_at FROM players WHERE id = ?",
		id,
	)
	return scanPlayer(row)
}

func scanPlayer(row *sql.Row) (*PlayerRow, error) {
	p := &PlayerRow{}
	var guest, admin int
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &guest, &admin, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	p.IsGuest = guest != 0
	p.IsAdmin = admin != 0
	return p, err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM players WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetProfile returns a player's economy profile, nil if absent
func (db *DB) GetProfile(playerID string) (*ProfileRow, error) {
	row := db.conn.QueryRow(
		"SELECT player_id, gold, gems, trophies, wins, losses, deck FROM profiles WHERE player_id = ?",
		playerID,
	)
	p := &ProfileRow{}
	var deck string
	err := row.Scan(&p.PlayerID, &p.Gold, &p.Gems, &p.Trophies, &p.Wins, &p.Losses, &deck)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(deck), &p.Deck); err != nil {
		p.Deck = DefaultDeck
	}
	return p, nil
}

// UpdateDeck persists a player's current deck
func (db *DB) UpdateDeck(playerID string, deck []string) error {
	data, err := json.Marshal(deck)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec("UPDATE profiles SET deck = ? WHERE player_id = ?", string(data), playerID)
	return err
}

// ApplyMatchOutcome records a win/loss pair with the winner's gold and trophy
// rewards in one transaction.
func (db *DB) ApplyMatchOutcome(winnerID, loserID string, gold, trophies int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"UPDATE profiles SET gold = gold + ?, trophies = trophies + ?, wins = wins + 1 WHERE player_id = ?",
		gold, trophies, winnerID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"UPDATE profiles SET trophies = MAX(0, trophies - ?), losses = losses + 1 WHERE player_id = ?",
		trophies, loserID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// AddGold credits gold to a profile
func (db *DB) AddGold(playerID string, amount int) error {
	_, err := db.conn.Exec("UPDATE profiles SET gold = gold + ? WHERE player_id = ?", amount, playerID)
	return err
}

// IncrementCard adds copies of a card to a player's collection
func (db *DB) IncrementCard(playerID, cardID string, count int) error {
	_, err := db.conn.Exec(`
		INSERT INTO cards (player_id, card_id, count) VALUES (?, ?, ?)
		ON CONFLICT(player_id, card_id) DO UPDATE SET count = count + excluded.count`,
		playerID, cardID, count,
	)
	return err
}

// ChestCount returns the number of occupied chest slots
func (db *DB) ChestCount(playerID string) (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM chests WHERE player_id = ?", playerID).Scan(&count)
	return count, err
}

// AddChest stores a new chest and returns its ID
func (db *DB) AddChest(playerID, chestType string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO chests (id, player_id, type) VALUES (?, ?, ?)",
		id, playerID, chestType,
	)
	return id, err
}

// GetChest returns one chest owned by the player, nil if absent
func (db *DB) GetChest(playerID, chestID string) (*ChestRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, player_id, type FROM chests WHERE id = ? AND player_id = ?",
		chestID, playerID,
	)
	c := &ChestRow{}
	err := row.Scan(&c.ID, &c.PlayerID, &c.Type)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// RemoveChest deletes a chest slot
func (db *DB) RemoveChest(chestID string) error {
	_, err := db.conn.Exec("DELETE FROM chests WHERE id = ?", chestID)
	return err
}

// ListChests returns a player's chest slots, oldest first
func (db *DB) ListChests(playerID string) ([]ChestRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, player_id, type FROM chests WHERE player_id = ? ORDER BY created_at",
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ChestRow
	for rows.Next() {
		var c ChestRow
		if err := rows.Scan(&c.ID, &c.PlayerID, &c.Type); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// LeaderboardEntry is one row of the trophy leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Trophies int    `json:"trophies"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// GetLeaderboard returns top non-guest profiles by trophies
func (db *DB) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(`
		SELECT p.username, pr.trophies, pr.wins, pr.losses
		FROM profiles pr JOIN players p ON p.id = pr.player_id
		WHERE p.is_guest = 0
		ORDER BY pr.trophies DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Trophies, &e.Wins, &e.Losses); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// InsertEvent stores one analytics event
func (db *DB) InsertEvent(evt AnalyticsEvent) error {
	_, err := db.conn.Exec(
		"INSERT INTO events (type, player_id, match_id, data, created_at) VALUES (?, ?, ?, ?, ?)",
		evt.Type, evt.PlayerID, evt.MatchID, evt.Data, evt.Timestamp,
	)
	return err
}

// GetSetting reads a settings value, "" if absent
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
