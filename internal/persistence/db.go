// Package persistence provides SQLite-based storage for games, their
// quarterly reports and random events.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/topaz-sim/internal/economy"
	"github.com/talgya/topaz-sim/internal/engine"
	"github.com/talgya/topaz-sim/internal/report"
)

// ErrGameNotFound is returned when no game has the requested id.
var ErrGameNotFound = errors.New("game not found")

// DB wraps a SQLite connection for game persistence.
type DB struct {
	conn *sqlx.DB
}

// Game is one stored game row. Snapshot holds the JSON-encoded
// engine.Snapshot taken after the last completed quarter.
type Game struct {
	ID        string `db:"id" json:"id"`
	Players   int    `db:"players" json:"players"`
	Seed      int64  `db:"seed" json:"seed"`
	Quarters  int    `db:"quarters" json:"quarters"`
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
	Snapshot  string `db:"snapshot_json" json:"-"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		players INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		quarters INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		snapshot_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		quarter_index INTEGER NOT NULL,
		quarter INTEGER NOT NULL,
		year INTEGER NOT NULL,
		company_index INTEGER NOT NULL,
		company TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		quarter INTEGER NOT NULL,
		year INTEGER NOT NULL,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		description TEXT NOT NULL,
		event_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_game ON reports(game_id, company_index, quarter_index);
	CREATE INDEX IF NOT EXISTS idx_events_game ON events(game_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateGame stores a new game in its opening position.
func (db *DB) CreateGame(id string, snap engine.Snapshot) error {
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.conn.Exec(`INSERT INTO games
		(id, players, seed, quarters, created_at, updated_at, snapshot_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, snap.Players, snap.Seed, snap.Quarters, now, now, string(snapJSON),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", id, err)
	}
	slog.Info("game created", "id", id, "players", snap.Players, "companies", len(snap.Companies))
	return nil
}

// Game returns the stored row for id.
func (db *DB) Game(id string) (*Game, error) {
	var g Game
	err := db.conn.Get(&g, "SELECT * FROM games WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrGameNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	return &g, nil
}

// LoadGame decodes the latest snapshot of a game.
func (db *DB) LoadGame(id string) (engine.Snapshot, error) {
	var snap engine.Snapshot
	g, err := db.Game(id)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal([]byte(g.Snapshot), &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return snap, nil
}

// Games lists stored games, most recently updated first.
func (db *DB) Games(limit int) ([]Game, error) {
	var games []Game
	err := db.conn.Select(&games,
		"SELECT * FROM games ORDER BY updated_at DESC, id LIMIT ?",
		limit,
	)
	return games, err
}

// SaveStep records one completed quarter: the new snapshot, every
// company's report and the events generated for the next quarter. It
// writes all of it in one transaction.
func (db *DB) SaveStep(id string, snap engine.Snapshot, res *engine.StepResult) error {
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	out, err := tx.Exec(
		"UPDATE games SET quarters = ?, updated_at = ?, snapshot_json = ? WHERE id = ?",
		snap.Quarters, time.Now().UTC().Format(time.RFC3339), string(snapJSON), id,
	)
	if err != nil {
		return fmt.Errorf("update game %s: %w", id, err)
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", id, ErrGameNotFound)
	}

	stmt, err := tx.Preparex(`INSERT INTO reports
		(game_id, quarter_index, quarter, year, company_index, company, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range res.Reports {
		repJSON, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode report %s: %w", r.Company, err)
		}
		_, err = stmt.Exec(id, snap.Quarters, r.Quarter, r.Year, r.CompanyIndex, r.Company, string(repJSON))
		if err != nil {
			return fmt.Errorf("insert report %s: %w", r.Company, err)
		}
	}

	for _, ev := range res.Events {
		evJSON, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		_, err = tx.Exec(`INSERT INTO events
			(game_id, quarter, year, type, severity, description, event_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, ev.Quarter, ev.Year, ev.Type, ev.Severity, ev.Description, string(evJSON),
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("quarter saved", "game", id, "quarters", snap.Quarters, "reports", len(res.Reports), "events", len(res.Events))
	return nil
}

// Reports returns a company's report history, oldest first. A negative
// company index returns every company's reports.
func (db *DB) Reports(id string, company int) ([]report.ManagementReport, error) {
	var rows []string
	var err error
	if company < 0 {
		err = db.conn.Select(&rows,
			"SELECT report_json FROM reports WHERE game_id = ? ORDER BY quarter_index, company_index",
			id,
		)
	} else {
		err = db.conn.Select(&rows,
			"SELECT report_json FROM reports WHERE game_id = ? AND company_index = ? ORDER BY quarter_index",
			id, company,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}

	out := make([]report.ManagementReport, len(rows))
	for i, row := range rows {
		if err := json.Unmarshal([]byte(row), &out[i]); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
	}
	return out, nil
}

// RecentEvents returns the most recent N events of a game, newest first.
func (db *DB) RecentEvents(id string, limit int) ([]economy.RandomEvent, error) {
	var rows []string
	err := db.conn.Select(&rows,
		"SELECT event_json FROM events WHERE game_id = ? ORDER BY id DESC LIMIT ?",
		id, limit,
	)
	if err != nil {
		return nil, err
	}

	events := make([]economy.RandomEvent, len(rows))
	for i, row := range rows {
		if err := json.Unmarshal([]byte(row), &events[i]); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
	}
	return events, nil
}

// SaveMeta stores a key-value pair in metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

// CountStep bumps the process-wide count of simulated quarters.
func (db *DB) CountStep() error {
	total := 0
	if v, err := db.GetMeta("quarters_simulated"); err == nil {
		total, _ = strconv.Atoi(v)
	}
	return db.SaveMeta("quarters_simulated", strconv.Itoa(total+1))
}
