// Package persistence provides SQLite-based city storage: flat key/value
// progress fields, compressed grid snapshots and the event log.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/microcity/internal/engine"
)

// DB wraps a SQLite connection for city persistence.
type DB struct {
	conn *sqlx.DB
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
	CREATE TABLE IF NOT EXISTS city_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		profile TEXT NOT NULL,
		day INTEGER NOT NULL,
		money REAL NOT NULL,
		economy INTEGER NOT NULL,
		grid BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq INTEGER NOT NULL,
		day INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveFields upserts flat key/value fields in one transaction.
func (db *DB) SaveFields(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveFieldsTx(tx, fields); err != nil {
		return err
	}
	return tx.Commit()
}

func saveFieldsTx(tx *sqlx.Tx, fields map[string]string) error {
	stmt, err := tx.Preparex("INSERT OR REPLACE INTO city_meta (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, v := range fields {
		if _, err := stmt.Exec(k, v); err != nil {
			return fmt.Errorf("save field %s: %w", k, err)
		}
	}
	return nil
}

// LoadFields returns every stored key/value field.
func (db *DB) LoadFields() (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&rows, "SELECT key, value FROM city_meta"); err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// GetField retrieves one field. Missing keys return "" and no error.
func (db *DB) GetField(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM city_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

type snapshotRow struct {
	ID        string  `db:"id"`
	Profile   string  `db:"profile"`
	Day       int     `db:"day"`
	Money     float64 `db:"money"`
	Economy   bool    `db:"economy"`
	Grid      []byte  `db:"grid"`
	CreatedAt int64   `db:"created_at"`
}

// SaveCity stores a compressed snapshot of the city and returns its ID.
func (db *DB) SaveCity(st engine.State) (string, error) {
	blob, err := EncodeGrid(st.Grid)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = db.conn.Exec(`INSERT INTO snapshots
		(id, profile, day, money, economy, grid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, st.Profile, st.Day, st.Money, st.Economy, blob, time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	slog.Info("city saved", "id", id, "day", st.Day, "bytes", len(blob))
	return id, nil
}

// LoadLatestCity returns the most recent snapshot. ok is false when none
// exists.
func (db *DB) LoadLatestCity() (st engine.State, ok bool, err error) {
	var row snapshotRow
	err = db.conn.Get(&row, `SELECT id, profile, day, money, economy, grid, created_at
		FROM snapshots ORDER BY created_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return st, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("load snapshot: %w", err)
	}

	g, err := DecodeGrid(row.Grid)
	if err != nil {
		return st, false, fmt.Errorf("snapshot %s: %w", row.ID, err)
	}
	return engine.State{
		Profile: row.Profile,
		Grid:    g,
		Day:     row.Day,
		Money:   row.Money,
		Economy: row.Economy,
	}, true, nil
}

// PruneSnapshots keeps only the newest keep snapshots.
func (db *DB) PruneSnapshots(keep int) error {
	_, err := db.conn.Exec(`DELETE FROM snapshots WHERE id NOT IN
		(SELECT id FROM snapshots ORDER BY created_at DESC LIMIT ?)`, keep)
	return err
}

// saveEventsTx appends events inside tx.
func saveEventsTx(tx *sqlx.Tx, events []engine.Event) error {
	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (seq, day, description, category) VALUES (?, ?, ?, ?)",
			e.Seq, e.Day, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT seq, day, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// fieldEventSeq records the newest event already written to the log.
const fieldEventSeq = "eventsSeq"

// EventMark returns the sequence number of the newest logged event.
func (db *DB) EventMark() (uint64, error) {
	mark, err := db.GetField(fieldEventSeq)
	if err != nil || mark == "" {
		return 0, err
	}
	return strconv.ParseUint(mark, 10, 64)
}

// EventHistory returns up to limit stored events, oldest first, ready for
// Simulation.ResumeEvents.
func (db *DB) EventHistory(limit int) ([]engine.Event, error) {
	events, err := db.RecentEvents(limit)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	slices.Reverse(events)
	return events, nil
}

// SaveCityState performs a full save: the snapshot, then progress fields,
// new events and the event mark committed together.
func (db *DB) SaveCityState(sim *engine.Simulation, fields map[string]string) error {
	if _, err := db.SaveCity(sim.Snapshot()); err != nil {
		return fmt.Errorf("save city: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var mark string
	err = tx.Get(&mark, "SELECT value FROM city_meta WHERE key = ?", fieldEventSeq)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read event mark: %w", err)
	}
	saved, _ := strconv.ParseUint(mark, 10, 64)
	var pending []engine.Event
	for _, e := range sim.Events(0) {
		if e.Seq > saved {
			pending = append(pending, e)
			saved = e.Seq
		}
	}
	if err := saveEventsTx(tx, pending); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	all := maps.Clone(fields)
	if all == nil {
		all = make(map[string]string, 1)
	}
	all[fieldEventSeq] = strconv.FormatUint(saved, 10)
	if err := saveFieldsTx(tx, all); err != nil {
		return fmt.Errorf("save fields: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if err := db.PruneSnapshots(20); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
