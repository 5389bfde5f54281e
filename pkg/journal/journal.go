// Package journal records button events in a local SQLite database.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// Entry is one recorded button event.
type Entry struct {
	ID         string
	ButtonID   string
	ButtonName string
	Event      string
	EditedAt   time.Time // remote last_edited_time of the snapshot that fired
	RecordedAt time.Time
}

// Filter narrows List results.
type Filter struct {
	Button string // matches the button id or name
	Event  string
	Limit  int
}

// Journal is an append-only event log.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal in dataDir.
func Open(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "journal.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize journal: %w", err)
	}
	return j, nil
}

func (j *Journal) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		button_id TEXT NOT NULL,
		button_name TEXT NOT NULL,
		event TEXT NOT NULL,
		edited_at TIMESTAMP,
		recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_button ON events(button_id);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Record appends an entry. Empty ID and RecordedAt are filled in.
func (j *Journal) Record(e *Entry) error {
	if e.ButtonID == "" || e.Event == "" {
		return fmt.Errorf("journal entry needs a button id and an event")
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	if e.ID == "" {
		e.ID = ulid.MustNew(ulid.Timestamp(e.RecordedAt), ulid.DefaultEntropy()).String()
	}

	query := `
	INSERT INTO events (id, button_id, button_name, event, edited_at, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := j.db.Exec(query, e.ID, e.ButtonID, e.ButtonName, e.Event, e.EditedAt, e.RecordedAt)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (j *Journal) List(f Filter) ([]*Entry, error) {
	var where []string
	var args []any
	if f.Button != "" {
		where = append(where, "(button_id = ? OR button_name = ?)")
		args = append(args, f.Button, f.Button)
	}
	if f.Event != "" {
		where = append(where, "event = ?")
		args = append(args, f.Event)
	}

	query := `SELECT id, button_id, button_name, event, edited_at, recorded_at FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// ULIDs sort by creation time.
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var edited sql.NullTime
		if err := rows.Scan(&e.ID, &e.ButtonID, &e.ButtonName, &e.Event, &edited, &e.RecordedAt); err != nil {
			return nil, err
		}
		if edited.Valid {
			e.EditedAt = edited.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
