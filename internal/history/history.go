// Package history keeps a SQLite log of sync sessions.
package history

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one sync session's median measurement and outcome.
type Entry struct {
	ID             int64     `json:"id"`
	Session        string    `json:"session"`
	Timestamp      time.Time `json:"timestamp"`
	Server         string    `json:"server"`
	ServerIP       string    `json:"server_ip"`
	Offset         float64   `json:"offset"`
	Delay          float64   `json:"delay"`
	PostSyncOffset float64   `json:"post_sync_offset"`
	Samples        int       `json:"samples"`
	Success        bool      `json:"success"`
	Code           string    `json:"code,omitempty"`
}

// Fixed-width so timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

type DB struct {
	db *sql.DB
}

// NewDB opens or creates the database at path.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS syncs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		server TEXT NOT NULL,
		server_ip TEXT,
		offset_ms REAL NOT NULL,
		delay_ms REAL NOT NULL,
		post_sync_offset_ms REAL NOT NULL,
		samples INTEGER NOT NULL,
		success INTEGER NOT NULL,
		code TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_syncs_timestamp ON syncs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_syncs_server ON syncs(server);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Record stores one session.
func (d *DB) Record(e Entry) error {
	_, err := d.db.Exec(`
		INSERT INTO syncs (session, timestamp, server, server_ip, offset_ms, delay_ms, post_sync_offset_ms, samples, success, code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Session, e.Timestamp.UTC().Format(timeFormat), e.Server, e.ServerIP,
		e.Offset, e.Delay, e.PostSyncOffset, e.Samples, e.Success, e.Code)
	return err
}

// Recent returns up to limit sessions, newest first.
func (d *DB) Recent(limit int) ([]Entry, error) {
	rows, err := d.db.Query(`
		SELECT id, session, timestamp, server, server_ip, offset_ms, delay_ms, post_sync_offset_ms, samples, success, code
		FROM syncs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var timestamp string
		var serverIP, code sql.NullString
		if err := rows.Scan(&e.ID, &e.Session, &timestamp, &e.Server, &serverIP,
			&e.Offset, &e.Delay, &e.PostSyncOffset, &e.Samples, &e.Success, &code); err != nil {
			return nil, err
		}
		e.Timestamp, err = time.Parse(timeFormat, timestamp)
		if err != nil {
			return nil, err
		}
		e.ServerIP = serverIP.String
		e.Code = code.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Servers returns how many sessions each server has.
func (d *DB) Servers() (map[string]int, error) {
	rows, err := d.db.Query(`SELECT server, COUNT(*) FROM syncs GROUP BY server`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var server string
		var count int
		if err := rows.Scan(&server, &count); err != nil {
			return nil, err
		}
		counts[server] = count
	}
	return counts, rows.Err()
}
