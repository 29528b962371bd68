package logging

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"transitcore/typedef"
)

const schemaVersion = 1

// SQLiteLogger persists log entries to a sqlite database, grounded on
// original_source/src/Logger.py's DbLogger: a "config" key/value table
// carrying the schema version, and a "log_entries" table of
// (id, date, level, text) rows. Uses modernc.org/sqlite, the pure-Go driver
// also used by banshee-data-velocity.report, so the logger needs no cgo
// toolchain.
type SQLiteLogger struct {
	db *sql.DB
}

// NewSQLiteLogger opens (creating if necessary) the sqlite database at
// path and ensures its tables exist.
func NewSQLiteLogger(path string) (*SQLiteLogger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite logger: %w", err)
	}

	l := &SQLiteLogger{db: db}
	if err := l.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *SQLiteLogger) initTables() error {
	if _, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS config(key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		return fmt.Errorf("create config table: %w", err)
	}
	if _, err := l.db.Exec(`INSERT OR IGNORE INTO config(key, value) VALUES('version', ?)`, schemaVersion); err != nil {
		return fmt.Errorf("seed config version: %w", err)
	}
	if _, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS log_entries(
		id INTEGER PRIMARY KEY ASC,
		date INTEGER,
		level TEXT,
		text TEXT
	)`); err != nil {
		return fmt.Errorf("create log_entries table: %w", err)
	}
	return nil
}

// Log implements typedef.Logger: best-effort, a failed insert is swallowed
// rather than propagated (spec §4.6: logging is non-blocking from the
// core's viewpoint).
func (l *SQLiteLogger) Log(level typedef.LogLevel, text string) {
	_, _ = l.db.Exec(`INSERT INTO log_entries(date, level, text) VALUES(?, ?, ?)`,
		time.Now().Unix(), level.String(), text)
}

// Entry is one row read back via NextEntry, matching DbLogger.get_next_entry.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Level     typedef.LogLevel
	Text      string
}

// NextEntry returns the first log entry with id greater than afterID (0 to
// start from the beginning), or ok=false if none remain.
func (l *SQLiteLogger) NextEntry(afterID int64) (entry Entry, ok bool, err error) {
	var row *sql.Row
	if afterID <= 0 {
		row = l.db.QueryRow(`SELECT id, date, level, text FROM log_entries ORDER BY id LIMIT 1`)
	} else {
		row = l.db.QueryRow(`SELECT id, date, level, text FROM log_entries WHERE id > ? ORDER BY id LIMIT 1`, afterID)
	}

	var id, date int64
	var levelName, text string
	if err := row.Scan(&id, &date, &levelName, &text); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("scan log entry: %w", err)
	}

	return Entry{
		ID:        id,
		Timestamp: time.Unix(date, 0),
		Level:     levelFromName(levelName),
		Text:      text,
	}, true, nil
}

// Close releases the underlying database handle.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}

func levelFromName(name string) typedef.LogLevel {
	switch name {
	case "Debug":
		return typedef.LogDebug
	case "Info":
		return typedef.LogInfo
	case "Warning":
		return typedef.LogWarning
	case "Error":
		return typedef.LogError
	case "Fatal":
		return typedef.LogFatal
	default:
		return typedef.LogInfo
	}
}
