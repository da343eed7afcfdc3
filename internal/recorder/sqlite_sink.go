package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DBFile is the name of the optional SQLite results database inside the
// participant directory. It is shared by both variants.
const DBFile = "results.db"

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = FULL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    session_id  TEXT PRIMARY KEY,
    subject_id  TEXT NOT NULL,
    variant     TEXT NOT NULL,
    started_at  TEXT NOT NULL DEFAULT '',
    meta        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trials (
    session_id   TEXT NOT NULL,
    trial        INTEGER NOT NULL,
    stimulus     TEXT NOT NULL,
    category     TEXT NOT NULL,
    pressed_keys TEXT NOT NULL DEFAULT '',
    response     TEXT NOT NULL,
    correct      INTEGER NOT NULL,
    rt_ms        INTEGER NOT NULL,
    recorded_at  TEXT NOT NULL,
    PRIMARY KEY (session_id, trial)
);
`

// SQLiteSink mirrors the results stream into a SQLite database.
type SQLiteSink struct {
	path string
	db   *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and registers
// the session described by meta.
func OpenSQLite(path string, meta *SessionMeta) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "init schema", Path: path, Err: err}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("marshal session meta: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO sessions (session_id, subject_id, variant, started_at, meta) VALUES (?, ?, ?, ?, ?)`,
		meta.SessionID, meta.Participant.SubjectID, meta.Participant.Variant, meta.StartedAt, string(data),
	)
	if err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "insert session", Path: path, Err: err}
	}

	return &SQLiteSink{path: path, db: db}, nil
}

func (s *SQLiteSink) Append(rec Record) error {
	correct := 0
	if rec.Correct {
		correct = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO trials (session_id, trial, stimulus, category, pressed_keys, response, correct, rt_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Trial, rec.Stimulus, rec.Category,
		strings.Join(rec.PressedKeys, " "), rec.Response, correct,
		rec.ReactionTime.Milliseconds(), rec.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &PersistenceError{Op: "insert trial", Path: s.path, Err: err}
	}
	return nil
}

// UpdateMeta stores the latest metadata for the session.
func (s *SQLiteSink) UpdateMeta(meta *SessionMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal session meta: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE sessions SET meta = ? WHERE session_id = ?`, string(data), meta.SessionID); err != nil {
		return &PersistenceError{Op: "update session", Path: s.path, Err: err}
	}
	return nil
}

// DeleteSession removes a session and its trials.
func (s *SQLiteSink) DeleteSession(sessionID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "delete session", Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM trials WHERE session_id = ?`, sessionID); err != nil {
		return &PersistenceError{Op: "delete session", Path: s.path, Err: err}
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return &PersistenceError{Op: "delete session", Path: s.path, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "delete session", Path: s.path, Err: err}
	}
	return nil
}

// CountTrials returns the number of trials stored for a session.
func (s *SQLiteSink) CountTrials(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM trials WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return &PersistenceError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}
