package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps all sessions in process memory.
const MemoryDSN = ":memory:"

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens a session store at dbPath. MemoryDSN (or an empty
// path) selects an in-memory database that disappears with the process.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		dbPath = MemoryDSN
	}

	dsn := dbPath
	if dbPath != MemoryDSN {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = dbPath + "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to :memory: is a separate database, so pin one.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string { return s.path }

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL DEFAULT '',
		affirmative_doc TEXT NOT NULL DEFAULT '',
		negative_doc TEXT NOT NULL DEFAULT '',
		rounds INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'idle',
		started INTEGER NOT NULL DEFAULT 0,
		finished INTEGER NOT NULL DEFAULT 0,
		transcript_json TEXT,
		summary TEXT NOT NULL DEFAULT '',
		notice TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// CreateSession inserts a new session.
func (s *SQLiteStorage) CreateSession(sess *Session) error {
	transcriptJSON, err := marshalTranscript(sess)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO sessions (id, topic, affirmative_doc, negative_doc, rounds, status, started, finished, transcript_json, summary, notice, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		sess.ID,
		sess.Topic,
		sess.AffirmativeDoc,
		sess.NegativeDoc,
		sess.Rounds,
		sess.Status,
		sess.Started,
		sess.Finished,
		transcriptJSON,
		sess.Summary,
		sess.Notice,
		sess.CreatedAt.UTC(),
		sess.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. It returns ErrNotFound when the
// session does not exist.
func (s *SQLiteStorage) GetSession(id string) (*Session, error) {
	query := `
	SELECT id, topic, affirmative_doc, negative_doc, rounds, status, started, finished, transcript_json, summary, notice, created_at, updated_at
	FROM sessions
	WHERE id = ?
	`

	var sess Session
	var transcriptJSON sql.NullString

	err := s.db.QueryRow(query, id).Scan(
		&sess.ID,
		&sess.Topic,
		&sess.AffirmativeDoc,
		&sess.NegativeDoc,
		&sess.Rounds,
		&sess.Status,
		&sess.Started,
		&sess.Finished,
		&transcriptJSON,
		&sess.Summary,
		&sess.Notice,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if transcriptJSON.Valid {
		if err := json.Unmarshal([]byte(transcriptJSON.String), &sess.Transcript); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
		}
	}
	return &sess, nil
}

// UpdateSession overwrites a session and bumps its UpdatedAt.
func (s *SQLiteStorage) UpdateSession(sess *Session) error {
	transcriptJSON, err := marshalTranscript(sess)
	if err != nil {
		return err
	}
	sess.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE sessions
	SET topic = ?, affirmative_doc = ?, negative_doc = ?, rounds = ?, status = ?, started = ?, finished = ?,
		transcript_json = ?, summary = ?, notice = ?, updated_at = ?
	WHERE id = ?
	`
	res, err := s.db.Exec(query,
		sess.Topic,
		sess.AffirmativeDoc,
		sess.NegativeDoc,
		sess.Rounds,
		sess.Status,
		sess.Started,
		sess.Finished,
		transcriptJSON,
		sess.Summary,
		sess.Notice,
		sess.UpdatedAt,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a session. Deleting a missing session is not an
// error.
func (s *SQLiteStorage) DeleteSession(id string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Touch bumps a session's updated_at so PurgeExpired treats it as active.
func (s *SQLiteStorage) Touch(id string) error {
	res, err := s.db.Exec("UPDATE sessions SET updated_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired removes sessions idle since before.
func (s *SQLiteStorage) PurgeExpired(before time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM sessions WHERE updated_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func marshalTranscript(sess *Session) (*string, error) {
	if sess.Transcript == nil {
		return nil, nil
	}
	data, err := json.Marshal(sess.Transcript)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	str := string(data)
	return &str, nil
}

// DefaultDBPath returns the on-disk location used when persistence is
// explicitly enabled.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "arena.db"
	}
	return filepath.Join(home, ".arena", "sessions.db")
}
