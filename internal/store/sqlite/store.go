package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store owns the single database file. Concurrency control lives in the
// storage layer: WAL mode gives one-writer-many-readers, and a writer
// blocked past the busy timeout fails with SQLITE_BUSY surfaced to the
// caller.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database file and ensures the schema.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: path}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for the repositories.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trial_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		company TEXT NOT NULL,
		phone TEXT NOT NULL,
		industry_domain TEXT NOT NULL DEFAULT '',
		primary_use_case TEXT,
		account_type TEXT NOT NULL DEFAULT 'ld',
		status TEXT NOT NULL DEFAULT 'pending',
		assigned_intern_id INTEGER,
		selected_integrations TEXT,
		session_dates TEXT,
		project_info TEXT,
		feedback TEXT NOT NULL DEFAULT '',
		next_steps TEXT NOT NULL DEFAULT '',
		intern_note TEXT NOT NULL DEFAULT '',
		api_username TEXT NOT NULL DEFAULT '',
		api_password TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS interns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		whatsapp TEXT NOT NULL DEFAULT '',
		specialization TEXT NOT NULL DEFAULT '',
		integrations TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		assigned_count INTEGER NOT NULL DEFAULT 0,
		completed_count INTEGER NOT NULL DEFAULT 0,
		success_rate REAL NOT NULL DEFAULT 0.0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS demo_credentials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		company TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		selected_integrations TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		expires_at TIMESTAMP NOT NULL,
		assigned_intern_id INTEGER,
		admin_note TEXT NOT NULL DEFAULT '',
		intern_note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_demo_active_email
		ON demo_credentials (email) WHERE is_active = 1;

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recipient_type TEXT NOT NULL,
		recipient_id INTEGER,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'info',
		read_status INTEGER NOT NULL DEFAULT 0,
		related_entity_type TEXT NOT NULL DEFAULT '',
		related_entity_id INTEGER,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_recipient
		ON notifications (recipient_type, recipient_id, read_status);

	CREATE TABLE IF NOT EXISTS rate_limits (
		key TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 1,
		window_start TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}
