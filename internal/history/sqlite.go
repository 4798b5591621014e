package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Storage defines the journal's persistence operations.
type Storage interface {
	// Init opens the database and runs migrations.
	Init() error

	// RecordEvent appends one journal entry.
	RecordEvent(event Event) error

	// EventsSince retrieves journal entries newer than the given time,
	// newest first.
	EventsSince(since time.Time) ([]Event, error)

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStorage creates a journal at the given path. If the database cannot
// be opened later, the journal is disabled but operations will not fail.
func NewStorage(dbPath string) *SQLiteStorage {
	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: true,
	}
}

// DefaultDBPath returns the path to ~/.quitswarm/history.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".quitswarm", "history.db"), nil
}

// Init opens the database and runs migrations.
//
// If initialization fails, the journal is disabled and subsequent
// operations become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
	})

	return initErr
}

// RecordEvent appends one journal entry.
func (s *SQLiteStorage) RecordEvent(event Event) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	didQuit := 0
	if event.DidUserQuit {
		didQuit = 1
	}
	wasSuccessful := 0
	if event.WasSuccessful {
		wasSuccessful = 1
	}

	query := `
		INSERT INTO swarm_events (kind, case_id, timestamp, aggregate_score, recommendation, did_user_quit, was_successful)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		event.Kind,
		event.CaseID,
		event.Timestamp.Format(time.RFC3339),
		event.AggregateScore,
		event.Recommendation,
		didQuit,
		wasSuccessful,
	)

	if err != nil {
		log.Printf("Warning: failed to record journal event: %v", err)
	}

	return nil
}

// EventsSince retrieves journal entries newer than the given time,
// newest first.
func (s *SQLiteStorage) EventsSince(since time.Time) ([]Event, error) {
	if !s.enabled || s.db == nil {
		return []Event{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT kind, case_id, timestamp, aggregate_score, recommendation, did_user_quit, was_successful
		FROM swarm_events
		WHERE timestamp >= ?
		ORDER BY timestamp DESC
	`

	rows, err := s.db.Query(query, since.Format(time.RFC3339))
	if err != nil {
		log.Printf("Warning: failed to query journal: %v", err)
		return []Event{}, nil
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var timestampStr string
		var didQuit, wasSuccessful int

		if err := rows.Scan(
			&event.Kind,
			&event.CaseID,
			&timestampStr,
			&event.AggregateScore,
			&event.Recommendation,
			&didQuit,
			&wasSuccessful,
		); err != nil {
			log.Printf("Warning: failed to scan journal row: %v", err)
			continue
		}

		event.DidUserQuit = didQuit == 1
		event.WasSuccessful = wasSuccessful == 1

		event.Timestamp, err = time.Parse(time.RFC3339, timestampStr)
		if err != nil {
			log.Printf("Warning: failed to parse journal timestamp: %v", err)
			continue
		}

		events = append(events, event)
	}

	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	query := "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"
	row := s.db.QueryRow(query)

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

func (s *SQLiteStorage) setMigrationVersion(version int) error {
	query := "INSERT INTO schema_migrations (version, name) VALUES (?, ?)"
	_, err := s.db.Exec(query, version, fmt.Sprintf("migration_%d", version))
	return err
}

// migration001InitialSchema creates the journal schema.
func (s *SQLiteStorage) migration001InitialSchema() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS swarm_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			case_id TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			aggregate_score INTEGER NOT NULL,
			recommendation TEXT NOT NULL,
			did_user_quit INTEGER NOT NULL,
			was_successful INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create swarm_events table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_swarm_events_case
		ON swarm_events(case_id)
	`); err != nil {
		return fmt.Errorf("failed to create swarm_events case index: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_swarm_events_timestamp
		ON swarm_events(timestamp DESC)
	`); err != nil {
		return fmt.Errorf("failed to create swarm_events timestamp index: %w", err)
	}

	return nil
}
