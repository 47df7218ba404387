package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DefaultSQLiteFile is the database file used under the data directory
// when no URL is configured
const DefaultSQLiteFile = "tutor.db"

// Store keeps progress records and reminder subscriptions in SQL
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
	now func() time.Time
}

// Open connects to the database and creates the schema if needed.
// For sqlite3 the dsn is a file path whose directory is created.
func Open(ctx context.Context, driver, dsn string, log zerolog.Logger) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &Store{
		db:  db,
		log: log.With().Str("component", "database").Str("driver", driver).Logger(),
		now: time.Now,
	}
	if err := s.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Learners returns the reminder subscription repository
func (s *Store) Learners() *LearnerRepository {
	return &LearnerRepository{db: s.db, now: s.now}
}

func (s *Store) initializeSchema(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.db.DriverName() == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		table string
		ddl   string
	}{
		{"progress", `
			CREATE TABLE IF NOT EXISTS progress (
				course_name TEXT PRIMARY KEY,
				schema_version INTEGER NOT NULL,
				data TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"learners", `
			CREATE TABLE IF NOT EXISTS learners (
				` + idColumn + `,
				chat_id BIGINT NOT NULL,
				course_name TEXT NOT NULL,
				notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
				notification_hour INTEGER NOT NULL DEFAULT 9,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE(chat_id, course_name)
			)`},
	}
	for _, st := range statements {
		if _, err := s.db.ExecContext(ctx, st.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", st.table, err)
		}
	}
	return nil
}
