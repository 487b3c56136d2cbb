package preferences

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"sports-odds-display/internal/odds"
)

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// SQLStore keeps display preferences in a relational table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLiteStore opens (or creates) a sqlite preference database at path.
// ":memory:" gives a private in-process database.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open(string(DialectSQLite), path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite serialises writers; an in-memory database also exists per connection
	db.SetMaxOpenConns(1)

	return newSQLStore(db, DialectSQLite)
}

// NewPostgresStore connects to a postgres preference database.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open(string(DialectPostgres), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return newSQLStore(db, DialectPostgres)
}

func newSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS display_preferences (
		user_id TEXT PRIMARY KEY,
		notation TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Get returns the stored notation for userID, or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, userID string) (odds.Notation, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT notation FROM display_preferences WHERE user_id = ?
	`), userID)

	var notation string
	err := row.Scan(&notation)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("scanning preference: %w", err)
	}

	return odds.Notation(notation), nil
}

// Set stores the notation for userID, replacing any previous value.
func (s *SQLStore) Set(ctx context.Context, userID string, n odds.Notation) error {
	if !n.Valid() {
		return fmt.Errorf("storing preference: %w: %q", ErrInvalidNotation, n)
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO display_preferences (user_id, notation, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			notation = excluded.notation,
			updated_at = CURRENT_TIMESTAMP
	`), userID, string(n))
	if err != nil {
		return fmt.Errorf("upserting preference: %w", err)
	}
	return nil
}

// Delete removes the stored notation for userID.
func (s *SQLStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM display_preferences WHERE user_id = ?"), userID)
	if err != nil {
		return fmt.Errorf("deleting preference: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}
