/*
Package sqlite provides a SQLite-backed implementation of generic.AttributeStore.

PURPOSE:
  Persists attribute definitions, serialized record values and the user
  directory. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  attributes: Constraint definitions (type + config JSON), unique by name
  records:    Value.Serialize() output as JSON, append-only
  users:      User directory, unique by lower-case email

SERIALIZED VALUES:
  records.value_json holds the generic.Raw JSON encoding: null, a string,
  a number literal or a string array. Numbers are written as literals so
  decimal precision survives the round trip.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/values.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definition
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/warp/value-engine/generic"
)

// Store implements generic.AttributeStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.AttributeStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attributes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		constraint_type TEXT NOT NULL,
		config_json TEXT,
		created_at TEXT NOT NULL
	);

	-- Append-only: values are never updated in place
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		attribute_id TEXT NOT NULL REFERENCES attributes(id),
		value_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_attribute
		ON records(attribute_id, created_at);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		email_key TEXT NOT NULL UNIQUE
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTRIBUTES
// =============================================================================

// SaveAttribute inserts or updates an attribute.
func (s *Store) SaveAttribute(ctx context.Context, a generic.Attribute) (generic.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO attributes (id, name, constraint_type, config_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			constraint_type = excluded.constraint_type,
			config_json = excluded.config_json
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.Name, string(a.ConstraintType), nullString(string(a.Config)),
		a.CreatedAt.Format(time.RFC3339Nano),
	)
	if isUniqueConstraintError(err) {
		return generic.Attribute{}, fmt.Errorf("%w: %q", generic.ErrDuplicateAttribute, a.Name)
	}
	if err != nil {
		return generic.Attribute{}, err
	}
	return a, nil
}

// GetAttribute retrieves an attribute by ID.
func (s *Store) GetAttribute(ctx context.Context, id string) (*generic.Attribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, constraint_type, config_json, created_at FROM attributes WHERE id = ?",
		id,
	)
	a, err := scanAttribute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrAttributeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAttributes returns all attributes, oldest first.
func (s *Store) ListAttributes(ctx context.Context) ([]generic.Attribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, constraint_type, config_json, created_at FROM attributes ORDER BY created_at, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attributes []generic.Attribute
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, a)
	}
	return attributes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttribute(row scanner) (generic.Attribute, error) {
	var a generic.Attribute
	var constraintType, createdAt string
	var config sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &constraintType, &config, &createdAt); err != nil {
		return generic.Attribute{}, err
	}
	a.ConstraintType = generic.ConstraintType(constraintType)
	if config.Valid {
		a.Config = json.RawMessage(config.String)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return a, nil
}

// =============================================================================
// RECORDS
// =============================================================================

// AppendRecord stores one serialized value.
func (s *Store) AppendRecord(ctx context.Context, r generic.Record) (generic.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM attributes WHERE id = ?)", r.AttributeID,
	).Scan(&exists)
	if err != nil {
		return generic.Record{}, err
	}
	if !exists {
		return generic.Record{}, generic.ErrAttributeNotFound
	}

	if r.ID == "" {
		r.ID = uuid.Must(uuid.NewV7()).String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	value, err := json.Marshal(r.Value)
	if err != nil {
		return generic.Record{}, fmt.Errorf("failed to encode value: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO records (id, attribute_id, value_json, created_at) VALUES (?, ?, ?, ?)",
		r.ID, r.AttributeID, string(value), r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return generic.Record{}, err
	}
	return r, nil
}

// ListRecords returns an attribute's records in insertion order. UUIDv7 IDs
// break ties between records created in the same instant.
func (s *Store) ListRecords(ctx context.Context, attributeID string) ([]generic.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, attribute_id, value_json, created_at FROM records WHERE attribute_id = ? ORDER BY created_at, id",
		attributeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []generic.Record
	for rows.Next() {
		var r generic.Record
		var value, createdAt string
		if err := rows.Scan(&r.ID, &r.AttributeID, &value, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(value), &r.Value); err != nil {
			return nil, fmt.Errorf("record %s: failed to decode value: %w", r.ID, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// USER DIRECTORY
// =============================================================================

// SaveUser inserts a user, or updates the name of the user with that email.
func (s *Store) SaveUser(ctx context.Context, u generic.DirectoryUser) (generic.DirectoryUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO users (id, name, email, email_key)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email_key) DO UPDATE SET
			name = excluded.name,
			email = excluded.email
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		u.ID, u.Name, u.Email, strings.ToLower(strings.TrimSpace(u.Email)),
	).Scan(&u.ID)
	if err != nil {
		return generic.DirectoryUser{}, err
	}
	return u, nil
}

// ListUsers returns the directory ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]generic.DirectoryUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email FROM users ORDER BY email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []generic.DirectoryUser
	for rows.Next() {
		var u generic.DirectoryUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"records", "attributes", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
