// Package history persists the conversation transcript in SQLite so a
// restarted client resumes with its past exchanges.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"askmygarmin/internal/domain"
)

// Store is a SQLite-backed transcript store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and runs the schema
// migration.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id         TEXT PRIMARY KEY,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			annotation TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores a completed message. In-flight assistant messages are never
// written; persistence happens once per turn at completion. A zero-ID message
// gets a fresh ULID.
func (s *Store) Append(ctx context.Context, msg domain.Message) error {
	if msg.ID == "" {
		msg.ID = NewID(time.Now())
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (id, role, content, annotation, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.Role, msg.Content, msg.Annotation, msg.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	return domain.WrapOp("history.Append", err)
}

// List returns all stored messages in insertion order.
func (s *Store) List(ctx context.Context) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, role, content, annotation, created_at FROM messages ORDER BY id ASC",
	)
	if err != nil {
		return nil, domain.WrapOp("history.List", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var created string
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Annotation, &created); err != nil {
			return nil, domain.WrapOp("history.List", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			m.Timestamp = t
		}
		msgs = append(msgs, m)
	}
	return msgs, domain.WrapOp("history.List", rows.Err())
}

// Clear removes all stored messages.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM messages")
	return domain.WrapOp("history.Clear", err)
}

// NewID generates a ULID for a message. ULIDs sort by creation time, which is
// what List relies on for transcript order.
func NewID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
