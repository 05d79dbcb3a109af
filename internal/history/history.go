// Package history remembers the projects this tool has created.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
)

// FileName is the database file inside the data directory.
const FileName = "history.db"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Record is one created project.
type Record struct {
	ID          string
	Name        string
	Description string
	Path        string
	CreatedAt   time.Time
}

// Store is a SQLite-backed project history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		name := entry.Name()
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", name).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if exists {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)", name, time.Now().Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// Add stores r. A missing ID or timestamp is filled in; an existing ID is
// replaced.
func (s *Store) Add(ctx context.Context, r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO projects (id, name, description, path, created_at) VALUES (?, ?, ?, ?, ?)",
		r.ID, r.Name, r.Description, r.Path, r.CreatedAt.UnixNano())
	if err != nil {
		return Record{}, fmt.Errorf("insert project %s: %w", r.Name, err)
	}
	return r, nil
}

// List returns records newest first. A limit of zero or less returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, path, created_at FROM projects ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r  Record
			ns int64
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Path, &ns); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		r.CreatedAt = time.Unix(0, ns).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes the record with id. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// Prune deletes records whose directory no longer exists and returns them.
func (s *Store) Prune(ctx context.Context) ([]Record, error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	var removed []Record
	for _, r := range all {
		_, statErr := os.Stat(r.Path)
		if statErr == nil || !errors.Is(statErr, os.ErrNotExist) {
			continue
		}
		if err := s.Delete(ctx, r.ID); err != nil {
			return removed, err
		}
		removed = append(removed, r)
	}
	return removed, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
