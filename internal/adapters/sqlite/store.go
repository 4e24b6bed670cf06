// Package sqlite implements ports.LayoutStore on a local SQLite database,
// keeping every routine's layout in one file with cheap partial updates.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/rover/pkg/domain"
	_ "modernc.org/sqlite"
)

// Store persists layout snapshots in a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS layouts (
		routine TEXT PRIMARY KEY,
		taken TIMESTAMP NOT NULL,
		nodes TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts the snapshot under its routine name.
func (s *Store) Save(ctx context.Context, routine string, snap *domain.LayoutSnapshot) error {
	nodes, err := json.Marshal(snap.Nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal layout nodes: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO layouts (routine, taken, nodes) VALUES (?, ?, ?)
		 ON CONFLICT(routine) DO UPDATE SET taken = excluded.taken, nodes = excluded.nodes`,
		routine, snap.Taken.Format(time.RFC3339Nano), string(nodes),
	)
	if err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// Load retrieves the snapshot for a routine.
func (s *Store) Load(ctx context.Context, routine string) (*domain.LayoutSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT taken, nodes FROM layouts WHERE routine = ?`, routine)

	var taken, nodes string
	if err := row.Scan(&taken, &nodes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}

	snap := &domain.LayoutSnapshot{Routine: routine}
	ts, err := time.Parse(time.RFC3339Nano, taken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout timestamp: %w", err)
	}
	snap.Taken = ts
	if err := json.Unmarshal([]byte(nodes), &snap.Nodes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout nodes: %w", err)
	}
	return snap, nil
}

// Delete removes the stored snapshot.
func (s *Store) Delete(ctx context.Context, routine string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM layouts WHERE routine = ?`, routine); err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}
