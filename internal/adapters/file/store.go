// Package file implements ports.LayoutStore on the local filesystem, one
// JSON file per routine.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/rover/pkg/domain"
)

// Store persists layout snapshots as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a Store with the given base path.
// If basePath is empty, it defaults to ".rover/layouts".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".rover", "layouts")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(routine string) string {
	// Routine names come from user input; keep the filename flat.
	safe := strings.ReplaceAll(routine, string(os.PathSeparator), "_")
	return filepath.Join(s.BasePath, safe+".json")
}

// Save persists the snapshot to a JSON file.
func (s *Store) Save(ctx context.Context, routine string, snap *domain.LayoutSnapshot) error {
	if routine == "" {
		return fmt.Errorf("routine name cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure layout directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if err := os.WriteFile(s.path(routine), data, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}

	return nil
}

// Load retrieves the snapshot from its JSON file.
func (s *Store) Load(ctx context.Context, routine string) (*domain.LayoutSnapshot, error) {
	if routine == "" {
		return nil, fmt.Errorf("routine name cannot be empty")
	}

	data, err := os.ReadFile(s.path(routine))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var snap domain.LayoutSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
	}

	return &snap, nil
}

// Delete removes a persisted layout. Deleting a layout that does not exist
// is not an error.
func (s *Store) Delete(ctx context.Context, routine string) error {
	err := os.Remove(s.path(routine))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete layout file: %w", err)
	}
	return nil
}
