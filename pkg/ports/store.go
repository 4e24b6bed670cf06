package ports

import (
	"context"

	"github.com/aretw0/rover/pkg/domain"
)

// LayoutStore persists learned layout graphs, one per routine name.
// Implementations must treat Save as a full snapshot write; merging a stored
// layout with newly learned nodes is the layout's job on load, not the
// store's.
type LayoutStore interface {
	// Save persists the snapshot under the routine name.
	Save(ctx context.Context, routine string, snap *domain.LayoutSnapshot) error

	// Load retrieves the snapshot for a routine name.
	// Returns domain.ErrLayoutNotFound if nothing has been persisted.
	Load(ctx context.Context, routine string) (*domain.LayoutSnapshot, error)

	// Delete removes the persisted snapshot for a routine name.
	Delete(ctx context.Context, routine string) error
}
