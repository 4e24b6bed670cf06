package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/rover/pkg/domain"
	"github.com/aretw0/rover/pkg/ports"
)

// LayoutStoreContractTest is a reusable suite verifying that an adapter
// complies with ports.LayoutStore.
func LayoutStoreContractTest(t *testing.T, store ports.LayoutStore) {
	t.Helper()
	ctx := context.Background()

	snap := &domain.LayoutSnapshot{
		Routine: "contract",
		Taken:   time.Now().UTC().Truncate(time.Second),
		Nodes: []domain.LayoutNode{
			{ID: 0, Pos: domain.Position{X: 0.1, Y: 0.2}, Edges: []domain.LayoutEdge{{To: 1, Cost: 0.5}}},
			{ID: 1, Pos: domain.Position{X: 0.6, Y: 0.2}, Edges: []domain.LayoutEdge{{To: 0, Cost: 0.5}}},
		},
	}

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		if !errors.Is(err, domain.ErrLayoutNotFound) {
			t.Errorf("Load(missing) err = %v, want ErrLayoutNotFound", err)
		}
	})

	t.Run("Save_Load_RoundTrip", func(t *testing.T) {
		if err := store.Save(ctx, "contract", snap); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := store.Load(ctx, "contract")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.Routine != snap.Routine {
			t.Errorf("Routine = %q, want %q", got.Routine, snap.Routine)
		}
		if len(got.Nodes) != len(snap.Nodes) {
			t.Fatalf("got %d nodes, want %d", len(got.Nodes), len(snap.Nodes))
		}
		if got.Nodes[0].Pos != snap.Nodes[0].Pos {
			t.Errorf("node 0 pos = %v, want %v", got.Nodes[0].Pos, snap.Nodes[0].Pos)
		}
		if len(got.Nodes[0].Edges) != 1 || got.Nodes[0].Edges[0].Cost != 0.5 {
			t.Errorf("node 0 edges = %v, want one edge of cost 0.5", got.Nodes[0].Edges)
		}
	})

	t.Run("Save_Overwrites", func(t *testing.T) {
		smaller := &domain.LayoutSnapshot{
			Routine: "contract",
			Taken:   time.Now().UTC(),
			Nodes:   snap.Nodes[:1],
		}
		if err := store.Save(ctx, "contract", smaller); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		got, err := store.Load(ctx, "contract")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(got.Nodes) != 1 {
			t.Errorf("got %d nodes after overwrite, want 1", len(got.Nodes))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "contract"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		_, err := store.Load(ctx, "contract")
		if !errors.Is(err, domain.ErrLayoutNotFound) {
			t.Errorf("Load after Delete err = %v, want ErrLayoutNotFound", err)
		}
	})
}
