package rover_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/rover"
	"github.com/aretw0/rover/internal/adapters/memory"
	"github.com/aretw0/rover/internal/adapters/sim"
	"github.com/aretw0/rover/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoutine(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestNewCompilesRoutine(t *testing.T) {
	path := writeRoutine(t, "patrol.rv", `
@ name=start
* x=0.5, y=0.5
    wait, duration=0.01
> label=start
`)
	world := sim.New()

	rv, err := rover.New(path, world, world)
	require.NoError(t, err)

	assert.Equal(t, "patrol", rv.Name)
	assert.Equal(t, 3, rv.Routine().Len())
	assert.Empty(t, rv.Diagnostics())
}

func TestNewSurfacesLocalDiagnostics(t *testing.T) {
	path := writeRoutine(t, "patrol.rv", `
* x=0.5, y=0.5
* x=9.9, y=0.5
`)
	world := sim.New()

	rv, err := rover.New(path, world, world)
	require.NoError(t, err)

	require.Len(t, rv.Diagnostics(), 1)
	assert.Equal(t, 3, rv.Diagnostics()[0].Line)
	assert.Len(t, rv.Routine().Points(), 1)
}

func TestNewRejectsUnresolvedJump(t *testing.T) {
	path := writeRoutine(t, "patrol.rv", "> label=nowhere\n")
	world := sim.New()

	_, err := rover.New(path, world, world)
	var cerr *domain.CompileError
	require.ErrorAs(t, err, &cerr)
}

func TestNewRequiresHost(t *testing.T) {
	_, err := rover.New("patrol.rv", nil, nil)
	assert.Error(t, err)
}

func TestRunStopAndFlush(t *testing.T) {
	path := writeRoutine(t, "patrol.rv", `
@ name=start
* x=0.5, y=0.5
> label=start
`)
	world := sim.New()
	store := memory.New()

	rv, err := rover.New(path, world, world,
		rover.WithStore(store),
		rover.WithTickInterval(time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, rv.Hydrate(context.Background()))

	go func() {
		time.Sleep(50 * time.Millisecond)
		rv.Stop()
	}()

	err = rv.Run(context.Background())
	require.True(t, errors.Is(err, domain.ErrStopped))
	assert.GreaterOrEqual(t, world.Releases(), 1)

	// Run flushes on exit; the first arrival at the point was recorded.
	snap, err := store.Load(context.Background(), "patrol")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Nodes)
}

func TestHydrateMergesSavedLayout(t *testing.T) {
	path := writeRoutine(t, "patrol.rv", "* x=0.5, y=0.5\n")
	world := sim.New()
	store := memory.New()

	saved := &domain.LayoutSnapshot{
		Routine: "patrol",
		Nodes: []domain.LayoutNode{
			{ID: 0, Pos: domain.Position{X: 0.1, Y: 0.1}},
			{ID: 1, Pos: domain.Position{X: 0.9, Y: 0.9}},
		},
	}
	require.NoError(t, store.Save(context.Background(), "patrol", saved))

	rv, err := rover.New(path, world, world, rover.WithStore(store))
	require.NoError(t, err)
	require.NoError(t, rv.Hydrate(context.Background()))

	assert.Len(t, rv.LayoutSnapshot().Nodes, 2)
}
