package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/rover/internal/runtime"
	"github.com/aretw0/rover/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	state   runtime.State
	paused  int
	resumed int
	stopped int
}

func (f *fakeController) Status() runtime.Status {
	return runtime.Status{State: f.state}
}
func (f *fakeController) Pause()  { f.paused++ }
func (f *fakeController) Resume() { f.resumed++ }
func (f *fakeController) Stop()   { f.stopped++ }

type fakeSnapshotter struct {
	snap *domain.LayoutSnapshot
}

func (f *fakeSnapshotter) Snapshot() *domain.LayoutSnapshot { return f.snap }

func testRoutine() *domain.Routine {
	return &domain.Routine{
		Name:   "demo",
		Labels: map[string]int{"top": 0},
		Components: []domain.Component{
			&domain.Label{Name: "top", Line: 1},
			&domain.Point{Pos: domain.Position{X: 0.5, Y: 0.5}, Frequency: 2, Line: 2},
			&domain.Jump{Target: "top", Line: 3},
		},
	}
}

func newTestServer(t *testing.T, ctrl *fakeController) http.Handler {
	t.Helper()
	snap := &domain.LayoutSnapshot{Routine: "demo"}
	return NewHandler(ctrl, testRoutine(), &fakeSnapshotter{snap: snap}, nil)
}

func TestStatusEndpoint(t *testing.T) {
	ctrl := &fakeController{state: runtime.StateRunning}
	h := newTestServer(t, ctrl)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got runtime.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, runtime.StateRunning, got.State)
}

func TestControlEndpoints(t *testing.T) {
	ctrl := &fakeController{state: runtime.StateRunning}
	h := newTestServer(t, ctrl)

	for _, path := range []string{"/pause", "/resume", "/stop"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	assert.Equal(t, 1, ctrl.paused)
	assert.Equal(t, 1, ctrl.resumed)
	assert.Equal(t, 1, ctrl.stopped)
}

func TestControlEndpointsRejectGet(t *testing.T) {
	h := newTestServer(t, &fakeController{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pause", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRoutineEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeController{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routine", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Name       string         `json:"name"`
		Labels     map[string]int `json:"labels"`
		Components []struct {
			Kind      string  `json:"kind"`
			Line      int     `json:"line"`
			Name      string  `json:"name"`
			Target    string  `json:"target"`
			Frequency int     `json:"frequency"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "demo", got.Name)
	require.Len(t, got.Components, 3)
	assert.Equal(t, "label", got.Components[0].Kind)
	assert.Equal(t, "top", got.Components[0].Name)
	assert.Equal(t, "point", got.Components[1].Kind)
	assert.Equal(t, 2, got.Components[1].Frequency)
	assert.Equal(t, "jump", got.Components[2].Kind)
	assert.Equal(t, "top", got.Components[2].Target)
}

func TestLayoutEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeController{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/layout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.LayoutSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "demo", got.Routine)
}
