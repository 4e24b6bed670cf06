// Package httpapi exposes a small control and introspection surface over
// HTTP: run-state control, the compiled routine, the learned layout, and
// prometheus metrics.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/aretw0/rover/internal/runtime"
	"github.com/aretw0/rover/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controller is the slice of the engine the server drives.
type Controller interface {
	Status() runtime.Status
	Pause()
	Resume()
	Stop()
}

// Snapshotter provides the layout view.
type Snapshotter interface {
	Snapshot() *domain.LayoutSnapshot
}

// Server wires the engine's control surface into an http.Handler.
type Server struct {
	ctrl    Controller
	routine *domain.Routine
	layout  Snapshotter
}

// NewHandler builds the router. gatherer may be nil to omit /metrics.
func NewHandler(ctrl Controller, rt *domain.Routine, lay Snapshotter, gatherer prometheus.Gatherer) http.Handler {
	s := &Server{ctrl: ctrl, routine: rt, layout: lay}

	r := chi.NewRouter()
	r.Get("/status", s.getStatus)
	r.Post("/pause", s.postPause)
	r.Post("/resume", s.postResume)
	r.Post("/stop", s.postStop)
	r.Get("/routine", s.getRoutine)
	r.Get("/layout", s.getLayout)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) postPause(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Pause()
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) postResume(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Resume()
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) postStop(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Stop()
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

// componentDTO flattens the component union for JSON readers.
type componentDTO struct {
	Kind      string                     `json:"kind"`
	Line      int                        `json:"line"`
	Name      string                     `json:"name,omitempty"`
	Target    string                     `json:"target,omitempty"`
	Key       string                     `json:"key,omitempty"`
	Value     any                        `json:"value,omitempty"`
	Pos       *domain.Position           `json:"pos,omitempty"`
	Frequency int                        `json:"frequency,omitempty"`
	Skip      bool                       `json:"skip,omitempty"`
	Adjust    bool                       `json:"adjust,omitempty"`
	Commands  []domain.CommandInvocation `json:"commands,omitempty"`
}

func (s *Server) getRoutine(w http.ResponseWriter, r *http.Request) {
	out := struct {
		Name       string         `json:"name"`
		Labels     map[string]int `json:"labels"`
		Components []componentDTO `json:"components"`
	}{
		Name:   s.routine.Name,
		Labels: s.routine.Labels,
	}

	for _, comp := range s.routine.Components {
		dto := componentDTO{Kind: string(comp.Kind()), Line: comp.SourceLine()}
		switch c := comp.(type) {
		case *domain.Label:
			dto.Name = c.Name
		case *domain.Jump:
			dto.Target = c.Target
		case *domain.Setting:
			dto.Key = c.Key
			dto.Value = c.Value
		case *domain.Point:
			pos := c.Pos
			dto.Pos = &pos
			dto.Frequency = c.Frequency
			dto.Skip = c.Skip
			dto.Adjust = c.Adjust
			dto.Commands = c.Commands
		}
		out.Components = append(out.Components, dto)
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.layout.Snapshot())
}
