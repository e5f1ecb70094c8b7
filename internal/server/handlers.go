// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/internal/layout"
	"github.com/pdiddy/termgraph/internal/session"
	"github.com/pdiddy/termgraph/pkg/types"
)

const maxBodyBytes = 1 << 20

type searchRequest struct {
	Query string `json:"query" validate:"max=500"`
}

type viewportRequest struct {
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

type pointerRequest struct {
	Kind   layout.PointerKind `json:"type" validate:"oneof=down move up wheel"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	DeltaY float64            `json:"delta_y"`
}

type zoomRequest struct {
	Action string `json:"action" validate:"oneof=in out fit"`
}

// graphResponse is the snapshot as the viewer sees it.
type graphResponse struct {
	Query      string         `json:"query"`
	Generation uint64         `json:"generation"`
	Source     session.Source `json:"source"`
	Report     *types.Report  `json:"report,omitempty"`
	Fallback   bool           `json:"fallback"`
	Graph      *graph.Data    `json:"graph"`
}

type nodeResponse struct {
	graph.Node
	Neighbors []string `json:"neighbors"`
}

type pointerResponse struct {
	Clicked *graph.Node `json:"clicked"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newGraphResponse(snap *session.Snapshot) graphResponse {
	resp := graphResponse{
		Query:      snap.Query,
		Generation: snap.Generation,
		Source:     snap.Source,
		Graph:      snap.Graph,
	}
	if snap.Result != nil {
		resp.Report = &snap.Result.Report
		resp.Fallback = snap.Result.Fallback
	}
	return resp
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}

	// The search outlives a disconnecting client so the result is still
	// published for the next poll.
	snap, err := s.ctrl.Search(context.WithoutCancel(r.Context()), req.Query)
	switch {
	case errors.Is(err, session.ErrStale):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, session.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.log.Error("search failed", zap.String("query", req.Query), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	}
	writeJSON(w, http.StatusOK, newGraphResponse(snap))
}

func (s *Server) graph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newGraphResponse(s.ctrl.Snapshot()))
}

func (s *Server) node(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g := s.ctrl.Snapshot().Graph
	n, ok := g.Node(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown node " + id})
		return
	}
	writeJSON(w, http.StatusOK, nodeResponse{Node: n, Neighbors: g.Neighbors(id)})
}

func (s *Server) scene(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot().Scene(s.now()))
}

func (s *Server) sceneSVG(w http.ResponseWriter, _ *http.Request) {
	sc := s.ctrl.Snapshot().Scene(s.now())
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := layout.RenderSVG(sc, w); err != nil {
		s.log.Warn("writing svg", zap.Error(err))
	}
}

func (s *Server) viewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.ctrl.Resize(layout.Viewport{Width: req.Width, Height: req.Height})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if !s.decode(w, r, &req) {
		return
	}
	ev := layout.PointerEvent{Kind: req.Kind, DeltaY: req.DeltaY}
	ev.Pos.X, ev.Pos.Y = req.X, req.Y

	n, err := s.ctrl.Snapshot().Pointer(ev, s.now())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, pointerResponse{Clicked: n})
}

func (s *Server) zoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if !s.decode(w, r, &req) {
		return
	}
	now := s.now()
	s.ctrl.Snapshot().Do(func(sim *layout.Simulation) error {
		switch req.Action {
		case "in":
			sim.ZoomIn(now)
		case "out":
			sim.ZoomOut(now)
		case "fit":
			sim.Fit()
		}
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// decode reads and validates a JSON body. It writes a 400 and returns
// false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
