package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/TFMV/notegraph/graph"
	"github.com/TFMV/notegraph/ingest"
	"github.com/TFMV/notegraph/render"
	log "github.com/sirupsen/logrus"
)

const maxSnapshotBytes = 10 << 20

// DragRequest is the body of a drag event.
type DragRequest struct {
	Phase string   `json:"phase"` // start, move or stop
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
}

// State reports the loop status.
type State struct {
	Running bool   `json:"running"`
	Ticks   uint64 `json:"ticks"`
}

// SnapshotResponse reports what a snapshot merge changed.
type SnapshotResponse struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"`
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/frame", s.handleFrame)
	s.mux.HandleFunc("GET /api/graph", s.handleGraph)
	s.mux.HandleFunc("POST /api/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("POST /api/nodes/{id}/drag", s.handleDrag)
	s.mux.HandleFunc("DELETE /api/nodes/{id}", s.handleRemove)
	s.mux.HandleFunc("POST /api/start", s.handleStart)
	s.mux.HandleFunc("POST /api/stop", s.handleStop)
	s.mux.HandleFunc("GET /api/state", s.handleState)
}

// handleFrame returns the most recently emitted frame.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	f := s.Latest()
	l := render.FromFrame(s.graphName(), f, s.sim.Edges())
	writeJSON(w, http.StatusOK, (&render.JSONRenderer{}).Document(l, nil))
}

// handleGraph returns the live registry state, including changes no tick has
// reported yet.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	l := &render.Layout{
		Name:      s.graphName(),
		Tick:      s.sim.Ticks(),
		Converged: !s.sim.IsRunning(),
		Nodes:     s.sim.Nodes(),
		Edges:     s.sim.Edges(),
	}
	writeJSON(w, http.StatusOK, (&render.JSONRenderer{}).Document(l, nil))
}

// handleSnapshot merges a new snapshot and restarts the loop after the start
// delay. The body format is chosen by ?format= (json by default).
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	processor, err := ingest.GetProcessor(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnapshotBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	g, err := processor.ProcessData(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rep := s.sim.Merge(g.Inputs(), g.LayoutEdges())
	s.setGraphName(g.Name)
	s.scheduleStart()

	s.log.WithFields(log.Fields{
		"format":  processor.GetName(),
		"added":   rep.Added,
		"removed": rep.Removed,
	}).Info("snapshot merged")

	writeJSON(w, http.StatusOK, SnapshotResponse{
		Added:   rep.Added,
		Updated: rep.Updated,
		Removed: rep.Removed,
		Skipped: rep.Skipped,
	})
}

// handleDrag applies one step of the drag protocol to a node.
func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req DragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	node, ok := s.sim.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown node "+id))
		return
	}

	pos := node.Position
	if req.X != nil && req.Y != nil {
		pos = graph.Vector{X: *req.X, Y: *req.Y}
	}

	switch req.Phase {
	case "start":
		s.drag.Begin(id, pos)
	case "move":
		if req.X == nil || req.Y == nil {
			writeError(w, http.StatusBadRequest, errors.New("move needs x and y"))
			return
		}
		s.drag.Move(id, pos)
	case "stop":
		s.drag.End(id)
	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown drag phase "+req.Phase))
		return
	}

	node, _ = s.sim.Node(id)
	writeJSON(w, http.StatusOK, render.NodePosition{
		ID:     node.ID,
		Label:  node.Payload.Label,
		Type:   node.Payload.Type,
		X:      node.Position.X,
		Y:      node.Position.Y,
		VX:     node.Velocity.X,
		VY:     node.Velocity.Y,
		Pinned: node.Pinned,
	})
}

// handleRemove evicts one node and its edges, whatever the removal policy.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sim.Remove(id) {
		writeError(w, http.StatusNotFound, errors.New("unknown node "+id))
		return
	}
	s.log.WithField("node", id).Info("node removed")
	s.scheduleStart()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.cancelStart()
	s.sim.Start()
	s.handleState(w, r)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.Close()
	s.handleState(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, State{Running: s.sim.IsRunning(), Ticks: s.sim.Ticks()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithField("caller", "server").WithError(err).Error("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
