package render

import (
	"encoding/json"
	"time"
)

// Document is the JSON shape written by JSONRenderer.
type Document struct {
	Metadata Metadata       `json:"metadata"`
	Nodes    []NodePosition `json:"nodes"`
	Edges    []EdgeRef      `json:"edges"`
}

// Metadata describes where in the simulation the positions were taken.
type Metadata struct {
	Name      string  `json:"name,omitempty"`
	Tick      uint64  `json:"tick"`
	Movement  float64 `json:"movement"`
	Converged bool    `json:"converged"`
	NodeCount int     `json:"nodeCount"`
	EdgeCount int     `json:"edgeCount"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// NodePosition is one node's kinematic state.
type NodePosition struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Type   string         `json:"type,omitempty"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	VX     float64        `json:"vx"`
	VY     float64        `json:"vy"`
	Pinned bool           `json:"pinned,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// EdgeRef is an edge between two rendered nodes.
type EdgeRef struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// JSONRenderer outputs raw JSON format
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders node positions as JSON for machine consumption or custom visualizations"
}

// Document converts a layout without encoding it.
func (r *JSONRenderer) Document(l *Layout, options *OutputOptions) Document {
	edges := l.ResolvedEdges()
	doc := Document{
		Metadata: Metadata{
			Name:      l.Name,
			Tick:      l.Tick,
			Movement:  l.Movement,
			Converged: l.Converged,
			NodeCount: len(l.Nodes),
			EdgeCount: len(edges),
		},
		Nodes: make([]NodePosition, 0, len(l.Nodes)),
		Edges: make([]EdgeRef, 0, len(edges)),
	}
	if options != nil && options.Timestamp {
		doc.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	for _, n := range l.Nodes {
		doc.Nodes = append(doc.Nodes, NodePosition{
			ID:     n.ID,
			Label:  labelOf(n),
			Type:   n.Payload.Type,
			X:      n.Position.X,
			Y:      n.Position.Y,
			VX:     n.Velocity.X,
			VY:     n.Velocity.Y,
			Pinned: n.Pinned,
			Data:   n.Payload.Properties,
		})
	}
	for _, e := range edges {
		doc.Edges = append(doc.Edges, EdgeRef{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return doc
}

// Render creates a JSON representation of the layout
func (r *JSONRenderer) Render(l *Layout, options *OutputOptions) ([]byte, error) {
	out, err := json.MarshalIndent(r.Document(l, options), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
