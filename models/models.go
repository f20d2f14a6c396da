// Package models provides the record types that snapshots are made of.
// It is the boundary between external data sources and the layout engine.
package models

import (
	"time"

	"github.com/TFMV/notegraph/graph"
)

// Node is one record of an external snapshot, typically a note
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       string         `json:"type,omitempty"`
	X          *float64       `json:"x,omitempty"` // optional starting position
	Y          *float64       `json:"y,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Edge represents a directed link between two records
type Edge struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"` // ID of the source node
	Target    string    `json:"target"` // ID of the target node
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Graph is a complete snapshot: every node and edge the data source knows
type Graph struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payload is the per-node metadata carried through the simulation untouched
type Payload struct {
	Label      string         `json:"label"`
	Type       string         `json:"type,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Payload returns the metadata the simulation carries for n.
func (n Node) Payload() Payload {
	return Payload{Label: n.Label, Type: n.Type, Properties: n.Properties}
}

// Position returns the node's starting position, or nil when it has none.
func (n Node) Position() *graph.Vector {
	if n.X == nil || n.Y == nil {
		return nil
	}
	return &graph.Vector{X: *n.X, Y: *n.Y}
}

// Inputs converts the snapshot's nodes into simulation inputs.
func (g *Graph) Inputs() []graph.NodeInput[Payload] {
	in := make([]graph.NodeInput[Payload], 0, len(g.Nodes))
	for _, n := range g.Nodes {
		in = append(in, graph.NodeInput[Payload]{
			ID:       n.ID,
			Payload:  n.Payload(),
			Position: n.Position(),
		})
	}
	return in
}

// LayoutEdges converts the snapshot's edges into simulation edges. The result
// is never nil, so merging it always replaces the edge set.
func (g *Graph) LayoutEdges() []graph.Edge {
	out := make([]graph.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		out = append(out, graph.Edge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return out
}
