package models

import (
	"time"

	"github.com/google/uuid"
)

// NewNodeWithID creates a node for a record that already has an identity
func NewNodeWithID(id, nodeType, label string, properties map[string]any) *Node {
	now := time.Now()
	return &Node{
		ID:         id,
		Type:       nodeType,
		Label:      label,
		Properties: properties,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewEdgeWithID creates an edge with a caller-chosen ID
func NewEdgeWithID(id, source, target, edgeType string) *Edge {
	now := time.Now()
	return &Edge{
		ID:        id,
		Source:    source,
		Target:    target,
		Type:      edgeType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetPosition sets the starting position of a node
func (n *Node) SetPosition(x, y float64) {
	n.X = &x
	n.Y = &y
	n.UpdatedAt = time.Now()
}

// NewGraph creates a new graph with a unique ID and timestamps
func NewGraph(name string) *Graph {
	now := time.Now()
	return &Graph{
		ID:        uuid.New().String(),
		Name:      name,
		Nodes:     []Node{},
		Edges:     []Edge{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(node *Node) {
	g.Nodes = append(g.Nodes, *node)
	g.UpdatedAt = time.Now()
}

// AddEdge adds an edge to the graph. Edges may reference nodes the graph
// does not contain; the layout treats them as inert.
func (g *Graph) AddEdge(edge *Edge) {
	g.Edges = append(g.Edges, *edge)
	g.UpdatedAt = time.Now()
}
