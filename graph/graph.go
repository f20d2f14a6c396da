// Package graph holds the node/edge registry the layout simulation runs against.
//
// Nodes live in a contiguous arena with an id→index map beside it, so the
// pairwise force pass walks a slice instead of chasing map entries.
package graph

import (
	"fmt"
	"math"
	"strings"
)

// Vector is a 2D quantity: a position, a velocity or a force.
type Vector struct {
	X, Y float64
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * k.
func (v Vector) Scale(k float64) Vector {
	return Vector{X: v.X * k, Y: v.Y * k}
}

// Len returns the Euclidean length of v.
func (v Vector) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// IsFinite reports whether both components are real numbers.
func (v Vector) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Node is the physics state of one record. Payload is caller metadata and is
// never inspected here.
type Node[P any] struct {
	ID       string
	Position Vector
	Velocity Vector
	Force    Vector // pending force for the current tick
	Pinned   bool
	Payload  P
}

// Edge connects two node ids. An edge with an endpoint missing from the
// registry stays in the edge set but is inert.
type Edge struct {
	ID     string
	Source string
	Target string
}

// NodeInput is one entry of an external snapshot. A nil Position means the
// caller has no opinion about where the node sits.
type NodeInput[P any] struct {
	ID       string
	Payload  P
	Position *Vector
}

// PositionFunc places a node that enters the registry without a position.
// index and total describe the node's place in the snapshot being merged.
type PositionFunc func(id string, index, total int) Vector

// RemovalPolicy decides what a merge does with ids missing from the snapshot.
type RemovalPolicy int

const (
	// Prune evicts nodes absent from the incoming snapshot.
	Prune RemovalPolicy = iota
	// Retain keeps absent nodes, and their motion, indefinitely.
	Retain
)

func (p RemovalPolicy) String() string {
	switch p {
	case Prune:
		return "prune"
	case Retain:
		return "retain"
	default:
		return fmt.Sprintf("RemovalPolicy(%d)", int(p))
	}
}

// ParseRemovalPolicy converts "prune" or "retain" into a RemovalPolicy.
func ParseRemovalPolicy(s string) (RemovalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prune":
		return Prune, nil
	case "retain":
		return Retain, nil
	default:
		return Prune, fmt.Errorf("unknown removal policy %q", s)
	}
}

// MergeReport summarises what a Merge changed.
type MergeReport struct {
	Added   int
	Updated int
	Removed int
	Skipped int // inputs without an id
}

// Registry owns the authoritative node state. It is not safe for concurrent
// use; the simulation that owns it serialises access.
type Registry[P any] struct {
	nodes  []Node[P]
	index  map[string]int
	edges  []Edge
	policy RemovalPolicy
	place  PositionFunc
}

// NewRegistry creates an empty registry. place may be nil, in which case new
// nodes without a position start at the origin.
func NewRegistry[P any](policy RemovalPolicy, place PositionFunc) *Registry[P] {
	return &Registry[P]{
		nodes:  make([]Node[P], 0),
		index:  make(map[string]int),
		edges:  make([]Edge, 0),
		policy: policy,
		place:  place,
	}
}

// Len returns the number of nodes.
func (r *Registry[P]) Len() int {
	return len(r.nodes)
}

// Policy returns the removal policy applied by Merge.
func (r *Registry[P]) Policy() RemovalPolicy {
	return r.policy
}

// Nodes returns the arena itself. Callers may mutate node fields in place but
// must not append to or reslice it.
func (r *Registry[P]) Nodes() []Node[P] {
	return r.nodes
}

// Edges returns the current edge set.
func (r *Registry[P]) Edges() []Edge {
	return r.edges
}

// Index returns the arena position of id.
func (r *Registry[P]) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Lookup returns a pointer into the arena for id, or nil. The pointer is
// invalidated by the next Merge.
func (r *Registry[P]) Lookup(id string) *Node[P] {
	i, ok := r.index[id]
	if !ok {
		return nil
	}
	return &r.nodes[i]
}

// Clone returns a copy of every node. Payload values are copied shallowly.
func (r *Registry[P]) Clone() []Node[P] {
	out := make([]Node[P], len(r.nodes))
	copy(out, r.nodes)
	return out
}

// CloneEdges returns a copy of the edge set.
func (r *Registry[P]) CloneEdges() []Edge {
	out := make([]Edge, len(r.edges))
	copy(out, r.edges)
	return out
}

// Merge folds a snapshot into the registry.
//
// Known ids keep velocity, force and pin state; their payload is replaced and
// so is their position, unless the node is pinned or the input has none.
// New ids start at rest, unpinned, at the input position or wherever the
// registry's PositionFunc puts them. Ids missing from the snapshot are handled
// by the removal policy. A nil edges slice leaves the edge set untouched.
func (r *Registry[P]) Merge(in []NodeInput[P], edges []Edge) MergeReport {
	var rep MergeReport
	seen := make(map[string]struct{}, len(in))

	for i, n := range in {
		if n.ID == "" {
			rep.Skipped++
			continue
		}
		seen[n.ID] = struct{}{}

		pos, hasPos := Vector{}, false
		if n.Position != nil && n.Position.IsFinite() {
			pos, hasPos = *n.Position, true
		}

		if idx, ok := r.index[n.ID]; ok {
			existing := &r.nodes[idx]
			existing.Payload = n.Payload
			if hasPos && !existing.Pinned {
				existing.Position = pos
			}
			rep.Updated++
			continue
		}

		if !hasPos && r.place != nil {
			pos = r.place(n.ID, i, len(in))
		}
		r.index[n.ID] = len(r.nodes)
		r.nodes = append(r.nodes, Node[P]{
			ID:       n.ID,
			Position: pos,
			Payload:  n.Payload,
		})
		rep.Added++
	}

	if r.policy == Prune {
		rep.Removed = r.prune(seen)
	}

	if edges != nil {
		r.SetEdges(edges)
	}
	return rep
}

// SetEdges replaces the edge set. Edges without an id get "source-target".
func (r *Registry[P]) SetEdges(edges []Edge) {
	r.edges = make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.ID == "" {
			e.ID = e.Source + "-" + e.Target
		}
		r.edges = append(r.edges, e)
	}
}

// Remove evicts id regardless of policy. It reports whether id was present.
func (r *Registry[P]) Remove(id string) bool {
	if _, ok := r.index[id]; !ok {
		return false
	}
	keep := make(map[string]struct{}, len(r.nodes))
	for _, n := range r.nodes {
		if n.ID != id {
			keep[n.ID] = struct{}{}
		}
	}
	return r.prune(keep) == 1
}

// prune compacts the arena down to the ids in keep and rebuilds the index.
func (r *Registry[P]) prune(keep map[string]struct{}) int {
	kept := r.nodes[:0]
	for _, n := range r.nodes {
		if _, ok := keep[n.ID]; ok {
			kept = append(kept, n)
		}
	}
	removed := len(r.nodes) - len(kept)
	if removed == 0 {
		return 0
	}
	var zero Node[P]
	for i := len(kept); i < len(r.nodes); i++ {
		r.nodes[i] = zero
	}
	r.nodes = kept
	r.index = make(map[string]int, len(kept))
	for i, n := range r.nodes {
		r.index[n.ID] = i
	}
	return removed
}
