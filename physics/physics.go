// Package physics implements the force-directed layout simulation: the force
// model, the integrator, the tick scheduler and pin handling.
package physics

import (
	"math"

	"github.com/TFMV/notegraph/graph"
)

// minSeparation floors every pair distance so no force divides by zero.
const minSeparation = 1.0

// goldenAngle spreads coincident pairs over distinct directions.
const goldenAngle = 2.399963229728653

// Parameters tune the force model and the integrator.
type Parameters struct {
	RepulsionStrength  float64 // numerator of the inverse-square repulsion
	AttractionStrength float64 // spring constant along edges
	MinDistance        float64 // rest length is MinDistance * 1.5
	MaxDistance        float64 // repulsion cutoff
	Dampening          float64 // per-tick velocity decay, in (0,1)
	Epsilon            float64 // movement below this halts the loop
}

// DefaultParameters returns the reference tuning.
func DefaultParameters() Parameters {
	return Parameters{
		RepulsionStrength:  1000,
		AttractionStrength: 0.1,
		MinDistance:        100,
		MaxDistance:        300,
		Dampening:          0.9,
		Epsilon:            0.1,
	}
}

// RestLength is the edge length at which the spring exerts no force.
func (p Parameters) RestLength() float64 {
	return p.MinDistance * 1.5
}

// ApplyForces recomputes the pending force of every node in r.
//
// Every unordered pair closer than MaxDistance repels with
// RepulsionStrength/d². Every edge acts as a linear spring toward
// RestLength. Edges with a missing endpoint are skipped. Positions are not
// touched.
func ApplyForces[P any](r *graph.Registry[P], p Parameters) {
	nodes := r.Nodes()

	for i := range nodes {
		nodes[i].Force = graph.Vector{}
	}

	for i := range nodes {
		a := &nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := &nodes[j]
			dir, d := separation(a.Position, b.Position, i, j)
			if d >= p.MaxDistance {
				continue
			}
			f := dir.Scale(p.RepulsionStrength / (d * d))
			a.Force = a.Force.Sub(f)
			b.Force = b.Force.Add(f)
		}
	}

	rest := p.RestLength()
	for _, e := range r.Edges() {
		si, ok := r.Index(e.Source)
		if !ok {
			continue
		}
		ti, ok := r.Index(e.Target)
		if !ok || si == ti {
			continue
		}
		s, t := &nodes[si], &nodes[ti]
		dir, d := separation(s.Position, t.Position, si, ti)
		f := dir.Scale(p.AttractionStrength * (d - rest))
		s.Force = s.Force.Add(f)
		t.Force = t.Force.Sub(f)
	}
}

// separation returns the unit vector from a to b and their distance floored
// at minSeparation. Coincident points get a direction derived from their
// arena indices.
func separation(a, b graph.Vector, i, j int) (graph.Vector, float64) {
	delta := b.Sub(a)
	raw := delta.Len()
	d := math.Max(raw, minSeparation)
	if raw == 0 || math.IsInf(raw, 0) || math.IsNaN(raw) {
		angle := float64(i*31+j) * goldenAngle
		return graph.Vector{X: math.Cos(angle), Y: math.Sin(angle)}, d
	}
	return delta.Scale(1 / raw), d
}

// Integrate advances every unpinned node by its pending force and returns the
// tick's movement metric: the largest |vx|+|vy| among unpinned nodes.
// Pinned nodes have their force discarded and their velocity held at zero.
func Integrate[P any](r *graph.Registry[P], dampening float64) float64 {
	nodes := r.Nodes()
	movement := 0.0

	for i := range nodes {
		n := &nodes[i]
		if n.Pinned {
			n.Force = graph.Vector{}
			n.Velocity = graph.Vector{}
			continue
		}

		n.Velocity = n.Velocity.Add(n.Force).Scale(dampening)
		n.Position = n.Position.Add(n.Velocity)

		movement = math.Max(movement, math.Abs(n.Velocity.X)+math.Abs(n.Velocity.Y))
	}

	return movement
}
