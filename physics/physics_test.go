package physics

import (
	"math"
	"testing"

	"github.com/TFMV/notegraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(x, y float64) *graph.Vector {
	return &graph.Vector{X: x, Y: y}
}

func registryOf(nodes []graph.NodeInput[string], edges []graph.Edge) *graph.Registry[string] {
	r := graph.NewRegistry[string](graph.Prune, nil)
	r.Merge(nodes, edges)
	return r
}

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()
	assert.Equal(t, 1000.0, p.RepulsionStrength)
	assert.Equal(t, 0.1, p.AttractionStrength)
	assert.Equal(t, 100.0, p.MinDistance)
	assert.Equal(t, 300.0, p.MaxDistance)
	assert.Equal(t, 0.9, p.Dampening)
	assert.Equal(t, 0.1, p.Epsilon)
	assert.Equal(t, 150.0, p.RestLength())
}

func TestApplyForces_TwoNodeSpring(t *testing.T) {
	r := registryOf([]graph.NodeInput[string]{
		{ID: "a", Position: at(0, 0)},
		{ID: "b", Position: at(10, 0)},
	}, []graph.Edge{{Source: "a", Target: "b"}})

	ApplyForces(r, DefaultParameters())

	// repulsion 1000/10² = 10 apart, spring 0.1*(10-150) = -14 pushes apart too
	a, b := r.Lookup("a"), r.Lookup("b")
	assert.InDelta(t, -24.0, a.Force.X, 1e-9)
	assert.InDelta(t, 24.0, b.Force.X, 1e-9)
	assert.InDelta(t, 0.0, a.Force.Y, 1e-9)
	assert.InDelta(t, 0.0, b.Force.Y, 1e-9)
}

func TestApplyForces_RepulsionIsLocal(t *testing.T) {
	r := registryOf([]graph.NodeInput[string]{
		{ID: "a", Position: at(0, 0)},
		{ID: "b", Position: at(300, 0)},
	}, nil)

	ApplyForces(r, DefaultParameters())

	assert.Equal(t, graph.Vector{}, r.Lookup("a").Force)
	assert.Equal(t, graph.Vector{}, r.Lookup("b").Force)
}

func TestApplyForces_StretchedSpringPulls(t *testing.T) {
	p := DefaultParameters()
	p.RepulsionStrength = 0
	r := registryOf([]graph.NodeInput[string]{
		{ID: "a", Position: at(0, 0)},
		{ID: "b", Position: at(0, 250)},
	}, []graph.Edge{{Source: "a", Target: "b"}})

	ApplyForces(r, p)

	assert.InDelta(t, 10.0, r.Lookup("a").Force.Y, 1e-9)
	assert.InDelta(t, -10.0, r.Lookup("b").Force.Y, 1e-9)
}

func TestApplyForces_ResetsPendingForce(t *testing.T) {
	r := registryOf([]graph.NodeInput[string]{{ID: "a", Position: at(0, 0)}}, nil)
	r.Lookup("a").Force = graph.Vector{X: 42, Y: 42}

	ApplyForces(r, DefaultParameters())

	assert.Equal(t, graph.Vector{}, r.Lookup("a").Force)
}

func TestApplyForces_DanglingAndSelfEdgesAreInert(t *testing.T) {
	r := registryOf([]graph.NodeInput[string]{
		{ID: "a", Position: at(0, 0)},
		{ID: "b", Position: at(10, 0)},
	}, []graph.Edge{
		{Source: "a", Target: "ghost"},
		{Source: "ghost", Target: "b"},
		{Source: "a", Target: "a"},
	})

	ApplyForces(r, DefaultParameters())

	assert.InDelta(t, -10.0, r.Lookup("a").Force.X, 1e-9)
	assert.InDelta(t, 10.0, r.Lookup("b").Force.X, 1e-9)
}

func TestApplyForces_CoincidentNodesSeparate(t *testing.T) {
	r := registryOf([]graph.NodeInput[string]{
		{ID: "a", Position: at(5, 5)},
		{ID: "b", Position: at(5, 5)},
	}, nil)

	ApplyForces(r, DefaultParameters())

	a, b := r.Lookup("a").Force, r.Lookup("b").Force
	require.True(t, a.IsFinite())
	require.True(t, b.IsFinite())
	assert.InDelta(t, 1000.0, a.Len(), 1e-6)
	assert.InDelta(t, 0.0, a.Add(b).Len(), 1e-9)
}

func TestIntegrate(t *testing.T) {
	r := registryOf([]graph.NodeInput[string]{
		{ID: "free", Position: at(0, 0)},
		{ID: "held", Position: at(1, 1)},
	}, nil)
	free, held := r.Lookup("free"), r.Lookup("held")
	free.Velocity = graph.Vector{X: 1, Y: 0}
	free.Force = graph.Vector{X: 1, Y: -2}
	held.Pinned = true
	held.Velocity = graph.Vector{X: 9, Y: 9}
	held.Force = graph.Vector{X: 50, Y: 50}

	movement := Integrate(r, 0.5)

	assert.Equal(t, graph.Vector{X: 1, Y: -1}, free.Velocity)
	assert.Equal(t, graph.Vector{X: 1, Y: -1}, free.Position)
	assert.Equal(t, graph.Vector{}, held.Velocity)
	assert.Equal(t, graph.Vector{}, held.Force)
	assert.Equal(t, graph.Vector{X: 1, Y: 1}, held.Position)
	assert.InDelta(t, 2.0, movement, 1e-12)
}

func TestIntegrate_AllPinnedHasNoMovement(t *testing.T) {
	r := registryOf([]graph.NodeInput[string]{{ID: "a", Position: at(0, 0)}}, nil)
	r.Lookup("a").Pinned = true
	r.Lookup("a").Force = graph.Vector{X: 100}

	assert.Equal(t, 0.0, Integrate(r, 0.9))
}

func TestForcesStayFinite(t *testing.T) {
	nodes := make([]graph.NodeInput[string], 0, 6)
	edges := make([]graph.Edge, 0, 6)
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		nodes = append(nodes, graph.NodeInput[string]{ID: id, Position: at(0, 0)})
		edges = append(edges, graph.Edge{Source: id, Target: "a"})
	}
	edges = append(edges, graph.Edge{Source: "b", Target: "missing"})
	r := registryOf(nodes, edges)
	r.Lookup("c").Pinned = true

	p := DefaultParameters()
	for i := 0; i < 500; i++ {
		ApplyForces(r, p)
		Integrate(r, p.Dampening)
		for _, n := range r.Nodes() {
			require.True(t, n.Position.IsFinite(), "tick %d node %s", i, n.ID)
			require.True(t, n.Velocity.IsFinite(), "tick %d node %s", i, n.ID)
			require.False(t, math.IsNaN(n.Force.X))
		}
	}
	assert.Equal(t, graph.Vector{}, r.Lookup("c").Position)
}
