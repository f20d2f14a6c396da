package graph

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(x, y float64) *Vector {
	return &Vector{X: x, Y: y}
}

func TestVectorOps(t *testing.T) {
	a := Vector{X: 3, Y: 4}
	b := Vector{X: 1, Y: -1}

	assert.Equal(t, Vector{X: 4, Y: 3}, a.Add(b))
	assert.Equal(t, Vector{X: 2, Y: 5}, a.Sub(b))
	assert.Equal(t, Vector{X: 6, Y: 8}, a.Scale(2))
	assert.InDelta(t, 5.0, a.Len(), 1e-12)
	assert.True(t, a.IsFinite())
	assert.False(t, Vector{X: math.NaN()}.IsFinite())
	assert.False(t, Vector{Y: math.Inf(-1)}.IsFinite())
}

func TestParseRemovalPolicy(t *testing.T) {
	p, err := ParseRemovalPolicy("Retain")
	require.NoError(t, err)
	assert.Equal(t, Retain, p)

	p, err = ParseRemovalPolicy("")
	require.NoError(t, err)
	assert.Equal(t, Prune, p)

	_, err = ParseRemovalPolicy("forget")
	assert.Error(t, err)

	assert.Equal(t, "prune", Prune.String())
	assert.Equal(t, "retain", Retain.String())
}

func TestMerge_InsertsNewNodesAtRest(t *testing.T) {
	r := NewRegistry[string](Prune, nil)

	rep := r.Merge([]NodeInput[string]{
		{ID: "a", Payload: "Alpha", Position: vec(1, 2)},
		{ID: "b", Payload: "Beta", Position: vec(3, 4)},
	}, nil)

	assert.Equal(t, MergeReport{Added: 2}, rep)
	require.Equal(t, 2, r.Len())

	a := r.Lookup("a")
	require.NotNil(t, a)
	assert.Equal(t, Vector{X: 1, Y: 2}, a.Position)
	assert.Equal(t, Vector{}, a.Velocity)
	assert.Equal(t, Vector{}, a.Force)
	assert.False(t, a.Pinned)
	assert.Equal(t, "Alpha", a.Payload)

	i, ok := r.Index("b")
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestMerge_PreservesMotion(t *testing.T) {
	r := NewRegistry[string](Prune, nil)
	r.Merge([]NodeInput[string]{{ID: "n", Payload: "old", Position: vec(0, 0)}}, nil)

	n := r.Lookup("n")
	n.Velocity = Vector{X: 2.5, Y: -1}
	n.Force = Vector{X: 0.3, Y: 0.1}

	rep := r.Merge([]NodeInput[string]{{ID: "n", Payload: "new"}}, nil)
	assert.Equal(t, MergeReport{Updated: 1}, rep)

	n = r.Lookup("n")
	assert.Equal(t, Vector{X: 2.5, Y: -1}, n.Velocity)
	assert.Equal(t, Vector{X: 0.3, Y: 0.1}, n.Force)
	assert.Equal(t, "new", n.Payload)
	assert.Equal(t, Vector{}, n.Position, "position without input stays put")
}

func TestMerge_PositionReplacedUnlessPinned(t *testing.T) {
	r := NewRegistry[int](Prune, nil)
	r.Merge([]NodeInput[int]{
		{ID: "free", Position: vec(0, 0)},
		{ID: "held", Position: vec(5, 5)},
	}, nil)
	r.Lookup("held").Pinned = true

	r.Merge([]NodeInput[int]{
		{ID: "free", Position: vec(10, 10)},
		{ID: "held", Position: vec(99, 99)},
	}, nil)

	assert.Equal(t, Vector{X: 10, Y: 10}, r.Lookup("free").Position)
	assert.Equal(t, Vector{X: 5, Y: 5}, r.Lookup("held").Position)
	assert.True(t, r.Lookup("held").Pinned)
}

func TestMerge_SkipsMalformedAndRejectsNonFinite(t *testing.T) {
	placed := 0
	r := NewRegistry[int](Prune, func(id string, index, total int) Vector {
		placed++
		return Vector{X: float64(index), Y: float64(total)}
	})

	rep := r.Merge([]NodeInput[int]{
		{ID: ""},
		{ID: "nan", Position: vec(math.NaN(), 1)},
	}, nil)

	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 1, rep.Added)
	assert.Equal(t, 1, placed)
	assert.Equal(t, Vector{X: 1, Y: 2}, r.Lookup("nan").Position)
}

func TestMerge_DuplicateIDLastWins(t *testing.T) {
	r := NewRegistry[string](Prune, nil)
	rep := r.Merge([]NodeInput[string]{
		{ID: "x", Payload: "first", Position: vec(1, 1)},
		{ID: "x", Payload: "second", Position: vec(2, 2)},
	}, nil)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, MergeReport{Added: 1, Updated: 1}, rep)
	assert.Equal(t, "second", r.Lookup("x").Payload)
	assert.Equal(t, Vector{X: 2, Y: 2}, r.Lookup("x").Position)
}

func TestMerge_PrunePolicyEvictsAbsentIDs(t *testing.T) {
	r := NewRegistry[string](Prune, nil)
	r.Merge([]NodeInput[string]{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil)
	r.Lookup("c").Velocity = Vector{X: 7, Y: 7}

	rep := r.Merge([]NodeInput[string]{{ID: "c"}, {ID: "d"}}, nil)

	assert.Equal(t, MergeReport{Added: 1, Updated: 1, Removed: 2}, rep)
	assert.Equal(t, 2, r.Len())
	assert.Nil(t, r.Lookup("a"))
	assert.Nil(t, r.Lookup("b"))

	ids := make([]string, 0, r.Len())
	for _, n := range r.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Empty(t, cmp.Diff([]string{"c", "d"}, ids))

	i, ok := r.Index("c")
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, Vector{X: 7, Y: 7}, r.Lookup("c").Velocity)
}

func TestMerge_RetainPolicyKeepsAbsentIDs(t *testing.T) {
	r := NewRegistry[string](Retain, nil)
	r.Merge([]NodeInput[string]{{ID: "a"}, {ID: "b"}}, nil)
	r.Lookup("a").Velocity = Vector{X: 1, Y: 1}

	rep := r.Merge([]NodeInput[string]{{ID: "b"}}, nil)

	assert.Equal(t, MergeReport{Updated: 1}, rep)
	assert.Equal(t, 2, r.Len())
	require.NotNil(t, r.Lookup("a"))
	assert.Equal(t, Vector{X: 1, Y: 1}, r.Lookup("a").Velocity)
}

func TestMerge_Edges(t *testing.T) {
	r := NewRegistry[string](Prune, nil)
	r.Merge([]NodeInput[string]{{ID: "a"}, {ID: "b"}}, []Edge{
		{Source: "a", Target: "b"},
		{ID: "dangling", Source: "a", Target: "ghost"},
	})

	want := []Edge{
		{ID: "a-b", Source: "a", Target: "b"},
		{ID: "dangling", Source: "a", Target: "ghost"},
	}
	assert.Empty(t, cmp.Diff(want, r.Edges()))

	// nil keeps the edge set, an empty slice clears it
	r.Merge([]NodeInput[string]{{ID: "a"}, {ID: "b"}}, nil)
	assert.Len(t, r.Edges(), 2)
	r.Merge([]NodeInput[string]{{ID: "a"}, {ID: "b"}}, []Edge{})
	assert.Empty(t, r.Edges())
}

func TestRemove(t *testing.T) {
	r := NewRegistry[string](Retain, nil)
	r.Merge([]NodeInput[string]{{ID: "a"}, {ID: "b"}}, nil)

	assert.True(t, r.Remove("a"))
	assert.False(t, r.Remove("a"))
	assert.Equal(t, 1, r.Len())
	i, ok := r.Index("b")
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestClone_IsIndependent(t *testing.T) {
	r := NewRegistry[string](Prune, nil)
	r.Merge([]NodeInput[string]{{ID: "a", Position: vec(1, 1)}}, []Edge{{Source: "a", Target: "a"}})

	nodes := r.Clone()
	nodes[0].Position = Vector{X: 100, Y: 100}
	edges := r.CloneEdges()
	edges[0].Target = "z"

	assert.Equal(t, Vector{X: 1, Y: 1}, r.Lookup("a").Position)
	assert.Equal(t, "a", r.Edges()[0].Target)
}
