package physics

import (
	"hash/fnv"
	"math"

	"github.com/TFMV/notegraph/graph"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseSeeder lays new nodes out on a circle and nudges each one off the ring
// with simplex noise, so the first ticks start from a loose, untangled shape.
// The same seed and id always produce the same position.
type NoiseSeeder struct {
	Center graph.Vector
	Radius float64
	Jitter float64 // maximum offset per axis

	noise opensimplex.Noise
}

// NewNoiseSeeder creates a seeder with its own noise field.
func NewNoiseSeeder(seed int64, center graph.Vector, radius, jitter float64) *NoiseSeeder {
	return &NoiseSeeder{
		Center: center,
		Radius: radius,
		Jitter: jitter,
		noise:  opensimplex.New(seed),
	}
}

// DefaultSeeder uses a 200 unit ring around (400,300) with ±50 jitter.
func DefaultSeeder(seed int64) *NoiseSeeder {
	return NewNoiseSeeder(seed, graph.Vector{X: 400, Y: 300}, 200, 50)
}

// Position implements graph.PositionFunc.
func (s *NoiseSeeder) Position(id string, index, total int) graph.Vector {
	if total < 1 {
		total = 1
	}
	angle := 2 * math.Pi * float64(index) / float64(total)

	h := idPhase(id)
	jx := clampUnit(s.noise.Eval2(h, float64(index)*0.37))
	jy := clampUnit(s.noise.Eval2(float64(index)*0.37+100, h))

	return graph.Vector{
		X: s.Center.X + s.Radius*math.Cos(angle) + jx*s.Jitter,
		Y: s.Center.Y + s.Radius*math.Sin(angle) + jy*s.Jitter,
	}
}

// idPhase maps an id onto a small coordinate in noise space.
func idPhase(id string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return float64(h.Sum32()%10007) / 97.0
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
