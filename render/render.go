package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TFMV/notegraph/graph"
	"github.com/TFMV/notegraph/models"
	"github.com/TFMV/notegraph/physics"
	log "github.com/sirupsen/logrus"
)

// ErrUnsupportedFormat is returned for output formats without a renderer.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // json, dot, ascii
	Width      float64 // ASCII canvas width in layout units
	Height     float64 // ASCII canvas height in layout units
	Scale      float64 // layout units per DOT inch
	ShowLabels bool    // print node labels on the ASCII canvas
	Timestamp  bool    // stamp the output with the render time
	MaxTicks   int     // tick cap for headless layout
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Scale:      100,
		ShowLabels: true,
		MaxTicks:   5000,
	}
}

// Layout is a settled (or in-flight) set of positions ready to encode.
type Layout struct {
	Name      string
	Tick      uint64
	Movement  float64
	Converged bool
	Nodes     []graph.Node[models.Payload]
	Edges     []graph.Edge
}

// FromFrame builds a Layout from an emitted frame and the edge set it was
// computed with. A frame from an idle loop counts as converged.
func FromFrame(name string, f physics.Frame[models.Payload], edges []graph.Edge) *Layout {
	return &Layout{
		Name:      name,
		Tick:      f.Tick,
		Movement:  f.Movement,
		Converged: !f.Running,
		Nodes:     f.Nodes,
		Edges:     edges,
	}
}

// ResolvedEdges returns the edges whose endpoints are both present.
func (l *Layout) ResolvedEdges() []graph.Edge {
	known := make(map[string]struct{}, len(l.Nodes))
	for _, n := range l.Nodes {
		known[n.ID] = struct{}{}
	}
	out := make([]graph.Edge, 0, len(l.Edges))
	for _, e := range l.Edges {
		_, okS := known[e.Source]
		_, okT := known[e.Target]
		if okS && okT {
			out = append(out, e)
		}
	}
	return out
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render encodes the layout using the provided options
	Render(layout *Layout, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "ascii":
		return &ASCIIRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Settle lays g out headlessly on a virtual clock and returns the final
// layout. It stops after maxTicks ticks and logs a warning when the layout
// did not converge by then.
func Settle(ctx context.Context, g *models.Graph, maxTicks int, simOpts ...physics.Option) (*Layout, error) {
	sched := physics.NewManualScheduler()
	sink, frames := physics.NewChannelSink[models.Payload]()

	opts := append(append([]physics.Option{}, simOpts...), physics.WithScheduler(sched))
	sim := physics.New(g.Inputs(), g.LayoutEdges(), sink, opts...)

	converged, err := physics.Settle(ctx, sim, sched, maxTicks)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", g.Name, err)
	}

	var last physics.Frame[models.Payload]
	select {
	case last = <-frames:
	default:
		last = physics.Frame[models.Payload]{Nodes: sim.Nodes()}
	}

	entry := log.WithField("caller", "render").WithFields(log.Fields{
		"graph": g.Name,
		"ticks": sim.Ticks(),
		"nodes": len(last.Nodes),
	})
	if !converged {
		entry.Warn("layout did not fully stabilize, using partial result")
	} else {
		entry.Debug("layout settled")
	}

	l := FromFrame(g.Name, last, sim.Edges())
	l.Converged = converged
	return l, nil
}

func labelOf(n graph.Node[models.Payload]) string {
	if n.Payload.Label != "" {
		return n.Payload.Label
	}
	return n.ID
}
