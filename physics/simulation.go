package physics

import (
	"sync"
	"time"

	"github.com/TFMV/notegraph/graph"
	log "github.com/sirupsen/logrus"
)

// Frame is what a simulation emits after each tick. Nodes is a private copy;
// receivers may keep it.
type Frame[P any] struct {
	Tick     uint64
	Movement float64
	Running  bool
	Nodes    []graph.Node[P]
}

// Sink receives frames. It is called without the simulation lock held, so it
// may call back into the simulation.
type Sink[P any] func(Frame[P])

type settings struct {
	params    Parameters
	scheduler Scheduler
	interval  time.Duration
	policy    graph.RemovalPolicy
	place     graph.PositionFunc
	logger    *log.Entry
}

// Option configures a Simulation.
type Option func(*settings)

// WithParameters overrides the force and integration tuning.
func WithParameters(p Parameters) Option {
	return func(s *settings) { s.params = p }
}

// WithScheduler injects the repeating-task driver.
func WithScheduler(sched Scheduler) Option {
	return func(s *settings) { s.scheduler = sched }
}

// WithFrameInterval sets the delay between ticks while running.
func WithFrameInterval(d time.Duration) Option {
	return func(s *settings) { s.interval = d }
}

// WithRemovalPolicy chooses what merges do with ids missing from a snapshot.
func WithRemovalPolicy(p graph.RemovalPolicy) Option {
	return func(s *settings) { s.policy = p }
}

// WithSeeder places nodes that arrive without a position.
func WithSeeder(place graph.PositionFunc) Option {
	return func(s *settings) { s.place = place }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Entry) Option {
	return func(s *settings) { s.logger = l }
}

// Simulation owns a registry and drives it through ticks. All operations are
// safe to call from any goroutine; they are serialised so that a tick is
// never observed half done.
type Simulation[P any] struct {
	mu        sync.Mutex
	registry  *graph.Registry[P]
	params    Parameters
	scheduler Scheduler
	interval  time.Duration
	sink      Sink[P]
	log       *log.Entry

	running bool
	gen     uint64 // bumped on every start/stop so stale callbacks bail out
	cancel  func()
	ticks   uint64
}

// New builds a simulation seeded with the given snapshot. sink may be nil.
func New[P any](nodes []graph.NodeInput[P], edges []graph.Edge, sink Sink[P], opts ...Option) *Simulation[P] {
	cfg := settings{
		params:    DefaultParameters(),
		scheduler: TimerScheduler{},
		interval:  DefaultFrameInterval,
		policy:    graph.Prune,
		place:     DefaultSeeder(1).Position,
		logger:    log.WithField("component", "simulation"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Simulation[P]{
		registry:  graph.NewRegistry[P](cfg.policy, cfg.place),
		params:    cfg.params,
		scheduler: cfg.scheduler,
		interval:  cfg.interval,
		sink:      sink,
		log:       cfg.logger,
	}

	if edges == nil {
		edges = []graph.Edge{}
	}
	rep := s.registry.Merge(nodes, edges)
	s.log.WithFields(log.Fields{
		"nodes":   s.registry.Len(),
		"edges":   len(edges),
		"skipped": rep.Skipped,
	}).Debug("simulation created")

	return s
}

// Merge folds a snapshot into the registry; see graph.Registry.Merge. A nil
// edges slice keeps the current edges. Merging does not start the loop.
func (s *Simulation[P]) Merge(nodes []graph.NodeInput[P], edges []graph.Edge) graph.MergeReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep := s.registry.Merge(nodes, edges)
	entry := s.log.WithFields(log.Fields{
		"added":   rep.Added,
		"updated": rep.Updated,
		"removed": rep.Removed,
		"skipped": rep.Skipped,
		"policy":  s.registry.Policy().String(),
	})
	if rep.Skipped > 0 {
		entry.Warn("snapshot contained nodes without an id")
	} else {
		entry.Debug("snapshot merged")
	}
	return rep
}

// Remove evicts id and its incident edges regardless of the removal policy.
// It is how a Retain host drops a record. It reports whether id was known.
func (s *Simulation[P]) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Remove(id) {
		return false
	}
	edges := s.registry.Edges()
	kept := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	s.registry.SetEdges(kept)
	s.log.WithField("node", id).Debug("node removed")
	return true
}

// SetNodeFixed pins or unpins id. Pinning zeroes the velocity; a non-nil pos
// moves the node there. Unpinning leaves the velocity alone. It reports
// whether id was known.
func (s *Simulation[P]) SetNodeFixed(id string, pinned bool, pos *graph.Vector) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.registry.Lookup(id)
	if n == nil {
		s.log.WithField("node", id).Debug("pin request for unknown node")
		return false
	}

	n.Pinned = pinned
	if pos != nil && pos.IsFinite() {
		n.Position = *pos
	}
	if pinned {
		n.Velocity = graph.Vector{}
	}
	return true
}

// Start begins the tick loop if it is not already running. The first tick
// happens before Start returns.
func (s *Simulation[P]) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.step(gen)
}

// Stop halts the loop and cancels the pending tick. A tick already in
// progress finishes.
func (s *Simulation[P]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// IsRunning reports whether a tick loop is scheduled.
func (s *Simulation[P]) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Tick runs one force and integration pass outside the loop, emits the frame
// and returns the movement metric.
func (s *Simulation[P]) Tick() float64 {
	s.mu.Lock()
	movement := s.tickLocked()
	frame := s.frameLocked(movement)
	s.mu.Unlock()

	s.emit(frame)
	return movement
}

// Ticks returns how many ticks have run.
func (s *Simulation[P]) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Nodes returns a copy of the current node state.
func (s *Simulation[P]) Nodes() []graph.Node[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Clone()
}

// Node returns a copy of one node's state.
func (s *Simulation[P]) Node(id string) (graph.Node[P], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.registry.Lookup(id)
	if n == nil {
		return graph.Node[P]{}, false
	}
	return *n, true
}

// Edges returns a copy of the current edge set.
func (s *Simulation[P]) Edges() []graph.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.CloneEdges()
}

// Parameters returns the tuning in use.
func (s *Simulation[P]) Parameters() Parameters {
	return s.params
}

func (s *Simulation[P]) step(gen uint64) {
	s.mu.Lock()
	if !s.running || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.cancel = nil

	movement := s.tickLocked()
	if movement > s.params.Epsilon {
		s.cancel = s.scheduler.After(s.interval, func() { s.step(gen) })
	} else {
		s.running = false
		s.log.WithFields(log.Fields{
			"ticks":    s.ticks,
			"movement": movement,
		}).Debug("layout converged")
	}
	frame := s.frameLocked(movement)
	s.mu.Unlock()

	s.emit(frame)
}

func (s *Simulation[P]) tickLocked() float64 {
	ApplyForces(s.registry, s.params)
	s.ticks++
	return Integrate(s.registry, s.params.Dampening)
}

func (s *Simulation[P]) frameLocked(movement float64) Frame[P] {
	return Frame[P]{
		Tick:     s.ticks,
		Movement: movement,
		Running:  s.running,
		Nodes:    s.registry.Clone(),
	}
}

func (s *Simulation[P]) emit(f Frame[P]) {
	if s.sink != nil {
		s.sink(f)
	}
}
