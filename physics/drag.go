package physics

import (
	"sync"
	"time"

	"github.com/TFMV/notegraph/graph"
)

// DefaultSettleDelay is how long a released node stays pinned before it
// rejoins the simulation.
const DefaultSettleDelay = time.Second

// Drag turns pointer events into pin commands. A node is pinned while it is
// dragged and released SettleDelay after the drag ends, at which point the
// loop is restarted.
type Drag[P any] struct {
	sim   *Simulation[P]
	sched Scheduler
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	pending map[string]release
}

type release struct {
	seq    uint64
	cancel func()
}

// NewDrag wires drag handling to sim, using the simulation's scheduler for the
// settle delay.
func NewDrag[P any](sim *Simulation[P], delay time.Duration) *Drag[P] {
	return &Drag[P]{
		sim:     sim,
		sched:   sim.scheduler,
		delay:   delay,
		pending: make(map[string]release),
	}
}

// Begin pins id at pos. It cancels a release still pending for id.
func (d *Drag[P]) Begin(id string, pos graph.Vector) bool {
	return d.pin(id, pos)
}

// Move re-pins id at pos.
func (d *Drag[P]) Move(id string, pos graph.Vector) bool {
	return d.pin(id, pos)
}

// End schedules id's release. Unknown ids are ignored and reported false.
func (d *Drag[P]) End(id string) bool {
	if _, ok := d.sim.Node(id); !ok {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if r, ok := d.pending[id]; ok {
		r.cancel()
	}
	d.seq++
	seq := d.seq
	d.pending[id] = release{
		seq:    seq,
		cancel: d.sched.After(d.delay, func() { d.release(id, seq) }),
	}
	return true
}

// Pending reports whether a release is scheduled for id.
func (d *Drag[P]) Pending(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[id]
	return ok
}

// pin cancels a pending release and pins id in one step under d.mu, so a
// release can never land between the two.
func (d *Drag[P]) pin(id string, pos graph.Vector) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.pending[id]; ok {
		r.cancel()
		delete(d.pending, id)
	}
	return d.sim.SetNodeFixed(id, true, &pos)
}

// release unpins id under d.mu, so a concurrent Begin either cancels it
// first or pins after it. Start runs unlocked since it emits a frame.
func (d *Drag[P]) release(id string, seq uint64) {
	d.mu.Lock()
	r, ok := d.pending[id]
	if !ok || r.seq != seq {
		d.mu.Unlock()
		return
	}
	delete(d.pending, id)
	d.sim.SetNodeFixed(id, false, nil)
	d.mu.Unlock()

	d.sim.Start()
}
