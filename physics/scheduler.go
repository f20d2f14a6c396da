package physics

import (
	"sort"
	"sync"
	"time"
)

// DefaultFrameInterval is roughly one display frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Scheduler runs fn once after d. The returned function cancels the task if
// it has not started yet; calling it more than once is harmless.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules on the runtime timer heap. Callbacks run on their
// own goroutines.
type TimerScheduler struct{}

// After implements Scheduler.
func (TimerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler is a virtual clock. Nothing runs until the owner advances
// it, and callbacks run on the advancing goroutine, which makes tick loops
// deterministic in tests and headless layouts.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	due time.Duration
	seq uint64
	fn  func()
}

// NewManualScheduler returns a clock at zero with nothing pending.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After implements Scheduler.
func (m *ManualScheduler) After(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	task := &manualTask{due: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, task)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, t := range m.tasks {
			if t == task {
				m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
				return
			}
		}
	}
}

// Now returns the virtual time elapsed since creation.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled, uncancelled tasks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// RunNext moves the clock to the earliest pending task and runs it. It
// reports false when nothing is pending.
func (m *ManualScheduler) RunNext() bool {
	task := m.pop(-1)
	if task == nil {
		return false
	}
	task.fn()
	return true
}

// Advance moves the clock forward by d, running every task that falls due on
// the way, including tasks scheduled by those tasks. It returns how many ran.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	deadline := m.now + d
	m.mu.Unlock()

	ran := 0
	for {
		task := m.pop(deadline)
		if task == nil {
			break
		}
		task.fn()
		ran++
	}

	m.mu.Lock()
	if m.now < deadline {
		m.now = deadline
	}
	m.mu.Unlock()
	return ran
}

// pop removes and returns the earliest task due at or before deadline, or any
// task when deadline is negative.
func (m *ManualScheduler) pop(deadline time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tasks) == 0 {
		return nil
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due != m.tasks[j].due {
			return m.tasks[i].due < m.tasks[j].due
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
	task := m.tasks[0]
	if deadline >= 0 && task.due > deadline {
		return nil
	}
	m.tasks = m.tasks[1:]
	if task.due > m.now {
		m.now = task.due
	}
	return task
}
