package physics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualScheduler_RunsInDueOrder(t *testing.T) {
	m := NewManualScheduler()
	var order []string
	m.After(30*time.Millisecond, func() { order = append(order, "c") })
	m.After(10*time.Millisecond, func() { order = append(order, "a") })
	m.After(10*time.Millisecond, func() { order = append(order, "b") })

	require.Equal(t, 3, m.Pending())
	for m.RunNext() {
	}

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 30*time.Millisecond, m.Now())
	assert.False(t, m.RunNext())
}

func TestManualScheduler_Cancel(t *testing.T) {
	m := NewManualScheduler()
	ran := false
	cancel := m.After(time.Second, func() { ran = true })

	cancel()
	cancel()

	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, 0, m.Advance(2*time.Second))
	assert.False(t, ran)
}

func TestManualScheduler_AdvanceRunsNestedTasks(t *testing.T) {
	m := NewManualScheduler()
	count := 0
	var tick func()
	tick = func() {
		count++
		m.After(10*time.Millisecond, tick)
	}
	m.After(10*time.Millisecond, tick)

	ran := m.Advance(55 * time.Millisecond)

	assert.Equal(t, 5, ran)
	assert.Equal(t, 5, count)
	assert.Equal(t, 55*time.Millisecond, m.Now())
	assert.Equal(t, 1, m.Pending())
}

func TestManualScheduler_AdvanceStopsAtDeadline(t *testing.T) {
	m := NewManualScheduler()
	ran := false
	m.After(time.Second, func() { ran = true })

	assert.Equal(t, 0, m.Advance(999*time.Millisecond))
	assert.False(t, ran)
	assert.Equal(t, 1, m.Advance(time.Millisecond))
	assert.True(t, ran)
}

func TestTimerScheduler(t *testing.T) {
	done := make(chan struct{})
	TimerScheduler{}.After(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}

	fired := make(chan struct{}, 1)
	cancel := TimerScheduler{}.After(time.Hour, func() { fired <- struct{}{} })
	cancel()
	assert.Empty(t, fired)
}
