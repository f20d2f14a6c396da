package physics

import "sync"

// NewChannelSink returns a sink and the channel it feeds. The channel holds at
// most one frame: a frame the host has not drained yet is replaced by the
// newer one, so a slow reader always sees the latest layout and the simulation
// never blocks on it.
func NewChannelSink[P any]() (Sink[P], <-chan Frame[P]) {
	ch := make(chan Frame[P], 1)
	var mu sync.Mutex

	sink := func(f Frame[P]) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case old := <-ch:
			if old.Tick > f.Tick {
				f = old
			}
		default:
		}
		ch <- f
	}
	return sink, ch
}
