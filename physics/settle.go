package physics

import "context"

// Settle drives sim on sched until the loop goes idle, maxTicks ticks have
// run, or ctx is done. sim must have been built with sched. It reports
// whether the layout converged; on the tick cap or cancellation the loop is
// stopped and the partial layout is left in place.
func Settle[P any](ctx context.Context, sim *Simulation[P], sched *ManualScheduler, maxTicks int) (bool, error) {
	sim.Start()
	for sim.IsRunning() {
		if err := ctx.Err(); err != nil {
			sim.Stop()
			return false, err
		}
		if maxTicks > 0 && sim.Ticks() >= uint64(maxTicks) {
			sim.Stop()
			return false, nil
		}
		if !sched.RunNext() {
			break
		}
	}
	return !sim.IsRunning(), nil
}
