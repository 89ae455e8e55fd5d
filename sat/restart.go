package sat

// RestartStrategy decides when the search should abandon its current
// decision stack and restart from level 0, keeping learned clauses and
// level-0 facts.
type RestartStrategy interface {
	Named
	// ShouldRestart is polled once per conflict with the number of
	// conflicts since the last restart.
	ShouldRestart(conflictsSinceRestart int64) bool
	// OnRestart resets internal counters after a restart is taken.
	OnRestart()
}

// Named duplicates core.Named's single method locally; the restart,
// heuristic and clause-deletion interfaces of this package embed it.
type Named interface {
	Name() string
}

// lubyRestart implements the Luby restart sequence scaled by a base unit,
// the standard choice for CDCL search: short restarts early, exponentially
// longer ones later, without the tuning sensitivity of a pure geometric
// schedule.
type lubyRestart struct {
	base    int64
	factor  float64
	count   int64
	nextLimit int64
}

func newLubyRestart(base int64) *lubyRestart {
	r := &lubyRestart{base: base, factor: 2, count: 0}
	r.nextLimit = int64(float64(base) * luby(r.factor, r.count))
	return r
}

func (r *lubyRestart) Name() string { return "luby" }

func (r *lubyRestart) ShouldRestart(conflictsSinceRestart int64) bool {
	return conflictsSinceRestart >= r.nextLimit
}

func (r *lubyRestart) OnRestart() {
	r.count++
	r.nextLimit = int64(float64(r.base) * luby(r.factor, r.count))
}

// luby computes y^seq for the Luby restart sequence 1,1,2,1,1,2,4,1,1,2,...
// following the standard recurrence used by MiniSat-family restart scheduling.
func luby(y float64, x int64) float64 {
	size, seq := int64(1), int64(0)
	for size < x+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) / 2
		seq--
		x = x % size
	}
	result := 1.0
	for i := int64(0); i < seq; i++ {
		result *= y
	}
	return result
}
