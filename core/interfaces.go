package core

// Named is implemented by every pluggable component (heuristics, restart
// strategies, propagators, preprocessors) so configuration and logging can
// refer to them uniformly.
type Named interface {
	Name() string
}

// Interrupter exposes the single-bit cooperative cancellation flag described
// in the concurrency model. The search loop polls it at every restart and
// between optimization iterations; it is safe to set concurrently (e.g. from
// a signal handler) since it never blocks and is only ever read at
// suspension points.
type Interrupter interface {
	Interrupted() bool
}

// AtomicFlag is the default Interrupter: a single bit that may be set at any
// time from outside the search loop.
type AtomicFlag struct {
	ch chan struct{}
}

func NewAtomicFlag() *AtomicFlag {
	return &AtomicFlag{ch: make(chan struct{})}
}

// Set trips the flag. Idempotent and safe to call from a signal handler.
func (f *AtomicFlag) Set() {
	select {
	case <-f.ch:
		// already tripped
	default:
		close(f.ch)
	}
}

func (f *AtomicFlag) Interrupted() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}
