package sat

// VarHeuristic picks the next unassigned branching variable and its
// preferred polarity. The default is VSIDS with phase saving.
type VarHeuristic interface {
	Named

	// Grow extends per-variable bookkeeping to nVars.
	Grow(nVars int)

	// Bump rewards v for participating in the current conflict's resolution.
	Bump(v Var)

	// Decay ages all activities, called once per conflict.
	Decay()

	// Pick returns the next free variable with the highest activity, or
	// false if every variable is already assigned.
	Pick(t *Trail) (Var, bool)

	// Phase returns the saved polarity for v (true = prefer negated).
	Phase(v Var) bool

	// SavePhase records the polarity v held just before being unassigned.
	SavePhase(v Var, neg bool)
}

// vsidsHeuristic is the classic variable state independent decaying sum:
// each conflict bumps the activity of every variable that took part in
// resolution, then the whole table decays by a constant factor. Variable
// selection uses a plain max scan rather than a binary heap -- simpler to
// keep correct alongside the unassign/backjump bookkeeping, and cheap
// relative to propagation work at the sizes this engine targets.
type vsidsHeuristic struct {
	activity []float64
	phase    []bool // true = last seen negated
	bumpInc  float64
	decay    float64
}

func newVSIDSHeuristic() *vsidsHeuristic {
	return &vsidsHeuristic{bumpInc: 1.0, decay: 0.95}
}

func (h *vsidsHeuristic) Name() string { return "vsids" }

func (h *vsidsHeuristic) Grow(nVars int) {
	for len(h.activity) < nVars {
		h.activity = append(h.activity, 0)
		h.phase = append(h.phase, false)
	}
}

func (h *vsidsHeuristic) Bump(v Var) {
	h.activity[v] += h.bumpInc
	if h.activity[v] > 1e100 {
		for i := range h.activity {
			h.activity[i] *= 1e-100
		}
		h.bumpInc *= 1e-100
	}
}

func (h *vsidsHeuristic) Decay() {
	h.bumpInc /= h.decay
}

func (h *vsidsHeuristic) Pick(t *Trail) (Var, bool) {
	best := Var(-1)
	bestAct := -1.0
	for v := 0; v < t.NumVars(); v++ {
		vv := Var(v)
		if t.IsAssigned(vv) {
			continue
		}
		if best == -1 || h.activity[v] > bestAct {
			best = vv
			bestAct = h.activity[v]
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func (h *vsidsHeuristic) Phase(v Var) bool {
	if int(v) >= len(h.phase) {
		return false
	}
	return h.phase[v]
}

func (h *vsidsHeuristic) SavePhase(v Var, neg bool) {
	h.phase[v] = neg
}
