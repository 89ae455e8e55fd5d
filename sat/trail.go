package sat

// reasonKind distinguishes a SAT-core clause reason from a theory reason
// whose explanation is materialized lazily through the owning propagator's
// GetReason callback -- this is the "Reason record" of the data model,
// cleared on backjump past the assignment.
type reasonKind int8

const (
	reasonDecision reasonKind = iota
	reasonClause
	reasonTheory
)

type reasonRef struct {
	kind    reasonKind
	clause  *Clause
	propID  int
	slot    int
}

// TrailEntry is one assignment, in chronological (trail-index) order.
type TrailEntry struct {
	Lit    Lit
	Level  int
	Reason reasonRef
}

// Trail is the CDCL assignment trail: parallel arrays indexed by Var for
// O(1) lookups, plus level boundaries for backtracking and conflict
// analysis. Decision level 0's prefix is never undone by Backtrack.
type Trail struct {
	entries []TrailEntry // chronological
	assigns []LBool      // Var -> value
	levels  []int        // Var -> decision level, -1 if unassigned
	index   []int        // Var -> trail index, -1 if unassigned
	reasons []reasonRef  // Var -> reason

	levelStarts []int // decision level -> first trail index at that level
	curLevel    int
}

func NewTrail() *Trail {
	return &Trail{levelStarts: []int{0}}
}

// Grow extends the per-variable arrays; called synchronously whenever the
// solver creates a new variable, so every registered propagator's arrays
// stay in lockstep (on_new_variable).
func (t *Trail) Grow(nVars int) {
	for Var(len(t.assigns)) < Var(nVars) {
		t.assigns = append(t.assigns, LUndef)
		t.levels = append(t.levels, -1)
		t.index = append(t.index, -1)
		t.reasons = append(t.reasons, reasonRef{})
	}
}

func (t *Trail) NumVars() int { return len(t.assigns) }

func (t *Trail) Value(v Var) LBool { return t.assigns[v] }

func (t *Trail) LitValue(l Lit) LBool {
	return litValueOf(t.assigns[l.Var()], l.Sign())
}

func (t *Trail) IsAssigned(v Var) bool { return t.assigns[v] != LUndef }

func (t *Trail) Level(v Var) int { return t.levels[v] }

func (t *Trail) TrailIndex(v Var) int { return t.index[v] }

func (t *Trail) CurrentLevel() int { return t.curLevel }

func (t *Trail) Size() int { return len(t.entries) }

// Enqueue assigns l true at the current decision level with the given
// reason. The caller must ensure l.Var() is currently unassigned --
// propagators must never enqueue an already-assigned literal.
func (t *Trail) Enqueue(l Lit, reason reasonRef) {
	v := l.Var()
	val := LTrue
	if l.Sign() {
		val = LFalse
	}
	t.assigns[v] = val
	t.levels[v] = t.curLevel
	t.index[v] = len(t.entries)
	t.reasons[v] = reason
	t.entries = append(t.entries, TrailEntry{Lit: l, Level: t.curLevel, Reason: reason})
}

// NewDecisionLevel begins a fresh decision level (called before a decision
// literal is enqueued).
func (t *Trail) NewDecisionLevel() {
	t.curLevel++
	if len(t.levelStarts) <= t.curLevel {
		t.levelStarts = append(t.levelStarts, len(t.entries))
	} else {
		t.levelStarts[t.curLevel] = len(t.entries)
	}
}

// Backtrack undoes assignments back to level, walking new-top to old-top so
// callers (the solver's propagator notification loop) can invoke on_cancel
// in the correct order. Returns the undone literals in undo order.
func (t *Trail) Backtrack(level int) []Lit {
	if level >= t.curLevel {
		return nil
	}
	start := t.levelStarts[level+1]
	undone := make([]Lit, 0, len(t.entries)-start)
	for i := len(t.entries) - 1; i >= start; i-- {
		lit := t.entries[i].Lit
		v := lit.Var()
		t.assigns[v] = LUndef
		t.levels[v] = -1
		t.index[v] = -1
		t.reasons[v] = reasonRef{}
		undone = append(undone, lit)
	}
	t.entries = t.entries[:start]
	t.curLevel = level
	return undone
}

func (t *Trail) Reason(v Var) reasonRef { return t.reasons[v] }

func (t *Trail) IsDecision(v Var) bool {
	return t.IsAssigned(v) && t.reasons[v].kind == reasonDecision
}

// EntriesAtLevel returns a view of the entries assigned at a given level.
func (t *Trail) EntriesAtLevel(level int) []TrailEntry {
	if level >= len(t.levelStarts) {
		return nil
	}
	start := t.levelStarts[level]
	end := len(t.entries)
	if level+1 < len(t.levelStarts) {
		end = t.levelStarts[level+1]
	}
	if level == t.curLevel {
		end = len(t.entries)
	}
	if end > start {
		return t.entries[start:end]
	}
	return nil
}

// Clear resets the trail to the empty state at level 0, level-0 facts
// included. The solver does not call it; restarts use cancelUntil(0).
func (t *Trail) Clear() {
	for i := range t.assigns {
		t.assigns[i] = LUndef
		t.levels[i] = -1
		t.index[i] = -1
		t.reasons[i] = reasonRef{}
	}
	t.entries = t.entries[:0]
	t.curLevel = 0
	t.levelStarts = t.levelStarts[:1]
}

// ClearToLevelZero backtracks to level 0 without touching persistent
// assignments. The solver's restarts reach the same state through
// cancelUntil(0).
func (t *Trail) ClearToLevelZero() []Lit {
	return t.Backtrack(0)
}
