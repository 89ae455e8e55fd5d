package sat

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xDarkicex/axiomsat/core"
)

// Solver is the CDCL core: watched-literal unit propagation, first-UIP
// clause learning, Luby restarts, and a registration point for the
// Propagator extension framework. Everything above this package --
// cardinality propagation, unfounded-set propagation, core-guided
// optimization -- is built by registering Propagators and driving
// SolveBudget, never by reaching into solver internals.
type Solver struct {
	trail *Trail

	clauses []*Clause
	learned []*Clause
	watches [][]*Clause // indexed by int(Lit)

	propagators []propagatorSlot
	nextPropID  int

	heuristic       VarHeuristic
	restart         RestartStrategy
	deletionPolicy  ClauseDeletionPolicy

	qHead               int
	lastSimplifiedSize  int
	conflictsSinceRestart int64
	maxLearned          int

	assumptions []Lit

	ok bool

	clauseIDSeq int

	seen []bool // scratch reused across analyze() calls

	stats     SolverStatistics
	startedAt time.Time

	Log *logrus.Entry
}

// NewSolver creates an empty solver with the default VSIDS/Luby/tiered
// policy stack, matching this engine's reference configuration. Log is nil
// until the caller sets it; a nil Log keeps the solver silent, per the
// logging design's "library packages stay silent unless given an Entry".
func NewSolver() *Solver {
	s := &Solver{
		trail:          NewTrail(),
		heuristic:      newVSIDSHeuristic(),
		restart:        newLubyRestart(100),
		deletionPolicy: tieredDeletionPolicy{},
		maxLearned:     4000,
		ok:             true,
	}
	return s
}

// debug logs a solver lifecycle event at Debug level, a no-op when no Log
// has been wired in by the caller.
func (s *Solver) debug(fields logrus.Fields, msg string) {
	if s.Log == nil {
		return
	}
	s.Log.WithFields(fields).Debug(msg)
}

// NumVars returns the number of variables created so far.
func (s *Solver) NumVars() int { return s.trail.NumVars() }

// NumClauses returns the number of permanent (non-learned) clauses.
func (s *Solver) NumClauses() int { return len(s.clauses) }

// OK reports whether the solver has not yet proven unconditional UNSAT.
func (s *Solver) OK() bool { return s.ok }

// Trail exposes the decision trail read-only access propagators need to
// inspect assignments, levels, and trail order.
func (s *Solver) Trail() *Trail { return s.trail }

// Value reports the current truth value of v.
func (s *Solver) Value(v Var) LBool { return s.trail.Value(v) }

// LitValue reports the current truth value of l.
func (s *Solver) LitValue(l Lit) LBool { return s.trail.LitValue(l) }

// NewVar allocates a fresh variable and notifies every registered
// propagator via OnNewVariable, so their per-variable arrays stay in
// lockstep with the trail's.
func (s *Solver) NewVar() Var {
	v := Var(s.trail.NumVars())
	s.trail.Grow(int(v) + 1)
	s.heuristic.Grow(int(v) + 1)
	for _, ps := range s.propagators {
		ps.prop.OnNewVariable()
	}
	return v
}

// AddPropagator registers a theory extension. Call order determines
// polling order during propagateRound. Any variables already created are
// back-filled with OnNewVariable so a propagator registered after parsing
// begins still sees a consistent view.
func (s *Solver) AddPropagator(p Propagator) {
	for i := 0; i < s.trail.NumVars(); i++ {
		p.OnNewVariable()
	}
	s.propagators = append(s.propagators, propagatorSlot{id: s.nextPropID, prop: p})
	s.nextPropID++
}

// AddClause installs a permanent clause. Must be called at decision level
// 0 (the normal usage pattern: axioms are added at program load and after
// each discharged core, always from a level-0 state). Returns false if the
// clause is a contradiction that leaves the solver unconditionally UNSAT.
func (s *Solver) AddClause(lits []Lit) bool {
	if !s.ok {
		return false
	}
	out := make([]Lit, 0, len(lits))
	for _, l := range lits {
		switch s.trail.LitValue(l) {
		case LTrue:
			return true // clause already satisfied at level 0
		case LFalse:
			continue // drop falsified literal
		}
		tautology := false
		dup := false
		for _, x := range out {
			if x == l {
				dup = true
				break
			}
			if x == l.Neg() {
				tautology = true
				break
			}
		}
		if tautology {
			return true
		}
		if !dup {
			out = append(out, l)
		}
	}
	switch len(out) {
	case 0:
		s.ok = false
		return false
	case 1:
		s.trail.Enqueue(out[0], reasonRef{kind: reasonClause})
		return true
	}
	s.clauseIDSeq++
	c := NewClause(out...)
	c.ID = s.clauseIDSeq
	s.clauses = append(s.clauses, c)
	s.attach(c)
	return true
}

// learnClause installs a derived clause after conflict analysis, attaching
// its watches and, for a unit clause, enqueuing it directly.
func (s *Solver) learnClause(c *Clause) {
	s.clauseIDSeq++
	c.ID = s.clauseIDSeq
	s.stats.LearnedClauses++
	if c.Glue {
		s.stats.GlueClauses++
	}
	if len(c.Literals) == 1 {
		s.trail.Enqueue(c.Literals[0], reasonRef{kind: reasonClause, clause: c})
		return
	}
	s.learned = append(s.learned, c)
	s.attach(c)
	s.trail.Enqueue(c.Literals[0], reasonRef{kind: reasonClause, clause: c})
}

func (s *Solver) ensureWatches(l Lit) {
	idx := int(l)
	for len(s.watches) <= idx {
		s.watches = append(s.watches, nil)
	}
}

func (s *Solver) attach(c *Clause) {
	w0 := c.Literals[0].Neg()
	w1 := c.Literals[1].Neg()
	s.ensureWatches(w0)
	s.ensureWatches(w1)
	s.watches[w0] = append(s.watches[w0], c)
	s.watches[w1] = append(s.watches[w1], c)
}

// propagateClauses runs unit propagation over the watched-literal scheme
// until fixpoint or conflict, consuming trail entries from qHead forward.
func (s *Solver) propagateClauses() []Lit {
	for s.qHead < s.trail.Size() {
		p := s.trail.entries[s.qHead].Lit
		s.qHead++
		s.ensureWatches(p)
		ws := s.watches[p]
		j := 0
		for i := 0; i < len(ws); i++ {
			c := ws[i]
			if c.deleted {
				continue
			}
			if c.Literals[0].Neg() == p {
				c.Literals[0], c.Literals[1] = c.Literals[1], c.Literals[0]
			}
			first := c.Literals[0]
			if s.trail.LitValue(first) == LTrue {
				ws[j] = c
				j++
				continue
			}
			found := false
			for k := 2; k < len(c.Literals); k++ {
				lk := c.Literals[k]
				if s.trail.LitValue(lk) != LFalse {
					c.Literals[1], c.Literals[k] = lk, c.Literals[1]
					s.ensureWatches(lk.Neg())
					s.watches[lk.Neg()] = append(s.watches[lk.Neg()], c)
					found = true
					break
				}
			}
			if found {
				continue
			}
			ws[j] = c
			j++
			if s.trail.LitValue(first) == LFalse {
				for i++; i < len(ws); i++ {
					ws[j] = ws[i]
					j++
				}
				s.watches[p] = ws[:j]
				return append([]Lit{}, c.Literals...)
			}
			s.trail.Enqueue(first, reasonRef{kind: reasonClause, clause: c})
			s.stats.Propagations++
		}
		s.watches[p] = ws[:j]
	}
	return nil
}

// propagateRound alternates clause BCP and theory propagation to fixpoint,
// per the ordering guarantee that propagators are polled in registration
// order and the first to signal a conflict or new inference yields control
// back to the SAT core.
func (s *Solver) propagateRound() ([]Lit, bool) {
	for {
		if confl := s.propagateClauses(); confl != nil {
			return confl, true
		}
		if s.trail.CurrentLevel() == 0 && s.trail.Size() > s.lastSimplifiedSize {
			for _, ps := range s.propagators {
				if !ps.prop.Simplify(s) {
					var out []Lit
					ps.prop.GetConflict(&out)
					return out, true
				}
			}
			s.lastSimplifiedSize = s.trail.Size()
			continue
		}
		progressed := false
		for _, ps := range s.propagators {
			before := s.trail.Size()
			if !ps.prop.Propagate(s) {
				var out []Lit
				ps.prop.GetConflict(&out)
				return out, true
			}
			if s.trail.Size() != before {
				progressed = true
				break
			}
		}
		if !progressed {
			return nil, false
		}
	}
}

// cancelUntil backjumps to level, notifying propagators that opt into
// unassign callbacks in new-top-to-old-top order.
func (s *Solver) cancelUntil(level int) {
	if level >= s.trail.CurrentLevel() {
		return
	}
	undone := s.trail.Backtrack(level)
	for _, lit := range undone {
		s.heuristic.SavePhase(lit.Var(), lit.Sign())
		for _, ps := range s.propagators {
			if ps.prop.WantsUnassign() {
				ps.prop.OnUnassign(lit)
			}
		}
	}
	if s.qHead > s.trail.Size() {
		s.qHead = s.trail.Size()
	}
}

// SolveBudget runs search under the given assumptions, returning Satisfiable
// with a model, Satisfiable=false with a Conflict core (if assumptions
// caused it), or Unknown if the conflict budget was exhausted or interrupt
// fired. budget<=0 means unbounded. The trail is back at decision level 0
// when it returns, so clauses can be added right after a solve.
func (s *Solver) SolveBudget(assumptions []Lit, budget int64, interrupt core.Interrupter) Result {
	if !s.ok {
		return Result{Satisfiable: false, Statistics: s.stats}
	}
	s.assumptions = assumptions
	s.cancelUntil(0)
	defer s.cancelUntil(0)
	var used int64

	for {
		if interrupt != nil && interrupt.Interrupted() {
			return Result{Unknown: true, Statistics: s.stats}
		}

		conflLits, hasConflict := s.propagateRound()
		if hasConflict {
			s.stats.Conflicts++
			if s.trail.CurrentLevel() == 0 {
				s.ok = false
				return Result{Satisfiable: false, Statistics: s.stats}
			}
			learned, btLevel := s.analyze(conflLits)
			s.cancelUntil(btLevel)
			s.learnClause(learned)
			s.heuristic.Decay()
			s.conflictsSinceRestart++

			used++
			if budget > 0 && used >= budget {
				return Result{Unknown: true, Statistics: s.stats}
			}
			if s.restart.ShouldRestart(s.conflictsSinceRestart) {
				s.cancelUntil(0)
				s.restart.OnRestart()
				s.conflictsSinceRestart = 0
				s.stats.Restarts++
				s.debug(logrus.Fields{"restarts": s.stats.Restarts, "conflicts": s.stats.Conflicts}, "restart")
			}
			if len(s.learned) > s.maxLearned {
				s.reduceDB()
			}
			continue
		}

		if s.trail.CurrentLevel() < len(s.assumptions) {
			p := s.assumptions[s.trail.CurrentLevel()]
			switch s.trail.LitValue(p) {
			case LTrue:
				s.trail.NewDecisionLevel()
				continue
			case LFalse:
				return Result{Satisfiable: false, Conflict: s.analyzeFinal(p.Neg()), Statistics: s.stats}
			default:
				s.trail.NewDecisionLevel()
				s.trail.Enqueue(p, reasonRef{kind: reasonDecision})
				s.stats.Decisions++
				continue
			}
		}

		v, ok := s.heuristic.Pick(s.trail)
		if !ok {
			return Result{Satisfiable: true, Model: s.extractModel(), Statistics: s.stats}
		}
		s.trail.NewDecisionLevel()
		s.trail.Enqueue(MkLit(v, s.heuristic.Phase(v)), reasonRef{kind: reasonDecision})
		s.stats.Decisions++
	}
}

// EnqueueTheory lets a registered propagator force l true with a reason
// resolved lazily through its own GetReason, satisfying the reason-discipline
// invariant that every theory-propagated literal names the propagator that
// owns its explanation.
func (s *Solver) EnqueueTheory(p Propagator, l Lit) {
	id := -1
	for _, ps := range s.propagators {
		if ps.prop == p {
			id = ps.id
			break
		}
	}
	s.trail.Enqueue(l, reasonRef{kind: reasonTheory, propID: id})
}

func (s *Solver) extractModel() []LBool {
	model := make([]LBool, s.trail.NumVars())
	copy(model, s.trail.assigns)
	return model
}

// reduceDB offers every learned clause to the deletion policy, ranked by its
// position in learning order (oldest first), and discards the unlocked ones
// the policy rejects. Clause activity is not tracked, so no activity ranking
// is applied.
func (s *Solver) reduceDB() {
	kept := s.learned[:0]
	total := len(s.learned)
	for i, c := range s.learned {
		if c.Locked(s.trail) || !s.deletionPolicy.ShouldDelete(c, i, total) {
			kept = append(kept, c)
			continue
		}
		c.deleted = true
		s.stats.DeletedClauses++
	}
	s.learned = kept
	s.debug(logrus.Fields{"kept": len(kept), "total": total}, "reduceDB")
}

// Locked reports whether c is currently the reason for an assignment and
// so cannot be deleted without invalidating that assignment's explanation.
func (c *Clause) Locked(t *Trail) bool {
	if len(c.Literals) == 0 {
		return false
	}
	v := c.Literals[0].Var()
	if !t.IsAssigned(v) {
		return false
	}
	r := t.Reason(v)
	return r.kind == reasonClause && r.clause == c
}
