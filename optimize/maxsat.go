package optimize

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/xDarkicex/axiomsat/core"
	"github.com/xDarkicex/axiomsat/sat"
)

// pool is the live working copy of one level's soft literals, shrinking as
// cores are discharged; indices are stable references used by trim/shrink.
type pool struct {
	items []*SoftLiteral
}

func newPool(items []SoftLiteral) *pool {
	p := &pool{}
	for i := range items {
		p.items = append(p.items, &items[i])
	}
	return p
}

func (p *pool) atLeast(m int64) []sat.Lit {
	var out []sat.Lit
	for _, s := range p.items {
		if s.Weight >= m {
			out = append(out, s.Lit)
		}
	}
	return out
}

func (p *pool) maxWeight() int64 {
	var m int64 = -1
	for _, s := range p.items {
		if s.Weight > m {
			m = s.Weight
		}
	}
	return m
}

func (p *pool) remove(lits map[sat.Lit]bool) {
	kept := p.items[:0]
	for _, s := range p.items {
		if !lits[s.Lit] {
			kept = append(kept, s)
		}
	}
	p.items = kept
}

func (p *pool) weightOf(l sat.Lit) int64 {
	for _, s := range p.items {
		if s.Lit == l {
			return s.Weight
		}
	}
	return 0
}

// SolveMaxSAT runs mode 1 of the core-guided engine (single-level MaxSAT):
// hardening, stratified limit selection, assumption-driven solving, core
// trim/shrink, and k-dyn reformulation, until LB==UB.
func (e *Engine) SolveMaxSAT(interrupt core.Interrupter) (*Model, bool) {
	return e.solveLevel(0, interrupt)
}

// SolveASP runs mode 2: the same machinery applied once per level, from
// highest to lowest, freezing each level's (LB,UB) before descending.
func (e *Engine) SolveASP(interrupt core.Interrupter) []*Model {
	levels := map[int]bool{}
	for _, s := range e.soft {
		levels[s.Level] = true
	}
	var ordered []int
	for l := range levels {
		ordered = append(ordered, l)
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j] > ordered[i] {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	var results []*Model
	for _, lvl := range ordered {
		e.LB, e.UB = 0, 1<<62-1
		m, ok := e.solveLevel(lvl, interrupt)
		if !ok {
			return results
		}
		results = append(results, m)
	}
	return results
}

func (e *Engine) levelSoft(level int) []SoftLiteral {
	var out []SoftLiteral
	for _, s := range e.soft {
		if s.Level == level {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) solveLevel(level int, interrupt core.Interrupter) (*Model, bool) {
	pl := newPool(e.levelSoft(level))

	for {
		if interrupt != nil && interrupt.Interrupted() {
			return e.bestModel, e.bestModel != nil
		}

		e.harden(pl)

		if len(pl.items) == 0 {
			res := e.Solver.SolveBudget(nil, 0, interrupt)
			e.observe(res.Statistics)
			if !res.Satisfiable {
				return nil, false
			}
			model := &Model{Assignment: res.Model, Cost: e.LB}
			e.bestModel = model
			return model, true
		}

		m := pl.maxWeight()
		assumptions := pl.atLeast(m)

		res := e.Solver.SolveBudget(assumptions, 0, interrupt)
		e.observe(res.Statistics)
		if res.Satisfiable {
			var falsifiedWeight int64
			for _, s := range pl.items {
				if sat.LBool(res.Model[s.Lit.Var()]) != litPolarity(s.Lit) {
					falsifiedWeight += s.Weight
				}
			}
			cost := e.LB + falsifiedWeight
			if cost < e.UB {
				e.UB = cost
				e.bestModel = &Model{Assignment: res.Model, Cost: cost}
			}
			if e.LB == e.UB {
				return e.bestModel, true
			}
			continue
		}

		conflictCore := e.trimCore(res.Conflict, interrupt)
		conflictCore = e.shrinkCore(conflictCore, pl, interrupt)
		if len(conflictCore) == 0 {
			return nil, false
		}
		if e.Metrics != nil {
			e.Metrics.CoresFound.Inc()
		}
		w := e.minCoreWeight(conflictCore, pl)
		e.LB += w
		e.debug(logrus.Fields{"core_size": len(conflictCore), "weight": w, "lb": e.LB}, "core discharge")
		if e.Metrics != nil {
			e.Metrics.ObserveBounds(e.LB, e.UB)
		}
		if e.LB >= e.UB {
			return e.bestModel, e.bestModel != nil
		}
		e.reformulateKDyn(conflictCore, w, pl)
	}
}

// observe mirrors the delta since the last observed snapshot into e.Metrics;
// a no-op when no Collectors has been wired in via SetMetrics.
func (e *Engine) observe(cur sat.SolverStatistics) {
	if e.Metrics == nil {
		return
	}
	e.Metrics.Observe(e.prevStats, cur)
	e.prevStats = cur
	e.Metrics.ObserveBounds(e.LB, e.UB)
}

func litPolarity(l sat.Lit) sat.LBool {
	if l.Sign() {
		return sat.LFalse
	}
	return sat.LTrue
}

// harden removes softs whose failure can no longer change the outcome
// (weight+LB >= UB) and forces them true, per §4.4 step 1. Running it twice
// on an unchanged pool is a no-op (idempotent).
func (e *Engine) harden(pl *pool) {
	var toForce []sat.Lit
	toRemove := map[sat.Lit]bool{}
	for _, s := range pl.items {
		if s.Weight+e.LB >= e.UB {
			toForce = append(toForce, s.Lit)
			toRemove[s.Lit] = true
		}
	}
	if len(toForce) == 0 {
		return
	}
	for _, l := range toForce {
		e.Solver.AddClause([]sat.Lit{l})
	}
	pl.remove(toRemove)
}

// negateLits flips every literal's polarity, used at the boundary between
// the core's canonical positive-soft-literal form (what trimCore/shrinkCore
// return and reformulateKDyn/minCoreWeight expect) and the ¬core form in
// which a solve reports its failed assumptions (res.Conflict).
func negateLits(lits []sat.Lit) []sat.Lit {
	out := make([]sat.Lit, len(lits))
	for i, l := range lits {
		out[i] = l.Neg()
	}
	return out
}

// trimCore repeatedly re-solves with the current core as assumptions until
// the returned conflict stops shrinking, producing a minimal-under-this-solver
// core. conflict arrives
// already in ¬core form (res.Conflict from a solve whose assumptions were
// the positive softs); the result is returned in the canonical positive
// (core) form used throughout the rest of the core-guided loop.
func (e *Engine) trimCore(conflict []sat.Lit, interrupt core.Interrupter) []sat.Lit {
	cur := negateLits(conflict)
	for i := 0; i < 8; i++ { // bounded: trimming converges fast in practice
		res := e.Solver.SolveBudget(cur, 0, interrupt)
		if res.Satisfiable || len(res.Conflict) >= len(cur) {
			break
		}
		cur = negateLits(res.Conflict)
	}
	return cur
}

// shrinkCore holds a fixed prefix and doubles an exponential window of
// further core candidates, retrimming and intersecting on every UNSAT hit,
// until no more profit remains (LB+m >= UB), the candidate pool is
// exhausted, or an UNSAT window leaves the core unchanged.
func (e *Engine) shrinkCore(conflictCore []sat.Lit, pl *pool, interrupt core.Interrupter) []sat.Lit {
	if len(conflictCore) <= 1 {
		return conflictCore
	}
	prefix := append([]sat.Lit{}, conflictCore[:1]...)
	candidates := conflictCore[1:]
	window := 1

	for len(candidates) > 0 {
		m := e.minCoreWeight(prefix, pl)
		if e.LB+m >= e.UB {
			break
		}
		n := window
		if n > len(candidates) {
			n = len(candidates)
		}
		windowCore := append(append([]sat.Lit{}, prefix...), candidates[:n]...)
		res := e.Solver.SolveBudget(windowCore, 0, interrupt)
		if !res.Satisfiable && !res.Unknown {
			retrimmed := e.trimCore(res.Conflict, interrupt)
			before := len(prefix) + len(candidates)
			prefix = intersectLits(prefix, retrimmed)
			candidates = intersectLits(candidates[:n], retrimmed)
			if len(prefix)+len(candidates) == before {
				break
			}
			window = 1
			continue
		}
		window *= 2
		if window > len(candidates) {
			window = len(candidates)
		}
		if n == len(candidates) {
			break
		}
	}
	return append(prefix, candidates...)
}

func intersectLits(a, b []sat.Lit) []sat.Lit {
	set := map[sat.Lit]bool{}
	for _, l := range b {
		set[l] = true
	}
	var out []sat.Lit
	for _, l := range a {
		if set[l] {
			out = append(out, l)
		}
	}
	return out
}

func (e *Engine) minCoreWeight(conflictCore []sat.Lit, pl *pool) int64 {
	min := int64(math.MaxInt64)
	for _, l := range conflictCore {
		w := pl.weightOf(l)
		if w > 0 && w < min {
			min = w
		}
	}
	if min == math.MaxInt64 {
		return 0
	}
	return min
}

// reformulateKDyn replaces an extracted core of size k with the cascade of
// cardinality constraints described in §4.4: branching factor b, m new
// constraints, group size N, with consecutive relaxation variables
// symmetry-broken by ¬rᵢ ∨ rᵢ₊₁, and one connector relaxation variable
// carried across chunks at zero weight within the chunk that creates it.
// conflictCore arrives in the canonical positive-soft-literal (core) form,
// matching pl.items[*].Lit directly.
func (e *Engine) reformulateKDyn(conflictCore []sat.Lit, w int64, pl *pool) {
	k := len(conflictCore)
	toRemove := map[sat.Lit]bool{}
	for _, l := range conflictCore {
		toRemove[l] = true
	}
	pl.remove(toRemove)

	b := 8.0
	if k > 2 {
		b = 16 * math.Log10(float64(k))
	}
	m := int(math.Ceil(float64(2*k) / (b - 2)))
	if m < 1 {
		m = 1
	}
	N := int(math.Ceil(float64(2*k-1+2*(m-1)) / float64(2*m)))
	if N < 1 {
		N = 1
	}

	var connector sat.Lit
	haveConnector := false

	chunkStart := 0
	for chunkStart < k {
		end := chunkStart + N
		if end > k {
			end = k
		}
		chunk := conflictCore[chunkStart:end]

		group := append([]sat.Lit{}, chunk...)
		if haveConnector {
			group = append(group, connector)
		}

		var relax []sat.Lit
		nNew := N - 1
		if nNew < 0 {
			nNew = 0
		}
		for i := 0; i < nNew; i++ {
			v := e.Solver.NewVar()
			e.relaxSeq++
			rl := sat.MkLit(v, false)
			relax = append(relax, rl)
			group = append(group, rl)
			weight := w
			if i == nNew-1 && end < k {
				weight = 0 // connector carried into the next chunk at zero weight here
			}
			pl.items = append(pl.items, &SoftLiteral{Lit: rl, Weight: weight})
		}
		for i := 0; i+1 < len(relax); i++ {
			e.Solver.AddClause([]sat.Lit{relax[i].Neg(), relax[i+1]})
		}

		weights := make([]int64, len(group))
		for i := range weights {
			weights[i] = 1
		}
		bound := int64(len(group) - 1)
		e.Card.AddGE(e.Solver, group, weights, bound)

		if len(relax) > 0 && end < k {
			connector = relax[len(relax)-1]
			haveConnector = true
		} else {
			haveConnector = false
		}
		chunkStart = end
	}
}
