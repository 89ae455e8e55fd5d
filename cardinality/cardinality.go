// Package cardinality implements the weight-constraint propagator: reified
// linear inequalities Σ wᵢ·[lᵢ] ≥ b over propositional literals with
// nonnegative integer weights, registered into a sat.Solver as a
// sat.Propagator.
package cardinality

import (
	"sort"

	"github.com/xDarkicex/axiomsat/sat"
)

// term is one literal/weight pair of a constraint, kept in canonical
// (weight-descending) order so zero-loosable propagation examines the
// heaviest undetermined literals first.
type term struct {
	lit    sat.Lit
	weight int64
}

// axiom is one Σ wᵢ·[lᵢ] ≥ b constraint. loosable = Σ{wᵢ : lᵢ not falsified}
// - b tracks how much slack remains before the constraint is violated.
type axiom struct {
	terms    []term
	bound    int64
	loosable int64
	id       int
}

// Propagator implements sat.Propagator for a battery of weight-constraint
// axioms. watches records, for each literal ¬lᵢ, the axioms containing lᵢ,
// but sweep does not consult it: every call re-evaluates every axiom.
type Propagator struct {
	axioms  []*axiom
	watches map[sat.Lit][]int // lit -> axiom indices watching lit's negation

	pendingConflict []sat.Lit
	reasonCache     map[sat.Lit][]sat.Lit

	nVars int
}

func New() *Propagator {
	return &Propagator{
		watches:     make(map[sat.Lit][]int),
		reasonCache: make(map[sat.Lit][]sat.Lit),
	}
}

func (p *Propagator) Name() string { return "cardinality" }

func (p *Propagator) OnNewVariable() { p.nVars++ }

// AddGE registers `Σ weights[i]·[lits[i]] ≥ bound` at decision level 0,
// applying the canonicalization and special-case detection from the
// weight-constraint design: duplicate/complementary merging, trivial-true,
// clause, all-unit, and unsat detection.
func (p *Propagator) AddGE(s *sat.Solver, lits []sat.Lit, weights []int64, bound int64) bool {
	terms, bound := canonicalize(lits, weights, bound, s)
	if bound <= 0 {
		return true // trivially satisfied
	}
	var sum int64
	for _, t := range terms {
		sum += t.weight
	}
	if bound > sum {
		return false // unsatisfiable: even all literals true can't reach bound
	}
	if bound == 1 {
		out := make([]sat.Lit, len(terms))
		for i, t := range terms {
			out[i] = t.lit
		}
		return s.AddClause(out)
	}
	if bound == sum {
		for _, t := range terms {
			if !s.AddClause([]sat.Lit{t.lit}) {
				return false
			}
		}
		return true
	}

	sort.Slice(terms, func(i, j int) bool { return terms[i].weight > terms[j].weight })
	ax := &axiom{terms: terms, bound: bound, loosable: sum - bound, id: len(p.axioms)}
	p.axioms = append(p.axioms, ax)
	for _, t := range ax.terms {
		w := t.lit.Neg()
		p.watches[w] = append(p.watches[w], ax.id)
	}
	return true
}

// AddLE registers `Σ weights[i]·[lits[i]] ≤ bound` by negating every literal
// and restating it as a ≥ constraint over the complements.
func (p *Propagator) AddLE(s *sat.Solver, lits []sat.Lit, weights []int64, bound int64) bool {
	var sum int64
	for _, w := range weights {
		sum += w
	}
	neg := make([]sat.Lit, len(lits))
	for i, l := range lits {
		neg[i] = l.Neg()
	}
	return p.AddGE(s, neg, weights, sum-bound)
}

// AddEQ registers equality as the conjunction of ≥b and ≤b.
func (p *Propagator) AddEQ(s *sat.Solver, lits []sat.Lit, weights []int64, bound int64) bool {
	if !p.AddGE(s, lits, weights, bound) {
		return false
	}
	return p.AddLE(s, lits, weights, bound)
}

// canonicalize drops already-decided literals, merges duplicate literals
// (summing weights) and complementary pairs (cancel, reducing bound by the
// lesser weight).
func canonicalize(lits []sat.Lit, weights []int64, bound int64, s *sat.Solver) ([]term, int64) {
	seenPos := make(map[sat.Var]int64)
	seenNeg := make(map[sat.Var]int64)
	for i, l := range lits {
		w := weights[i]
		if s != nil {
			switch s.LitValue(l) {
			case sat.LTrue:
				bound -= w
				continue
			case sat.LFalse:
				continue
			}
		}
		if l.Sign() {
			seenNeg[l.Var()] += w
		} else {
			seenPos[l.Var()] += w
		}
	}
	var out []term
	for v, wp := range seenPos {
		wn := seenNeg[v]
		delete(seenNeg, v)
		if wp == wn {
			bound -= wp
			continue
		}
		if wp > wn {
			out = append(out, term{lit: sat.MkLit(v, false), weight: wp - wn})
			bound -= wn
		} else {
			out = append(out, term{lit: sat.MkLit(v, true), weight: wn - wp})
			bound -= wp
		}
	}
	for v, wn := range seenNeg {
		out = append(out, term{lit: sat.MkLit(v, true), weight: wn})
	}
	return out, bound
}

func (p *Propagator) Activate(s *sat.Solver) bool { return true }

func (p *Propagator) Simplify(s *sat.Solver) bool { return p.sweep(s, true) }

func (p *Propagator) Propagate(s *sat.Solver) bool { return p.sweep(s, false) }

// sweep recomputes loosable for every axiom from the current assignment
// (Σwᵢ − bound, minus the weight of each falsified literal), and applies the §4.2
// propagation rule: loosable<0 is a conflict; loosable==0 forces every
// undetermined heavier-than-loosable literal true.
func (p *Propagator) sweep(s *sat.Solver, level0 bool) bool {
	for _, ax := range p.axioms {
		loosable := ax.bound
		var sum int64
		for _, t := range ax.terms {
			sum += t.weight
		}
		loosable = sum - ax.bound
		for _, t := range ax.terms {
			if s.LitValue(t.lit) == sat.LFalse {
				loosable -= t.weight
			}
		}
		ax.loosable = loosable

		if loosable < 0 {
			pivot := findPivot(s, ax)
			p.pendingConflict = buildReason(s, ax, pivot)
			return false
		}
		if loosable == 0 {
			for _, t := range ax.terms {
				if s.LitValue(t.lit) != sat.LUndef {
					continue
				}
				if t.weight > 0 {
					if level0 {
						if !s.AddClause([]sat.Lit{t.lit}) {
							return false
						}
					} else {
						p.reasonCache[t.lit] = buildReason(s, ax, t.lit)
						s.EnqueueTheory(p, t.lit)
					}
				}
			}
		}
	}
	return true
}

// findPivot picks the falsified literal with the largest trail index, the
// canonical choice for a conflict pivot under the weight-constraint design.
func findPivot(s *sat.Solver, ax *axiom) sat.Lit {
	best := sat.LitUndef
	bestIdx := -1
	for _, t := range ax.terms {
		if s.LitValue(t.lit) == sat.LFalse {
			idx := s.Trail().TrailIndex(t.lit.Var())
			if idx > bestIdx {
				bestIdx = idx
				best = t.lit
			}
		}
	}
	return best
}

// buildReason returns (forced ∨ {lⱼ : lⱼ false, assigned before forced}),
// i.e. the clause form of the reason: every antecedent is the falsified
// literal itself, not its negation, so the clause is currently false
// everywhere except (possibly) forced. For a conflict call, forced is the
// pivot literal itself (also false, producing an all-false clause).
func buildReason(s *sat.Solver, ax *axiom, forced sat.Lit) []sat.Lit {
	out := []sat.Lit{forced}
	forcedIdx := s.Trail().TrailIndex(forced.Var())
	for _, t := range ax.terms {
		if t.lit == forced {
			continue
		}
		if s.LitValue(t.lit) == sat.LFalse {
			idx := s.Trail().TrailIndex(t.lit.Var())
			if forcedIdx < 0 || idx < forcedIdx {
				out = append(out, t.lit)
			}
		}
	}
	return out
}

func (p *Propagator) GetReason(l sat.Lit, out *[]sat.Lit) {
	*out = p.reasonCache[l]
}

func (p *Propagator) GetConflict(out *[]sat.Lit) {
	*out = p.pendingConflict
}

func (p *Propagator) OnUnassign(l sat.Lit) {
	delete(p.reasonCache, l)
}

func (p *Propagator) WantsUnassign() bool { return true }
