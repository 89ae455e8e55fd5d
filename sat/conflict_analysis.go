package sat

// analyze implements first-UIP conflict analysis: resolve the conflicting
// clause backwards along the trail until exactly one literal of the current
// decision level remains, producing an asserting learned clause and the
// backjump level to install it at.
//
// confl is the falsified clause's literals (all currently false). The
// returned clause's Literals[0] is the asserting (UIP) literal.
func (s *Solver) analyze(confl []Lit) (*Clause, int) {
	nVars := s.trail.NumVars()
	if cap(s.seen) < nVars {
		s.seen = make([]bool, nVars)
	} else {
		for i := range s.seen[:nVars] {
			s.seen[i] = false
		}
	}
	seen := s.seen

	outLits := []Lit{LitUndef}
	pathC := 0
	p := LitUndef
	reasonLits := confl
	idx := len(s.trail.entries) - 1
	levelsSeen := map[int]bool{}

	for {
		for _, q := range reasonLits {
			if q == p {
				continue
			}
			v := q.Var()
			if seen[v] {
				continue
			}
			lvl := s.trail.Level(v)
			if lvl <= 0 {
				continue
			}
			seen[v] = true
			s.heuristic.Bump(v)
			if lvl >= s.trail.CurrentLevel() {
				pathC++
			} else {
				outLits = append(outLits, q)
				levelsSeen[lvl] = true
			}
		}

		for idx >= 0 && !seen[s.trail.entries[idx].Lit.Var()] {
			idx--
		}
		p = s.trail.entries[idx].Lit
		pv := p.Var()
		seen[pv] = false
		pathC--
		idx--
		if pathC == 0 {
			break
		}
		reasonLits = s.reasonLits(p, s.trail.Reason(pv))
	}

	outLits[0] = p.Neg()
	levelsSeen[s.trail.CurrentLevel()] = true

	backtrackLevel := 0
	if len(outLits) > 1 {
		maxI := 1
		for i := 2; i < len(outLits); i++ {
			if s.trail.Level(outLits[i].Var()) > s.trail.Level(outLits[maxI].Var()) {
				maxI = i
			}
		}
		outLits[1], outLits[maxI] = outLits[maxI], outLits[1]
		backtrackLevel = s.trail.Level(outLits[1].Var())
	}

	learned := NewClause(outLits...)
	learned.Learned = true
	learned.SetLBD(len(levelsSeen))
	return learned, backtrackLevel
}

// reasonLits returns the antecedent clause (propagated ∨ ¬a1 ∨ … ∨ ¬ak)
// explaining why propagated was forced, materializing a theory reason
// lazily through the owning propagator's GetReason.
func (s *Solver) reasonLits(propagated Lit, r reasonRef) []Lit {
	switch r.kind {
	case reasonClause:
		if r.clause == nil {
			return nil
		}
		return r.clause.Literals
	case reasonTheory:
		var out []Lit
		s.propagators[r.propID].prop.GetReason(propagated, &out)
		return out
	default:
		return nil
	}
}

// analyzeFinal derives the subset of decided assumptions that certify
// unsatisfiability, walking the trail backward from p (the literal
// currently assigned true that forced an assumption false) through reason
// chains, exactly as the standard assumption-conflict extraction works in
// this solver family.
func (s *Solver) analyzeFinal(p Lit) []Lit {
	out := []Lit{p}
	if s.trail.CurrentLevel() == 0 {
		return out
	}
	nVars := s.trail.NumVars()
	seen := make([]bool, nVars)
	seen[p.Var()] = true

	for i := len(s.trail.entries) - 1; i >= 0; i-- {
		e := s.trail.entries[i]
		v := e.Lit.Var()
		if !seen[v] {
			continue
		}
		if e.Reason.kind == reasonDecision {
			if e.Level > 0 {
				out = append(out, e.Lit.Neg())
			}
		} else {
			for _, rl := range s.reasonLits(e.Lit, e.Reason) {
				rv := rl.Var()
				if rv != v && s.trail.Level(rv) > 0 {
					seen[rv] = true
				}
			}
		}
		seen[v] = false
	}
	return out
}
