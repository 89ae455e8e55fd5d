package optimize

import "github.com/xDarkicex/axiomsat/sat"

// PreprocessUnweighted scans input clauses, sorted by size, for ones
// composed entirely of soft literals whose stored sign is opposite to
// their occurrence in the clause -- a statically derivable core of weight
// equal to the minimum weight among its literals. Each such clause raises
// LB immediately and is reformulated without a SAT call. Skipped entirely
// when softs carry unequal weights (the all-equal-weight gate): the
// technique only applies to unweighted MaxSAT.
func (e *Engine) PreprocessUnweighted(clauses [][]sat.Lit, pl *pool) {
	if !allEqualWeight(e.soft) {
		return
	}
	sorted := append([][]sat.Lit{}, clauses...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if len(sorted[j]) < len(sorted[i]) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	softIndex := map[sat.Lit]int64{}
	for _, s := range e.soft {
		softIndex[s.Lit.Neg()] = s.Weight
	}
	for _, clause := range sorted {
		if len(clause) == 0 {
			continue
		}
		allSoft := true
		var minW int64 = -1
		for _, l := range clause {
			w, ok := softIndex[l]
			if !ok {
				allSoft = false
				break
			}
			if minW < 0 || w < minW {
				minW = w
			}
		}
		if !allSoft {
			continue
		}
		e.LB += minW
		e.reformulateKDyn(negateEach(clause), minW, pl)
	}
}

func negateEach(lits []sat.Lit) []sat.Lit {
	out := make([]sat.Lit, len(lits))
	for i, l := range lits {
		out[i] = l.Neg()
	}
	return out
}

func allEqualWeight(soft []SoftLiteral) bool {
	if len(soft) == 0 {
		return true
	}
	w := soft[0].Weight
	for _, s := range soft {
		if s.Weight != w {
			return false
		}
	}
	return true
}
