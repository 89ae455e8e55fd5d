package optimize

import (
	"github.com/xDarkicex/axiomsat/core"
	"github.com/xDarkicex/axiomsat/sat"
)

// EnumerateTopK repeatedly finds an optimum, emits it, blocks it with a
// clause over the original soft literals (flipping the polarities of those
// currently true), and resets UB, until k models are found or UNSAT is
// proven (§4.4 top-k mode). The emitted sequence never repeats a model and
// terminates exactly when UNSAT is proven or k is reached (testable
// property 7).
func (e *Engine) EnumerateTopK(k int, interrupt core.Interrupter) []*Model {
	var models []*Model
	originalSoft := append([]SoftLiteral{}, e.soft...)

	for len(models) < k {
		e.UB = 1<<62 - 1
		m, ok := e.solveLevel(0, interrupt)
		if !ok {
			break
		}
		models = append(models, m)

		var blocking []sat.Lit
		for _, s := range originalSoft {
			if m.Assignment[s.Lit.Var()] == litPolarity(s.Lit) {
				blocking = append(blocking, s.Lit.Neg())
			} else {
				blocking = append(blocking, s.Lit)
			}
		}
		if !e.Solver.AddClause(blocking) {
			break
		}
	}
	return models
}
