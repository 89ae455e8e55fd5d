package optimize

import (
	"testing"

	"github.com/xDarkicex/axiomsat/cardinality"
	"github.com/xDarkicex/axiomsat/sat"
)

// TestMaxSATCoreGuided mirrors scenario S3: a hard clause over three
// variables plus three unit softs penalizing each of them, weight 1 each.
// Exactly one of the three must be true, so optimal cost is 2.
func TestMaxSATCoreGuided(t *testing.T) {
	s := sat.NewSolver()
	v1, v2, v3 := s.NewVar(), s.NewVar(), s.NewVar()
	l1, l2, l3 := sat.MkLit(v1, false), sat.MkLit(v2, false), sat.MkLit(v3, false)

	if !s.AddClause([]sat.Lit{l1, l2, l3}) {
		t.Fatalf("hard clause should be accepted")
	}

	card := cardinality.New()
	s.AddPropagator(card)

	eng := NewEngine(s, card)
	eng.AddSoft(l1.Neg(), 1, 0)
	eng.AddSoft(l2.Neg(), 1, 0)
	eng.AddSoft(l3.Neg(), 1, 0)

	m, ok := eng.SolveMaxSAT(nil)
	if !ok {
		t.Fatalf("expected a satisfiable optimum")
	}
	if m.Cost != 2 {
		t.Fatalf("expected optimal cost 2, got %d", m.Cost)
	}
}
