package unfounded

import (
	"testing"

	"github.com/xDarkicex/axiomsat/sat"
)

// TestMutualSupportUnfounded mirrors the S5 scenario: atoms a,b support
// each other only ("(body,{b})" for a, "(body,{a})" for b), body left
// free, plus the hard clause a∨b. With no non-recursive grounding, both
// must be forced false at level 0, which then conflicts with a∨b.
func TestMutualSupportUnfounded(t *testing.T) {
	s := sat.NewSolver()
	a := s.NewVar()
	b := s.NewVar()
	body := s.NewVar()

	p := New()
	s.AddPropagator(p)

	bodyLit := sat.MkLit(body, false)
	p.AddSupport(a, bodyLit, []sat.Var{b})
	p.AddSupport(b, bodyLit, []sat.Var{a})

	if !s.AddClause([]sat.Lit{sat.MkLit(a, false), sat.MkLit(b, false)}) {
		t.Fatalf("adding the hard clause should not immediately fail")
	}

	res := s.SolveBudget(nil, 0, nil)
	if res.Satisfiable {
		t.Fatalf("expected unsatisfiable: only mutual support exists for a and b")
	}
}
