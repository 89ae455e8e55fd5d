package cardinality

import (
	"testing"

	"github.com/xDarkicex/axiomsat/sat"
)

func newSolverWithVars(n int) (*sat.Solver, []sat.Var) {
	s := sat.NewSolver()
	vars := make([]sat.Var, n)
	for i := range vars {
		vars[i] = s.NewVar()
	}
	return s, vars
}

func TestAddGEAtLeastThreeOfFour(t *testing.T) {
	s, vs := newSolverWithVars(4)
	p := New()
	s.AddPropagator(p)

	lits := []sat.Lit{
		sat.MkLit(vs[0], false),
		sat.MkLit(vs[1], false),
		sat.MkLit(vs[2], false),
		sat.MkLit(vs[3], false),
	}
	weights := []int64{1, 1, 1, 1}
	if !p.AddGE(s, lits, weights, 3) {
		t.Fatalf("AddGE should succeed")
	}

	res := s.SolveBudget(nil, 0, nil)
	if !res.Satisfiable {
		t.Fatalf("expected satisfiable result")
	}
	count := 0
	for _, v := range vs {
		if res.Model[v] == sat.LTrue {
			count++
		}
	}
	if count < 3 {
		t.Fatalf("expected at least 3 of 4 true, got %d", count)
	}
}

func TestAddGEBoundZeroTrivial(t *testing.T) {
	s, vs := newSolverWithVars(1)
	p := New()
	s.AddPropagator(p)
	if !p.AddGE(s, []sat.Lit{sat.MkLit(vs[0], false)}, []int64{1}, 0) {
		t.Fatalf("bound<=0 should be trivially satisfiable")
	}
}

func TestAddGEBoundExceedsSumUnsat(t *testing.T) {
	s, vs := newSolverWithVars(1)
	p := New()
	s.AddPropagator(p)
	if p.AddGE(s, []sat.Lit{sat.MkLit(vs[0], false)}, []int64{1}, 5) {
		t.Fatalf("bound > sum of weights must be unsat")
	}
}

func TestAddGEBoundOneBecomesClause(t *testing.T) {
	s, vs := newSolverWithVars(2)
	p := New()
	s.AddPropagator(p)
	lits := []sat.Lit{sat.MkLit(vs[0], false), sat.MkLit(vs[1], false)}
	if !p.AddGE(s, lits, []int64{1, 1}, 1) {
		t.Fatalf("bound=1 should install as a clause")
	}
	if !p.AddGE(s, []sat.Lit{sat.MkLit(vs[0], true)}, []int64{1}, 1) {
		t.Fatalf("forcing ¬v0 should still be consistent")
	}
	res := s.SolveBudget(nil, 0, nil)
	if !res.Satisfiable {
		t.Fatalf("expected satisfiable")
	}
	if res.Model[vs[1]] != sat.LTrue {
		t.Fatalf("v1 must be forced true to satisfy the clause")
	}
}
