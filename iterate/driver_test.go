package iterate

import (
	"testing"

	"github.com/xDarkicex/axiomsat/sat"
)

func TestActivatorBindsAndDischarges(t *testing.T) {
	s := sat.NewSolver()
	v1 := s.NewVar()
	l1 := sat.MkLit(v1, false)

	b := Activate(s, []sat.Lit{l1})
	res := s.SolveBudget([]sat.Lit{b.Activator}, 0, nil)
	if !res.Satisfiable {
		t.Fatalf("expected satisfiable with activator forcing l1 true")
	}
	if res.Model[v1] != sat.LTrue {
		t.Fatalf("activator should force l1 true")
	}

	Discharge(s, b)
	res2 := s.SolveBudget([]sat.Lit{b.Activator}, 0, nil)
	if res2.Satisfiable {
		t.Fatalf("activator should be permanently false after discharge")
	}
}

func TestProgramPartition(t *testing.T) {
	p := NewProgram()
	s := sat.NewSolver()
	v := s.NewVar()
	l := sat.MkLit(v, false)
	p.AddWeak(l, 3, 0)
	p.AddGroup(l)
	p.SetQuery(l)

	if len(p.Weak) != 1 || p.Weak[0].Weight != 3 {
		t.Fatalf("expected one weak literal of weight 3")
	}
	if !p.HasQuery {
		t.Fatalf("expected query literal to be set")
	}
}
