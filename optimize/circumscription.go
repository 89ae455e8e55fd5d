package optimize

import (
	"github.com/xDarkicex/axiomsat/core"
	"github.com/xDarkicex/axiomsat/sat"
)

// IterationStep is one entry of a dynamic iteration record: ADD appends a
// permanent clause, ASSERT installs a one-shot assumption batch.
type IterationStep struct {
	Kind    StepKind
	Clause  []sat.Lit // for Add
	Assumed []sat.Lit // for Assert
}

type StepKind int

const (
	StepAdd StepKind = iota
	StepAssert
)

// Circumscription checks minimality of a query literal via a second
// "checker" SAT instance holding a copy of the theory plus ¬query, per
// §4.4 mode 3.
type Circumscription struct {
	Main    *Engine
	Checker *sat.Solver

	Query sat.Lit
	group []sat.Lit
}

func NewCircumscription(main *Engine, checker *sat.Solver, query sat.Lit) *Circumscription {
	return &Circumscription{Main: main, Checker: checker, Query: query}
}

// AddGroupLiteral registers a Circumscription group literal: models with
// equal group values are comparable under the minimality order.
func (c *Circumscription) AddGroupLiteral(l sat.Lit) {
	c.group = append(c.group, l)
}

// StrategyOne adds `query` to the main instance, searches, then asks the
// checker whether a strictly smaller model (under weak/group order) also
// satisfies query; on a counter-model it blocks and retries.
func (c *Circumscription) StrategyOne(interrupt core.Interrupter) (*Model, bool) {
	if !c.Main.Solver.AddClause([]sat.Lit{c.Query}) {
		return nil, false
	}
	for {
		m, ok := c.Main.solveLevel(0, interrupt)
		if !ok {
			return nil, false
		}
		if c.verifyMinimal(m, interrupt) {
			return m, true
		}
		blocking := c.blockingClauseAgainst(m)
		if !c.Main.Solver.AddClause(blocking) {
			return nil, false
		}
	}
}

// StrategyTwo first solves cardinality-minimal without forcing query; if
// query already holds, accept directly, otherwise fall back to strategy 1.
func (c *Circumscription) StrategyTwo(interrupt core.Interrupter) (*Model, bool) {
	m, ok := c.Main.solveLevel(0, interrupt)
	if !ok {
		return nil, false
	}
	if m.Assignment[c.Query.Var()] == litPolarity(c.Query) {
		return m, true
	}
	return c.StrategyOne(interrupt)
}

// verifyMinimal asks the checker -- which holds the theory plus ¬query --
// whether any model strictly smaller than m (by the weak/group order)
// exists; absence of such a model certifies minimality.
func (c *Circumscription) verifyMinimal(m *Model, interrupt core.Interrupter) bool {
	var assumptions []sat.Lit
	for _, l := range c.group {
		if m.Assignment[l.Var()] == litPolarity(l) {
			assumptions = append(assumptions, l)
		} else {
			assumptions = append(assumptions, l.Neg())
		}
	}
	res := c.Checker.SolveBudget(assumptions, 0, interrupt)
	return !res.Satisfiable
}

func (c *Circumscription) blockingClauseAgainst(m *Model) []sat.Lit {
	var out []sat.Lit
	for _, l := range c.group {
		if m.Assignment[l.Var()] == litPolarity(l) {
			out = append(out, l.Neg())
		} else {
			out = append(out, l)
		}
	}
	return out
}

// RunDynamic applies a queue of ADD/ASSERT records, solving under the
// current assumption batch and emitting an answer per iteration; each
// ASSERT gets a fresh activator variable bound to its literals via
// ¬a ∨ lᵢ binary clauses, pushed as an assumption, then permanently negated
// at iteration end so the activator cannot be reused.
func (c *Circumscription) RunDynamic(steps []IterationStep, interrupt core.Interrupter) []*Model {
	var results []*Model
	var pending []sat.Lit

	for _, step := range steps {
		switch step.Kind {
		case StepAdd:
			c.Main.Solver.AddClause(step.Clause)
			c.Checker.AddClause(step.Clause)
		case StepAssert:
			activator := c.Main.Solver.NewVar()
			al := sat.MkLit(activator, false)
			for _, l := range step.Assumed {
				c.Main.Solver.AddClause([]sat.Lit{al.Neg(), l})
			}
			pending = append(pending, al)

			res := c.Main.Solver.SolveBudget(pending, 0, interrupt)
			if res.Satisfiable {
				results = append(results, &Model{Assignment: res.Model})
			}
			c.Main.Solver.AddClause([]sat.Lit{al.Neg()})
			pending = pending[:len(pending)-1]
		}
	}
	return results
}
