// Package iterate is the assumption/iteration driver: it partitions parsed
// literals into weak/group/query classes, collects dynamic ADD/ASSERT
// iteration records, and binds ASSERT batches to activator variables. It
// does not build a schedule of solve rounds; the optimization engine derives
// its own assumption sets.
package iterate

import (
	"github.com/xDarkicex/axiomsat/optimize"
	"github.com/xDarkicex/axiomsat/sat"
)

// LiteralClass is one of the four partitions a parsed literal can fall
// into.
type LiteralClass int

const (
	ClassHard LiteralClass = iota
	ClassWeak
	ClassGroup
	ClassQuery
)

// Program is the literal partition produced while reading one wire-format
// input, ready to be handed to an optimize.Engine and, for Circumscription,
// an optimize.Circumscription.
type Program struct {
	Weak  []optimize.SoftLiteral
	Group []sat.Lit
	Query sat.Lit
	HasQuery bool

	Steps []optimize.IterationStep
}

// NewProgram returns an empty partition ready for incremental population by
// the wire parser.
func NewProgram() *Program {
	return &Program{}
}

func (p *Program) AddWeak(l sat.Lit, weight int64, level int) {
	p.Weak = append(p.Weak, optimize.SoftLiteral{Lit: l, Weight: weight, Level: level})
}

func (p *Program) AddGroup(l sat.Lit) {
	p.Group = append(p.Group, l)
}

func (p *Program) SetQuery(l sat.Lit) {
	p.Query = l
	p.HasQuery = true
}

// AddRecord appends one dynamic iteration step (ADD or ASSERT), in the
// order the driver will replay them.
func (p *Program) AddRecord(step optimize.IterationStep) {
	p.Steps = append(p.Steps, step)
}

// Install loads the partitioned weak literals into a freshly constructed
// engine as softs, mirroring how the parser's output feeds the optimization
// loop in the data-flow described by the system overview. Group literals and
// the query are not installed.
func (p *Program) Install(e *optimize.Engine) {
	for _, w := range p.Weak {
		e.AddSoft(w.Lit, w.Weight, w.Level)
	}
}

// ActivatorBinding is the pair of binary clauses (¬a ∨ lᵢ) binding a fresh
// activator variable a to a one-shot ASSERT batch, plus the permanent ¬a
// unit added at iteration end so the activator can never be reused.
type ActivatorBinding struct {
	Activator sat.Lit
	Literals  []sat.Lit
}

// Activate allocates a fresh activator variable for an ASSERT batch,
// binding it via ¬a ∨ lᵢ binary clauses and returning it ready to be pushed
// as a one-shot assumption.
func Activate(s *sat.Solver, lits []sat.Lit) ActivatorBinding {
	v := s.NewVar()
	a := sat.MkLit(v, false)
	for _, l := range lits {
		s.AddClause([]sat.Lit{a.Neg(), l})
	}
	return ActivatorBinding{Activator: a, Literals: lits}
}

// Discharge permanently adds ¬a once an ASSERT batch's iteration has ended,
// so the activator cannot be reused in a later solve.
func Discharge(s *sat.Solver, b ActivatorBinding) {
	s.AddClause([]sat.Lit{b.Activator.Neg()})
}
