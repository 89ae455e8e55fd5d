// Package sat implements the CDCL SAT core: a Glucose-style solver with
// unit propagation over watched literals, first-UIP clause learning, Luby
// restarts, and a registration point for external theory propagators. The
// core itself is treated as a reused back end -- the extension framework in
// this package (Propagator, the trail, reason discipline) is what the rest
// of the module builds on.
package sat

import (
	"fmt"
	"strings"
)

// Var is a nonnegative variable id. Variables grow monotonically; id 0 is
// valid (unlike the 1-based convention of the wire format, which is
// translated at the parser boundary).
type Var int32

// Lit packs a variable and a sign into a single comparable int, following
// the classic `2*var + sign` encoding: even literals are positive, odd
// literals are negated. This keeps watch-list indexing a plain slice lookup
// instead of a map keyed on a struct.
type Lit int32

// LitUndef is returned where no literal is available (e.g. a unit clause's
// watch2, or a not-yet-computed blocker).
const LitUndef Lit = -1

// MkLit builds the literal for variable v with the given sign (neg=true for
// the negated occurrence).
func MkLit(v Var, neg bool) Lit {
	if neg {
		return Lit(v<<1) | 1
	}
	return Lit(v << 1)
}

func (l Lit) Var() Var   { return Var(l >> 1) }
func (l Lit) Sign() bool { return l&1 == 1 }

// Neg returns ¬l.
func (l Lit) Neg() Lit { return l ^ 1 }

func (l Lit) String() string {
	if l == LitUndef {
		return "undef"
	}
	if l.Sign() {
		return fmt.Sprintf("-%d", l.Var())
	}
	return fmt.Sprintf("%d", l.Var())
}

// LBool is a tri-valued truth value: assignments on the trail are LTrue or
// LFalse; everything else reads as LUndef.
type LBool int8

const (
	LUndef LBool = 0
	LTrue  LBool = 1
	LFalse LBool = -1
)

func (b LBool) String() string {
	switch b {
	case LTrue:
		return "true"
	case LFalse:
		return "false"
	default:
		return "undef"
	}
}

// litValueOf resolves a literal's truth value under an LBool.
func litValueOf(varVal LBool, sign bool) LBool {
	if varVal == LUndef {
		return LUndef
	}
	if sign {
		return -varVal
	}
	return varVal
}

// Clause is a disjunction of literals. The first two literals are the
// watched pair; propagateClauses only ever swaps literals[0] with
// literals[1], or literals[1] with one of the remainder.
type Clause struct {
	Literals []Lit
	ID       int
	Learned  bool
	Activity float64
	LBD      int  // literal block distance, computed at learning time
	Glue     bool // LBD <= 2
	Tier     int  // 0=core (never deleted), 1=mid, 2=local; reduceDB treats tiers 1 and 2 alike
	deleted  bool
}

// NewClause creates a clause from literals, initializing LBD-derived fields.
func NewClause(lits ...Lit) *Clause {
	return &Clause{Literals: lits, Tier: 2}
}

// SetLBD sets LBD and the derived Glue/Tier classification.
func (c *Clause) SetLBD(lbd int) {
	c.LBD = lbd
	c.Glue = lbd <= 2
	switch {
	case lbd <= 2:
		c.Tier = 0
	case lbd <= 6:
		c.Tier = 1
	default:
		c.Tier = 2
	}
}

func (c *Clause) IsUnit() bool  { return len(c.Literals) == 1 }
func (c *Clause) IsEmpty() bool { return len(c.Literals) == 0 }

func (c *Clause) Contains(l Lit) bool {
	for _, x := range c.Literals {
		if x == l {
			return true
		}
	}
	return false
}

func (c *Clause) String() string {
	if len(c.Literals) == 0 {
		return "⊥"
	}
	parts := make([]string, len(c.Literals))
	for i, l := range c.Literals {
		parts[i] = l.String()
	}
	s := "(" + strings.Join(parts, " ∨ ") + ")"
	if c.Learned && c.LBD > 0 {
		s += fmt.Sprintf(" [LBD:%d,T:%d]", c.LBD, c.Tier)
	}
	return s
}

// SolverStatistics tracks solver performance metrics, mirrored into
// Prometheus gauges/counters by the metrics package.
type SolverStatistics struct {
	Decisions      int64
	Propagations   int64
	Conflicts      int64
	Restarts       int64
	LearnedClauses int64
	DeletedClauses int64
	TimeElapsedNS  int64

	GlueClauses int64
	AvgLBD      float64
}

func (s SolverStatistics) String() string {
	return fmt.Sprintf(
		"Decisions: %d, Propagations: %d, Conflicts: %d, Restarts: %d, Learned: %d, Glue: %d, AvgLBD: %.2f",
		s.Decisions, s.Propagations, s.Conflicts, s.Restarts, s.LearnedClauses, s.GlueClauses, s.AvgLBD,
	)
}

// Result is the outcome of one solve call.
type Result struct {
	Satisfiable bool
	Unknown     bool // conflict budget exceeded or interrupted
	Model       []LBool
	Conflict    []Lit // negations of the failed assumptions, for UNSAT-under-assumptions
	Statistics  SolverStatistics
	Error       error
}
