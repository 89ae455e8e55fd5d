// Package optimize implements the core-guided optimization engine: OLL-style
// stratified MaxSAT, ASP multi-level optimization, Circumscription, and top-k
// model enumeration, all driven by repeated sat.Solver.SolveBudget calls
// under evolving assumption sets.
package optimize

import (
	"github.com/sirupsen/logrus"

	"github.com/xDarkicex/axiomsat/cardinality"
	"github.com/xDarkicex/axiomsat/metrics"
	"github.com/xDarkicex/axiomsat/sat"
)

// SoftLiteral is a weak literal: falsifying it costs Weight at
// optimization Level (ASP lexicographic layer; MaxSAT uses a single level).
type SoftLiteral struct {
	Lit    sat.Lit
	Weight int64
	Level  int
}

// Model is one solution snapshot copied out of the solver before the next
// solve call invalidates its internal model vector.
type Model struct {
	Assignment []sat.LBool
	Cost       int64
}

// Engine drives the core-guided loop over one sat.Solver plus its
// cardinality propagator (used to encode k-dyn reformulated cores).
type Engine struct {
	Solver *sat.Solver
	Card   *cardinality.Propagator

	// Metrics, if set via SetMetrics, receives an Observe/ObserveBounds call
	// after every solveLevel iteration. Nil disables telemetry entirely.
	Metrics *metrics.Collectors

	// Log, if set via SetLog, receives a Debug event for every core
	// discharged by the core-guided loop. Nil keeps the engine silent.
	Log *logrus.Entry

	LB, UB int64

	soft []SoftLiteral

	bestModel *Model

	relaxSeq int

	prevStats sat.SolverStatistics
}

func NewEngine(s *sat.Solver, card *cardinality.Propagator) *Engine {
	return &Engine{Solver: s, Card: card, UB: 1<<62 - 1}
}

// SetMetrics wires a Prometheus collector bundle into the core-guided loop.
func (e *Engine) SetMetrics(c *metrics.Collectors) { e.Metrics = c }

// SetLog wires a correlated logger into the core-guided loop.
func (e *Engine) SetLog(log *logrus.Entry) { e.Log = log }

// debug logs a core-discharge event, a no-op when no Log has been wired in.
func (e *Engine) debug(fields logrus.Fields, msg string) {
	if e.Log == nil {
		return
	}
	e.Log.WithFields(fields).Debug(msg)
}

// AddSoft registers a weak literal for MaxSAT/ASP optimization.
func (e *Engine) AddSoft(l sat.Lit, weight int64, level int) {
	e.soft = append(e.soft, SoftLiteral{Lit: l, Weight: weight, Level: level})
}
