// Package metrics mirrors solver and optimization statistics into
// Prometheus collectors so a long-running engine process can be scraped
// the way the rest of this stack's services are.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xDarkicex/axiomsat/sat"
)

// Collectors bundles every gauge/counter this engine exposes.
type Collectors struct {
	Decisions      prometheus.Counter
	Propagations   prometheus.Counter
	Conflicts      prometheus.Counter
	Restarts       prometheus.Counter
	LearnedClauses prometheus.Counter
	DeletedClauses prometheus.Counter
	GlueClauses    prometheus.Counter

	LowerBound prometheus.Gauge
	UpperBound prometheus.Gauge
	CoresFound prometheus.Counter
}

// NewCollectors builds and registers every collector against reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Decisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "axiomsat", Name: "decisions_total", Help: "Branching decisions made by the CDCL core.",
		}),
		Propagations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "axiomsat", Name: "propagations_total", Help: "Unit propagations performed.",
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "axiomsat", Name: "conflicts_total", Help: "Conflicts analyzed.",
		}),
		Restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "axiomsat", Name: "restarts_total", Help: "Luby restarts taken.",
		}),
		LearnedClauses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "axiomsat", Name: "learned_clauses_total", Help: "Clauses learned via first-UIP analysis.",
		}),
		DeletedClauses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "axiomsat", Name: "deleted_clauses_total", Help: "Learned clauses discarded by reduceDB.",
		}),
		GlueClauses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "axiomsat", Name: "glue_clauses_total", Help: "Learned clauses with LBD<=2.",
		}),
		LowerBound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "axiomsat", Name: "optimization_lower_bound", Help: "Current LB of the active optimization level.",
		}),
		UpperBound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "axiomsat", Name: "optimization_upper_bound", Help: "Current UB of the active optimization level.",
		}),
		CoresFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "axiomsat", Name: "cores_found_total", Help: "UNSAT cores extracted by the core-guided loop.",
		}),
	}
	reg.MustRegister(
		c.Decisions, c.Propagations, c.Conflicts, c.Restarts,
		c.LearnedClauses, c.DeletedClauses, c.GlueClauses,
		c.LowerBound, c.UpperBound, c.CoresFound,
	)
	return c
}

// Observe copies a sat.SolverStatistics snapshot into the counters. Since
// Prometheus counters are monotonic and SolverStatistics is cumulative
// already, this adds the delta since the last observed snapshot.
func (c *Collectors) Observe(prev, cur sat.SolverStatistics) {
	c.Decisions.Add(float64(cur.Decisions - prev.Decisions))
	c.Propagations.Add(float64(cur.Propagations - prev.Propagations))
	c.Conflicts.Add(float64(cur.Conflicts - prev.Conflicts))
	c.Restarts.Add(float64(cur.Restarts - prev.Restarts))
	c.LearnedClauses.Add(float64(cur.LearnedClauses - prev.LearnedClauses))
	c.DeletedClauses.Add(float64(cur.DeletedClauses - prev.DeletedClauses))
	c.GlueClauses.Add(float64(cur.GlueClauses - prev.GlueClauses))
}

// ObserveBounds updates the LB/UB gauges for the active optimization level.
func (c *Collectors) ObserveBounds(lb, ub int64) {
	c.LowerBound.Set(float64(lb))
	if ub < 1<<62 {
		c.UpperBound.Set(float64(ub))
	}
}
