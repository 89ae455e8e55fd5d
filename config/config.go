// Package config holds the engine's explicit configuration record, the
// replacement for a global SAT option registry (§9 design notes): every
// tunable is a field here, loaded once at start-up by cmd/axiomsat, never
// read from ambient global state. cmd/axiomsat reads Mode, TopK,
// ConflictBudget and MetricsAddr; the other fields are loaded and validated
// but no package reads them.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xDarkicex/axiomsat/core"
)

// Engine is the top-level configuration record for one solving session.
type Engine struct {
	// RestartBase is a Luby restart base unit (conflicts). It is validated
	// but not passed to the solver, which always uses a base of 100.
	RestartBase int64 `yaml:"restart_base"`

	// MaxLearnedClauses is a learned-clause database limit for reduceDB. It
	// is validated but not passed to the solver, which always uses 4000.
	MaxLearnedClauses int `yaml:"max_learned_clauses"`

	// ConflictBudget bounds the conflicts of the plain SAT solve that
	// cmd/axiomsat runs outside the optimization modes; 0 means unbounded.
	// The optimization engine, core shrinking included, does not use it.
	ConflictBudget int64 `yaml:"conflict_budget"`

	// TopK is the number of distinct models top-k enumeration should emit;
	// 0 disables top-k mode.
	TopK int `yaml:"top_k"`

	// OutputTemplate names an output template. No package reads it; output
	// always uses wire.DefaultTemplate.
	OutputTemplate string `yaml:"output_template"`

	// Mode selects the solving mode: "maxsat", "asp", or "circ". In
	// cmd/axiomsat, "maxsat" and "asp" both run single-level (level 0)
	// core-guided MaxSAT, and "circ" runs a plain SAT solve.
	Mode string `yaml:"mode"`

	// Debug is loaded from the file but no package reads it; no propagator
	// contract-violation checks are implemented.
	Debug bool `yaml:"debug"`

	// MetricsAddr, if non-empty, is the listen address for a /metrics
	// Prometheus scrape endpoint exposing the core-guided loop's telemetry.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the reference configuration.
func Default() *Engine {
	return &Engine{
		RestartBase:       100,
		MaxLearnedClauses: 4000,
		ConflictBudget:    0,
		TopK:              0,
		OutputTemplate:    "default",
		Mode:              "maxsat",
	}
}

// Load reads a YAML configuration file, starting from Default and
// overlaying whatever fields the file sets.
func Load(path string) (*Engine, error) {
	e := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigError("config.Load", err.Error())
	}
	if err := yaml.Unmarshal(data, e); err != nil {
		return nil, core.NewConfigError("config.Load", err.Error())
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate rejects nonsensical configuration at startup, per the
// configuration-error kind in the error-handling design.
func (e *Engine) Validate() error {
	switch e.Mode {
	case "maxsat", "asp", "circ":
	default:
		return core.NewConfigError("config.Validate", "unknown mode: "+e.Mode)
	}
	if e.RestartBase <= 0 {
		return core.NewConfigError("config.Validate", "restart_base must be positive")
	}
	if e.MaxLearnedClauses <= 0 {
		return core.NewConfigError("config.Validate", "max_learned_clauses must be positive")
	}
	return nil
}
