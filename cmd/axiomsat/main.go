// Command axiomsat is the CLI front-end for the core-guided Boolean
// reasoning engine: it parses a wire-format program, wires up the
// registered propagators, and drives either a plain SAT solve or one of
// the optimization modes, printing a DIMACS-style answer and exiting with
// the conventional 10/20/0 codes.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xDarkicex/axiomsat/cardinality"
	"github.com/xDarkicex/axiomsat/config"
	"github.com/xDarkicex/axiomsat/core"
	"github.com/xDarkicex/axiomsat/metrics"
	"github.com/xDarkicex/axiomsat/optimize"
	"github.com/xDarkicex/axiomsat/sat"
	"github.com/xDarkicex/axiomsat/unfounded"
	"github.com/xDarkicex/axiomsat/wire"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath     string
		topK        int
		mode        string
		metricsAddr string
	)

	log := logrus.WithField("run_id", uuid.NewString())

	var exitCode int
	root := &cobra.Command{
		Use:   "axiomsat [flags] input-file [n]",
		Short: "core-guided SAT/MaxSAT/ASP/Circumscription engine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					log.WithError(err).Error("configuration error")
					exitCode = 0
					return nil
				}
				cfg = loaded
			}
			if mode != "" {
				cfg.Mode = mode
			}
			if topK > 0 {
				cfg.TopK = topK
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				log.WithError(err).Error("configuration error")
				exitCode = 0
				return nil
			}

			f, err := os.Open(args[0])
			if err != nil {
				log.WithError(err).Error("cannot open input")
				exitCode = 0
				return nil
			}
			defer f.Close()

			prog, err := wire.Parse(f)
			if err != nil {
				log.WithError(err).Error("parse error")
				exitCode = 0
				return nil
			}

			exitCode = solveAndReport(cfg, prog, log)
			return nil
		},
	}
	root.Flags().StringVar(&cfgPath, "config", "", "path to a YAML engine configuration")
	root.Flags().IntVar(&topK, "top-k", 0, "emit up to k distinct optimal models")
	root.Flags().StringVar(&mode, "mode", "", "override the configured solving mode (maxsat|asp|circ)")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "listen address for a /metrics Prometheus endpoint (disabled if empty)")

	if err := root.Execute(); err != nil {
		return 0
	}
	return exitCode
}

func solveAndReport(cfg *config.Engine, prog *wire.Program, log *logrus.Entry) int {
	interrupt := core.NewAtomicFlag()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		interrupt.Set()
	}()

	s := sat.NewSolver()
	s.Log = log
	for i := 0; i < prog.NumVars; i++ {
		s.NewVar()
	}

	var collectors *metrics.Collectors
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collectors = metrics.NewCollectors(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	card := cardinality.New()
	s.AddPropagator(card)
	uf := unfounded.New()
	s.AddPropagator(uf)

	for _, c := range prog.Clauses {
		if !s.AddClause(c.Literals) {
			writeResult(prog, core.StatusUnsatisfiable, nil, 0, cfg)
			return core.StatusUnsatisfiable.ExitCode()
		}
	}
	for _, sd := range prog.Supports {
		uf.AddSupport(sd.Head, sd.Body, sd.Rec)
	}
	for _, wc := range prog.WeightCons {
		if !card.AddGE(s, wc.Lits, wc.Weights, wc.Bound) {
			writeResult(prog, core.StatusUnsatisfiable, nil, 0, cfg)
			return core.StatusUnsatisfiable.ExitCode()
		}
	}

	switch cfg.Mode {
	case "asp", "maxsat":
		return runOptimize(cfg, prog, s, card, interrupt, log, collectors)
	default:
		res := s.SolveBudget(nil, cfg.ConflictBudget, interrupt)
		if res.Unknown {
			writeResult(prog, core.StatusUnknown, nil, 0, cfg)
			return core.StatusUnknown.ExitCode()
		}
		if !res.Satisfiable {
			writeResult(prog, core.StatusUnsatisfiable, nil, 0, cfg)
			return core.StatusUnsatisfiable.ExitCode()
		}
		writeResult(prog, core.StatusSatisfiable, res.Model, 0, cfg)
		return core.StatusSatisfiable.ExitCode()
	}
}

func runOptimize(cfg *config.Engine, prog *wire.Program, s *sat.Solver, card *cardinality.Propagator, interrupt core.Interrupter, log *logrus.Entry, collectors *metrics.Collectors) int {
	eng := optimize.NewEngine(s, card)
	eng.SetLog(log)
	if collectors != nil {
		eng.SetMetrics(collectors)
	}
	for _, w := range prog.Weak {
		eng.AddSoft(w.Lit, w.Weight, w.Level)
	}

	if cfg.TopK > 1 {
		models := eng.EnumerateTopK(cfg.TopK, interrupt)
		for _, m := range models {
			writeResult(prog, core.StatusSatisfiable, m.Assignment, m.Cost, cfg)
		}
		fmt.Println("v")
		return core.StatusSatisfiable.ExitCode()
	}

	m, ok := eng.SolveMaxSAT(interrupt)
	if !ok {
		writeResult(prog, core.StatusUnsatisfiable, nil, 0, cfg)
		return core.StatusUnsatisfiable.ExitCode()
	}
	writeResult(prog, core.StatusSatisfiable, m.Assignment, m.Cost, cfg)
	fmt.Println("c OPTIMUM FOUND")
	return core.StatusSatisfiable.ExitCode()
}

func writeResult(prog *wire.Program, status core.Status, model []sat.LBool, cost int64, cfg *config.Engine) {
	switch status {
	case core.StatusUnknown:
		wire.WriteModelsUnknown(os.Stdout, wire.DefaultTemplate)
	case core.StatusUnsatisfiable:
		wire.WriteModelsNone(os.Stdout, wire.DefaultTemplate)
	default:
		wire.WriteStatus(os.Stdout, wire.DefaultTemplate, status)
	}
	if model != nil {
		displays := make(map[sat.Var]string, len(prog.Displays))
		for _, d := range prog.Displays {
			displays[d.Lit.Var()] = d.Text
		}
		wire.WriteModel(os.Stdout, wire.DefaultTemplate, model, displays)
		fmt.Println()
		if cost > 0 {
			wire.WriteCost(os.Stdout, wire.DefaultTemplate, cost)
		}
	}
}
