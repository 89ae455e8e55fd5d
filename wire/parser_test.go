package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xDarkicex/axiomsat/core"
	"github.com/xDarkicex/axiomsat/sat"
)

func TestParseTrivialSAT(t *testing.T) {
	input := "p cnf 2 2\n1 2 0\n-1 -2 0\n"
	prog, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if prog.ProblemID != core.ProblemCNF {
		t.Fatalf("expected cnf problem id")
	}
	if len(prog.Clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(prog.Clauses))
	}
	if len(prog.Clauses[0].Literals) != 2 {
		t.Fatalf("expected 2 literals in first clause")
	}
}

func TestParseWCNFWeightedClause(t *testing.T) {
	input := "p wcnf 3 4 10\n10 1 2 3 0\n1 -1 0\n1 -2 0\n1 -3 0\n"
	prog, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if prog.Top != 10 {
		t.Fatalf("expected top=10, got %d", prog.Top)
	}
	if len(prog.Clauses) != 4 {
		t.Fatalf("expected 4 clauses, got %d", len(prog.Clauses))
	}
	if prog.Clauses[0].Weight != 10 {
		t.Fatalf("expected hard clause weight 10")
	}
}

func TestParseSupportDirective(t *testing.T) {
	input := "p asp 3 0\ns 1 3 2 0\n"
	prog, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(prog.Supports) != 1 {
		t.Fatalf("expected 1 support decl")
	}
	if prog.Supports[0].Head != 0 {
		t.Fatalf("expected head var 0 (1-based lit 1)")
	}
}

func TestWriteModelSignedLiterals(t *testing.T) {
	var buf bytes.Buffer
	model := []sat.LBool{sat.LTrue, sat.LFalse}
	WriteModel(&buf, DefaultTemplate, model, nil)
	out := buf.String()
	if !strings.Contains(out, "1 ") || !strings.Contains(out, "-2 ") {
		t.Fatalf("expected model line with 1 and -2, got %q", out)
	}
}
