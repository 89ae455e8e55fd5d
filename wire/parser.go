// Package wire reads and writes the line-oriented, gzip-compatible textual
// format described in the external-interfaces design: a DIMACS-style
// prolog line, clause lines, and a battery of key-prefixed directive lines
// for weak/weight/source/group/query/display declarations.
package wire

import (
	"bufio"
	"compress/gzip"
	"io"
	"strconv"
	"strings"

	"github.com/xDarkicex/axiomsat/core"
	"github.com/xDarkicex/axiomsat/sat"
)

// Clause is a plain clause line.
type Clause struct {
	Literals []sat.Lit
	Weight   int64 // wcnf only; 0 when not applicable
}

// WeakDecl is a `w <lit> <weight> <level>` directive.
type WeakDecl struct {
	Lit    sat.Lit
	Weight int64
	Level  int
}

// SupportDecl is an `s <head> <body> <rec…> 0` directive.
type SupportDecl struct {
	Head sat.Var
	Body sat.Lit
	Rec  []sat.Var
}

// WeightConstraintDecl is an `a <lits…0> <weights…> <bound>` directive.
type WeightConstraintDecl struct {
	Lits    []sat.Lit
	Weights []int64
	Bound   int64
}

// HCCDecl is an `h <id> <rec_heads…0> <non_rec_lits…0> <rec_bodies…0>`
// head-cycle-component declaration.
type HCCDecl struct {
	ID          int
	RecHeads    []sat.Var
	NonRecLits  []sat.Lit
	RecBodies   []sat.Lit
}

// Display is a `v <lit> <text…>` mapping, used only for output.
type Display struct {
	Lit  sat.Lit
	Text string
}

// Program is the fully parsed wire-format input.
type Program struct {
	ProblemID core.ProblemID
	NumVars   int
	Top       int64 // wcnf hard-clause weight threshold

	Clauses     []Clause
	Weak        []WeakDecl
	Supports    []SupportDecl
	WeightCons  []WeightConstraintDecl
	HCCs        []HCCDecl
	Groups      []sat.Lit
	Query       sat.Lit
	HasQuery    bool
	Displays    []Display
}

// Open wraps r with transparent gzip decompression if the stream starts
// with the gzip magic bytes, matching the "gzip-compatible" requirement
// without requiring callers to know the input's compression up front.
func Open(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, gzErr := gzip.NewReader(br)
		if gzErr != nil {
			return nil, core.NewParseError("wire.Open", gzErr.Error(), 0, 0)
		}
		return gz, nil
	}
	return br, nil
}

// Parse reads one wire-format program from r.
func Parse(r io.Reader) (*Program, error) {
	reader, err := Open(r)
	if err != nil {
		return nil, err
	}
	p := &Program{}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == 'c' {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "p":
			if err := p.parseProlog(fields, line); err != nil {
				return nil, err
			}
		case "w":
			if err := p.parseWeak(fields, line); err != nil {
				return nil, err
			}
		case "a":
			if err := p.parseWeightCons(fields, line); err != nil {
				return nil, err
			}
		case "s":
			if err := p.parseSupport(fields, line); err != nil {
				return nil, err
			}
		case "h":
			if err := p.parseHCC(fields, line); err != nil {
				return nil, err
			}
		case "g":
			l, err := parseLit(fields[1], line)
			if err != nil {
				return nil, err
			}
			p.Groups = append(p.Groups, l)
		case "q":
			l, err := parseLit(fields[1], line)
			if err != nil {
				return nil, err
			}
			p.Query, p.HasQuery = l, true
		case "n":
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, core.NewParseError("wire.Parse", "malformed n directive", line, 0)
			}
			p.NumVars = n
		case "v":
			l, err := parseLit(fields[1], line)
			if err != nil {
				return nil, err
			}
			p.Displays = append(p.Displays, Display{Lit: l, Text: strings.Join(fields[2:], " ")})
		default:
			if err := p.parseClauseLine(fields, line); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, core.NewParseError("wire.Parse", err.Error(), line, 0)
	}
	return p, nil
}

func (p *Program) parseProlog(fields []string, line int) error {
	if len(fields) < 2 {
		return core.NewParseError("wire.parseProlog", "missing problem id", line, 0)
	}
	id, err := core.ParseProblemID(fields[1])
	if err != nil {
		return core.NewParseError("wire.parseProlog", err.Error(), line, 1)
	}
	p.ProblemID = id
	if id == core.ProblemWCNF && len(fields) >= 5 {
		top, _ := strconv.ParseInt(fields[4], 10, 64)
		p.Top = top
	}
	return nil
}

func (p *Program) parseClauseLine(fields []string, line int) error {
	var weight int64
	idx := 0
	if p.ProblemID == core.ProblemWCNF {
		w, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return core.NewParseError("wire.parseClauseLine", "expected leading weight", line, 0)
		}
		weight = w
		idx = 1
	}
	var lits []sat.Lit
	for ; idx < len(fields); idx++ {
		n, err := strconv.Atoi(fields[idx])
		if err != nil {
			return core.NewParseError("wire.parseClauseLine", "malformed literal", line, idx)
		}
		if n == 0 {
			break
		}
		lits = append(lits, intToLit(n))
	}
	p.Clauses = append(p.Clauses, Clause{Literals: lits, Weight: weight})
	return nil
}

func (p *Program) parseWeak(fields []string, line int) error {
	if len(fields) < 4 {
		return core.NewParseError("wire.parseWeak", "expected lit weight level", line, 0)
	}
	l, err := parseLit(fields[1], line)
	if err != nil {
		return err
	}
	w, _ := strconv.ParseInt(fields[2], 10, 64)
	lvl, _ := strconv.Atoi(fields[3])
	p.Weak = append(p.Weak, WeakDecl{Lit: l, Weight: w, Level: lvl})
	return nil
}

func (p *Program) parseWeightCons(fields []string, line int) error {
	idx := 1
	var lits []sat.Lit
	for ; idx < len(fields); idx++ {
		n, err := strconv.Atoi(fields[idx])
		if err != nil {
			return core.NewParseError("wire.parseWeightCons", "malformed literal", line, idx)
		}
		if n == 0 {
			idx++
			break
		}
		lits = append(lits, intToLit(n))
	}
	weights := make([]int64, 0, len(lits))
	for i := 0; i < len(lits) && idx < len(fields); i, idx = i+1, idx+1 {
		w, err := strconv.ParseInt(fields[idx], 10, 64)
		if err != nil {
			return core.NewParseError("wire.parseWeightCons", "malformed weight", line, idx)
		}
		weights = append(weights, w)
	}
	var bound int64
	if idx < len(fields) {
		b, err := strconv.ParseInt(fields[idx], 10, 64)
		if err != nil {
			return core.NewParseError("wire.parseWeightCons", "malformed bound", line, idx)
		}
		bound = b
	}
	p.WeightCons = append(p.WeightCons, WeightConstraintDecl{Lits: lits, Weights: weights, Bound: bound})
	return nil
}

func (p *Program) parseSupport(fields []string, line int) error {
	if len(fields) < 3 {
		return core.NewParseError("wire.parseSupport", "expected head body rec… 0", line, 0)
	}
	headN, err := strconv.Atoi(fields[1])
	if err != nil {
		return core.NewParseError("wire.parseSupport", "malformed head", line, 1)
	}
	bodyLit, err := parseLit(fields[2], line)
	if err != nil {
		return err
	}
	var rec []sat.Var
	for i := 3; i < len(fields); i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return core.NewParseError("wire.parseSupport", "malformed rec literal", line, i)
		}
		if n == 0 {
			break
		}
		rec = append(rec, sat.Var(abs(n)-1))
	}
	p.Supports = append(p.Supports, SupportDecl{Head: sat.Var(abs(headN) - 1), Body: bodyLit, Rec: rec})
	return nil
}

func (p *Program) parseHCC(fields []string, line int) error {
	if len(fields) < 2 {
		return core.NewParseError("wire.parseHCC", "expected id rec_heads… 0 non_rec… 0 rec_bodies… 0", line, 0)
	}
	id, _ := strconv.Atoi(fields[1])
	decl := HCCDecl{ID: id}
	idx := 2
	idx = readVarsUntilZero(fields, idx, &decl.RecHeads)
	idx = readLitsUntilZero(fields, idx, &decl.NonRecLits)
	readLitsUntilZero(fields, idx, &decl.RecBodies)
	p.HCCs = append(p.HCCs, decl)
	return nil
}

func readVarsUntilZero(fields []string, idx int, out *[]sat.Var) int {
	for ; idx < len(fields); idx++ {
		n, err := strconv.Atoi(fields[idx])
		if err != nil || n == 0 {
			return idx + 1
		}
		*out = append(*out, sat.Var(abs(n)-1))
	}
	return idx
}

func readLitsUntilZero(fields []string, idx int, out *[]sat.Lit) int {
	for ; idx < len(fields); idx++ {
		n, err := strconv.Atoi(fields[idx])
		if err != nil || n == 0 {
			return idx + 1
		}
		*out = append(*out, intToLit(n))
	}
	return idx
}

func parseLit(field string, line int) (sat.Lit, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return sat.LitUndef, core.NewParseError("wire.parseLit", "malformed literal", line, 0)
	}
	return intToLit(n), nil
}

// intToLit translates the wire format's 1-based signed-integer literal
// convention into the solver's 0-based Var/Lit encoding.
func intToLit(n int) sat.Lit {
	if n < 0 {
		return sat.MkLit(sat.Var(-n-1), true)
	}
	return sat.MkLit(sat.Var(n-1), false)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
