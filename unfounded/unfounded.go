// Package unfounded implements the source-pointer propagator for ASP
// unfoundedness: every recursive head atom assigned true must carry a
// sound, non-recursive support chain, or its negation is inferred.
package unfounded

import (
	"github.com/xDarkicex/axiomsat/sat"
)

// support is one (body, rec) pair: body is the representative literal of
// a rule body, rec the recursive head atoms that body's derivation
// depends on.
type support struct {
	body sat.Lit
	rec  []sat.Var
}

// atom is one recursive head atom's source-pointer bookkeeping.
type atom struct {
	v        sat.Var
	supports []support
	sp       int // index into supports, or -1 for ⊥
	flagged  bool
	uac      uint32
}

const uacMax = 1<<24 - 1

// Propagator implements sat.Propagator for the source-pointer forest. It
// opts out of on-unassign notifications: after a backjump it reinitializes
// lazily on the next propagate pass instead of undoing incrementally.
type Propagator struct {
	atoms     map[sat.Var]*atom
	backIndex map[sat.Var][]backRef // recursive atom x -> (head, support index)
	uacCounter uint32

	flaggedQueue []sat.Var
	conflict     []sat.Lit
	reasons      map[sat.Lit][]sat.Lit
}

type backRef struct {
	head sat.Var
	slot int
}

func New() *Propagator {
	return &Propagator{
		atoms:     make(map[sat.Var]*atom),
		backIndex: make(map[sat.Var][]backRef),
		reasons:   make(map[sat.Lit][]sat.Lit),
	}
}

func (p *Propagator) Name() string { return "source-pointer" }

func (p *Propagator) OnNewVariable() {}

// AddSupport registers one support `(body, rec)` for head atom a, per the
// `s <head> <body> <rec…> 0` wire directive.
func (p *Propagator) AddSupport(a sat.Var, body sat.Lit, rec []sat.Var) {
	at, ok := p.atoms[a]
	if !ok {
		at = &atom{v: a, sp: -1}
		p.atoms[a] = at
	}
	slot := len(at.supports)
	at.supports = append(at.supports, support{body: body, rec: rec})
	for _, x := range rec {
		p.backIndex[x] = append(p.backIndex[x], backRef{head: a, slot: slot})
	}
}

func (p *Propagator) Activate(s *sat.Solver) bool { return true }

func (p *Propagator) Simplify(s *sat.Solver) bool { return p.run(s, true) }

func (p *Propagator) Propagate(s *sat.Solver) bool { return p.run(s, false) }

// run finds every body literal falsified since the last call, cascades
// source loss through the back-index, attempts to rebuild sources, and
// reports conflicts/unit inferences for atoms still unfounded afterward.
func (p *Propagator) run(s *sat.Solver, level0 bool) bool {
	p.uacCounter++
	if p.uacCounter >= uacMax {
		p.uacCounter = 0
		for _, at := range p.atoms {
			at.uac = 0
			at.flagged = false
		}
	}

	p.flaggedQueue = p.flaggedQueue[:0]
	seen := make(map[sat.Var]bool)

	for v, at := range p.atoms {
		if at.sp < 0 {
			if !seen[v] {
				seen[v] = true
				at.flagged = true
				p.flaggedQueue = append(p.flaggedQueue, v)
			}
			continue
		}
		if s.LitValue(at.supports[at.sp].body) == sat.LFalse {
			p.cascade(v, seen)
		}
	}

	for _, v := range p.flaggedQueue {
		p.tryRebuild(s, v, seen)
	}

	// First pass: settle every flagged atom that is not already true, in
	// queue order, so later atoms in the same set can cite an earlier
	// one's now-false literal as an antecedent.
	for _, v := range p.flaggedQueue {
		at := p.atoms[v]
		if !at.flagged || s.LitValue(sat.MkLit(v, false)) == sat.LTrue {
			continue
		}
		at.uac = p.uacCounter
		neg := sat.MkLit(v, true)
		if s.LitValue(neg) != sat.LUndef {
			continue
		}
		clause := append([]sat.Lit{neg}, p.antecedents(s, at)...)
		if level0 {
			if !s.AddClause([]sat.Lit{neg}) {
				return false
			}
		} else {
			p.reasons[neg] = clause
			s.EnqueueTheory(p, neg)
		}
	}

	// Second pass: any flagged atom that was already assigned true is a
	// conflict, now explainable against the negations just settled above.
	for _, v := range p.flaggedQueue {
		at := p.atoms[v]
		lit := sat.MkLit(v, false)
		if !at.flagged || s.LitValue(lit) != sat.LTrue {
			continue
		}
		at.uac = p.uacCounter
		p.conflict = append([]sat.Lit{lit.Neg()}, p.antecedents(s, at)...)
		return false
	}
	return true
}

// cascade marks v and, via the back-index, every atom whose chosen support
// depended on v, as flagged -- a DFS from the first atom that lost its
// source.
func (p *Propagator) cascade(v sat.Var, seen map[sat.Var]bool) {
	if seen[v] {
		return
	}
	seen[v] = true
	at := p.atoms[v]
	at.flagged = true
	at.sp = -1
	p.flaggedQueue = append(p.flaggedQueue, v)
	for _, br := range p.backIndex[v] {
		headAt := p.atoms[br.head]
		if headAt.sp == br.slot {
			p.cascade(br.head, seen)
		}
	}
}

// tryRebuild scans a's support set for one whose body is not falsified and
// whose recursive dependencies are not themselves currently flagged.
func (p *Propagator) tryRebuild(s *sat.Solver, v sat.Var, seen map[sat.Var]bool) {
	at := p.atoms[v]
	if !at.flagged {
		return
	}
	for i, sup := range at.supports {
		if s.LitValue(sup.body) == sat.LFalse {
			continue
		}
		usable := true
		for _, x := range sup.rec {
			if p.atoms[x] != nil && p.atoms[x].flagged {
				usable = false
				break
			}
		}
		if !usable {
			continue
		}
		at.sp = i
		at.flagged = false
		for _, br := range p.backIndex[v] {
			if p.atoms[br.head].flagged {
				p.tryRebuild(s, br.head, seen)
			}
		}
		return
	}
}

// antecedents explains a's unfoundedness: for each support, a falsified
// body or an equal-or-older unfounded rec member. The traversal terminates
// because uac is nondecreasing along the chain.
func (p *Propagator) antecedents(s *sat.Solver, at *atom) []sat.Lit {
	var out []sat.Lit
	for _, sup := range at.supports {
		if s.LitValue(sup.body) == sat.LFalse {
			out = append(out, sup.body)
			continue
		}
		for _, x := range sup.rec {
			if s.LitValue(sat.MkLit(x, false)) == sat.LFalse {
				out = append(out, sat.MkLit(x, false))
				break
			}
		}
	}
	return out
}

func (p *Propagator) GetReason(l sat.Lit, out *[]sat.Lit) { *out = p.reasons[l] }

func (p *Propagator) GetConflict(out *[]sat.Lit) { *out = p.conflict }

func (p *Propagator) OnUnassign(l sat.Lit) {}

// WantsUnassign is false: the source-pointer propagator reinitializes
// lazily from the trail rather than undoing incrementally (§4.3).
func (p *Propagator) WantsUnassign() bool { return false }
