// Package sccp implements sparse conditional constant propagation over
// an SSA-form CFG, after Wegman and Zadeck. Two work lists cooperate:
// CFG edges discover executable code, SSA def–use edges re-examine
// instructions whose inputs lowered.
package sccp

import (
	"fmt"
	"sort"

	"github.com/chioni16/ssa/bril"
	"github.com/chioni16/ssa/cfg"
)

// Kind is the level of a lattice cell.
type Kind int8

const (
	// Top: not yet proven anything; optimistically assumed constant.
	Top Kind = iota
	// Constant: proven equal to one specific literal on every
	// executable path.
	Constant
	// Bottom: proven non-constant.
	Bottom
)

// Lattice is one cell of the flat constant lattice. Value is only
// meaningful for Constant cells.
type Lattice struct {
	Kind  Kind
	Value bril.Literal
}

func Const(v bril.Literal) Lattice { return Lattice{Kind: Constant, Value: v} }

func (l Lattice) Equal(o Lattice) bool {
	if l.Kind != o.Kind {
		return false
	}
	if l.Kind != Constant {
		return true
	}
	return l.Value.Equal(o.Value)
}

func (l Lattice) String() string {
	switch l.Kind {
	case Top:
		return "{Top}"
	case Bottom:
		return "{Bottom}"
	default:
		return fmt.Sprintf("{Const %s}", l.Value)
	}
}

// Meet combines two cells: Top is the identity, Bottom absorbs, and two
// constants agree or collapse to Bottom.
func Meet(a, b Lattice) Lattice {
	switch {
	case a.Kind == Top:
		return b
	case b.Kind == Top:
		return a
	case a.Kind == Constant && b.Kind == Constant && a.Value.Equal(b.Value):
		return a
	default:
		return Lattice{Kind: Bottom}
	}
}

// Edge is a CFG edge identified by its endpoint labels. Parallel edges
// between the same pair share one executability fact.
type Edge struct {
	From, To string
}

// Result is what the propagation proves: one cell per SSA name and the
// set of CFG edges that can be taken under some execution.
type Result struct {
	Lattices   map[string]Lattice
	Executable map[Edge]bool
}

// Lattice returns the cell for name, defaulting to Top for names never
// touched by propagation.
func (r *Result) Lattice(name string) Lattice {
	if l, ok := r.Lattices[name]; ok {
		return l
	}
	return Lattice{Kind: Top}
}

// String lists the lattice map and executable edges in sorted order.
func (r *Result) String() string {
	names := make([]string, 0, len(r.Lattices))
	for n := range r.Lattices {
		names = append(names, n)
	}
	sort.Strings(names)
	out := ""
	for _, n := range names {
		out += fmt.Sprintf("%s: %s\n", n, r.Lattices[n])
	}
	edges := make([]Edge, 0, len(r.Executable))
	for e := range r.Executable {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		out += fmt.Sprintf("%s -> %s executable\n", e.From, e.To)
	}
	return out
}

type engine struct {
	cfg  *cfg.Cfg
	ssa  *cfg.SSAGraph
	lat  map[string]Lattice
	exec map[Edge]bool
	// blocks whose non-φ instructions have been visited once
	visited map[string]bool

	cfgWork []Edge
	ssaWork []cfg.Site
}

// Run propagates constants over the SSA-form CFG. The CFG is not
// mutated; dead code is identified through the executable-edge set, not
// removed.
func Run(c *cfg.Cfg) *Result {
	e := &engine{
		cfg:     c,
		ssa:     c.SSAGraph(),
		lat:     make(map[string]Lattice),
		exec:    make(map[Edge]bool),
		visited: make(map[string]bool),
	}

	// The entry block executes unconditionally: treat it as entered
	// over a virtual edge so its instructions seed the propagation and
	// its terminator decides which successors become executable.
	e.enterBlock(c.Entry)

	for len(e.cfgWork) > 0 || len(e.ssaWork) > 0 {
		if len(e.cfgWork) > 0 {
			edge := e.cfgWork[0]
			e.cfgWork = e.cfgWork[1:]
			if e.exec[edge] {
				continue
			}
			e.exec[edge] = true
			for _, phi := range c.Blocks[edge.To].Phis() {
				e.visitPhi(edge.To, phi)
			}
			if !e.visited[edge.To] {
				e.enterBlock(edge.To)
			}
			continue
		}

		use := e.ssaWork[0]
		e.ssaWork = e.ssaWork[1:]
		inst := c.Blocks[use.Label].Insts[use.Index]
		if inst.IsPhi() {
			e.visitPhi(use.Label, inst)
		} else if e.executableBlock(use.Label) {
			e.visitInst(use.Label, inst)
		}
	}

	return &Result{Lattices: e.lat, Executable: e.exec}
}

// enterBlock runs every non-φ instruction of a block reached for the
// first time, then applies the single-successor rule.
func (e *engine) enterBlock(label string) {
	for _, inst := range e.cfg.Blocks[label].Insts {
		if !inst.IsPhi() {
			e.visitInst(label, inst)
		}
	}
	e.visited[label] = true
	if succs := e.cfg.Successors(label); len(succs) == 1 {
		e.enqueueEdge(Edge{From: label, To: succs[0]})
	}
}

// executableBlock reports whether control can reach the block at all.
func (e *engine) executableBlock(label string) bool {
	if label == e.cfg.Entry {
		return true
	}
	for _, p := range e.cfg.Predecessors(label) {
		if e.exec[Edge{From: p, To: label}] {
			return true
		}
	}
	return false
}

func (e *engine) enqueueEdge(edge Edge) {
	if !e.exec[edge] {
		e.cfgWork = append(e.cfgWork, edge)
	}
}

func (e *engine) lattice(name string) Lattice {
	if l, ok := e.lat[name]; ok {
		return l
	}
	return Lattice{Kind: Top}
}

// setLattice lowers a cell and wakes every use of the name.
func (e *engine) setLattice(name string, l Lattice) {
	if e.lattice(name).Equal(l) {
		return
	}
	e.lat[name] = l
	if def, ok := e.ssa.Defs[name]; ok {
		e.ssaWork = append(e.ssaWork, e.ssa.Uses[def]...)
	}
}

// visitPhi meets the operands flowing along executable predecessor
// edges; non-executable operands are ignored, keeping the result
// optimistic.
func (e *engine) visitPhi(label string, phi *bril.Instruction) {
	mv := Lattice{Kind: Top}
	for i, a := range phi.Args {
		if e.exec[Edge{From: phi.Labels[i], To: label}] {
			mv = Meet(mv, e.lattice(a))
		}
	}
	e.setLattice(phi.Dest, mv)
}

// visitInst applies the transfer function of one non-φ instruction.
func (e *engine) visitInst(label string, inst *bril.Instruction) {
	switch {
	case inst.IsConst():
		e.setLattice(inst.Dest, Const(*inst.Value))
	case inst.IsValue():
		args := make([]Lattice, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = e.lattice(a)
		}
		e.setLattice(inst.Dest, transfer(inst.Op, args))
	case inst.Op == bril.OpBr:
		cond := e.lattice(inst.Args[0])
		t := Edge{From: label, To: inst.Labels[0]}
		f := Edge{From: label, To: inst.Labels[1]}
		switch cond.Kind {
		case Constant:
			if cond.Value.Kind == bril.LitBool && cond.Value.Bool {
				e.enqueueEdge(t)
			} else {
				e.enqueueEdge(f)
			}
		case Bottom:
			e.enqueueEdge(t)
			e.enqueueEdge(f)
		case Top:
			// condition unknown so far; the SSA work list brings us
			// back when it lowers
		}
	}
	// jmp is handled by the single-successor rule; ret, print and other
	// effects touch no lattice cell
}

// transfer evaluates one value operation over lattice cells: Bottom
// absorbs, any Top input defers, and all-constant inputs fold.
func transfer(op string, args []Lattice) Lattice {
	for _, a := range args {
		if a.Kind == Bottom {
			return Lattice{Kind: Bottom}
		}
	}
	if op == bril.OpID && len(args) == 1 {
		return args[0]
	}
	lits := make([]bril.Literal, len(args))
	for i, a := range args {
		if a.Kind != Constant {
			return Lattice{Kind: Top}
		}
		lits[i] = a.Value
	}
	v, ok := fold(op, lits)
	if !ok {
		return Lattice{Kind: Bottom}
	}
	return Const(v)
}
