package cfg

import (
	"fmt"
	"sync"

	"github.com/chioni16/ssa/bril"
)

// labelSource hands out unique synthetic block labels. The process-wide
// source keeps labels unique across every function of a run; seeded
// private sources make tests deterministic.
type labelSource struct {
	mu sync.Mutex
	n  int
}

func (s *labelSource) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	label := fmt.Sprintf("_block%d", s.n)
	s.n++
	return label
}

var processLabels labelSource

// Builder translates a linear function body into a Cfg.
type Builder struct {
	cur    string
	labels *labelSource
}

// NewBuilder returns a builder drawing synthetic labels from the
// process-wide source.
func NewBuilder() *Builder {
	return &Builder{labels: &processLabels}
}

// NewSeededBuilder returns a builder with a private label counter
// starting at seed.
func NewSeededBuilder(seed int) *Builder {
	return &Builder{labels: &labelSource{n: seed}}
}

// Build partitions fn's body into basic blocks and records the control
// edges between them. Malformed input is rejected before any graph
// state is created.
func (b *Builder) Build(fn *bril.Function) (*Cfg, error) {
	if err := validate(fn); err != nil {
		return nil, err
	}

	c := newCfg()
	c.Name = fn.Name
	for _, a := range fn.Args {
		c.Args = append(c.Args, Definition{Name: a.Name, Type: a.Type})
	}

	codes := fn.Instrs
	i := 0
	entry := "entry"
	if len(codes) > 0 && codes[0].IsLabel() {
		entry = codes[0].Label
		i++
	}
	c.Entry = entry
	c.ensureBlock(entry)
	b.cur = entry

	for ; i < len(codes); i++ {
		code := codes[i]
		if inst := code.Inst; inst != nil {
			blk := c.Blocks[b.cur]
			blk.Insts = append(blk.Insts, inst.Clone())
			if inst.Dest != "" {
				blk.Definitions = append(blk.Definitions, Definition{Name: inst.Dest, Type: inst.Type})
			}
		}

		instFollows := i+1 < len(codes) && !codes[i+1].IsLabel()

		switch {
		case code.IsLabel():
			c.ensureBlock(code.Label)
			b.cur = code.Label
		case code.Inst.Op == bril.OpBr:
			c.addEdge(b.cur, code.Inst.Labels[0])
			c.addEdge(b.cur, code.Inst.Labels[1])
			if instFollows {
				b.startFreshBlock(c)
			}
		case code.Inst.Op == bril.OpJmp:
			c.addEdge(b.cur, code.Inst.Labels[0])
			if instFollows {
				b.startFreshBlock(c)
			}
		case code.Inst.Op == bril.OpRet:
			if instFollows {
				b.startFreshBlock(c)
			}
		}
	}

	return c, nil
}

// startFreshBlock opens an unnamed block after a terminator. No edge is
// recorded into it; if nothing ever jumps there, pruning removes it.
func (b *Builder) startFreshBlock(c *Cfg) {
	label := b.labels.next()
	c.ensureBlock(label)
	b.cur = label
}

// validate rejects terminators with the wrong label arity, φ-nodes in
// pre-SSA input, arguments naming nothing, and one name defined at two
// different types.
func validate(fn *bril.Function) error {
	defined := make(map[string]bril.Type)
	for _, a := range fn.Args {
		defined[a.Name] = a.Type
	}
	for _, code := range fn.Instrs {
		inst := code.Inst
		if inst == nil || inst.Dest == "" {
			continue
		}
		if t, ok := defined[inst.Dest]; ok && t != inst.Type {
			return fmt.Errorf("%w: %s defined as both %s and %s in @%s",
				bril.ErrMalformedIR, inst.Dest, t, inst.Type, fn.Name)
		}
		defined[inst.Dest] = inst.Type
	}

	for _, code := range fn.Instrs {
		inst := code.Inst
		if inst == nil {
			continue
		}
		switch inst.Op {
		case bril.OpPhi:
			return fmt.Errorf("%w: phi in non-SSA input of @%s", bril.ErrMalformedIR, fn.Name)
		case bril.OpBr:
			if len(inst.Labels) != 2 || len(inst.Args) != 1 {
				return fmt.Errorf("%w: br wants 1 arg and 2 labels, got %d and %d",
					bril.ErrMalformedIR, len(inst.Args), len(inst.Labels))
			}
		case bril.OpJmp:
			if len(inst.Labels) != 1 {
				return fmt.Errorf("%w: jmp wants 1 label, got %d", bril.ErrMalformedIR, len(inst.Labels))
			}
		}
		for _, a := range inst.Args {
			if _, ok := defined[a]; !ok {
				return fmt.Errorf("%w: %s uses undefined name %s", bril.ErrMalformedIR, inst.Op, a)
			}
		}
	}
	return nil
}
