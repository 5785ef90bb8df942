package cfg

import (
	"fmt"
	"strings"

	"github.com/chioni16/ssa/bril"
)

// Definition is one (name, type) pair defined textually inside a block
// before SSA renaming.
type Definition struct {
	Name string
	Type bril.Type
}

// BasicBlock is a labeled straight-line instruction sequence. Node is
// the block's handle in the CFG graph and stays valid for the lifetime
// of the CFG, including across unreachable-block pruning.
type BasicBlock struct {
	Node        int64
	Label       string
	Insts       []*bril.Instruction
	Definitions []Definition
}

// HasDefinition reports whether the block textually defines def.
func (b *BasicBlock) HasDefinition(def Definition) bool {
	for _, d := range b.Definitions {
		if d == def {
			return true
		}
	}
	return false
}

// Phis returns the leading φ-instructions of the block.
func (b *BasicBlock) Phis() []*bril.Instruction {
	for i, inst := range b.Insts {
		if !inst.IsPhi() {
			return b.Insts[:i]
		}
	}
	return b.Insts
}

func (b *BasicBlock) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d):\n", b.Label, b.Node)
	for _, inst := range b.Insts {
		fmt.Fprintf(&sb, "\t%s\n", inst)
	}
	return sb.String()
}
