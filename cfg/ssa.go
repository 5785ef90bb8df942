package cfg

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/chioni16/ssa/bril"
)

// ssaName joins a base name and version with the "." delimiter, which
// cannot occur in source names.
func ssaName(base string, version int) string {
	return base + "." + strconv.Itoa(version)
}

// baseName recovers the pre-SSA name: the prefix before the first ".".
func baseName(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// ToSSA rewrites the CFG into SSA form: unreachable blocks are pruned,
// φ-nodes are inserted on dominance frontiers, and every name is split
// into dominator-scoped versions. On error the CFG is no longer valid.
func (c *Cfg) ToSSA() error {
	c.RemoveUnreachable()
	idoms, err := c.Idoms()
	if err != nil {
		return err
	}
	c.insertPhis(c.frontiers(idoms))
	c.rename(idoms)
	return nil
}

// insertPhis places one empty φ per definition on every block of the
// definition's iterated dominance frontier. Args and labels stay empty
// until renaming fills them per predecessor.
func (c *Cfg) insertPhis(df map[string]map[string]bool) {
	type defSites struct {
		def    Definition
		blocks map[string]bool
	}
	var defs []defSites
	index := make(map[Definition]int)
	for _, b := range c.blocksInOrder() {
		for _, d := range b.Definitions {
			i, ok := index[d]
			if !ok {
				i = len(defs)
				index[d] = i
				defs = append(defs, defSites{def: d, blocks: make(map[string]bool)})
			}
			defs[i].blocks[b.Label] = true
		}
	}

	for _, ds := range defs {
		worklist := maps.Keys(ds.blocks)
		sort.Strings(worklist)
		placed := make(map[string]bool)
		for len(worklist) > 0 {
			b := worklist[0]
			worklist = worklist[1:]
			targets := maps.Keys(df[b])
			sort.Strings(targets)
			for _, f := range targets {
				if placed[f] {
					continue
				}
				phi := &bril.Instruction{Op: bril.OpPhi, Dest: ds.def.Name, Type: ds.def.Type}
				blk := c.Blocks[f]
				blk.Insts = append([]*bril.Instruction{phi}, blk.Insts...)
				placed[f] = true
				if !ds.blocks[f] {
					worklist = append(worklist, f)
				}
			}
		}
	}
}

// rename walks the dominator tree, maintaining one version stack per
// base name. Versions are drawn from a per-name monotonic counter so a
// destination name is never reused across sibling subtrees; the stacks
// only scope which version is visible.
func (c *Cfg) rename(idoms map[string]string) {
	tree := DomTree(idoms)

	stacks := make(map[string][]int)
	counters := make(map[string]int)
	for _, a := range c.Args {
		stacks[a.Name] = []int{0}
	}
	for _, b := range c.Blocks {
		for _, d := range b.Definitions {
			if _, ok := stacks[d.Name]; !ok {
				stacks[d.Name] = []int{0}
			}
		}
	}

	top := func(base string) int {
		st := stacks[base]
		if len(st) == 0 {
			return 0
		}
		return st[len(st)-1]
	}

	var visit func(label string)
	visit = func(label string) {
		heights := make(map[string]int, len(stacks))
		for name, st := range stacks {
			heights[name] = len(st)
		}

		blk := c.Blocks[label]
		for _, inst := range blk.Insts {
			if !inst.IsPhi() {
				for i, a := range inst.Args {
					inst.Args[i] = ssaName(a, top(a))
				}
			}
			if inst.Dest != "" {
				base := baseName(inst.Dest)
				counters[base]++
				v := counters[base]
				stacks[base] = append(stacks[base], v)
				inst.Dest = ssaName(base, v)
			}
		}

		for _, s := range c.Successors(label) {
			for _, phi := range c.Blocks[s].Phis() {
				base := baseName(phi.Dest)
				phi.Args = append(phi.Args, ssaName(base, top(base)))
				phi.Labels = append(phi.Labels, label)
			}
		}

		for _, child := range tree[label] {
			visit(child)
		}

		for name, h := range heights {
			stacks[name] = stacks[name][:h]
		}
	}
	visit(c.Entry)
}
