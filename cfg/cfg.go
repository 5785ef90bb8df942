// Package cfg builds and transforms control-flow graphs over bril
// function bodies: basic-block partitioning, reachability pruning,
// dominance analysis, SSA construction and the SSA def–use graph.
package cfg

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/traverse"
)

// blockNode is the graph payload: a stable id plus the block label it
// denotes. The label doubles as the DOT identifier when rendering.
type blockNode struct {
	id    int64
	label string
}

func (n blockNode) ID() int64     { return n.id }
func (n blockNode) DOTID() string { return n.label }

// Cfg is a labeled directed multigraph of basic blocks with a
// designated entry label. Parallel edges are permitted (a branch with
// two identical targets produces two lines).
type Cfg struct {
	Name  string
	Args  []Definition
	Entry string

	Blocks map[string]*BasicBlock
	graph  *multi.DirectedGraph
	labels map[int64]string
}

func newCfg() *Cfg {
	return &Cfg{
		Blocks: make(map[string]*BasicBlock),
		graph:  multi.NewDirectedGraph(),
		labels: make(map[int64]string),
	}
}

// ensureBlock returns the block for label, creating the block and its
// graph node if absent. Blocks may be created lazily for branch targets
// that appear before their label.
func (c *Cfg) ensureBlock(label string) *BasicBlock {
	if b, ok := c.Blocks[label]; ok {
		return b
	}
	n := c.graph.NewNode()
	c.graph.AddNode(blockNode{id: n.ID(), label: label})
	b := &BasicBlock{Node: n.ID(), Label: label}
	c.Blocks[label] = b
	c.labels[n.ID()] = label
	return b
}

// addEdge records a control transfer from one labeled block to another,
// creating the destination block if needed.
func (c *Cfg) addEdge(from, to string) {
	src := c.Blocks[from]
	dst := c.ensureBlock(to)
	l := c.graph.NewLine(c.graph.Node(src.Node), c.graph.Node(dst.Node))
	c.graph.SetLine(l)
}

// Successors returns the labels this block transfers control to, one
// entry per edge, in node-creation order. Parallel edges repeat their
// label.
func (c *Cfg) Successors(label string) []string {
	return c.neighbors(label, true)
}

// Predecessors returns the labels that transfer control into this
// block, one entry per edge, in node-creation order.
func (c *Cfg) Predecessors(label string) []string {
	return c.neighbors(label, false)
}

func (c *Cfg) neighbors(label string, out bool) []string {
	b, ok := c.Blocks[label]
	if !ok {
		return nil
	}
	var it graph.Nodes
	if out {
		it = c.graph.From(b.Node)
	} else {
		it = c.graph.To(b.Node)
	}
	ns := graph.NodesOf(it)
	sort.Slice(ns, func(i, j int) bool { return ns[i].ID() < ns[j].ID() })
	var labels []string
	for _, n := range ns {
		var lines graph.Lines
		if out {
			lines = c.graph.Lines(b.Node, n.ID())
		} else {
			lines = c.graph.Lines(n.ID(), b.Node)
		}
		for i := 0; i < lines.Len(); i++ {
			labels = append(labels, c.labels[n.ID()])
		}
	}
	return labels
}

// reachable returns the labels reachable from the entry block.
func (c *Cfg) reachable() map[string]bool {
	seen := make(map[string]bool)
	entry, ok := c.Blocks[c.Entry]
	if !ok {
		return seen
	}
	dfs := traverse.DepthFirst{
		Visit: func(n graph.Node) { seen[c.labels[n.ID()]] = true },
	}
	dfs.Walk(c.graph, c.graph.Node(entry.Node), nil)
	return seen
}

// RemoveUnreachable drops every block the entry cannot reach, from both
// the graph and the block map. Running it twice is a no-op.
func (c *Cfg) RemoveUnreachable() {
	seen := c.reachable()
	for label, b := range c.Blocks {
		if seen[label] {
			continue
		}
		c.graph.RemoveNode(b.Node)
		delete(c.labels, b.Node)
		delete(c.Blocks, label)
	}
}

// blocksInOrder returns the blocks sorted by node id, which is creation
// order: a block is created at its label or at the first branch or jump
// that names it, whichever comes first in the text.
func (c *Cfg) blocksInOrder() []*BasicBlock {
	bs := maps.Values(c.Blocks)
	sort.Slice(bs, func(i, j int) bool { return bs[i].Node < bs[j].Node })
	return bs
}

// String dumps every block followed by an adjacency listing, the same
// shape the upstream tooling expects to diff against.
func (c *Cfg) String() string {
	var sb strings.Builder
	for _, b := range c.blocksInOrder() {
		sb.WriteString(b.String())
	}
	for _, b := range c.blocksInOrder() {
		fmt.Fprintf(&sb, "%s -> %q\n", b.Label, c.Successors(b.Label))
	}
	return sb.String()
}
