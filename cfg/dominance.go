package cfg

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
)

// ErrInternalInvariant marks programmer errors: dominance over a
// non-pruned CFG, SSA operations on a non-SSA CFG.
var ErrInternalInvariant = errors.New("internal invariant violated")

// requirePruned guards the dominance entry points: idoms are only
// defined over reachable nodes.
func (c *Cfg) requirePruned() error {
	if len(c.reachable()) != len(c.Blocks) {
		return fmt.Errorf("%w: dominance requires unreachable blocks to be pruned first", ErrInternalInvariant)
	}
	return nil
}

// Idoms computes the immediate dominator of every block except the
// entry, which has none, by iterating full dominator sets to a fixpoint
// and then peeling the strict sets from the entry outward. Quadratic in
// the number of blocks, which is fine at function scale.
func (c *Cfg) Idoms() (map[string]string, error) {
	if err := c.requirePruned(); err != nil {
		return nil, err
	}

	all := make(map[string]bool, len(c.Blocks))
	for label := range c.Blocks {
		all[label] = true
	}

	dom := make(map[string]map[string]bool, len(c.Blocks))
	for label := range c.Blocks {
		if label == c.Entry {
			dom[label] = map[string]bool{label: true}
		} else {
			dom[label] = maps.Clone(all)
		}
	}

	var queue []string
	for _, b := range c.blocksInOrder() {
		queue = append(queue, b.Label)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == c.Entry {
			continue
		}

		next := map[string]bool{n: true}
		first := true
		for _, p := range c.Predecessors(n) {
			if first {
				for d := range dom[p] {
					next[d] = true
				}
				first = false
				continue
			}
			for d := range next {
				if d != n && !dom[p][d] {
					delete(next, d)
				}
			}
		}

		if !maps.Equal(next, dom[n]) {
			dom[n] = next
			queue = append(queue, c.Successors(n)...)
		}
	}

	// Strict dominator sets; peel from the entry outward, emitting a
	// node as soon as its set drains. The last dominator stripped is,
	// by construction, the closest one.
	pending := make(map[string]map[string]bool, len(c.Blocks)-1)
	for label, ds := range dom {
		if label == c.Entry {
			continue
		}
		strict := maps.Clone(ds)
		delete(strict, label)
		pending[label] = strict
	}

	idoms := make(map[string]string, len(pending))
	frontier := []string{c.Entry}
	for len(frontier) > 0 {
		d := frontier[0]
		frontier = frontier[1:]
		waiting := maps.Keys(pending)
		sort.Strings(waiting)
		for _, m := range waiting {
			if !pending[m][d] {
				continue
			}
			delete(pending[m], d)
			if len(pending[m]) == 0 {
				idoms[m] = d
				delete(pending, m)
				frontier = append(frontier, m)
			}
		}
	}
	if len(pending) != 0 {
		return nil, fmt.Errorf("%w: %d blocks have unresolved dominators", ErrInternalInvariant, len(pending))
	}
	return idoms, nil
}

// DominanceFrontiers computes DF(n) for every block: the joins at the
// edge of n's dominance.
func (c *Cfg) DominanceFrontiers() (map[string]map[string]bool, error) {
	idoms, err := c.Idoms()
	if err != nil {
		return nil, err
	}
	return c.frontiers(idoms), nil
}

func (c *Cfg) frontiers(idoms map[string]string) map[string]map[string]bool {
	df := make(map[string]map[string]bool, len(c.Blocks))
	for label := range c.Blocks {
		df[label] = make(map[string]bool)
	}
	for label := range c.Blocks {
		preds := c.Predecessors(label)
		if len(preds) < 2 {
			continue
		}
		stop, hasIdom := idoms[label]
		for _, p := range preds {
			runner := p
			for !(hasIdom && runner == stop) {
				df[runner][label] = true
				up, ok := idoms[runner]
				if !ok {
					break
				}
				runner = up
			}
		}
	}
	return df
}

// DomTree derives the parent→children form of the dominator tree, with
// children sorted for stable traversal order.
func DomTree(idoms map[string]string) map[string][]string {
	tree := make(map[string][]string)
	for child, parent := range idoms {
		tree[parent] = append(tree[parent], child)
	}
	for _, children := range tree {
		sort.Strings(children)
	}
	return tree
}
