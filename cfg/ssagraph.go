package cfg

// Site addresses one instruction inside the CFG.
type Site struct {
	Label string
	Index int
}

// SSAGraph is the def–use skeleton of an SSA-form CFG: Defs takes every
// defined name to its unique defining site, Uses takes a defining site
// to every site consuming the name, with duplicates preserved when an
// argument appears twice. Effect instructions participate as users.
type SSAGraph struct {
	Defs map[string]Site
	Uses map[Site][]Site
}

// SSAGraph builds the def–use graph. Names with no defining site
// (function parameters) simply contribute no edges.
func (c *Cfg) SSAGraph() *SSAGraph {
	g := &SSAGraph{
		Defs: make(map[string]Site),
		Uses: make(map[Site][]Site),
	}
	for _, b := range c.blocksInOrder() {
		for i, inst := range b.Insts {
			if inst.Dest != "" {
				g.Defs[inst.Dest] = Site{Label: b.Label, Index: i}
			}
		}
	}
	for _, b := range c.blocksInOrder() {
		for i, inst := range b.Insts {
			for _, a := range inst.Args {
				def, ok := g.Defs[a]
				if !ok {
					continue
				}
				g.Uses[def] = append(g.Uses[def], Site{Label: b.Label, Index: i})
			}
		}
	}
	return g
}
