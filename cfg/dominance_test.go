package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/flow"
)

// dominates decides domination independently of the implementation
// under test: d dominates n iff every entry→n path passes through d,
// i.e. n is unreachable once d is cut out of the walk.
func dominates(c *Cfg, d, n string) bool {
	if d == n {
		return true
	}
	if n == c.Entry {
		return false
	}
	seen := map[string]bool{d: true}
	var walk func(string) bool
	walk = func(cur string) bool {
		if cur == n {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, s := range c.Successors(cur) {
			if walk(s) {
				return true
			}
		}
		return false
	}
	return !walk(c.Entry)
}

func prunedFixtures(t *testing.T) map[string]*Cfg {
	t.Helper()
	fixtures := map[string]*Cfg{
		"diamond": mustBuild(t, diamond(true)),
		"loop":    mustBuild(t, loop()),
		"straight": mustBuild(t, fn("main",
			constInt("x", 1),
			jmp("mid"),
			label("mid"),
			jmp("end"),
			label("end"),
			ret(),
		)),
		"nested": mustBuild(t, fn("main",
			constBool("c", true),
			br("c", "outer_t", "outer_f"),
			label("outer_t"),
			constBool("d", false),
			br("d", "inner_t", "inner_f"),
			label("inner_t"),
			jmp("inner_j"),
			label("inner_f"),
			jmp("inner_j"),
			label("inner_j"),
			jmp("outer_j"),
			label("outer_f"),
			jmp("outer_j"),
			label("outer_j"),
			ret(),
		)),
	}
	for _, c := range fixtures {
		c.RemoveUnreachable()
	}
	return fixtures
}

func TestIdomsDiamond(t *testing.T) {
	c := mustBuild(t, diamond(true))
	c.RemoveUnreachable()

	idoms, err := c.Idoms()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"lt": "entry",
		"lf": "entry",
		"j":  "entry",
	}, idoms)
}

func TestIdomsLoop(t *testing.T) {
	c := mustBuild(t, loop())
	c.RemoveUnreachable()

	idoms, err := c.Idoms()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"h": "entry",
		"b": "h",
		"e": "h",
	}, idoms)
}

func TestIdomsSoundness(t *testing.T) {
	for name, c := range prunedFixtures(t) {
		t.Run(name, func(t *testing.T) {
			idoms, err := c.Idoms()
			require.NoError(t, err)

			_, hasEntry := idoms[c.Entry]
			assert.False(t, hasEntry, "entry must have no idom")
			assert.Len(t, idoms, len(c.Blocks)-1)
			for n, d := range idoms {
				assert.NotEqual(t, n, d)
				assert.True(t, dominates(c, d, n), "idom(%s)=%s must dominate %s", n, d, n)
			}
		})
	}
}

func TestIdomsMatchLengauerTarjan(t *testing.T) {
	for name, c := range prunedFixtures(t) {
		t.Run(name, func(t *testing.T) {
			idoms, err := c.Idoms()
			require.NoError(t, err)

			entry := c.Blocks[c.Entry]
			tree := flow.DominatorsSLT(c.graph.Node(entry.Node), c.graph)
			for label, b := range c.Blocks {
				want := tree.DominatorOf(b.Node)
				if label == c.Entry {
					assert.NotContains(t, idoms, label)
					continue
				}
				require.NotNil(t, want, "oracle has no idom for %s", label)
				assert.Equal(t, c.labels[want.ID()], idoms[label], "idom(%s)", label)
			}
		})
	}
}

func TestIdomsRequirePrunedCfg(t *testing.T) {
	c := mustBuild(t, fn("main",
		constInt("x", 1),
		ret(),
		constInt("y", 2),
		ret(),
	))

	_, err := c.Idoms()
	assert.ErrorIs(t, err, ErrInternalInvariant)
}

func TestDominanceFrontiersDiamond(t *testing.T) {
	c := mustBuild(t, diamond(true))
	c.RemoveUnreachable()

	df, err := c.DominanceFrontiers()
	require.NoError(t, err)

	assert.Empty(t, df["entry"])
	assert.Equal(t, map[string]bool{"j": true}, df["lt"])
	assert.Equal(t, map[string]bool{"j": true}, df["lf"])
	assert.Empty(t, df["j"])
}

func TestDominanceFrontiersLoopHeader(t *testing.T) {
	c := mustBuild(t, loop())
	c.RemoveUnreachable()

	df, err := c.DominanceFrontiers()
	require.NoError(t, err)

	// the header is in its own frontier via the back edge
	assert.Equal(t, map[string]bool{"h": true}, df["h"])
	assert.Equal(t, map[string]bool{"h": true}, df["b"])
	assert.Empty(t, df["e"])
}

func TestDominanceFrontierLaw(t *testing.T) {
	// for m in DF(n): n dominates a predecessor of m, but not strictly m
	for name, c := range prunedFixtures(t) {
		t.Run(name, func(t *testing.T) {
			df, err := c.DominanceFrontiers()
			require.NoError(t, err)

			for n, ms := range df {
				for m := range ms {
					domsPred := false
					for _, p := range c.Predecessors(m) {
						if dominates(c, n, p) {
							domsPred = true
							break
						}
					}
					assert.True(t, domsPred, "%s must dominate a predecessor of %s", n, m)
					assert.False(t, n != m && dominates(c, n, m), "%s must not strictly dominate %s", n, m)
				}
			}
		})
	}
}

func TestDomTree(t *testing.T) {
	c := mustBuild(t, loop())
	c.RemoveUnreachable()

	idoms, err := c.Idoms()
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"entry": {"h"},
		"h":     {"b", "e"},
	}, DomTree(idoms))
}
