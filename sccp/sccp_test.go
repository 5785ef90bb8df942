package sccp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chioni16/ssa/bril"
	"github.com/chioni16/ssa/cfg"
)

func label(l string) bril.Code { return bril.Code{Label: l} }

func inst(i bril.Instruction) bril.Code { return bril.Code{Inst: &i} }

func constInt(dest string, v int64) bril.Code {
	lit := bril.IntLit(v)
	return inst(bril.Instruction{Op: bril.OpConst, Dest: dest, Type: bril.TypeInt, Value: &lit})
}

func constBool(dest string, v bool) bril.Code {
	lit := bril.BoolLit(v)
	return inst(bril.Instruction{Op: bril.OpConst, Dest: dest, Type: bril.TypeBool, Value: &lit})
}

func value(dest, op string, args ...string) bril.Code {
	typ := bril.TypeInt
	switch op {
	case bril.OpEq, bril.OpLt, bril.OpGt, bril.OpLe, bril.OpGe, bril.OpNot, bril.OpAnd, bril.OpOr:
		typ = bril.TypeBool
	}
	return inst(bril.Instruction{Op: op, Dest: dest, Type: typ, Args: args})
}

func br(cond, then, els string) bril.Code {
	return inst(bril.Instruction{Op: bril.OpBr, Args: []string{cond}, Labels: []string{then, els}})
}

func jmp(to string) bril.Code {
	return inst(bril.Instruction{Op: bril.OpJmp, Labels: []string{to}})
}

func ret() bril.Code { return inst(bril.Instruction{Op: bril.OpRet}) }

func printOf(args ...string) bril.Code {
	return inst(bril.Instruction{Op: bril.OpPrint, Args: args})
}

func ssaOf(t *testing.T, name string, codes ...bril.Code) *cfg.Cfg {
	t.Helper()
	c, err := cfg.NewSeededBuilder(0).Build(&bril.Function{Name: name, Instrs: codes})
	require.NoError(t, err)
	require.NoError(t, c.ToSSA())
	return c
}

func diamond(condValue bool) func(*testing.T) *cfg.Cfg {
	return func(t *testing.T) *cfg.Cfg {
		return ssaOf(t, "main",
			label("entry"),
			constBool("c", condValue),
			br("c", "lt", "lf"),
			label("lt"),
			constInt("a", 10),
			jmp("j"),
			label("lf"),
			constInt("a", 20),
			jmp("j"),
			label("j"),
			printOf("a"),
		)
	}
}

func TestMeetLaws(t *testing.T) {
	top := Lattice{Kind: Top}
	bottom := Lattice{Kind: Bottom}
	one := Const(bril.IntLit(1))
	two := Const(bril.IntLit(2))

	cells := []Lattice{top, bottom, one, two}
	for _, a := range cells {
		// idempotent, Top identity, Bottom absorbing
		assert.True(t, Meet(a, a).Equal(a))
		assert.True(t, Meet(top, a).Equal(a))
		assert.True(t, Meet(a, top).Equal(a))
		assert.True(t, Meet(bottom, a).Equal(bottom))
		for _, b := range cells {
			// commutative
			assert.True(t, Meet(a, b).Equal(Meet(b, a)))
			for _, c := range cells {
				// associative
				assert.True(t, Meet(Meet(a, b), c).Equal(Meet(a, Meet(b, c))))
			}
		}
	}
	assert.Equal(t, Bottom, Meet(one, two).Kind)
	assert.True(t, Meet(one, one).Equal(one))
}

func TestRunStraightLineConstants(t *testing.T) {
	c := ssaOf(t, "main",
		constInt("x", 1),
		constInt("y", 2),
		value("z", bril.OpAdd, "x", "y"),
		printOf("z"),
	)

	res := Run(c)

	assert.True(t, res.Lattice("x.1").Equal(Const(bril.IntLit(1))))
	assert.True(t, res.Lattice("y.1").Equal(Const(bril.IntLit(2))))
	assert.True(t, res.Lattice("z.1").Equal(Const(bril.IntLit(3))))
}

func TestRunDiamondTruePredicate(t *testing.T) {
	c := diamond(true)(t)
	res := Run(c)

	assert.True(t, res.Executable[Edge{From: "entry", To: "lt"}])
	assert.False(t, res.Executable[Edge{From: "entry", To: "lf"}])
	assert.False(t, res.Executable[Edge{From: "lf", To: "j"}])

	phi := c.Blocks["j"].Phis()[0]
	assert.True(t, res.Lattice(phi.Dest).Equal(Const(bril.IntLit(10))))
}

func TestRunDiamondFalsePredicate(t *testing.T) {
	c := diamond(false)(t)
	res := Run(c)

	assert.False(t, res.Executable[Edge{From: "entry", To: "lt"}])
	assert.True(t, res.Executable[Edge{From: "entry", To: "lf"}])

	phi := c.Blocks["j"].Phis()[0]
	assert.True(t, res.Lattice(phi.Dest).Equal(Const(bril.IntLit(20))))
}

func TestRunLoopLowersInductionVariable(t *testing.T) {
	c := ssaOf(t, "main",
		label("entry"),
		constInt("i", 0),
		constInt("ten", 10),
		jmp("h"),
		label("h"),
		value("cond", bril.OpLt, "i", "ten"),
		br("cond", "b", "e"),
		label("b"),
		constInt("one", 1),
		value("i", bril.OpAdd, "i", "one"),
		jmp("h"),
		label("e"),
		ret(),
	)

	res := Run(c)

	var iPhi *bril.Instruction
	for _, phi := range c.Blocks["h"].Phis() {
		if phi.Type == bril.TypeInt && len(phi.Args) == 2 {
			for _, a := range phi.Args {
				if a == "i.1" {
					iPhi = phi
				}
			}
		}
	}
	require.NotNil(t, iPhi)

	// 0 meets 1: provably non-constant
	assert.Equal(t, Bottom, res.Lattice(iPhi.Dest).Kind)

	for _, e := range []Edge{
		{From: "entry", To: "h"},
		{From: "h", To: "b"},
		{From: "b", To: "h"},
		{From: "h", To: "e"},
	} {
		assert.True(t, res.Executable[e], "%v must be executable", e)
	}
}

func TestRunBranchOnUnknownStaysOptimistic(t *testing.T) {
	// the condition is a function parameter: never lowered, so neither
	// arm is provably executable
	f := &bril.Function{
		Name: "main",
		Args: []bril.Arg{{Name: "c", Type: bril.TypeBool}},
		Instrs: []bril.Code{
			label("entry"),
			br("c", "lt", "lf"),
			label("lt"),
			constInt("a", 1),
			jmp("j"),
			label("lf"),
			constInt("a", 2),
			jmp("j"),
			label("j"),
			printOf("a"),
		},
	}
	c, err := cfg.NewSeededBuilder(0).Build(f)
	require.NoError(t, err)
	require.NoError(t, c.ToSSA())

	res := Run(c)

	assert.Empty(t, res.Executable)
	phi := c.Blocks["j"].Phis()[0]
	assert.Equal(t, Top, res.Lattice(phi.Dest).Kind)
}

func TestRunDivisionByZeroIsBottom(t *testing.T) {
	c := ssaOf(t, "main",
		constInt("a", 1),
		constInt("b", 0),
		value("d", bril.OpDiv, "a", "b"),
		printOf("d"),
	)

	res := Run(c)
	assert.Equal(t, Bottom, res.Lattice("d.1").Kind)
}

func TestRunIDForwardsCell(t *testing.T) {
	c := ssaOf(t, "main",
		constInt("x", 5),
		inst(bril.Instruction{Op: bril.OpID, Dest: "y", Type: bril.TypeInt, Args: []string{"x"}}),
		printOf("y"),
	)

	res := Run(c)
	assert.True(t, res.Lattice("y.1").Equal(Const(bril.IntLit(5))))
}

func TestRunCallIsBottom(t *testing.T) {
	c := ssaOf(t, "main",
		constInt("x", 5),
		inst(bril.Instruction{Op: bril.OpCall, Dest: "y", Type: bril.TypeInt, Funcs: []string{"f"}, Args: []string{"x"}}),
		printOf("y"),
	)

	res := Run(c)
	assert.Equal(t, Bottom, res.Lattice("y.1").Kind)
}

func TestRunIsDeterministicAndIdempotent(t *testing.T) {
	build := func() *cfg.Cfg {
		return ssaOf(t, "main",
			label("entry"),
			constInt("i", 0),
			constInt("ten", 10),
			jmp("h"),
			label("h"),
			value("cond", bril.OpLt, "i", "ten"),
			br("cond", "b", "e"),
			label("b"),
			constInt("one", 1),
			value("i", bril.OpAdd, "i", "one"),
			jmp("h"),
			label("e"),
			ret(),
		)
	}

	first := Run(build())
	second := Run(build())
	assert.Equal(t, first.String(), second.String())

	// running over the same SSA CFG twice must agree as well
	c := build()
	assert.Equal(t, Run(c).String(), Run(c).String())
}

func TestResultStringSorted(t *testing.T) {
	res := Run(diamond(true)(t))
	s := res.String()
	assert.Contains(t, s, "entry -> lt executable")
	assert.NotContains(t, s, "entry -> lf executable")
	// edges are listed by source label: entry's edge before lt's
	assert.Less(t, strings.Index(s, "entry -> lt executable"), strings.Index(s, "lt -> j executable"))
}
