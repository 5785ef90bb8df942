package sccp

import "github.com/chioni16/ssa/bril"

// fold evaluates op over constant operands. The false return covers
// type mismatches, division by zero, calls, and any op with no
// compile-time meaning; those all lower to Bottom.
func fold(op string, args []bril.Literal) (bril.Literal, bool) {
	switch op {
	case bril.OpAdd, bril.OpSub, bril.OpMul, bril.OpDiv:
		a, b, ok := intPair(args)
		if !ok {
			return bril.Literal{}, false
		}
		switch op {
		case bril.OpAdd:
			return bril.IntLit(a + b), true
		case bril.OpSub:
			return bril.IntLit(a - b), true
		case bril.OpMul:
			return bril.IntLit(a * b), true
		default:
			if b == 0 {
				return bril.Literal{}, false
			}
			return bril.IntLit(a / b), true
		}

	case bril.OpEq, bril.OpLt, bril.OpGt, bril.OpLe, bril.OpGe:
		a, b, ok := intPair(args)
		if !ok {
			return bril.Literal{}, false
		}
		switch op {
		case bril.OpEq:
			return bril.BoolLit(a == b), true
		case bril.OpLt:
			return bril.BoolLit(a < b), true
		case bril.OpGt:
			return bril.BoolLit(a > b), true
		case bril.OpLe:
			return bril.BoolLit(a <= b), true
		default:
			return bril.BoolLit(a >= b), true
		}

	case bril.OpNot:
		if len(args) != 1 || args[0].Kind != bril.LitBool {
			return bril.Literal{}, false
		}
		return bril.BoolLit(!args[0].Bool), true

	case bril.OpAnd, bril.OpOr:
		if len(args) != 2 || args[0].Kind != bril.LitBool || args[1].Kind != bril.LitBool {
			return bril.Literal{}, false
		}
		if op == bril.OpAnd {
			return bril.BoolLit(args[0].Bool && args[1].Bool), true
		}
		return bril.BoolLit(args[0].Bool || args[1].Bool), true

	case bril.OpFAdd, bril.OpFSub, bril.OpFMul, bril.OpFDiv:
		a, b, ok := floatPair(args)
		if !ok {
			return bril.Literal{}, false
		}
		switch op {
		case bril.OpFAdd:
			return bril.FloatLit(a + b), true
		case bril.OpFSub:
			return bril.FloatLit(a - b), true
		case bril.OpFMul:
			return bril.FloatLit(a * b), true
		default:
			return bril.FloatLit(a / b), true
		}

	case bril.OpFEq, bril.OpFLt, bril.OpFGt, bril.OpFLe, bril.OpFGe:
		a, b, ok := floatPair(args)
		if !ok {
			return bril.Literal{}, false
		}
		switch op {
		case bril.OpFEq:
			return bril.BoolLit(a == b), true
		case bril.OpFLt:
			return bril.BoolLit(a < b), true
		case bril.OpFGt:
			return bril.BoolLit(a > b), true
		case bril.OpFLe:
			return bril.BoolLit(a <= b), true
		default:
			return bril.BoolLit(a >= b), true
		}
	}
	return bril.Literal{}, false
}

func intPair(args []bril.Literal) (int64, int64, bool) {
	if len(args) != 2 || args[0].Kind != bril.LitInt || args[1].Kind != bril.LitInt {
		return 0, 0, false
	}
	return args[0].Int, args[1].Int, true
}

func floatPair(args []bril.Literal) (float64, float64, bool) {
	if len(args) != 2 || args[0].Kind != bril.LitFloat || args[1].Kind != bril.LitFloat {
		return 0, 0, false
	}
	return args[0].Float, args[1].Float, true
}
