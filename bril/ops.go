package bril

// Constant definitions.
const OpConst = "const"

// Value operations. The list mirrors core bril plus the float
// extension; unknown ops flow through the model untouched.
const (
	OpAdd = "add"
	OpSub = "sub"
	OpMul = "mul"
	OpDiv = "div"

	OpEq = "eq"
	OpLt = "lt"
	OpGt = "gt"
	OpLe = "le"
	OpGe = "ge"

	OpNot = "not"
	OpAnd = "and"
	OpOr  = "or"

	OpFAdd = "fadd"
	OpFSub = "fsub"
	OpFMul = "fmul"
	OpFDiv = "fdiv"

	OpFEq = "feq"
	OpFLt = "flt"
	OpFGt = "fgt"
	OpFLe = "fle"
	OpFGe = "fge"

	OpID   = "id"
	OpCall = "call"
	OpPhi  = "phi"
)

// Effect operations.
const (
	OpBr    = "br"
	OpJmp   = "jmp"
	OpRet   = "ret"
	OpPrint = "print"
	OpNop   = "nop"
)
