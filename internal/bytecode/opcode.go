// Package bytecode defines the compiled instruction representation produced
// by internal/compiler and executed by internal/vm.
package bytecode

// Op identifies the operation an Instruction performs. The set is closed
// and mirrors the Instruction enum of the reference compiler: literals,
// argument-less primitives, numeric-argument ops, code-argument ops, and
// name-argument ops.
type Op byte

const (
	OpPushInt Op = iota
	OpPushFloat
	OpPushBool
	OpPushNone
	OpPushString
	OpPushQuoted
	OpPushStackLiteral

	// Math
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpSqrt
	OpExp
	OpLog
	OpLog2
	OpLog10
	OpOpposite
	OpFactorial
	OpGamma
	OpSin
	OpCos
	OpTan
	OpArcSin
	OpArcCos
	OpArcTan
	OpSinh
	OpCosh
	OpTanh
	OpArcSinh
	OpArcCosh
	OpArcTanh
	OpToInt

	// Boolean
	OpAnd
	OpOr
	OpXor
	OpNot
	OpTrue
	OpFalse

	// Comparison
	OpEq
	OpNotEq
	OpLt
	OpGt
	OpLtEq
	OpGtEq

	// Stack
	OpDup
	OpSwap
	OpDrop
	OpClear
	OpRoll
	OpTop
	OpQuote
	OpCompose
	OpApply
	OpSplit
	OpSize
	OpEmpty
	OpLast
	OpCompress
	OpDip

	// Inner stack
	OpNewStack
	OpPush
	OpPop
	OpInject

	// Type
	OpGetType
	OpTypeInstr
	OpTypeInt
	OpTypeFloat
	OpTypeBool
	OpTypeStr
	OpTypeType
	OpTypeNone
	OpTypeStack

	// Control
	OpIf
	OpLoop
	OpNop
	OpExit
	OpTry

	// I/O
	OpPrint
	OpPrintAll

	// Numeric-argument ops
	OpDupN
	OpSwapN
	OpDigN
	OpInjectN
	OpPInjectN

	// Code-argument ops
	OpIfCond
	OpLoopCond
	OpTimes
	OpDupCond
	OpSwapCond
	OpDigCond
	OpSplitCond
	OpComposeCond

	// Name-argument ops
	OpDefine
	OpDelete
	OpIsDef
	OpLoad
	OpSave

	OpCall
)

// String names an Op for diagnostics and the pretty printer.
func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "UNKNOWN"
}

var opNames = map[Op]string{
	OpPushInt: "PushInt", OpPushFloat: "PushFloat", OpPushBool: "PushBool",
	OpPushNone: "PushNone", OpPushString: "PushString", OpPushQuoted: "PushQuoted",
	OpPushStackLiteral: "PushStackLiteral",
	OpAdd:              "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpPow: "pow", OpSqrt: "sqrt", OpExp: "exp", OpLog: "log", OpLog2: "log2",
	OpLog10: "log10", OpOpposite: "--", OpFactorial: "!", OpGamma: "gamma",
	OpSin: "sin", OpCos: "cos", OpTan: "tan",
	OpArcSin: "arcsin", OpArcCos: "arccos", OpArcTan: "arctan",
	OpSinh: "sinh", OpCosh: "cosh", OpTanh: "tanh",
	OpArcSinh: "arcsinh", OpArcCosh: "arccosh", OpArcTanh: "arctanh",
	OpToInt: "int",
	OpAnd:   "and", OpOr: "or", OpXor: "xor", OpNot: "not",
	OpTrue: "true", OpFalse: "false",
	OpEq: "==", OpNotEq: "!=", OpLt: "<", OpGt: ">", OpLtEq: "<=", OpGtEq: ">=",
	OpDup: "dup", OpSwap: "swap", OpDrop: "drop", OpClear: "clear",
	OpRoll: "roll", OpTop: "top", OpQuote: "quote", OpCompose: "compose",
	OpApply: "apply", OpSplit: "split", OpSize: "size", OpEmpty: "empty",
	OpLast: "last", OpCompress: "compress", OpDip: "dip",
	OpNewStack: "stack", OpPush: "push", OpPop: "pop", OpInject: "inject",
	OpGetType: "type", OpTypeInstr: "INSTR", OpTypeInt: "INT", OpTypeFloat: "FLOAT",
	OpTypeBool: "BOOL", OpTypeStr: "STR", OpTypeType: "TYPE", OpTypeNone: "NONE",
	OpTypeStack: "STACK",
	OpIf:        "if", OpLoop: "loop", OpNop: "nop", OpExit: "exit", OpTry: "try",
	OpPrint: "print", OpPrintAll: "printall",
	OpDupN: "dupN", OpSwapN: "swapN", OpDigN: "digN", OpInjectN: "injectN", OpPInjectN: "pinjectN",
	OpIfCond: "if(...)", OpLoopCond: "loop(...)", OpTimes: "times(...)",
	OpDupCond: "dup(...)", OpSwapCond: "swap(...)", OpDigCond: "dig(...)",
	OpSplitCond: "split(...)", OpComposeCond: "compose(...)",
	OpDefine: "define", OpDelete: "delete", OpIsDef: "isdef", OpLoad: "load", OpSave: "save",
	OpCall: "call",
}
