// Package printer renders compiled instructions and stack values back to
// the language's own textual form (spec.md §2 component I), supporting
// the round-trip property in SPEC_FULL.md §8: compiling a program,
// printing it, and recompiling the result yields an equivalent
// instruction stream.
package printer

import (
	"fmt"
	"strings"

	"sscript/internal/bytecode"
	"sscript/internal/value"
)

// numberedName pairs an Op with the bare word it's derived from, used to
// reconstruct dupN/swapN/digN/injectN/pinjectN source text.
var numberedName = map[bytecode.Op]string{
	bytecode.OpDupN:     "dup",
	bytecode.OpSwapN:    "swap",
	bytecode.OpDigN:     "dig",
	bytecode.OpInjectN:  "inject",
	bytecode.OpPInjectN: "pinject",
}

// condName pairs a code-argument Op with its bare word, used to
// reconstruct the NAME(...) source form.
var condName = map[bytecode.Op]string{
	bytecode.OpIfCond:      "if",
	bytecode.OpLoopCond:    "loop",
	bytecode.OpTimes:       "times",
	bytecode.OpDupCond:     "dup",
	bytecode.OpSwapCond:    "swap",
	bytecode.OpDigCond:     "dig",
	bytecode.OpSplitCond:   "split",
	bytecode.OpComposeCond: "compose",
}

// nameArgName pairs a name-argument Op with its bare word.
var nameArgName = map[bytecode.Op]string{
	bytecode.OpDefine: "define",
	bytecode.OpDelete: "delete",
	bytecode.OpIsDef:  "isdef",
	bytecode.OpLoad:   "load",
	bytecode.OpSave:   "save",
}

// Print renders a whole chunk as whitespace-separated source text.
func Print(chunk *bytecode.Chunk) string {
	parts := make([]string, 0, len(chunk.Code))
	for _, instr := range chunk.Code {
		parts = append(parts, PrintInstruction(instr))
	}
	return strings.Join(parts, " ")
}

// PrintInstruction renders a single instruction as source text.
func PrintInstruction(instr bytecode.Instruction) string {
	switch instr.Op {
	case bytecode.OpPushInt:
		return fmt.Sprintf("%d", instr.Int)
	case bytecode.OpPushFloat:
		return value.Float(instr.Float).Text(nil)
	case bytecode.OpPushBool:
		if instr.Bool {
			return "true"
		}
		return "false"
	case bytecode.OpPushNone:
		return "none"
	case bytecode.OpPushString:
		return "\"" + instr.String + "\""
	case bytecode.OpPushQuoted:
		return "[" + instr.String + "]"
	case bytecode.OpPushStackLiteral:
		return "{" + Print(instr.Code) + "}"
	case bytecode.OpCall:
		return instr.Name
	}
	if name, ok := numberedName[instr.Op]; ok {
		return fmt.Sprintf("%s%d", name, instr.N)
	}
	if name, ok := condName[instr.Op]; ok {
		return fmt.Sprintf("%s(%s)", name, Print(instr.Code))
	}
	if name, ok := nameArgName[instr.Op]; ok {
		return fmt.Sprintf("%s(%s)", name, instr.Name)
	}
	return instr.Op.String()
}

// PrintValue renders a Value in the persisted/printed textual form
// (spec.md §6). It is a thin convenience wrapper over Value.Text, kept in
// this package so callers reach for one place for "turn this into
// source/output text" regardless of whether the source is a live Value
// or a compiled Instruction.
func PrintValue(v value.Value, arena *value.Arena) string {
	return v.Text(arena)
}
