// Package value implements the tagged Value variant, the operand Stack,
// and the SubStack arena described in SPEC_FULL.md §3.
package value

import (
	"fmt"
	"math"
	"strconv"

	"sscript/internal/bytecode"
)

// Kind discriminates the Value variant. There are eight, one per variant,
// including Type itself, which can be held as a value.
type Kind byte

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindNone
	KindString
	KindQuoted
	KindType
	KindSubStack
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindBool:
		return "BOOL"
	case KindNone:
		return "NONE"
	case KindString:
		return "STR"
	case KindQuoted:
		return "INSTR"
	case KindType:
		return "TYPE"
	case KindSubStack:
		return "STACK"
	default:
		return "UNKNOWN"
	}
}

// Value is a single operand-stack element. Only the field matching Kind is
// meaningful. Quoted carries its textual source body and an optional
// compiled chunk. The interpreter always builds Quoted values with a nil
// Compiled, so each apply/if/loop/define compiles the body text again.
type Value struct {
	Kind Kind

	I int64
	F float64
	B bool
	S string

	Compiled *bytecode.Chunk // compiled form of a Quoted body when the constructor was given one; used in place of recompiling S

	Sub SubStackRef
}

// SubStackRef is a generation-checked handle into an Arena, per
// SPEC_FULL.md §3's "Arena representation" expansion.
type SubStackRef struct {
	Index uint32
	Gen   uint32
}

func Int(i int64) Value     { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, F: f} }
func Bool(b bool) Value     { return Value{Kind: KindBool, B: b} }
func None() Value            { return Value{Kind: KindNone} }
func Str(s string) Value    { return Value{Kind: KindString, S: s} }
func TypeVal(k Kind) Value  { return Value{Kind: KindType, I: int64(k)} }

// Quoted constructs a Quoted value carrying the textual body (without
// surrounding brackets) and, when available, the already-compiled chunk.
func Quoted(body string, compiled *bytecode.Chunk) Value {
	return Value{Kind: KindQuoted, S: body, Compiled: compiled}
}

// SubStack constructs a SubStack value referencing an arena slot.
func SubStack(ref SubStackRef) Value {
	return Value{Kind: KindSubStack, Sub: ref}
}

// IsNumeric reports whether v is an Int or a Float.
func (v Value) IsNumeric() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// AsFloat widens an Int/Float value to float64. Caller must check IsNumeric.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.I)
	}
	return v.F
}

// Equal implements the structural/numeric equality rule from SPEC_FULL.md
// §3: numeric comparisons cross Int/Float, SubStacks compare element-wise
// via the arena, everything else compares structurally, mixed kinds
// (other than Int/Float) are never equal.
func (v Value) Equal(o Value, arena *Arena) bool {
	if v.IsNumeric() && o.IsNumeric() {
		return v.AsFloat() == o.AsFloat()
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.B == o.B
	case KindNone:
		return true
	case KindString:
		return v.S == o.S
	case KindQuoted:
		return v.S == o.S
	case KindType:
		return v.I == o.I
	case KindSubStack:
		sa, ok1 := arena.Deref(v.Sub)
		sb, ok2 := arena.Deref(o.Sub)
		if !ok1 || !ok2 {
			return ok1 == ok2 && v.Sub == o.Sub
		}
		if sa.Len() != sb.Len() {
			return false
		}
		for i := 0; i < sa.Len(); i++ {
			if !sa.Content[i].Equal(sb.Content[i], arena) {
				return false
			}
		}
		return true
	}
	return false
}

// Text renders v in the persisted/printed textual form described in
// SPEC_FULL.md §6 ("Persisted-state form"). Strings are written between
// double quotes with no escaping, as the lexer reads them. SubStacks are
// rendered for `print`/`printall` even though `save` skips them (per the open
// question in spec.md §9, preserved as-is).
func (v Value) Text(arena *Arena) string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return formatFloat(v.F)
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindNone:
		return "none"
	case KindString:
		return "\"" + v.S + "\""
	case KindQuoted:
		return "[" + v.S + "]"
	case KindType:
		return Kind(v.I).String()
	case KindSubStack:
		s, ok := arena.Deref(v.Sub)
		if !ok {
			return "{}"
		}
		out := "{"
		for i, e := range s.Content {
			if i > 0 {
				out += " "
			}
			out += e.Text(arena)
		}
		return out + "}"
	}
	return "?"
}

// formatFloat produces the shortest round-trip decimal, in plain positional
// notation (never an exponent, which the lexer does not read), matching the
// reference's plain float Display and the spec's "shortest round-trip
// decimal" requirement for the persisted form. Infinities and NaN are
// written as inf, -inf and nan, which do not read back as numbers.
func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	// Ensure a float always round-trips as a float (carries a decimal
	// point or exponent) even when the value is integral, e.g. 2.0 not 2.
	hasDotOrExp := false
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			hasDotOrExp = true
			break
		}
	}
	if !hasDotOrExp {
		s += ".0"
	}
	return s
}
