package vm

import (
	"strings"

	"sscript/internal/bytecode"
	"sscript/internal/compiler"
	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

// opDupN copies the element at depth n (0 is the top itself, i.e. a plain
// dup) onto the top of the stack.
func (vm *VM) opDupN(n int) *serrors.Error {
	v, ok := vm.Stack.At(n)
	if !ok {
		return serrors.New(serrors.StackUnderflow, "dup: depth out of range")
	}
	vm.Stack.Push(v)
	return nil
}

// opDupCond runs code to compute a depth, then behaves like opDupN.
func (vm *VM) opDupCond(code *bytecode.Chunk) *serrors.Error {
	n, err := vm.evalDepthArg(code, "dup")
	if err != nil {
		return err
	}
	return vm.opDupN(n)
}

// opSwapN exchanges the top with the element at depth n; n==0 is a no-op
// that still requires a non-empty stack.
func (vm *VM) opSwapN(n int) *serrors.Error {
	if !vm.Stack.SwapTop(n) {
		return serrors.New(serrors.StackUnderflow, "swap: depth out of range")
	}
	return nil
}

func (vm *VM) opSwapCond(code *bytecode.Chunk) *serrors.Error {
	n, err := vm.evalDepthArg(code, "swap")
	if err != nil {
		return err
	}
	return vm.opSwapN(n)
}

func (vm *VM) opDrop() *serrors.Error {
	if _, ok := vm.Stack.Pop(); !ok {
		return serrors.New(serrors.StackUnderflow, "drop: empty stack")
	}
	return nil
}

// opRoll removes the top element and inserts it at the bottom.
func (vm *VM) opRoll() *serrors.Error {
	v, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "roll: empty stack")
	}
	vm.Stack.InsertBottom(v)
	return nil
}

// opTop copies the bottom element onto the top of the stack.
func (vm *VM) opTop() *serrors.Error {
	if vm.Stack.IsEmpty() {
		return serrors.New(serrors.StackUnderflow, "top: empty stack")
	}
	v := vm.Stack.Content[0]
	vm.Stack.Push(v)
	return nil
}

// opDigN removes the element at depth n and pushes it on top; n==0 is a
// no-op (remove-then-push-back is the identity).
func (vm *VM) opDigN(n int) *serrors.Error {
	v, ok := vm.Stack.Dig(n)
	if !ok {
		return serrors.New(serrors.StackUnderflow, "dig: depth out of range")
	}
	vm.Stack.Push(v)
	return nil
}

func (vm *VM) opDigCond(code *bytecode.Chunk) *serrors.Error {
	n, err := vm.evalDepthArg(code, "dig")
	if err != nil {
		return err
	}
	return vm.opDigN(n)
}

// evalDepthArg runs code against the shared stack and pops its resulting
// Int as a depth/count argument, used by dup(expr)/swap(expr)/dig(expr).
func (vm *VM) evalDepthArg(code *bytecode.Chunk, who string) (int, *serrors.Error) {
	if err := vm.enterCall(); err != nil {
		return 0, err
	}
	err := vm.Exec(code)
	vm.exitCall()
	if err != nil {
		return 0, err
	}
	n, ok := vm.Stack.Pop()
	if !ok {
		return 0, serrors.Newf(serrors.StackUnderflow, "%s(...): expected an integer result", who)
	}
	if n.Kind != value.KindInt {
		return 0, serrors.Newf(serrors.InvalidOperands, "%s(...): expected an integer result", who)
	}
	return int(n.I), nil
}

// opQuote pops a value and pushes its textual form as a Quoted value.
// SubStacks cannot be quoted.
func (vm *VM) opQuote() *serrors.Error {
	v, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "quote: empty stack")
	}
	if v.Kind == value.KindSubStack {
		vm.Stack.Push(v)
		return serrors.New(serrors.InvalidOperands, "quote: cannot quote a stack")
	}
	vm.Stack.Push(value.Quoted(v.Text(vm.Arena), nil))
	return nil
}

// opCompose pops a,b (same kind, Quoted or String) and pushes the
// concatenation: Quoted bodies joined by a space, Strings joined bare.
func (vm *VM) opCompose() *serrors.Error {
	b, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "compose: expected two operands")
	}
	a, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(b)
		return serrors.New(serrors.StackUnderflow, "compose: expected two operands")
	}
	switch {
	case a.Kind == value.KindQuoted && b.Kind == value.KindQuoted:
		vm.Stack.Push(value.Quoted(a.S+" "+b.S, nil))
		return nil
	case a.Kind == value.KindString && b.Kind == value.KindString:
		vm.Stack.Push(value.Str(a.S + b.S))
		return nil
	default:
		vm.Stack.Push(a)
		vm.Stack.Push(b)
		return serrors.New(serrors.InvalidOperands, "compose: expected two quoted bodies or two strings")
	}
}

// opComposeCond pops a,b (String), runs code to compute a delimiter, and
// pushes String(a+delim+b).
func (vm *VM) opComposeCond(code *bytecode.Chunk) *serrors.Error {
	b, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "compose: expected two operands")
	}
	a, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(b)
		return serrors.New(serrors.StackUnderflow, "compose: expected two operands")
	}
	if a.Kind != value.KindString || b.Kind != value.KindString {
		vm.Stack.Push(a)
		vm.Stack.Push(b)
		return serrors.New(serrors.InvalidOperands, "compose: expected two strings")
	}
	if err := vm.enterCall(); err != nil {
		vm.Stack.Push(a)
		vm.Stack.Push(b)
		return err
	}
	err := vm.Exec(code)
	vm.exitCall()
	if err != nil {
		vm.Stack.Push(a)
		vm.Stack.Push(b)
		return err
	}
	delim, ok := vm.Stack.Pop()
	if !ok || delim.Kind != value.KindString {
		vm.Stack.Push(a)
		vm.Stack.Push(b)
		return serrors.New(serrors.InvalidOperands, "compose: delimiter expression must produce a string")
	}
	vm.Stack.Push(value.Str(a.S + delim.S + b.S))
	return nil
}

// opApply pops a Quoted value, recompiles its textual body, and executes
// it against the current stack.
func (vm *VM) opApply() *serrors.Error {
	q, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "apply: empty stack")
	}
	if q.Kind != value.KindQuoted {
		vm.Stack.Push(q)
		return serrors.New(serrors.InvalidOperands, "apply: expected quoted code")
	}
	chunk := q.Compiled
	if chunk == nil {
		compiled, cerr := compiler.Compile(q.S)
		if cerr != nil {
			vm.Stack.Push(q)
			return cerr
		}
		chunk = compiled
	}
	if err := vm.enterCall(); err != nil {
		vm.Stack.Push(q)
		return err
	}
	defer vm.exitCall()
	return vm.Exec(chunk)
}

// opSplit overloads on the popped value's kind: SubStack pushes each
// contained element, Quoted lexes its textual body at bracket/paren/
// string depth 0 and pushes each token as Quoted, String splits on
// whitespace and pushes each word as a String.
func (vm *VM) opSplit() *serrors.Error {
	v, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "split: empty stack")
	}
	switch v.Kind {
	case value.KindSubStack:
		sub, ok := vm.Arena.Deref(v.Sub)
		if !ok {
			vm.Stack.Push(v)
			return serrors.New(serrors.InvalidOperands, "split: stale stack reference")
		}
		for _, e := range sub.Content {
			vm.Stack.Push(e)
		}
		return nil
	case value.KindQuoted:
		for _, part := range splitDepthAware(v.S) {
			vm.Stack.Push(value.Quoted(part, nil))
		}
		return nil
	case value.KindString:
		for _, part := range strings.Fields(v.S) {
			vm.Stack.Push(value.Str(part))
		}
		return nil
	default:
		vm.Stack.Push(v)
		return serrors.New(serrors.InvalidOperands, "split: expected a stack, quoted code, or string")
	}
}

// opSplitCond pops delim (String, top) then s (String, next), and splits
// s on delim, pushing each non-empty piece as a String. Unlike
// dup(expr)/swap(expr)/dig(expr), the parenthesized argument is not
// executed as code at call time: op_split_with_delimiter in the reference
// implementation is a plain two-pop with no bracket-code evaluation, and
// running it as code here would leave the real s operand stranded under
// both the explicitly pushed delimiter and the code's own pushed result.
// The compiled form is kept only so printing/recompiling round-trips the
// NAME(...) source text.
func (vm *VM) opSplitCond(code *bytecode.Chunk) *serrors.Error {
	_ = code
	delim, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "split: expected a string delimiter")
	}
	if delim.Kind != value.KindString {
		vm.Stack.Push(delim)
		return serrors.New(serrors.InvalidOperands, "split: expected a string delimiter")
	}
	s, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(delim)
		return serrors.New(serrors.StackUnderflow, "split: expected a string")
	}
	if s.Kind != value.KindString {
		vm.Stack.Push(s)
		vm.Stack.Push(delim)
		return serrors.New(serrors.InvalidOperands, "split: expected a string")
	}
	for _, part := range strings.Split(s.S, delim.S) {
		if part != "" {
			vm.Stack.Push(value.Str(part))
		}
	}
	return nil
}

// splitDepthAware tokenizes a Quoted body on whitespace, but only at
// bracket/paren/string depth 0, matching the reference tokenizer's own
// notion of a "top-level" boundary within an instruction string.
func splitDepthAware(s string) []string {
	var out []string
	bracketDepth, parenDepth := 0, 0
	inString := false
	start := 0
	runes := []rune(s)
	flush := func(end int) {
		part := strings.TrimSpace(string(runes[start:end]))
		if part != "" {
			out = append(out, part)
		}
	}
	for i, c := range runes {
		switch {
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			bracketDepth++
		case c == ']' || c == '}':
			bracketDepth--
		case c == '(':
			parenDepth++
		case c == ')':
			parenDepth--
		case (c == ' ' || c == '\t' || c == '\n' || c == '\r') && bracketDepth == 0 && parenDepth == 0:
			flush(i)
			start = i + 1
		}
	}
	flush(len(runes))
	return out
}

func (vm *VM) opGetType() *serrors.Error {
	v, ok := vm.Stack.Peek()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "type: empty stack")
	}
	vm.Stack.Push(value.TypeVal(v.Kind))
	return nil
}

// opCompress replaces the entire current stack with a single SubStack
// value holding those elements in their original order.
func (vm *VM) opCompress() *serrors.Error {
	content := vm.Stack.Content
	vm.Stack.Content = nil
	inner := &value.Stack{Content: content}
	ref := vm.Arena.Put(inner)
	vm.Stack.Push(value.SubStack(ref))
	return nil
}
