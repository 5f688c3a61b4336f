package vm

import (
	"golang.org/x/sync/errgroup"

	"sscript/internal/bytecode"
	"sscript/internal/compiler"
	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

// compileQuoted returns a Quoted value's compiled chunk, using its cache
// when present.
func compileQuoted(q value.Value) (*bytecode.Chunk, *serrors.Error) {
	if q.Compiled != nil {
		return q.Compiled, nil
	}
	return compiler.Compile(q.S)
}

// opNewStack pushes a fresh empty SubStack.
func (vm *VM) opNewStack() *serrors.Error {
	ref := vm.Arena.New()
	vm.Stack.Push(value.SubStack(ref))
	return nil
}

// opPush pops v, then requires the new top to be a SubStack, and appends
// v to it. The SubStack itself stays on the outer stack.
func (vm *VM) opPush() *serrors.Error {
	v, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "push: expected a value and a stack")
	}
	top, ok := vm.Stack.Peek()
	if !ok {
		vm.Stack.Push(v)
		return serrors.New(serrors.StackUnderflow, "push: expected a stack beneath the value")
	}
	if top.Kind != value.KindSubStack {
		vm.Stack.Push(v)
		return serrors.New(serrors.InvalidOperands, "push: expected a stack beneath the value")
	}
	sub, ok := vm.Arena.Deref(top.Sub)
	if !ok {
		vm.Stack.Push(v)
		return serrors.New(serrors.InvalidOperands, "push: stale stack reference")
	}
	sub.Push(v)
	return nil
}

// opPop requires the top to be a SubStack, removes its last element (None
// if it was empty) and pushes that onto the outer stack. The SubStack
// itself stays.
func (vm *VM) opPop() *serrors.Error {
	top, ok := vm.Stack.Peek()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "pop: expected a stack")
	}
	if top.Kind != value.KindSubStack {
		return serrors.New(serrors.InvalidOperands, "pop: expected a stack")
	}
	sub, ok := vm.Arena.Deref(top.Sub)
	if !ok {
		return serrors.New(serrors.InvalidOperands, "pop: stale stack reference")
	}
	v, ok := sub.Pop()
	if !ok {
		v = value.None()
	}
	vm.Stack.Push(v)
	return nil
}

// opInject pops code, requires the new top to be a SubStack, and runs
// code with the operand stack temporarily swapped for its contents.
// Unlike injectN, a failure propagates as-is rather than being wrapped in
// an InjectError, since there is only ever one target.
func (vm *VM) opInject() *serrors.Error {
	code, targets, err := vm.popInjectTargets(1)
	if err != nil {
		return err
	}
	return vm.runInject(code, targets[0])
}

// opInjectN pops code, requires the top n elements (in their current
// positions) to be SubStacks, and runs code against each one's contents in
// turn, deepest first, per SPEC_FULL.md §5's ordering guarantee. Errors
// across targets are accumulated into a single InjectError rather than
// aborting early.
func (vm *VM) opInjectN(n int) *serrors.Error {
	code, targets, err := vm.popInjectTargets(n)
	if err != nil {
		return err
	}
	var failures []*serrors.Error
	// Deepest of the n first: targets[0] is the bottom-most of the group.
	for _, t := range targets {
		if rerr := vm.runInject(code, t); rerr != nil {
			failures = append(failures, rerr)
		}
	}
	if len(failures) > 0 {
		return serrors.Injected(failures, len(targets))
	}
	return nil
}

// opPInjectN has the same observable semantics as opInjectN but runs each
// target's code concurrently, one goroutine per target, via errgroup. Each
// goroutine operates on its own target's Stack and a private per-goroutine
// VM sharing only the Dictionary and Arena (both internally synchronized);
// concurrent define/delete from within the bodies is unordered, matching
// the documented "do not mutate the dictionary inside pinject bodies"
// caveat.
func (vm *VM) opPInjectN(n int) *serrors.Error {
	code, targets, err := vm.popInjectTargets(n)
	if err != nil {
		return err
	}
	results := make([]*serrors.Error, len(targets))
	var g errgroup.Group
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			results[i] = vm.runInject(code, t)
			return nil
		})
	}
	_ = g.Wait()

	var failures []*serrors.Error
	for _, r := range results {
		if r != nil {
			failures = append(failures, r)
		}
	}
	if len(failures) > 0 {
		return serrors.Injected(failures, len(targets))
	}
	return nil
}

// popInjectTargets pops the shared code argument for inject/injectN/
// pinjectN, then resolves the top n stack positions to live SubStack
// refs without removing them. Returned in bottom-to-top (deepest-first)
// order.
func (vm *VM) popInjectTargets(n int) (*bytecode.Chunk, []value.SubStackRef, *serrors.Error) {
	codeVal, ok := vm.Stack.Pop()
	if !ok {
		return nil, nil, serrors.New(serrors.StackUnderflow, "inject: expected quoted code")
	}
	if codeVal.Kind != value.KindQuoted {
		vm.Stack.Push(codeVal)
		return nil, nil, serrors.New(serrors.InvalidOperands, "inject: expected quoted code")
	}
	code, cerr := compileQuoted(codeVal)
	if cerr != nil {
		vm.Stack.Push(codeVal)
		return nil, nil, cerr
	}
	if n < 1 || vm.Stack.Len() < n {
		vm.Stack.Push(codeVal)
		return nil, nil, serrors.New(serrors.StackUnderflow, "inject: not enough stack targets")
	}
	targets := make([]value.SubStackRef, n)
	for i := 0; i < n; i++ {
		depth := n - 1 - i // targets[0] is the deepest of the n (bottom-most)
		v, _ := vm.Stack.At(depth)
		if v.Kind != value.KindSubStack {
			vm.Stack.Push(codeVal)
			return nil, nil, serrors.New(serrors.InvalidOperands, "inject: expected stacks at every target position")
		}
		targets[i] = v.Sub
	}
	return code, targets, nil
}

// runInject executes code with the VM's operand stack temporarily swapped
// for ref's contents, sharing the dictionary and arena with the caller.
func (vm *VM) runInject(code *bytecode.Chunk, ref value.SubStackRef) *serrors.Error {
	sub, ok := vm.Arena.Deref(ref)
	if !ok {
		return serrors.New(serrors.InvalidOperands, "inject: stale stack reference")
	}
	child := &VM{Stack: sub, Arena: vm.Arena, Words: vm.Words, Stdout: vm.Stdout, depth: vm.depth}
	if err := child.enterCall(); err != nil {
		return err
	}
	defer child.exitCall()
	return child.Exec(code)
}
