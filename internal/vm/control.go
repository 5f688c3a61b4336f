package vm

import (
	"sscript/internal/bytecode"
	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

// opIf pops, in order, the false-branch, the true-branch, and finally the
// condition (so on the stack, bottom to top: cond, true-branch,
// false-branch). A non-Bool condition restores all three in that original
// layout.
func (vm *VM) opIf() *serrors.Error {
	falseBranch, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "if: expected cond and two quoted branches")
	}
	trueBranch, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(falseBranch)
		return serrors.New(serrors.StackUnderflow, "if: expected cond and two quoted branches")
	}
	cond, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(trueBranch)
		vm.Stack.Push(falseBranch)
		return serrors.New(serrors.StackUnderflow, "if: expected cond and two quoted branches")
	}
	if cond.Kind != value.KindBool || trueBranch.Kind != value.KindQuoted || falseBranch.Kind != value.KindQuoted {
		vm.Stack.Push(cond)
		vm.Stack.Push(trueBranch)
		vm.Stack.Push(falseBranch)
		return serrors.New(serrors.InvalidOperands, "if: expected two quoted branches and a boolean")
	}
	branch := falseBranch
	if cond.B {
		branch = trueBranch
	}
	return vm.runQuoted(branch)
}

// opIfCond pops the false-branch and true-branch, then runs code (which
// must leave a Bool on top), pops that Bool, and runs the chosen branch.
func (vm *VM) opIfCond(code *bytecode.Chunk) *serrors.Error {
	falseBranch, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "if(...): expected two quoted branches")
	}
	trueBranch, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(falseBranch)
		return serrors.New(serrors.StackUnderflow, "if(...): expected two quoted branches")
	}
	if trueBranch.Kind != value.KindQuoted || falseBranch.Kind != value.KindQuoted {
		vm.Stack.Push(trueBranch)
		vm.Stack.Push(falseBranch)
		return serrors.New(serrors.InvalidOperands, "if(...): expected two quoted branches")
	}
	if err := vm.enterCall(); err != nil {
		vm.Stack.Push(trueBranch)
		vm.Stack.Push(falseBranch)
		return err
	}
	err := vm.Exec(code)
	vm.exitCall()
	if err != nil {
		return err
	}
	cond, ok := vm.Stack.Pop()
	if !ok || cond.Kind != value.KindBool {
		return serrors.New(serrors.InvalidOperands, "if(...): condition expression must produce a boolean")
	}
	branch := falseBranch
	if cond.B {
		branch = trueBranch
	}
	return vm.runQuoted(branch)
}

// opLoop pops body, then repeatedly runs it and pops a Bool continuation
// flag from the top, stopping when it is false.
func (vm *VM) opLoop() *serrors.Error {
	bodyVal, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "loop: expected quoted body")
	}
	if bodyVal.Kind != value.KindQuoted {
		vm.Stack.Push(bodyVal)
		return serrors.New(serrors.InvalidOperands, "loop: expected quoted body")
	}
	body, cerr := compileQuoted(bodyVal)
	if cerr != nil {
		vm.Stack.Push(bodyVal)
		return cerr
	}
	if err := vm.enterCall(); err != nil {
		return err
	}
	defer vm.exitCall()
	for {
		if err := vm.Exec(body); err != nil {
			return err
		}
		cont, ok := vm.Stack.Pop()
		if !ok || cont.Kind != value.KindBool {
			return serrors.New(serrors.InvalidOperands, "loop: body must leave a boolean on top")
		}
		if !cont.B {
			return nil
		}
	}
}

// opLoopCond pops body, then repeats: run code, pop a Bool; stop if
// false; otherwise run body. The condition runs before every pass,
// including the first.
func (vm *VM) opLoopCond(code *bytecode.Chunk) *serrors.Error {
	bodyVal, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "loop(...): expected quoted body")
	}
	if bodyVal.Kind != value.KindQuoted {
		vm.Stack.Push(bodyVal)
		return serrors.New(serrors.InvalidOperands, "loop(...): expected quoted body")
	}
	body, cerr := compileQuoted(bodyVal)
	if cerr != nil {
		vm.Stack.Push(bodyVal)
		return cerr
	}
	if err := vm.enterCall(); err != nil {
		return err
	}
	defer vm.exitCall()
	for {
		if err := vm.Exec(code); err != nil {
			return err
		}
		cont, ok := vm.Stack.Pop()
		if !ok || cont.Kind != value.KindBool {
			return serrors.New(serrors.InvalidOperands, "loop(...): condition expression must produce a boolean")
		}
		if !cont.B {
			return nil
		}
		if err := vm.Exec(body); err != nil {
			return err
		}
	}
}

// opTimes pops body, runs countExpr, pops an Int n, and runs body n times
// (n<=0 performs zero iterations).
func (vm *VM) opTimes(countExpr *bytecode.Chunk) *serrors.Error {
	bodyVal, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "times(...): expected quoted body")
	}
	if bodyVal.Kind != value.KindQuoted {
		vm.Stack.Push(bodyVal)
		return serrors.New(serrors.InvalidOperands, "times(...): expected quoted body")
	}
	body, cerr := compileQuoted(bodyVal)
	if cerr != nil {
		vm.Stack.Push(bodyVal)
		return cerr
	}
	if err := vm.enterCall(); err != nil {
		return err
	}
	defer vm.exitCall()
	if err := vm.Exec(countExpr); err != nil {
		return err
	}
	n, ok := vm.Stack.Pop()
	if !ok || n.Kind != value.KindInt {
		return serrors.New(serrors.InvalidOperands, "times(...): count expression must produce an integer")
	}
	for i := int64(0); i < n.I; i++ {
		if err := vm.Exec(body); err != nil {
			return err
		}
	}
	return nil
}

// opDip pops code, pops a temp value hidden beneath it, runs code, then
// pushes temp back on top.
func (vm *VM) opDip() *serrors.Error {
	codeVal, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "dip: expected quoted code")
	}
	if codeVal.Kind != value.KindQuoted {
		vm.Stack.Push(codeVal)
		return serrors.New(serrors.InvalidOperands, "dip: expected quoted code")
	}
	temp, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(codeVal)
		return serrors.New(serrors.StackUnderflow, "dip: expected a value beneath the code")
	}
	code, cerr := compileQuoted(codeVal)
	if cerr != nil {
		vm.Stack.Push(temp)
		vm.Stack.Push(codeVal)
		return cerr
	}
	if err := vm.enterCall(); err != nil {
		vm.Stack.Push(temp)
		vm.Stack.Push(codeVal)
		return err
	}
	err := vm.Exec(code)
	vm.exitCall()
	if err != nil {
		return err
	}
	vm.Stack.Push(temp)
	return nil
}

// opTry pops code, snapshots the stack and arena via deep clone, then runs
// code. ProgramExit propagates unconditionally. Any other error rolls the
// stack and arena back to the snapshot and pushes Bool(false); success
// pushes Bool(true) on whatever the run produced. The dictionary is never
// rolled back.
func (vm *VM) opTry() *serrors.Error {
	codeVal, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "try: expected quoted code")
	}
	if codeVal.Kind != value.KindQuoted {
		vm.Stack.Push(codeVal)
		return serrors.New(serrors.InvalidOperands, "try: expected quoted code")
	}
	code, cerr := compileQuoted(codeVal)
	if cerr != nil {
		vm.Stack.Push(codeVal)
		return cerr
	}

	snapshotArena, remap := vm.Arena.Clone()
	snapshotStack := vm.Stack.DeepClone()
	for i, v := range snapshotStack.Content {
		if v.Kind == value.KindSubStack {
			snapshotStack.Content[i].Sub = remap(v.Sub)
		}
	}

	if err := vm.enterCall(); err != nil {
		vm.Stack.Push(codeVal)
		return err
	}
	err := vm.Exec(code)
	vm.exitCall()

	if err != nil && err.Kind == serrors.ProgramExit {
		return err
	}
	if err != nil {
		vm.Stack = snapshotStack
		vm.Arena = snapshotArena
		vm.Stack.Push(value.Bool(false))
		return nil
	}
	vm.Stack.Push(value.Bool(true))
	return nil
}

// runQuoted compiles (using the cache when present) and executes q.
func (vm *VM) runQuoted(q value.Value) *serrors.Error {
	chunk, cerr := compileQuoted(q)
	if cerr != nil {
		return cerr
	}
	if err := vm.enterCall(); err != nil {
		return err
	}
	defer vm.exitCall()
	return vm.Exec(chunk)
}
