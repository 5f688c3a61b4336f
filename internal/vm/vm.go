// Package vm executes a compiled bytecode.Chunk against an operand stack
// and a word dictionary (spec.md §4.H). Execution is a plain iterative
// loop over an instruction slice; recursion happens only when a word
// Call, apply, if, loop, times, dip, try, or inject needs to run another
// instruction slice within the same interpreter state.
package vm

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"

	"sscript/internal/bytecode"
	"sscript/internal/compiler"
	"sscript/internal/dictionary"
	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

// maxCallDepth bounds the host call stack consumed by recursive Call /
// apply / if / loop / times / dip / try / inject chains (SPEC_FULL.md §9
// "Recursion depth" note): the reference recurses through its own native
// call stack with no explicit limit, so a conforming Go port needs one to
// turn runaway recursion into a reported error instead of a crash.
const maxCallDepth = 4096

// VM is one interpreter state: an operand stack, a SubStack arena, and a
// word dictionary, shared across every nested execution (apply, dip, if,
// loop, times, try, Call) per spec.md §5.
type VM struct {
	Stack *value.Stack
	Arena *value.Arena
	Words *dictionary.Dictionary

	Stdout *os.File
	depth  int

	// LastSaveBytes is the number of bytes written by the most recent
	// save, for the CLI's verbose humanized byte-count report (SPEC_FULL.md
	// §6). Zero until the first save.
	LastSaveBytes int64
}

// New returns a VM with an empty stack, a fresh arena, and an empty
// dictionary, writing print/printall output to os.Stdout.
func New() *VM {
	return &VM{
		Stack:  value.NewStack(),
		Arena:  value.NewArena(),
		Words:  dictionary.New(),
		Stdout: os.Stdout,
	}
}

// Run compiles and executes source against the VM's current state.
func (vm *VM) Run(source string) *serrors.Error {
	chunk, cerr := compiler.Compile(source)
	if cerr != nil {
		return cerr
	}
	return vm.Exec(chunk)
}

// Exec runs chunk's instructions in order against the current state.
func (vm *VM) Exec(chunk *bytecode.Chunk) *serrors.Error {
	for i := 0; i < len(chunk.Code); i++ {
		if err := vm.step(chunk.Code[i]); err != nil {
			return err
		}
	}
	return nil
}

// enterCall increments the recursion guard, returning an error instead of
// entering when the limit is reached. Every recursive entry point (Call,
// apply, if/loop/times bodies, dip, try, inject) must pair this with a
// deferred exitCall.
func (vm *VM) enterCall() *serrors.Error {
	if vm.depth >= maxCallDepth {
		return serrors.New(serrors.InvalidInstruction, "recursion depth exceeded")
	}
	vm.depth++
	return nil
}

func (vm *VM) exitCall() { vm.depth-- }

// step dispatches a single instruction. Kernel ops live in kernel_*.go;
// control-flow, SubStack, dictionary, and I/O ops live in control.go.
func (vm *VM) step(instr bytecode.Instruction) *serrors.Error {
	switch instr.Op {
	case bytecode.OpPushInt:
		vm.Stack.Push(value.Int(instr.Int))
		return nil
	case bytecode.OpPushFloat:
		vm.Stack.Push(value.Float(instr.Float))
		return nil
	case bytecode.OpPushBool:
		vm.Stack.Push(value.Bool(instr.Bool))
		return nil
	case bytecode.OpPushNone:
		vm.Stack.Push(value.None())
		return nil
	case bytecode.OpPushString:
		vm.Stack.Push(value.Str(instr.String))
		return nil
	case bytecode.OpPushQuoted:
		vm.Stack.Push(value.Quoted(instr.String, nil))
		return nil
	case bytecode.OpPushStackLiteral:
		return vm.execStackLiteral(instr)
	case bytecode.OpTrue:
		vm.Stack.Push(value.Bool(true))
		return nil
	case bytecode.OpFalse:
		vm.Stack.Push(value.Bool(false))
		return nil

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod, bytecode.OpPow:
		return vm.binaryMath(instr.Op)
	case bytecode.OpSqrt, bytecode.OpExp, bytecode.OpLog, bytecode.OpLog2, bytecode.OpLog10,
		bytecode.OpSin, bytecode.OpCos, bytecode.OpTan, bytecode.OpArcSin, bytecode.OpArcCos, bytecode.OpArcTan,
		bytecode.OpSinh, bytecode.OpCosh, bytecode.OpTanh, bytecode.OpArcSinh, bytecode.OpArcCosh, bytecode.OpArcTanh,
		bytecode.OpOpposite, bytecode.OpFactorial, bytecode.OpGamma, bytecode.OpToInt:
		return vm.unaryMath(instr.Op)

	case bytecode.OpAnd, bytecode.OpOr, bytecode.OpXor:
		return vm.binaryBool(instr.Op)
	case bytecode.OpNot:
		return vm.opNot()
	case bytecode.OpEq, bytecode.OpNotEq:
		return vm.equality(instr.Op)
	case bytecode.OpLt, bytecode.OpGt, bytecode.OpLtEq, bytecode.OpGtEq:
		return vm.comparison(instr.Op)

	case bytecode.OpSize:
		vm.Stack.Push(value.Int(int64(vm.Stack.Len())))
		return nil
	case bytecode.OpEmpty:
		vm.Stack.Push(value.Bool(vm.Stack.IsEmpty()))
		return nil
	case bytecode.OpLast:
		vm.Stack.Push(value.Bool(vm.Stack.Len() == 1))
		return nil
	case bytecode.OpDup:
		return vm.opDupN(0)
	case bytecode.OpDupN:
		return vm.opDupN(instr.N)
	case bytecode.OpDupCond:
		return vm.opDupCond(instr.Code)
	case bytecode.OpSwap:
		return vm.opSwapN(1)
	case bytecode.OpSwapN:
		return vm.opSwapN(instr.N)
	case bytecode.OpSwapCond:
		return vm.opSwapCond(instr.Code)
	case bytecode.OpDrop:
		return vm.opDrop()
	case bytecode.OpClear:
		vm.Stack.Clear()
		return nil
	case bytecode.OpRoll:
		return vm.opRoll()
	case bytecode.OpTop:
		return vm.opTop()
	case bytecode.OpDigN:
		return vm.opDigN(instr.N)
	case bytecode.OpDigCond:
		return vm.opDigCond(instr.Code)
	case bytecode.OpQuote:
		return vm.opQuote()
	case bytecode.OpCompose:
		return vm.opCompose()
	case bytecode.OpComposeCond:
		return vm.opComposeCond(instr.Code)
	case bytecode.OpApply:
		return vm.opApply()
	case bytecode.OpSplit:
		return vm.opSplit()
	case bytecode.OpSplitCond:
		return vm.opSplitCond(instr.Code)

	case bytecode.OpGetType:
		return vm.opGetType()
	case bytecode.OpTypeInstr:
		vm.Stack.Push(value.TypeVal(value.KindQuoted))
		return nil
	case bytecode.OpTypeInt:
		vm.Stack.Push(value.TypeVal(value.KindInt))
		return nil
	case bytecode.OpTypeFloat:
		vm.Stack.Push(value.TypeVal(value.KindFloat))
		return nil
	case bytecode.OpTypeBool:
		vm.Stack.Push(value.TypeVal(value.KindBool))
		return nil
	case bytecode.OpTypeStr:
		vm.Stack.Push(value.TypeVal(value.KindString))
		return nil
	case bytecode.OpTypeType:
		vm.Stack.Push(value.TypeVal(value.KindType))
		return nil
	case bytecode.OpTypeNone:
		vm.Stack.Push(value.TypeVal(value.KindNone))
		return nil
	case bytecode.OpTypeStack:
		vm.Stack.Push(value.TypeVal(value.KindSubStack))
		return nil

	case bytecode.OpIf:
		return vm.opIf()
	case bytecode.OpIfCond:
		return vm.opIfCond(instr.Code)
	case bytecode.OpLoop:
		return vm.opLoop()
	case bytecode.OpLoopCond:
		return vm.opLoopCond(instr.Code)
	case bytecode.OpTimes:
		return vm.opTimes(instr.Code)
	case bytecode.OpDip:
		return vm.opDip()
	case bytecode.OpTry:
		return vm.opTry()
	case bytecode.OpNop:
		return nil
	case bytecode.OpExit:
		return serrors.New(serrors.ProgramExit, "exit")

	case bytecode.OpNewStack:
		return vm.opNewStack()
	case bytecode.OpPush:
		return vm.opPush()
	case bytecode.OpPop:
		return vm.opPop()
	case bytecode.OpInject:
		return vm.opInject()
	case bytecode.OpInjectN:
		return vm.opInjectN(instr.N)
	case bytecode.OpPInjectN:
		return vm.opPInjectN(instr.N)
	case bytecode.OpCompress:
		return vm.opCompress()

	case bytecode.OpDefine:
		return vm.opDefine(instr.Name)
	case bytecode.OpDelete:
		vm.Words.Delete(instr.Name)
		return nil
	case bytecode.OpIsDef:
		vm.Stack.Push(value.Bool(vm.Words.Contains(instr.Name)))
		return nil
	case bytecode.OpCall:
		return vm.opCall(instr.Name)
	case bytecode.OpLoad:
		return vm.opLoad(instr.Name)
	case bytecode.OpSave:
		return vm.opSave(instr.Name)

	case bytecode.OpPrint:
		return vm.opPrint()
	case bytecode.OpPrintAll:
		return vm.opPrintAll()
	}
	return serrors.Newf(serrors.InvalidInstruction, "unhandled opcode %s", instr.Op)
}

func (vm *VM) execStackLiteral(instr bytecode.Instruction) *serrors.Error {
	if err := vm.enterCall(); err != nil {
		return err
	}
	defer vm.exitCall()

	inner := value.NewStack()
	outer := vm.Stack
	vm.Stack = inner
	err := vm.Exec(instr.Code)
	vm.Stack = outer
	if err != nil {
		return err
	}
	ref := vm.Arena.Put(inner)
	vm.Stack.Push(value.SubStack(ref))
	return nil
}

func (vm *VM) opCall(name string) *serrors.Error {
	body, ok := vm.Words.Get(name)
	if !ok {
		return serrors.Newf(serrors.InvalidInstruction, "unknown word %q", name)
	}
	if err := vm.enterCall(); err != nil {
		return err
	}
	defer vm.exitCall()
	return vm.Exec(body)
}

func (vm *VM) opDefine(name string) *serrors.Error {
	q, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "define: expected quoted body")
	}
	if q.Kind != value.KindQuoted {
		vm.Stack.Push(q)
		return serrors.New(serrors.InvalidOperands, "define: expected quoted body")
	}
	body, cerr := compiler.Compile(q.S)
	if cerr != nil {
		vm.Stack.Push(q)
		return cerr
	}
	vm.Words.Set(name, body)
	return nil
}

func (vm *VM) opLoad(path string) *serrors.Error {
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		wrapped := pkgerrors.Wrapf(rerr, "load %s", path)
		if os.IsNotExist(rerr) {
			return serrors.Wrapf(wrapped, serrors.FileNotFound, "load: %s", path)
		}
		return serrors.Wrapf(wrapped, serrors.IOError, "load: %v", rerr)
	}
	return vm.Run(string(data))
}

// opSave writes the stack, space-separated, to path and reports the byte
// count written via vm.LastSaveBytes so the CLI can humanize it in
// verbose mode.
func (vm *VM) opSave(path string) *serrors.Error {
	f, cerr := os.Create(path)
	if cerr != nil {
		return serrors.Wrapf(pkgerrors.Wrapf(cerr, "create %s", path), serrors.FileNotCreatable, "save: %s", path)
	}
	defer f.Close()

	var written int64
	for i, v := range vm.Stack.Content {
		if v.Kind == value.KindSubStack {
			continue
		}
		if i > 0 {
			n, werr := f.WriteString(" ")
			written += int64(n)
			if werr != nil {
				return serrors.Wrapf(pkgerrors.Wrapf(werr, "write %s", path), serrors.IOError, "save: %v", werr)
			}
		}
		n, werr := f.WriteString(v.Text(vm.Arena))
		written += int64(n)
		if werr != nil {
			return serrors.Wrapf(pkgerrors.Wrapf(werr, "write %s", path), serrors.IOError, "save: %v", werr)
		}
	}
	vm.LastSaveBytes = written
	return nil
}

func (vm *VM) opPrint() *serrors.Error {
	top, ok := vm.Stack.Peek()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "print: empty stack")
	}
	fmt.Fprintln(vm.Stdout, top.Text(vm.Arena))
	return nil
}

func (vm *VM) opPrintAll() *serrors.Error {
	for i := len(vm.Stack.Content) - 1; i >= 0; i-- {
		fmt.Fprintln(vm.Stdout, vm.Stack.Content[i].Text(vm.Arena))
	}
	return nil
}
