package vm

import (
	"sscript/internal/bytecode"
	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

// binaryBool implements and/or/xor: pop two Bool operands, push one Bool.
// On a type error both operands are restored in a,b order.
func (vm *VM) binaryBool(op bytecode.Op) *serrors.Error {
	b, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "boolean op: expected two operands")
	}
	a, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(b)
		return serrors.New(serrors.StackUnderflow, "boolean op: expected two operands")
	}
	if a.Kind != value.KindBool || b.Kind != value.KindBool {
		vm.Stack.Push(a)
		vm.Stack.Push(b)
		return serrors.New(serrors.InvalidOperands, "boolean op: expected two booleans")
	}
	var r bool
	switch op {
	case bytecode.OpAnd:
		r = a.B && b.B
	case bytecode.OpOr:
		r = a.B || b.B
	case bytecode.OpXor:
		r = a.B != b.B
	}
	vm.Stack.Push(value.Bool(r))
	return nil
}

// opNot negates the top Bool, restoring it on a type error.
func (vm *VM) opNot() *serrors.Error {
	a, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "not: expected one operand")
	}
	if a.Kind != value.KindBool {
		vm.Stack.Push(a)
		return serrors.New(serrors.InvalidOperands, "not: expected a boolean")
	}
	vm.Stack.Push(value.Bool(!a.B))
	return nil
}

// equality implements ==/!= using the value-model-wide equality rule
// (cross Int/Float, structural otherwise), never erroring on mismatched
// kinds since "different kinds" is itself a well-defined (false) answer.
func (vm *VM) equality(op bytecode.Op) *serrors.Error {
	b, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "comparison: expected two operands")
	}
	a, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(b)
		return serrors.New(serrors.StackUnderflow, "comparison: expected two operands")
	}
	eq := a.Equal(b, vm.Arena)
	if op == bytecode.OpNotEq {
		eq = !eq
	}
	vm.Stack.Push(value.Bool(eq))
	return nil
}

// comparison implements </>/<=/>=, numeric-only (reference's
// compare_numeric). Non-numeric operands restore in a,b order.
func (vm *VM) comparison(op bytecode.Op) *serrors.Error {
	b, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "comparison: expected two operands")
	}
	a, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(b)
		return serrors.New(serrors.StackUnderflow, "comparison: expected two operands")
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		vm.Stack.Push(a)
		vm.Stack.Push(b)
		return serrors.New(serrors.InvalidOperands, "comparison: expected two numbers")
	}
	af, bf := a.AsFloat(), b.AsFloat()
	var r bool
	switch op {
	case bytecode.OpLt:
		r = af < bf
	case bytecode.OpGt:
		r = af > bf
	case bytecode.OpLtEq:
		r = af <= bf
	case bytecode.OpGtEq:
		r = af >= bf
	}
	vm.Stack.Push(value.Bool(r))
	return nil
}
