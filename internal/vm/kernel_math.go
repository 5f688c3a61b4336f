package vm

import (
	"math"

	"sscript/internal/bytecode"
	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

// lanczosG and lanczosCoeff are the reference's Lanczos approximation
// constants (original math_op.rs gamma_function), g=7 with a nine-term
// coefficient table.
const lanczosG = 7

var lanczosCoeff = [9]float64{
	0.99999999999980993,
	676.5203681218851,
	-1259.1392167224028,
	771.32342877765313,
	-176.61502916214059,
	12.507343278686905,
	-0.13857109526572012,
	9.9843695780195716e-6,
	1.5056327351493116e-7,
}

func gamma(x float64) float64 {
	if x < 0.5 {
		return math.Pi / (math.Sin(math.Pi*x) * gamma(1-x))
	}
	x -= 1
	a := lanczosCoeff[0]
	t := x + lanczosG + 0.5
	for i := 1; i < len(lanczosCoeff); i++ {
		a += lanczosCoeff[i] / (x + float64(i))
	}
	return math.Sqrt(2*math.Pi) * math.Pow(t, x+0.5) * math.Exp(-t) * a
}

// factorial matches the reference's fast path: a direct u64 product for
// n < 21 (the largest factorial that fits in 64 bits), an iterative f64
// product above that, where precision is already lost to rounding.
func factorial(n int64) float64 {
	if n < 21 {
		var acc uint64 = 1
		for i := uint64(2); i <= uint64(n); i++ {
			acc *= i
		}
		return float64(acc)
	}
	acc := 1.0
	for i := int64(2); i <= n; i++ {
		acc *= float64(i)
	}
	return acc
}

// binaryMath implements +, -, *, /, %, pow. All pop two operands (b on
// top, a beneath) and push one result. On a type or domain error both
// operands are pushed back in their original a,b order (spec.md §9).
func (vm *VM) binaryMath(op bytecode.Op) *serrors.Error {
	b, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "binary math: expected two operands")
	}
	a, ok := vm.Stack.Pop()
	if !ok {
		vm.Stack.Push(b)
		return serrors.New(serrors.StackUnderflow, "binary math: expected two operands")
	}
	restore := func() {
		vm.Stack.Push(a)
		vm.Stack.Push(b)
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		restore()
		return serrors.New(serrors.InvalidOperands, "binary math: expected two numbers")
	}

	switch op {
	case bytecode.OpMod:
		if a.Kind != value.KindInt || b.Kind != value.KindInt {
			restore()
			return serrors.New(serrors.InvalidOperands, "%: expected two integers")
		}
		if b.I == 0 {
			restore()
			return serrors.New(serrors.ValueError, "%: division by zero")
		}
		vm.Stack.Push(value.Int(a.I % b.I))
		return nil
	case bytecode.OpDiv:
		if b.AsFloat() == 0 {
			restore()
			return serrors.New(serrors.ValueError, "/: division by zero")
		}
		vm.Stack.Push(value.Float(a.AsFloat() / b.AsFloat()))
		return nil
	}

	if a.Kind == value.KindInt && b.Kind == value.KindInt {
		switch op {
		case bytecode.OpAdd:
			vm.Stack.Push(value.Int(a.I + b.I))
		case bytecode.OpSub:
			vm.Stack.Push(value.Int(a.I - b.I))
		case bytecode.OpMul:
			vm.Stack.Push(value.Int(a.I * b.I))
		case bytecode.OpPow:
			vm.Stack.Push(value.Float(math.Pow(a.AsFloat(), b.AsFloat())))
		}
		return nil
	}

	switch op {
	case bytecode.OpAdd:
		vm.Stack.Push(value.Float(a.AsFloat() + b.AsFloat()))
	case bytecode.OpSub:
		vm.Stack.Push(value.Float(a.AsFloat() - b.AsFloat()))
	case bytecode.OpMul:
		vm.Stack.Push(value.Float(a.AsFloat() * b.AsFloat()))
	case bytecode.OpPow:
		vm.Stack.Push(value.Float(math.Pow(a.AsFloat(), b.AsFloat())))
	}
	return nil
}

// unaryMath implements the single-operand numeric words: sqrt, exp, log
// family, trig/hyperbolic families, --, !, gamma, int. All pop one
// operand and push one result; on error the operand is restored.
func (vm *VM) unaryMath(op bytecode.Op) *serrors.Error {
	a, ok := vm.Stack.Pop()
	if !ok {
		return serrors.New(serrors.StackUnderflow, "unary math: expected one operand")
	}
	if !a.IsNumeric() {
		vm.Stack.Push(a)
		return serrors.New(serrors.InvalidOperands, "unary math: expected a number")
	}
	x := a.AsFloat()

	switch op {
	case bytecode.OpOpposite:
		if a.Kind == value.KindInt {
			vm.Stack.Push(value.Int(-a.I))
		} else {
			vm.Stack.Push(value.Float(-x))
		}
		return nil
	case bytecode.OpToInt:
		vm.Stack.Push(value.Int(int64(x)))
		return nil
	case bytecode.OpFactorial:
		if a.Kind != value.KindInt {
			vm.Stack.Push(a)
			return serrors.New(serrors.InvalidOperands, "!: expected an integer")
		}
		if a.I < 0 {
			vm.Stack.Push(a)
			return serrors.New(serrors.ValueError, "!: negative operand")
		}
		vm.Stack.Push(value.Float(factorial(a.I)))
		return nil
	case bytecode.OpGamma:
		vm.Stack.Push(value.Float(gamma(x)))
		return nil
	case bytecode.OpSqrt:
		if x < 0 {
			vm.Stack.Push(a)
			return serrors.New(serrors.ValueError, "sqrt: negative operand")
		}
		vm.Stack.Push(value.Float(math.Sqrt(x)))
		return nil
	case bytecode.OpExp:
		vm.Stack.Push(value.Float(math.Exp(x)))
		return nil
	case bytecode.OpLog:
		vm.Stack.Push(value.Float(math.Log(x)))
		return nil
	case bytecode.OpLog2:
		vm.Stack.Push(value.Float(math.Log2(x)))
		return nil
	case bytecode.OpLog10:
		vm.Stack.Push(value.Float(math.Log10(x)))
		return nil
	case bytecode.OpSin:
		vm.Stack.Push(value.Float(math.Sin(x)))
	case bytecode.OpCos:
		vm.Stack.Push(value.Float(math.Cos(x)))
	case bytecode.OpTan:
		vm.Stack.Push(value.Float(math.Tan(x)))
	case bytecode.OpArcSin:
		vm.Stack.Push(value.Float(math.Asin(x)))
	case bytecode.OpArcCos:
		vm.Stack.Push(value.Float(math.Acos(x)))
	case bytecode.OpArcTan:
		vm.Stack.Push(value.Float(math.Atan(x)))
	case bytecode.OpSinh:
		vm.Stack.Push(value.Float(math.Sinh(x)))
	case bytecode.OpCosh:
		vm.Stack.Push(value.Float(math.Cosh(x)))
	case bytecode.OpTanh:
		vm.Stack.Push(value.Float(math.Tanh(x)))
	case bytecode.OpArcSinh:
		vm.Stack.Push(value.Float(math.Asinh(x)))
	case bytecode.OpArcCosh:
		vm.Stack.Push(value.Float(math.Acosh(x)))
	case bytecode.OpArcTanh:
		vm.Stack.Push(value.Float(math.Atanh(x)))
	default:
		vm.Stack.Push(a)
		return serrors.Newf(serrors.InvalidInstruction, "unhandled math op %s", op)
	}
	return nil
}
