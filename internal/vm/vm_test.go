package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

func popInt(t *testing.T, m *VM) int64 {
	t.Helper()
	v, ok := m.Stack.Pop()
	assert.True(t, ok, "expected a value on the stack")
	assert.Equal(t, value.KindInt, v.Kind)
	return v.I
}

func TestArithmeticIntStaysInt(t *testing.T) {
	m := New()
	err := m.Run("3 4 +")
	assert.Nil(t, err)
	assert.Equal(t, int64(7), popInt(t, m))
}

func TestDivisionAlwaysFloat(t *testing.T) {
	m := New()
	err := m.Run("7 2 /")
	assert.Nil(t, err)
	v, ok := m.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, value.KindFloat, v.Kind)
	assert.InDelta(t, 3.5, v.F, 1e-9)
}

func TestModuloRequiresInts(t *testing.T) {
	m := New()
	err := m.Run("7.0 2 %")
	assert.NotNil(t, err)
	assert.Equal(t, serrors.InvalidOperands, err.Kind)
	// Operands are restored in original order on failure.
	assert.Equal(t, 2, m.Stack.Len())
	a, _ := m.Stack.At(1)
	b, _ := m.Stack.At(0)
	assert.Equal(t, value.KindFloat, a.Kind)
	assert.Equal(t, value.KindInt, b.Kind)
}

func TestDivisionByZero(t *testing.T) {
	m := New()
	err := m.Run("1 0 /")
	assert.NotNil(t, err)
	assert.Equal(t, serrors.ValueError, err.Kind)
}

func TestBooleanAndRestoresOnMismatch(t *testing.T) {
	m := New()
	err := m.Run("true 1 and")
	assert.NotNil(t, err)
	assert.Equal(t, serrors.InvalidOperands, err.Kind)
	assert.Equal(t, 2, m.Stack.Len())
}

func TestEqualityNeverErrorsOnKindMismatch(t *testing.T) {
	m := New()
	err := m.Run(`1 "1" ==`)
	assert.Nil(t, err)
	v, ok := m.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, value.KindBool, v.Kind)
	assert.False(t, v.B)
}

func TestDupSwapDrop(t *testing.T) {
	m := New()
	err := m.Run("1 2 dup")
	assert.Nil(t, err)
	assert.Equal(t, 3, m.Stack.Len())
	assert.Equal(t, int64(2), popInt(t, m))
	assert.Equal(t, int64(2), popInt(t, m))
	assert.Equal(t, int64(1), popInt(t, m))

	m2 := New()
	err = m2.Run("1 2 swap")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), popInt(t, m2))
	assert.Equal(t, int64(2), popInt(t, m2))

	m3 := New()
	err = m3.Run("1 2 drop")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), popInt(t, m3))
}

func TestDupNSwapNDigN(t *testing.T) {
	m := New()
	err := m.Run("1 2 3 dup2")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), popInt(t, m))
	assert.Equal(t, int64(3), popInt(t, m))
	assert.Equal(t, int64(2), popInt(t, m))
	assert.Equal(t, int64(1), popInt(t, m))

	m3 := New()
	err = m3.Run("1 2 3 4 swap2")
	assert.Nil(t, err)
	assert.Equal(t, int64(2), popInt(t, m3))
	assert.Equal(t, int64(3), popInt(t, m3))
	assert.Equal(t, int64(4), popInt(t, m3))
	assert.Equal(t, int64(1), popInt(t, m3))

	m2 := New()
	err = m2.Run("1 2 3 dig1")
	assert.Nil(t, err)
	assert.Equal(t, int64(2), popInt(t, m2))
	assert.Equal(t, int64(3), popInt(t, m2))
	assert.Equal(t, int64(1), popInt(t, m2))
}

func TestDefineCallIsdefDelete(t *testing.T) {
	m := New()
	err := m.Run(`[1 1 +] define(double)`)
	assert.Nil(t, err)
	err = m.Run("isdef(double)")
	assert.Nil(t, err)
	v, ok := m.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, value.KindBool, v.Kind)
	assert.True(t, v.B)

	err = m.Run("double")
	assert.Nil(t, err)
	assert.Equal(t, int64(2), popInt(t, m))

	err = m.Run("delete(double) isdef(double)")
	assert.Nil(t, err)
	v, _ = m.Stack.Pop()
	assert.False(t, v.B)
}

func TestUnknownWordIsInvalidInstruction(t *testing.T) {
	m := New()
	err := m.Run("nosuchword")
	assert.NotNil(t, err)
	assert.Equal(t, serrors.InvalidInstruction, err.Kind)
}

func TestQuoteApplyRoundTrip(t *testing.T) {
	m := New()
	err := m.Run("[1 2 +] apply")
	assert.Nil(t, err)
	assert.Equal(t, int64(3), popInt(t, m))
}

func TestStringSplitFields(t *testing.T) {
	m := New()
	err := m.Run(`"a b c" split`)
	assert.Nil(t, err)
	assert.Equal(t, 3, m.Stack.Len())
}

// TestSplitWithDelimiterDropsEmptyPieces exercises spec.md §8 scenario 10
// end to end through VM.Run: the delimiter is popped from the top, the
// string from beneath it, with nothing left stranded on the stack.
func TestSplitWithDelimiterDropsEmptyPieces(t *testing.T) {
	m := New()
	err := m.Run(`"a,b,,c" "," split(",")`)
	assert.Nil(t, err)
	assert.Equal(t, 3, m.Stack.Len())
	c, _ := m.Stack.Pop()
	b, _ := m.Stack.Pop()
	a, _ := m.Stack.Pop()
	assert.Equal(t, "a", a.S)
	assert.Equal(t, "b", b.S)
	assert.Equal(t, "c", c.S)
}

func TestGetTypePeeksWithoutPopping(t *testing.T) {
	m := New()
	err := m.Run("5 type")
	assert.Nil(t, err)
	assert.Equal(t, 2, m.Stack.Len())
	typ, _ := m.Stack.Pop()
	assert.Equal(t, value.KindType, typ.Kind)
	n, _ := m.Stack.Pop()
	assert.Equal(t, int64(5), n.I)
}
