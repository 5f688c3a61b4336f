package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

func TestIfPicksTrueBranch(t *testing.T) {
	m := New()
	err := m.Run("true [1] [2] if")
	assert.Nil(t, err)
	v, ok := m.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, int64(1), v.I)
}

func TestIfPicksFalseBranch(t *testing.T) {
	m := New()
	err := m.Run("false [1] [2] if")
	assert.Nil(t, err)
	v, ok := m.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, int64(2), v.I)
}

func TestIfRejectsNonBoolCondition(t *testing.T) {
	m := New()
	err := m.Run("1 [1] [2] if")
	assert.NotNil(t, err)
	assert.Equal(t, serrors.InvalidOperands, err.Kind)
	assert.Equal(t, 3, m.Stack.Len())
}

func TestLoopCountsDown(t *testing.T) {
	m := New()
	err := m.Run("3 [dup 1 - dup 0 >] loop")
	assert.Nil(t, err)
	v, ok := m.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, int64(0), v.I)
}

func TestTimesRunsNTimes(t *testing.T) {
	m := New()
	err := m.Run("0 [1 +] times(3)")
	assert.Nil(t, err)
	v, ok := m.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, int64(3), v.I)
}

func TestTimesZeroOrNegativeRunsNothing(t *testing.T) {
	m := New()
	err := m.Run("41 [1 +] times(0)")
	assert.Nil(t, err)
	v, ok := m.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, int64(41), v.I)

	m2 := New()
	err = m2.Run("41 [1 +] times(-2)")
	assert.Nil(t, err)
	v, ok = m2.Stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, int64(41), v.I)
}

func TestDipHidesAndRestoresTemp(t *testing.T) {
	m := New()
	err := m.Run("1 2 [10 +] dip")
	assert.Nil(t, err)
	assert.Equal(t, 2, m.Stack.Len())
	top, _ := m.Stack.Pop()
	assert.Equal(t, int64(2), top.I)
	under, _ := m.Stack.Pop()
	assert.Equal(t, int64(11), under.I)
}

func TestTryRollsBackOnFailureAndReportsFalse(t *testing.T) {
	m := New()
	err := m.Run(`1 2 [3 "x" +] try`)
	assert.Nil(t, err)
	ok, popped := m.Stack.Pop()
	assert.True(t, popped)
	assert.Equal(t, value.KindBool, ok.Kind)
	assert.False(t, ok.B)
	// Stack rolled back to exactly what it was before try's code ran.
	assert.Equal(t, 2, m.Stack.Len())
	b, _ := m.Stack.Pop()
	a, _ := m.Stack.Pop()
	assert.Equal(t, int64(2), b.I)
	assert.Equal(t, int64(1), a.I)
}

func TestTrySuccessPushesTrueAndKeepsMutation(t *testing.T) {
	m := New()
	err := m.Run(`1 2 [+] try`)
	assert.Nil(t, err)
	ok, _ := m.Stack.Pop()
	assert.True(t, ok.B)
	sum, _ := m.Stack.Pop()
	assert.Equal(t, int64(3), sum.I)
}

func TestTryDoesNotRollBackDictionary(t *testing.T) {
	m := New()
	err := m.Run(`[[1 1 +] define(two) 1 "x" +] try`)
	assert.Nil(t, err)
	ok, _ := m.Stack.Pop()
	assert.False(t, ok.B)
	assert.True(t, m.Words.Contains("two"))
}

func TestProgramExitPropagatesThroughTry(t *testing.T) {
	m := New()
	err := m.Run(`[exit] try`)
	assert.NotNil(t, err)
	assert.Equal(t, serrors.ProgramExit, err.Kind)
}
