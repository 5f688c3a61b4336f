package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	serrors "sscript/internal/errors"
	"sscript/internal/value"
)

func TestStackPushPop(t *testing.T) {
	m := New()
	err := m.Run("stack 1 push 2 push")
	assert.Nil(t, err)
	assert.Equal(t, 1, m.Stack.Len())
	top, _ := m.Stack.Peek()
	assert.Equal(t, value.KindSubStack, top.Kind)

	err = m.Run("pop")
	assert.Nil(t, err)
	v, _ := m.Stack.Pop()
	assert.Equal(t, int64(2), v.I)

	sub, _ := m.Stack.Peek()
	assert.Equal(t, value.KindSubStack, sub.Kind)
}

func TestPopOnEmptySubStackPushesNone(t *testing.T) {
	m := New()
	err := m.Run("stack pop")
	assert.Nil(t, err)
	v, _ := m.Stack.Pop()
	assert.Equal(t, value.KindNone, v.Kind)
}

func TestInjectRunsCodeAgainstTargetContents(t *testing.T) {
	m := New()
	err := m.Run("stack 1 push 2 push [+] inject")
	assert.Nil(t, err)
	sub, ok := m.Stack.Peek()
	assert.True(t, ok)
	assert.Equal(t, value.KindSubStack, sub.Kind)
	content, ok := m.Arena.Deref(sub.Sub)
	assert.True(t, ok)
	assert.Equal(t, 1, content.Len())
	assert.Equal(t, int64(3), content.Content[0].I)
}

func TestInjectPropagatesErrorUnwrapped(t *testing.T) {
	m := New()
	err := m.Run(`stack 1 push ["x" +] inject`)
	assert.NotNil(t, err)
	assert.Equal(t, serrors.InvalidOperands, err.Kind)
	assert.Nil(t, err.Inject)
}

func TestInjectNAggregatesFailures(t *testing.T) {
	m := New()
	err := m.Run(`stack 1 push stack "x" push [1 +] inject2`)
	assert.NotNil(t, err)
	assert.Equal(t, serrors.InjectError, err.Kind)
	assert.Len(t, err.Inject, 1)
}

func TestPInjectNRunsAllTargetsConcurrently(t *testing.T) {
	m := New()
	err := m.Run(`stack 1 push stack 2 push [10 +] pinject2`)
	assert.Nil(t, err)
	assert.Equal(t, 2, m.Stack.Len())
	second, _ := m.Stack.At(0)
	first, _ := m.Stack.At(1)
	firstContent, _ := m.Arena.Deref(first.Sub)
	secondContent, _ := m.Arena.Deref(second.Sub)
	assert.Equal(t, int64(11), firstContent.Content[0].I)
	assert.Equal(t, int64(12), secondContent.Content[0].I)
}

func TestComposeJoinsQuotedWithSpace(t *testing.T) {
	m := New()
	err := m.Run("[1] [2 +] compose apply")
	assert.Nil(t, err)
	v, _ := m.Stack.Pop()
	assert.Equal(t, int64(3), v.I)
}

func TestComposeJoinsStrings(t *testing.T) {
	m := New()
	err := m.Run(`"foo" "bar" compose`)
	assert.Nil(t, err)
	v, _ := m.Stack.Pop()
	assert.Equal(t, value.KindString, v.Kind)
	assert.Equal(t, "foobar", v.S)
}

func TestCompressFlattensStackIntoSubStack(t *testing.T) {
	m := New()
	err := m.Run("1 2 3 compress")
	assert.Nil(t, err)
	assert.Equal(t, 1, m.Stack.Len())
	top, _ := m.Stack.Pop()
	assert.Equal(t, value.KindSubStack, top.Kind)
	content, ok := m.Arena.Deref(top.Sub)
	assert.True(t, ok)
	assert.Equal(t, 3, content.Len())
}
