package pattern

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/astgrep/internal/ast"
)

func TestBindings_BindAndLookup(t *testing.T) {
	var b Bindings
	assert.True(t, b.Bind("X", "foo", ast.Range{}))
	got, ok := b.Lookup("X")
	assert.True(t, ok)
	assert.Equal(t, "foo", got.Text)
	assert.Equal(t, 1, b.Len())
}

func TestBindings_RepeatSameNameRequiresEqualText(t *testing.T) {
	var b Bindings
	assert.True(t, b.Bind("X", "foo", ast.Range{}))
	assert.True(t, b.Bind("X", "foo", ast.Range{}), "re-binding the same text succeeds")
	assert.False(t, b.Bind("X", "bar", ast.Range{}), "re-binding different text fails")
	assert.Equal(t, 1, b.Len())
}

func TestBindings_CapacityExceeded(t *testing.T) {
	var b Bindings
	for i := 0; i < MaxBindings; i++ {
		name := string(rune('A' + i))
		assert.True(t, b.Bind(name, "v", ast.Range{}))
	}
	assert.False(t, b.Bind("ZZ", "v", ast.Range{}), "binding beyond MaxBindings must fail")
	assert.Equal(t, MaxBindings, b.Len())
}

func TestBindings_TextTooLong(t *testing.T) {
	var b Bindings
	text := strings.Repeat("a", MaxBindingText+1)
	assert.False(t, b.Bind("X", text, ast.Range{}))
	assert.Equal(t, 0, b.Len())
}

func TestBindings_CloneIsIndependent(t *testing.T) {
	var b Bindings
	b.Bind("X", "foo", ast.Range{})
	clone := b.Clone()
	b.Bind("Y", "bar", ast.Range{})
	assert.Equal(t, 1, clone.Len())
	assert.Equal(t, 2, b.Len())
}

func TestBindings_Names(t *testing.T) {
	var b Bindings
	b.Bind("X", "1", ast.Range{})
	b.Bind("Y", "2", ast.Range{})
	assert.Equal(t, []string{"X", "Y"}, b.Names())
}
