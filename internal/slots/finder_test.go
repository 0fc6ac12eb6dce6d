package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sx "github.com/oxhq/astgrep/internal/sitter"
)

func TestFinderFor_FindFirstAndAll(t *testing.T) {
	e := New()
	patHandle := e.CompilePattern(sx.LangJavaScript, []byte("foo($X)"))
	require.NotZero(t, patHandle)

	srcHandle := e.CompileSource(sx.LangJavaScript, []byte("foo(1); foo(2);"))
	require.NotZero(t, srcHandle)
	src := e.Source(srcHandle)

	finder, ok := e.FinderFor(patHandle, src.Source())
	require.True(t, ok)

	root := src.Root()
	found, ok := finder.FindFirstInRange(root, int(root.StartByte()), int(root.EndByte()))
	require.True(t, ok)
	assert.Equal(t, "foo(1)", found.Content(src.Source()))

	all := finder.FindAllInRange(root, int(root.StartByte()), int(root.EndByte()))
	assert.Len(t, all, 2)
}

func TestFinderFor_InvalidHandle(t *testing.T) {
	e := New()
	_, ok := e.FinderFor(99, nil)
	assert.False(t, ok)
}
