package ast

import (
	"testing"

	tsitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/astgrep/internal/sitter"
)

func TestInfoOf_NilNode(t *testing.T) {
	info := InfoOf(nil)
	assert.Empty(t, info.Kind)
}

func TestChildrenAndNamedChildren(t *testing.T) {
	tree, ok := sitter.Parse(sitter.LangJavaScript, []byte("function f(a, b) { return a + b; }"))
	require.True(t, ok)
	defer tree.Close()

	root := tree.Root()
	fn := root.NamedChild(0)
	require.NotNil(t, fn)

	kids := Children(fn)
	named := NamedChildren(fn)
	assert.NotEmpty(t, kids)
	assert.NotEmpty(t, named)
	assert.GreaterOrEqual(t, len(kids), len(named))
}

func TestLocate_ExactRange(t *testing.T) {
	tree, ok := sitter.Parse(sitter.LangJavaScript, []byte("const x = 1;"))
	require.True(t, ok)
	defer tree.Close()

	root := tree.Root()
	n, ok := Locate(root, int(root.StartByte()), int(root.EndByte()), false)
	require.True(t, ok)
	assert.Equal(t, "program", n.Type())
}

func TestLocate_IsRootShortCircuits(t *testing.T) {
	tree, ok := sitter.Parse(sitter.LangJavaScript, []byte("x"))
	require.True(t, ok)
	defer tree.Close()

	root := tree.Root()
	n, ok := Locate(root, 999, 999, true)
	require.True(t, ok)
	assert.Same(t, root, n)
}

func TestLocate_NoExactMatch(t *testing.T) {
	tree, ok := sitter.Parse(sitter.LangJavaScript, []byte("const x = 1;"))
	require.True(t, ok)
	defer tree.Close()

	_, ok = Locate(tree.Root(), 2, 3, false)
	assert.False(t, ok)
}

func TestLocate_NilRoot(t *testing.T) {
	_, ok := Locate(nil, 0, 1, false)
	assert.False(t, ok)
}

func TestParentNextPrev(t *testing.T) {
	tree, ok := sitter.Parse(sitter.LangJavaScript, []byte("let a; let b; let c;"))
	require.True(t, ok)
	defer tree.Close()

	root := tree.Root()
	second := root.NamedChild(1)
	require.NotNil(t, second)

	assert.Same(t, root, Parent(second))
	assert.NotNil(t, Next(second))
	assert.NotNil(t, Prev(second))
	assert.Nil(t, Parent(nil))
	assert.Nil(t, Next(nil))
	assert.Nil(t, Prev(nil))
}

func TestFieldChild(t *testing.T) {
	tree, ok := sitter.Parse(sitter.LangJavaScript, []byte("function f() {}"))
	require.True(t, ok)
	defer tree.Close()

	fn := tree.Root().NamedChild(0)
	name := FieldChild(fn, "name")
	require.NotNil(t, name)
	assert.Equal(t, "f", name.Content(tree.Source))
}

// fixedFinder implements Finder against a fixed node set, independent of any
// real pattern search, so Find/FindAll/Matches can be exercised without
// internal/pattern.
type fixedFinder struct {
	first   *tsitter.Node
	firstOK bool
	all     []*tsitter.Node
}

func (f fixedFinder) FindFirstInRange(root *tsitter.Node, start, end int) (*tsitter.Node, bool) {
	return f.first, f.firstOK
}

func (f fixedFinder) FindAllInRange(root *tsitter.Node, start, end int) []*tsitter.Node {
	return f.all
}

func TestFindFindAllMatches(t *testing.T) {
	tree, ok := sitter.Parse(sitter.LangJavaScript, []byte("let a; let b;"))
	require.True(t, ok)
	defer tree.Close()

	root := tree.Root()
	first := root.NamedChild(0)
	second := root.NamedChild(1)

	finder := fixedFinder{first: first, firstOK: true, all: []*tsitter.Node{first, second}}

	found, ok := Find(finder, root, 0, 1)
	require.True(t, ok)
	assert.Same(t, first, found)

	all := FindAll(finder, root, 0, 1)
	assert.Len(t, all, 2)

	_, ok = Find(finder, nil, 0, 1)
	assert.False(t, ok)
	assert.Nil(t, FindAll(finder, nil, 0, 1))

	selfMatching := fixedFinder{all: []*tsitter.Node{first}}
	assert.True(t, Matches(selfMatching, first))
	assert.False(t, Matches(selfMatching, second))
	assert.False(t, Matches(selfMatching, nil))
}
