package abi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/astgrep/internal/codec"

	sx "github.com/oxhq/astgrep/internal/sitter"
)

func decodeInfo(t *testing.T, buf []byte) (codec.NodeInfoJSON, bool) {
	t.Helper()
	if string(buf) == "null" {
		return codec.NodeInfoJSON{}, false
	}
	var info codec.NodeInfoJSON
	require.NoError(t, json.Unmarshal(buf, &info))
	return info, true
}

func decodeInfoList(t *testing.T, buf []byte) []codec.NodeInfoJSON {
	t.Helper()
	var infos []codec.NodeInfoJSON
	require.NoError(t, json.Unmarshal(buf, &infos))
	return infos
}

func TestNodeRoot(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "let a;")
	require.NotZero(t, srcHandle)

	info, ok := decodeInfo(t, a.NodeRoot(srcHandle))
	require.True(t, ok)
	assert.Equal(t, "program", info.Kind)
}

func TestNodeRoot_InvalidHandle(t *testing.T) {
	a := newTestABI()
	_, ok := decodeInfo(t, a.NodeRoot(99))
	assert.False(t, ok)
}

func TestNodeInfo_ExactRange(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "let a;")
	require.NotZero(t, srcHandle)

	info, ok := decodeInfo(t, a.NodeInfo(srcHandle, 0, 6, false))
	require.True(t, ok)
	assert.Equal(t, "lexical_declaration", info.Kind)
}

func TestNodeChildrenAndNamedChildren(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "let a; let b;")
	require.NotZero(t, srcHandle)

	children := decodeInfoList(t, a.NodeChildren(srcHandle, 0, 0, true))
	named := decodeInfoList(t, a.NodeNamedChildren(srcHandle, 0, 0, true))
	assert.Len(t, children, 2)
	assert.Len(t, named, 2)
}

func TestNodeParentNextPrev(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "let a; let b; let c;")
	require.NotZero(t, srcHandle)

	root := decodeInfoList(t, a.NodeNamedChildren(srcHandle, 0, 0, true))
	require.Len(t, root, 3)
	mid := root[1]

	parent, ok := decodeInfo(t, a.NodeParent(srcHandle, mid.SB, mid.EB, false))
	require.True(t, ok)
	assert.Equal(t, "program", parent.Kind)

	next, ok := decodeInfo(t, a.NodeNext(srcHandle, mid.SB, mid.EB, false))
	require.True(t, ok)
	assert.Equal(t, root[2].SB, next.SB)

	prev, ok := decodeInfo(t, a.NodePrev(srcHandle, mid.SB, mid.EB, false))
	require.True(t, ok)
	assert.Equal(t, root[0].SB, prev.SB)
}

func TestNodeNext_NoneReturnsNull(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "let a;")
	require.NotZero(t, srcHandle)

	_, ok := decodeInfo(t, a.NodeNext(srcHandle, 0, 6, false))
	assert.False(t, ok)
}

func TestNodeFieldChild(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "function foo() {}")
	require.NotZero(t, srcHandle)

	info, ok := decodeInfo(t, a.NodeFieldChild(srcHandle, 0, 0, true, "name"))
	assert.False(t, ok)
	_ = info

	decl := decodeInfoList(t, a.NodeNamedChildren(srcHandle, 0, 0, true))
	require.Len(t, decl, 1)
	nameInfo, ok := decodeInfo(t, a.NodeFieldChild(srcHandle, decl[0].SB, decl[0].EB, false, "name"))
	require.True(t, ok)
	assert.Equal(t, "identifier", nameInfo.Kind)
}

func TestFind_ScopedToNode(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "function outer() { foo(1); } foo(2);")
	require.NotZero(t, srcHandle)

	decls := decodeInfoList(t, a.NodeNamedChildren(srcHandle, 0, 0, true))
	require.Len(t, decls, 2)
	outer := decls[0]

	found, ok := decodeInfo(t, a.Find(srcHandle, "foo($X)", outer.SB, outer.EB, false))
	require.True(t, ok)
	assert.Equal(t, "call_expression", found.Kind)
}

func TestFindAll_ReturnsAllMatchesInScope(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "foo(1); foo(2); bar(3);")
	require.NotZero(t, srcHandle)

	all := decodeInfoList(t, a.FindAll(srcHandle, "foo($X)", 0, 0, true))
	assert.Len(t, all, 2)
}

func TestMatches_WholeNode(t *testing.T) {
	a := newTestABI()
	srcHandle := a.CompileSource(sx.LangJavaScript, "foo(1);")
	require.NotZero(t, srcHandle)

	decls := decodeInfoList(t, a.NodeNamedChildren(srcHandle, 0, 0, true))
	require.Len(t, decls, 1)
	call := decls[0]

	assert.True(t, a.Matches(srcHandle, "foo($X)", call.SB, call.EB, false))
	assert.False(t, a.Matches(srcHandle, "bar($X)", call.SB, call.EB, false))
}

func TestMatches_InvalidHandle(t *testing.T) {
	a := newTestABI()
	assert.False(t, a.Matches(99, "foo($X)", 0, 1, false))
}
