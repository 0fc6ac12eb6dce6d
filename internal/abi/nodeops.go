package abi

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/astgrep/internal/ast"
	"github.com/oxhq/astgrep/internal/codec"
)

// locate resolves (sourceHandle, start, end, isRoot) to a live node, per
// §4.5: descendant_for_byte_range with an exact-range check, short-circuited
// to the cached root when isRoot is set.
func (a *ABI) locate(sourceHandle, start, end int, isRoot bool) (*sitter.Node, bool) {
	src := a.Engine.Source(sourceHandle)
	if src == nil {
		return nil, false
	}
	return ast.Locate(src.Root(), start, end, isRoot)
}

// NodeRoot returns the root node's info for sourceHandle.
func (a *ABI) NodeRoot(sourceHandle int) []byte {
	src := a.Engine.Source(sourceHandle)
	if src == nil {
		out, _ := codec.MarshalNodeInfo(ast.Info{}, false)
		return out
	}
	out, _ := codec.MarshalNodeInfo(ast.InfoOf(src.Root()), true)
	return out
}

// NodeInfo returns the node-info JSON for the node at (start, end).
func (a *ABI) NodeInfo(sourceHandle, start, end int, isRoot bool) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	out, _ := codec.MarshalNodeInfo(ast.InfoOf(n), ok)
	return out
}

// NodeChildren returns every child (named and anonymous) of the node at
// (start, end), in source order.
func (a *ABI) NodeChildren(sourceHandle, start, end int, isRoot bool) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	if !ok {
		out, _ := codec.MarshalNodeInfoList(nil)
		return out
	}
	out, _ := codec.MarshalNodeInfoList(ast.Children(n))
	return out
}

// NodeNamedChildren is NodeChildren restricted to named children.
func (a *ABI) NodeNamedChildren(sourceHandle, start, end int, isRoot bool) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	if !ok {
		out, _ := codec.MarshalNodeInfoList(nil)
		return out
	}
	out, _ := codec.MarshalNodeInfoList(ast.NamedChildren(n))
	return out
}

// NodeParent returns the node-info of the named parent, or JSON null.
func (a *ABI) NodeParent(sourceHandle, start, end int, isRoot bool) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	if !ok {
		out, _ := codec.MarshalNodeInfo(ast.Info{}, false)
		return out
	}
	parent := ast.Parent(n)
	out, _ := codec.MarshalNodeInfo(ast.InfoOf(parent), parent != nil)
	return out
}

// NodeNext returns the node-info of the next named sibling, or JSON null.
func (a *ABI) NodeNext(sourceHandle, start, end int, isRoot bool) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	if !ok {
		out, _ := codec.MarshalNodeInfo(ast.Info{}, false)
		return out
	}
	next := ast.Next(n)
	out, _ := codec.MarshalNodeInfo(ast.InfoOf(next), next != nil)
	return out
}

// NodePrev returns the node-info of the previous named sibling, or JSON
// null.
func (a *ABI) NodePrev(sourceHandle, start, end int, isRoot bool) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	if !ok {
		out, _ := codec.MarshalNodeInfo(ast.Info{}, false)
		return out
	}
	prev := ast.Prev(n)
	out, _ := codec.MarshalNodeInfo(ast.InfoOf(prev), prev != nil)
	return out
}

// NodeFieldChild returns the node-info of the named child under the given
// grammar field, or JSON null.
func (a *ABI) NodeFieldChild(sourceHandle, start, end int, isRoot bool, field string) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	if !ok {
		out, _ := codec.MarshalNodeInfo(ast.Info{}, false)
		return out
	}
	child := ast.FieldChild(n, field)
	out, _ := codec.MarshalNodeInfo(ast.InfoOf(child), child != nil)
	return out
}

// Find, FindAll and Matches implement §4.5's scoped pattern queries,
// compiling (or reusing) patternStr against the node at (start, end).
func (a *ABI) Find(sourceHandle int, patternStr string, start, end int, isRoot bool) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	src := a.Engine.Source(sourceHandle)
	if !ok || src == nil {
		out, _ := codec.MarshalNodeInfo(ast.Info{}, false)
		return out
	}
	patHandle := a.Engine.CompileOrReusePattern(src.Lang(), patternStr)
	finder, ferr := a.Engine.FinderFor(patHandle, src.Source())
	if finder == nil || !ferr {
		out, _ := codec.MarshalNodeInfo(ast.Info{}, false)
		return out
	}
	found, ok := ast.Find(finder, n, int(n.StartByte()), int(n.EndByte()))
	out, _ := codec.MarshalNodeInfo(ast.InfoOf(found), ok)
	return out
}

// FindAll is Find's all-matches counterpart.
func (a *ABI) FindAll(sourceHandle int, patternStr string, start, end int, isRoot bool) []byte {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	src := a.Engine.Source(sourceHandle)
	if !ok || src == nil {
		out, _ := codec.MarshalNodeInfoList(nil)
		return out
	}
	patHandle := a.Engine.CompileOrReusePattern(src.Lang(), patternStr)
	finder, ferr := a.Engine.FinderFor(patHandle, src.Source())
	if finder == nil || !ferr {
		out, _ := codec.MarshalNodeInfoList(nil)
		return out
	}
	nodes := ast.FindAll(finder, n, int(n.StartByte()), int(n.EndByte()))
	infos := make([]ast.Info, len(nodes))
	for i, nd := range nodes {
		infos[i] = ast.InfoOf(nd)
	}
	out, _ := codec.MarshalNodeInfoList(infos)
	return out
}

// Matches reports whether the node at (start, end), as a whole, matches
// patternStr.
func (a *ABI) Matches(sourceHandle int, patternStr string, start, end int, isRoot bool) bool {
	n, ok := a.locate(sourceHandle, start, end, isRoot)
	src := a.Engine.Source(sourceHandle)
	if !ok || src == nil {
		return false
	}
	patHandle := a.Engine.CompileOrReusePattern(src.Lang(), patternStr)
	finder, ferr := a.Engine.FinderFor(patHandle, src.Source())
	if finder == nil || !ferr {
		return false
	}
	return ast.Matches(finder, n)
}
