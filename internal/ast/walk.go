package ast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Locate finds the node covering exactly [start, end) under root. isRoot
// short-circuits to root itself — necessary when root and its sole named
// child share the same byte range, in which case
// descendant_for_byte_range would otherwise return the child instead of the
// node the caller actually asked for. A parser that can only return an
// ancestor (no exact match) reports ok=false: "no such node" per spec.md
// §4.5, not a best-effort nearest node.
func Locate(root *sitter.Node, start, end int, isRoot bool) (*sitter.Node, bool) {
	if root == nil {
		return nil, false
	}
	if isRoot {
		return root, true
	}
	n := root.NamedDescendantForByteRange(uint32(start), uint32(end))
	if n == nil {
		return nil, false
	}
	if int(n.StartByte()) != start || int(n.EndByte()) != end {
		return nil, false
	}
	return n, true
}

// FieldChild returns the named child stored under the given grammar field,
// or nil if the node has no such field.
func FieldChild(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

// Parent, Next and Prev return the one node-or-nil the tree-walk API
// exposes for ancestor/sibling navigation, always over the *named* sibling
// axis (anonymous tokens are not surfaced to hosts walking the tree).
func Parent(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.Parent()
}

func Next(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.NextNamedSibling()
}

func Prev(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.PrevNamedSibling()
}

// Finder is the minimal pattern-search capability the tree-walk API needs
// from internal/pattern, kept as an interface here to avoid a dependency
// cycle (internal/pattern imports this package, so this package cannot
// import it).
type Finder interface {
	FindFirstInRange(root *sitter.Node, start, end int) (*sitter.Node, bool)
	FindAllInRange(root *sitter.Node, start, end int) []*sitter.Node
}

// Find compiles (or reuses) patternStr and returns the first match
// contained in the subtree rooted at scope, or ok=false if none.
func Find(f Finder, scope *sitter.Node, start, end int) (*sitter.Node, bool) {
	if scope == nil {
		return nil, false
	}
	return f.FindFirstInRange(scope, start, end)
}

// FindAll is Find's all-matches counterpart, deduplicated by exact
// (start_byte, end_byte) by the underlying Finder.
func FindAll(f Finder, scope *sitter.Node, start, end int) []*sitter.Node {
	if scope == nil {
		return nil
	}
	return f.FindAllInRange(scope, start, end)
}

// Matches reports whether scope's own range appears among f's matches
// within itself — i.e. whether scope, as a whole, matches the
// pattern.
func Matches(f Finder, scope *sitter.Node) bool {
	if scope == nil {
		return false
	}
	start, end := int(scope.StartByte()), int(scope.EndByte())
	for _, m := range f.FindAllInRange(scope, start, end) {
		if int(m.StartByte()) == start && int(m.EndByte()) == end {
			return true
		}
	}
	return false
}
