// Package ast implements the tree-walk API of spec.md §4.5: node-handle
// navigation (children, field, siblings) scoped to a compiled source tree.
package ast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Point is a zero-based (row, col) position.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Range is a half-open byte span plus its start/end points.
type Range struct {
	StartByte  int   `json:"start_byte"`
	EndByte    int   `json:"end_byte"`
	StartPoint Point `json:"start_point"`
	EndPoint   Point `json:"end_point"`
}

// RangeOf reads a Range off a live tree-sitter node.
func RangeOf(n *sitter.Node) Range {
	sp, ep := n.StartPoint(), n.EndPoint()
	return Range{
		StartByte:  int(n.StartByte()),
		EndByte:    int(n.EndByte()),
		StartPoint: Point{Row: int(sp.Row), Col: int(sp.Column)},
		EndPoint:   Point{Row: int(ep.Row), Col: int(ep.Column)},
	}
}

// Info is the serializable snapshot of a node: kind, range, and child
// counts, matching the §4.6 node-info serializer's field set.
type Info struct {
	Kind       string `json:"kind"`
	Range      Range  `json:"range"`
	Named      bool   `json:"named"`
	ChildCount int    `json:"child_count"`
	NamedCount int    `json:"named_child_count"`
}

// InfoOf snapshots a live node. A nil node yields the zero Info with an
// empty Kind; callers distinguish "no such node" by checking Kind == "".
func InfoOf(n *sitter.Node) Info {
	if n == nil {
		return Info{}
	}
	return Info{
		Kind:       n.Type(),
		Range:      RangeOf(n),
		Named:      n.IsNamed(),
		ChildCount: int(n.ChildCount()),
		NamedCount: int(n.NamedChildCount()),
	}
}

// Children returns the info for every child (named and anonymous) in
// source order.
func Children(n *sitter.Node) []Info {
	if n == nil {
		return nil
	}
	out := make([]Info, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		out = append(out, InfoOf(n.Child(i)))
	}
	return out
}

// NamedChildren returns the info for every named child in source order.
func NamedChildren(n *sitter.Node) []Info {
	if n == nil {
		return nil
	}
	out := make([]Info, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, InfoOf(n.NamedChild(i)))
	}
	return out
}
