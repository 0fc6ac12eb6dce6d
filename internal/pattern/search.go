package pattern

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/astgrep/internal/ast"
)

// MaxMatches is the fixed capacity of a MatchList (spec.md §3).
const MaxMatches = 64

// Match is a matched subtree range plus the bindings captured along the way.
type Match struct {
	Range    ast.Range
	Bindings Bindings
}

// MatchList is a fixed-capacity, source-byte-ordered, range-deduplicated
// list of Match values. The zero value is an empty list.
type MatchList struct {
	items [MaxMatches]Match
	n     int
}

// Len returns the number of matches currently held.
func (l *MatchList) Len() int { return l.n }

// At returns the i'th match.
func (l *MatchList) At(i int) Match { return l.items[i] }

// Full reports whether the list has hit MaxMatches; callers observing this
// should treat the result as possibly incomplete (spec.md §7 kind 5).
func (l *MatchList) Full() bool { return l.n >= MaxMatches }

// hasExact reports whether a match with this exact byte range already
// exists, the dedup rule search() and collect*() all share.
func (l *MatchList) hasExact(start, end int) bool {
	for i := 0; i < l.n; i++ {
		if l.items[i].Range.StartByte == start && l.items[i].Range.EndByte == end {
			return true
		}
	}
	return false
}

// append adds m unless the list is full or an exact-range duplicate exists.
// Returns true if added.
func (l *MatchList) append(m Match) bool {
	if l.Full() {
		return false
	}
	if l.hasExact(m.Range.StartByte, m.Range.EndByte) {
		return false
	}
	l.items[l.n] = m
	l.n++
	return true
}

// Reset empties the list in place, for reuse as evaluator scratch.
func (l *MatchList) Reset() { l.n = 0 }

// Append adds m to l unless the list is full or m's exact byte range
// already exists, exposing the dedup/capacity rule of §3 to other packages
// (the match-set algebra, the rule VM evaluator) that build result lists
// out of individual matches rather than a single search() call.
func (l *MatchList) Append(m Match) bool { return l.append(m) }

// CopyFrom overwrites l's contents with a snapshot of src, truncated to
// MaxMatches if src somehow holds more (it never should, but this keeps the
// copy total).
func (l *MatchList) CopyFrom(src *MatchList) {
	l.n = src.n
	copy(l.items[:l.n], src.items[:l.n])
}

// Slice returns a plain slice view for callers outside the hot path
// (serializers, tests) that don't need to avoid the allocation.
func (l *MatchList) Slice() []Match {
	out := make([]Match, l.n)
	copy(out, l.items[:l.n])
	return out
}

// preOrder walks n and its descendants (named and anonymous, matching
// spec.md's "every descendant" wording) calling visit for each, n first.
// Traversal stops early once done returns true.
func preOrder(n *sitter.Node, visit func(*sitter.Node) (done bool)) {
	if n == nil {
		return
	}
	var walk func(*sitter.Node) bool
	walk = func(cur *sitter.Node) bool {
		if visit(cur) {
			return true
		}
		for i := 0; i < int(cur.ChildCount()); i++ {
			if walk(cur.Child(i)) {
				return true
			}
		}
		return false
	}
	walk(n)
}

// Search implements spec.md §4.2's search contract: for every descendant N
// of srcRoot in pre-order, test matchNode(patBody, N). Matches land in
// source-byte order of first discovery, deduplicated by exact range, capped
// at MaxMatches.
func Search(ctx *Context, patRoot, srcRoot *sitter.Node) MatchList {
	return SearchInRange(ctx, patRoot, srcRoot, 0, int(^uint(0)>>1))
}

// SearchInRange is Search restricted to candidates fully inside
// [start, end). Candidates not fully inside are skipped, but the walk still
// descends into every subtree, including subtrees fully outside the range.
func SearchInRange(ctx *Context, patRoot, srcRoot *sitter.Node, start, end int) MatchList {
	var out MatchList
	body := unwrapProgram(patRoot)
	if body == nil || srcRoot == nil {
		return out
	}

	preOrder(srcRoot, func(n *sitter.Node) bool {
		if out.Full() {
			return true
		}
		ns, ne := int(n.StartByte()), int(n.EndByte())
		if ns >= end || ne <= start {
			return false
		}
		if !(ns >= start && ne <= end) {
			return false
		}
		var b Bindings
		if matchNode(ctx, body, n, &b, 0) {
			out.append(Match{Range: ast.RangeOf(n), Bindings: b})
		}
		return false
	})
	return out
}

// CollectByKind collects every named node whose kind equals kind, walking
// only the named-child axis (so comments and other "extra" nodes are
// skipped — see CollectByKindAll for the variant that includes them).
func CollectByKind(root *sitter.Node, kind string) MatchList {
	var out MatchList
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || out.Full() {
			return
		}
		if n.IsNamed() && n.Type() == kind {
			out.append(Match{Range: ast.RangeOf(n)})
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return out
}

// CollectByKindAll is CollectByKind but walks the total-child axis, so
// "comment"/"html_comment" and other extra nodes the named-child walk skips
// are visible.
func CollectByKindAll(root *sitter.Node, kind string) MatchList {
	var out MatchList
	preOrder(root, func(n *sitter.Node) bool {
		if out.Full() {
			return true
		}
		if n.Type() == kind {
			out.append(Match{Range: ast.RangeOf(n)})
		}
		return false
	})
	return out
}

// CollectByNthChild collects nodes that are the index'th named child of
// their parent (0-based).
func CollectByNthChild(root *sitter.Node, index int) MatchList {
	var out MatchList
	preOrder(root, func(n *sitter.Node) bool {
		if out.Full() {
			return true
		}
		parent := n.Parent()
		if parent == nil || !n.IsNamed() {
			return false
		}
		for i := 0; i < int(parent.NamedChildCount()); i++ {
			if parent.NamedChild(i) == n {
				if i == index {
					out.append(Match{Range: ast.RangeOf(n)})
				}
				break
			}
		}
		return false
	})
	return out
}

// CollectPrecedingSiblings locates the node exactly covering [start, end)
// and emits its preceding named siblings, nearest first.
func CollectPrecedingSiblings(root *sitter.Node, start, end int) MatchList {
	var out MatchList
	n, ok := ast.Locate(root, start, end, false)
	if !ok {
		return out
	}
	for s := n.PrevNamedSibling(); s != nil; s = s.PrevNamedSibling() {
		if !out.append(Match{Range: ast.RangeOf(s)}) {
			break
		}
	}
	return out
}

// CollectFollowingSiblings is CollectPrecedingSiblings' mirror, nearest
// first in the forward direction.
func CollectFollowingSiblings(root *sitter.Node, start, end int) MatchList {
	var out MatchList
	n, ok := ast.Locate(root, start, end, false)
	if !ok {
		return out
	}
	for s := n.NextNamedSibling(); s != nil; s = s.NextNamedSibling() {
		if !out.append(Match{Range: ast.RangeOf(s)}) {
			break
		}
	}
	return out
}

// CollectByRegex walks using total-child traversal and emits leaf nodes
// (zero children) whose text contains a match of re.
func CollectByRegex(root *sitter.Node, src []byte, re *regexp.Regexp) MatchList {
	var out MatchList
	preOrder(root, func(n *sitter.Node) bool {
		if out.Full() {
			return true
		}
		if n.ChildCount() == 0 && re.MatchString(n.Content(src)) {
			out.append(Match{Range: ast.RangeOf(n)})
		}
		return false
	})
	return out
}
