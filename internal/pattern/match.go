package pattern

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/astgrep/internal/ast"
)

// maxDepth bounds matchNode/matchChildSeq recursion (spec.md §3, §5).
const maxDepth = 100

// Context carries the pattern and source byte slices matchNode needs to
// read node text from. Both trees must have been parsed from these exact
// byte slices.
type Context struct {
	PatSrc []byte
	SrcSrc []byte
}

// unwrapProgram treats a "program" wrapper whose sole named child is the
// pattern body as transparent, per spec.md §3.
func unwrapProgram(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "program" && n.NamedChildCount() == 1 {
		return n.NamedChild(0)
	}
	return n
}

// matchNode implements spec.md §4.2's matchNode contract.
func matchNode(ctx *Context, pat, src *sitter.Node, b *Bindings, depth int) bool {
	if depth > maxDepth {
		return false
	}
	if pat == nil || src == nil {
		return false
	}

	patText := pat.Content(ctx.PatSrc)

	if name, ok := IsMetavariable(patText); ok {
		rng := ast.RangeOf(src)
		return b.Bind(name, src.Content(ctx.SrcSrc), rng)
	}
	if IsEllipsis(patText) {
		return true
	}
	if _, ok := IsEllipsisMetavar(patText); ok {
		return true
	}

	if pat.Type() == src.Type() {
		if pat.NamedChildCount() == 0 && src.NamedChildCount() == 0 {
			return patText == src.Content(ctx.SrcSrc)
		}
		return matchChildren(ctx, pat, src, b, depth+1)
	}

	if pat.NamedChildCount() == 0 && src.NamedChildCount() == 0 {
		return patText == src.Content(ctx.SrcSrc)
	}

	if pat.Type() == "expression_statement" && pat.NamedChildCount() == 1 {
		return matchNode(ctx, pat.NamedChild(0), src, b, depth+1)
	}
	if src.Type() == "expression_statement" && src.NamedChildCount() == 1 {
		return matchNode(ctx, pat, src.NamedChild(0), b, depth+1)
	}

	return false
}

// namedChildren collects a node's named children into a slice.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, int(n.NamedChildCount()))
	for i := range out {
		out[i] = n.NamedChild(i)
	}
	return out
}

// matchChildren aligns the named children of pat and src.
func matchChildren(ctx *Context, pat, src *sitter.Node, b *Bindings, depth int) bool {
	if depth > maxDepth {
		return false
	}
	return matchChildSeq(ctx, namedChildren(pat), namedChildren(src), b, depth)
}

// matchChildSeq aligns a pattern child sequence against a source child
// sequence left to right. Each non-ellipsis pattern child consumes exactly
// one source child; an ellipsis (or ellipsis-metavar) pattern child
// consumes zero or more contiguous source children, tried greedily
// (k=0,1,2,...) with backtracking via bindings clone/restore.
func matchChildSeq(ctx *Context, pat, src []*sitter.Node, b *Bindings, depth int) bool {
	if depth > maxDepth {
		return false
	}
	if len(pat) == 0 {
		return len(src) == 0
	}

	head := pat[0]
	headText := head.Content(ctx.PatSrc)

	if IsEllipsis(headText) {
		return matchEllipsis(ctx, "", src, func(k int) bool {
			trial := b.Clone()
			if matchChildSeq(ctx, pat[1:], src[k:], &trial, depth+1) {
				*b = trial
				return true
			}
			return false
		})
	}
	if name, ok := IsEllipsisMetavar(headText); ok {
		return matchEllipsis(ctx, name, src, func(k int) bool {
			trial := b.Clone()
			if name != "" {
				rng := spanOf(src[:k])
				if !trial.Bind(name, textOfSpan(ctx.SrcSrc, src[:k]), rng) {
					return false
				}
			}
			if matchChildSeq(ctx, pat[1:], src[k:], &trial, depth+1) {
				*b = trial
				return true
			}
			return false
		})
	}

	if len(src) == 0 {
		return false
	}
	trial := b.Clone()
	if !matchNode(ctx, head, src[0], &trial, depth+1) {
		return false
	}
	if !matchChildSeq(ctx, pat[1:], src[1:], &trial, depth+1) {
		return false
	}
	*b = trial
	return true
}

// matchEllipsis tries consuming k = 0, 1, 2, ... of src, calling attempt(k)
// for each and returning on the first success.
func matchEllipsis(_ *Context, _ string, src []*sitter.Node, attempt func(k int) bool) bool {
	for k := 0; k <= len(src); k++ {
		if attempt(k) {
			return true
		}
	}
	return false
}

func spanOf(nodes []*sitter.Node) ast.Range {
	if len(nodes) == 0 {
		return ast.Range{}
	}
	first, last := nodes[0], nodes[len(nodes)-1]
	return ast.Range{
		StartByte:  int(first.StartByte()),
		EndByte:    int(last.EndByte()),
		StartPoint: ast.RangeOf(first).StartPoint,
		EndPoint:   ast.RangeOf(last).EndPoint,
	}
}

func textOfSpan(src []byte, nodes []*sitter.Node) string {
	if len(nodes) == 0 {
		return ""
	}
	start, end := nodes[0].StartByte(), nodes[len(nodes)-1].EndByte()
	return string(src[start:end])
}

// MatchNode exposes matchNode to other packages in this module (rule VM
// constraint checks re-test individual node pairs without running a full
// search).
func MatchNode(ctx *Context, pat, src *sitter.Node) (Bindings, bool) {
	var b Bindings
	ok := matchNode(ctx, unwrapProgram(pat), src, &b, 0)
	return b, ok
}
