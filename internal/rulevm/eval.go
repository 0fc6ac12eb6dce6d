package rulevm

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/astgrep/internal/matchset"
	"github.com/oxhq/astgrep/internal/pattern"
)

// PatternLookup resolves a rule node's compiled-pattern slot (filled in by
// the pattern compilation hook after decode) back to the parsed pattern
// tree and the bytes it was parsed from. Kept as an interface so rulevm
// does not need to import the slot-table package.
type PatternLookup interface {
	PatternTree(slot int) (root *sitter.Node, src []byte, ok bool)
}

// Evaluator runs a decoded Ruleset against one compiled source tree.
//
// Every recursive call returns its result by value rather than writing
// through a shared scratch buffer. spec.md §4.4 allows either approach
// ("simpler and what the reference does" is exactly this copy-out
// strategy) — the shared-scratch variant exists to protect a ~1 MiB WASM
// stack, which does not apply to this Go implementation, so copy-out was
// chosen for the much simpler reentrancy story it gives recursive `all`/
// `any` evaluation.
type Evaluator struct {
	Rules    *Ruleset
	Patterns PatternLookup
	SrcRoot  *sitter.Node
	SrcSrc   []byte
}

// EvaluateRule runs one rule's body and applies its metavariable
// constraints, returning the surviving matches.
func (e *Evaluator) EvaluateRule(ruleIdx int) pattern.MatchList {
	if ruleIdx < 0 || ruleIdx >= len(e.Rules.Rules) {
		return pattern.MatchList{}
	}
	rule := e.Rules.Rules[ruleIdx]
	out := e.evaluate(rule.Root, 0)
	e.applyConstraints(&out, rule.Constraints)
	return out
}

const maxEvalDepth = 64

// applyConstraints drops any match whose bindings include a constrained
// name whose text fails the check. Names present in constraints but absent
// from a match's bindings never reject that match.
func (e *Evaluator) applyConstraints(out *pattern.MatchList, constraints []Constraint) {
	if len(constraints) == 0 {
		return
	}
	var kept pattern.MatchList
	for i := 0; i < out.Len(); i++ {
		m := out.At(i)
		ok := true
		for ci := range constraints {
			c := &constraints[ci]
			b, found := m.Bindings.Lookup(c.Metavar)
			if !found {
				continue
			}
			if !c.Check(b.Text) {
				ok = false
				break
			}
		}
		if ok {
			if !kept.Append(m) {
				break
			}
		}
	}
	*out = kept
}

// evaluate dispatches on a rule node's tag, per spec.md §4.4.
func (e *Evaluator) evaluate(nodeIdx, depth int) pattern.MatchList {
	if depth > maxEvalDepth || nodeIdx < 0 || nodeIdx >= len(e.Rules.Nodes) {
		return pattern.MatchList{}
	}
	n := &e.Rules.Nodes[nodeIdx]

	switch n.Tag {
	case TagPattern:
		return e.evalPattern(n)
	case TagKind:
		if n.Str == "comment" || n.Str == "html_comment" {
			return pattern.CollectByKindAll(e.SrcRoot, n.Str)
		}
		return pattern.CollectByKind(e.SrcRoot, n.Str)
	case TagRegex:
		re, err := regexp.Compile(n.Str)
		if err != nil {
			return pattern.MatchList{}
		}
		return pattern.CollectByRegex(e.SrcRoot, e.SrcSrc, re)
	case TagNthChild:
		return pattern.CollectByNthChild(e.SrcRoot, n.NthChild)
	case TagAll:
		return e.evalAll(n, depth)
	case TagAny:
		return e.evalAny(n, depth)
	case TagNot:
		// Standalone not: meaningful only as a child of `all`.
		return pattern.MatchList{}
	case TagInside, TagHas, TagFollows, TagPrecedes:
		// Standalone relational operator: pass-through to the inner child.
		return e.evaluate(n.Child, depth+1)
	case TagMatches:
		if n.RuleRef < 0 || n.RuleRef >= len(e.Rules.Rules) {
			return pattern.MatchList{}
		}
		return e.evaluate(e.Rules.Rules[n.RuleRef].Root, depth+1)
	default:
		return pattern.MatchList{}
	}
}

func (e *Evaluator) evalPattern(n *RuleNode) pattern.MatchList {
	patRoot, patSrc, ok := e.Patterns.PatternTree(n.PatternSlot)
	if !ok {
		return pattern.MatchList{}
	}
	ctx := &pattern.Context{PatSrc: patSrc, SrcSrc: e.SrcSrc}
	return pattern.Search(ctx, patRoot, e.SrcRoot)
}

// evalAll implements the two-phase `all` evaluator: phase 1 intersects
// every non-relational (primary) child's result; phase 2 applies each
// relational child as an in-place filter over the phase-1 output.
func (e *Evaluator) evalAll(n *RuleNode, depth int) pattern.MatchList {
	var primary, relational []int
	for _, c := range n.Children {
		if e.Rules.Nodes[c].Tag.IsRelational() {
			relational = append(relational, c)
		} else {
			primary = append(primary, c)
		}
	}

	var out pattern.MatchList
	if len(primary) == 0 {
		return out
	}
	for i, c := range primary {
		res := e.evaluate(c, depth+1)
		if i == 0 {
			out = res
		} else {
			matchset.Intersect(&out, &res)
		}
	}

	for _, c := range relational {
		e.applyRelational(&out, &e.Rules.Nodes[c], depth)
	}
	return out
}

// applyRelational filters out in place according to a single relational
// child node (inside/has/follows/precedes or a not(...) wrapping one of
// those, or a not(...) wrapping anything else).
func (e *Evaluator) applyRelational(out *pattern.MatchList, rel *RuleNode, depth int) {
	if rel.Tag == TagNot {
		inner := &e.Rules.Nodes[rel.Child]
		switch inner.Tag {
		case TagInside:
			refs := e.evaluate(inner.Child, depth+1)
			matchset.NotInside(out, &refs)
		case TagHas:
			refs := e.evaluate(inner.Child, depth+1)
			matchset.NotHas(out, &refs)
		case TagFollows:
			refs := e.evaluate(inner.Child, depth+1)
			matchset.NotFollows(out, &refs)
		case TagPrecedes:
			refs := e.evaluate(inner.Child, depth+1)
			matchset.NotPrecedes(out, &refs)
		default:
			refs := e.evaluate(rel.Child, depth+1)
			matchset.Exclude(out, &refs)
		}
		return
	}

	refs := e.evaluate(rel.Child, depth+1)
	switch rel.Tag {
	case TagInside:
		matchset.Inside(out, &refs)
	case TagHas:
		matchset.Has(out, &refs)
	case TagFollows:
		matchset.Follows(out, &refs)
	case TagPrecedes:
		matchset.Precedes(out, &refs)
	}
}

// evalAny unions every child's evaluation, deduplicated by exact range.
func (e *Evaluator) evalAny(n *RuleNode, depth int) pattern.MatchList {
	var out pattern.MatchList
	for i, c := range n.Children {
		res := e.evaluate(c, depth+1)
		if i == 0 {
			out = res
		} else {
			matchset.Union(&out, &res)
		}
	}
	return out
}
