// Package abi implements the §6.5 Host ABI surface: the entry points a host
// process (or, in the WASM deployment spec.md envisions, the sandbox's
// import table) calls to drive the matcher. spec.md's ABI is described as
// "WASM-style but language-neutral" — pointer/length out-parameters
// (alloc/dealloc, get_result_ptr/get_result_len) exist there to cross a
// linear-memory boundary. This implementation is consumed directly by Go
// callers (the CLI in cmd/astgrep, Go tests), not over a real FFI boundary,
// so each entry point returns its []byte result directly instead of a
// pointer into a shared buffer the host then reads out separately — the
// same data, without the indirection a language-neutral boundary requires
// but a same-process Go caller doesn't need. ResultBuffer-shaped entry
// points (MatchResultBytes) still route through Engine.ResultBuffer so the
// fixed-64KiB-overflow behavior spec.md describes is preserved exactly.
package abi

import (
	"github.com/oxhq/astgrep/internal/codec"
	"github.com/oxhq/astgrep/internal/matchset"
	"github.com/oxhq/astgrep/internal/pattern"
	"github.com/oxhq/astgrep/internal/rulevm"
	"github.com/oxhq/astgrep/internal/slots"

	sx "github.com/oxhq/astgrep/internal/sitter"
)

// ABI binds the host entry points to one slots.Engine. A process normally
// uses the package-level Default; tests construct their own for isolation.
type ABI struct {
	Engine *slots.Engine
}

// Default is the ABI bound to the shared process-wide engine.
var Default = &ABI{Engine: slots.Default}

// StructMatch runs the one-shot "compile pattern, compile source, match,
// discard both" path spec.md §8 scenario 1 exercises. Returns the
// serialized match list; an empty (zero-length) result signals any of the
// parser-failure / allocation-failure cases of spec.md §7.
func (a *ABI) StructMatch(patternStr, src string, lang sx.Lang) []byte {
	patHandle := a.Engine.CompilePattern(lang, []byte(patternStr))
	if patHandle == 0 {
		return nil
	}
	defer a.Engine.FreePattern(patHandle)

	srcHandle := a.Engine.CompileSource(lang, []byte(src))
	if srcHandle == 0 {
		return nil
	}
	defer a.Engine.FreeSource(srcHandle)

	return a.MatchCompiled(patHandle, srcHandle)
}

// CompilePattern parses patternStr in lang and stores it, returning a
// 1-based handle (0 on failure).
func (a *ABI) CompilePattern(lang sx.Lang, patternStr string) int {
	return a.Engine.CompilePattern(lang, []byte(patternStr))
}

// FreePattern releases a compiled-pattern slot.
func (a *ABI) FreePattern(handle int) { a.Engine.FreePattern(handle) }

// CompileSource parses src in lang and stores it, returning a 1-based
// handle (0 on failure).
func (a *ABI) CompileSource(lang sx.Lang, src string) int {
	return a.Engine.CompileSource(lang, []byte(src))
}

// FreeSource releases a compiled-source slot.
func (a *ABI) FreeSource(handle int) { a.Engine.FreeSource(handle) }

func (a *ABI) stageAndEncode(list pattern.MatchList) []byte {
	a.Engine.SetLastMatchList(list)
	return codec.WriteMatches(a.Engine.ResultBuffer(), a.Engine.LastMatchList())
}

// MatchCompiled runs patternHandle's pattern against the whole of
// sourceHandle's tree, stages the result as the last match list, and
// returns its binary encoding.
func (a *ABI) MatchCompiled(patternHandle, sourceHandle int) []byte {
	pat := a.Engine.Pattern(patternHandle)
	src := a.Engine.Source(sourceHandle)
	if pat == nil || src == nil {
		return a.stageAndEncode(pattern.MatchList{})
	}
	ctx := &pattern.Context{PatSrc: pat.Source(), SrcSrc: src.Source()}
	return a.stageAndEncode(pattern.Search(ctx, pat.Root(), src.Root()))
}

// MatchInRange is MatchCompiled pruned to [start, end).
func (a *ABI) MatchInRange(patternHandle, sourceHandle, start, end int) []byte {
	pat := a.Engine.Pattern(patternHandle)
	src := a.Engine.Source(sourceHandle)
	if pat == nil || src == nil {
		return a.stageAndEncode(pattern.MatchList{})
	}
	ctx := &pattern.Context{PatSrc: pat.Source(), SrcSrc: src.Source()}
	return a.stageAndEncode(pattern.SearchInRange(ctx, pat.Root(), src.Root(), start, end))
}

// KindMatch collects every node of the given kind in sourceHandle's tree.
func (a *ABI) KindMatch(sourceHandle int, kind string) []byte {
	src := a.Engine.Source(sourceHandle)
	if src == nil {
		return a.stageAndEncode(pattern.MatchList{})
	}
	if kind == "comment" || kind == "html_comment" {
		return a.stageAndEncode(pattern.CollectByKindAll(src.Root(), kind))
	}
	return a.stageAndEncode(pattern.CollectByKind(src.Root(), kind))
}

// MatchPreceding collects the named siblings preceding the node exactly
// covering [start, end), nearest first.
func (a *ABI) MatchPreceding(sourceHandle, start, end int) []byte {
	src := a.Engine.Source(sourceHandle)
	if src == nil {
		return a.stageAndEncode(pattern.MatchList{})
	}
	return a.stageAndEncode(pattern.CollectPrecedingSiblings(src.Root(), start, end))
}

// MatchFollowing is MatchPreceding's mirror, in the forward direction.
func (a *ABI) MatchFollowing(sourceHandle, start, end int) []byte {
	src := a.Engine.Source(sourceHandle)
	if src == nil {
		return a.stageAndEncode(pattern.MatchList{})
	}
	return a.stageAndEncode(pattern.CollectFollowingSiblings(src.Root(), start, end))
}

// StoreMatches snapshots the staging list into a fresh match slot.
func (a *ABI) StoreMatches() int { return a.Engine.StoreMatches() }

// FreeMatches releases a match-list slot.
func (a *ABI) FreeMatches(handle int) { a.Engine.FreeMatches(handle) }

// FilterInside keeps only the matches of matchHandle's list fully contained
// in some match of refHandle's list, in place, then re-stages and
// re-encodes the result.
func (a *ABI) FilterInside(matchHandle, refHandle int) []byte {
	return a.filterTwo(matchHandle, refHandle, matchset.Inside)
}

// FilterNotInside is FilterInside negated.
func (a *ABI) FilterNotInside(matchHandle, refHandle int) []byte {
	return a.filterTwo(matchHandle, refHandle, matchset.NotInside)
}

// FilterNot excludes exact-range duplicates of refHandle's list from
// matchHandle's list.
func (a *ABI) FilterNot(matchHandle, refHandle int) []byte {
	return a.filterTwo(matchHandle, refHandle, matchset.Exclude)
}

// IntersectMatches keeps only the matches of matchHandle's list that
// overlap some match of refHandle's list.
func (a *ABI) IntersectMatches(matchHandle, refHandle int) []byte {
	return a.filterTwo(matchHandle, refHandle, matchset.Intersect)
}

func (a *ABI) filterTwo(matchHandle, refHandle int, op func(l, refs *pattern.MatchList)) []byte {
	l := a.Engine.Matches(matchHandle)
	refs := a.Engine.Matches(refHandle)
	if l == nil || refs == nil {
		return a.stageAndEncode(pattern.MatchList{})
	}
	op(l, refs)
	return a.stageAndEncode(*l)
}

// LoadRuleset decodes and compiles a §6.2 bytecode ruleset, returning a
// 1-based handle (0 on any decode or pattern-compile failure).
func (a *ABI) LoadRuleset(bytecode []byte) int {
	return a.Engine.LoadRuleset(bytecode)
}

// FreeRuleset releases a ruleset slot and every pattern slot it owns.
func (a *ABI) FreeRuleset(handle int) { a.Engine.FreeRuleset(handle) }

// ApplyRuleset evaluates every rule of rulesetHandle against sourceHandle's
// tree, filters each rule to those whose declared language matches the
// source's (a rule whose Lang byte is 0 matches any source language — an
// "any language" sentinel spec.md's bytecode format leaves implicit),
// builds the surviving findings, and returns their §6.4 JSON encoding.
func (a *ABI) ApplyRuleset(rulesetHandle, sourceHandle int) []byte {
	rs := a.Engine.Ruleset(rulesetHandle)
	src := a.Engine.Source(sourceHandle)
	if rs == nil || src == nil {
		out, _ := codec.MarshalFindings(nil)
		return out
	}

	ev := &rulevm.Evaluator{Rules: rs, Patterns: a.Engine, SrcRoot: src.Root(), SrcSrc: src.Source()}
	findings := make([]codec.Finding, 0, len(rs.Rules))
	for i, rule := range rs.Rules {
		if rule.Lang != 0 && rule.Lang != uint8(src.Lang()) {
			continue
		}
		matches := ev.EvaluateRule(i)
		if f, ok := codec.BuildFinding(rule, &matches); ok {
			findings = append(findings, f)
		}
	}
	out, _ := codec.MarshalFindings(findings)
	return out
}
