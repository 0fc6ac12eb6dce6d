package slots

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/astgrep/internal/pattern"
	"github.com/oxhq/astgrep/internal/rulevm"
	sx "github.com/oxhq/astgrep/internal/sitter"
)

// Fixed capacities, spec.md §3.
const (
	MaxCompiledSlots = 64
	MaxSourceSlots   = 16
	MaxMatchSlots    = 4
	MaxRulesetSlots  = 2
	ResultBufferSize = 64 * 1024
)

// Engine is the process-wide singleton the spec describes: slot tables for
// compiled patterns/sources/match lists/rulesets, a staging match list, and
// a result buffer. spec.md's design notes suggest a reimplementation aimed
// at multithreaded use should encapsulate this state in an explicit value
// rather than true process globals; this type is that value. Default below
// is the single shared instance the ABI-style package-level entry points in
// internal/abi use, matching spec.md §5's single-threaded, process-wide
// model, while tests can construct their own isolated Engine.
type Engine struct {
	compiled [MaxCompiledSlots]*CompiledPattern
	sources  [MaxSourceSlots]*CompiledSource
	matches  [MaxMatchSlots]*pattern.MatchList
	rulesets [MaxRulesetSlots]*rulevm.Ruleset

	lastMatchList pattern.MatchList
	resultBuffer  [ResultBufferSize]byte

	// patternCache backs the "compile (or reuse cached pattern)" behavior
	// the tree-walk find/findAll/matches operations use (spec.md §4.5): a
	// pattern string is compiled once per language and its slot handle
	// reused on every subsequent call with the same text.
	patternCache map[patternCacheKey]int
}

type patternCacheKey struct {
	lang sx.Lang
	text string
}

// New returns a fresh, empty Engine.
func New() *Engine { return &Engine{} }

// Default is the shared process-wide engine instance.
var Default = New()

func firstFree[T any](slots []*T) int {
	for i, s := range slots {
		if s == nil {
			return i
		}
	}
	return -1
}

// CompilePattern parses pattern in lang and stores it in a fresh
// compiled-pattern slot, returning a 1-based handle (0 on allocation
// failure or parser failure).
func (e *Engine) CompilePattern(lang sx.Lang, src []byte) int {
	idx := firstFree(e.compiled[:])
	if idx < 0 {
		return 0
	}
	tree, ok := sx.Parse(lang, src)
	if !ok {
		return 0
	}
	e.compiled[idx] = &CompiledPattern{tree: tree}
	return idx + 1
}

// CompileOrReusePattern compiles patternStr in lang the first time it is
// seen and returns the same slot handle on every later call with the same
// (lang, patternStr) pair, per spec.md §4.5's "compile (or reuse cached
// pattern)". Returns 0 on parser failure.
func (e *Engine) CompileOrReusePattern(lang sx.Lang, patternStr string) int {
	if e.patternCache == nil {
		e.patternCache = make(map[patternCacheKey]int)
	}
	key := patternCacheKey{lang: lang, text: patternStr}
	if handle, ok := e.patternCache[key]; ok && e.Pattern(handle) != nil {
		return handle
	}
	handle := e.CompilePattern(lang, []byte(patternStr))
	if handle == 0 {
		return 0
	}
	e.patternCache[key] = handle
	return handle
}

// Pattern returns the compiled pattern at handle, or nil if the handle is
// invalid, zero, or freed.
func (e *Engine) Pattern(handle int) *CompiledPattern {
	if handle < 1 || handle > MaxCompiledSlots {
		return nil
	}
	return e.compiled[handle-1]
}

// PatternTree implements rulevm.PatternLookup.
func (e *Engine) PatternTree(handle int) (*sitter.Node, []byte, bool) {
	p := e.Pattern(handle)
	if p == nil {
		return nil, nil, false
	}
	return p.Root(), p.Source(), true
}

// FreePattern releases a compiled-pattern slot. A no-op on an invalid or
// already-freed handle.
func (e *Engine) FreePattern(handle int) {
	if handle < 1 || handle > MaxCompiledSlots {
		return
	}
	if p := e.compiled[handle-1]; p != nil {
		p.tree.Close()
	}
	e.compiled[handle-1] = nil
}

// CompileSource parses src in lang and stores it in a fresh source slot.
func (e *Engine) CompileSource(lang sx.Lang, src []byte) int {
	idx := firstFree(e.sources[:])
	if idx < 0 {
		return 0
	}
	tree, ok := sx.Parse(lang, src)
	if !ok {
		return 0
	}
	e.sources[idx] = &CompiledSource{tree: tree}
	return idx + 1
}

// Source returns the compiled source at handle, or nil.
func (e *Engine) Source(handle int) *CompiledSource {
	if handle < 1 || handle > MaxSourceSlots {
		return nil
	}
	return e.sources[handle-1]
}

// FreeSource releases a source slot. A no-op on an invalid or already-freed
// handle.
func (e *Engine) FreeSource(handle int) {
	if handle < 1 || handle > MaxSourceSlots {
		return
	}
	if s := e.sources[handle-1]; s != nil {
		s.tree.Close()
	}
	e.sources[handle-1] = nil
}

// StoreMatches snapshots the current staging list into a fresh match slot
// so the next operation cannot clobber it, returning a 1-based handle.
func (e *Engine) StoreMatches() int {
	idx := firstFree(e.matches[:])
	if idx < 0 {
		return 0
	}
	snap := e.lastMatchList
	e.matches[idx] = &snap
	return idx + 1
}

// Matches returns the stored match list at handle, or nil.
func (e *Engine) Matches(handle int) *pattern.MatchList {
	if handle < 1 || handle > MaxMatchSlots {
		return nil
	}
	return e.matches[handle-1]
}

// FreeMatches releases a match-list slot. A no-op on an invalid or
// already-freed handle.
func (e *Engine) FreeMatches(handle int) {
	if handle < 1 || handle > MaxMatchSlots {
		return
	}
	e.matches[handle-1] = nil
}

// LastMatchList returns the staging list holding the most recent
// operation's output.
func (e *Engine) LastMatchList() *pattern.MatchList { return &e.lastMatchList }

// SetLastMatchList overwrites the staging list, as every matching
// operation does on completion.
func (e *Engine) SetLastMatchList(l pattern.MatchList) { e.lastMatchList = l }

// StoreRuleset takes ownership of a decoded ruleset, returning a 1-based
// handle (0 if the ruleset slot table is full).
func (e *Engine) StoreRuleset(rs *rulevm.Ruleset) int {
	idx := firstFree(e.rulesets[:])
	if idx < 0 {
		return 0
	}
	e.rulesets[idx] = rs
	return idx + 1
}

// Ruleset returns the decoded ruleset at handle, or nil.
func (e *Engine) Ruleset(handle int) *rulevm.Ruleset {
	if handle < 1 || handle > MaxRulesetSlots {
		return nil
	}
	return e.rulesets[handle-1]
}

// FreeRuleset releases a ruleset slot and every compiled-pattern slot the
// pattern compilation hook created for it. A no-op on an invalid or
// already-freed handle.
func (e *Engine) FreeRuleset(handle int) {
	if handle < 1 || handle > MaxRulesetSlots {
		return
	}
	if rs := e.rulesets[handle-1]; rs != nil {
		for _, slot := range rs.PatternSlots() {
			e.FreePattern(slot)
		}
	}
	e.rulesets[handle-1] = nil
}

// ResultBuffer returns the fixed 64 KiB serialization scratch buffer.
func (e *Engine) ResultBuffer() []byte { return e.resultBuffer[:] }
