package slots

import (
	"github.com/oxhq/astgrep/internal/rulevm"
	sx "github.com/oxhq/astgrep/internal/sitter"
)

// langForRuleset picks the language the ruleset's own pattern literals
// parse with. spec.md §4.4 does not give rules distinct parse languages for
// their embedded pattern strings at decode time — a rule's Lang byte
// filters which source trees it runs against, but its PATTERN operands are
// parsed once at load time. The first rule's Lang is used for that parse,
// falling back to JavaScript (the grammar every TS/TSX construct this
// matcher targets is also valid under, for anything not already
// TS-specific) when the ruleset declares no rules.
func langForRuleset(rs *rulevm.Ruleset) sx.Lang {
	if len(rs.Rules) == 0 {
		return sx.LangJavaScript
	}
	switch rs.Rules[0].Lang {
	case uint8(sx.LangTypeScript):
		return sx.LangTypeScript
	case uint8(sx.LangTSX):
		return sx.LangTSX
	default:
		return sx.LangJavaScript
	}
}

// LoadRuleset decodes buf and compiles every embedded PATTERN node's string
// into its own compiled-pattern slot, wiring RuleNode.PatternSlot via
// Ruleset.SetPatternSlot so rulevm.Evaluator can resolve it through this
// Engine's PatternLookup implementation. Returns a 1-based ruleset handle,
// or 0 on decode failure, capacity exhaustion, or any embedded pattern
// failing to parse.
func (e *Engine) LoadRuleset(buf []byte) int {
	rs, err := rulevm.Decode(buf)
	if err != nil {
		return 0
	}

	lang := langForRuleset(rs)
	for _, nodeIdx := range rs.PatternNodeIndices() {
		slot := e.CompilePattern(lang, []byte(rs.Nodes[nodeIdx].Str))
		if slot == 0 {
			for _, s := range rs.PatternSlots() {
				e.FreePattern(s)
			}
			return 0
		}
		rs.SetPatternSlot(nodeIdx, slot)
		rs.TrackPatternSlot(slot)
	}

	handle := e.StoreRuleset(rs)
	if handle == 0 {
		for _, s := range rs.PatternSlots() {
			e.FreePattern(s)
		}
	}
	return handle
}
