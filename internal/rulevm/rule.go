package rulevm

import "regexp"

// Severity is a rule's reported level.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// String renders the severity the way the JSON finding encoder and CLI
// output expect it.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "error"
	}
}

// ConstraintKind distinguishes a regex constraint from its negation.
type ConstraintKind uint8

const (
	ConstraintRegex ConstraintKind = iota
	ConstraintNotRegex
)

// Constraint binds a metavariable name to a regex check on its captured
// text. Compiled at decode time; a compile failure marks the constraint
// inert — matches are treated as "constraint not matched" rather than
// failing the whole ruleset (spec.md §4.4).
type Constraint struct {
	Metavar string
	Kind    ConstraintKind
	Pattern string
	re      *regexp.Regexp
}

// Check reports whether text satisfies the constraint. An inert constraint
// (nil compiled regex) treats its regex test as always non-matching (spec.md
// §6.2): a plain regex constraint is then never satisfied, but a not_regex
// constraint — "keep iff the regex does not match" (spec.md §4.4) — is
// satisfied by that non-match.
func (c *Constraint) Check(text string) bool {
	if c.re == nil {
		return c.Kind == ConstraintNotRegex
	}
	matched := c.re.MatchString(text)
	if c.Kind == ConstraintNotRegex {
		return !matched
	}
	return matched
}

// TransformOp identifies a transform's operation. Transforms are decoded
// but never evaluated by the core (spec.md §4.4); consumers read them off
// the surviving matches.
type TransformOp uint8

const (
	TransformSubstring TransformOp = iota
	TransformReplace
	TransformConvert
)

// Transform is decoded verbatim and surfaced to consumers.
type Transform struct {
	Source string
	Op     TransformOp
	Arg    string
}

// Rule is one compiled rule: an id, severity, message, target language, the
// index of its body RuleNode, an optional fix template, and the slices of
// its constraints/transforms.
type Rule struct {
	ID          string
	Severity    Severity
	Message     string
	Lang        uint8
	Root        int
	Fix         string
	HasFix      bool
	Constraints []Constraint
	Transforms  []Transform
}

// Ruleset capacities (spec.md §3).
const (
	MaxRules       = 32
	MaxRuleNodes   = 128
	MaxConstraints = 16
	MaxTransforms  = 16
	MaxChildren    = 64
)

// Ruleset is the decoded form of a §6.2 bytecode stream: dense arrays for
// rules and rule nodes, with all cross-references expressed as indices.
type Ruleset struct {
	Version int
	Rules   []Rule
	Nodes   []RuleNode

	// patternSlots tracks every compiled-pattern slot handle this ruleset
	// created during the pattern compilation hook, so the slot table's
	// FreeRuleset can free them all.
	patternSlots []int
}

// PatternNodeIndices returns the indices of every TagPattern node in the
// ruleset's node pool, for the pattern compilation hook to walk after
// decode.
func (rs *Ruleset) PatternNodeIndices() []int {
	var out []int
	for i := range rs.Nodes {
		if rs.Nodes[i].Tag == TagPattern {
			out = append(out, i)
		}
	}
	return out
}

// SetPatternSlot stashes the compiled-pattern slot handle for node nodeIdx.
func (rs *Ruleset) SetPatternSlot(nodeIdx, slot int) {
	rs.Nodes[nodeIdx].PatternSlot = slot
}

// TrackPatternSlot records a slot handle created for this ruleset so
// the slot table's FreeRuleset can free it.
func (rs *Ruleset) TrackPatternSlot(slot int) {
	rs.patternSlots = append(rs.patternSlots, slot)
}

// PatternSlots returns every compiled-pattern slot handle this ruleset owns.
func (rs *Ruleset) PatternSlots() []int {
	return rs.patternSlots
}
