package codec

import (
	"encoding/json"

	"github.com/oxhq/astgrep/internal/pattern"
	"github.com/oxhq/astgrep/internal/rulevm"
)

// MatchJSON is one finding's match entry, §6.4's per-match object.
type MatchJSON struct {
	StartRow  int               `json:"start_row"`
	StartCol  int               `json:"start_col"`
	EndRow    int               `json:"end_row"`
	EndCol    int               `json:"end_col"`
	StartByte int               `json:"start_byte"`
	EndByte   int               `json:"end_byte"`
	Bindings  map[string]string `json:"bindings"`
}

// Finding is one rule's applied result: id, severity, message, every
// surviving match, and an optional fix template.
type Finding struct {
	RuleID   string      `json:"ruleId"`
	Severity string      `json:"severity"`
	Message  string      `json:"message"`
	Matches  []MatchJSON `json:"matches"`
	Fix      string      `json:"fix,omitempty"`
}

func matchToJSON(m pattern.Match) MatchJSON {
	bindings := make(map[string]string, m.Bindings.Len())
	for i := 0; i < m.Bindings.Len(); i++ {
		b := m.Bindings.At(i)
		bindings[b.Name] = b.Text
	}
	return MatchJSON{
		StartRow:  m.Range.StartPoint.Row,
		StartCol:  m.Range.StartPoint.Col,
		EndRow:    m.Range.EndPoint.Row,
		EndCol:    m.Range.EndPoint.Col,
		StartByte: m.Range.StartByte,
		EndByte:   m.Range.EndByte,
		Bindings:  bindings,
	}
}

// BuildFinding assembles a Finding from a rule and its surviving matches.
// Returns false if the match list is empty — rules with no matches produce
// no finding, per spec.md §6.4 ("for each rule with at least one surviving
// match").
func BuildFinding(rule rulevm.Rule, matches *pattern.MatchList) (Finding, bool) {
	if matches.Len() == 0 {
		return Finding{}, false
	}
	f := Finding{
		RuleID:   rule.ID,
		Severity: rule.Severity.String(),
		Message:  rule.Message,
		Matches:  make([]MatchJSON, 0, matches.Len()),
	}
	if rule.HasFix {
		f.Fix = rule.Fix
	}
	for i := 0; i < matches.Len(); i++ {
		f.Matches = append(f.Matches, matchToJSON(matches.At(i)))
	}
	return f, true
}

// MarshalFindings renders findings as the §6.4 JSON array. Go's
// encoding/json escapes `" \ \n \r \t` and other control bytes as
// `\u00XX` (`\b` and `\f` in their short form). It also escapes `<`, `>`
// and `&` as `\u00XX` sequences (HTML-safe escaping).
func MarshalFindings(findings []Finding) ([]byte, error) {
	if findings == nil {
		findings = []Finding{}
	}
	return json.Marshal(findings)
}
