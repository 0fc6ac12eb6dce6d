package pattern

import "strings"

// maxMetavarLen bounds metavariable name length defensively; not part of the
// spec's fixed capacities but keeps pathological pattern text from blowing
// up binding storage before MAX_BINDING_TEXT even applies.
const maxMetavarLen = 64

func isNameRune(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// IsMetavariable reports whether text is a bare metavariable: "$" followed
// by one or more of [A-Z0-9_]. Anything else — lowercase, empty, an
// embedded lowercase letter — is a literal, per spec.md §4.2's metavar
// lexical rule.
func IsMetavariable(text string) (name string, ok bool) {
	if len(text) < 2 || text[0] != '$' || text[1] == '.' {
		return "", false
	}
	rest := text[1:]
	if len(rest) == 0 || len(rest) > maxMetavarLen {
		return "", false
	}
	for i := 0; i < len(rest); i++ {
		if !isNameRune(rest[i]) {
			return "", false
		}
	}
	return rest, true
}

// IsEllipsis reports whether text is the bare ellipsis token "...".
func IsEllipsis(text string) bool {
	return text == "..."
}

// IsEllipsisMetavar reports whether text is an ellipsis-metavariable. The
// spec's data model names the form "$...NAME"; its own end-to-end scenario
// 3 writes the same construct as "$$$NAME". Both concrete syntaxes are
// accepted and carry identical semantics (see DESIGN.md) since the spec
// text uses them interchangeably.
func IsEllipsisMetavar(text string) (name string, ok bool) {
	var rest string
	switch {
	case strings.HasPrefix(text, "$..."):
		rest = text[4:]
	case strings.HasPrefix(text, "$$$"):
		rest = text[3:]
	default:
		return "", false
	}
	if len(rest) == 0 || len(rest) > maxMetavarLen {
		return "", false
	}
	for i := 0; i < len(rest); i++ {
		if !isNameRune(rest[i]) {
			return "", false
		}
	}
	return rest, true
}
