// Package diffutil renders unified diffs for `astgrep scan --diff`'s fix
// preview, using pmezard/go-difflib the way the teacher's own
// internal/util.UnifiedDiff does. The teacher's internal/core/pipeline.go
// carries a `generateDiff` with a `// in production, use a proper diff
// library` TODO it never resolves by reaching for go-difflib itself
// (instead hand-rolling a line diff) even though the module already
// depends on the library elsewhere — this package is that resolution,
// applied to fix-template previews instead of an applied rewrite.
package diffutil

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SubstituteFix renders a rule's fix template by replacing every "$NAME"
// occurrence with the matching binding's captured text. A template
// referencing a metavariable the match never bound is left untouched —
// this is a consumer-layer convenience, not part of the core (spec.md §4.4
// decodes FIX and TRANSFORM verbatim and never evaluates them).
func SubstituteFix(template string, bindings map[string]string) string {
	out := template
	for name, text := range bindings {
		out = strings.ReplaceAll(out, "$"+name, text)
	}
	return out
}

// Preview renders a unified diff between a match's original text and what
// its rule's fix template would produce, without writing anything — `scan
// --diff` only previews; spec.md's Non-goals exclude rewriting entirely.
func Preview(path, original, proposed string, context int) string {
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(proposed),
		FromFile: path,
		ToFile:   path + " (proposed fix)",
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return fmt.Sprintf("(diff error: %v)", err)
	}
	return text
}
