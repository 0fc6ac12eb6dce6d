package diffutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteFix_ReplacesBoundMetavars(t *testing.T) {
	out := SubstituteFix("console.error($MSG)", map[string]string{"MSG": `"oops"`})
	assert.Equal(t, `console.error("oops")`, out)
}

func TestSubstituteFix_LeavesUnboundMetavarUntouched(t *testing.T) {
	out := SubstituteFix("foo($X, $Y)", map[string]string{"X": "1"})
	assert.Equal(t, "foo(1, $Y)", out)
}

func TestPreview_ProducesUnifiedDiffHeader(t *testing.T) {
	out := Preview("file.js", "console.log(1)\n", "console.error(1)\n", 3)
	assert.True(t, strings.HasPrefix(out, "---"))
	assert.Contains(t, out, "+++")
	assert.Contains(t, out, "-console.log(1)")
	assert.Contains(t, out, "+console.error(1)")
}

func TestPreview_NoChangeYieldsEmptyDiff(t *testing.T) {
	out := Preview("file.js", "same\n", "same\n", 3)
	assert.Empty(t, out)
}
