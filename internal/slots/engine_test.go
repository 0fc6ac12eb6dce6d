package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/astgrep/internal/rulevm"
	sx "github.com/oxhq/astgrep/internal/sitter"
)

func TestCompilePatternAndFree(t *testing.T) {
	e := New()
	handle := e.CompilePattern(sx.LangJavaScript, []byte("foo($X)"))
	require.NotZero(t, handle)
	assert.NotNil(t, e.Pattern(handle))

	e.FreePattern(handle)
	assert.Nil(t, e.Pattern(handle))
	e.FreePattern(handle) // no-op double free
}

func TestCompilePattern_CapacityExhausted(t *testing.T) {
	e := New()
	for i := 0; i < MaxCompiledSlots; i++ {
		h := e.CompilePattern(sx.LangJavaScript, []byte("x"))
		require.NotZero(t, h)
	}
	assert.Zero(t, e.CompilePattern(sx.LangJavaScript, []byte("y")))
}

func TestPattern_InvalidHandle(t *testing.T) {
	e := New()
	assert.Nil(t, e.Pattern(0))
	assert.Nil(t, e.Pattern(-1))
	assert.Nil(t, e.Pattern(MaxCompiledSlots+1))
}

func TestCompileOrReusePattern_ReusesSameHandle(t *testing.T) {
	e := New()
	h1 := e.CompileOrReusePattern(sx.LangJavaScript, "foo($X)")
	h2 := e.CompileOrReusePattern(sx.LangJavaScript, "foo($X)")
	require.NotZero(t, h1)
	assert.Equal(t, h1, h2)

	h3 := e.CompileOrReusePattern(sx.LangTypeScript, "foo($X)")
	assert.NotEqual(t, h1, h3, "different language must not share a cached slot")
}

func TestCompileOrReusePattern_RecompilesAfterFree(t *testing.T) {
	e := New()
	h1 := e.CompileOrReusePattern(sx.LangJavaScript, "foo($X)")
	e.FreePattern(h1)
	h2 := e.CompileOrReusePattern(sx.LangJavaScript, "foo($X)")
	require.NotZero(t, h2)
}

func TestCompileSourceAndFree(t *testing.T) {
	e := New()
	handle := e.CompileSource(sx.LangJavaScript, []byte("let a = 1;"))
	require.NotZero(t, handle)
	src := e.Source(handle)
	require.NotNil(t, src)
	assert.Equal(t, sx.LangJavaScript, src.Lang())

	e.FreeSource(handle)
	assert.Nil(t, e.Source(handle))
	e.FreeSource(handle)
}

func TestStoreAndFreeMatches(t *testing.T) {
	e := New()
	e.SetLastMatchList(e.lastMatchList) // staging starts empty
	handle := e.StoreMatches()
	require.NotZero(t, handle)
	assert.NotNil(t, e.Matches(handle))

	e.FreeMatches(handle)
	assert.Nil(t, e.Matches(handle))
}

func TestStoreMatches_CapacityExhausted(t *testing.T) {
	e := New()
	for i := 0; i < MaxMatchSlots; i++ {
		require.NotZero(t, e.StoreMatches())
	}
	assert.Zero(t, e.StoreMatches())
}

func TestStoreRulesetAndFreeReleasesPatternSlots(t *testing.T) {
	e := New()
	patHandle := e.CompilePattern(sx.LangJavaScript, []byte("foo($X)"))
	require.NotZero(t, patHandle)

	rs := &rulevm.Ruleset{}
	rs.TrackPatternSlot(patHandle)

	rsHandle := e.StoreRuleset(rs)
	require.NotZero(t, rsHandle)
	assert.NotNil(t, e.Ruleset(rsHandle))

	e.FreeRuleset(rsHandle)
	assert.Nil(t, e.Ruleset(rsHandle))
	assert.Nil(t, e.Pattern(patHandle), "freeing a ruleset must free every pattern slot it tracked")
}

func TestResultBuffer_FixedSize(t *testing.T) {
	e := New()
	assert.Len(t, e.ResultBuffer(), ResultBufferSize)
}
