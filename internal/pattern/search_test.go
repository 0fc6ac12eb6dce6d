package pattern

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/astgrep/internal/ast"
	"github.com/oxhq/astgrep/internal/sitter"
)

func parseBoth(t *testing.T, patSrc, srcSrc string) (*sitter.Tree, *sitter.Tree) {
	t.Helper()
	pat, ok := sitter.Parse(sitter.LangJavaScript, []byte(patSrc))
	require.True(t, ok)
	src, ok := sitter.Parse(sitter.LangJavaScript, []byte(srcSrc))
	require.True(t, ok)
	return pat, src
}

func TestSearch_MetavariableBindsCallArgument(t *testing.T) {
	pat, src := parseBoth(t, "foo($X)", "foo(1); foo(bar);")
	defer pat.Close()
	defer src.Close()

	ctx := &Context{PatSrc: pat.Source, SrcSrc: src.Source}
	list := Search(ctx, pat.Root(), src.Root())

	require.Equal(t, 2, list.Len())
	b0 := list.At(0).Bindings
	x, ok := b0.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, "1", x.Text)
}

func TestSearch_RepeatMetavarRequiresSameText(t *testing.T) {
	pat, src := parseBoth(t, "foo($X, $X)", "foo(1, 1); foo(1, 2);")
	defer pat.Close()
	defer src.Close()

	ctx := &Context{PatSrc: pat.Source, SrcSrc: src.Source}
	list := Search(ctx, pat.Root(), src.Root())

	require.Equal(t, 1, list.Len())
	x, _ := list.At(0).Bindings.Lookup("X")
	assert.Equal(t, "1", x.Text)
}

func TestSearch_EllipsisMatchesZeroOrMoreArgs(t *testing.T) {
	pat, src := parseBoth(t, "setTimeout($FN, ...)", "setTimeout(fn, 0); setTimeout(fn2);")
	defer pat.Close()
	defer src.Close()

	ctx := &Context{PatSrc: pat.Source, SrcSrc: src.Source}
	list := Search(ctx, pat.Root(), src.Root())

	assert.Equal(t, 2, list.Len())
}

func TestSearch_EllipsisMetavarCapturesSpan(t *testing.T) {
	pat, src := parseBoth(t, "foo($...ARGS)", "foo(1, 2, 3);")
	defer pat.Close()
	defer src.Close()

	ctx := &Context{PatSrc: pat.Source, SrcSrc: src.Source}
	list := Search(ctx, pat.Root(), src.Root())

	require.Equal(t, 1, list.Len())
	args, ok := list.At(0).Bindings.Lookup("ARGS")
	require.True(t, ok)
	assert.Equal(t, "1, 2, 3", args.Text)
}

func TestSearch_NoMatch(t *testing.T) {
	pat, src := parseBoth(t, "bar($X)", "foo(1);")
	defer pat.Close()
	defer src.Close()

	ctx := &Context{PatSrc: pat.Source, SrcSrc: src.Source}
	list := Search(ctx, pat.Root(), src.Root())
	assert.Equal(t, 0, list.Len())
}

func TestSearchInRange_PrunesOutsideRange(t *testing.T) {
	pat, src := parseBoth(t, "foo($X)", "foo(1); foo(2);")
	defer pat.Close()
	defer src.Close()

	ctx := &Context{PatSrc: pat.Source, SrcSrc: src.Source}
	full := Search(ctx, pat.Root(), src.Root())
	require.Equal(t, 2, full.Len())

	firstRange := full.At(0).Range
	scoped := SearchInRange(ctx, pat.Root(), src.Root(), firstRange.StartByte, firstRange.EndByte)
	assert.Equal(t, 1, scoped.Len())
}

func TestCollectByKind(t *testing.T) {
	src, ok := sitter.Parse(sitter.LangJavaScript, []byte("var a; var b; const c = 1;"))
	require.True(t, ok)
	defer src.Close()

	list := CollectByKind(src.Root(), "variable_declaration")
	assert.Equal(t, 2, list.Len())
}

func TestCollectByKindAll_SeesComments(t *testing.T) {
	src, ok := sitter.Parse(sitter.LangJavaScript, []byte("// hi\nlet a;"))
	require.True(t, ok)
	defer src.Close()

	namedOnly := CollectByKind(src.Root(), "comment")
	all := CollectByKindAll(src.Root(), "comment")
	assert.Equal(t, 0, namedOnly.Len())
	assert.Equal(t, 1, all.Len())
}

func TestCollectPrecedingFollowingSiblings(t *testing.T) {
	src, ok := sitter.Parse(sitter.LangJavaScript, []byte("let a; let b; let c;"))
	require.True(t, ok)
	defer src.Close()

	root := src.Root()
	second := root.NamedChild(1)
	start, end := int(second.StartByte()), int(second.EndByte())

	preceding := CollectPrecedingSiblings(root, start, end)
	following := CollectFollowingSiblings(root, start, end)
	assert.Equal(t, 1, preceding.Len())
	assert.Equal(t, 1, following.Len())
}

func TestCollectByRegex(t *testing.T) {
	src, ok := sitter.Parse(sitter.LangJavaScript, []byte(`let a = "needle"; let b = "other";`))
	require.True(t, ok)
	defer src.Close()

	re := regexp.MustCompile("needle")
	list := CollectByRegex(src.Root(), src.Source, re)
	assert.Equal(t, 1, list.Len())
}

func TestMatchList_CapacityAndDedup(t *testing.T) {
	var l MatchList
	for i := 0; i < MaxMatches; i++ {
		ok := l.Append(Match{Range: rangeAt(i)})
		require.True(t, ok)
	}
	assert.True(t, l.Full())
	assert.False(t, l.Append(Match{Range: rangeAt(MaxMatches)}), "append past capacity must fail")

	dup := l.Append(Match{Range: rangeAt(0)})
	assert.False(t, dup, "exact-range duplicate must be rejected even when not full")
}

func rangeAt(i int) ast.Range {
	return ast.Range{StartByte: i, EndByte: i + 1}
}
