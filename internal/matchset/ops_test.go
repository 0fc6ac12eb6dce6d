package matchset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/astgrep/internal/ast"
	"github.com/oxhq/astgrep/internal/pattern"
)

func mkList(ranges ...[2]int) pattern.MatchList {
	var l pattern.MatchList
	for _, r := range ranges {
		l.Append(pattern.Match{Range: ast.Range{StartByte: r[0], EndByte: r[1]}})
	}
	return l
}

func rangesOf(l *pattern.MatchList) [][2]int {
	out := make([][2]int, l.Len())
	for i := 0; i < l.Len(); i++ {
		m := l.At(i)
		out[i] = [2]int{m.Range.StartByte, m.Range.EndByte}
	}
	return out
}

func TestInside(t *testing.T) {
	l := mkList([2]int{5, 10}, [2]int{0, 100})
	refs := mkList([2]int{0, 20})
	Inside(&l, &refs)
	assert.Equal(t, [][2]int{{5, 10}}, rangesOf(&l))
}

func TestNotInside(t *testing.T) {
	l := mkList([2]int{5, 10}, [2]int{0, 100})
	refs := mkList([2]int{0, 20})
	NotInside(&l, &refs)
	assert.Equal(t, [][2]int{{0, 100}}, rangesOf(&l))
}

func TestHas(t *testing.T) {
	l := mkList([2]int{0, 20}, [2]int{5, 10})
	refs := mkList([2]int{5, 10})
	Has(&l, &refs)
	assert.Equal(t, [][2]int{{0, 20}, {5, 10}}, rangesOf(&l))
}

func TestFollowsAndPrecedes(t *testing.T) {
	l := mkList([2]int{10, 20})
	before := mkList([2]int{0, 5})
	Follows(&l, &before)
	assert.Equal(t, 1, l.Len(), "a ref strictly before m satisfies Follows")

	l2 := mkList([2]int{0, 5})
	after := mkList([2]int{10, 20})
	Precedes(&l2, &after)
	assert.Equal(t, 1, l2.Len())
}

func TestExclude(t *testing.T) {
	l := mkList([2]int{0, 5}, [2]int{10, 20})
	refs := mkList([2]int{0, 5})
	Exclude(&l, &refs)
	assert.Equal(t, [][2]int{{10, 20}}, rangesOf(&l))
}

func TestIntersect(t *testing.T) {
	l := mkList([2]int{0, 10}, [2]int{20, 30})
	refs := mkList([2]int{5, 25})
	Intersect(&l, &refs)
	assert.Equal(t, 2, l.Len(), "both ranges overlap the single wide ref")
}

func TestUnion_Dedup(t *testing.T) {
	l := mkList([2]int{0, 5})
	refs := mkList([2]int{0, 5}, [2]int{10, 20})
	Union(&l, &refs)
	assert.Equal(t, [][2]int{{0, 5}, {10, 20}}, rangesOf(&l))
}

func TestUnion_RespectsCapacity(t *testing.T) {
	var l pattern.MatchList
	for i := 0; i < pattern.MaxMatches; i++ {
		l.Append(pattern.Match{Range: ast.Range{StartByte: i, EndByte: i + 1}})
	}
	refs := mkList([2]int{1000, 1001})
	Union(&l, &refs)
	assert.Equal(t, pattern.MaxMatches, l.Len())
}
