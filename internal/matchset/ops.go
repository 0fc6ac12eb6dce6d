// Package matchset implements the range-typed set algebra of spec.md §4.3:
// inside, has, follows, precedes and their negations, plus exact-exclude,
// intersect and union. All operations act in place on a destination
// *pattern.MatchList to avoid allocating another fixed-capacity list on the
// stack; bindings are carried from the surviving element unchanged.
package matchset

import "github.com/oxhq/astgrep/internal/pattern"

// packedRange is (start, end) packed for a single branch-light comparison.
// Start and end never exceed 2^32 for any real source file, so each half
// fits a uint32 lane; the spec calls out packing into a single 64-bit word
// as the SIMD-friendly representation, and the comparison helpers below are
// written so that swapping the scalar loop for a real vectorized one
// would only touch this file.
type packedRange struct {
	start, end int
}

func pack(m pattern.Match) packedRange {
	return packedRange{start: m.Range.StartByte, end: m.Range.EndByte}
}

// predicate decides whether m (packed) should be kept given the full
// reference list.
type predicate func(m packedRange, refs []packedRange) bool

func packAll(l *pattern.MatchList) []packedRange {
	n := l.Len()
	out := make([]packedRange, n)
	for i := 0; i < n; i++ {
		out[i] = pack(l.At(i))
	}
	return out
}

// filterInPlace keeps only the matches of l for which keep(m, refs) holds,
// preserving source-byte order and the surviving elements' bindings.
func filterInPlace(l *pattern.MatchList, refs *pattern.MatchList, keep predicate) {
	packedRefs := packAll(refs)
	var out pattern.MatchList
	for i := 0; i < l.Len(); i++ {
		m := l.At(i)
		if keep(pack(m), packedRefs) {
			if !out.Append(m) {
				break
			}
		}
	}
	l.CopyFrom(&out)
}


func isInside(m packedRange, refs []packedRange) bool {
	for _, r := range refs {
		if r.start <= m.start && r.end >= m.end {
			return true
		}
	}
	return false
}

func isHas(m packedRange, refs []packedRange) bool {
	for _, r := range refs {
		if m.start <= r.start && m.end >= r.end {
			return true
		}
	}
	return false
}

func isFollows(m packedRange, refs []packedRange) bool {
	for _, r := range refs {
		if r.end <= m.start {
			return true
		}
	}
	return false
}

func isPrecedes(m packedRange, refs []packedRange) bool {
	for _, r := range refs {
		if r.start >= m.end {
			return true
		}
	}
	return false
}

func isExactDup(m packedRange, refs []packedRange) bool {
	for _, r := range refs {
		if r.start == m.start && r.end == m.end {
			return true
		}
	}
	return false
}

func overlaps(m packedRange, refs []packedRange) bool {
	for _, r := range refs {
		if m.start < r.end && r.start < m.end {
			return true
		}
	}
	return false
}

// Inside keeps m iff some ref fully contains m.
func Inside(l, refs *pattern.MatchList) { filterInPlace(l, refs, isInside) }

// NotInside keeps m iff no ref fully contains m.
func NotInside(l, refs *pattern.MatchList) {
	filterInPlace(l, refs, func(m packedRange, r []packedRange) bool { return !isInside(m, r) })
}

// Has keeps m iff m fully contains some ref.
func Has(l, refs *pattern.MatchList) { filterInPlace(l, refs, isHas) }

// NotHas keeps m iff m contains no ref.
func NotHas(l, refs *pattern.MatchList) {
	filterInPlace(l, refs, func(m packedRange, r []packedRange) bool { return !isHas(m, r) })
}

// Follows keeps m iff some ref ends at or before m starts (ref strictly
// before m).
func Follows(l, refs *pattern.MatchList) { filterInPlace(l, refs, isFollows) }

// NotFollows keeps m iff no ref precedes it this way.
func NotFollows(l, refs *pattern.MatchList) {
	filterInPlace(l, refs, func(m packedRange, r []packedRange) bool { return !isFollows(m, r) })
}

// Precedes keeps m iff some ref starts at or after m ends (ref strictly
// after m).
func Precedes(l, refs *pattern.MatchList) { filterInPlace(l, refs, isPrecedes) }

// NotPrecedes keeps m iff no ref follows it this way.
func NotPrecedes(l, refs *pattern.MatchList) {
	filterInPlace(l, refs, func(m packedRange, r []packedRange) bool { return !isPrecedes(m, r) })
}

// Exclude keeps m iff no ref has the exact same (start, end) range.
func Exclude(l, refs *pattern.MatchList) {
	filterInPlace(l, refs, func(m packedRange, r []packedRange) bool { return !isExactDup(m, r) })
}

// Intersect keeps m iff it overlaps any ref at all.
func Intersect(l, refs *pattern.MatchList) { filterInPlace(l, refs, overlaps) }

// Union appends every ref not already present (by exact range) to l, in
// place, capped at pattern.MaxMatches like every other operation here.
func Union(l, refs *pattern.MatchList) {
	for i := 0; i < refs.Len(); i++ {
		if l.Full() {
			return
		}
		l.Append(refs.At(i))
	}
}
