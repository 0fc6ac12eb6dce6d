package slots

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/astgrep/internal/pattern"
)

// PatternFinder adapts one compiled pattern to the ast.Finder interface, so
// find/findAll/matches (spec.md §4.5) can reuse pattern.SearchInRange
// without the ast package importing pattern.
type PatternFinder struct {
	PatRoot *sitter.Node
	PatSrc  []byte
	SrcSrc  []byte
}

func (f *PatternFinder) ctx() *pattern.Context {
	return &pattern.Context{PatSrc: f.PatSrc, SrcSrc: f.SrcSrc}
}

// FindFirstInRange returns the first match (pre-order) inside [start, end).
func (f *PatternFinder) FindFirstInRange(root *sitter.Node, start, end int) (*sitter.Node, bool) {
	list := pattern.SearchInRange(f.ctx(), f.PatRoot, root, start, end)
	if list.Len() == 0 {
		return nil, false
	}
	m := list.At(0)
	n := root.NamedDescendantForByteRange(uint32(m.Range.StartByte), uint32(m.Range.EndByte))
	if n == nil {
		return nil, false
	}
	return n, true
}

// FindAllInRange returns every match inside [start, end), deduplicated by
// exact range (pattern.SearchInRange already guarantees this).
func (f *PatternFinder) FindAllInRange(root *sitter.Node, start, end int) []*sitter.Node {
	list := pattern.SearchInRange(f.ctx(), f.PatRoot, root, start, end)
	out := make([]*sitter.Node, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		m := list.At(i)
		n := root.NamedDescendantForByteRange(uint32(m.Range.StartByte), uint32(m.Range.EndByte))
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// FinderFor builds a PatternFinder for the pattern held at handle, against
// srcSrc. Returns ok=false on an invalid or freed handle.
func (e *Engine) FinderFor(handle int, srcSrc []byte) (*PatternFinder, bool) {
	p := e.Pattern(handle)
	if p == nil {
		return nil, false
	}
	return &PatternFinder{PatRoot: p.Root(), PatSrc: p.Source(), SrcSrc: srcSrc}, true
}
