package sitter

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree is a parsed source tree together with the bytes it was parsed from.
// It satisfies the "compiled source" lifetime of the data model: the bytes
// and the tree are kept alive together until explicitly released.
type Tree struct {
	Source []byte
	Lang   Lang
	tree   *sitter.Tree
}

// Root returns the tree's root node. Empty input (spec.md §7, parser
// failure) yields a nil tree and a nil root.
func (t *Tree) Root() *sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

// Close releases the underlying tree-sitter tree. Safe to call on a nil
// receiver or an already-closed tree.
func (t *Tree) Close() {
	if t == nil || t.tree == nil {
		return
	}
	t.tree.Close()
	t.tree = nil
}

// pool holds one static *sitter.Parser per language, reused across parses
// via Reset rather than recreated, so a WASM-freestanding host never returns
// pages to an allocator that can't reclaim them. Guarded by a mutex because
// the core as a whole is meant to run single-threaded per spec.md §5, but
// tests may parse from multiple goroutines concurrently against the shared
// package-level pool.
type pool struct {
	mu      sync.Mutex
	parsers map[Lang]*sitter.Parser
}

var shared = &pool{parsers: make(map[Lang]*sitter.Parser)}

func (p *pool) get(l Lang) (*sitter.Parser, *sitter.Language, bool) {
	grammar, ok := resolveGrammar(l)
	if !ok {
		return nil, nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	parser, ok := p.parsers[l]
	if !ok {
		parser = sitter.NewParser()
		parser.SetLanguage(grammar)
		p.parsers[l] = parser
	} else {
		parser.Reset()
	}
	return parser, grammar, true
}

// Parse parses src with the static parser for l, returning a *Tree the
// caller must Close when done. An unsupported language or a parser that
// returns a nil tree (empty input, grammar error) is a parser failure per
// spec.md §7 kind 4: ok is false and no error is returned (nothing is
// fatal; the core never traps).
func Parse(l Lang, src []byte) (t *Tree, ok bool) {
	parser, _, supported := shared.get(l)
	if !supported {
		return nil, false
	}

	owned := make([]byte, len(src))
	copy(owned, src)

	tree, err := parser.ParseCtx(context.Background(), nil, owned)
	if err != nil || tree == nil || tree.RootNode() == nil {
		return nil, false
	}
	return &Tree{Source: owned, Lang: l, tree: tree}, true
}
