// Package slots implements the compiled-tree cache of spec.md §3: fixed
// slot tables that hold parsed patterns and parsed sources so repeated
// matches skip re-parsing, plus the staging match list and the single
// global result buffer that serializes results back to the host.
//
// Handles are 1-based; 0 denotes error or "no such slot", per spec.md §6.5.
// Freeing an invalid or already-freed handle is a no-op (spec.md §3, §5).
package slots

import (
	sitter "github.com/smacker/go-tree-sitter"

	sx "github.com/oxhq/astgrep/internal/sitter"
)

// CompiledPattern is an owned copy of a pattern's bytes plus its parsed
// tree, kept alive until explicitly released.
type CompiledPattern struct {
	tree *sx.Tree
}

// Root returns the pattern's root node.
func (c *CompiledPattern) Root() *sitter.Node { return c.tree.Root() }

// Source returns the owned pattern bytes.
func (c *CompiledPattern) Source() []byte { return c.tree.Source }

// CompiledSource is an owned copy of a source file's bytes plus its parsed
// tree.
type CompiledSource struct {
	tree *sx.Tree
}

// Root returns the source's root node.
func (c *CompiledSource) Root() *sitter.Node { return c.tree.Root() }

// Source returns the owned source bytes.
func (c *CompiledSource) Source() []byte { return c.tree.Source }

// Lang returns the language the source was parsed with.
func (c *CompiledSource) Lang() sx.Lang { return c.tree.Lang }
