package pattern

import "github.com/oxhq/astgrep/internal/ast"

// MaxBindings is the fixed capacity of a Bindings set (spec.md §3).
const MaxBindings = 16

// MaxBindingText bounds a single binding's captured text in bytes. A
// candidate bind whose text is longer is rejected outright, not truncated.
const MaxBindingText = 256

// Binding is a single metavariable capture.
type Binding struct {
	Name  string
	Text  string
	Range ast.Range
}

// Bindings is a fixed-capacity, cheap-to-clone set of Binding values. Zero
// value is an empty set, ready to use.
type Bindings struct {
	items [MaxBindings]Binding
	n     int
}

// Len returns the number of bindings currently held.
func (b *Bindings) Len() int { return b.n }

// At returns the i'th binding. Panics if i is out of range; callers always
// range over [0, Len()).
func (b *Bindings) At(i int) Binding { return b.items[i] }

// Lookup returns the binding for name, if any.
func (b *Bindings) Lookup(name string) (Binding, bool) {
	for i := 0; i < b.n; i++ {
		if b.items[i].Name == name {
			return b.items[i], true
		}
	}
	return Binding{}, false
}

// Bind records a (name, text, range) triple. A second bind to the same name
// succeeds iff text is byte-equal to the first binding's text — this is the
// sole mechanism enforcing repeat-metavariable constraints like
// foo($X, $X). A bind that would exceed MaxBindings or whose text exceeds
// MaxBindingText fails the candidate locally (spec.md §7 kind 6); the
// caller backtracks.
func (b *Bindings) Bind(name, text string, rng ast.Range) bool {
	if existing, ok := b.Lookup(name); ok {
		return existing.Text == text
	}
	if len(text) > MaxBindingText {
		return false
	}
	if b.n >= MaxBindings {
		return false
	}
	b.items[b.n] = Binding{Name: name, Text: text, Range: rng}
	b.n++
	return true
}

// Clone returns a cheap by-value copy, used to snapshot bindings before a
// speculative match attempt so failure can be restored without mutation.
func (b Bindings) Clone() Bindings { return b }

// Names returns the bound metavariable names in bind order, mainly for
// serializers that need a stable iteration order.
func (b *Bindings) Names() []string {
	out := make([]string, b.n)
	for i := 0; i < b.n; i++ {
		out[i] = b.items[i].Name
	}
	return out
}
