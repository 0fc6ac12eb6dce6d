// Package sitter wraps the concrete tree-sitter parser behind the thin
// TS-API adapter the matching core is built on: parse, get a root node, walk
// it. Only JavaScript, TypeScript and TSX grammars are resolved here; the
// grammars themselves are linked in from github.com/smacker/go-tree-sitter
// and are not reimplemented.
package sitter

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Lang identifies one of the three grammars the core supports.
type Lang uint8

const (
	// LangJavaScript is the JavaScript grammar.
	LangJavaScript Lang = 1
	// LangTypeScript is the TypeScript grammar.
	LangTypeScript Lang = 2
	// LangTSX is the TypeScript grammar with JSX/TSX extensions.
	LangTSX Lang = 3
)

// String returns the canonical lowercase name of the language.
func (l Lang) String() string {
	switch l {
	case LangJavaScript:
		return "javascript"
	case LangTypeScript:
		return "typescript"
	case LangTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// ParseLang converts a short name ("js", "javascript", "ts", "typescript",
// "tsx") into a Lang. The empty tag and unrecognized names report ok=false.
func ParseLang(name string) (Lang, bool) {
	switch name {
	case "javascript", "js", "node", "nodejs":
		return LangJavaScript, true
	case "typescript", "ts":
		return LangTypeScript, true
	case "tsx":
		return LangTSX, true
	default:
		return 0, false
	}
}

// resolveGrammar returns the *sitter.Language backing a Lang. tsx uses the
// TypeScript grammar's tsx dialect; it already accepts JSX/TSX.
func resolveGrammar(l Lang) (*sitter.Language, bool) {
	switch l {
	case LangJavaScript:
		return javascript.GetLanguage(), true
	case LangTypeScript:
		return typescript.GetLanguage(), true
	case LangTSX:
		return tsx.GetLanguage(), true
	default:
		return nil, false
	}
}
