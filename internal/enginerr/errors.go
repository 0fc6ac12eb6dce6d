// Package enginerr holds sentinel errors and codes for the CLI/config/
// cache/audit plumbing, where a wrong ruleset path or a malformed bytecode
// file genuinely is a reportable failure. The matching core itself never
// returns an error (spec.md §7: "nothing is fatal; the core never traps").
// No other package in the module imports enginerr; the CLI reports
// fmt.Errorf-wrapped errors.
package enginerr

import "errors"

// Sentinel errors for programmatic checking.
var (
	ErrRulesetNotFound  = errors.New("ruleset file not found")
	ErrRulesetMalformed = errors.New("ruleset bytecode is malformed")
	ErrSourceUnreadable = errors.New("source file could not be read")
	ErrNoSourcesMatched = errors.New("glob matched no source files")
	ErrUnsupportedLang  = errors.New("unsupported language")
	ErrCacheUnavailable = errors.New("ruleset cache is unavailable")
)

// Code is a machine-readable error category for JSON CLI output.
type Code string

const (
	CodeNone             Code = ""
	CodeRulesetNotFound  Code = "ERR_RULESET_NOT_FOUND"
	CodeRulesetMalformed Code = "ERR_RULESET_MALFORMED"
	CodeSourceUnreadable Code = "ERR_SOURCE_UNREADABLE"
	CodeNoSourcesMatched Code = "ERR_NO_SOURCES_MATCHED"
	CodeUnsupportedLang  Code = "ERR_UNSUPPORTED_LANG"
	CodeCacheUnavailable Code = "ERR_CACHE_UNAVAILABLE"
	CodeUnknown          Code = "ERR_UNKNOWN"
)

// CodeFor maps a sentinel error to its JSON-visible Code, falling back to
// CodeUnknown for anything this package didn't originate.
func CodeFor(err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, ErrRulesetNotFound):
		return CodeRulesetNotFound
	case errors.Is(err, ErrRulesetMalformed):
		return CodeRulesetMalformed
	case errors.Is(err, ErrSourceUnreadable):
		return CodeSourceUnreadable
	case errors.Is(err, ErrNoSourcesMatched):
		return CodeNoSourcesMatched
	case errors.Is(err, ErrUnsupportedLang):
		return CodeUnsupportedLang
	case errors.Is(err, ErrCacheUnavailable):
		return CodeCacheUnavailable
	default:
		return CodeUnknown
	}
}
