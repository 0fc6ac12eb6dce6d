package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds astgrep's runtime configuration: the knobs a consumer (the
// CLI, a future embedding host) cares about. Engine capacity constants
// (MaxMatches, MaxBindings, ...) are never configurable here — spec.md §9
// is explicit that lifting a bound turns a silent truncation into a
// surfaced error, a change to the core's contract, not a deployment knob.
type Config struct {
	DefaultLang    string
	CacheDir       string
	CacheEnabled   bool
	RemoteCacheURL string
	RemoteCacheAuth string
	AuditDBPath    string
	AuditEnabled   bool
	Verbose        bool
}

// Load builds a Config from (in override order) a best-effort .env file,
// ASTGREP_* environment variables, then defaults. cmd/astgrep's cobra flags
// overlay this result last.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("astgrep: .env present but unreadable: %v", err)
	}

	cfg := &Config{
		DefaultLang:  "javascript",
		CacheDir:     ".astgrep/cache",
		CacheEnabled: true,
		AuditDBPath:  ".astgrep/audit.db",
	}

	if v := os.Getenv("ASTGREP_DEFAULT_LANG"); v != "" {
		cfg.DefaultLang = v
	}
	if v := os.Getenv("ASTGREP_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("ASTGREP_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CacheEnabled = b
		}
	}
	if v := os.Getenv("ASTGREP_REMOTE_CACHE_URL"); v != "" {
		cfg.RemoteCacheURL = v
	}
	if v := os.Getenv("ASTGREP_REMOTE_CACHE_AUTH_TOKEN"); v != "" {
		cfg.RemoteCacheAuth = v
	}
	if v := os.Getenv("ASTGREP_AUDIT_DB_PATH"); v != "" {
		cfg.AuditDBPath = v
	}
	if v := os.Getenv("ASTGREP_AUDIT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AuditEnabled = b
		}
	}
	if v := os.Getenv("ASTGREP_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}

	return cfg
}
