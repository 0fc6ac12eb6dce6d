// Package rulecache stores raw ruleset bytecode on disk, keyed by the
// SHA-256 of that bytecode, together with optional metadata and a hit
// count. `astgrep scan` still runs rulevm.Decode and the pattern-compilation
// hook on every invocation; a cache entry does not skip decoding. The disk
// layer sits beside the in-memory ruleset_slots[2] table of spec.md §3 and
// never substitutes for it.
//
// Grounded on the teacher's GORM stack: gorm.io/gorm with the
// gorm.io/driver/sqlite dialector the way db/sqlite.go's Connect opens its
// database, AutoMigrate over a tagged struct, and a gorm.io/datatypes.JSON
// metadata column the way models/models.go stores its JSON payload fields.
package rulecache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Entry is one cached ruleset: its content hash, the raw bytecode (so a
// cache hit can skip re-reading the .rsbc file too), optional metadata about
// where it came from, and when it was first seen.
type Entry struct {
	Digest    string         `gorm:"primaryKey;type:varchar(64)"`
	Bytecode  []byte         `gorm:"type:blob;not null"`
	RuleCount int            `gorm:"not null"`
	Meta      datatypes.JSON `gorm:"type:jsonb"`
	FirstSeen time.Time      `gorm:"autoCreateTime"`
	LastHitAt time.Time
	HitCount  int `gorm:"default:0"`
}

// Cache wraps the GORM handle.
type Cache struct {
	db *gorm.DB
}

// Digest returns the content-hash key a ruleset's bytecode caches under.
func Digest(bytecode []byte) string {
	sum := sha256.Sum256(bytecode)
	return hex.EncodeToString(sum[:])
}

// Open opens (creating and migrating if necessary) the cache database under
// dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("rulecache: creating cache directory: %w", err)
	}
	path := filepath.Join(dir, "rulesets.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("rulecache: opening database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("rulecache: migrating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Lookup returns the cached entry for digest, if any.
func (c *Cache) Lookup(digest string) (*Entry, bool) {
	var e Entry
	if err := c.db.First(&e, "digest = ?", digest).Error; err != nil {
		return nil, false
	}
	e.HitCount++
	e.LastHitAt = time.Now().UTC()
	c.db.Model(&e).Updates(map[string]any{"hit_count": e.HitCount, "last_hit_at": e.LastHitAt})
	return &e, true
}

// Store inserts a freshly decoded ruleset into the cache. A digest already
// present is left untouched (the bytecode for a given digest never
// changes). meta is an optional JSON blob (e.g. the source ruleset path) and
// may be nil.
func (c *Cache) Store(digest string, bytecode []byte, ruleCount int, meta []byte) error {
	entry := Entry{Digest: digest, Bytecode: bytecode, RuleCount: ruleCount, Meta: datatypes.JSON(meta)}
	return c.db.Clauses().FirstOrCreate(&entry, Entry{Digest: digest}).Error
}

// Clear deletes every cached entry.
func (c *Cache) Clear() error {
	return c.db.Where("1 = 1").Delete(&Entry{}).Error
}

// Stats reports the number of cached rulesets and their combined bytecode
// size, for `astgrep cache stats`.
func (c *Cache) Stats() (count int64, totalBytes int64, err error) {
	if err = c.db.Model(&Entry{}).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	var entries []Entry
	if err = c.db.Select("bytecode").Find(&entries).Error; err != nil {
		return count, 0, err
	}
	for _, e := range entries {
		totalBytes += int64(len(e.Bytecode))
	}
	return count, totalBytes, nil
}
