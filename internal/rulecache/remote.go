package rulecache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// RemoteSync pushes and pulls cache entries to a libsql/Turso database, for
// teams sharing a compiled-ruleset cache across CI runners. Grounded on the
// teacher's own libsql wiring in db/sqlite.go (isURL/NewConnector), adapted
// here to the plain database/sql "libsql" driver the client package
// registers, since the remote side of this cache has no need for GORM's
// model layer — one table, two columns.
type RemoteSync struct {
	db *sql.DB
}

// DialRemote opens a connection to url (a libsql:// or https:// Turso
// database URL), authenticating with token if non-empty, and ensures the
// remote schema exists.
func DialRemote(url, token string) (*RemoteSync, error) {
	dsn := url
	if token != "" {
		dsn = fmt.Sprintf("%s?authToken=%s", url, token)
	}
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("rulecache: dialing remote cache: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS rulesets (
		digest      TEXT PRIMARY KEY,
		bytecode    BLOB NOT NULL,
		rule_count  INTEGER NOT NULL,
		pushed_at   TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("rulecache: provisioning remote schema: %w", err)
	}
	return &RemoteSync{db: db}, nil
}

// Close closes the remote connection.
func (r *RemoteSync) Close() error { return r.db.Close() }

// Push uploads a local cache entry, replacing any existing row for the same
// digest.
func (r *RemoteSync) Push(digest string, bytecode []byte, ruleCount int) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO rulesets (digest, bytecode, rule_count, pushed_at) VALUES (?, ?, ?, ?)`,
		digest, bytecode, ruleCount, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("rulecache: pushing %s: %w", digest, err)
	}
	return nil
}

// Pull fetches bytecode for digest from the remote cache, if present.
func (r *RemoteSync) Pull(digest string) ([]byte, bool, error) {
	var bytecode []byte
	err := r.db.QueryRow(`SELECT bytecode FROM rulesets WHERE digest = ?`, digest).Scan(&bytecode)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rulecache: pulling %s: %w", digest, err)
	}
	return bytecode, true, nil
}
