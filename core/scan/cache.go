package scan

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/EzraMarks/obsidian-image-converter/core"
)

type cacheWrite struct {
	name    string
	size    int64
	modTime time.Time
	ex      core.Extraction
}

// Cache remembers extraction results keyed by (name, size, mtime) so
// repeat scans skip files that have not changed. All writes funnel
// through a single goroutine; sqlite tolerates one writer at a time.
type Cache struct {
	db         *sql.DB
	writes     chan cacheWrite
	writerDone sync.WaitGroup
}

// OpenCache opens or creates the scan cache database under root.
func OpenCache(root string) (*Cache, error) {
	cacheDir := filepath.Join(root, ".imgmeta-cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(cacheDir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// WAL keeps readers unblocked while the writer goroutine works.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	// Retry for a while instead of failing immediately on contention.
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS files (
		name TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		date_taken TEXT NOT NULL DEFAULT '',
		original_name TEXT NOT NULL DEFAULT '',
		processed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mod_time ON files(mod_time);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	c := &Cache{
		db:     db,
		writes: make(chan cacheWrite, 1000),
	}
	c.writerDone.Add(1)
	go c.writerLoop()
	return c, nil
}

func (c *Cache) writerLoop() {
	defer c.writerDone.Done()
	for w := range c.writes {
		_, err := c.db.Exec(`
			INSERT OR REPLACE INTO files
			(name, size, mod_time, date_taken, original_name, processed_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, w.name, w.size, w.modTime.Unix(), w.ex.DateTaken, w.ex.OriginalFileName, time.Now().Unix())
		if err != nil {
			// Cache is best-effort; a failed write only costs a rescan.
			log.Warn().Err(err).Str("file", w.name).Msg("cache write failed")
		}
	}
}

// Close drains pending writes and closes the database.
func (c *Cache) Close() error {
	if c.writes != nil {
		close(c.writes)
		c.writerDone.Wait()
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached extraction when the file's identity still
// matches what was stored.
func (c *Cache) Get(name string, size int64, modTime time.Time) (core.Extraction, bool) {
	var ex core.Extraction
	err := c.db.QueryRow(`
		SELECT date_taken, original_name FROM files
		WHERE name = ? AND size = ? AND mod_time = ?
	`, name, size, modTime.Unix()).Scan(&ex.DateTaken, &ex.OriginalFileName)
	if err != nil {
		return core.Extraction{}, false
	}
	return ex, true
}

// Put queues an extraction result for writing. It never blocks: when
// the queue is full the write is dropped and the file will simply be
// scanned again next time.
func (c *Cache) Put(name string, size int64, modTime time.Time, ex core.Extraction) error {
	select {
	case c.writes <- cacheWrite{name: name, size: size, modTime: modTime, ex: ex}:
		return nil
	default:
		return fmt.Errorf("cache write queue full")
	}
}

// Stats reports row counts for the summary output.
func (c *Cache) Stats() (total, dated, annotated int64) {
	c.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&total)
	c.db.QueryRow("SELECT COUNT(*) FROM files WHERE date_taken != ''").Scan(&dated)
	c.db.QueryRow("SELECT COUNT(*) FROM files WHERE original_name != ''").Scan(&annotated)
	return
}

// PruneDeleted removes entries for files no longer present.
func (c *Cache) PruneDeleted(valid map[string]bool) (int64, error) {
	rows, err := c.db.Query("SELECT name FROM files")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var toDelete []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		if !valid[name] {
			toDelete = append(toDelete, name)
		}
	}
	if len(toDelete) == 0 {
		return 0, nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM files WHERE name = ?")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, name := range toDelete {
		if _, err := stmt.Exec(name); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int64(len(toDelete)), nil
}
