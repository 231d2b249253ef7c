// Package labelcache provides the in-memory cache of parsed label tables,
// keyed by absolute file path.
package labelcache

import (
	"sync"

	"label-resolver/internal/labelfile"

	"github.com/rs/zerolog/log"
)

// Cache maps absolute label file paths to parsed tables. Entries are
// populated lazily and never evicted; Clear drops everything at once. The
// key is the resolved path, not (fileId, language): two packages providing
// the same file id and language are distinct entries.
type Cache struct {
	mu     sync.RWMutex
	tables map[string]labelfile.Table

	// parse is swapped out by tests to count or fake file reads.
	parse func(path string) (labelfile.Table, error)
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		tables: make(map[string]labelfile.Table),
		parse:  labelfile.ParseFile,
	}
}

// GetOrParse returns the table cached under path, parsing the file on a
// miss. Concurrent callers racing on the same miss may each parse; the first
// insert wins and is what every later reader observes. Parsing happens
// outside the lock so unrelated lookups never wait on file I/O.
//
// A failed read yields an empty table that is NOT cached, so a transient
// failure is retried on the next call instead of being memoized as absence.
func (c *Cache) GetOrParse(path string) labelfile.Table {
	c.mu.RLock()
	table, ok := c.tables[path]
	c.mu.RUnlock()
	if ok {
		return table
	}

	table, err := c.parse(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to parse label file")
		return table
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.tables[path]; ok {
		return existing
	}
	c.tables[path] = table
	return table
}

// Clear drops every cached table. Subsequent lookups re-parse from disk.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.tables)
	c.tables = make(map[string]labelfile.Table)
	c.mu.Unlock()

	log.Info().Int("evicted", n).Msg("Label cache cleared")
}

// Len reports how many files are currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
