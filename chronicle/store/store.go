// Package store persists computed analytics summaries in a Pebble key-value
// database keyed by the content hash of the uploaded transcript. Entries are
// write-once and never evicted, so a repeat upload of the same bytes skips
// the whole pipeline even across process restarts.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble"

	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle"
)

const summaryKeyPrefix = "summary:"

// ResultCache is a durable chronicle.ResultStore. Read and write failures are
// logged and degrade to cache misses/no-ops; they never block producing a
// fresh result.
type ResultCache struct {
	db  *pebble.DB
	log *slog.Logger
}

// Open opens (or creates) the cache database at path.
func Open(path string, log *slog.Logger) (*ResultCache, error) {
	if path == "" {
		return nil, errors.New("store.Open: path is empty")
	}
	if log == nil {
		log = slog.Default()
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("store.Open: %w", err)
	}
	log.Info("result_cache_opened", "path", path)
	return &ResultCache{db: db, log: log}, nil
}

// Close closes the underlying database.
func (c *ResultCache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Get returns the cached summary for a content hash, if present.
func (c *ResultCache) Get(hash string) (*chronicle.Summary, bool) {
	val, closer, err := c.db.Get(c.key(hash))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("result_cache_read_failed", "hash", hash, "err", err)
		return nil, false
	}
	defer closer.Close()

	var s chronicle.Summary
	if err := json.Unmarshal(val, &s); err != nil {
		c.log.Warn("result_cache_entry_corrupt", "hash", hash, "err", err)
		return nil, false
	}
	return &s, true
}

// Put stores a computed summary under its content hash.
func (c *ResultCache) Put(hash string, s *chronicle.Summary) {
	data, err := json.Marshal(s)
	if err != nil {
		c.log.Warn("result_cache_marshal_failed", "hash", hash, "err", err)
		return
	}
	if err := c.db.Set(c.key(hash), data, pebble.Sync); err != nil {
		c.log.Warn("result_cache_write_failed", "hash", hash, "err", err)
		return
	}
	c.log.Info("result_cached", "hash", hash, "bytes", len(data))
}

func (c *ResultCache) key(hash string) []byte {
	return []byte(summaryKeyPrefix + hash)
}
