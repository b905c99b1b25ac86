// Package cache provides file-based caching of per-file analysis results,
// keyed by path and validated against a content hash so stale entries never
// survive an edit.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Cache stores serialized FileResults on disk.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry represents a cached analysis result.
type Entry struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a new cache instance rooted at dir.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// HashBytes computes a BLAKE3 content hash as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// GetWithHash retrieves a cached entry only if the content hash matches and
// the entry is within its TTL.
func (c *Cache) GetWithHash(key, hash string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	data, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Hash != hash {
		return nil, false
	}

	if time.Since(entry.Timestamp) > c.ttl {
		os.Remove(c.keyPath(key))
		return nil, false
	}

	return entry.Data, true
}

// SetWithHash stores data under key, recording the content hash it was
// computed from.
func (c *Cache) SetWithHash(key, hash string, data []byte) error {
	if !c.enabled {
		return nil
	}

	entry := Entry{
		Hash:      hash,
		Timestamp: time.Now(),
		Data:      data,
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), entryData, 0600)
}

// Invalidate removes a cache entry.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	return os.Remove(c.keyPath(key))
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a key to a filesystem path. xxhash is enough here: the
// key only needs a stable, collision-sparse filename, not a cryptographic
// digest.
func (c *Cache) keyPath(key string) string {
	sum := xxhash.Sum64String(key)
	return filepath.Join(c.dir, fmt.Sprintf("%016x.json", sum))
}
