package driver

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"mermaidviz/internal/diagram"
)

type memEntry struct {
	content Digest
	records []diagram.Record
}

// MemoryCache keeps recent extraction results per absolute path, validated by content hash.
type MemoryCache struct {
	lru *lru.Cache[string, memEntry]
}

// NewMemoryCache creates a MemoryCache holding up to size documents.
func NewMemoryCache(size int) (*MemoryCache, error) {
	c, err := lru.New[string, memEntry](max(size, 1))
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: c}, nil
}

// Get returns the cached records when path was stored with the same content.
func (c *MemoryCache) Get(path string, content Digest) ([]diagram.Record, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.lru.Get(path)
	if !ok || e.content != content {
		return nil, false
	}
	return e.records, true
}

// Put stores records for path.
func (c *MemoryCache) Put(path string, content Digest, records []diagram.Record) {
	if c == nil {
		return
	}
	c.lru.Add(path, memEntry{content: content, records: records})
}

// Len returns the number of cached documents.
func (c *MemoryCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
