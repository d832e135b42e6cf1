// Package cache stores parsed documents keyed by their content digest so an
// unchanged template is only parsed once across runs.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/ppiankov/conformia/internal/model"
)

const keyPrefix = "conformia:v1:"

// Cache is a byte-oriented key/value store with per-entry expiry
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key of a document from its format and raw bytes
func Key(fileType model.FileType, data []byte) string {
	sum := blake3.Sum256(data)
	return keyPrefix + string(fileType) + ":" + hex.EncodeToString(sum[:])
}

// New builds the cache described by cfg: memory only when no disk directory
// is configured, memory over disk otherwise. It returns nil when caching is
// disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.DiskDir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.DiskDir, cfg.DiskTTL)
}

// DocumentCache stores DocumentStructure values as JSON. Every Get decodes a
// fresh copy, so callers never share a model through the cache.
type DocumentCache struct {
	store Cache
	ttl   time.Duration
}

// NewDocumentCache wraps store. A nil store yields a cache that never hits.
func NewDocumentCache(store Cache, ttl time.Duration) *DocumentCache {
	return &DocumentCache{store: store, ttl: ttl}
}

// Get returns the cached model for key
func (c *DocumentCache) Get(key string) (*model.DocumentStructure, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	data, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	doc, err := decode(data)
	if err != nil {
		_ = c.store.Delete(key)
		return nil, false
	}
	return doc, true
}

// Put stores a serialized copy of doc
func (c *DocumentCache) Put(key string, doc *model.DocumentStructure) error {
	if c == nil || c.store == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return c.store.Set(key, data, c.ttl)
}

// Clone returns a deep copy of doc using the cache encoding
func Clone(doc *model.DocumentStructure) (*model.DocumentStructure, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*model.DocumentStructure, error) {
	var doc model.DocumentStructure
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if doc.Sections.Body == nil {
		doc.Sections.Body = model.NewSectionContent()
	}
	return &doc, nil
}
