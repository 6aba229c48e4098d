// Package cache holds the local product snapshot the terminal reads
// before touching the source of truth. It is a performance optimization
// only: never authoritative, stale-tolerant, and every failure degrades
// to "no cache" instead of surfacing an error.
package cache

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"modern-pos-backend/internal/models"
)

// FileCache stores the product list as one JSON file, overwritten
// wholesale on every save. A mutex serializes file access so a merge
// cannot interleave with a background save. The file is not written
// atomically; a crash mid-write corrupts it, and Load treats corruption
// as an empty cache.
type FileCache struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

func NewFileCache(path string, log *zap.Logger) *FileCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileCache{path: path, log: log}
}

// Exists reports whether a cache file is present on disk, readable or not.
func (c *FileCache) Exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}

// Load returns the full cached product list. A missing or unparsable
// file is an empty list, never an error.
func (c *FileCache) Load() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *FileCache) load() []models.Product {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.log.Warn("product cache unreadable, treating as empty",
			zap.String("path", c.path), zap.Error(err))
		return nil
	}
	return products
}

// Save overwrites the backing file with the given list. A write failure
// is logged and swallowed so a full disk can never block the register.
func (c *FileCache) Save(products []models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.save(products)
}

func (c *FileCache) save(products []models.Product) {
	if products == nil {
		products = []models.Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		c.log.Warn("product cache encode failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		c.log.Warn("product cache write failed",
			zap.String("path", c.path), zap.Error(err))
	}
}

// MergeByBarcode folds the incoming products into the cache keyed by
// barcode, last write wins. Existing entries keep their storage order;
// new barcodes are appended. Entries without a barcode are dropped.
// The read-modify-write runs under the cache lock, so concurrent merges
// never lose each other's entries.
func (c *FileCache) MergeByBarcode(products []models.Product) {
	if len(products) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.load()
	index := make(map[string]int, len(current))
	merged := make([]models.Product, 0, len(current)+len(products))
	for _, p := range current {
		if p.Barcode == "" {
			continue
		}
		if pos, ok := index[p.Barcode]; ok {
			merged[pos] = p
			continue
		}
		index[p.Barcode] = len(merged)
		merged = append(merged, p)
	}
	for _, p := range products {
		if p.Barcode == "" {
			continue
		}
		if pos, ok := index[p.Barcode]; ok {
			merged[pos] = p
			continue
		}
		index[p.Barcode] = len(merged)
		merged = append(merged, p)
	}
	c.save(merged)
}

// FindByBarcode is an exact-match lookup against the cache.
func (c *FileCache) FindByBarcode(barcode string) *models.Product {
	if barcode == "" {
		return nil
	}
	for _, p := range c.Load() {
		if p.Barcode == barcode {
			found := p
			return &found
		}
	}
	return nil
}

// SearchSubstring does a case-insensitive substring match against name
// and barcode, returning up to limit products in storage order. This is
// first-match order, not relevance ranking.
func (c *FileCache) SearchSubstring(query string, limit int) []models.Product {
	if query == "" || limit <= 0 {
		return nil
	}
	needle := strings.ToLower(query)
	var results []models.Product
	for _, p := range c.Load() {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Barcode), needle) {
			results = append(results, p)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}
