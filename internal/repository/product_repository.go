// Package repository implements the data operations the terminal UI
// calls: product lookup through the read-through cache, atomic sale
// recording, and staff attendance.
package repository

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"modern-pos-backend/internal/cache"
	"modern-pos-backend/internal/models"
	"modern-pos-backend/internal/poserr"
)

// ProductRepository resolves products cache-first with the source of
// truth behind it. Cache hits are returned as-is: staleness within the
// refresh interval is an accepted trade for scan latency.
type ProductRepository struct {
	db    *gorm.DB
	cache *cache.FileCache
	log   *zap.Logger

	// collapses concurrent full refreshes so the background ticker and
	// a manual refresh can never scan the table twice at the same time
	refreshSF singleflight.Group
}

func NewProductRepository(db *gorm.DB, fc *cache.FileCache, log *zap.Logger) *ProductRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductRepository{db: db, cache: fc, log: log}
}

// FetchByBarcode returns one product by exact barcode, cache first.
// A cache hit never touches the database. A miss queries the source of
// truth, normalizes the row, merges it into the cache and returns it.
// (nil, nil) means the barcode is unknown everywhere.
func (r *ProductRepository) FetchByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	if hit := r.cache.FindByBarcode(barcode); hit != nil {
		return hit, nil
	}

	var product models.Product
	err := r.db.WithContext(ctx).
		Where("barcode = ?", barcode).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, poserr.Query(err, "product lookup failed for barcode %q", barcode)
	}

	product.Normalize()
	r.cache.MergeByBarcode([]models.Product{product})
	return &product, nil
}

// Search matches products by name or barcode substring. The cache is
// tried first for speed; only an empty cache result falls through to a
// LIKE query ordered by name, capped at limit. Database results are
// merged back into the cache before returning.
func (r *ProductRepository) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	if cached := r.cache.SearchSubstring(query, limit); len(cached) > 0 {
		return cached, nil
	}

	like := "%" + query + "%"
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR barcode LIKE ?", like, like).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, poserr.Query(err, "product search failed for %q", query)
	}

	for i := range products {
		products[i].Normalize()
	}
	if len(products) > 0 {
		r.cache.MergeByBarcode(products)
	}
	return products, nil
}

// PrimeCache returns the cached product list, populating it with a full
// table scan when the cache is missing or force is set.
func (r *ProductRepository) PrimeCache(ctx context.Context, force bool) ([]models.Product, error) {
	if r.cache.Exists() && !force {
		return r.cache.Load(), nil
	}
	products, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Save(products)
	return products, nil
}

// RefreshCache forces a full reload of the cache from the source of
// truth. Concurrent callers single-flight: whoever arrives while a
// refresh is running waits for it and shares its result, including
// the error when the scan fails.
func (r *ProductRepository) RefreshCache(ctx context.Context) ([]models.Product, error) {
	v, err, _ := r.refreshSF.Do("refresh", func() (any, error) {
		return r.PrimeCache(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

// FetchAll scans the whole products table, normalized.
func (r *ProductRepository) FetchAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, poserr.Query(err, "could not load product table")
	}
	for i := range products {
		products[i].Normalize()
	}
	return products, nil
}
