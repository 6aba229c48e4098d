package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"modern-pos-backend/internal/cache"
)

// newMockDB wires gorm's mysql dialector over a sqlmock connection so
// repository tests can assert the exact SQL round trips.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := gormmysql.New(gormmysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock, mockDB
}

func newTestCache(t *testing.T) *cache.FileCache {
	t.Helper()
	return cache.NewFileCache(filepath.Join(t.TempDir(), "products_cache.json"), zap.NewNop())
}

var productColumns = []string{
	"id", "sku", "name", "stock", "category", "cost_price", "sell_price",
	"description", "barcode", "gst", "gst_rate", "status", "deduct_unit",
}
