package repository

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"modern-pos-backend/internal/models"
	"modern-pos-backend/internal/poserr"
)

// SaleRepository commits a cart as one atomic unit: every sale row and
// every stock decrement, or nothing at all.
type SaleRepository struct {
	db  *gorm.DB
	log *zap.Logger

	// overridable in tests to pin sale row ids
	generateID func() int64
}

func NewSaleRepository(db *gorm.DB, log *zap.Logger) *SaleRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &SaleRepository{db: db, log: log, generateID: generateSaleID}
}

// RecordSale inserts one sale row per cart line and decrements stock by
// qty x deduct-unit, floored at zero, inside a single transaction. An
// empty cart is a no-op, not an error. Any failure rolls everything
// back; no partial sale is ever visible.
func (r *SaleRepository) RecordSale(ctx context.Context, items []models.CartItem, method string) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			item := &items[i]
			item.Normalize()

			saleID := r.generateID()
			if err := tx.Exec(
				"INSERT INTO sales (id, prod_id, method_type, amount, qty) VALUES (?, ?, ?, ?, ?)",
				saleID, item.ProductID, method, item.Amount, item.Qty,
			).Error; err != nil {
				return err
			}

			deduction := item.Qty.Mul(item.DeductUnit)
			if err := tx.Exec(
				"UPDATE products SET stock = GREATEST(0, stock - ?) WHERE id = ?",
				deduction, item.ProductID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, poserr.Query(err, "sale could not be stored")
	}

	r.log.Info("sale recorded",
		zap.Int("items", len(items)), zap.String("method", method))
	return true, nil
}

// generateSaleID keeps the legacy timestamp-plus-random scheme the
// sales table was built around. Collisions under heavy concurrency are
// possible and surface as a rolled-back insert; the single-operator
// terminal tolerates that.
func generateSaleID() int64 {
	return time.Now().UnixMilli() + int64(rand.Intn(999)+1)
}
