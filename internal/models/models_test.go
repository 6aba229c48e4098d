package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHasSufficientStock_DeductUnitConversion(t *testing.T) {
	// stock 5 physical units, each sale unit consumes 2
	p := Product{
		Stock:      decimal.NewFromInt(5),
		DeductUnit: decimal.NewFromInt(2),
	}

	assert.True(t, p.AvailableUnits().Equal(decimal.RequireFromString("2.5")))
	assert.False(t, p.HasSufficientStock(decimal.NewFromInt(3)), "qty 3 needs 6 stock units")
	assert.True(t, p.HasSufficientStock(decimal.NewFromInt(2)), "qty 2 needs 4 stock units")
}

func TestHasSufficientStock_ZeroDeductUnitDefaultsToOne(t *testing.T) {
	p := Product{Stock: decimal.NewFromInt(3)}
	assert.True(t, p.HasSufficientStock(decimal.NewFromInt(3)))
	assert.False(t, p.HasSufficientStock(decimal.NewFromInt(4)))
}

func TestProductNormalize(t *testing.T) {
	p := Product{
		CostPrice: decimal.RequireFromString("1.999"),
		SellPrice: decimal.RequireFromString("2.505"),
		GSTRate:   decimal.RequireFromString("0.0600"),
	}
	p.Normalize()

	assert.True(t, p.CostPrice.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, p.SellPrice.Equal(decimal.RequireFromString("2.51")))
	assert.True(t, p.DeductUnit.Equal(decimal.NewFromInt(1)))
}

func TestCartItemNormalize_RecomputesAmount(t *testing.T) {
	item := CartItem{
		Qty:    decimal.NewFromInt(3),
		Price:  decimal.RequireFromString("4.50"),
		Amount: decimal.RequireFromString("999.99"), // lies from the caller
	}
	item.Normalize()

	assert.True(t, item.Amount.Equal(decimal.RequireFromString("13.50")))
	assert.True(t, item.DeductUnit.Equal(decimal.NewFromInt(1)))
}

func TestCartTotal(t *testing.T) {
	items := []CartItem{
		{Qty: decimal.NewFromInt(2), Price: decimal.RequireFromString("4.50")},
		{Qty: decimal.NewFromInt(1), Price: decimal.RequireFromString("12.00")},
	}
	assert.True(t, CartTotal(items).Equal(decimal.RequireFromString("21.00")))
}

func TestAttendanceIsOpen(t *testing.T) {
	open := Attendance{}
	assert.True(t, open.IsOpen())

	out := "17:30:00"
	closed := Attendance{TimeOut: &out}
	assert.False(t, closed.IsOpen())
}
