package models

import (
	"github.com/shopspring/decimal"
)

// Product - one row of the shop's inventory. The source of truth owns
// these rows; the local cache only mirrors them. Barcode is the business
// key everywhere (cache identity, merges, scanner lookups).
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SKU         string          `gorm:"column:sku" json:"sku"`
	Name        string          `json:"name"`
	Stock       decimal.Decimal `json:"stock"`
	Category    string          `json:"category"`
	CostPrice   decimal.Decimal `gorm:"column:cost_price" json:"cost_price"`
	SellPrice   decimal.Decimal `gorm:"column:sell_price" json:"sell_price"`
	Description string          `json:"description"`
	Barcode     string          `gorm:"uniqueIndex" json:"barcode"`
	GST         bool            `gorm:"column:gst" json:"gst"`
	GSTRate     decimal.Decimal `gorm:"column:gst_rate" json:"gst_rate"`
	Status      string          `json:"status"`
	DeductUnit  decimal.Decimal `gorm:"column:deduct_unit" json:"deduct_unit"`
}

func (Product) TableName() string { return "products" }

// Normalize coerces the numeric fields to a consistent decimal shape:
// prices to 2 decimal places, a zero deduct unit back to the default 1.
func (p *Product) Normalize() {
	p.CostPrice = p.CostPrice.Round(2)
	p.SellPrice = p.SellPrice.Round(2)
	p.GSTRate = p.GSTRate.Round(2)
	if p.DeductUnit.IsZero() {
		p.DeductUnit = decimal.NewFromInt(1)
	}
}

// AvailableUnits converts physical stock into sellable units using the
// deduct-unit conversion factor.
func (p *Product) AvailableUnits() decimal.Decimal {
	deduct := p.DeductUnit
	if deduct.IsZero() {
		deduct = decimal.NewFromInt(1)
	}
	return p.Stock.DivRound(deduct, 6)
}

// HasSufficientStock reports whether qty sale units can be fulfilled
// from current stock. The UI uses this (plus AvailableUnits) to decide
// whether to warn the cashier or allow an override.
func (p *Product) HasSufficientStock(qty decimal.Decimal) bool {
	epsilon := decimal.New(1, -6)
	return qty.LessThanOrEqual(p.AvailableUnits().Add(epsilon))
}

// Staff - someone who can log into the terminal. Only active staff may
// authenticate or clock in.
type Staff struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Username string          `gorm:"uniqueIndex;size:50" json:"username"`
	Password string          `json:"-"` // bcrypt hash, never serialized
	Role     string          `json:"role"`
	Status   string          `json:"status"` // 'active' or 'inactive'
	Name     string          `json:"name"`
	Branch   string          `json:"branch"`
	Salary   decimal.Decimal `json:"salary"`
}

func (Staff) TableName() string { return "staff" }

// Attendance - one clock-in, optionally closed by a clock-out.
// TimeOut unset means the record is still open; setting it is terminal.
// Time-of-day and date columns stay as strings because the schema uses
// bare TIME/DATE types.
type Attendance struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	StaffID uint            `gorm:"column:staff_id" json:"staff_id"`
	TimeIn  string          `gorm:"column:time_in" json:"time_in"`
	TimeOut *string         `gorm:"column:time_out" json:"time_out"`
	Date    string          `json:"date"`
	Paid    bool            `json:"paid"`
	Salary  decimal.Decimal `json:"salary"`
	Job     string          `json:"job"` // JSON blob: {"role": "..."}
}

func (Attendance) TableName() string { return "attendance" }

// IsOpen reports whether the staff member is still clocked in.
func (a *Attendance) IsOpen() bool {
	return a.TimeOut == nil || *a.TimeOut == ""
}

// Sale - one persisted sale row. Rows are written once inside the sale
// transaction and never mutated afterwards.
type Sale struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	ProdID     uint            `gorm:"column:prod_id" json:"prod_id"`
	MethodType string          `gorm:"column:method_type" json:"method_type"`
	Amount     decimal.Decimal `json:"amount"`
	Qty        decimal.Decimal `json:"qty"`
}

func (Sale) TableName() string { return "sales" }

// CartItem - one line of a cart as collected by the UI.
type CartItem struct {
	ProductID  uint            `json:"product_id"`
	Name       string          `json:"name"`
	Barcode    string          `json:"barcode"`
	Qty        decimal.Decimal `json:"qty"`
	Price      decimal.Decimal `json:"price"`
	Amount     decimal.Decimal `json:"amount"`
	DeductUnit decimal.Decimal `json:"deduct_unit"`
}

// Normalize recomputes the derived fields instead of trusting the
// caller: amount is always qty x price, deduct unit defaults to 1.
func (i *CartItem) Normalize() {
	i.Amount = i.Qty.Mul(i.Price).Round(2)
	if i.DeductUnit.IsZero() {
		i.DeductUnit = decimal.NewFromInt(1)
	}
}

// CartTotal sums the normalized line amounts.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		items[i].Normalize()
		total = total.Add(items[i].Amount)
	}
	return total.Round(2)
}
