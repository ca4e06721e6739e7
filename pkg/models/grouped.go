package models

import "github.com/shopspring/decimal"

// GroupedLine aggregates the item rows of one transaction sharing category,
// item name and unit price.
type GroupedLine struct {
	Category string
	Name     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Rows     int
}

// Amount is quantity times unit price.
func (g GroupedLine) Amount() decimal.Decimal {
	return g.Quantity.Mul(g.Price)
}

// CatalogItem is one distinct (category, item) pair seen in the items export.
type CatalogItem struct {
	Category string
	Name     string
	MaxPrice decimal.Decimal
	Taxable  bool
}

var (
	bulkBound   = decimal.NewFromInt(1)
	bulkDivisor = decimal.NewFromInt(100)
)

// InferQuantity turns a row count and unit price into a quantity/price pair.
// Prices strictly between -1 and 1 are encoded per hundredth of a unit, so
// each row counts as 1/100 and the displayed price is scaled by 100.
//
// TODO: make the bulk price bound configurable per currency.
func InferQuantity(rows int, price decimal.Decimal) (qty, unit decimal.Decimal) {
	n := decimal.NewFromInt(int64(rows))
	if price.GreaterThan(bulkBound.Neg()) && price.LessThan(bulkBound) {
		return n.Div(bulkDivisor), price.Mul(bulkDivisor)
	}
	return n, price
}
