package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/overhacked/square-bridge/pkg/models"
)

// Column names used by the point-of-sale exports.
const (
	ColDate        = "Date"
	ColTime        = "Time"
	ColKind        = "Transaction Type"
	ColSale        = "Sale"
	ColDiscount    = "Discount"
	ColTip         = "Tip"
	ColTax         = "Sales Tax"
	ColTotal       = "Total Collected"
	ColFee         = "Fee"
	ColNet         = "Net Total"
	ColCardBrand   = "Card Brand"
	ColCardNumber  = "Card Number"
	ColPaymentID   = "Payment ID"
	ColDescription = "Description"

	ColCategory = "Category Name"
	ColItem     = "Item Name"
	ColPrice    = "Price"
	ColItemTax  = "Tax"
)

// aliases lists alternative header names seen across export versions.
var aliases = map[string][]string{
	ColSale: {"Gross Sales"},
	ColTip:  {"Tips"},
	ColTax:  {"Tax"},
	ColFee:  {"Fees"},
}

var dateLayouts = []string{
	models.DateLayout,
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
}

// ParseDate accepts the date layouts used by the exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// column resolves name or one of its aliases to a header present in the table.
func column(t *Table, name string) string {
	if t.Has(name) {
		return name
	}
	for _, alt := range aliases[name] {
		if t.Has(alt) {
			return alt
		}
	}
	return name
}

// Transactions maps a coerced transactions export to models. Rows whose
// date cannot be read are skipped.
func (p *Parser) Transactions(t *Table) []*models.Transaction {
	cols := make(map[string]string)
	for _, name := range []string{ColSale, ColDiscount, ColTip, ColTax, ColTotal, ColFee, ColNet} {
		cols[name] = column(t, name)
		if !t.Has(cols[name]) {
			p.logger.Debug("column missing, reading as zero", "file", t.Source, "column", name)
		}
	}

	txs := make([]*models.Transaction, 0, len(t.Rows))
	for _, row := range t.Rows {
		date, err := ParseDate(row.Text(ColDate))
		if err != nil {
			p.logger.Warn("invalid date, skipping", "file", t.Source, "line", row.Line, "err", err)
			continue
		}

		amount := func(name string) decimal.Decimal {
			col := cols[name]
			if v, ok := row.Value(col); ok && !v.IsNumeric() && v.Raw != "" {
				p.logger.Debug("non-numeric amount, reading as zero", "file", t.Source, "line", row.Line, "column", col, "value", v.Raw)
			}
			return row.Amount(col)
		}

		txs = append(txs, &models.Transaction{
			Date:        date,
			Time:        row.Text(ColTime),
			Kind:        models.Kind(row.Text(ColKind)),
			Sale:        amount(ColSale),
			Discount:    amount(ColDiscount),
			Tax:         amount(ColTax),
			Tip:         amount(ColTip),
			Total:       amount(ColTotal),
			Fee:         amount(ColFee),
			Net:         amount(ColNet),
			CardBrand:   row.Text(ColCardBrand),
			CardNumber:  row.Text(ColCardNumber),
			PaymentID:   row.Text(ColPaymentID),
			Description: row.Text(ColDescription),
			Line:        row.Line,
		})
	}

	p.logger.Debug("mapped transactions", "file", t.Source, "count", len(txs))
	return txs
}

// Items maps a coerced items export to models.
func (p *Parser) Items(t *Table) []*models.Item {
	items := make([]*models.Item, 0, len(t.Rows))
	for _, row := range t.Rows {
		date, err := ParseDate(row.Text(ColDate))
		if err != nil {
			p.logger.Warn("invalid date, skipping", "file", t.Source, "line", row.Line, "err", err)
			continue
		}
		if v, ok := row.Value(ColPrice); ok && !v.IsNumeric() {
			p.logger.Debug("non-numeric price, reading as zero", "file", t.Source, "line", row.Line, "value", v.Raw)
		}

		items = append(items, &models.Item{
			Date:      date,
			Time:      row.Text(ColTime),
			PaymentID: row.Text(ColPaymentID),
			Category:  row.Text(ColCategory),
			Name:      row.Text(ColItem),
			Price:     row.Amount(ColPrice),
			Discount:  row.Amount(ColDiscount),
			Tax:       row.Amount(ColItemTax),
			Line:      row.Line,
		})
	}

	p.logger.Debug("mapped items", "file", t.Source, "count", len(items))
	return items
}
