package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the transaction type reported by the point of sale.
type Kind string

const (
	KindPayment Kind = "Payment"
	KindRefund  Kind = "Refund"
)

// Known reports whether the kind is one the ledger writer can convert.
func (k Kind) Known() bool {
	return k == KindPayment || k == KindRefund
}

// Sign is +1 for payments and -1 for refunds.
func (k Kind) Sign() decimal.Decimal {
	if k == KindRefund {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Key joins a transaction to its item rows. The export carries no foreign
// key, so payment id, date and time together stand in for one.
type Key struct {
	PaymentID string
	Date      string
	Time      string
}

// Transaction represents one payment event from the transactions export
type Transaction struct {
	Date        time.Time
	Time        string
	Kind        Kind
	Sale        decimal.Decimal
	Discount    decimal.Decimal
	Tax         decimal.Decimal
	Tip         decimal.Decimal
	Total       decimal.Decimal
	Fee         decimal.Decimal
	Net         decimal.Decimal
	CardBrand   string
	CardNumber  string
	PaymentID   string
	Description string
	Line        int
}

// Key returns the join key for the transaction's items.
func (t *Transaction) Key() Key {
	return Key{PaymentID: t.PaymentID, Date: t.Date.Format(DateLayout), Time: t.Time}
}

// IsCard reports whether the payment went through a card reader.
func (t *Transaction) IsCard() bool {
	return t.CardBrand != ""
}

// Item represents one line item row from the items export
type Item struct {
	Date      time.Time
	Time      string
	PaymentID string
	Category  string
	Name      string
	Price     decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	Line      int
}

// Key returns the join key pointing at the owning transaction.
func (i *Item) Key() Key {
	return Key{PaymentID: i.PaymentID, Date: i.Date.Format(DateLayout), Time: i.Time}
}

// DateLayout is the canonical date format used for joining and staging.
const DateLayout = "2006-01-02"
