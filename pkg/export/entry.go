package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/overhacked/square-bridge/pkg/models"
)

// Stream names one logical output of a backend.
type Stream string

const (
	StreamCash    Stream = "cash"
	StreamCard    Stream = "card"
	StreamCredit  Stream = "credit"
	StreamFees    Stream = "fees"
	StreamItems   Stream = "items"
	StreamJournal Stream = "journal"
)

type EntryKind int

const (
	EntrySale EntryKind = iota
	EntryRefund
	EntryFee
	EntryCatalog
)

func (k EntryKind) String() string {
	switch k {
	case EntrySale:
		return "sale"
	case EntryRefund:
		return "refund"
	case EntryFee:
		return "fee"
	case EntryCatalog:
		return "catalog"
	}
	return "unknown"
}

type LineKind int

const (
	LineHeader LineKind = iota
	LineItem
	LineDiscount
	LineTax
	LineTip
	LineFee
)

// Line is one posting of a ledger entry. Amounts carry the final ledger sign.
type Line struct {
	Kind     LineKind
	Account  string
	Name     string
	Class    string
	Item     string
	Memo     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Rate     decimal.Decimal // tax lines only, in percent
	Amount   decimal.Decimal
	Taxable  bool
}

// Entry is one balanced ledger transaction, independent of output format.
type Entry struct {
	Kind          EntryKind
	Key           models.Key
	Date          time.Time
	DocNum        string
	Memo          string
	PaymentMethod string
	Route         Stream
	Header        Line
	Splits        []Line
}

// Balance is the header amount plus every split. A balanced entry sums to zero.
func (e *Entry) Balance() decimal.Decimal {
	sum := e.Header.Amount
	for _, l := range e.Splits {
		sum = sum.Add(l.Amount)
	}
	return sum
}

// CatalogEntry defines one item for formats that keep an item list.
type CatalogEntry struct {
	Name        string
	Description string
	Category    string
	Account     string
	Price       decimal.Decimal
	Taxable     bool
}

// Skip records a transaction the writer did not convert.
type Skip struct {
	Key    models.Key
	Kind   models.Kind
	Line   int
	Reason string
}
