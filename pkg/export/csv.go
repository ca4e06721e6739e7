package export

import (
	"io"

	"github.com/google/uuid"

	"github.com/overhacked/square-bridge/pkg/csv"
)

var csvColumns = []string{
	"Date", "Transaction ID", "Number", "Description", "Memo",
	"Account", "Class", "Quantity", "Price", "Amount",
}

// CSV writes a multi-split ledger CSV: one row per posting, rows of the same
// entry sharing a Transaction ID derived from the join key.
type CSV struct {
	namespace uuid.UUID
}

func NewCSV() *CSV {
	return &CSV{namespace: uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/overhacked/square-bridge"))}
}

func (*CSV) Name() string      { return "csv" }
func (*CSV) Extension() string { return ".csv" }

func (*CSV) Streams() []Stream { return []Stream{StreamJournal} }

// Route sends every entry to the journal. Item definitions do not fit the
// posting layout, so the catalog is not written.
func (*CSV) Route(kind EntryKind, _ bool) Stream {
	if kind == EntryCatalog {
		return ""
	}
	return StreamJournal
}

func (*CSV) Preamble(Stream) string {
	return string(csv.Header(csvColumns...))
}

// TransactionID is stable across runs for the same entry.
func (c *CSV) TransactionID(e *Entry) string {
	name := e.Kind.String() + "|" + e.Key.PaymentID + "|" + e.Key.Date + "|" + e.Key.Time
	return uuid.NewSHA1(c.namespace, []byte(name)).String()
}

type posting struct {
	entry *Entry
	line  *Line
	id    string
}

func (p posting) Fields() []string {
	l := p.line
	var qty, price string
	switch l.Kind {
	case LineItem:
		qty = l.Quantity.String()
		price = l.Price.StringFixed(2)
	case LineTax:
		price = l.Rate.StringFixed(2) + "%"
	}

	desc := l.Item
	if desc == "" {
		desc = l.Name
	}
	return []string{
		p.entry.Date.Format("2006-01-02"), p.id, p.entry.DocNum, desc, l.Memo,
		l.Account, l.Class, qty, price, l.Amount.StringFixed(2),
	}
}

func (c *CSV) write(w io.Writer, e *Entry, l *Line) error {
	out, err := csv.Create([]posting{{entry: e, line: l, id: c.TransactionID(e)}}, nil)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (c *CSV) Header(w io.Writer, e *Entry) error {
	return c.write(w, e, &e.Header)
}

func (c *CSV) Split(w io.Writer, e *Entry, l *Line) error {
	return c.write(w, e, l)
}

func (*CSV) Footer(io.Writer, *Entry) error { return nil }

func (*CSV) CatalogItem(io.Writer, *CatalogEntry) error { return nil }
