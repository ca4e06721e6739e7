package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Ledger writes a plain-text double-entry journal. Classes and item details
// become posting comments.
type Ledger struct{}

func (Ledger) Name() string      { return "ledger" }
func (Ledger) Extension() string { return ".ledger" }

func (Ledger) Streams() []Stream { return []Stream{StreamJournal} }

func (Ledger) Route(EntryKind, bool) Stream { return StreamJournal }

const ledgerPreamble = `; square-bridge journal
; date * (payment id) payee
;     account    amount  ; item qty @ price class: name
`

func (Ledger) Preamble(Stream) string { return ledgerPreamble + "\n" }

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func ledgerPosting(account string, amount decimal.Decimal, notes ...string) string {
	line := fmt.Sprintf("    %-40s %12s", account, money(amount))
	var kept []string
	for _, n := range notes {
		if n != "" {
			kept = append(kept, n)
		}
	}
	if len(kept) > 0 {
		line += "  ; " + strings.Join(kept, " ")
	}
	return line + "\n"
}

func classTag(class string) string {
	if class == "" {
		return ""
	}
	return "class: " + class
}

func (Ledger) Header(w io.Writer, e *Entry) error {
	h := e.Header
	var b strings.Builder
	fmt.Fprintf(&b, "%s * (%s) %s\n", e.Date.Format("2006/01/02"), e.DocNum, h.Name)
	if h.Memo != "" {
		fmt.Fprintf(&b, "    ; %s\n", h.Memo)
	}
	if e.PaymentMethod != "" {
		fmt.Fprintf(&b, "    ; payment: %s\n", e.PaymentMethod)
	}
	b.WriteString(ledgerPosting(h.Account, h.Amount, classTag(h.Class)))
	_, err := io.WriteString(w, b.String())
	return err
}

func (Ledger) Split(w io.Writer, _ *Entry, l *Line) error {
	var note string
	switch l.Kind {
	case LineItem:
		note = fmt.Sprintf("%s %s @ %s", l.Item, l.Quantity.String(), money(l.Price))
	case LineTax:
		note = fmt.Sprintf("%s %s%%", l.Item, l.Rate.StringFixed(2))
	case LineDiscount, LineTip:
		note = l.Item
	case LineFee:
		note = l.Memo
	}
	_, err := io.WriteString(w, ledgerPosting(l.Account, l.Amount, note, classTag(l.Class)))
	return err
}

func (Ledger) Footer(w io.Writer, _ *Entry) error {
	_, err := io.WriteString(w, "\n")
	return err
}

func (Ledger) CatalogItem(w io.Writer, c *CatalogEntry) error {
	taxable := ""
	if c.Taxable {
		taxable = " taxable"
	}
	_, err := fmt.Fprintf(w, "; item %s (%s) %s %s%s\n", c.Name, c.Category, c.Account, money(c.Price), taxable)
	return err
}
