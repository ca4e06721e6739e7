package export

import (
	"fmt"
	"io"
	"strings"
)

const (
	iifDate = "01/02/2006"

	iifTransHeader = "!TRNS\tTRNSID\tTRNSTYPE\tDATE\tACCNT\tNAME\tCLASS\tAMOUNT\tDOCNUM\tMEMO\tTOPRINT\tNAMEISTAXABLE\tPAYMETH\r\n" +
		"!SPL\tSPLID\tTRNSTYPE\tDATE\tACCNT\tNAME\tCLASS\tAMOUNT\tDOCNUM\tMEMO\tQNTY\tPRICE\tINVITEM\tTAXABLE\tEXTRA\r\n" +
		"!ENDTRNS\r\n"
	iifItemHeader = "!INVITEM\tNAME\tINVITEMTYPE\tDESC\tACCNT\tPRICE\tTAXABLE\r\n"
)

// IIF writes QuickBooks interchange files: tab separated, CRLF terminated.
// Cash sales, card sales, credit memos, fees and the item list each get
// their own stream.
type IIF struct{}

func (IIF) Name() string      { return "iif" }
func (IIF) Extension() string { return ".iif" }

func (IIF) Streams() []Stream {
	return []Stream{StreamCash, StreamCard, StreamCredit, StreamFees, StreamItems}
}

func (IIF) Route(kind EntryKind, card bool) Stream {
	switch kind {
	case EntryRefund:
		return StreamCredit
	case EntryFee:
		return StreamFees
	case EntryCatalog:
		return StreamItems
	}
	if card {
		return StreamCard
	}
	return StreamCash
}

func (IIF) Preamble(s Stream) string {
	if s == StreamItems {
		return iifItemHeader
	}
	return iifTransHeader
}

func iifType(kind EntryKind) string {
	switch kind {
	case EntryRefund:
		return "CREDIT MEMO"
	case EntryFee:
		return "GENERAL JOURNAL"
	}
	return "CASH SALE"
}

func iifRecord(w io.Writer, fields ...string) error {
	for i, f := range fields {
		fields[i] = iifField(f)
	}
	_, err := io.WriteString(w, strings.Join(fields, "\t")+"\r\n")
	return err
}

var iifEscaper = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func iifField(s string) string {
	return iifEscaper.Replace(s)
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func (IIF) Header(w io.Writer, e *Entry) error {
	h := e.Header
	return iifRecord(w, "TRNS", "", iifType(e.Kind), e.Date.Format(iifDate),
		h.Account, h.Name, h.Class, h.Amount.StringFixed(2), e.DocNum, h.Memo,
		"N", "N", e.PaymentMethod)
}

func (IIF) Split(w io.Writer, e *Entry, l *Line) error {
	var qty, price, extra string
	switch l.Kind {
	case LineItem:
		qty = l.Quantity.String()
		price = l.Price.StringFixed(2)
	case LineTax:
		price = l.Rate.StringFixed(2) + "%"
		extra = "AUTOSTAX"
	}
	return iifRecord(w, "SPL", "", iifType(e.Kind), e.Date.Format(iifDate),
		l.Account, l.Name, l.Class, l.Amount.StringFixed(2), e.DocNum, l.Memo,
		qty, price, l.Item, yesNo(l.Taxable), extra)
}

func (IIF) Footer(w io.Writer, _ *Entry) error {
	_, err := io.WriteString(w, "ENDTRNS\r\n")
	return err
}

func (IIF) CatalogItem(w io.Writer, c *CatalogEntry) error {
	if err := iifRecord(w, "INVITEM", c.Name, "PART", c.Description, c.Account,
		c.Price.StringFixed(2), yesNo(c.Taxable)); err != nil {
		return fmt.Errorf("failed to write INVITEM: %w", err)
	}
	return nil
}
