package parser

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/overhacked/square-bridge/pkg/models"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

const transactionsCSV = "\ufeffDate,Time,Transaction Type,Sale,Discount,Tips,Sales Tax,Total Collected,Fee,Net Total,Card Brand,Card Number,Payment ID,Description,Total Collected\n" +
	"2024-01-01,09:00,Payment,$10.00,$0.00,$0.00,$1.00,$11.00,($0.32),$10.68,Visa,**** 1234,P1,Register 1,$11.00\n" +
	"01/02/2024,10:15,Refund,-$5.00,$0.00,$0.00,$0.00,-$5.00,$0.00,-$5.00,,,P2,Register 1,-$5.00\n" +
	"not a date,10:30,Payment,$1.00,$0.00,$0.00,$0.00,$1.00,$0.00,$1.00,,,P3,Register 1,$1.00\n"

func TestProcessBytesCSV(t *testing.T) {
	p := New(quietLogger(), nil)
	table, err := p.ProcessBytes([]byte(transactionsCSV), "transactions.csv")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}

	if table.Headers[0] != "Date" {
		t.Errorf("expected BOM to be stripped, got %q", table.Headers[0])
	}
	if !table.Has("Total Collected 2") {
		t.Errorf("expected duplicate Total Collected to be suffixed, headers: %v", table.Headers)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}

	txs := p.Transactions(table)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions after skipping the bad date, got %d", len(txs))
	}

	first := txs[0]
	if first.Kind != models.KindPayment {
		t.Errorf("expected Payment, got %q", first.Kind)
	}
	if first.Date.Format(models.DateLayout) != "2024-01-01" {
		t.Errorf("unexpected date %s", first.Date)
	}
	if !first.Total.Equal(decimal.NewFromInt(11)) {
		t.Errorf("expected total 11, got %s", first.Total)
	}
	if !first.Tax.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected tax 1, got %s", first.Tax)
	}
	if !first.Fee.Equal(decimal.RequireFromString("-0.32")) {
		t.Errorf("expected fee -0.32, got %s", first.Fee)
	}
	if !first.IsCard() || first.CardNumber != "**** 1234" {
		t.Errorf("expected card payment, got brand %q number %q", first.CardBrand, first.CardNumber)
	}
	if first.Key() != (models.Key{PaymentID: "P1", Date: "2024-01-01", Time: "09:00"}) {
		t.Errorf("unexpected key %+v", first.Key())
	}

	second := txs[1]
	if second.Kind != models.KindRefund {
		t.Errorf("expected Refund, got %q", second.Kind)
	}
	if second.Date.Format(models.DateLayout) != "2024-01-02" {
		t.Errorf("expected US date to parse, got %s", second.Date)
	}
	if second.IsCard() {
		t.Errorf("expected cash refund")
	}
}

func TestTransactionsMissingColumns(t *testing.T) {
	p := New(quietLogger(), nil)
	table := NewTable("short.csv", [][]string{
		{"Date", "Time", "Transaction Type", "Gross Sales", "Total Collected", "Payment ID"},
		{"2024-01-01", "09:00", "Payment", "$3.00", "$3.00", "P1"},
	})

	txs := p.Transactions(table)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if !tx.Sale.Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected Gross Sales alias to fill Sale, got %s", tx.Sale)
	}
	for name, v := range map[string]decimal.Decimal{"tax": tx.Tax, "tip": tx.Tip, "fee": tx.Fee} {
		if !v.IsZero() {
			t.Errorf("expected missing %s column to read as zero, got %s", name, v)
		}
	}
}

func TestItems(t *testing.T) {
	p := New(quietLogger(), nil)
	table, err := p.ProcessBytes([]byte("Date,Time,Payment ID,Category Name,Item Name,Price,Discount,Tax\n"+
		"2024-01-01,09:00,P1,Produce,Apples,$0.50,$0.00,$0.00\n"+
		"2024-01-01,09:00,P1,Produce,Apples,$0.50,$0.00,$0.00\n"), "items.csv")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}

	items := p.Items(table)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	it := items[0]
	if it.Category != "Produce" || it.Name != "Apples" {
		t.Errorf("unexpected item %q/%q", it.Category, it.Name)
	}
	if !it.Price.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("expected price 0.50, got %s", it.Price)
	}
	if it.Key() != (models.Key{PaymentID: "P1", Date: "2024-01-01", Time: "09:00"}) {
		t.Errorf("unexpected key %+v", it.Key())
	}
}

func TestProcessBytesEncoding(t *testing.T) {
	enc, err := Encoding("windows-1252")
	if err != nil {
		t.Fatalf("Encoding failed: %v", err)
	}
	if enc != charmap.Windows1252 {
		t.Fatalf("expected windows-1252 charmap")
	}

	data := []byte("Category Name,Item Name\nCaf\xe9,Cr\xe8me\n")
	table, err := New(quietLogger(), enc).ProcessBytes(data, "items.csv")
	if err != nil {
		t.Fatalf("ProcessBytes failed: %v", err)
	}
	if got := table.Rows[0].Text("Category Name"); got != "Café" {
		t.Errorf("expected Café, got %q", got)
	}
	if got := table.Rows[0].Text("Item Name"); got != "Crème" {
		t.Errorf("expected Crème, got %q", got)
	}
}

func TestProcessBytesErrors(t *testing.T) {
	p := New(quietLogger(), nil)

	if _, err := p.ProcessBytes([]byte("x"), "export.pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := p.ProcessBytes([]byte(""), "empty.csv"); err == nil {
		t.Errorf("expected error for empty export")
	}
	if _, err := Encoding("ebcdic"); err == nil {
		t.Errorf("expected error for unsupported encoding")
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-05", "03/05/2024", "3/5/2024", "03/05/24", "3/5/24"} {
		d, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q) failed: %v", in, err)
			continue
		}
		if got := d.Format(models.DateLayout); got != "2024-03-05" {
			t.Errorf("ParseDate(%q) = %s, want 2024-03-05", in, got)
		}
	}
}
