package staging

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/overhacked/square-bridge/pkg/models"
)

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(id, date, tm, sale, fee string) *models.Transaction {
	return &models.Transaction{
		Date:      day(date),
		Time:      tm,
		Kind:      models.KindPayment,
		Sale:      dec(sale),
		Total:     dec(sale),
		Fee:       dec(fee),
		PaymentID: id,
	}
}

func item(id, date, tm, category, name, price, discount, tax string) *models.Item {
	return &models.Item{
		Date:      day(date),
		Time:      tm,
		PaymentID: id,
		Category:  category,
		Name:      name,
		Price:     dec(price),
		Discount:  dec(discount),
		Tax:       dec(tax),
	}
}

func newStore(t *testing.T, txns []*models.Transaction, items []*models.Item) *Store {
	t.Helper()
	s, err := New(log.New(io.Discard), txns, items)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGroupedLinesBulkItem(t *testing.T) {
	s := newStore(t,
		[]*models.Transaction{txn("P1", "2024-01-01", "09:00", "1.00", "0")},
		[]*models.Item{
			item("P1", "2024-01-01", "09:00", "Produce", "Apples", "0.50", "0", "0"),
			item("P1", "2024-01-01", "09:00", "Produce", "Apples", "0.50", "0", "0"),
		},
	)

	lines, err := s.GroupedLines(models.Key{PaymentID: "P1", Date: "2024-01-01", Time: "09:00"})
	if err != nil {
		t.Fatalf("GroupedLines failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 grouped line, got %d", len(lines))
	}
	l := lines[0]
	if l.Category != "Produce" || l.Name != "Apples" {
		t.Errorf("unexpected line %q/%q", l.Category, l.Name)
	}
	if !l.Quantity.Equal(dec("0.02")) {
		t.Errorf("expected quantity 0.02, got %s", l.Quantity)
	}
	if !l.Price.Equal(dec("50")) {
		t.Errorf("expected price 50.00, got %s", l.Price)
	}
	if !l.Amount().Equal(dec("1")) {
		t.Errorf("expected amount 1.00, got %s", l.Amount())
	}
}

func TestGroupedLinesAggregates(t *testing.T) {
	s := newStore(t,
		[]*models.Transaction{
			txn("P1", "2024-01-01", "09:00", "12.00", "0"),
			txn("P2", "2024-01-01", "09:05", "3.00", "0"),
		},
		[]*models.Item{
			item("P1", "2024-01-01", "09:00", "Bakery", "Bread", "4.00", "-0.50", "0.30"),
			item("P1", "2024-01-01", "09:00", "Produce", "Kale", "2.00", "0", "0"),
			item("P1", "2024-01-01", "09:00", "Bakery", "Bread", "4.00", "-0.50", "0.30"),
			item("P1", "2024-01-01", "09:00", "Bakery", "Bread", "3.00", "0", "0"),
			item("P2", "2024-01-01", "09:05", "Bakery", "Bread", "3.00", "0", "0"),
		},
	)

	lines, err := s.GroupedLines(models.Key{PaymentID: "P1", Date: "2024-01-01", Time: "09:00"})
	if err != nil {
		t.Fatalf("GroupedLines failed: %v", err)
	}

	want := []struct {
		name     string
		qty      string
		price    string
		discount string
		tax      string
	}{
		{"Bread", "2", "4", "-1", "0.6"},
		{"Kale", "1", "2", "0", "0"},
		{"Bread", "1", "3", "0", "0"},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i, w := range want {
		l := lines[i]
		if l.Name != w.name || !l.Quantity.Equal(dec(w.qty)) || !l.Price.Equal(dec(w.price)) ||
			!l.Discount.Equal(dec(w.discount)) || !l.Tax.Equal(dec(w.tax)) {
			t.Errorf("line %d: expected %+v, got %s qty=%s price=%s discount=%s tax=%s",
				i, w, l.Name, l.Quantity, l.Price, l.Discount, l.Tax)
		}
	}
}

func TestSalesAndFees(t *testing.T) {
	zero := txn("P0", "2024-01-01", "08:00", "0", "0")
	s := newStore(t,
		[]*models.Transaction{
			txn("P2", "2024-01-02", "10:00", "5.00", "-0.15"),
			zero,
			txn("P1", "2024-01-01", "09:00", "10.00", "0"),
		}, nil)

	sales, err := s.Sales()
	if err != nil {
		t.Fatalf("Sales failed: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}
	if sales[0].PaymentID != "P1" || sales[1].PaymentID != "P2" {
		t.Errorf("expected date order P1, P2; got %s, %s", sales[0].PaymentID, sales[1].PaymentID)
	}
	if !sales[0].Sale.Equal(dec("10")) {
		t.Errorf("expected sale 10, got %s", sales[0].Sale)
	}
	if sales[0].Date.Format(models.DateLayout) != "2024-01-01" {
		t.Errorf("expected date to round trip, got %s", sales[0].Date)
	}

	fees, err := s.Fees()
	if err != nil {
		t.Fatalf("Fees failed: %v", err)
	}
	if len(fees) != 1 || fees[0].PaymentID != "P2" {
		t.Fatalf("expected one fee transaction P2, got %v", fees)
	}
	if !fees[0].Fee.Equal(dec("-0.15")) {
		t.Errorf("expected fee -0.15, got %s", fees[0].Fee)
	}
}

func TestDuplicateKeys(t *testing.T) {
	first := txn("P1", "2024-01-01", "09:00", "5.00", "0")
	second := txn("P1", "2024-01-01", "09:00", "7.00", "0")
	third := txn("P1", "2024-01-01", "09:00", "1.00", "0")
	other := txn("P1", "2024-01-01", "09:01", "1.00", "0")

	s := newStore(t, []*models.Transaction{first, second, third, other},
		[]*models.Item{
			item("P1", "2024-01-01", "09:00", "Bakery", "Bread", "5.00", "0", "0"),
			item("P1", "2024-01-01", "09:00", "Bakery", "Pie", "7.00", "0", "0"),
		})

	dups := s.Duplicates()
	if len(dups) != 1 || dups[0] != first.Key() {
		t.Fatalf("expected the shared key once, got %v", dups)
	}

	sales, err := s.Sales()
	if err != nil {
		t.Fatalf("Sales failed: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 staged sales, got %d", len(sales))
	}
	if !sales[0].Sale.Equal(dec("5")) {
		t.Errorf("expected first occurrence to be staged, got sale %s", sales[0].Sale)
	}

	// items of both colliding payments land on the same key
	lines, err := s.GroupedLines(first.Key())
	if err != nil {
		t.Fatalf("GroupedLines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("expected both payments' items under the shared key, got %v", lines)
	}
}

func TestOrphans(t *testing.T) {
	s := newStore(t,
		[]*models.Transaction{txn("P1", "2024-01-01", "09:00", "1.00", "0")},
		[]*models.Item{
			item("P1", "2024-01-01", "09:00", "Bakery", "Bread", "1.00", "0", "0"),
			item("P1", "2024-01-01", "09:30", "Bakery", "Bread", "1.00", "0", "0"),
			item("P9", "2024-01-01", "09:00", "Bakery", "Bread", "1.00", "0", "0"),
		})

	n, err := s.Orphans()
	if err != nil {
		t.Fatalf("Orphans failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 orphan items, got %d", n)
	}
}

func TestCatalog(t *testing.T) {
	s := newStore(t, nil, []*models.Item{
		item("P1", "2024-01-01", "09:00", "Bakery", "Bread", "3.00", "0", "0"),
		item("P2", "2024-01-01", "09:05", "Bakery", "Bread", "4.00", "0", "0.32"),
		item("P2", "2024-01-01", "09:05", "Produce", "Apples", "0.50", "0", "0"),
	})

	catalog, err := s.Catalog()
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 catalog items, got %d", len(catalog))
	}

	bread := catalog[0]
	if bread.Name != "Bread" || !bread.MaxPrice.Equal(dec("4")) || !bread.Taxable {
		t.Errorf("unexpected bread entry %+v", bread)
	}
	apples := catalog[1]
	if apples.Name != "Apples" || !apples.MaxPrice.Equal(dec("50")) || apples.Taxable {
		t.Errorf("unexpected apples entry %+v", apples)
	}
}

func TestScaledRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.37", "-12.5", "1234.5678", "-0.0001"} {
		d := dec(s)
		if got := fromScaled(toScaled(d)); !got.Equal(d) {
			t.Errorf("scaled round trip of %s gave %s", s, got)
		}
	}
}
