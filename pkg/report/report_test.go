package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/overhacked/square-bridge/pkg/export"
	"github.com/overhacked/square-bridge/pkg/models"
)

func entry(id, header string, splits ...string) export.Entry {
	e := export.Entry{
		Kind:   export.EntrySale,
		Key:    models.Key{PaymentID: id, Date: "2024-01-01", Time: "09:00"},
		Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DocNum: id,
		Header: export.Line{Amount: decimal.RequireFromString(header)},
	}
	for _, s := range splits {
		e.Splits = append(e.Splits, export.Line{Amount: decimal.RequireFromString(s)})
	}
	return e
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		entry export.Entry
		want  Status
	}{
		{"exact", entry("P1", "11.00", "-10.00", "-1.00"), Balanced},
		{"within rounding", entry("P2", "1.00", "-0.9999"), Balanced},
		{"off by a cent", entry("P3", "1.00", "-0.99"), Unbalanced},
		{"no splits", entry("P4", "5.00"), Unbalanced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(&tt.entry); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBuildAndPrint(t *testing.T) {
	batch := &export.Batch{
		Entries: []export.Entry{
			entry("P1", "11.00", "-11.00"),
			entry("P2", "5.00", "-4.00"),
		},
		Fees: []export.Entry{entry("P1", "-0.32", "0.32")},
		Skipped: []export.Skip{{
			Key:    models.Key{PaymentID: "X1", Date: "2024-01-01", Time: "10:00"},
			Kind:   "Adjustment",
			Reason: `unknown transaction type "Adjustment"`,
		}},
	}
	dups := []models.Key{{PaymentID: "P9", Date: "2024-01-02", Time: "11:00"}}

	s := Build(batch, dups, 3)
	if s.BalancedCount() != 1 || s.UnbalancedCount() != 1 || s.SkippedCount() != 1 {
		t.Errorf("unexpected counts: %d balanced, %d unbalanced, %d skipped",
			s.BalancedCount(), s.UnbalancedCount(), s.SkippedCount())
	}
	if s.Fees != 1 {
		t.Errorf("expected 1 fee entry, got %d", s.Fees)
	}
	if s.Clean() {
		t.Errorf("expected summary to need attention")
	}

	var buf bytes.Buffer
	s.Print(&buf)
	out := buf.String()
	for _, want := range []string{"P1", "off by 1.00", "X1", "duplicate key P9", "3 item row(s)", "Plan: 1 balanced, 1 unbalanced, 1 skipped, 1 fee entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestCleanSummary(t *testing.T) {
	s := Build(&export.Batch{Entries: []export.Entry{entry("P1", "2.00", "-2.00")}}, nil, 0)
	if !s.Clean() {
		t.Errorf("expected clean summary")
	}
}
