// Package report summarizes a conversion run: which entries balance, which
// transactions were skipped and which data-quality problems were seen.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/overhacked/square-bridge/pkg/export"
	"github.com/overhacked/square-bridge/pkg/models"
)

type Status int

const (
	Balanced Status = iota
	Unbalanced
	Skipped
)

func (s Status) String() string {
	switch s {
	case Balanced:
		return "balanced"
	case Unbalanced:
		return "unbalanced"
	}
	return "skipped"
}

// Item is one line of the report. Entry is nil for skipped transactions.
type Item struct {
	Entry  *export.Entry
	Skip   *export.Skip
	Status Status
}

type Summary struct {
	Items      []Item
	Fees       int
	Catalog    int
	Duplicates []models.Key
	Orphans    int
}

// Check reports whether an entry balances to the cent.
func Check(e *export.Entry) Status {
	if e.Balance().Round(2).IsZero() {
		return Balanced
	}
	return Unbalanced
}

// Build summarizes a batch. Fee entries are counted but not listed.
func Build(batch *export.Batch, duplicates []models.Key, orphans int) *Summary {
	s := &Summary{
		Fees:       len(batch.Fees),
		Catalog:    len(batch.Catalog),
		Duplicates: duplicates,
		Orphans:    orphans,
	}
	for i := range batch.Entries {
		e := &batch.Entries[i]
		s.Items = append(s.Items, Item{Entry: e, Status: Check(e)})
	}
	for i := range batch.Skipped {
		s.Items = append(s.Items, Item{Skip: &batch.Skipped[i], Status: Skipped})
	}
	return s
}

func (s *Summary) count(status Status) int {
	n := 0
	for _, it := range s.Items {
		if it.Status == status {
			n++
		}
	}
	return n
}

func (s *Summary) BalancedCount() int   { return s.count(Balanced) }
func (s *Summary) UnbalancedCount() int { return s.count(Unbalanced) }
func (s *Summary) SkippedCount() int    { return s.count(Skipped) }

// Clean reports whether the run needs no operator attention.
func (s *Summary) Clean() bool {
	return s.UnbalancedCount() == 0 && s.SkippedCount() == 0 && len(s.Duplicates) == 0 && s.Orphans == 0
}

var (
	balancedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	unbalancedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	skippedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
)

// Print renders the plan preview.
func (s *Summary) Print(w io.Writer) {
	for _, it := range s.Items {
		switch it.Status {
		case Balanced:
			e := it.Entry
			line := fmt.Sprintf("%s | %-7s | %-20s | %-24s | %10s", e.Date.Format(models.DateLayout), e.Kind, e.DocNum, e.Memo, e.Header.Amount.StringFixed(2))
			fmt.Fprintln(w, balancedStyle.Render("= "+line))
		case Unbalanced:
			e := it.Entry
			line := fmt.Sprintf("%s | %-7s | %-20s | %-24s | %10s | off by %s", e.Date.Format(models.DateLayout), e.Kind, e.DocNum, e.Memo, e.Header.Amount.StringFixed(2), e.Balance().StringFixed(2))
			fmt.Fprintln(w, unbalancedStyle.Render("! "+line))
		case Skipped:
			k := it.Skip
			line := fmt.Sprintf("%s | %-7s | %-20s | %s", k.Key.Date, "skip", k.Key.PaymentID, k.Reason)
			fmt.Fprintln(w, skippedStyle.Render("- "+line))
		}
	}

	for _, k := range s.Duplicates {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("duplicate key %s %s %s, entries skipped", k.PaymentID, k.Date, k.Time)))
	}
	if s.Orphans > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d item row(s) matched no transaction", s.Orphans)))
	}

	fmt.Fprintf(w, "\nPlan: %d balanced, %d unbalanced, %d skipped, %d fee entries, %d catalog items\n",
		s.BalancedCount(), s.UnbalancedCount(), s.SkippedCount(), s.Fees, s.Catalog)
}
