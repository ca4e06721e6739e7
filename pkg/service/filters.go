package service

import (
	"time"

	"github.com/overhacked/square-bridge/pkg/csv"
	"github.com/overhacked/square-bridge/pkg/models"
)

// Filters restricts a run to a date range. Zero bounds are open.
type Filters struct {
	Start time.Time
	End   time.Time
}

// ParseFilters reads YYYY-MM-DD bounds; empty strings leave a bound open.
func ParseFilters(start, end string) (Filters, error) {
	var f Filters
	var err error
	if start != "" {
		if f.Start, err = time.Parse(models.DateLayout, start); err != nil {
			return f, err
		}
	}
	if end != "" {
		if f.End, err = time.Parse(models.DateLayout, end); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (f Filters) accepts(date time.Time) bool {
	if !f.Start.IsZero() && date.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && date.After(f.End) {
		return false
	}
	return true
}

func (f Filters) transactions() csv.FilterFunc[*models.Transaction] {
	return func(t *models.Transaction) bool { return f.accepts(t.Date) }
}

func (f Filters) items() csv.FilterFunc[*models.Item] {
	return func(i *models.Item) bool { return f.accepts(i.Date) }
}
