package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/overhacked/square-bridge/pkg/service"
)

type filters struct {
	startDate string
	endDate   string
}

func (f *filters) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.startDate, "start", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&f.endDate, "end", "", "End date (YYYY-MM-DD)")
}

func (f *filters) parse() (service.Filters, error) {
	sf, err := service.ParseFilters(f.startDate, f.endDate)
	if err != nil {
		return sf, fmt.Errorf("invalid date filter: %w", err)
	}
	if !sf.Start.IsZero() && !sf.End.IsZero() && sf.End.Before(sf.Start) {
		return sf, fmt.Errorf("end date %s is before start date %s", f.endDate, f.startDate)
	}
	return sf, nil
}
