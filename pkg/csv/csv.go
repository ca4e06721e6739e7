package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"fmt"
)

// Record is anything that renders to one CSV row.
type Record interface {
	Fields() []string
}

type FilterFunc[T any] func(T) bool

// Filter returns the records accepted by filter. A nil filter keeps everything.
func Filter[T any](records []T, filter FilterFunc[T]) []T {
	if filter == nil {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if filter(r) {
			out = append(out, r)
		}
	}
	return out
}

// Header renders a header row.
func Header(columns ...string) []byte {
	var buf bytes.Buffer
	w := stdcsv.NewWriter(&buf)
	w.Write(columns)
	w.Flush()
	return buf.Bytes()
}

// Create renders the records accepted by filter, without a header row.
func Create[T Record](records []T, filter FilterFunc[T]) ([]byte, error) {
	var buf bytes.Buffer
	w := stdcsv.NewWriter(&buf)
	for _, r := range Filter(records, filter) {
		if err := w.Write(r.Fields()); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}
