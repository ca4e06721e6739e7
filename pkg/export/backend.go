// Package export turns staged point-of-sale data into ledger import files.
// A Writer builds format-independent entries and hands each line to a
// Backend, which only knows how one file format spells them.
package export

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrUnknownFormat is returned by Lookup for an unregistered format name.
var ErrUnknownFormat = errors.New("unknown output format")

type Backend interface {
	Name() string
	Extension() string
	// Streams lists every stream Route can return.
	Streams() []Stream
	// Route picks the stream for an entry kind. An empty stream means the
	// format has no place for that kind.
	Route(kind EntryKind, card bool) Stream
	// Preamble is written once to each destination before its first record.
	Preamble(s Stream) string
	Header(w io.Writer, e *Entry) error
	Split(w io.Writer, e *Entry, l *Line) error
	Footer(w io.Writer, e *Entry) error
	CatalogItem(w io.Writer, c *CatalogEntry) error
}

var backends = map[string]func() Backend{
	"iif":    func() Backend { return IIF{} },
	"csv":    func() Backend { return NewCSV() },
	"ledger": func() Backend { return Ledger{} },
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	ctor, ok := backends[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
	return ctor(), nil
}

// Formats lists the registered format names.
func Formats() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
