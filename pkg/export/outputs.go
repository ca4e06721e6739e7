package export

import (
	"fmt"
	"io"
)

type preambleKey struct {
	w    io.Writer
	text string
}

// Outputs maps streams to destinations. Streams without their own
// destination share the fallback. Writers must be comparable (pointer
// types such as *os.File or *bytes.Buffer).
type Outputs struct {
	fallback io.Writer
	streams  map[Stream]io.Writer
	started  map[preambleKey]bool
}

func NewOutputs(fallback io.Writer) *Outputs {
	return &Outputs{
		fallback: fallback,
		streams:  make(map[Stream]io.Writer),
		started:  make(map[preambleKey]bool),
	}
}

// Set gives s its own destination.
func (o *Outputs) Set(s Stream, w io.Writer) *Outputs {
	o.streams[s] = w
	return o
}

// Writer returns the destination for s, writing preamble first if that
// destination has not received it yet.
func (o *Outputs) Writer(s Stream, preamble string) (io.Writer, error) {
	w, ok := o.streams[s]
	if !ok {
		w = o.fallback
	}
	if w == nil {
		return nil, fmt.Errorf("no output for stream %s", s)
	}

	key := preambleKey{w: w, text: preamble}
	if preamble != "" && !o.started[key] {
		if _, err := io.WriteString(w, preamble); err != nil {
			return nil, fmt.Errorf("failed to write %s preamble: %w", s, err)
		}
		o.started[key] = true
	}
	return w, nil
}
