package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind records which coercion rule produced a Value.
type ValueKind int

const (
	Text ValueKind = iota
	Currency
	Number
)

func (k ValueKind) String() string {
	switch k {
	case Currency:
		return "currency"
	case Number:
		return "number"
	default:
		return "text"
	}
}

// Value is one typed cell. Raw always keeps the trimmed source text so
// identifiers that happen to look numeric are never reformatted.
type Value struct {
	Kind ValueKind
	Raw  string
	Num  decimal.Decimal
}

// IsNumeric reports whether the value was parsed as a currency or number.
func (v Value) IsNumeric() bool {
	return v.Kind != Text
}

// numberPrefix is anchored at the start only: "2024-01-01" matches and then
// fails to parse, which is the anomaly that falls back to text.
var numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// Coerce applies the coercion rules in order: a leading currency marker,
// then a decimal number, else text. A value that looks numeric but fails to
// parse is kept as text.
func Coerce(raw string) Value {
	s := strings.TrimSpace(raw)
	text := Value{Kind: Text, Raw: s}

	if body, negative, ok := currencyBody(s); ok {
		n, err := decimal.NewFromString(strings.ReplaceAll(body, ",", ""))
		if err != nil {
			return text
		}
		if negative {
			n = n.Neg()
		}
		return Value{Kind: Currency, Raw: s, Num: n}
	}

	if numberPrefix.MatchString(s) {
		n, err := decimal.NewFromString(s)
		if err != nil {
			return text
		}
		return Value{Kind: Number, Raw: s, Num: n}
	}

	return text
}

// currencyBody strips the currency marker and sign wrappers: "$1.00",
// "-$1.00" and "($1.00)" are all accepted.
func currencyBody(s string) (body string, negative, ok bool) {
	if len(s) > 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = s[1 : len(s)-1]
		negative = true
	}
	if strings.HasPrefix(s, "-") {
		s = s[1:]
		negative = !negative
	}
	if !strings.HasPrefix(s, "$") {
		return "", false, false
	}
	return s[1:], negative, true
}

// DisambiguateHeaders trims header names and suffixes repeated names with
// their occurrence number, so the second "Total Collected" becomes
// "Total Collected 2". Empty names become "Column N".
func DisambiguateHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s %d", h, n)
		}
		out[i] = h
	}
	return out
}

// Row is one coerced export row keyed by disambiguated header name.
type Row struct {
	Line  int
	cells map[string]Value
}

// Value returns the cell for col and whether the column exists.
func (r Row) Value(col string) (Value, bool) {
	v, ok := r.cells[col]
	return v, ok
}

// Text returns the raw text of col, or "" when the column is absent.
func (r Row) Text(col string) string {
	return r.cells[col].Raw
}

// Amount returns the numeric value of col. Absent columns and text cells
// count as zero.
func (r Row) Amount(col string) decimal.Decimal {
	v, ok := r.cells[col]
	if !ok || !v.IsNumeric() {
		return decimal.Zero
	}
	return v.Num
}

// Table is a fully coerced export.
type Table struct {
	Source  string
	Headers []string
	Rows    []Row
}

// Has reports whether the export carries col.
func (t *Table) Has(col string) bool {
	for _, h := range t.Headers {
		if h == col {
			return true
		}
	}
	return false
}

// NewTable disambiguates the header row and coerces every non-empty record.
// Line numbers are 1-based and count the header as line 1.
func NewTable(source string, records [][]string) *Table {
	t := &Table{Source: source}
	if len(records) == 0 {
		return t
	}
	t.Headers = DisambiguateHeaders(records[0])
	for i, rec := range records[1:] {
		if isRowEmpty(rec) {
			continue
		}
		row := Row{Line: i + 2, cells: make(map[string]Value, len(t.Headers))}
		for col, h := range t.Headers {
			if col < len(rec) {
				row.cells[h] = Coerce(rec[col])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isRowEmpty(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
