package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownFormat is returned for exports whose file type cannot be read.
var ErrUnknownFormat = errors.New("unknown file type")

type FileType string

const (
	CSV  FileType = "csv"
	XLSX FileType = "xlsx"
	XLS  FileType = "xls"
)

type Parser struct {
	logger   *log.Logger
	encoding encoding.Encoding
}

// New returns a parser decoding text exports with enc. A nil enc means UTF-8.
func New(logger *log.Logger, enc encoding.Encoding) *Parser {
	if enc == nil {
		enc = unicode.UTF8
	}
	return &Parser{
		logger:   logger,
		encoding: enc,
	}
}

// Encoding looks up a text encoding by the names accepted on the command line.
func Encoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ProcessBytes reads an export and coerces it into a Table.
func (p *Parser) ProcessBytes(data []byte, filename string) (*Table, error) {
	fileType := detectType(filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename)

	var (
		records [][]string
		err     error
	)
	switch fileType {
	case CSV:
		records, err = p.readCSV(data)
	case XLSX:
		records, err = readXLSX(data)
	case XLS:
		records, err = readXLS(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", filename)
	}

	table := NewTable(filename, records)
	p.logger.Debug("coerced export", "file", filename, "columns", len(table.Headers), "rows", len(table.Rows))
	return table, nil
}

func detectType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return CSV
	case ".xlsx":
		return XLSX
	case ".xls":
		return XLS
	}
	return ""
}
