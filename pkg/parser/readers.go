package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// xlsMaxRows bounds how many rows are pulled from a legacy workbook.
const xlsMaxRows = 1 << 20

func (p *Parser) readCSV(data []byte) ([][]string, error) {
	decoder := unicode.BOMOverride(p.encoding.NewDecoder())
	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	r.FieldsPerRecord = -1 // exports pad trailing columns inconsistently
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}

	rows := workbook.ReadAllCells(xlsMaxRows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}
	return rows, nil
}
