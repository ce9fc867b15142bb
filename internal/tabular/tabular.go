// Package tabular decodes spreadsheet and delimited files into header-keyed
// rows for mapping ingestion.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aleksaelezovic/myna/pkg/mapping"
)

// ErrUnsupportedFormat is returned for files that are not CSV, TSV or XLSX
var ErrUnsupportedFormat = errors.New("unsupported mapping format")

// Format is a tabular file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Sheet is a decoded table. Headers keep their file order; every row has a
// value (possibly empty) for every header.
type Sheet struct {
	Headers []string
	Rows    []mapping.Row
}

// Mapping builds a mapping table from the sheet
func (s *Sheet) Mapping() (*mapping.Table, mapping.Meta, error) {
	return mapping.Build(s.Headers, s.Rows)
}

// DetectFormat picks a format from the file extension
func DetectFormat(fileName string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), ".")); ext {
	case "csv":
		return FormatCSV, nil
	case "tsv", "tab":
		return FormatTSV, nil
	case "xlsx", "xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}

// ReadFile decodes the file at path, choosing the format from its extension
func ReadFile(path string) (*Sheet, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	return Read(f, format)
}

// Read decodes r. The first row holds the headers. Rows with no non-blank
// cell are skipped.
func Read(r io.Reader, format Format) (*Sheet, error) {
	var records [][]string
	var err error

	switch format {
	case FormatCSV:
		records, err = readDelimited(r, ',')
	case FormatTSV:
		records, err = readDelimited(r, '\t')
	case FormatXLSX:
		records, err = readWorkbook(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return toSheet(records), nil
}

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV parse error: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// readWorkbook returns the rows of the first sheet
func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func toSheet(records [][]string) *Sheet {
	sheet := &Sheet{}
	if len(records) == 0 {
		return sheet
	}

	sheet.Headers = records[0]
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(mapping.Row, len(sheet.Headers))
		for i, h := range sheet.Headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
