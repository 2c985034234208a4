package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/motorcat/internal/catalog"
)

var (
	// ErrEmptyFile is returned when a file has no data rows below its header.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnsupportedFormat is returned for extensions other than .xlsx and .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned when a file exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")
)

// MaxHeaderSearchRows bounds how far down the sheet the header row is searched for.
var MaxHeaderSearchRows = 20

// ReadOptions tunes ReadRows.
type ReadOptions struct {
	Sheet    string   // xlsx sheet name; first sheet when empty
	Encoding Encoding // CSV encoding; auto-detected when empty
	Comma    rune     // CSV delimiter; sniffed when zero
	MaxSize  int64    // byte limit; unlimited when zero
}

// ReadRows parses an uploaded spreadsheet into rows keyed by header name.
// The format is chosen from the file extension.
func ReadRows(r io.Reader, fileName string, opts ReadOptions) ([]catalog.RawRow, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".xlsx", ".xlsm", ".csv", ".txt", ".tsv":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	data, err := readAll(r, opts.MaxSize)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var records [][]string
	if ext == ".xlsx" || ext == ".xlsm" {
		records, err = readXLSX(data, opts.Sheet)
	} else {
		records, err = readCSV(data, opts)
	}
	if err != nil {
		return nil, err
	}

	return toRawRows(records)
}

func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyFile
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(data []byte, opts ReadOptions) ([][]string, error) {
	text, _, err := decodeText(data, opts.Encoding)
	if err != nil {
		return nil, err
	}

	comma := opts.Comma
	if comma == 0 {
		comma = sniffDelimiter(text)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return records, nil
}

// toRawRows keys each data row by the header row. Blank rows are skipped,
// blank header cells drop their column and the first of duplicate headers wins.
func toRawRows(records [][]string) ([]catalog.RawRow, error) {
	headerIdx := findHeaderRow(records)
	if headerIdx < 0 {
		return nil, ErrEmptyFile
	}

	header := make([]string, len(records[headerIdx]))
	seen := make(map[string]bool)
	for i, h := range records[headerIdx] {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		header[i] = h
	}

	var rows []catalog.RawRow
	for _, rec := range records[headerIdx+1:] {
		if isEmptyRow(rec) {
			continue
		}
		row := make(catalog.RawRow, len(header))
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// findHeaderRow returns the first row naming a recognised column within
// MaxHeaderSearchRows, else the first non-blank row, else -1.
func findHeaderRow(records [][]string) int {
	firstNonBlank := -1
	limit := min(len(records), MaxHeaderSearchRows)
	for i := 0; i < limit; i++ {
		if isEmptyRow(records[i]) {
			continue
		}
		if firstNonBlank < 0 {
			firstNonBlank = i
		}
		for _, cell := range records[i] {
			if catalog.IsColumn(strings.TrimSpace(cell)) {
				return i
			}
		}
	}
	return firstNonBlank
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
