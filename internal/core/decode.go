package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatCSV
	formatSpreadsheet
)

func (f fileFormat) String() string {
	switch f {
	case formatCSV:
		return "csv"
	case formatSpreadsheet:
		return "spreadsheet"
	default:
		return "unknown"
	}
}

const (
	mimeCSV  = "text/csv"
	mimeXLS  = "application/vnd.ms-excel"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	csvTypes         = map[string]bool{mimeCSV: true, "application/csv": true, "text/x-csv": true}
	spreadsheetTypes = map[string]bool{mimeXLS: true, mimeXLSX: true, "application/vnd.ms-excel.sheet.macroenabled.12": true}
	spreadsheetExts  = map[string]bool{".xlsx": true, ".xlsm": true, ".xls": true}
	genericTypes     = map[string]bool{"": true, "application/octet-stream": true, "binary/octet-stream": true}
)

// Decode reads src into one RawRecord per data row.
//
// The first row names the columns. Each following row is keyed by those
// names: missing trailing cells read as "" and cells past the last header
// column are dropped. Rows where every cell is blank are skipped but still
// count toward the Row numbering. A file with a header and no data rows
// decodes to zero records and a nil error.
func Decode(src Source) ([]RawRecord, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrMalformedInput, src.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrMalformedInput, src.Name(), err)
	}

	format := detectFormat(src.Name(), src.ContentType(), data)

	var rows [][]string
	switch format {
	case formatCSV:
		rows, err = readCSV(data)
	case formatSpreadsheet:
		rows, err = readSpreadsheet(data)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, src.Name(), src.ContentType())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrMalformedInput, format, src.Name(), err)
	}

	return toRecords(rows), nil
}

// detectFormat picks a decoder from the declared type and file name. An
// explicit CSV signal wins because browsers on Windows declare .csv files as
// application/vnd.ms-excel. Content is only sniffed when the declared type
// carries no information.
func detectFormat(name, contentType string, data []byte) fileFormat {
	ext := strings.ToLower(filepath.Ext(name))
	mt := mediaType(contentType)

	switch {
	case csvTypes[mt] || ext == ".csv":
		return formatCSV
	case spreadsheetTypes[mt] || spreadsheetExts[ext]:
		return formatSpreadsheet
	case genericTypes[mt]:
		return sniffFormat(data)
	}
	return formatUnknown
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

func sniffFormat(data []byte) fileFormat {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is(mimeCSV):
			return formatCSV
		case m.Is(mimeXLSX), m.Is(mimeXLS):
			return formatSpreadsheet
		}
	}
	return formatUnknown
}

// readCSV tokenizes RFC 4180 CSV. Quoting errors are reported rather than
// guessed around; ragged rows are left to toRecords.
func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeText(data)))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return rows, nil
}

// readSpreadsheet returns the rows of the first sheet. Cell values are read
// raw so number formats such as currency do not leak into the text.
func readSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func toRecords(rows [][]string) []RawRecord {
	if len(rows) < 2 {
		return nil
	}

	cols := headerColumns(rows[0])
	records := make([]RawRecord, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		fields := make(map[string]string, len(cols))
		for j, col := range cols {
			if col == "" {
				continue
			}
			var v string
			if j < len(row) {
				v = CleanCell(row[j])
			}
			fields[col] = v
		}
		records = append(records, RawRecord{Row: i + 1, Fields: fields})
	}
	return records
}
